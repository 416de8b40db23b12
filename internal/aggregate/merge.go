package aggregate

import (
	"time"

	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
)

// localityGap is the maximum time between one session's last event and
// the next session's first event for the two to be folded into a single
// list-style row (spec §4.9).
const localityGap = 2 * time.Hour

// MergedSession is a list-style row: either one ledger.Session untouched,
// or several folded together because they share a server and project and
// sit within localityGap of one another. IDs preserves every constituent
// session id so a caller can still show where the merged row came from.
type MergedSession struct {
	IDs    []string
	Events []*event.Event
}

func projectLabel(p event.Project) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Root
}

// MergeSessions folds adjacent sessions (as ordered by ledger.Load, last
// event ascending) into MergedSession rows when consecutive sessions
// share a server and project label and the gap between them is under
// localityGap.
func MergeSessions(sessions []ledger.Session) []MergedSession {
	var out []MergedSession
	for _, s := range sessions {
		if len(out) > 0 && canMerge(out[len(out)-1], s) {
			last := &out[len(out)-1]
			last.IDs = append(last.IDs, s.ID)
			last.Events = append(last.Events, s.Events...)
			continue
		}
		out = append(out, MergedSession{
			IDs:    []string{s.ID},
			Events: append([]*event.Event{}, s.Events...),
		})
	}
	return out
}

func canMerge(prev MergedSession, next ledger.Session) bool {
	if len(prev.Events) == 0 || len(next.Events) == 0 {
		return false
	}
	prevLast := prev.Events[len(prev.Events)-1]
	nextFirst := next.Events[0]

	if prevLast.Server != nextFirst.Server {
		return false
	}
	prevProject := projectLabel(prevLast.Project)
	if prevProject == "" || prevProject != projectLabel(nextFirst.Project) {
		return false
	}

	tPrev, errPrev := time.Parse(time.RFC3339, prevLast.Timestamp)
	tNext, errNext := time.Parse(time.RFC3339, nextFirst.Timestamp)
	if errPrev != nil || errNext != nil {
		return false
	}
	gap := tNext.Sub(tPrev)
	if gap < 0 {
		gap = -gap
	}
	return gap < localityGap
}
