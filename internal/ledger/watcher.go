package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/boshu2/vigilo/internal/event"
)

const pollInterval = 200 * time.Millisecond

// Watch tail-follows the active ledger file at path, invoking fn for every
// newly appended, successfully parsed event, until ctx is cancelled.
//
// On each retry after a zero-byte read it re-opens the path and compares
// the new length against the last read position: if the new length is
// less than the last position, the file has been rotated and reading
// resumes from position 0 of the new file.
func Watch(ctx context.Context, path string, fn func(*event.Event)) error {
	f, pos, err := openAtEnd(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := bufio.NewReader(f)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			pos += int64(len(line))
			parseAndEmit(line, fn)
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			return fmt.Errorf("ledger: watching %s: %w", path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}

		info, statErr := os.Stat(path)
		if statErr != nil {
			continue
		}
		if info.Size() < pos {
			// Rotation happened: the active file is shorter than our last
			// read position. Re-open from the start.
			f.Close()
			newF, err := os.Open(path)
			if err != nil {
				continue
			}
			f = newF
			pos = 0
			reader = bufio.NewReader(f)
		}
	}
}

// WatchNotify is the dashboard variant: identical semantics to Watch, but
// wakes on filesystem notifications for the ledger's directory instead of
// polling on a fixed interval. Falls back to the poll-based wakeup if the
// notification watch itself cannot be established (e.g. unsupported
// filesystem), since the read-loop semantics must stay identical either
// way (spec §4.8).
func WatchNotify(ctx context.Context, path string, fn func(*event.Event)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Watch(ctx, path, fn)
	}
	defer watcher.Close()

	dir := dirOf(path)
	if err := watcher.Add(dir); err != nil {
		return Watch(ctx, path, fn)
	}

	f, pos, err := openAtEnd(path)
	if err != nil {
		return err
	}
	defer f.Close()
	reader := bufio.NewReader(f)

	drain := func() {
		for {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				pos += int64(len(line))
				parseAndEmit(line, fn)
			}
			if err != nil {
				return
			}
		}
	}
	drain()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("ledger: fsnotify: %w", err)
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Name != path {
				continue
			}
			if info, statErr := os.Stat(path); statErr == nil && info.Size() < pos {
				f.Close()
				newF, err := os.Open(path)
				if err != nil {
					continue
				}
				f = newF
				pos = 0
				reader = bufio.NewReader(f)
			}
			drain()
		}
	}
}

func openAtEnd(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("ledger: opening %s: %w", path, err)
	}
	pos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("ledger: seeking %s: %w", path, err)
	}
	return f, pos, nil
}

func parseAndEmit(line string, fn func(*event.Event)) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	var e event.Event
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		return
	}
	if e.Risk == event.RiskUnknown {
		e.Risk = e.Reclassify()
	}
	fn(&e)
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}
