// Package hook implements the Hook Normalizer (spec §4.6): a stdin-driven
// adapter that turns a single vendor hook payload — Claude Code or Cursor —
// into a canonical event.Event and appends it to the ledger.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/boshu2/vigilo/internal/config"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
	"github.com/boshu2/vigilo/internal/rpcserver"
)

// sessionNamespace is the fixed namespace used to derive stable v5 session
// ids from a vendor conversation/transcript identifier, so repeated hook
// invocations from the same conversation land in the same session without
// any coordination between processes (spec §4.6).
var sessionNamespace = uuid.UUID{
	0xa1, 0xb2, 0xc3, 0xd4, 0xe5, 0xf6, 0x47, 0x08,
	0x89, 0xab, 0xcd, 0xef, 0x01, 0x23, 0x45, 0x67,
}

func stableUUID(s string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(s)).String()
}

// Options carries the resolved config and paths a hook invocation needs.
type Options struct {
	RegistryPath  string
	StoreResponse bool // whether to persist the full Claude tool_response body
}

// Run reads one JSON payload from r, dispatches it to the matching vendor
// parser by structural inspection (conversation_id presence selects
// Cursor), and appends the resulting event to store. A payload that fails
// to parse, or whose parser finds no tool invocation worth recording,
// produces no event and no error (spec §4.6).
func Run(r io.Reader, store *ledger.Store, opts Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}

	var e *event.Event
	if _, isCursor := payload["conversation_id"]; isCursor {
		e = handleCursor(payload, opts)
	} else {
		e = handleClaude(payload, opts)
	}
	if e == nil {
		return nil
	}

	if err := store.Append(e); err != nil {
		fmt.Fprintf(os.Stderr, "[vigilo hook] ledger error: %v\n", err)
	}
	return nil
}

// sessionIDFromRegistry returns the sidecar's session id when the
// registered pid is still alive and the id parses as a UUID (spec §4.6);
// ok is false if any of that fails, telling the caller to fall back to a
// stable or random id.
func sessionIDFromRegistry(registryPath string) (id string, ok bool) {
	sid, pid, found := rpcserver.ReadRegistry(registryPath)
	if !found || !rpcserver.ProcessLive(pid) {
		return "", false
	}
	if _, err := uuid.Parse(sid); err != nil {
		return "", false
	}
	return sid, true
}

// LoadOptions resolves hook.Options from the config the caller already
// loaded, so the hook package itself never re-parses the config file.
func LoadOptions(cfg *config.Config, registryPath string) Options {
	return Options{RegistryPath: registryPath, StoreResponse: cfg.HookStoreResponse}
}

func strField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func boolField(m map[string]any, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return false
}

func mapField(m map[string]any, key string) map[string]any {
	if v, ok := m[key].(map[string]any); ok {
		return v
	}
	return nil
}

func hasMcpVigiloPrefix(tool string) bool {
	return strings.HasPrefix(tool, "mcp__vigilo__")
}
