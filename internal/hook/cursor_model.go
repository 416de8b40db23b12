package hook

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
)

// resolveCursorModel finds the model name for a Cursor tool call: the
// payload's own "model" field first, then Cursor's local chat store for
// the conversation, then the CLI's last-used model, returning "" if none
// of those resolve (spec §4.6: cursor hook payloads don't always carry a
// model field directly).
func resolveCursorModel(payload map[string]any, conversationID string) string {
	if m := strField(payload, "model"); m != "" {
		return normalizeCursorModel(m)
	}
	if m, ok := readCursorModelFromDB(conversationID); ok {
		return normalizeCursorModel(m)
	}
	if m, ok := readCursorModelFallback(); ok {
		return normalizeCursorModel(m)
	}
	return ""
}

func normalizeCursorModel(model string) string {
	switch model {
	case "default", "auto":
		return "Auto"
	default:
		return model
	}
}

// lastUsedModelNeedle is the hex-encoded JSON key "lastUsedModel": as it
// appears inside Cursor's sqlite chat store blob — the original
// implementation scans for this rather than opening the database, since
// no sqlite driver is needed for a single key lookup (spec supplement,
// not in spec.md's five scenarios; grounded on original_source/src/hook.rs).
var lastUsedModelNeedle = []byte("226c617374557365644d6f64656c223a22")

func readCursorModelFromDB(conversationID string) (string, bool) {
	if conversationID == "" {
		return "", false
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	chatsDir := filepath.Join(home, ".cursor", "chats")
	entries, err := os.ReadDir(chatsDir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		db := filepath.Join(chatsDir, entry.Name(), conversationID, "store.db")
		if model, ok := extractLastUsedModelFromDB(db); ok {
			return model, true
		}
	}
	return "", false
}

func extractLastUsedModelFromDB(dbPath string) (string, bool) {
	data, err := os.ReadFile(dbPath)
	if err != nil {
		return "", false
	}
	idx := bytes.Index(data, lastUsedModelNeedle)
	if idx < 0 {
		return "", false
	}
	after := data[idx+len(lastUsedModelNeedle):]
	end := -1
	for i := 0; i+1 < len(after); i += 2 {
		if after[i] == '2' && after[i+1] == '2' {
			end = i
			break
		}
	}
	if end < 0 {
		return "", false
	}
	modelHex := after[:end]
	if len(modelHex)%2 != 0 {
		return "", false
	}
	modelBytes, err := hex.DecodeString(string(modelHex))
	if err != nil || len(modelBytes) == 0 {
		return "", false
	}
	return string(modelBytes), true
}

func readCursorModelFallback() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(home, ".cursor", "cli-config.json"))
	if err != nil {
		return "", false
	}
	var v struct {
		Model struct {
			DisplayName    string `json:"displayName"`
			DisplayModelID string `json:"displayModelId"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", false
	}
	if v.Model.DisplayName != "" {
		return v.Model.DisplayName, true
	}
	if v.Model.DisplayModelID != "" {
		return v.Model.DisplayModelID, true
	}
	return "", false
}
