package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/boshu2/vigilo/internal/config"
	"github.com/boshu2/vigilo/internal/crypto"
	"github.com/boshu2/vigilo/internal/event"
	"github.com/boshu2/vigilo/internal/ledger"
	"github.com/boshu2/vigilo/internal/userdata"
)

// loadReadKey resolves the decryption key for a read-only command, trying
// the environment then the key file. Unlike the server's
// crypto.LoadOrCreateKey, it never generates or persists a new key — a
// read command that finds no key simply prints ciphertext fields as-is.
func loadReadKey() *crypto.Key {
	if k, ok, err := crypto.LoadKeyFromEnv(config.EnvKey); err == nil && ok {
		return k
	}
	if k, ok, err := crypto.LoadKeyFromFile(userdata.KeyPath()); err == nil && ok {
		return k
	}
	return nil
}

// maybeDecrypt returns s decrypted if key is set and s looks like an
// envelope, crypto.DecryptFailedPlaceholder if key is set but cannot
// unwrap that envelope, else s unchanged.
func maybeDecrypt(key *crypto.Key, s string) string {
	if key == nil || s == "" {
		return s
	}
	if plain, ok := crypto.Decrypt(key, s); ok {
		return plain
	}
	if crypto.IsEncrypted(s) {
		return crypto.DecryptFailedPlaceholder
	}
	return s
}

// loadFilteredSessions resolves the ledger path and loads sessions under
// the given date/session filter, printing a friendly message (not an
// error) when the ledger doesn't exist yet.
func loadFilteredSessions(filter ledger.Filter) ([]ledger.Session, error) {
	sessions, err := ledger.Load(ledgerPath(), filter)
	if err != nil {
		if _, ok := err.(*ledger.ErrNoLedger); ok {
			fmt.Fprintln(os.Stderr, err)
			return nil, nil
		}
		return nil, err
	}
	return sessions, nil
}

// printEventLine writes one event as a compact human-readable line:
// timestamp, server, tool, risk, outcome, duration.
func printEventLine(e *event.Event, key *crypto.Key) {
	status := "ok"
	detail := ""
	if e.Outcome.IsErr() {
		status = "err"
		detail = e.Outcome.Message
	}
	fmt.Printf("%s  %-12s %-10s %-6s %-4s %6dus  %s  %s\n",
		e.Timestamp, e.Server, e.Tool, e.Risk, status, e.EffectiveDurationUs(), argsDisplay(e, key), detail)
}

// argsDisplay returns the arguments field as plain text for a
// human-readable listing: decrypted JSON if the envelope unwraps,
// crypto.DecryptFailedPlaceholder if a key is configured but does not
// unwrap it, otherwise the raw compact JSON (plaintext argument object,
// or an undecryptable ciphertext string when no key is configured).
func argsDisplay(e *event.Event, key *crypto.Key) string {
	if decoded, ok := decryptRaw(key, e.Arguments); ok {
		return string(decoded)
	}
	var s string
	if key != nil && json.Unmarshal(e.Arguments, &s) == nil && crypto.IsEncrypted(s) {
		return crypto.DecryptFailedPlaceholder
	}
	return string(e.Arguments)
}

// printEventJSON prints one event as a JSON line, decrypting arguments
// and diff in place when key unwraps them — the decrypted arguments
// plaintext is itself the original serialized JSON object, so it's
// embedded as raw JSON rather than re-quoted as a string.
func printEventJSON(e *event.Event, key *crypto.Key) {
	clone := *e
	if decoded, ok := decryptRaw(key, e.Arguments); ok {
		clone.Arguments = decoded
	}
	if e.Diff != "" {
		clone.Diff = maybeDecrypt(key, e.Diff)
	}
	out, err := json.Marshal(&clone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[vigilo] encoding event: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

// decryptRaw unwraps an encrypted arguments field (a JSON string literal
// holding an "enc:v1:..." envelope) back into raw JSON. ok is false when
// arguments isn't an encrypted string, leaving the caller's value as-is.
func decryptRaw(key *crypto.Key, arguments json.RawMessage) (json.RawMessage, bool) {
	if key == nil || len(arguments) == 0 {
		return nil, false
	}
	var asString string
	if err := json.Unmarshal(arguments, &asString); err != nil {
		return nil, false
	}
	plain, ok := crypto.Decrypt(key, asString)
	if !ok {
		return nil, false
	}
	return json.RawMessage(plain), true
}
