package crypto

import (
	"path/filepath"
	"testing"
)

func mustKey(t *testing.T) *Key {
	t.Helper()
	k, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	return k
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	k := mustKey(t)
	ct, err := Encrypt(k, "hello world")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !IsEncrypted(ct) {
		t.Fatalf("IsEncrypted(%q) = false, want true", ct)
	}
	pt, ok := Decrypt(k, ct)
	if !ok || pt != "hello world" {
		t.Fatalf("Decrypt() = (%q, %v), want (%q, true)", pt, ok, "hello world")
	}
}

func TestEncryptDecryptEmptyString(t *testing.T) {
	k := mustKey(t)
	ct, err := Encrypt(k, "")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	pt, ok := Decrypt(k, ct)
	if !ok || pt != "" {
		t.Fatalf("Decrypt() of empty string = (%q, %v)", pt, ok)
	}
}

func TestDecryptWrongKeyFails(t *testing.T) {
	k1, k2 := mustKey(t), mustKey(t)
	ct, err := Encrypt(k1, "secret")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, ok := Decrypt(k2, ct); ok {
		t.Fatalf("Decrypt() with wrong key succeeded, want failure")
	}
}

func TestDecryptMissingPrefixFails(t *testing.T) {
	k := mustKey(t)
	if _, ok := Decrypt(k, "plain text, no envelope"); ok {
		t.Fatalf("Decrypt() of unprefixed text succeeded, want failure")
	}
}

func TestDecryptInvalidBase64Fails(t *testing.T) {
	k := mustKey(t)
	if _, ok := Decrypt(k, Prefix+"not-valid-base64!!"); ok {
		t.Fatalf("Decrypt() of invalid base64 succeeded, want failure")
	}
}

func TestDecryptShortPayloadFails(t *testing.T) {
	k := mustKey(t)
	// Valid base64, but far fewer than 12 nonce bytes.
	if _, ok := Decrypt(k, Prefix+"YWI="); ok {
		t.Fatalf("Decrypt() of short payload succeeded, want failure")
	}
}

func TestIsEncrypted(t *testing.T) {
	if !IsEncrypted(Prefix + "xyz") {
		t.Errorf("IsEncrypted() = false for prefixed string")
	}
	if IsEncrypted("xyz") {
		t.Errorf("IsEncrypted() = true for unprefixed string")
	}
}

func TestGenerateAndSaveKeySetsPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "encryption.key")
	k, err := GenerateAndSaveKey(path)
	if err != nil {
		t.Fatalf("GenerateAndSaveKey() error = %v", err)
	}
	defer k.Close()

	loaded, ok, err := LoadKeyFromFile(path)
	if err != nil || !ok {
		t.Fatalf("LoadKeyFromFile() = (ok=%v, err=%v)", ok, err)
	}
	ct, err := Encrypt(k, "roundtrip")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if pt, ok := Decrypt(loaded, ct); !ok || pt != "roundtrip" {
		t.Fatalf("key loaded from file does not round-trip: (%q, %v)", pt, ok)
	}
}

func TestLoadOrCreateKeyGeneratesWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "encryption.key")
	k, created, err := LoadOrCreateKey("VIGILO_ENCRYPTION_KEY_TEST_UNSET", path)
	if err != nil {
		t.Fatalf("LoadOrCreateKey() error = %v", err)
	}
	if !created {
		t.Errorf("LoadOrCreateKey() created = false, want true for missing key")
	}
	defer k.Close()
}
