// Package crypto implements Vigilo's at-rest field encryption: an
// AES-256-GCM envelope with a versioned textual prefix, key discovery from
// an environment variable or a mode-0600 file, and best-effort decryption
// that never fails the surrounding read.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Prefix marks an encrypted field: "enc:v1:" + base64(nonce ∥ ciphertext).
const Prefix = "enc:v1:"

const (
	keySize   = 32
	nonceSize = 12
)

// Key holds 32 bytes of key material. Zero is cleared on Close so the
// plaintext key does not linger in memory longer than necessary.
type Key struct {
	bytes [keySize]byte
}

// Close zeroizes the key material. Callers that hold a Key for the
// lifetime of a process should defer Close on server shutdown.
func (k *Key) Close() {
	for i := range k.bytes {
		k.bytes[i] = 0
	}
}

func newKeyFromBytes(b []byte) (*Key, error) {
	if len(b) != keySize {
		return nil, fmt.Errorf("crypto: key must be %d bytes, got %d", keySize, len(b))
	}
	k := &Key{}
	copy(k.bytes[:], b)
	return k, nil
}

// GenerateKey returns 32 fresh random bytes from the OS CSPRNG.
func GenerateKey() (*Key, error) {
	var buf [keySize]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("crypto: generating key: %w", err)
	}
	return newKeyFromBytes(buf[:])
}

// GenerateKeyB64 returns a fresh key base64-encoded, for `generate-key`.
func GenerateKeyB64() (string, error) {
	k, err := GenerateKey()
	if err != nil {
		return "", err
	}
	defer k.Close()
	return base64.StdEncoding.EncodeToString(k.bytes[:]), nil
}

// DecodeKeyB64 parses a base64-encoded 32-byte key, e.g. from
// VIGILO_ENCRYPTION_KEY or the key file's single line.
func DecodeKeyB64(s string) (*Key, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("crypto: decoding base64 key: %w", err)
	}
	return newKeyFromBytes(raw)
}

// LoadKeyFromEnv decodes the key from an environment variable, if set.
func LoadKeyFromEnv(envVar string) (*Key, bool, error) {
	v, ok := os.LookupEnv(envVar)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, false, nil
	}
	k, err := DecodeKeyB64(v)
	if err != nil {
		return nil, true, err
	}
	return k, true, nil
}

// LoadKeyFromFile reads a single-line base64 key from path, if it exists.
func LoadKeyFromFile(path string) (*Key, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("crypto: reading key file %s: %w", path, err)
	}
	k, err := DecodeKeyB64(string(data))
	if err != nil {
		return nil, true, err
	}
	return k, true, nil
}

// GenerateAndSaveKey creates a fresh key, writes base64(key)+"\n" to path
// with mode 0600, and returns it. The parent directory is created if
// missing.
func GenerateAndSaveKey(path string) (*Key, error) {
	k, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("crypto: creating key directory: %w", err)
		}
	}
	enc := base64.StdEncoding.EncodeToString(k.bytes[:]) + "\n"
	if err := os.WriteFile(path, []byte(enc), 0600); err != nil {
		return nil, fmt.Errorf("crypto: writing key file: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return nil, fmt.Errorf("crypto: setting key file permissions: %w", err)
	}
	return k, nil
}

// LoadOrCreateKey tries the env var, then the file, then generates and
// persists a new key to path. The bool return reports whether a key was
// freshly generated.
func LoadOrCreateKey(envVar, path string) (k *Key, created bool, err error) {
	if k, ok, err := LoadKeyFromEnv(envVar); err != nil {
		return nil, false, err
	} else if ok {
		return k, false, nil
	}
	if k, ok, err := LoadKeyFromFile(path); err != nil {
		return nil, false, err
	} else if ok {
		return k, false, nil
	}
	k, err = GenerateAndSaveKey(path)
	if err != nil {
		return nil, false, err
	}
	return k, true, nil
}

func (k *Key) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(k.bytes[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt wraps plaintext as "enc:v1:" + base64(nonce ∥ ciphertext), using
// a fresh random nonce drawn from the OS CSPRNG.
func Encrypt(k *Key, plaintext string) (string, error) {
	aead, err := k.gcm()
	if err != nil {
		return "", fmt.Errorf("crypto: building AEAD: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypto: generating nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	payload := append(nonce, sealed...)
	return Prefix + base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt unwraps an envelope. It returns ok=false (never an error) for
// any of: missing prefix, invalid base64, payload shorter than the nonce,
// AEAD authentication failure, or non-UTF-8 plaintext — all treated the
// same as "could not decrypt" by callers.
func Decrypt(k *Key, s string) (plaintext string, ok bool) {
	if !IsEncrypted(s) {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, Prefix))
	if err != nil {
		return "", false
	}
	if len(raw) < nonceSize {
		return "", false
	}
	aead, err := k.gcm()
	if err != nil {
		return "", false
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(plain) {
		return "", false
	}
	return string(plain), true
}

// IsEncrypted is a syntactic prefix check only; it does not validate the
// payload.
func IsEncrypted(s string) bool {
	return strings.HasPrefix(s, Prefix)
}

// DecryptFailedPlaceholder is the literal text substituted for a field
// that could not be decrypted; the surrounding event is still consumed.
const DecryptFailedPlaceholder = "[decrypt failed]"
