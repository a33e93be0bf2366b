package auth

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	pkgErrors "github.com/sfseed/sfseed/pkg/errors"
)

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// TokenCache stores resolved tokens on disk, one entry per org alias,
// encrypted with a passphrase-derived key. The cache is opt-in: callers
// construct one only when SFSEED_TOKEN_CACHE is set.
type TokenCache struct {
	path       string
	passphrase string
}

// NewTokenCache creates a cache backed by the given file.
func NewTokenCache(path, passphrase string) *TokenCache {
	return &TokenCache{path: path, passphrase: passphrase}
}

// Load returns the cached token for alias, or false if the cache file is
// missing, the passphrase is wrong, or the alias has no entry.
func (tc *TokenCache) Load(alias string) (*Token, bool) {
	blob, err := os.ReadFile(tc.path)
	if err != nil {
		return nil, false
	}
	plaintext, err := decrypt(blob, tc.passphrase)
	if err != nil {
		return nil, false
	}
	var entries map[string]Token
	if err := json.Unmarshal(plaintext, &entries); err != nil {
		return nil, false
	}
	tok, ok := entries[alias]
	if !ok || tok.AccessToken == "" {
		return nil, false
	}
	return &tok, true
}

// Save stores the token for alias, preserving other aliases' entries.
// The file is written with owner-only permissions.
func (tc *TokenCache) Save(alias string, tok *Token) error {
	entries := map[string]Token{}
	if blob, err := os.ReadFile(tc.path); err == nil {
		if plaintext, err := decrypt(blob, tc.passphrase); err == nil {
			_ = json.Unmarshal(plaintext, &entries)
		}
	}
	entries[alias] = *tok

	plaintext, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	blob, err := encrypt(plaintext, tc.passphrase)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(tc.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
	}
	return os.WriteFile(tc.path, blob, 0o600)
}

// encrypt seals plaintext as salt || nonce || box.
func encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	var salt [saltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return nil, err
	}
	key, err := deriveKey(passphrase, salt[:])
	if err != nil {
		return nil, err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+secretbox.Overhead)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, plaintext, &nonce, key), nil
}

func decrypt(blob []byte, passphrase string) ([]byte, error) {
	if len(blob) < saltSize+nonceSize+secretbox.Overhead {
		return nil, pkgErrors.NewAuthError("token cache is truncated", nil)
	}
	key, err := deriveKey(passphrase, blob[:saltSize])
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], blob[saltSize:saltSize+nonceSize])

	plaintext, ok := secretbox.Open(nil, blob[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, pkgErrors.NewAuthError("token cache passphrase mismatch", nil)
	}
	return plaintext, nil
}

func deriveKey(passphrase string, salt []byte) (*[keySize]byte, error) {
	raw, err := scrypt.Key([]byte(passphrase), salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, err
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
