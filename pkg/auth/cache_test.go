package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.enc")
	cache := NewTokenCache(path, "passphrase")

	tok := &Token{AccessToken: "secret-token", InstanceURL: "https://na1.example"}
	require.NoError(t, cache.Save("prod", tok))

	got, ok := cache.Load("prod")
	require.True(t, ok)
	assert.Equal(t, tok.AccessToken, got.AccessToken)
	assert.Equal(t, tok.InstanceURL, got.InstanceURL)

	// The file never holds the token in the clear.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
}

func TestTokenCachePreservesOtherAliases(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "tokens.enc"), "pw")

	require.NoError(t, cache.Save("prod", &Token{AccessToken: "a", InstanceURL: "https://a"}))
	require.NoError(t, cache.Save("sandbox", &Token{AccessToken: "b", InstanceURL: "https://b"}))

	got, ok := cache.Load("prod")
	require.True(t, ok)
	assert.Equal(t, "a", got.AccessToken)
}

func TestTokenCacheWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.enc")
	require.NoError(t, NewTokenCache(path, "right").Save("prod", &Token{AccessToken: "a", InstanceURL: "https://a"}))

	_, ok := NewTokenCache(path, "wrong").Load("prod")
	assert.False(t, ok)
}

func TestTokenCacheMissing(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "tokens.enc"), "pw")

	_, ok := cache.Load("prod")
	assert.False(t, ok, "missing file is not an error")

	require.NoError(t, cache.Save("prod", &Token{AccessToken: "a", InstanceURL: "https://a"}))
	_, ok = cache.Load("unknown-alias")
	assert.False(t, ok)
}
