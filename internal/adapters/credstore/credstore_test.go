package credstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/adapters/credstore"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
)

func TestRoundTrip(t *testing.T) {
	s, err := credstore.Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(domain.EngineBaidu, domain.StoredCredentials{AppID: "20150630", APIKey: "secret"}))
	assert.True(t, s.Has(domain.EngineBaidu))
	assert.False(t, s.Has(domain.EngineOpenAI))

	creds, err := s.Get(domain.EngineBaidu)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "20150630", creds.AppID)
	assert.Equal(t, "secret", creds.APIKey)

	missing, err := s.Get(domain.EngineOpenAI)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := credstore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Put(domain.EngineGoogle, domain.StoredCredentials{APIKey: "k-123"}))

	s2, err := credstore.Open(dir)
	require.NoError(t, err)
	creds, err := s2.Get(domain.EngineGoogle)
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, "k-123", creds.APIKey)
}

func TestDelete(t *testing.T) {
	s, err := credstore.Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(domain.EngineGemini, domain.StoredCredentials{APIKey: "k"}))
	require.NoError(t, s.Delete(domain.EngineGemini))
	assert.False(t, s.Has(domain.EngineGemini))
	require.NoError(t, s.Delete(domain.EngineGemini), "deleting a missing record is fine")
}

func TestSecretsEncryptedOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := credstore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(domain.EngineOpenAI, domain.StoredCredentials{APIKey: "sk-plaintext-canary"}))

	raw, err := os.ReadFile(filepath.Join(dir, "credstore.bin"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-plaintext-canary")

	info, err := os.Stat(filepath.Join(dir, "credstore.key"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestWrongKeyFailsClosed(t *testing.T) {
	dir := t.TempDir()
	s, err := credstore.Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(domain.EngineOpenAI, domain.StoredCredentials{APIKey: "k"}))

	// Replace the key: the sealed blob must refuse to open.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credstore.key"), make([]byte, 32), 0o600))
	s2, err := credstore.Open(dir)
	require.NoError(t, err)
	_, err = s2.Get(domain.EngineOpenAI)
	assert.ErrorContains(t, err, "decryption failed")
}

func TestCorruptKeyRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credstore.key"), []byte("short"), 0o600))
	_, err := credstore.Open(dir)
	assert.ErrorContains(t, err, "want 32")
}
