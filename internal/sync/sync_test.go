package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGmailDate(t *testing.T) {
	assert.Equal(t, "2025/01/04", toGmailDate("2025-01-04T10:00:00Z"))
	assert.Equal(t, "2025/12/31", toGmailDate("2025-12-31T23:59:59+01:00"))
	assert.Equal(t, "", toGmailDate("not a date"))
	assert.Equal(t, "", toGmailDate(""))
}

func TestDiscoverAccounts(t *testing.T) {
	root := t.TempDir()

	mkAccount := func(name string, withCreds bool) {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		if withCreds {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("{}"), 0o600))
		}
	}

	mkAccount("bob@example.com", true)
	mkAccount("alice@example.com", true)
	mkAccount("carol@example.com", false) // no credentials
	mkAccount("notanaccount", true)       // no @ in name
	require.NoError(t, os.WriteFile(filepath.Join(root, "dave@example.com"), []byte(""), 0o600)) // file, not dir

	accounts := DiscoverAccounts(root)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, accounts)
}

func TestDiscoverAccountsMissingRoot(t *testing.T) {
	assert.Nil(t, DiscoverAccounts(filepath.Join(t.TempDir(), "does-not-exist")))
}
