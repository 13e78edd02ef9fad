package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvMissingFileIsFine(t *testing.T) {
	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadEnvReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AVL_TEST_PORT=4242\nAVL_TEST_ADMINS=a@x.com, ,b@x.com\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("AVL_TEST_PORT")
		os.Unsetenv("AVL_TEST_ADMINS")
	})

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, 4242, GetInt("AVL_TEST_PORT", 1))
	assert.Equal(t, []string{"a@x.com", "b@x.com"}, GetCSV("AVL_TEST_ADMINS"))
	assert.Equal(t, "fallback", Get("AVL_TEST_UNSET", "fallback"))
	assert.Equal(t, 7, GetInt("AVL_TEST_UNSET", 7))
}
