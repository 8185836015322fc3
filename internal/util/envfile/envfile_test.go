package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
)

func TestSet_CreatesAndUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", ".env")

	prev, err := Set(path, "APP_KEY", "first")
	require.NoError(t, err)
	require.Empty(t, prev)

	require.NoError(t, os.WriteFile(path, []byte("APP_KEY=first\nAPP_ENV=prod\n"), 0o600))
	prev, err = Set(path, "APP_KEY", "second")
	require.NoError(t, err)
	require.Equal(t, "first", prev)

	vars, err := godotenv.Read(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"APP_KEY": "second", "APP_ENV": "prod"}, vars)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
}
