package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestFile creates dir/rel with content and returns its path.
func writeTestFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// stubRename swaps renameFunc for the duration of the test.
func stubRename(t *testing.T, fn func(src, dst string) error) {
	t.Helper()
	orig := renameFunc
	renameFunc = fn
	t.Cleanup(func() { renameFunc = orig })
}
