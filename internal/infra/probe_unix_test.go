//go:build unix

package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eliteGoblin/focusd/reclaim/internal/domain"
)

func TestLiveProbe_InUse(t *testing.T) {
	tests := []struct {
		name             string
		setup            func(t *testing.T, dir string) string
		wantInUse        bool
		wantInconclusive bool
	}{
		{
			name: "idle regular file",
			setup: func(t *testing.T, dir string) string {
				return writeTestFile(t, dir, "idle.txt", "x")
			},
		},
		{
			name: "file held open by this process is not busy",
			setup: func(t *testing.T, dir string) string {
				p := writeTestFile(t, dir, "open.txt", "x")
				f, err := os.Open(p)
				require.NoError(t, err)
				t.Cleanup(func() { f.Close() })
				return p
			},
		},
		{
			name: "missing file is inconclusive",
			setup: func(t *testing.T, dir string) string {
				return filepath.Join(dir, "nope.txt")
			},
			wantInconclusive: true,
		},
		{
			name: "directory is inconclusive",
			setup: func(t *testing.T, dir string) string {
				return dir
			},
			wantInconclusive: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t, t.TempDir())

			inUse, err := NewLiveProbe().InUse(path)

			assert.Equal(t, tt.wantInUse, inUse)
			if tt.wantInconclusive {
				assert.ErrorIs(t, err, domain.ErrProbeInconclusive)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLiveProbe_DoesNotTruncate(t *testing.T) {
	p := writeTestFile(t, t.TempDir(), "keep.txt", "contents")

	_, err := NewLiveProbe().InUse(p)
	require.NoError(t, err)

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(data))
}
