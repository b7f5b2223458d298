package infra

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsage_TempDir(t *testing.T) {
	u, err := Usage(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Positive(t, u.Total)
	assert.LessOrEqual(t, u.Free, u.Total)
}

func TestUsage_MissingPath(t *testing.T) {
	_, err := Usage(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestUsageForRoots_DedupesSameMount(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	writeTestFile(t, a, "x", "1")
	writeTestFile(t, b, "y", "1")

	usages := UsageForRoots(context.Background(), []string{a, b, filepath.Join(dir, "missing")})

	assert.Len(t, usages, 1)
}

func TestMountFor(t *testing.T) {
	mounts := []string{"/", "/home", "/home/alice/usb"}

	tests := []struct {
		path string
		want string
	}{
		{"/home/alice/Videos", "/home"},
		{"/home/alice/usb/clip.mkv", "/home/alice/usb"},
		{"/var/tmp", "/"},
		{"/homework", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, mountFor(tt.path, mounts))
		})
	}

	assert.Equal(t, "/x", mountFor("/x", nil))
}
