package vdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegistryPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Source
	}{
		{
			name: "local folder",
			in:   "./registry",
			want: Source{Kind: KindLocalFolder, Path: "./registry"},
		},
		{
			name: "local archive with sub folder",
			in:   "registry.zip[model]",
			want: Source{Kind: KindLocalArchive, Path: "registry.zip", SubFolder: "model"},
		},
		{
			name: "remote archive",
			in:   "https://example.com/registry.tar.gz",
			want: Source{Kind: KindRemoteArchive, URL: "https://example.com/registry.tar.gz"},
		},
		{
			name: "git repo with tag and sub folder",
			in:   "https://github.com/example/registry.git@v1.2.0[model]",
			want: Source{Kind: KindGitRepo, URL: "https://github.com/example/registry.git", Tag: "v1.2.0", SubFolder: "model"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegistryPath(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.SubFolder, got.SubFolder)
			if tt.want.Kind == KindGitRepo {
				assert.Equal(t, tt.want.Tag, got.Tag)
			}
		})
	}
}

func TestLocalFolderLoadFileTraversalIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("groups: []"), 0o600))

	d, err := NewLocalFolder(dir)
	require.NoError(t, err)
	defer d.Close() //nolint:errcheck

	_, found, err := d.LoadFile(context.Background(), "a.yaml")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = d.LoadFile(context.Background(), "../../../../etc/passwd")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = d.LoadFile(context.Background(), "missing.yaml")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocalFolderAllFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("groups: []"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.yaml"), []byte("groups: []"), 0o600))

	d, err := NewLocalFolder(dir)
	require.NoError(t, err)
	defer d.Close() //nolint:errcheck

	files, err := d.AllFiles(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.yaml", "sub/b.yaml"}, files)
}
