package importers

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/google-importer/internal/storage/providers/local"
)

func TestDirectoryIndex_Materialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink, err := local.NewProvider(fs, "/data").ForUser("bob")
	require.NoError(t, err)

	index := NewDirectoryIndex()
	// Children are added before their parents.
	index.Add("c", "Leaf", "b")
	index.Add("b", "Middle", "a")
	index.Add("a", "Top", "drive-root")
	index.Add("o", "Orphan", "")
	index.Add("s", "a/b: c", "a")
	assert.Equal(t, 5, index.Len())

	_, ok := index.Path("a")
	assert.False(t, ok, "paths are unknown before materializing")

	require.NoError(t, index.Materialize(context.Background(), sink, "root"))

	expected := map[string]string{
		"a": "root/Top",
		"b": "root/Top/Middle",
		"c": "root/Top/Middle/Leaf",
		"o": "root/Orphan",
		"s": "root/Top/a_b_ c",
	}
	for id, want := range expected {
		got, ok := index.Path(id)
		require.True(t, ok, id)
		assert.Equal(t, want, got)

		isDir, err := afero.IsDir(fs, "/data/bob/files/"+want)
		require.NoError(t, err)
		assert.True(t, isDir, want)
	}
}

func TestDirectoryIndex_Cycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink, err := local.NewProvider(fs, "/data").ForUser("bob")
	require.NoError(t, err)

	index := NewDirectoryIndex()
	index.Add("x", "X", "y")
	index.Add("y", "Y", "x")
	index.Add("self", "Self", "self")

	require.NoError(t, index.Materialize(context.Background(), sink, "root"))

	x, ok := index.Path("x")
	require.True(t, ok)
	y, ok := index.Path("y")
	require.True(t, ok)
	self, ok := index.Path("self")
	require.True(t, ok)

	assert.Equal(t, "root/Y", y)
	assert.Equal(t, "root/Y/X", x)
	assert.Equal(t, "root/Self", self)
}
