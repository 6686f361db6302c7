package view_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/nfseaudit/cmd/tui/internal/view"
)

func TestReadFolder(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"b.xml":     "<b/>",
		"a.XML":     "<a/>",
		"notes.txt": "skip",
		"sub/c.xml": "<c/>",
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	docs, err := view.ReadFolder(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "a.XML", docs[0].Name)
	assert.Equal(t, "<a/>", string(docs[0].Content))
	assert.Equal(t, "b.xml", docs[1].Name)
}

func TestReadFolder_Empty(t *testing.T) {
	_, err := view.ReadFolder(t.TempDir())
	assert.Error(t, err)
}
