package identity

import (
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/marmos91/filebridge/pkg/cmis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	paths := []string{
		"/docs",
		"/docs/a.txt",
		"/a b/c d/e.pdf",
		"/ünïcødé/文件.txt",
		"/deep/nested/path/with/many/segments",
		"/.hidden",
		"/bad\xff.txt",
		"/\xfe\xfd/x",
	}

	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			id := Encode(p)
			assert.NotEqual(t, cmis.RootID, id)

			got, err := Decode(id)
			require.NoError(t, err)
			assert.Equal(t, p, got)
		})
	}
}

func TestRootSentinel(t *testing.T) {
	assert.Equal(t, cmis.RootID, Encode("/"))
	assert.Equal(t, cmis.RootID, Encode(""))

	p, err := Decode(cmis.RootID)
	require.NoError(t, err)
	assert.Equal(t, "/", p)
}

func TestDecodeFailures(t *testing.T) {
	_, err := Decode("")
	assert.True(t, cmis.IsCode(err, cmis.ErrInvalidArgument))

	_, err = Decode("!!not-base64!!")
	assert.True(t, cmis.IsCode(err, cmis.ErrNotFound))

	withNUL := base64.StdEncoding.EncodeToString([]byte("/a\x00b"))
	_, err = Decode(withNUL)
	assert.True(t, cmis.IsCode(err, cmis.ErrNotFound))
}

func TestDecodeRejectsEscapingPaths(t *testing.T) {
	for _, p := range []string{"/../etc/passwd", "/docs/../../x", ".."} {
		id := base64.StdEncoding.EncodeToString([]byte(p))
		_, err := Decode(id)
		assert.True(t, cmis.IsCode(err, cmis.ErrNotFound), p)
	}

	// Traversal that stays inside the root is canonicalized.
	id := base64.StdEncoding.EncodeToString([]byte("/docs/../other/x.txt"))
	p, err := Decode(id)
	require.NoError(t, err)
	assert.Equal(t, "/other/x.txt", p)
}

func TestCodecPaths(t *testing.T) {
	root := t.TempDir()
	c, err := New(root)
	require.NoError(t, err)

	file := filepath.Join(root, "docs", "a.txt")
	id, err := c.ID(file)
	require.NoError(t, err)
	assert.Equal(t, Encode("/docs/a.txt"), id)

	back, err := c.Path(id)
	require.NoError(t, err)
	assert.Equal(t, file, back)

	rootID, err := c.ID(root)
	require.NoError(t, err)
	assert.Equal(t, cmis.RootID, rootID)
	assert.True(t, c.IsRoot(root+string(filepath.Separator)))

	_, err = c.ID(filepath.Dir(root))
	assert.True(t, cmis.IsCode(err, cmis.ErrRuntime))
}
