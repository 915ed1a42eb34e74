package filex

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_FromData(t *testing.T) {
	n, err := Normalize(Input{Data: []byte("hello"), Name: "a.txt"})
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), n.Data)
	require.Equal(t, "a.txt", n.Name)
	require.Equal(t, "text/plain", n.ContentType)
}

func TestNormalize_FromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o600))

	n, err := Normalize(Input{Path: path})
	require.NoError(t, err)
	require.Equal(t, "doc.json", n.Name)
	require.Equal(t, "application/json", n.ContentType)
	require.Equal(t, []byte(`{"a":1}`), n.Data)
}

func TestNormalize_FromReader_DefaultName(t *testing.T) {
	n, err := Normalize(Input{Reader: strings.NewReader("abc")})
	require.NoError(t, err)
	require.Equal(t, "untitled", n.Name)
	require.Equal(t, []byte("abc"), n.Data)
}

func TestNormalize_EmptyInput(t *testing.T) {
	_, err := Normalize(Input{})
	require.Error(t, err)
}

func TestNormalize_ContentTypeOverride(t *testing.T) {
	n, err := Normalize(Input{Data: []byte("x"), Name: "a.bin", ContentType: "application/x-custom"})
	require.NoError(t, err)
	require.Equal(t, "application/x-custom", n.ContentType)
}

func TestNormalize_ImageDimensions(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	require.NoError(t, png.Encode(&buf, img))

	n, err := Normalize(Input{Data: buf.Bytes(), Name: "pic.png"})
	require.NoError(t, err)
	require.Equal(t, "image/png", n.ContentType)
	require.Equal(t, 4, n.Width)
	require.Equal(t, 3, n.Height)
}

func TestDetectContentType_SniffFallback(t *testing.T) {
	require.Equal(t, "image/png", DetectContentType("noext", []byte("\x89PNG\r\n\x1a\n")))
	require.Equal(t, "text/plain", DetectContentType("noext", []byte("plain old text")))
}
