package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestStoreImage(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "/uploads/")
	require.NoError(t, err)

	ref, err := ls.Store(fileHeader(t, "rex.bin", pngBytes), "pets", KindImage)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "pets/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.Equal(t, "/uploads/"+ref, ls.URL(ref))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	require.NoError(t, ls.Delete(ref))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ls.Delete(ref), "deleting twice is fine")
}

func TestStoreRejectsWrongKind(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = ls.Store(fileHeader(t, "photo.jpg", pdfBytes), "publications", KindImage)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ls.Store(fileHeader(t, "report.pdf", pngBytes), "publications", KindPDF)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	ref, err := ls.Store(fileHeader(t, "report.pdf", pdfBytes), "publications", KindPDF)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, ".pdf"))
}

func TestStoreNilHeader(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	ref, err := ls.Store(nil, "pets", KindImage)
	require.NoError(t, err)
	assert.Empty(t, ref)
	assert.Empty(t, ls.URL(""))
}

func TestDeleteStaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "keep.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o600))
	t.Cleanup(func() { _ = os.Remove(outside) })

	ls, err := NewLocalStorage(root, "")
	require.NoError(t, err)

	require.NoError(t, ls.Delete("../keep.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)

	assert.ErrorIs(t, ls.Delete("/"), ErrInvalidReference)
}
