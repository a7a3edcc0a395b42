package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagmawi/collegehub/core"
)

var pdfContent = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func newStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestLocalStore_Save(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	info, err := store.Save(ctx, core.SurfaceReceipt, "receipt.pdf", strings.NewReader(pdfContent))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.ContentType)
	assert.Equal(t, int64(len(pdfContent)), info.Size)
	assert.True(t, strings.HasPrefix(info.Path, core.SurfaceReceipt+"/"))
	assert.True(t, strings.HasSuffix(info.Path, ".pdf"))

	rc, got, err := store.Open(ctx, info.Path)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pdfContent, string(data))
	assert.Equal(t, "application/pdf", got.ContentType)
}

func TestLocalStore_Save_sniffsContent(t *testing.T) {
	store := newStore(t)

	// an executable renamed to .pdf is judged by its bytes, not its name
	elf := "\x7fELF\x02\x01\x01\x00" + strings.Repeat("\x00", 64)
	_, err := store.Save(context.Background(), core.SurfaceReceipt, "totally-a-receipt.pdf", strings.NewReader(elf))
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestLocalStore_Save_unknownSurface(t *testing.T) {
	store := newStore(t)

	_, err := store.Save(context.Background(), "attic", "x.pdf", strings.NewReader(pdfContent))
	assert.Error(t, err)
}

func TestLocalStore_Open_refusesTraversal(t *testing.T) {
	store := newStore(t)

	for _, path := range []string{"../etc/passwd", "/etc/passwd", "receipt/../../etc/passwd"} {
		_, _, err := store.Open(context.Background(), path)
		assert.True(t, core.IsNotFound(err), path)
	}
}

func TestLocalStore_Delete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	info, err := store.Save(ctx, core.SurfaceReceipt, "receipt.pdf", strings.NewReader(pdfContent))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, info.Path))
	_, _, err = store.Open(ctx, info.Path)
	assert.True(t, core.IsNotFound(err))

	// deleting a missing file is not an error
	assert.NoError(t, store.Delete(ctx, info.Path))
}
