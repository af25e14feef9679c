package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileSystemStorage {
	t.Helper()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{
		BasePath: t.TempDir(),
		BaseURL:  "/api/v1/invoices/files",
	})
	require.NoError(t, err)
	return storage
}

func TestFileSystemStorage_StoreAndGet(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	id := uuid.New()

	result, err := storage.Store(ctx, &StoreRequest{
		DocumentID:    id,
		InvoiceNumber: "INV-2024-001",
		PDFData:       []byte("%PDF-1.4 content"),
	})
	require.NoError(t, err)

	now := time.Now()
	expectedPath := filepath.Join(
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("INV-2024-001-%s.pdf", id),
	)
	assert.Equal(t, expectedPath, result.Path)
	assert.Equal(t, "/api/v1/invoices/files/"+expectedPath, result.URL)
	assert.Equal(t, int64(16), result.Size)

	reader, err := storage.Get(ctx, result.Path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 content"), data)
}

func TestFileSystemStorage_StoreValidation(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	_, err := storage.Store(ctx, nil)
	assert.Error(t, err)

	_, err = storage.Store(ctx, &StoreRequest{InvoiceNumber: "X", PDFData: []byte("x")})
	assert.Error(t, err, "nil document ID")

	_, err = storage.Store(ctx, &StoreRequest{DocumentID: uuid.New(), InvoiceNumber: "X"})
	assert.Error(t, err, "empty PDF data")
}

func TestFileSystemStorage_GetMissingFile(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.Get(context.Background(), "2024/01/missing.pdf")

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ErrCodeNotFound, renderErr.Code)
	assert.Equal(t, "PDF not found", renderErr.Message)
}

func TestFileSystemStorage_RejectsPathTraversal(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	paths := []string{
		"../../../etc/passwd",
		"2024/../../secret.pdf",
		"..",
	}
	for _, p := range paths {
		_, err := storage.Get(ctx, p)
		assert.Error(t, err, "Get %q", p)

		err = storage.Delete(ctx, p)
		assert.Error(t, err, "Delete %q", p)
	}
}

func TestFileSystemStorage_Delete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	result, err := storage.Store(ctx, &StoreRequest{
		DocumentID:    uuid.New(),
		InvoiceNumber: "INV-1",
		PDFData:       []byte("x"),
	})
	require.NoError(t, err)

	require.NoError(t, storage.Delete(ctx, result.Path))

	_, err = storage.Get(ctx, result.Path)
	assert.Error(t, err)
}

func TestFileSystemStorage_CleanupOlderThan(t *testing.T) {
	base := t.TempDir()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: base})
	require.NoError(t, err)
	ctx := context.Background()

	oldResult, err := storage.Store(ctx, &StoreRequest{
		DocumentID:    uuid.New(),
		InvoiceNumber: "OLD-1",
		PDFData:       []byte("old"),
	})
	require.NoError(t, err)

	newResult, err := storage.Store(ctx, &StoreRequest{
		DocumentID:    uuid.New(),
		InvoiceNumber: "NEW-1",
		PDFData:       []byte("new"),
	})
	require.NoError(t, err)

	// Backdate the old file past the retention window
	oldPath := filepath.Join(base, oldResult.Path)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, past, past))

	deleted, err := storage.CleanupOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = storage.Get(ctx, oldResult.Path)
	assert.Error(t, err, "old file should be gone")

	_, err = storage.Get(ctx, newResult.Path)
	assert.NoError(t, err, "recent file should survive")
}

func TestFileSystemStorage_GetURL(t *testing.T) {
	storage := newTestStorage(t)
	assert.Equal(t, "/api/v1/invoices/files/2024/01/x.pdf", storage.GetURL("2024/01/x.pdf"))
}

func TestArtifactFileName(t *testing.T) {
	id := uuid.MustParse("a81bc81b-dead-4e5d-abff-90865d1e13b1")

	name := ArtifactFileName("INV-2024/001", id)
	assert.Equal(t, "INV-2024_001-a81bc81b-dead-4e5d-abff-90865d1e13b1.pdf", name)
	assert.False(t, strings.ContainsAny(name, "/\\"))

	// Blank invoice numbers fall back to the document ID alone
	assert.Equal(t, "a81bc81b-dead-4e5d-abff-90865d1e13b1.pdf", ArtifactFileName("  ", id))
}
