package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"emarket/internal/genai"
	"emarket/internal/models"
	"emarket/internal/storage"
	"emarket/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGenerator struct {
	text  string
	err   error
	calls int
}

func (g *countingGenerator) GenerateText(context.Context, string) (string, error) {
	g.calls++
	return g.text, g.err
}

func TestPreviewCachesGeneratedHook(t *testing.T) {
	sf, st, _ := newTestStorefront(t)
	gen := &countingGenerator{text: "Money is behaviour."}
	rs := NewReadingService(sf, st, genai.NewWriter(gen), storage.NewMemoryStore(), 0)
	ctx := context.Background()

	text, err := rs.Preview(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Money is behaviour.", text)

	text, err = rs.Preview(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Money is behaviour.", text)
	assert.Equal(t, 1, gen.calls)

	assert.Equal(t, "Money is behaviour.", store.Load(ctx, st, store.HookKey("1"), ""))
}

func TestPreviewDoesNotCacheFallback(t *testing.T) {
	sf, st, _ := newTestStorefront(t)
	gen := &countingGenerator{err: errors.New("quota")}
	rs := NewReadingService(sf, st, genai.NewWriter(gen), storage.NewMemoryStore(), 0)
	ctx := context.Background()

	text, err := rs.Preview(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, genai.HookFailed, text)

	_, _ = rs.Preview(ctx, "1")
	assert.Equal(t, 2, gen.calls)
}

func TestPreviewUnknownBook(t *testing.T) {
	sf, st, _ := newTestStorefront(t)
	rs := NewReadingService(sf, st, genai.NewWriter(nil), storage.NewMemoryStore(), 0)

	_, err := rs.Preview(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrBookNotFound)
}

func TestChapterRequiresOwnership(t *testing.T) {
	sf, st, _ := newTestStorefront(t)
	rs := NewReadingService(sf, st, genai.NewWriter(nil), storage.NewMemoryStore(), 0)
	ctx := context.Background()

	_, err := rs.Chapter(ctx, "u1", "2")
	assert.ErrorIs(t, err, models.ErrNotOwned)

	_, err = sf.RecordPurchase(ctx, "u1", "2", "proof/a.png", models.PurchaseStatusApproved)
	require.NoError(t, err)

	_, err = rs.Chapter(ctx, "u2", "2")
	assert.ErrorIs(t, err, models.ErrNotOwned)

	text, err := rs.Chapter(ctx, "u1", "2")
	require.NoError(t, err)
	assert.Equal(t, genai.ChapterUnavailable, text)
}

func TestDownloadURL(t *testing.T) {
	sf, st, _ := newTestStorefront(t)
	objects := storage.NewMemoryStore()
	rs := NewReadingService(sf, st, genai.NewWriter(nil), objects, 0)
	ctx := context.Background()

	_, err := rs.DownloadURL(ctx, "u1", "1")
	assert.ErrorIs(t, err, models.ErrNotOwned)

	_, err = sf.RecordPurchase(ctx, "u1", "1", "proof/a.png", models.PurchaseStatusApproved)
	require.NoError(t, err)
	_, err = rs.DownloadURL(ctx, "u2", "1")
	assert.ErrorIs(t, err, models.ErrNotOwned)
	link, err := rs.DownloadURL(ctx, "u1", "1")
	require.NoError(t, err)
	assert.Equal(t, "seed/psychology-of-money.pdf", link)

	key := storage.NewKey(storage.KindPDF, "beacon.pdf")
	require.NoError(t, objects.Put(ctx, key, bytes.NewReader([]byte("%PDF")), 4, "application/pdf"))
	req := validListing()
	req.PdfURL = key
	book, err := sf.ListBook(ctx, req)
	require.NoError(t, err)
	_, err = sf.RecordPurchase(ctx, "u1", book.ID, "proof/b.png", models.PurchaseStatusApproved)
	require.NoError(t, err)

	link, err = rs.DownloadURL(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Contains(t, link, key)
}
