package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"emarket/internal/genai"
	"emarket/internal/models"
	"emarket/internal/storage"
	"emarket/internal/store"
	"emarket/internal/util"

	"go.uber.org/zap"
)

// DefaultDownloadExpiry bounds the lifetime of presigned eBook links
const DefaultDownloadExpiry = 15 * time.Minute

// ReadingService serves previews, sample chapters and downloads
type ReadingService struct {
	storefront     *Storefront
	store          *store.Store
	writer         *genai.Writer
	objects        storage.ObjectStore
	downloadExpiry time.Duration
	logger         *zap.Logger
}

// NewReadingService creates a reading service
func NewReadingService(
	storefront *Storefront,
	st *store.Store,
	writer *genai.Writer,
	objects storage.ObjectStore,
	downloadExpiry time.Duration,
) *ReadingService {
	if downloadExpiry <= 0 {
		downloadExpiry = DefaultDownloadExpiry
	}
	return &ReadingService{
		storefront:     storefront,
		store:          st,
		writer:         writer,
		objects:        objects,
		downloadExpiry: downloadExpiry,
		logger:         util.GetLogger(),
	}
}

// Preview returns the marketing hook of a book, generating it on first use
func (s *ReadingService) Preview(ctx context.Context, bookID string) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReadingService.Preview")
	defer span.End()

	book, err := s.storefront.Book(bookID)
	if err != nil {
		return "", err
	}
	return s.Hook(ctx, book), nil
}

// Hook returns the cached hook of book or generates one. Only generated
// text is cached so fallbacks are retried on the next request.
func (s *ReadingService) Hook(ctx context.Context, book models.Book) string {
	if cached := store.Load(ctx, s.store, store.HookKey(book.ID), ""); cached != "" {
		return cached
	}

	text, ok := s.writer.GenerateHook(ctx, book.Title, book.Author)
	if ok {
		if err := s.store.Save(ctx, store.HookKey(book.ID), text); err != nil {
			s.logger.Warn("Failed to cache hook", zap.String("book_id", book.ID), zap.Error(err))
		}
	}
	return text
}

// Chapter returns the opening chapter of a book buyerID owns
func (s *ReadingService) Chapter(ctx context.Context, buyerID, bookID string) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReadingService.Chapter")
	defer span.End()

	book, err := s.ownedBook(buyerID, bookID)
	if err != nil {
		return "", err
	}
	text, _ := s.writer.GenerateChapter(ctx, book.Title)
	return text, nil
}

// DownloadURL returns a link to the eBook of a book buyerID owns. Stored uploads
// are presigned; external references are returned as is.
func (s *ReadingService) DownloadURL(ctx context.Context, buyerID, bookID string) (string, error) {
	ctx, span := util.StartSpan(ctx, "ReadingService.DownloadURL")
	defer span.End()

	book, err := s.ownedBook(buyerID, bookID)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(book.PdfURL, storage.KindPDF+"/") {
		return book.PdfURL, nil
	}

	link, err := s.objects.PresignGet(ctx, book.PdfURL, s.downloadExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}
	return link, nil
}

func (s *ReadingService) ownedBook(buyerID, bookID string) (models.Book, error) {
	book, err := s.storefront.Book(bookID)
	if err != nil {
		return models.Book{}, err
	}
	if !s.storefront.IsOwned(buyerID, bookID) {
		return models.Book{}, models.ErrNotOwned
	}
	return book, nil
}
