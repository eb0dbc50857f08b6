// Package genai produces marketing hooks and sample chapters through a
// generative text service. Every call degrades to a fixed string; callers
// never see an error.
package genai

import (
	"context"
	"fmt"
	"time"

	"emarket/internal/util"

	"go.uber.org/zap"
)

// Fallback texts
const (
	HookUnavailable    = "AI services are currently unavailable. Please check your API key."
	HookFailed         = "Discover the secrets within these pages. A journey you won't forget."
	ChapterUnavailable = "Reader service unavailable."
	ChapterFailed      = "Error loading book content. Please try again later."
)

// TextGenerator generates text for a prompt
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Writer generates storefront copy
type Writer struct {
	gen    TextGenerator
	logger *zap.Logger
}

// NewWriter wraps gen. A nil gen yields the "unavailable" fallbacks.
func NewWriter(gen TextGenerator) *Writer {
	return &Writer{gen: gen, logger: util.GetLogger()}
}

// Configured reports whether a generator is attached
func (w *Writer) Configured() bool {
	return w.gen != nil
}

// GenerateHook writes a short marketing hook. ok is false when the text is a
// fallback.
func (w *Writer) GenerateHook(ctx context.Context, title, author string) (text string, ok bool) {
	prompt := fmt.Sprintf("Write a compelling, short marketing hook (max 50 words) for a book titled %q by %s. Make it sound exciting.", title, author)
	return w.generate(ctx, "hook", prompt, HookUnavailable, HookFailed)
}

// GenerateChapter writes the opening chapter of a book. ok is false when the
// text is a fallback.
func (w *Writer) GenerateChapter(ctx context.Context, title string) (text string, ok bool) {
	prompt := fmt.Sprintf("You are the actual book content generator. Write the first chapter (approx 300 words) of the book %q. Format it nicely with paragraphs.", title)
	return w.generate(ctx, "chapter", prompt, ChapterUnavailable, ChapterFailed)
}

func (w *Writer) generate(ctx context.Context, kind, prompt, unavailable, failed string) (string, bool) {
	if w.gen == nil {
		util.GenAIRequestsTotal.WithLabelValues(kind, "unconfigured").Inc()
		return unavailable, false
	}

	ctx, span := util.StartSpan(ctx, "Writer.Generate")
	defer span.End()

	start := time.Now()
	text, err := w.gen.GenerateText(ctx, prompt)
	util.GenAILatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		w.logger.Error("Error generating text",
			zap.String("kind", kind),
			zap.Error(err))
		util.GenAIRequestsTotal.WithLabelValues(kind, "failed").Inc()
		return failed, false
	}

	util.GenAIRequestsTotal.WithLabelValues(kind, "ok").Inc()
	return text, true
}
