package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

// RecipeImporter turns text, OCR output or a webpage into a RecipeRecord
type RecipeImporter struct {
	llm           Completer
	pages         PageReader
	cache         *ImportCache
	temperature   float64
	maxTextLength int
	log           logrus.FieldLogger
}

// NewRecipeImporter creates a new RecipeImporter. cache may be nil.
func NewRecipeImporter(llm Completer, pages PageReader, cache *ImportCache, temperature float64, maxTextLength int, log logrus.FieldLogger) *RecipeImporter {
	return &RecipeImporter{
		llm:           llm,
		pages:         pages,
		cache:         cache,
		temperature:   temperature,
		maxTextLength: maxTextLength,
		log:           log.WithField("component", "importer"),
	}
}

// ImportText extracts a recipe from pasted text or OCR output
func (s *RecipeImporter) ImportText(ctx context.Context, text string, mode types.SourceMode) (types.RecipeRecord, error) {
	mode, err := s.checkText(text, mode)
	if err != nil {
		return types.RecipeRecord{}, err
	}
	return s.importWith(ctx, mode, text, func(context.Context) (string, error) {
		return text, nil
	})
}

// ImportURL fetches a recipe webpage and extracts the recipe from it
func (s *RecipeImporter) ImportURL(ctx context.Context, pageURL string) (types.RecipeRecord, error) {
	u, err := ParsePageURL(pageURL)
	if err != nil {
		return types.RecipeRecord{}, err
	}
	return s.importWith(ctx, types.SourceURL, u.String(), func(ctx context.Context) (string, error) {
		return s.pages.Fetch(ctx, u.String())
	})
}

// CompleteText returns the unnormalized completion for text input
func (s *RecipeImporter) CompleteText(ctx context.Context, text string, mode types.SourceMode) (string, error) {
	mode, err := s.checkText(text, mode)
	if err != nil {
		return "", err
	}
	return s.complete(ctx, mode, text)
}

// CompleteURL returns the unnormalized completion for a webpage
func (s *RecipeImporter) CompleteURL(ctx context.Context, pageURL string) (string, error) {
	u, err := ParsePageURL(pageURL)
	if err != nil {
		return "", err
	}
	text, err := s.pages.Fetch(ctx, u.String())
	if err != nil {
		return "", err
	}
	return s.complete(ctx, types.SourceURL, text)
}

func (s *RecipeImporter) checkText(text string, mode types.SourceMode) (types.SourceMode, error) {
	if mode == "" {
		mode = types.SourceText
	}
	if !mode.Valid() || mode == types.SourceURL {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedSource, mode)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if s.maxTextLength > 0 && utf8.RuneCountInString(text) > s.maxTextLength {
		return "", ErrTextTooLong
	}
	return mode, nil
}

func (s *RecipeImporter) importWith(ctx context.Context, mode types.SourceMode, key string, input func(context.Context) (string, error)) (types.RecipeRecord, error) {
	log := s.log.WithField("source", mode)

	if s.cache != nil {
		record, ok, err := s.cache.Get(ctx, mode, key)
		switch {
		case err != nil:
			importCacheTotal.WithLabelValues("error").Inc()
			log.WithError(err).Warn("import cache lookup failed")
		case ok:
			importCacheTotal.WithLabelValues("hit").Inc()
			log.Debug("import served from cache")
			return record, nil
		default:
			importCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	text, err := input(ctx)
	if err != nil {
		return types.RecipeRecord{}, err
	}
	raw, err := s.complete(ctx, mode, text)
	if err != nil {
		return types.RecipeRecord{}, err
	}

	result := Normalize(raw)
	normalizationsTotal.WithLabelValues(string(mode), normalizationPath(result.Structured)).Inc()
	if !result.Structured {
		log.WithField("chars", len(raw)).Info("completion was not JSON, returning fallback record")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, mode, key, result.Record); err != nil {
			log.WithError(err).Warn("failed to cache import")
		}
	}
	return result.Record, nil
}

func (s *RecipeImporter) complete(ctx context.Context, mode types.SourceMode, text string) (string, error) {
	raw, err := s.llm.Complete(ctx, recipeMessages(mode, text), s.temperature)
	if err != nil {
		return "", fmt.Errorf("failed to complete recipe: %w", err)
	}
	return raw, nil
}
