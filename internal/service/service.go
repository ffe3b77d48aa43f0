package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ivanmolchanov/shorturl/internal/database"
	"github.com/ivanmolchanov/shorturl/internal/models"
	"github.com/ivanmolchanov/shorturl/pkg/base62"
)

// ErrInvalidURL is returned when the submitted string is not a well-formed
// absolute URL.
var ErrInvalidURL = errors.New("invalid url")

// URLRepository defines the interface for working with URLs at the business logic layer.
type URLRepository interface {
	// Create allocates a new unique id, derives the short code from it and
	// persists the mapping with a zero visit count.
	// Returns the created URL model or an error if the operation fails.
	Create(ctx context.Context, originalURL string) (*models.URL, error)

	// GetByShortCode retrieves a URL by exact short code match without
	// touching the visit counter.
	// Returns the URL model if found or an error if not found.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// IncrementVisits atomically increments the visit counter of a record.
	// Returns an error if the update cannot be applied.
	IncrementVisits(ctx context.Context, id int64) error

	// GetAll lists every stored mapping ordered by id.
	GetAll(ctx context.Context) ([]models.URL, error)
}

// URLService provides methods to manage URL shortening and redirection.
// The service uses a URLRepository interface to interact with the underlying database.
type URLService struct {
	repo    URLRepository
	logger  *slog.Logger
	baseURL string
}

// NewURLService creates a new instance of URLService with the provided
// repository, logger and public base URL used to compose short URLs.
func NewURLService(repo URLRepository, logger *slog.Logger, baseURL string) *URLService {
	return &URLService{
		repo:    repo,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ShortenURL validates the original URL and stores a new mapping for it.
// The short code is derived from the store-assigned id, so no retries are
// needed: a single persistence failure is surfaced immediately.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	if err := validateURL(originalURL); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.repo.Create(ctx, originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return u, nil
}

// Resolve retrieves the mapping for a short code and bumps its visit counter.
// Malformed codes are rejected before any store round-trip. A failed counter
// update is logged but doesn't fail the resolution: the redirect is still
// honored.
func (s *URLService) Resolve(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.Resolve"

	if err := validateShortCode(shortCode); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	if err := s.repo.IncrementVisits(ctx, u.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to increment visit count",
			slog.String("op", op),
			slog.String("short_code", shortCode),
			slog.Any("err", err),
		)
	} else {
		u.VisitCount++
	}

	return u, nil
}

// GetURLStats retrieves the mapping for a short code without changing it.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	if err := validateShortCode(shortCode); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	u, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return u, nil
}

// ListURLs retrieves every stored mapping with its statistics.
func (s *URLService) ListURLs(ctx context.Context) ([]models.URL, error) {
	const op = "service.URLService.ListURLs"

	urls, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to list urls: %w", op, err)
	}

	return urls, nil
}

// ShortURL composes the public short URL for a short code.
func (s *URLService) ShortURL(shortCode string) string {
	return s.baseURL + "/" + shortCode
}

// validateURL checks that the string is a syntactically well-formed absolute
// URL with both scheme and host present.
func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}

// validateShortCode rejects codes that can't be a Base62 encoding of an id,
// which saves a store round-trip for garbage input.
func validateShortCode(shortCode string) error {
	if _, err := base62.Decode(shortCode); err != nil {
		return fmt.Errorf("%w: %w", database.ErrInvalidShortCode, err)
	}

	return nil
}
