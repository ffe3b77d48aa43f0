package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"

	"github.com/ivanmolchanov/shorturl/internal/models"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL validates and stores the original URL.
	// It returns the created mapping with its short code, or an error if the
	// URL is invalid or the operation fails.
	ShortenURL(ctx context.Context, originalURL string) (*models.URL, error)

	// Resolve retrieves the mapping for a short code and increments its
	// visit counter. It returns an error if the code is malformed or unknown.
	Resolve(ctx context.Context, shortCode string) (*models.URL, error)

	// GetURLStats retrieves the mapping for a short code without touching
	// the visit counter.
	GetURLStats(ctx context.Context, shortCode string) (*models.URL, error)

	// ListURLs retrieves every stored mapping.
	ListURLs(ctx context.Context) ([]models.URL, error)

	// ShortURL composes the public short URL for a short code.
	ShortURL(shortCode string) string
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, urlSvc URLService) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	validate := getValidate()

	r.Get("/ping", handlePing)
	r.Post("/shorten", handleShortenURL(urlSvc, validate))
	r.Get("/stats", handleListURLs(urlSvc))
	r.Get("/stats/{shortCode}", handleGetURLStats(urlSvc))
	r.Get("/{shortCode}", handleRedirect(urlSvc))

	return r
}
