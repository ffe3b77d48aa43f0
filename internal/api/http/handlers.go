package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/ivanmolchanov/shorturl/internal/database"
	"github.com/ivanmolchanov/shorturl/internal/models"
	"github.com/ivanmolchanov/shorturl/internal/service"
	"github.com/ivanmolchanov/shorturl/pkg/response"
)

// handlePing handles health check requests to ensure the server is running.
func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "pong")
}

// shortenRequest represents the request payload for shortening a URL.
type shortenRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// urlResponse represents the response payload for a URL mapping.
type urlResponse struct {
	ID         int64     `json:"id"`
	ShortCode  string    `json:"short_code"`
	ShortURL   string    `json:"short_url"`
	URL        string    `json:"url"`
	VisitCount int64     `json:"visit_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// toURLResponse converts a URL model from the business layer into a response payload.
func toURLResponse(url *models.URL, shortURL string) urlResponse {
	return urlResponse{
		ID:         url.ID,
		ShortCode:  url.ShortCode,
		ShortURL:   shortURL,
		URL:        url.OriginalURL,
		VisitCount: url.VisitCount,
		CreatedAt:  url.CreatedAt,
	}
}

// handleShortenURL handles POST requests to shorten a URL.
//
// The request must contain a well-formed absolute URL. The handler validates
// the input, calls the URL shortening service, and returns the generated
// short code with relevant metadata.
func handleShortenURL(svc URLService, validate *validator.Validate) http.HandlerFunc {
	const op = "api.http.handleShortenURL"

	return func(w http.ResponseWriter, r *http.Request) {
		var req shortenRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			if errors.Is(err, io.EOF) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.EmptyRequestBodyResponse)
				return
			}

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.BadRequestResponse)
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationErrorResponse(err))
			return
		}

		url, err := svc.ShortenURL(r.Context(), req.URL)
		if err != nil {
			if errors.Is(err, service.ErrInvalidURL) {
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, response.InvalidURLResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, toURLResponse(url, svc.ShortURL(url.ShortCode)))
	}
}

// handleRedirect handles GET requests to redirect a short code to its
// original URL.
//
// Malformed and unknown codes are both answered with a 404, since neither
// can be resolved. On success the visitor is redirected with a 307 so the
// request method is preserved.
func handleRedirect(svc URLService) http.HandlerFunc {
	const op = "api.http.handleRedirect"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.Resolve(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) || errors.Is(err, database.ErrInvalidShortCode) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		http.Redirect(w, r, url.OriginalURL, http.StatusTemporaryRedirect)
	}
}

// handleGetURLStats handles GET requests to retrieve usage statistics for a shortened URL.
//
// The handler fetches the visit count and other metadata for the given short
// code, returning the data or a 404 error if the URL doesn't exist.
func handleGetURLStats(svc URLService) http.HandlerFunc {
	const op = "api.http.handleGetURLStats"

	return func(w http.ResponseWriter, r *http.Request) {
		shortCode := chi.URLParam(r, "shortCode")

		url, err := svc.GetURLStats(r.Context(), shortCode)
		if err != nil {
			if errors.Is(err, database.ErrURLNotFound) || errors.Is(err, database.ErrInvalidShortCode) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.ResourceNotFoundResponse)
				return
			}

			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, toURLResponse(url, svc.ShortURL(url.ShortCode)))
	}
}

// handleListURLs handles GET requests to retrieve statistics for all stored URLs.
func handleListURLs(svc URLService) http.HandlerFunc {
	const op = "api.http.handleListURLs"

	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := svc.ListURLs(r.Context())
		if err != nil {
			httplog.LogEntrySetFields(r.Context(), map[string]any{"op": op, "err": err})

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.ServerErrorResponse)
			return
		}

		data := make([]urlResponse, len(urls))
		for i := range urls {
			data[i] = toURLResponse(&urls[i], svc.ShortURL(urls[i].ShortCode))
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, data)
	}
}
