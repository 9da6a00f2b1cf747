package httpapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/egorsmkv/kulyk-go/internal/engine"
	"github.com/egorsmkv/kulyk-go/internal/langdetect"
	"github.com/egorsmkv/kulyk-go/internal/translator"
	"github.com/egorsmkv/kulyk-go/pkg/types"
)

//go:embed static/index.html
var indexPage []byte

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Translate(ctx context.Context, dir types.Direction, text string, maxNewTokens int) (types.TranslationResult, error)
	Status() types.StatusResponse
	Ready() bool
}

// Options configure the HTTP layer.
type Options struct {
	Logger zerolog.Logger
	// MaxBodyBytes caps JSON request bodies; zero means 1 MiB.
	MaxBodyBytes int64
	// CORSOrigins restricts allowed origins; empty allows any, matching
	// the permissive default the UI relies on.
	CORSOrigins []string
	// DetectLanguage fills in a missing source_lang from the text.
	DetectLanguage bool
}

func (o Options) maxBody() int64 {
	if o.MaxBodyBytes > 0 {
		return o.MaxBodyBytes
	}
	return 1 << 20
}

// NewMux builds the router: POST /translate plus status, health, metrics
// and a small static page for manual use.
func NewMux(svc Service, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexPage)
	})

	r.Post("/translate", translateHandler(svc, opts))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func translateHandler(svc Service, opts Options) http.HandlerFunc {
	log := opts.Logger
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, opts.maxBody())
		var req types.TranslateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.TargetLang) == "" {
			writeJSONError(w, http.StatusBadRequest, "target_lang is required")
			return
		}
		if strings.TrimSpace(req.SourceLang) == "" {
			if !opts.DetectLanguage {
				writeJSONError(w, http.StatusBadRequest, "source_lang is required")
				return
			}
			detected := langdetect.DetectISO6391(req.Text)
			if detected == "" {
				writeJSONError(w, http.StatusBadRequest, "source_lang is required (detection inconclusive)")
				return
			}
			req.SourceLang = detected
		} else if opts.DetectLanguage {
			// The declared language wins, but a disagreement with the
			// detector is worth a trace for debugging client issues.
			if d := langdetect.DetectISO6391(req.Text); d != "" && !strings.EqualFold(d, strings.TrimSpace(req.SourceLang)) {
				log.Debug().Str("declared", req.SourceLang).Str("detected", d).Msg("source language mismatch")
			}
		}

		dir, err := types.ParseDirection(req.SourceLang, req.TargetLang)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		rid := middleware.GetReqID(r.Context())
		start := time.Now()
		log.Info().Str("request_id", rid).Str("direction", dir.String()).Msg("translate start")

		res, err := svc.Translate(r.Context(), dir, req.Text, req.MaxTokens)
		if err != nil {
			// Client gone; nothing useful to write.
			if r.Context().Err() != nil {
				log.Info().Str("request_id", rid).Dur("dur", time.Since(start)).Msg("translate canceled")
				return
			}
			status := statusForError(err)
			if status == http.StatusTooManyRequests {
				incrementBackpressure(dir.String())
			}
			writeJSONError(w, status, err.Error())
			log.Info().Str("request_id", rid).Int("status", status).
				Dur("dur", time.Since(start)).Err(err).Msg("translate end")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.TranslateResponse{
			TranslatedText:  res.Text,
			SourceLang:      dir.SourceLang(),
			TargetLang:      dir.TargetLang(),
			Truncated:       res.Truncated,
			TokensGenerated: res.TokensGenerated,
			DurationMS:      res.Duration.Milliseconds(),
		})
		log.Info().Str("request_id", rid).Int("status", http.StatusOK).
			Int("tokens", res.TokensGenerated).Dur("dur", time.Since(start)).
			Msg("translate end")
	}
}

// statusForError maps well-known translator errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case translator.IsUnsupportedDirection(err):
		return http.StatusBadRequest
	case translator.IsDirectionUnavailable(err), engine.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case translator.IsTooBusy(err):
		return http.StatusTooManyRequests
	case translator.IsCapacityExceeded(err):
		return http.StatusRequestEntityTooLarge
	case translator.IsTokenizeFailure(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
