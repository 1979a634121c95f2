package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/zepiy/stockmeta/internal/batch"
	"github.com/zepiy/stockmeta/internal/config"
	"github.com/zepiy/stockmeta/internal/intake"
)

type Handler struct {
	// ctx bounds background batch runs; it outlives individual requests
	ctx      context.Context
	orch     *batch.Orchestrator
	fetcher  *intake.Fetcher
	cfg      config.Config
	validate *validator.Validate
}

func New(ctx context.Context, cfg config.Config, orch *batch.Orchestrator) *Handler {
	return &Handler{
		ctx:      ctx,
		orch:     orch,
		fetcher:  intake.NewFetcher(cfg.MaxUploadBytes()),
		cfg:      cfg,
		validate: validator.New(),
	}
}

// Routes returns the HTTP API router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, requestLogger)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", h.HandleUpload)

		r.Route("/queue", func(r chi.Router) {
			r.Get("/", h.HandleQueue)
			r.Delete("/", h.HandleClear)
			r.Delete("/{index}", h.HandleRemove)
			r.Post("/select/{index}", h.HandleSelect)
		})

		r.Post("/generate/{index}", h.HandleGenerateOne)
		r.Post("/generate-all", h.HandleGenerateAll)
		r.Get("/progress", h.HandleProgress)

		r.Get("/export/archive", h.HandleArchive)
		r.Get("/export/{index}/{site}", h.HandleSiteCSV)
		r.Get("/assets/{index}", h.HandleAssetDownload)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Warn(message, "status", code)
	}
	h.writeJSON(w, code, map[string]string{"error": message})
}

// indexParam parses the {index} path parameter
func (h *Handler) indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, "Invalid index: "+chi.URLParam(r, "index"), http.StatusBadRequest)
		return 0, false
	}
	return index, true
}

// refuseWhileBusy rejects queue mutations while a generation is in flight
func (h *Handler) refuseWhileBusy(w http.ResponseWriter) bool {
	if h.orch.Busy() {
		h.writeError(w, batch.ErrBusy.Error(), http.StatusConflict)
		return true
	}
	return false
}
