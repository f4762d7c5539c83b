package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"legal-navigator/internal/analysis"
	"legal-navigator/internal/app"
	"legal-navigator/internal/apperror"
	"legal-navigator/internal/cache"
	"legal-navigator/internal/extract"
	"legal-navigator/internal/httputil"
	"legal-navigator/internal/recorder"
	"legal-navigator/internal/store"
)

type analyzeRequest struct {
	UseCase string `json:"useCase" validate:"required"`
}

// inquiryView is an inquiry with its stored result inlined as JSON.
type inquiryView struct {
	ID        uuid.UUID       `json:"id"`
	UseCase   string          `json:"useCase"`
	Variant   string          `json:"variant"`
	Result    json.RawMessage `json:"result"`
	Acts      []string        `json:"acts"`
	Model     string          `json:"model"`
	CreatedAt time.Time       `json:"createdAt"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Log.Warn("failed to close dependencies", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	deps.Log.Info("server listening", "addr", srv.Addr, "variant", deps.Analyzer.Variant())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		deps.Log.Error("server failed", "err", err)
	}
}

func newRouter(deps app.Deps) http.Handler {
	r := httputil.NewRouter(deps.Log, deps.Config.CORSAllowedOrigins)

	r.Post("/api/analyze", analyzeHandler(deps))
	r.Post("/api/analyze/upload", uploadHandler(deps))
	r.Get("/api/inquiries", listInquiriesHandler(deps))
	r.Get("/api/inquiries/{id}", getInquiryHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	if deps.Config.StaticDir != "" {
		r.Handle("/*", spaHandler(deps.Config.StaticDir))
	}
	return r
}

func analyzeHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.Fail(deps.Log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}
		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}
		if limit := deps.Config.MaxUseCaseLength; limit > 0 && utf8.RuneCountInString(req.UseCase) > limit {
			httputil.FailErr(deps.Log, w, &apperror.ValidationError{
				Field:  "useCase",
				Reason: fmt.Sprintf("must be at most %d characters", limit),
			})
			return
		}
		serveAnalysis(deps, w, r, req.UseCase)
	}
}

func uploadHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxFileSize+1024)

		file, header, err := r.FormFile("file")
		if err != nil {
			httputil.Fail(deps.Log, w, "file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		kind, err := extract.DetectKind(header.Filename, header.Header.Get("Content-Type"))
		if err != nil {
			httputil.Fail(deps.Log, w, err.Error(), err, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text, err := extract.Text(kind, content)
		if err != nil {
			httputil.Fail(deps.Log, w, "could not extract text from file", err, http.StatusBadRequest)
			return
		}

		useCase := extract.Clip(text, deps.Config.MaxUseCaseLength)
		deps.Log.Info("extracted use case from upload", "filename", header.Filename, "kind", kind, "chars", utf8.RuneCountInString(useCase))
		serveAnalysis(deps, w, r, useCase)
	}
}

// serveAnalysis runs the pipeline for useCase, consulting the cache first and
// recording the answer afterwards. Cache and recorder failures never fail
// the request.
func serveAnalysis(deps app.Deps, w http.ResponseWriter, r *http.Request, useCase string) {
	ctx := r.Context()
	log := deps.Log.With("request_id", middleware.GetReqID(ctx))

	if strings.TrimSpace(useCase) == "" {
		httputil.FailErr(log, w, &apperror.ValidationError{Field: "useCase", Reason: "must not be empty"})
		return
	}

	cacheKey := cache.GenerateCacheKey(deps.Analyzer.Variant(), deps.Config.LLMModel+"/"+deps.Config.Family(), useCase)
	if cached, err := deps.Cache.GetResult(ctx, cacheKey); err != nil {
		log.Warn("cache lookup failed", "err", err)
	} else if cached != nil {
		log.Info("cache hit", "variant", cached.Variant)
		httputil.WriteJSON(w, http.StatusOK, cached.Body())
		return
	}

	res, err := deps.Analyzer.Analyze(ctx, analysis.Request{UseCase: useCase})
	if err != nil {
		httputil.FailErr(log, w, err)
		return
	}

	if err := deps.Cache.SetResult(ctx, cacheKey, res, deps.Config.CacheTTL); err != nil {
		log.Warn("failed to cache result", "err", err)
	}
	record(ctx, deps, log, useCase, res)

	httputil.WriteJSON(w, http.StatusOK, res.Body())
}

func record(ctx context.Context, deps app.Deps, log *slog.Logger, useCase string, res analysis.Result) {
	inq, err := recorder.NewInquiry(useCase, res)
	if err != nil {
		log.Warn("failed to build inquiry", "err", err)
		return
	}
	if err := deps.Recorder.Record(ctx, inq); err != nil {
		log.Warn("failed to record inquiry", "id", inq.ID, "err", err)
	}
}

func listInquiriesHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			httputil.Fail(deps.Log, w, "inquiry history is disabled", nil, http.StatusServiceUnavailable)
			return
		}
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				httputil.Fail(deps.Log, w, "limit must be a non-negative integer", err, http.StatusBadRequest)
				return
			}
			limit = n
		}

		inquiries, err := deps.Store.ListInquiries(r.Context(), store.ListFilter{
			Limit: limit,
			Act:   r.URL.Query().Get("act"),
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to list inquiries", err, http.StatusInternalServerError)
			return
		}

		views := make([]inquiryView, len(inquiries))
		for i, inq := range inquiries {
			views[i] = toView(inq)
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"inquiries": views})
	}
}

func getInquiryHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Store == nil {
			httputil.Fail(deps.Log, w, "inquiry history is disabled", nil, http.StatusServiceUnavailable)
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid inquiry id", err, http.StatusBadRequest)
			return
		}
		inq, err := deps.Store.GetInquiry(r.Context(), id)
		if errors.Is(err, store.ErrInquiryNotFound) {
			httputil.Fail(deps.Log, w, "inquiry not found", err, http.StatusNotFound)
			return
		}
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to load inquiry", err, http.StatusInternalServerError)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, toView(inq))
	}
}

func toView(inq store.Inquiry) inquiryView {
	result := json.RawMessage(inq.Result)
	if !json.Valid(result) {
		result, _ = json.Marshal(inq.Result)
	}
	return inquiryView{
		ID:        inq.ID,
		UseCase:   inq.UseCase,
		Variant:   inq.Variant,
		Result:    result,
		Acts:      inq.Acts,
		Model:     inq.Model,
		CreatedAt: inq.CreatedAt,
	}
}

// spaHandler serves the built front end, answering unknown paths with
// index.html so client-side routes survive a reload.
func spaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		files.ServeHTTP(w, r)
	})
}
