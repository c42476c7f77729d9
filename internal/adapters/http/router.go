package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"
	"github.com/botwa2000/bonifatus-dms-sub000/internal/core/ports"
)

const defaultMaxUploadBytes = 50 << 20

// RouterOptions configure the routes a process exposes. Nil members leave the
// matching route unmounted, so the worker serves only health and metrics.
type RouterOptions struct {
	Analyzer       ports.DocumentAnalyzer
	Submitter      ports.DocumentSubmitter
	Metrics        http.Handler
	Healthy        func() bool
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type Router struct {
	opts   RouterOptions
	logger *slog.Logger
}

func NewRouter(opts RouterOptions) *Router {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{opts: opts, logger: logger}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware(rt.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", rt.healthz)
	if rt.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.opts.Metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		if rt.opts.Analyzer != nil {
			r.Post("/analyze", rt.analyzeDocument)
		}
		if rt.opts.Submitter != nil {
			r.Post("/documents", rt.submitDocument)
		}
	})
	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	if rt.opts.Healthy != nil && !rt.opts.Healthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyzeDocument runs the pipeline synchronously on a multipart upload.
func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	upload, err := rt.readUpload(w, r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(upload.body)
	upload.body.Close()
	if err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrInvalidInput, "read upload", err))
		return
	}

	result, err := rt.opts.Analyzer.Analyze(r.Context(), domain.AnalyzeRequest{
		Data:         data,
		MimeType:     upload.req.MimeType,
		Language:     upload.req.Language,
		UserID:       upload.req.UserID,
		MustKeep:     upload.req.MustKeep,
		MinFrequency: upload.req.MinFrequency,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) submitDocument(w http.ResponseWriter, r *http.Request) {
	upload, err := rt.readUpload(w, r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	defer upload.body.Close()

	job, err := rt.opts.Submitter.Submit(r.Context(), upload.req, upload.body)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

type upload struct {
	req  ports.SubmitRequest
	body io.ReadCloser
}

// readUpload expects the document in multipart field "file"; the other form
// fields carry the analysis options.
func (rt *Router) readUpload(w http.ResponseWriter, r *http.Request) (upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return upload{}, domain.WrapError(domain.ErrInvalidInput, "parse upload", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return upload{}, domain.WrapError(domain.ErrInvalidInput, "parse upload", fmt.Errorf("multipart field 'file' is required"))
	}

	req := ports.SubmitRequest{
		Filename: header.Filename,
		MimeType: strings.TrimSpace(r.FormValue("mime_type")),
		Language: strings.TrimSpace(r.FormValue("language")),
		UserID:   strings.TrimSpace(r.FormValue("user_id")),
		MustKeep: splitList(r.FormValue("must_keep")),
	}
	if req.MimeType == "" {
		req.MimeType = header.Header.Get("Content-Type")
	}
	if raw := strings.TrimSpace(r.FormValue("min_frequency")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			file.Close()
			return upload{}, domain.WrapError(domain.ErrInvalidInput, "parse upload", fmt.Errorf("invalid min_frequency %q", raw))
		}
		req.MinFrequency = n
	}
	return upload{req: req, body: file}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("request failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": domain.KindName(err)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
