package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"access-error-service/pkg/httputil"
)

// NewRouter はルーターを生成する。metrics が nil の場合 /metrics は公開しない。
func NewRouter(h *AccessErrorHandler, denialPath string, metrics http.Handler) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// ルート定義
	r.Get(denialPath, h.ReportAccessError)
	r.Post(denialPath, h.ReportAccessError)
	r.Get("/healthz", h.Healthz)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	})

	return r
}
