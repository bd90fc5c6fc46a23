// Package handler はHTTPハンドラを提供する。
package handler

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"access-error-service/internal/middleware"
	"access-error-service/internal/render"
	"access-error-service/internal/usecase"
	"access-error-service/pkg/correlation"
	"access-error-service/pkg/httputil"
)

// AccessErrorHandler はアクセス拒否時のエラーページを返す。
type AccessErrorHandler struct {
	service *usecase.ReportService
	site    render.Site
	status  int
}

// NewAccessErrorHandler は新しいAccessErrorHandlerを生成する。
func NewAccessErrorHandler(service *usecase.ReportService, site render.Site, status int) *AccessErrorHandler {
	return &AccessErrorHandler{
		service: service,
		site:    site,
		status:  status,
	}
}

// ReportAccessError は拒否イベントを記録し、相関ID付きのエラーページを返す。
// 記録先への書き込みに失敗してもページは返す。
func (h *AccessErrorHandler) ReportAccessError(w http.ResponseWriter, r *http.Request) {
	rc := RequestContextFromRequest(r, time.Now())
	report := h.service.Report(r.Context(), rc)
	ctx := correlation.WithID(r.Context(), report.Event.CorrelationID)

	var buf bytes.Buffer
	if err := render.Page(&buf, render.NewPageView(h.site, report)); err != nil {
		slog.ErrorContext(ctx, "failed to render access error page", "error", err)
		httputil.ServerError(w)
		return
	}

	middleware.WriteDenialLog(ctx, middleware.DenialLog{
		Path:        r.URL.Path,
		Status:      h.status,
		FailedSinks: report.FailedSinks,
		Timestamp:   report.Event.Timestamp,
	})
	w.Header().Set(correlation.Header, report.Event.CorrelationID)
	httputil.HTML(w, h.status, buf.Bytes())
}

// Healthz は死活監視用のレスポンスを返す。
func (h *AccessErrorHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
