// Package usecase はアプリケーションのユースケースを実装する。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"access-error-service/internal/domain"
	"access-error-service/pkg/correlation"
)

const (
	recordDelimiter = "-----"
	tracerName      = "access-error-service/usecase"

	// DefaultSinkTimeout は記録先1件あたりの追記の上限時間。
	DefaultSinkTimeout = 2 * time.Second
)

// LogSink は整形済み記録の追記先のインターフェース。
type LogSink interface {
	Name() string
	Append(ctx context.Context, event *domain.AccessDenialEvent, record string) error
}

// MetricsRecorder はメトリクス記録のインターフェース。
type MetricsRecorder interface {
	EventReported()
	SinkFailed(sink string)
}

type nopMetrics struct{}

func (nopMetrics) EventReported()    {}
func (nopMetrics) SinkFailed(string) {}

// ReportService はアクセス拒否イベントの記録を行う。
type ReportService struct {
	sinks       []LogSink
	metrics     MetricsRecorder
	now         func() time.Time
	newID       func() string
	sinkTimeout time.Duration
}

// NewReportService は新しいReportServiceを生成する。metrics は nil でもよい。
func NewReportService(metrics MetricsRecorder, sinks ...LogSink) *ReportService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &ReportService{
		sinks:       sinks,
		metrics:     metrics,
		now:         time.Now,
		newID:       uuid.NewString,
		sinkTimeout: DefaultSinkTimeout,
	}
}

// WithSinkTimeout は記録先1件あたりの追記の上限時間を設定する。0以下の場合は変更しない。
func (s *ReportService) WithSinkTimeout(d time.Duration) *ReportService {
	if d > 0 {
		s.sinkTimeout = d
	}
	return s
}

// WithClock はテスト用に時刻の取得元を差し替える。
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// WithIDGenerator はテスト用に相関IDの生成元を差し替える。
func (s *ReportService) WithIDGenerator(newID func() string) *ReportService {
	s.newID = newID
	return s
}

// NewEvent は現在時刻と新しい相関IDでイベントを生成する。
func (s *ReportService) NewEvent(rc *domain.RequestContext) *domain.AccessDenialEvent {
	if rc == nil {
		rc = domain.NewRequestContext()
	}
	return &domain.AccessDenialEvent{
		Timestamp:      s.now(),
		CorrelationID:  s.newID(),
		RequestContext: rc,
	}
}

// FormatRecord はイベントを記録用テキストに整形する。
func FormatRecord(event *domain.AccessDenialEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] Access Error:\n", event.TimestampString(), event.CorrelationID)
	b.WriteString(recordDelimiter + "\n")
	event.RequestContext.Each(func(key, value string) {
		fmt.Fprintf(&b, "    [%s] --> [%s]\n", key, value)
	})
	b.WriteString(recordDelimiter + "\n")
	return b.String()
}

// appendWithTimeout は記録先へ追記し、sinkTimeout を過ぎたら結果を待たずに失敗とする。
// クライアントの切断ではキャンセルしない。
func (s *ReportService) appendWithTimeout(ctx context.Context, sink LogSink, event *domain.AccessDenialEvent, record string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.sinkTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- sink.Append(ctx, event, record)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%w: %s append did not finish within %s: %v",
			domain.ErrLogSinkUnavailable, sink.Name(), s.sinkTimeout, ctx.Err())
	}
}

// Report はイベントを生成し、全ての記録先へ追記する。
// 記録先への書き込み失敗は呼び出し元へ返さず、ログとメトリクスにのみ残す。
func (s *ReportService) Report(ctx context.Context, rc *domain.RequestContext) *domain.Report {
	event := s.NewEvent(rc)
	ctx = correlation.WithID(ctx, event.CorrelationID)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "ReportService.Report")
	defer span.End()
	span.SetAttributes(
		attribute.String("correlation_id", event.CorrelationID),
		attribute.Int("request_context.entries", event.RequestContext.Len()),
	)

	report := &domain.Report{
		Event:  event,
		Record: FormatRecord(event),
	}

	for _, sink := range s.sinks {
		if err := s.appendWithTimeout(ctx, sink, event, report.Record); err != nil {
			slog.ErrorContext(ctx, "cannot write to log sink",
				"operation", "report",
				"sink", sink.Name(),
				"error", err,
			)
			span.RecordError(err)
			s.metrics.SinkFailed(sink.Name())
			report.FailedSinks = append(report.FailedSinks, sink.Name())
		}
	}
	if len(report.FailedSinks) > 0 {
		span.SetStatus(codes.Error, "log sink write failed")
	}

	s.metrics.EventReported()
	return report
}
