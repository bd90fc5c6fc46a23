// Package middleware はリクエスト単位のログ出力を提供する。
package middleware

import (
	"context"
	"log/slog"
	"time"
)

// DenialLog はアクセス拒否イベント1件の処理結果ログの項目。
type DenialLog struct {
	Path        string
	Status      int
	FailedSinks []string
	Timestamp   time.Time // 記録テキストと同じイベント時刻
}

// WriteDenialLog はアクセス拒否イベントの処理結果を出力する。
// 相関IDは ctx から TraceHandler が付与する。
func WriteDenialLog(ctx context.Context, l DenialLog) {
	result := "SUCCESS"
	if len(l.FailedSinks) > 0 {
		result = "SINK_FAILED"
	}
	slog.InfoContext(ctx, "access error reported",
		"path", l.Path,
		"status", l.Status,
		"sinks_failed", l.FailedSinks,
		"result", result,
		"timestamp", l.Timestamp.Format(time.RFC3339),
	)
}
