// Package sink は記録テキストの追記先を提供する。
package sink

import (
	"context"
	"fmt"
	"os"
	"sync"

	"access-error-service/internal/domain"
)

// FileSink は記録テキストをファイルへ追記する。
// 追記ごとにファイルを開き直し、1イベント分を1回のWriteで書き込む。
type FileSink struct {
	mu   sync.Mutex
	path string
	perm os.FileMode
}

// NewFileSink は新しいFileSinkを生成する。ファイルは最初の追記時に作成される。
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, perm: 0o640}
}

// Name は記録先の名前を返す。
func (s *FileSink) Name() string {
	return "file"
}

// Path は追記先のファイルパスを返す。
func (s *FileSink) Path() string {
	return s.path
}

// Append は記録テキストをファイル末尾に追記する。
func (s *FileSink) Append(ctx context.Context, event *domain.AccessDenialEvent, record string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, s.perm)
	if err != nil {
		return fmt.Errorf("%w: cannot write to file '%s': %v", domain.ErrLogSinkUnavailable, s.path, err)
	}

	if _, err := f.Write([]byte(record)); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: writing to '%s': %v", domain.ErrLogSinkUnavailable, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing '%s': %v", domain.ErrLogSinkUnavailable, s.path, err)
	}
	return nil
}
