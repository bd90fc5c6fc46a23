package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"access-error-service/internal/domain"
)

const defaultListLimit = 50

// RecordRepository は記録テキストのデータアクセスのインターフェース。
type RecordRepository interface {
	Create(ctx context.Context, record *domain.AccessErrorRecord) error
	FindByCorrelationID(ctx context.Context, correlationID string) (*domain.AccessErrorRecord, error)
	FindSince(ctx context.Context, since time.Time, limit int) ([]*domain.AccessErrorRecord, error)
}

// Sealer は記録本文の暗号化/復号のインターフェース。
type Sealer interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// RecordService は相関IDで検索できる形で記録テキストを保存する。
// LogSink を実装し、ReportService の記録先として使われる。
type RecordService struct {
	repo   RecordRepository
	sealer Sealer
}

// NewRecordService は新しいRecordServiceを生成する。sealer が nil の場合は平文で保存する。
func NewRecordService(repo RecordRepository, sealer Sealer) *RecordService {
	return &RecordService{
		repo:   repo,
		sealer: sealer,
	}
}

// Name は記録先の名前を返す。
func (s *RecordService) Name() string {
	return "database"
}

// Append は整形済みの記録テキストを保存する。
func (s *RecordService) Append(ctx context.Context, event *domain.AccessDenialEvent, record string) error {
	body := []byte(record)
	sealed := false
	if s.sealer != nil {
		ciphertext, err := s.sealer.Encrypt(ctx, body)
		if err != nil {
			return fmt.Errorf("%w: sealing record: %v", domain.ErrLogSinkUnavailable, err)
		}
		body = ciphertext
		sealed = true
	}

	rec := &domain.AccessErrorRecord{
		CorrelationID: event.CorrelationID,
		LoggedAt:      event.Timestamp,
		Body:          body,
		Sealed:        sealed,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return fmt.Errorf("%w: storing record: %v", domain.ErrLogSinkUnavailable, err)
	}
	return nil
}

// Lookup は相関IDから記録テキストを取得する。
func (s *RecordService) Lookup(ctx context.Context, correlationID string) (*domain.RecordText, error) {
	if _, err := uuid.Parse(correlationID); err != nil {
		return nil, domain.ErrInvalidCorrelationID
	}

	rec, err := s.repo.FindByCorrelationID(ctx, correlationID)
	if err != nil {
		return nil, fmt.Errorf("finding record: %w", err)
	}
	if rec == nil {
		return nil, domain.ErrRecordNotFound
	}

	body := rec.Body
	if rec.Sealed {
		if s.sealer == nil {
			return nil, fmt.Errorf("record %s is sealed but no KMS key is configured", correlationID)
		}
		body, err = s.sealer.Decrypt(ctx, rec.Body)
		if err != nil {
			return nil, fmt.Errorf("unsealing record: %w", err)
		}
	}

	return &domain.RecordText{
		CorrelationID: rec.CorrelationID,
		LoggedAt:      rec.LoggedAt,
		Text:          string(body),
	}, nil
}

// ListRecent は指定時刻以降の記録のメタデータを新しい順に取得する。
func (s *RecordService) ListRecent(ctx context.Context, since time.Time, limit int) ([]*domain.RecordSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	records, err := s.repo.FindSince(ctx, since, limit)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	summaries := make([]*domain.RecordSummary, len(records))
	for i, r := range records {
		summaries[i] = &domain.RecordSummary{
			CorrelationID: r.CorrelationID,
			LoggedAt:      r.LoggedAt,
			Sealed:        r.Sealed,
		}
	}
	return summaries, nil
}
