// Package repository はデータアクセス層の実装を提供する。
package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"access-error-service/internal/domain"
)

// AccessErrorRecordModel はgorm用のモデル定義。
type AccessErrorRecordModel struct {
	ID            string    `gorm:"type:char(36);primaryKey"`
	CorrelationID string    `gorm:"type:varchar(64);not null;uniqueIndex:uk_correlation_id"`
	LoggedAt      time.Time `gorm:"type:datetime(6);not null;index:idx_logged_at"`
	Body          []byte    `gorm:"type:mediumblob;not null"`
	Sealed        bool      `gorm:"not null;default:false"`
	CreatedAt     time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
}

// TableName はテーブル名を返す。
func (AccessErrorRecordModel) TableName() string {
	return "access_error_records"
}

// BeforeCreate はレコード作成前にUUIDを生成する。
func (m *AccessErrorRecordModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *AccessErrorRecordModel) toDomain() *domain.AccessErrorRecord {
	return &domain.AccessErrorRecord{
		ID:            m.ID,
		CorrelationID: m.CorrelationID,
		LoggedAt:      m.LoggedAt,
		Body:          m.Body,
		Sealed:        m.Sealed,
		CreatedAt:     m.CreatedAt,
	}
}

// RecordRepository は記録テキストの保存と検索を提供する。
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository は新しいRecordRepositoryを生成する。
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create は記録を保存する。
func (r *RecordRepository) Create(ctx context.Context, record *domain.AccessErrorRecord) error {
	model := &AccessErrorRecordModel{
		ID:            record.ID,
		CorrelationID: record.CorrelationID,
		LoggedAt:      record.LoggedAt,
		Body:          record.Body,
		Sealed:        record.Sealed,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create record",
			"operation", "create",
			"error", err,
		)
		return err
	}
	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	return nil
}

// FindByCorrelationID は相関IDで記録を取得する。存在しない場合は nil を返す。
func (r *RecordRepository) FindByCorrelationID(ctx context.Context, correlationID string) (*domain.AccessErrorRecord, error) {
	var model AccessErrorRecordModel
	err := r.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find record",
			"operation", "find_by_correlation_id",
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindSince は指定時刻以降の記録を新しい順に最大 limit 件取得する。
func (r *RecordRepository) FindSince(ctx context.Context, since time.Time, limit int) ([]*domain.AccessErrorRecord, error) {
	var models []AccessErrorRecordModel
	err := r.db.WithContext(ctx).
		Omit("body").
		Where("logged_at >= ?", since).
		Order("logged_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find records",
			"operation", "find_since",
			"since", since,
			"error", err,
		)
		return nil, err
	}

	records := make([]*domain.AccessErrorRecord, len(models))
	for i, m := range models {
		records[i] = m.toDomain()
	}
	return records, nil
}
