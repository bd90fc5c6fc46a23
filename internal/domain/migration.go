package domain

import "time"

// MigrationStatus はスキーママイグレーションの適用状態を表す
type MigrationStatus string

const (
	MigrationStatusPending MigrationStatus = "pending"
	MigrationStatusApplied MigrationStatus = "applied"
)

// Migration は記録用テーブルのスキーマ変更1件を表す
type Migration struct {
	Version   string          // 例: "001"
	Name      string          // ファイル名の "{version}_" 以降
	AppliedAt *time.Time      // 未適用の場合はnil
	FilePath  string
	Status    MigrationStatus
}
