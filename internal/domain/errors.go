package domain

import "errors"

var (
	// ErrLogSinkUnavailable は記録先への書き込みに失敗した場合のエラー。
	ErrLogSinkUnavailable = errors.New("log sink unavailable")

	// ErrRecordNotFound は指定された相関IDの記録が存在しない場合のエラー。
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidCorrelationID は相関IDの形式が不正な場合のエラー。
	ErrInvalidCorrelationID = errors.New("invalid correlation ID")

	// ErrRenderFailed はエラーページを生成できなかった場合のエラー。
	ErrRenderFailed = errors.New("render failed")

	// ErrMigrationFailed はマイグレーション実行時のエラー。
	ErrMigrationFailed = errors.New("migration failed")

	// ErrInvalidMigrationFile はマイグレーションファイルのフォーマットが不正な場合のエラー。
	ErrInvalidMigrationFile = errors.New("invalid migration file")
)
