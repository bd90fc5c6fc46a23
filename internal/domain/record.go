package domain

import "time"

// AccessErrorRecord はデータベースに保存された記録テキストを表す。
type AccessErrorRecord struct {
	ID            string
	CorrelationID string
	LoggedAt      time.Time
	Body          []byte // Sealed の場合はKMSで暗号化済み
	Sealed        bool
	CreatedAt     time.Time
}

// RecordSummary は記録のメタデータを表す（本文を含まない）。
type RecordSummary struct {
	CorrelationID string
	LoggedAt      time.Time
	Sealed        bool
}

// RecordText は復号済みの記録テキストを表す。
type RecordText struct {
	CorrelationID string
	LoggedAt      time.Time
	Text          string
}
