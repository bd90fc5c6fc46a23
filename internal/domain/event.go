// Package domain はドメインモデルとビジネスルールを定義する。
package domain

import (
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// RequestContext はリクエストのメタデータを列挙順に保持する。
// 読み取り系のメソッドは nil レシーバでも空のコンテキストとして振る舞う。
type RequestContext struct {
	entries *orderedmap.OrderedMap[string, string]
}

// NewRequestContext は空のRequestContextを生成する。
func NewRequestContext() *RequestContext {
	return &RequestContext{entries: orderedmap.New[string, string]()}
}

// RequestContextFromPairs は key, value の順に並んだ引数からRequestContextを生成する。
// 奇数個の場合、最後のキーは空文字列の値を持つ。
func RequestContextFromPairs(pairs ...string) *RequestContext {
	rc := NewRequestContext()
	for i := 0; i < len(pairs); i += 2 {
		value := ""
		if i+1 < len(pairs) {
			value = pairs[i+1]
		}
		rc.Set(pairs[i], value)
	}
	return rc
}

// Set は値を設定する。既存キーの場合は位置を保ったまま値を上書きする。
func (c *RequestContext) Set(key, value string) {
	c.entries.Set(key, value)
}

// Get はキーに対応する値を返す。
func (c *RequestContext) Get(key string) (string, bool) {
	if c == nil || c.entries == nil {
		return "", false
	}
	return c.entries.Get(key)
}

// Len はエントリ数を返す。
func (c *RequestContext) Len() int {
	if c == nil || c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Each は挿入順に全エントリを走査する。
func (c *RequestContext) Each(fn func(key, value string)) {
	if c == nil || c.entries == nil {
		return
	}
	for pair := c.entries.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// AccessDenialEvent はアクセス拒否イベントを表す。
type AccessDenialEvent struct {
	Timestamp      time.Time
	CorrelationID  string
	RequestContext *RequestContext
}

// TimestampString はISO-8601形式のタイムスタンプを返す。
func (e *AccessDenialEvent) TimestampString() string {
	return e.Timestamp.Format(time.RFC3339)
}

// Report は1回の拒否イベント処理の結果を表す。
type Report struct {
	Event *AccessDenialEvent
	// Record は記録先に書き込んだ整形済みテキスト。
	Record string
	// FailedSinks は書き込みに失敗した記録先の名前。
	FailedSinks []string
}
