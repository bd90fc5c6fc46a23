// Package correlation はリクエストスコープの相関IDをcontextで受け渡す。
package correlation

import "context"

// Header は相関IDを返すレスポンスヘッダ名。
const Header = "X-Correlation-ID"

type correlationIDKey struct{}

// WithID は相関IDを設定したcontextを返す。
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// FromContext は相関IDを取り出す。未設定の場合は空文字列を返す。
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}
