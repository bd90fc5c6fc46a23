package handler

import (
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"access-error-service/internal/domain"
)

// RequestContextFromRequest はリクエストからCGI形式のメタデータを組み立てる。
// サーバ変数を先に、続いてヘッダを HTTP_<NAME> として名前順に並べる。
func RequestContextFromRequest(r *http.Request, received time.Time) *domain.RequestContext {
	rc := domain.NewRequestContext()
	if r == nil {
		return rc
	}

	rc.Set("REQUEST_METHOD", r.Method)
	if r.URL != nil {
		rc.Set("REQUEST_URI", r.URL.RequestURI())
		rc.Set("QUERY_STRING", r.URL.RawQuery)
	}
	rc.Set("SERVER_PROTOCOL", r.Proto)
	if host, port, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		rc.Set("REMOTE_ADDR", host)
		rc.Set("REMOTE_PORT", port)
	} else if r.RemoteAddr != "" {
		rc.Set("REMOTE_ADDR", r.RemoteAddr)
	}
	rc.Set("REQUEST_TIME", strconv.FormatInt(received.Unix(), 10))

	// Host はヘッダマップから取り除かれているため個別に追加する
	headers := r.Header.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	if r.Host != "" {
		headers.Set("Host", r.Host)
	}

	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rc.Set(cgiHeaderName(name), strings.Join(headers[name], ", "))
	}
	return rc
}

// cgiHeaderName は "X-Forwarded-For" を "HTTP_X_FORWARDED_FOR" に変換する。
func cgiHeaderName(name string) string {
	return "HTTP_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
