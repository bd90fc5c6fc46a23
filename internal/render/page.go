// Package render はアクセスエラーページのHTMLを生成する。
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"access-error-service/internal/domain"
)

//go:embed templates/access_error.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/access_error.html"))

// PageView はエラーページの表示データ。
type PageView struct {
	AppName       string
	CorrelationID string
	ContactEmail  string
	MailtoHref    template.URL
	Record        string
}

// Site はデプロイ時に固定される表示設定。
type Site struct {
	AppName      string
	ContactEmail string
}

// NewPageView はイベントと記録テキストから表示データを作る。
func NewPageView(site Site, report *domain.Report) PageView {
	return PageView{
		AppName:       site.AppName,
		CorrelationID: report.Event.CorrelationID,
		ContactEmail:  site.ContactEmail,
		MailtoHref:    MailtoHref(site.ContactEmail, "Access error ID "+report.Event.CorrelationID),
		Record:        report.Record,
	}
}

// MailtoHref は件名付きのmailtoリンクを生成する。
func MailtoHref(address, subject string) template.URL {
	u := url.URL{
		Scheme: "mailto",
		Opaque: url.PathEscape(address),
	}
	// メールクライアントは "+" を空白として扱わないため %20 にする
	u.RawQuery = "subject=" + strings.ReplaceAll(url.QueryEscape(subject), "+", "%20")
	return template.URL(u.String())
}

// Page はエラーページを w に書き出す。
func Page(w io.Writer, view PageView) error {
	if err := pageTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return nil
}
