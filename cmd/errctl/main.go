// Package main はアクセスエラー記録を扱うCLIツールのエントリポイント。
package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"access-error-service/config"
	"access-error-service/pkg/correlation"
)

const version = "1.0.0"

var (
	output  string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "errctl",
		Short: "Access error service CLI",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}

	// グローバルフラグ
	rootCmd.PersistentFlags().StringVar(&output, "output", "text", "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// サブコマンド登録
	rootCmd.AddCommand(recordsCmd())
	rootCmd.AddCommand(pingCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

// versionCmd はバージョン情報を表示する。
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "errctl version %s\n", version)
		},
	}
}

// pingCmd はエラーページにテストリクエストを送り、相関IDを表示する。
func pingCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Send a test request to the access error page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				cfg := config.Load()
				url = "http://localhost:" + cfg.Port + cfg.DenialPath
			}

			httpClient := &http.Client{Timeout: timeout}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("creating request: %w", err)
			}
			req.Header.Set("User-Agent", "errctl/"+version)

			resp, err := httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			id := resp.Header.Get(correlation.Header)
			if id == "" {
				return fmt.Errorf("response (status %d) has no %s header", resp.StatusCode, correlation.Header)
			}

			out := cmd.OutOrStdout()
			if output == "json" {
				fmt.Fprintf(out, "{\"status\":%d,\"correlation_id\":%q}\n", resp.StatusCode, id)
			} else {
				fmt.Fprintf(out, "status: %d\ncorrelation id: %s\n", resp.StatusCode, id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Access error page URL (default http://localhost:$PORT$DENIAL_PATH)")
	return cmd
}
