package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"access-error-service/config"
	"access-error-service/internal/domain"
	"access-error-service/internal/infra"
	"access-error-service/internal/repository"
	"access-error-service/internal/usecase"
)

// openDB は環境変数の設定でデータベースに接続する。
func openDB() (*config.Config, *gorm.DB, error) {
	cfg := config.Load()
	if !cfg.DatabaseEnabled() {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	db, err := infra.NewDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}

// newRecordService はKMS設定があれば復号可能なRecordServiceを生成する。
func newRecordService(ctx context.Context) (*usecase.RecordService, func(), error) {
	cfg, db, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	var sealer usecase.Sealer
	if cfg.KMSKeyName != "" {
		kmsSealer, err := infra.NewKMSSealer(ctx, cfg.KMSKeyName)
		if err != nil {
			return nil, nil, err
		}
		sealer = kmsSealer
		cleanup = func() { _ = kmsSealer.Close() }
	}

	return usecase.NewRecordService(repository.NewRecordRepository(db), sealer), cleanup, nil
}

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect stored access error records",
	}
	cmd.AddCommand(recordsGetCmd())
	cmd.AddCommand(recordsListCmd())
	return cmd
}

// recordsGetCmd は相関IDで記録を表示する。
func recordsGetCmd() *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the record for a correlation ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, cleanup, err := newRecordService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rec, err := service.Lookup(ctx, id)
			if err != nil {
				if errors.Is(err, domain.ErrRecordNotFound) {
					return fmt.Errorf("no record for correlation ID %s", id)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if output == "json" {
				return json.NewEncoder(out).Encode(map[string]string{
					"correlation_id": rec.CorrelationID,
					"logged_at":      rec.LoggedAt.Format(time.RFC3339),
					"record":         rec.Text,
				})
			}
			fmt.Fprint(out, rec.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Correlation ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

// recordsListCmd は最近の記録を一覧表示する。
func recordsListCmd() *cobra.Command {
	var since time.Duration
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent access error records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, cleanup, err := newRecordService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			summaries, err := service.ListRecent(ctx, time.Now().Add(-since), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output == "json" {
				return json.NewEncoder(out).Encode(summaries)
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "CORRELATION ID\tLOGGED AT\tSEALED")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%t\n", s.CorrelationID, s.LoggedAt.Format("2006-01-02 15:04:05"), s.Sealed)
			}
			return w.Flush()
		},
	}
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Show records logged within this duration")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of records")
	return cmd
}
