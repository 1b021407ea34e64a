package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	postgresRepo "github.com/escrowpay/ledger/internal/adapter/repository/postgres"
	"github.com/escrowpay/ledger/internal/infrastructure/config"
	"github.com/escrowpay/ledger/internal/infrastructure/logger"
	"github.com/escrowpay/ledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	tenant  string
	timeout time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Escrow ledger operations tool",
		Long:  `A command line interface for operating the escrow ledger service.`,
	}

	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	root.PersistentFlags().StringVar(&tenant, "tenant", "ops", "Tenant id sent with API requests")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(migrateCmd(), ledgerCmd(), idempotencyCmd())

	return root
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
				return postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})
				return postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
			},
		},
	)

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger health reports",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "consistency",
			Short: "Check that debits equal credits in every currency",
			RunE: func(cmd *cobra.Command, args []string) error {
				return checkConsistency()
			},
		},
		&cobra.Command{
			Use:   "trial-balance",
			Short: "Print the per-currency trial balance",
			RunE: func(cmd *cobra.Command, args []string) error {
				return printTrialBalance()
			},
		},
	)

	return cmd
}

func idempotencyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idempotency",
		Short: "Manage posting idempotency records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired idempotency records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			deleted, err := postgresRepo.NewIdempotencyRepository(pool).DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				return err
			}

			fmt.Printf("deleted %d expired idempotency records\n", deleted)
			return nil
		},
	})

	return cmd
}

func apiGet(path string) (int, []byte, error) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("X-Tenant-ID", tenant)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func checkConsistency() error {
	status, body, err := apiGet("/api/v1/ledger/consistency")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("consistency check FAILED (status %d): %s", status, string(body))
	}

	fmt.Println("consistency check PASSED")
	return nil
}

func printTrialBalance() error {
	status, body, err := apiGet("/api/v1/ledger/trial-balance")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("trial balance request failed (status %d): %s", status, string(body))
	}

	var report map[string]any
	if err := json.Unmarshal(body, &report); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(report)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render JSON: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
