package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/infra"
	"server/internal/sqlinline"
)

// Mints a collector token for a game account. The token value is handed to
// the browser extension, which sends it in the X-Token header on ingestion.
func main() {
	var (
		accountFlag string
		tokenFlag   string
	)
	flag.StringVar(&accountFlag, "account", "", "Game account id the token submits snapshots for")
	flag.StringVar(&tokenFlag, "token", "", "Token value (random when omitted)")
	flag.Parse()

	accountID := strings.TrimSpace(accountFlag)
	if accountID == "" {
		fmt.Fprintln(os.Stderr, "-account is required")
		os.Exit(1)
	}

	token := strings.TrimSpace(tokenFlag)
	if token == "" {
		token = uuid.NewString()
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create pool: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "token").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	ctxExec, cancelExec := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelExec()

	var tokenID string
	if err := runner.QueryRow(ctxExec, sqlinline.QInsertCollectorToken, accountID, token).Scan(&tokenID); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("token %s created for account %s:\n%s\n", tokenID, accountID, token)
}
