package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scrollinondubs/DogTinder/internal/infra/logger"
)

var (
	apiURL    string
	statePath string
	logLevel  string
	timeout   time.Duration

	log     *zap.Logger
	session *clientSession
)

var rootCmd = &cobra.Command{
	Use:   "dogswipe",
	Short: "Browse and swipe shelter dogs from the terminal",
	Long: `dogswipe talks to the Dog Tinder API.

Swipes made before signing in are kept in a local ledger and merged into
your account the next time you sign up or log in.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		log, err = logger.NewConsole(logLevel)
		if err != nil {
			return err
		}
		session, err = openSession(apiURL, statePath, timeout, log, cmd.OutOrStdout())
		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if session != nil {
			if err := session.Close(); err != nil && log != nil {
				log.Warn("close local state", zap.Error(err))
			}
		}
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("DOGSWIPE_API", "http://localhost:8080"), "Dog Tinder API base URL")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", envOr("DOGSWIPE_STATE", defaultStatePath()), "Local state file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 8*time.Second, "Request timeout")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dogswipe.db"
	}
	return filepath.Join(home, ".dogswipe.db")
}
