package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/wordgo/internal/config"
	"github.com/example/wordgo/internal/database"
	"github.com/example/wordgo/internal/logger"
	"github.com/example/wordgo/internal/scheduler"
	"github.com/example/wordgo/internal/study"
)

var (
	cfg *config.Config
	log *zap.Logger
	db  *sqlx.DB
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordgo",
		Short:         "Spaced-repetition vocabulary trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			log, err = logger.New(cfg.Env)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			// Open applies pending migrations.
			db, err = database.Open(cmd.Context(), database.Config{
				Type: cfg.DB.Type,
				URL:  cfg.DB.URL,
				Path: cfg.DB.Path,
			})
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			return nil
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Info("database is up to date", zap.String("type", cfg.DB.Type))
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the due-review reminder scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s := newScheduler()
			if err := s.Start(ctx); err != nil {
				return err
			}
			log.Info("reminder scheduler started",
				zap.Duration("interval", cfg.Reminders.Interval),
				zap.Int("start_hour", cfg.Reminders.StartHour),
				zap.Int("end_hour", cfg.Reminders.EndHour),
			)

			<-ctx.Done()
			s.Stop()
			log.Info("reminder scheduler stopped")
			return nil
		},
	}

	rootCmd.AddCommand(migrateCmd, serveCmd)
	addStudyCommands(rootCmd)
	addContentCommands(rootCmd)
	return rootCmd
}

func newService() *study.Service {
	return study.NewService(db, cfg.Study.SessionSize, log)
}

func newScheduler() *scheduler.Scheduler {
	return scheduler.New(
		database.NewLearnerRepository(db),
		database.NewMemoryStateRepository(db),
		scheduler.LogNotifier{Logger: log},
		cfg.Reminders,
		log,
	)
}

// run executes one command line and releases the database and logger
// whether or not the command succeeded.
func run(ctx context.Context, args []string, out io.Writer) error {
	defer func() {
		if db != nil {
			db.Close()
			db = nil
		}
		if log != nil {
			_ = log.Sync()
		}
	}()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "not found:", err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
