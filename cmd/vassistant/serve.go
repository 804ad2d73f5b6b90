package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/FanchonSora/V-Assistant/internal/auth"
	"github.com/FanchonSora/V-Assistant/internal/config"
	"github.com/FanchonSora/V-Assistant/internal/dialogue"
	"github.com/FanchonSora/V-Assistant/internal/logging"
	"github.com/FanchonSora/V-Assistant/internal/metrics"
	"github.com/FanchonSora/V-Assistant/internal/notification"
	"github.com/FanchonSora/V-Assistant/internal/scheduler"
	"github.com/FanchonSora/V-Assistant/internal/server"
	"github.com/FanchonSora/V-Assistant/internal/store"
	"github.com/FanchonSora/V-Assistant/internal/task"
)

func newServeCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*cfgPath)
		},
	}
}

func runServe(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger := logging.NewComponentLogger("Serve")

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("auth.secret not configured, generated an ephemeral one; tokens will not survive restarts")
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	authSvc := auth.NewService(db.Users(), auth.Config{
		Secret:         []byte(secret),
		AccessTokenTTL: cfg.Auth.TokenTTL,
	}, logging.NewComponentLogger("Auth"))

	var notifier notification.Notifier
	if cfg.SMTP.Enabled {
		notifier, err = notification.NewEmailNotifier(notification.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logging.NewComponentLogger("Mail"))
		if err != nil {
			return err
		}
	} else {
		notifier = notification.NewLogNotifier(logging.NewComponentLogger("Mail"))
	}

	// Usernames double as the delivery address.
	recipient := func(ctx context.Context, userID string) (string, error) {
		user, err := authSvc.GetUser(ctx, userID)
		if err != nil {
			return "", err
		}
		return user.Username, nil
	}

	sched := scheduler.New(scheduler.Config{
		Enabled: cfg.Scheduler.Enabled,
		Lead:    cfg.Scheduler.Lead,
	}, notifier, recipient, logging.NewComponentLogger("Scheduler"))

	taskSvc := task.NewService(db.Tasks(),
		task.WithReminders(sched),
		task.WithLogger(logging.NewComponentLogger("Tasks")),
	)

	registry := prometheus.NewRegistry()
	engine := dialogue.NewEngine(taskSvc,
		dialogue.WithLogger(logging.NewComponentLogger("Dialogue")),
		dialogue.WithMetrics(metrics.MustNewMetrics(registry)),
	)

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, server.Deps{
		Auth:     authSvc,
		Tasks:    taskSvc,
		Dialogue: engine,
		Metrics:  registry,
		Logger:   logging.NewComponentLogger("HTTP"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(ctx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	sched.Stop()
	return nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
