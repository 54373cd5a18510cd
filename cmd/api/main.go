package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quillboard/quillboard/internal/api"
	"github.com/quillboard/quillboard/internal/api/handlers"
	"github.com/quillboard/quillboard/internal/auth"
	"github.com/quillboard/quillboard/internal/avatar"
	"github.com/quillboard/quillboard/internal/config"
	"github.com/quillboard/quillboard/internal/db"
	"github.com/quillboard/quillboard/internal/logger"
	"github.com/quillboard/quillboard/internal/mail"
	"github.com/quillboard/quillboard/internal/metrics"
	"github.com/quillboard/quillboard/internal/middleware"
	"github.com/quillboard/quillboard/internal/repository/postgres"
	"github.com/quillboard/quillboard/internal/services"
	"github.com/quillboard/quillboard/internal/session"
	"github.com/quillboard/quillboard/internal/web"
	"github.com/quillboard/quillboard/internal/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not loaded", "err", err)
	}
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if os.Getenv("APP_MIGRATE") == "true" {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(4)
	defer wp.Stop()

	avatars, err := avatar.NewStore(cfg.AvatarDir)
	if err != nil {
		log.Error("avatar dir", "err", err)
		os.Exit(1)
	}

	sessions := session.NewManager(repos.Sessions, cfg.SessionTTL, cfg.RememberTTL)
	tokens := auth.NewResetTokenService(cfg.SecretKey, cfg.ResetTTL)
	mailer := mail.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailSender)

	userSvc := services.NewUserService(repos.Users, sessions, tokens, avatars, mailer, cfg.BaseURL)
	postSvc := services.NewPostService(repos.Posts, repos.Users)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Error("templates", "err", err)
		os.Exit(1)
	}

	metrics.Init()
	h := handlers.New(userSvc, postSvc, sessions, renderer)
	actor := middleware.NewActor(sessions, repos.Users)
	r := api.NewRouter(cfg, h, actor, cfg.AvatarDir)

	// purge dead session rows off the request path
	go func() {
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				wp.Submit(func() {
					n, err := sessions.PurgeExpired(context.Background())
					if err != nil {
						log.Error("session purge", "err", err)
						return
					}
					if n > 0 {
						log.Info("purged sessions", "count", n)
					}
				})
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
