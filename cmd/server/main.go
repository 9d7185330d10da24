package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/outreach-platform/internal/api"
	"github.com/ignite/outreach-platform/internal/auth"
	"github.com/ignite/outreach-platform/internal/config"
	"github.com/ignite/outreach-platform/internal/mailer"
	"github.com/ignite/outreach-platform/internal/mjml"
	"github.com/ignite/outreach-platform/internal/pkg/distlock"
	"github.com/ignite/outreach-platform/internal/pkg/secretbox"
	"github.com/ignite/outreach-platform/internal/repository/postgres"
	"github.com/ignite/outreach-platform/internal/ses"
	"github.com/ignite/outreach-platform/internal/service/account"
	"github.com/ignite/outreach-platform/internal/service/aicampaign"
	"github.com/ignite/outreach-platform/internal/service/emailsettings"
	"github.com/ignite/outreach-platform/internal/service/prospect"
	"github.com/ignite/outreach-platform/internal/service/team"
	"github.com/ignite/outreach-platform/internal/service/template"
	"github.com/ignite/outreach-platform/internal/worker"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		log.Fatalf("ping database: %v", err)
	}
	cancel()

	// Redis is optional; without it rate limiting passes through and
	// campaign launch locks fall back to PG advisory locks.
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("redis unreachable, continuing without it: %v", err)
			redisClient = nil
		}
		pingCancel()
	}

	box, err := secretbox.New(cfg.Secrets.SecretboxKey)
	if err != nil {
		log.Fatalf("init secretbox: %v", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepo(db)
	accountRepo := postgres.NewAccountRepo(db)
	settingsRepo := postgres.NewEmailSettingsRepo(db)
	teamRepo := postgres.NewTeamRepo(db)
	templateRepo := postgres.NewTemplateRepo(db)
	prospectRepo := postgres.NewProspectRepo(db)
	campaignRepo := postgres.NewCampaignRepo(db)

	// Outbound mail
	sesSender := ses.NewSender(cfg.SES)
	smtpSender := mailer.NewSMTPSender()
	mjmlClient := mjml.NewClient(cfg.MJML, nil)

	platformFrom := "no-reply@" + cfg.SES.FromDomain

	// Services
	accountSvc := account.NewService(accountRepo, &sesProber{sender: sesSender, from: platformFrom})
	settingsSvc := emailsettings.NewService(settingsRepo, box, smtpSender)
	teamSvc := team.NewService(teamRepo, cfg.Invites.Expiry())
	templateSvc := template.NewService(templateRepo, mjmlClient, template.NewEngine(),
		&sesTestSender{sender: sesSender, from: platformFrom})
	prospectSvc := prospect.NewService(prospectRepo)

	lockFactory := func(key string, ttl time.Duration) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, ttl)
	}
	campaignSvc := aicampaign.NewService(campaignRepo, prospectSvc, templateSvc, accountSvc, lockFactory)

	authManager := auth.NewManager(&cfg.Auth, userRepo, cfg.Server.BaseURL)
	if cfg.Auth.GoogleClientID != "" {
		// Catch rotated/misconfigured OAuth credentials at boot instead of
		// at first user login.
		log.Println("Validating Google OAuth credentials...")
		if err := authManager.ValidateCredentials(context.Background()); err != nil {
			log.Fatalf("OAuth pre-flight FAILED: %v", err)
		}
		log.Println("Google OAuth credentials validated")
	}
	authManager.CleanupExpiredSessions()

	server := api.NewServer(cfg, &api.Handlers{
		Auth:      authManager,
		Accounts:  accountSvc,
		Settings:  settingsSvc,
		Teams:     teamSvc,
		Templates: templateSvc,
		Prospects: prospectSvc,
		Campaigns: campaignSvc,
	}, redisClient)

	var sendWorker *worker.SendWorker
	if cfg.Worker.Enabled {
		sendWorker = worker.NewSendWorker(db, cfg.Worker, sesSender, smtpSender, settingsSvc)
		sendWorker.Start(context.Background())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	go func() {
		log.Printf("server listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if sendWorker != nil {
		sendWorker.Stop()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("bye")
}
