package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"courier"
	"courier/internal/api/handler/endpoints"
	"courier/internal/api/models"
	"courier/internal/api/repo"
	"courier/internal/api/service"
	"courier/internal/latent"
	"courier/internal/realtime"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

func main() {
	courier.InitConfig(".env")
	cfg := courier.GetConfig()
	gin.SetMode(gin.ReleaseMode)

	if cfg.Mode == "dev" {
		if courier.DB != nil {
			if err := courier.DB.AutoMigrate(
				&models.Operator{},
				&models.UserDetails{},
			); err != nil {
				courier.Logger.Fatal().Err(err).Msg("Failed to migrate database")
			}
			courier.Logger.Info().Msg("Database migrated successfully")
		}
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	pool := latent.NewPool(cfg.RequestConfig.MaxWorkers, courier.Logger)
	defer pool.Stop()
	manager := latent.NewManager(cfg.RequestConfig.PollInterval, courier.Logger)
	manager.Start()
	defer manager.Stop()

	tasks := repo.NewTaskRepository(courier.Redis, cfg.RedisConfig.TaskTTL)
	runtime := service.NewTaskRuntime(pool, manager, tasks, courier.Logger)

	hub := realtime.NewHub(tasks, courier.Logger)
	go hub.Run(ctx)
	runtime.AddSink(hub)
	if courier.NATS != nil {
		prefix := courier.GetEnv("NATS_SUBJECT_PREFIX", realtime.DefaultSubjectPrefix)
		runtime.AddSink(realtime.NewNATSPublisher(courier.NATS, prefix, courier.Logger))
		courier.Logger.Info().Str("prefix", prefix).Msg("Publishing task completions to NATS")
	}

	deps := endpoints.Dependencies{
		Ctx:      ctx,
		Config:   cfg,
		Logger:   courier.Logger,
		Requests: newRequestService(runtime, cfg),
		Captures: service.NewCaptureService(runtime, courier.Logger),
		Tasks:    tasks,
		Hub:      hub,
	}

	mailer := service.NewGoMailTransport(cfg.SmtpConfig.DialTimeout, courier.Logger)
	deps.Emails = service.NewEmailService(runtime, mailer, service.OSFileProvider{}, courier.Logger, emailOptions(cfg)...)
	deps.Verifier = mailer

	if cfg.UserDirectoryFile != "" {
		deps.Directory = service.NewUserDirectoryService(repo.NewFileUserDirectory(cfg.UserDirectoryFile), courier.Logger)
	} else if courier.DB != nil {
		deps.Directory = service.NewUserDirectoryService(repo.NewUserDirectoryRepository(courier.DB), courier.Logger)
	}
	if courier.DB != nil {
		deps.Operators = service.NewOperatorService(repo.NewOperatorRepository(courier.DB), cfg, courier.Logger)
	}

	initAPI(router, deps)

	courier.Logger.Debug().Msgf("Starting courier API on port %s", cfg.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		courier.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

func newRequestService(runtime *service.TaskRuntime, cfg courier.AppConfig) *service.HTTPRequestService {
	transport := service.NewNetHTTPTransport(&http.Client{})
	return service.NewHTTPRequestService(runtime, transport, service.NewClientConfig(cfg.RequestConfig.TimeoutSeconds), courier.Logger)
}

func emailOptions(cfg courier.AppConfig) []service.EmailOption {
	var opts []service.EmailOption
	if cfg.SmtpConfig.ConnectivityAddr != "" {
		opts = append(opts, service.WithConnectivityChecker(service.DialChecker{Addr: cfg.SmtpConfig.ConnectivityAddr}))
	}
	if cfg.SmtpConfig.SanitizeHTML {
		policy := bluemonday.UGCPolicy()
		policy.AllowURLSchemes("cid", "http", "https", "mailto")
		opts = append(opts, service.WithHTMLPolicy(policy))
	}
	return opts
}

func initAPI(router gin.IRouter, deps endpoints.Dependencies) {
	endpoints.AuthHandler(router, deps)
	endpoints.RequestHandler(router, deps)
	endpoints.TaskHandler(router, deps)
	endpoints.EmailHandler(router, deps)
	endpoints.UtilHandler(router, deps)
	endpoints.CaptureHandler(router, deps)
}
