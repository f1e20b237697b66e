package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"lablinc/cache"
	"lablinc/config"
	"lablinc/controllers"
	"lablinc/jobs"
	middlewares "lablinc/middleware"
	"lablinc/payments"
	"lablinc/routes"
	"lablinc/services"
	"lablinc/services/logger"
	"lablinc/services/notification"
	"lablinc/validator"

	"github.com/olahol/melody"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const uploadFolder = "lablinc/instruments"

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, websocket hub and scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := config.ConnectDB(cfg)
			if err != nil {
				return err
			}
			if err := config.Migrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
			return nil
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewZap(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var store cache.Store
	rdb, err := config.ConnectRedis(ctx, cfg)
	if err != nil {
		log.Error("redis unavailable, using in-memory cache: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		store = cache.NewRedisStore(rdb, cfg.CacheTTL)
	} else {
		mem := cache.NewMemory(cache.WithTTL(cfg.CacheTTL))
		mem.Start()
		defer mem.Stop()
		store = cache.NewMemoryStore(mem)
	}

	cld, err := config.ConnectCloudinary(cfg)
	if err != nil {
		return fmt.Errorf("cloudinary: %w", err)
	}

	if err := validator.RegisterBindings(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	m := melody.New()
	var sms services.SMSSender = services.NewLogSMSSender(log)
	if cfg.SMSGatewayURL != "" {
		sms = services.NewHTTPSMSSender(cfg.SMSGatewayURL, cfg.SMSAPIKey, nil)
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	audit := services.NewAuditService(db, log)
	notifier := services.NewNotificationService(services.NotificationServiceOptions{
		DB:     db,
		Logger: log,
		Push:   notification.NewMelodyService(m),
		SMS:    sms,
	})

	var google services.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google = services.IDTokenVerifier{ClientID: cfg.GoogleClientID}
	}
	authService := services.NewAuthService(services.AuthServiceOptions{
		DB: db, Logger: log, Tokens: tokens, Google: google,
	})
	instruments := services.NewInstrumentService(services.InstrumentServiceOptions{
		DB: db, Cache: store, CacheTTL: cfg.CacheTTL, Logger: log, Audit: audit,
	})
	bookings := services.NewBookingService(services.BookingServiceOptions{
		DB: db, Logger: log, Notifier: notifier, Audit: audit, Location: cfg.Location,
	})

	gateway, err := payments.NewMercadoPagoGateway(cfg.MercadoPagoAccessToken, cfg.PaymentMock, log)
	if err != nil {
		return fmt.Errorf("payment gateway: %w", err)
	}
	paymentService := services.NewPaymentService(services.PaymentServiceOptions{
		DB: db, Logger: log, Gateway: gateway, Notifier: notifier, Audit: audit,
	})
	reviews := services.NewReviewService(services.ReviewServiceOptions{
		DB: db, Logger: log, Notifier: notifier, Catalog: instruments,
	})
	admin := services.NewAdminService(services.AdminServiceOptions{
		DB: db, Logger: log, Audit: audit, Notifier: notifier,
	})

	router := config.NewRouter(cfg)
	router.Use(
		middlewares.RequestID(),
		middlewares.RequestLogger(log.Zap()),
		middlewares.Metrics(),
		middlewares.ErrorHandler(log),
	)

	routes.SetupRoutes(router, routes.Handlers{
		Tokens: tokens,
		Auth:   controllers.NewAuthController(authService),
		Instruments: controllers.NewInstrumentController(controllers.InstrumentControllerOptions{
			Instruments: instruments,
			Bookings:    bookings,
			Reviews:     reviews,
			Location:    cfg.Location,
		}),
		Bookings: controllers.NewBookingController(bookings),
		Payments: controllers.NewPaymentController(paymentService),
		Reviews:  controllers.NewReviewController(reviews),
		Notifications: controllers.NewNotificationController(controllers.NotificationControllerOptions{
			Notifier: notifier,
			Tokens:   tokens,
			Melody:   m,
		}),
		Admin:   controllers.NewAdminController(admin, audit),
		Uploads: controllers.NewUploadController(services.NewCloudinaryUploader(cld), uploadFolder),
	})

	c := cron.New(cron.WithLocation(cfg.Location))
	if err := jobs.InitCronJobs(c, bookings, log); err != nil {
		return fmt.Errorf("init cron jobs: %w", err)
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = m.CloseWithMsg([]byte("server shutting down"))
	return srv.Shutdown(shutdownCtx)
}
