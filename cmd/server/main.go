package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	advertapp "github.com/agriconnect/backend/internal/application/advert"
	aiapp "github.com/agriconnect/backend/internal/application/ai"
	catalogapp "github.com/agriconnect/backend/internal/application/catalog"
	commsapp "github.com/agriconnect/backend/internal/application/comms"
	identityapp "github.com/agriconnect/backend/internal/application/identity"
	paymentapp "github.com/agriconnect/backend/internal/application/payment"
	subscriptionapp "github.com/agriconnect/backend/internal/application/subscription"
	traceabilityapp "github.com/agriconnect/backend/internal/application/traceability"
	tradeapp "github.com/agriconnect/backend/internal/application/trade"
	warehouseapp "github.com/agriconnect/backend/internal/application/warehouse"
	"github.com/agriconnect/backend/internal/domain/identity"
	infraai "github.com/agriconnect/backend/internal/infrastructure/ai"
	"github.com/agriconnect/backend/internal/infrastructure/auth"
	"github.com/agriconnect/backend/internal/infrastructure/cache"
	"github.com/agriconnect/backend/internal/infrastructure/config"
	"github.com/agriconnect/backend/internal/infrastructure/email"
	"github.com/agriconnect/backend/internal/infrastructure/event"
	"github.com/agriconnect/backend/internal/infrastructure/identifier"
	"github.com/agriconnect/backend/internal/infrastructure/logger"
	paygw "github.com/agriconnect/backend/internal/infrastructure/payment"
	"github.com/agriconnect/backend/internal/infrastructure/persistence"
	"github.com/agriconnect/backend/internal/infrastructure/scheduler"
	"github.com/agriconnect/backend/internal/infrastructure/sms"
	"github.com/agriconnect/backend/internal/infrastructure/storage"
	"github.com/agriconnect/backend/internal/infrastructure/telemetry"
	"github.com/agriconnect/backend/internal/interfaces/http/handler"
	"github.com/agriconnect/backend/internal/interfaces/http/middleware"
	"github.com/agriconnect/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// referenceNodeID distinguishes instances when generating payment
// references. Single-node deployments can leave it at 1.
const referenceNodeID = 1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting AgriConnect Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Telemetry: tracing, metrics and continuous profiling. All three
	// collapse to no-ops when disabled in configuration.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Telemetry.ProfilerEnabled,
		ServerAddress:     cfg.Telemetry.ProfilerAddress,
		ApplicationName:   cfg.App.Name,
		ProfileCPU:        true,
		ProfileAllocSpace: true,
		ProfileInuseSpace: true,
		ProfileGoroutines: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.ProfilerEnabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		dbTracing.WithoutVariables = !cfg.Telemetry.DBLogFullSQL
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	meter := meterProvider.Meter("agriconnect-backend")
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:         meter,
		Logger:        log,
		StockProvider: telemetry.NewGormStockMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	if cfg.Telemetry.Enabled {
		businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
		defer businessMetrics.Stop()
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	preferenceRepo := persistence.NewGormPreferenceRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	certificationRepo := persistence.NewGormCertificationRepository(db.DB)
	mediaRepo := persistence.NewGormProductMediaRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	shippingRepo := persistence.NewGormShippingMethodRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	temperatureRepo := persistence.NewGormTemperatureLogRepository(db.DB)
	smsProviderRepo := persistence.NewGormSMSProviderRepository(db.DB)
	smsTemplateRepo := persistence.NewGormSMSTemplateRepository(db.DB)
	smsMessageRepo := persistence.NewGormSMSMessageRepository(db.DB)
	otpRepo := persistence.NewGormOTPRepository(db.DB)
	commLogRepo := persistence.NewGormCommunicationLogRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	gatewayRepo := persistence.NewGormGatewayRepository(db.DB)
	webhookRepo := persistence.NewGormWebhookRepository(db.DB)
	escrowRepo := persistence.NewGormEscrowRepository(db.DB)
	disputeRepo := persistence.NewGormDisputeRepository(db.DB)
	planRepo := persistence.NewGormPlanRepository(db.DB)
	subscriptionRepo := persistence.NewGormSubscriptionRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	advertRepo := persistence.NewGormAdvertisementRepository(db.DB)
	placementRepo := persistence.NewGormPlacementRepository(db.DB)
	performanceRepo := persistence.NewGormPerformanceRepository(db.DB)
	farmRepo := persistence.NewGormFarmRepository(db.DB)
	traceRepo := persistence.NewGormTraceRepository(db.DB)

	// Cache-backed components with in-memory fallback for development
	cacheFactory := cache.NewFactory(cfg.Redis, cache.WithLogger(log))
	defer func() {
		if err := cacheFactory.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()

	otpThrottle, err := cacheFactory.CreateThrottle()
	if err != nil {
		log.Fatal("Failed to create OTP throttle", zap.Error(err))
	}
	translationCache, err := cacheFactory.CreateTranslationCache()
	if err != nil {
		log.Fatal("Failed to create translation cache", zap.Error(err))
	}
	tokenBlacklist, err := cacheFactory.CreateTokenBlacklist()
	if err != nil {
		log.Fatal("Failed to create token blacklist", zap.Error(err))
	}

	// External gateways
	jwtService := auth.NewJWTService(cfg.JWT)
	smsGateway := sms.NewAVRSMSGateway(cfg.SMS)
	emailSender := email.NewSMTPSender(cfg.Email)
	chatClient := infraai.NewOpenRouterClient(cfg.AI)

	refGen, err := identifier.NewSnowflakeReferenceGenerator(referenceNodeID, "AGC")
	if err != nil {
		log.Fatal("Failed to create reference generator", zap.Error(err))
	}

	objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	paymentClients := paygw.Clients(cfg.Payment, &phoneDirectory{users: userRepo})
	log.Info("Payment gateways configured", zap.Int("count", len(paymentClients)))

	// Initialize application services
	messageService := commsapp.NewMessageService(
		smsMessageRepo, smsProviderRepo, smsTemplateRepo, preferenceRepo, commLogRepo, smsGateway)
	messageService.SetMetricsRecorder(businessMetrics)
	otpService := commsapp.NewOTPService(otpRepo, messageService, emailSender, otpThrottle)
	providerService := commsapp.NewProviderService(smsProviderRepo)
	preferenceService := commsapp.NewPreferenceService(preferenceRepo, commLogRepo)
	templateService := commsapp.NewTemplateService(smsTemplateRepo)

	authService := identityapp.NewAuthService(
		userRepo, preferenceRepo, otpService, jwtService, tokenBlacklist,
		identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, log)

	usageService := subscriptionapp.NewUsageService(subscriptionRepo, log)
	planService := subscriptionapp.NewPlanService(planRepo, log)
	subscriptionService := subscriptionapp.NewSubscriptionService(subscriptionRepo, planRepo, invoiceRepo, log)

	productService := catalogapp.NewProductService(productRepo, categoryRepo, usageService, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	certificationService := catalogapp.NewCertificationService(certificationRepo, productRepo, log)
	mediaService := catalogapp.NewMediaService(mediaRepo, productRepo, objectStorage, log)

	orderService := tradeapp.NewOrderService(orderRepo, productRepo, shippingRepo, log)
	shippingService := tradeapp.NewShippingService(shippingRepo, log)

	warehouseService := warehouseapp.NewWarehouseService(warehouseRepo, log)
	inventoryService := warehouseapp.NewInventoryService(warehouseRepo, inventoryRepo, movementRepo, log)
	temperatureService := warehouseapp.NewTemperatureService(warehouseRepo, temperatureRepo, log)

	escrowService := paymentapp.NewEscrowService(escrowRepo, transactionRepo, orderRepo, refGen, log)
	paymentService := paymentapp.NewPaymentService(
		transactionRepo, gatewayRepo, webhookRepo, orderRepo,
		paymentClients, refGen, orderService, escrowService, log)
	disputeService := paymentapp.NewDisputeService(disputeRepo, escrowRepo, transactionRepo, orderRepo, refGen, log)
	gatewayService := paymentapp.NewGatewayService(gatewayRepo, log)

	campaignService := advertapp.NewCampaignService(advertRepo, placementRepo, performanceRepo, log)
	servingService := advertapp.NewServingService(advertRepo, placementRepo, performanceRepo, log)
	placementService := advertapp.NewPlacementService(placementRepo, log)

	farmService := traceabilityapp.NewFarmService(farmRepo, log)
	traceService := traceabilityapp.NewTraceService(traceRepo, farmRepo, productRepo, cfg.App.BaseURL, log)

	assistantService := aiapp.NewAssistantService(chatClient, translationCache, smsTemplateRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(cfg.Event, log)

	// Order confirmed -> reserve warehouse stock, notify the buyer
	orderConfirmedHandler := tradeapp.NewOrderConfirmedHandler(inventoryService, log,
		tradeapp.WithConfirmationNotifier(messageService, userRepo))
	eventBus.Subscribe(orderConfirmedHandler)

	// Order shipped -> deduct reserved stock, send delivery update
	orderShippedHandler := tradeapp.NewOrderShippedHandler(inventoryService, log,
		tradeapp.WithDeliveryNotifier(messageService, userRepo))
	eventBus.Subscribe(orderShippedHandler)

	// Order cancelled -> release reserved stock
	orderCancelledHandler := tradeapp.NewOrderCancelledHandler(inventoryService, orderRepo, log)
	eventBus.Subscribe(orderCancelledHandler)

	// Order paid -> payment confirmation SMS
	orderPaidHandler := tradeapp.NewOrderPaidHandler(messageService, userRepo, log)
	eventBus.Subscribe(orderPaidHandler)

	// Escrowed order lifecycle -> milestone releases
	escrowOrderHandler := paymentapp.NewEscrowOrderHandler(escrowService, log)
	eventBus.Subscribe(escrowOrderHandler)

	// Domain events -> business metric samples
	eventBus.Subscribe(telemetry.NewEventRecorder(businessMetrics))

	log.Info("Event handlers registered",
		zap.Strings("order_confirmed_events", orderConfirmedHandler.EventTypes()),
		zap.Strings("order_shipped_events", orderShippedHandler.EventTypes()),
		zap.Strings("order_cancelled_events", orderCancelledHandler.EventTypes()),
		zap.Strings("order_paid_events", orderPaidHandler.EventTypes()),
		zap.Strings("escrow_order_events", escrowOrderHandler.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	orderService.SetEventPublisher(eventBus)
	inventoryService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)
	escrowService.SetEventPublisher(eventBus)
	disputeService.SetEventPublisher(eventBus)
	subscriptionService.SetEventPublisher(eventBus)
	campaignService.SetEventPublisher(eventBus)
	servingService.SetEventPublisher(eventBus)

	// Background maintenance jobs (if enabled)
	if cfg.Scheduler.Enabled {
		jobScheduler := scheduler.NewScheduler(log)
		scheduler.RegisterMaintenanceJobs(jobScheduler, cfg.Scheduler, scheduler.Services{
			OTP:           otpService,
			Messages:      messageService,
			Orders:        orderService,
			Escrow:        escrowService,
			Payments:      paymentService,
			Subscriptions: subscriptionService,
			Campaigns:     campaignService,
		})
		if err := jobScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer jobScheduler.Stop()
		log.Info("Maintenance scheduler started")
	}

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService, otpService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	certificationHandler := handler.NewCertificationHandler(certificationService)
	mediaHandler := handler.NewMediaHandler(mediaService)
	orderHandler := handler.NewOrderHandler(orderService)
	shippingHandler := handler.NewShippingHandler(shippingService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService)
	temperatureHandler := handler.NewTemperatureHandler(temperatureService)
	messageHandler := handler.NewMessageHandler(messageService)
	preferenceHandler := handler.NewPreferenceHandler(preferenceService)
	smsTemplateHandler := handler.NewSMSTemplateHandler(templateService)
	smsProviderHandler := handler.NewSMSProviderHandler(providerService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(paymentService)
	escrowHandler := handler.NewEscrowHandler(escrowService)
	disputeHandler := handler.NewDisputeHandler(disputeService)
	gatewayHandler := handler.NewGatewayHandler(gatewayService)
	planHandler := handler.NewPlanHandler(planService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService, usageService)
	advertHandler := handler.NewAdvertHandler(campaignService)
	placementHandler := handler.NewPlacementHandler(placementService, servingService)
	farmHandler := handler.NewFarmHandler(farmService)
	traceHandler := handler.NewTraceHandler(traceService)
	aiHandler := handler.NewAIHandler(assistantService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing/Metrics - OpenTelemetry instrumentation (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetricsWithMeter(meter, true))
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Public endpoints called by external systems and anonymous
	// visitors: gateway webhooks, QR scans and ad serving
	public := engine.Group("/api/v1")
	public.POST("/payments/webhooks/:gateway", webhookHandler.Receive)
	public.GET("/traceability/scan/:batch", traceHandler.Scan)
	public.GET("/adverts/serve", placementHandler.Serve)
	public.POST("/adverts/:id/impressions", placementHandler.RecordImpression)
	public.POST("/adverts/:id/clicks", placementHandler.RecordClick)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/verify",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/auth/password/forgot",
			"/api/v1/auth/password/reset",
			"/api/v1/auth/otp/request",
			"/api/v1/auth/otp/verify",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
			"/api/v1/system/health",
		},
		SkipPathPrefixes: []string{
			"/api/v1/payments/webhooks",
			"/api/v1/traceability/scan",
			"/api/v1/adverts/serve",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	adminOnly := middleware.RequireRoles(string(identity.RoleAdmin))
	warehouseOps := middleware.RequireRoles(string(identity.RoleWarehouseManager), string(identity.RoleAdmin))

	// Identity domain: registration, sessions, OTP and profiles
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.RateLimit(authLimiter))
	}
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/verify", authHandler.VerifyPhone)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.POST("/password/forgot", authHandler.RequestPasswordReset)
	authRoutes.POST("/password/reset", authHandler.ResetPassword)
	authRoutes.POST("/password/change", authHandler.ChangePassword)
	authRoutes.POST("/otp/request", authHandler.RequestOTP)
	authRoutes.POST("/otp/verify", authHandler.VerifyOTP)

	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.PATCH("/me", userHandler.UpdateProfile)
	userRoutes.GET("", userHandler.ListUsers, adminOnly)
	userRoutes.GET("/:id", userHandler.GetUser)
	userRoutes.POST("/:id/activate", adminOnly, userHandler.ActivateUser)
	userRoutes.POST("/:id/suspend", adminOnly, userHandler.SuspendUser)
	userRoutes.POST("/:id/unlock", adminOnly, userHandler.UnlockUser)

	// Catalog domain: products, categories, certifications, media
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.Get)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Discontinue)
	catalogRoutes.POST("/products/:id/activate", productHandler.Activate)
	catalogRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)
	catalogRoutes.POST("/products/:id/stock", productHandler.AdjustStock)
	catalogRoutes.POST("/products/:id/featured", adminOnly, productHandler.SetFeatured)
	catalogRoutes.GET("/products/:id/certifications", certificationHandler.ListByProduct)
	catalogRoutes.GET("/products/:id/media", mediaHandler.ListByProduct)

	catalogRoutes.POST("/categories", adminOnly, categoryHandler.Create)
	catalogRoutes.GET("/categories/tree", categoryHandler.Tree)
	catalogRoutes.GET("/categories/:id", categoryHandler.Get)
	catalogRoutes.PUT("/categories/:id", adminOnly, categoryHandler.Update)
	catalogRoutes.POST("/categories/:id/activate", adminOnly, categoryHandler.Activate)
	catalogRoutes.POST("/categories/:id/deactivate", adminOnly, categoryHandler.Deactivate)
	catalogRoutes.DELETE("/categories/:id", adminOnly, categoryHandler.Delete)

	catalogRoutes.POST("/certifications", certificationHandler.Add)
	catalogRoutes.GET("/certifications/pending", adminOnly, certificationHandler.ListPending)
	catalogRoutes.POST("/certifications/:id/review", adminOnly, certificationHandler.Review)

	catalogRoutes.POST("/media", mediaHandler.InitiateUpload)
	catalogRoutes.POST("/media/:id/confirm", mediaHandler.ConfirmUpload)
	catalogRoutes.DELETE("/media/:id", mediaHandler.Delete)

	// Trade domain: orders and shipping methods
	tradeRoutes := router.NewDomainGroup("trade", "/trade")
	tradeRoutes.POST("/orders", orderHandler.Create)
	tradeRoutes.GET("/orders/purchases", orderHandler.ListPurchases)
	tradeRoutes.GET("/orders/sales", orderHandler.ListSales)
	tradeRoutes.GET("/orders/number/:number", orderHandler.GetByNumber)
	tradeRoutes.GET("/orders/:id", orderHandler.Get)
	tradeRoutes.POST("/orders/:id/confirm", orderHandler.Confirm)
	tradeRoutes.POST("/orders/:id/process", orderHandler.StartProcessing)
	tradeRoutes.POST("/orders/:id/ship", orderHandler.Ship)
	tradeRoutes.POST("/orders/:id/deliver", orderHandler.MarkDelivered)
	tradeRoutes.POST("/orders/:id/complete", orderHandler.Complete)
	tradeRoutes.POST("/orders/:id/cancel", orderHandler.Cancel)
	tradeRoutes.POST("/orders/:id/refund", adminOnly, orderHandler.Refund)

	tradeRoutes.POST("/shipping-methods", adminOnly, shippingHandler.Create)
	tradeRoutes.GET("/shipping-methods", shippingHandler.ListActive)
	tradeRoutes.PATCH("/shipping-methods/:id/active", adminOnly, shippingHandler.SetActive)
	tradeRoutes.DELETE("/shipping-methods/:id", adminOnly, shippingHandler.Delete)

	// Warehouse domain: facilities, inventory and cold-chain logs
	warehouseRoutes := router.NewDomainGroup("warehouse", "/warehouses")
	warehouseRoutes.POST("", adminOnly, warehouseHandler.Create)
	warehouseRoutes.GET("", warehouseHandler.List)
	warehouseRoutes.GET("/temperature/alerts", warehouseOps, temperatureHandler.Alerts)
	warehouseRoutes.GET("/zones/:id/temperature", warehouseOps, temperatureHandler.History)
	warehouseRoutes.GET("/:id", warehouseHandler.Get)
	warehouseRoutes.POST("/:id/zones", warehouseOps, warehouseHandler.AddZone)
	warehouseRoutes.PUT("/:id/manager", adminOnly, warehouseHandler.SetManager)
	warehouseRoutes.PUT("/:id/controls", warehouseOps, warehouseHandler.SetControls)
	warehouseRoutes.POST("/:id/certify-organic", adminOnly, warehouseHandler.CertifyOrganic)
	warehouseRoutes.POST("/:id/maintenance", warehouseOps, warehouseHandler.EnterMaintenance)
	warehouseRoutes.POST("/:id/reopen", warehouseOps, warehouseHandler.Reopen)
	warehouseRoutes.POST("/:id/close", adminOnly, warehouseHandler.Close)
	warehouseRoutes.POST("/:id/temperature", warehouseOps, temperatureHandler.Record)
	warehouseRoutes.GET("/:id/inventory", warehouseOps, inventoryHandler.ListByWarehouse)

	inventoryRoutes := router.NewDomainGroup("inventory", "/inventory")
	inventoryRoutes.POST("/receive", warehouseOps, inventoryHandler.Receive)
	inventoryRoutes.POST("/transfer", warehouseOps, inventoryHandler.Transfer)
	inventoryRoutes.POST("/items/:id/adjust", warehouseOps, inventoryHandler.Adjust)
	inventoryRoutes.PUT("/items/:id/quality", warehouseOps, inventoryHandler.SetQuality)
	inventoryRoutes.PUT("/items/:id/min-quantity", warehouseOps, inventoryHandler.SetMinQuantity)
	inventoryRoutes.GET("/products/:id", inventoryHandler.ListByProduct)
	inventoryRoutes.GET("/products/:id/movements", warehouseOps, inventoryHandler.ListMovements)
	inventoryRoutes.GET("/expiring", warehouseOps, inventoryHandler.ListExpiring)
	inventoryRoutes.GET("/low-stock", warehouseOps, inventoryHandler.ListLowStock)

	// Communications domain: SMS messaging, templates and providers
	commsRoutes := router.NewDomainGroup("comms", "/comms")
	commsRoutes.POST("/messages", adminOnly, messageHandler.Send)
	commsRoutes.POST("/messages/bulk", adminOnly, messageHandler.SendBulk)
	commsRoutes.GET("/preferences", preferenceHandler.Get)
	commsRoutes.PUT("/preferences", preferenceHandler.Update)
	commsRoutes.GET("/logs", preferenceHandler.ListLogs)
	commsRoutes.GET("/messages", adminOnly, messageHandler.ListByRecipient)
	commsRoutes.GET("/messages/:id", adminOnly, messageHandler.Get)
	commsRoutes.POST("/templates", adminOnly, smsTemplateHandler.Create)
	commsRoutes.GET("/templates", adminOnly, smsTemplateHandler.List)
	commsRoutes.GET("/templates/:id", adminOnly, smsTemplateHandler.Get)
	commsRoutes.PUT("/templates/:id", adminOnly, smsTemplateHandler.Update)
	commsRoutes.DELETE("/templates/:id", adminOnly, smsTemplateHandler.Delete)
	commsRoutes.POST("/providers", adminOnly, smsProviderHandler.Create)
	commsRoutes.GET("/providers", adminOnly, smsProviderHandler.List)
	commsRoutes.GET("/providers/:id", adminOnly, smsProviderHandler.Get)
	commsRoutes.PATCH("/providers/:id/active", adminOnly, smsProviderHandler.SetActive)
	commsRoutes.DELETE("/providers/:id", adminOnly, smsProviderHandler.Delete)

	// Payment domain: checkout, escrow, disputes and gateways
	paymentRoutes := router.NewDomainGroup("payments", "/payments")
	paymentRoutes.POST("/initiate", paymentHandler.Initiate)
	paymentRoutes.GET("/transactions", paymentHandler.ListMine)
	paymentRoutes.GET("/transactions/:id", paymentHandler.GetTransaction)
	paymentRoutes.GET("/orders/:id/escrow", escrowHandler.GetByOrder)
	paymentRoutes.POST("/orders/:id/escrow/release-milestone", escrowHandler.ReleaseMilestone)
	paymentRoutes.POST("/orders/:id/escrow/release", escrowHandler.ReleaseAll)
	paymentRoutes.POST("/orders/:id/disputes", disputeHandler.Raise)
	paymentRoutes.GET("/disputes", adminOnly, disputeHandler.ListByStatus)
	paymentRoutes.GET("/disputes/:id", disputeHandler.Get)
	paymentRoutes.POST("/disputes/:id/review", adminOnly, disputeHandler.StartReview)
	paymentRoutes.POST("/disputes/:id/resolve", adminOnly, disputeHandler.Resolve)
	paymentRoutes.POST("/disputes/:id/close", adminOnly, disputeHandler.Close)
	paymentRoutes.POST("/gateways", adminOnly, gatewayHandler.Create)
	paymentRoutes.GET("/gateways", gatewayHandler.ListActive)
	paymentRoutes.PUT("/gateways/:id/fee", adminOnly, gatewayHandler.SetFee)
	paymentRoutes.PATCH("/gateways/:id/active", adminOnly, gatewayHandler.SetActive)
	paymentRoutes.DELETE("/gateways/:id", adminOnly, gatewayHandler.Delete)

	// Subscription domain: plans, billing and usage quotas
	subscriptionRoutes := router.NewDomainGroup("subscriptions", "/subscriptions")
	subscriptionRoutes.POST("", subscriptionHandler.Subscribe)
	subscriptionRoutes.POST("/cancel", subscriptionHandler.Cancel)
	subscriptionRoutes.GET("/current", subscriptionHandler.Current)
	subscriptionRoutes.GET("/history", subscriptionHandler.History)
	subscriptionRoutes.GET("/usage", subscriptionHandler.Usage)
	subscriptionRoutes.POST("/plans", adminOnly, planHandler.Create)
	subscriptionRoutes.GET("/plans", planHandler.ListActive)
	subscriptionRoutes.GET("/plans/all", adminOnly, planHandler.ListAll)
	subscriptionRoutes.GET("/plans/:id", planHandler.Get)
	subscriptionRoutes.PUT("/plans/:id/pricing", adminOnly, planHandler.UpdatePricing)
	subscriptionRoutes.PUT("/plans/:id/limits", adminOnly, planHandler.UpdateLimits)
	subscriptionRoutes.PATCH("/plans/:id/active", adminOnly, planHandler.SetActive)
	subscriptionRoutes.DELETE("/plans/:id", adminOnly, planHandler.Delete)
	subscriptionRoutes.GET("/:id/invoices", subscriptionHandler.ListInvoices)

	// Advertising domain: campaigns and placements
	advertRoutes := router.NewDomainGroup("adverts", "/adverts")
	advertRoutes.POST("", advertHandler.Create)
	advertRoutes.GET("", advertHandler.List)
	advertRoutes.POST("/placements", adminOnly, placementHandler.Create)
	advertRoutes.GET("/placements", placementHandler.List)
	advertRoutes.PATCH("/placements/:id/active", adminOnly, placementHandler.SetActive)
	advertRoutes.GET("/:id", advertHandler.Get)
	advertRoutes.PUT("/:id/creative", advertHandler.SetCreative)
	advertRoutes.PUT("/:id/targeting", advertHandler.SetTargeting)
	advertRoutes.POST("/:id/submit", advertHandler.SubmitForReview)
	advertRoutes.POST("/:id/pause", advertHandler.Pause)
	advertRoutes.POST("/:id/resume", advertHandler.Resume)
	advertRoutes.POST("/:id/approve", adminOnly, advertHandler.Approve)
	advertRoutes.POST("/:id/reject", adminOnly, advertHandler.Reject)
	advertRoutes.GET("/:id/performance", advertHandler.Performance)

	// Traceability domain: farms, batch traces and QR verification
	traceabilityRoutes := router.NewDomainGroup("traceability", "/traceability")
	traceabilityRoutes.POST("/farms", farmHandler.Register)
	traceabilityRoutes.GET("/farms", farmHandler.ListMine)
	traceabilityRoutes.GET("/farms/:id", farmHandler.Get)
	traceabilityRoutes.PUT("/farms/:id/coordinates", farmHandler.SetCoordinates)
	traceabilityRoutes.POST("/farms/:id/certify-organic", adminOnly, farmHandler.CertifyOrganic)
	traceabilityRoutes.POST("/farms/:id/revoke-organic", adminOnly, farmHandler.RevokeOrganic)
	traceabilityRoutes.POST("/traces", traceHandler.Create)
	traceabilityRoutes.GET("/traces/:id", traceHandler.Get)
	traceabilityRoutes.POST("/traces/:id/events", traceHandler.AppendEvent)
	traceabilityRoutes.GET("/traces/:id/verify", traceHandler.Verify)
	traceabilityRoutes.GET("/products/:id/traces", traceHandler.ListByProduct)

	// AI assistant: content generation, translation, intent detection
	aiRoutes := router.NewDomainGroup("ai", "/ai")
	aiRoutes.POST("/messages", aiHandler.GenerateMessage)
	aiRoutes.POST("/translate", aiHandler.Translate)
	aiRoutes.POST("/intent", aiHandler.DetectIntent)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/health", systemHandler.Health)

	// Register all domain groups
	r.Register(authRoutes).
		Register(userRoutes).
		Register(catalogRoutes).
		Register(tradeRoutes).
		Register(warehouseRoutes).
		Register(inventoryRoutes).
		Register(commsRoutes).
		Register(paymentRoutes).
		Register(subscriptionRoutes).
		Register(advertRoutes).
		Register(traceabilityRoutes).
		Register(aiRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// phoneDirectory resolves the mobile money number to charge for a user
// from their account record
type phoneDirectory struct {
	users identity.UserRepository
}

func (d *phoneDirectory) PhoneByUser(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := d.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Phone, nil
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
