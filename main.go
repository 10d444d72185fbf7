package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pcohire/config"
	"pcohire/cron"
	"pcohire/database"
	bookingRepo "pcohire/database/repository/booking"
	ledgerRepo "pcohire/database/repository/ledger"
	notificationRepo "pcohire/database/repository/notification"
	recordsRepo "pcohire/database/repository/records"
	vehicleRepo "pcohire/database/repository/vehicle"
	"pcohire/handlers"
	"pcohire/middleware"
	"pcohire/routes"
	"pcohire/services/billing"
	"pcohire/services/booking"
	"pcohire/services/notification"
	"pcohire/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	cache := utils.GetCacheClient()
	queueOpts := utils.QueueRedisOpt()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Payment gateway.
	var gateway billing.PaymentGateway = billing.LedgerOnlyGateway{}
	if config.AppConfig.StripeKey != "" {
		stripe.Key = config.AppConfig.StripeKey
		gateway = billing.NewStripeGateway(logger)
	} else {
		logger.Warn("main: STRIPE_KEY not set, adjustments are recorded without charging")
	}

	// Repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	vehicles := vehicleRepo.NewMongoVehicleRepo()
	ledger := ledgerRepo.NewMongoLedgerRepo()
	history := recordsRepo.NewMongoRecordRepo()
	notifications := notificationRepo.NewMongoNotificationRepo()
	tx := database.NewMongoTransactor(database.MongoClient)

	// Notifications: outbox producer and delivery worker.
	queue := asynq.NewClient(queueOpts)
	notificationService := &notification.DefaultNotificationService{
		Repo:     notifications,
		Queue:    queue,
		MaxRetry: config.AppConfig.NotificationMaxRetry,
		Logger:   logger.Named("notifications"),
	}
	deliveryService := &notification.DefaultDeliveryService{
		Repo:      notifications,
		Publisher: &notification.RedisPublisher{Client: cache},
		Logger:    logger.Named("delivery"),
	}
	if config.FirebaseEnabled() {
		fcm, err := utils.FirebaseInit(rootCtx)
		if err != nil {
			logger.Error("main: push delivery disabled", zap.Error(err))
		} else {
			deliveryService.Push = fcm
			notificationService.Topics = fcm
		}
	}

	worker := cron.NewNotificationWorker(queueOpts, deliveryService, notificationService, cron.RedriveSchedule{
		Cron:  config.AppConfig.NotificationRedriveCron,
		After: config.NotificationRedriveAfter(),
		Batch: config.AppConfig.NotificationRedriveBatch,
	}, logger.Named("worker"))
	worker.Start(queueOpts)

	// Booking workflows.
	locker := utils.NewRedisLocker(cache, "lock:booking:")
	adjustments := &billing.DefaultAdjustmentService{
		Ledger:   ledger,
		Gateway:  gateway,
		Tx:       tx,
		Currency: config.AppConfig.Currency,
		Logger:   logger.Named("billing"),
	}
	vehicleChangeService := &booking.DefaultVehicleChangeService{
		Bookings:     bookings,
		Vehicles:     vehicles,
		Ledger:       ledger,
		History:      history,
		Billing:      adjustments,
		Notifier:     notificationService,
		Tx:           tx,
		Locker:       locker,
		LockTTL:      config.BookingLockTTL(),
		AdminChannel: config.AppConfig.AdminChannel,
		Logger:       logger.Named("vehicle-change"),
	}
	returnService := &booking.DefaultReturnService{
		Bookings:     bookings,
		Vehicles:     vehicles,
		History:      history,
		Notifier:     notificationService,
		Tx:           tx,
		Locker:       locker,
		LockTTL:      config.BookingLockTTL(),
		AdminChannel: config.AppConfig.AdminChannel,
		Logger:       logger.Named("returns"),
	}
	queryService := &booking.DefaultBookingQueryService{
		Bookings: bookings,
		History:  history,
		Logger:   logger.Named("queries"),
	}

	utils.StartHealthMonitor(rootCtx, []*redis.Client{cache}, database.MongoClient, 30*time.Second)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(vehicleChangeService, returnService, queryService),
		handlers.NewNotificationHandler(notificationService),
	)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	stopBackground()
	worker.Shutdown()
	if err := queue.Close(); err != nil {
		logger.Warn("main: failed to close task queue client", zap.Error(err))
	}
	if err := cache.Close(); err != nil {
		logger.Warn("main: failed to close redis client", zap.Error(err))
	}
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect mongo", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
