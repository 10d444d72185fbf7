package cron

import (
	"context"
	"time"

	"pcohire/services/notification"
	"pcohire/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotificationWorker drains the notification delivery queue and periodically
// sweeps rows that were never delivered.
type NotificationWorker struct {
	srv       *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *zap.Logger
}

// RedriveSchedule controls the sweep over undelivered notifications. An empty
// Cron disables it.
type RedriveSchedule struct {
	Cron  string
	After time.Duration
	Batch int
}

// NewNotificationWorker wires the delivery and redrive handlers onto an asynq server.
func NewNotificationWorker(redisOpts asynq.RedisClientOpt, delivery notification.DeliveryService, redriver notification.Redriver, schedule RedriveSchedule, logger *zap.Logger) *NotificationWorker {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.NotificationQueue: 6,
				"default":               1,
			},
			Logger: logger.Sugar(),
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Warn("[NotificationWorker] delivery attempt failed",
					zap.String("type", task.Type()),
					zap.Int("retried", retried),
					zap.Int("max_retry", maxRetry),
					zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeDeliverNotification, HandleDeliverNotification(delivery, logger))

	w := &NotificationWorker{srv: srv, mux: mux, logger: logger}
	if redriver == nil || schedule.Cron == "" {
		return w
	}

	mux.HandleFunc(tasks.TypeRedriveNotifications, HandleRedriveNotifications(redriver, schedule, time.Now, logger))
	w.scheduler = asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Logger: logger.Sugar()})
	task, opts := tasks.NewRedriveNotificationsTask()
	if _, err := w.scheduler.Register(schedule.Cron, task, opts...); err != nil {
		logger.Error("[NotificationWorker] invalid redrive schedule, sweep disabled",
			zap.String("cron", schedule.Cron), zap.Error(err))
		w.scheduler = nil
	}
	return w
}

// Start runs the worker in background with retry logic.
func (w *NotificationWorker) Start(redisOpts asynq.RedisClientOpt) {
	go monitorRedisConnection(redisOpts, w.logger)

	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			w.logger.Error("[NotificationWorker] failed to start redrive scheduler", zap.Error(err))
		}
	}

	go func() {
		w.logger.Info("[NotificationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := w.srv.Run(w.mux); err != nil {
				w.logger.Error("[NotificationWorker] failed to start worker",
					zap.Int("attempt", attempts), zap.Int("max_attempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					w.logger.Fatal("[NotificationWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// Shutdown stops fetching new jobs and waits for in-flight deliveries.
func (w *NotificationWorker) Shutdown() {
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	w.srv.Shutdown()
}

// HandleDeliverNotification adapts the delivery service to an asynq handler.
func HandleDeliverNotification(delivery notification.DeliveryService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseDeliverNotificationPayload(task)
		if err != nil {
			logger.Error("[NotificationHandler] invalid payload", zap.Error(err))
			// A malformed payload will never succeed.
			return asynq.SkipRetry
		}
		if p.NotificationID == "" {
			return asynq.SkipRetry
		}
		return delivery.Deliver(ctx, p.NotificationID)
	}
}

// HandleRedriveNotifications re-queues rows older than schedule.After that are
// still undelivered. The cutoff is truncated to the minute so it doubles as the
// sweep's task id scope.
func HandleRedriveNotifications(redriver notification.Redriver, schedule RedriveSchedule, now func() time.Time, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		cutoff := now().Add(-schedule.After).Truncate(time.Minute)
		queued, err := redriver.Redrive(ctx, cutoff, schedule.Batch)
		if err != nil {
			logger.Warn("[NotificationWorker] redrive sweep failed", zap.Int("queued", queued), zap.Error(err))
			return err
		}
		logger.Debug("[NotificationWorker] redrive sweep finished", zap.Int("queued", queued))
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection(opts asynq.RedisClientOpt, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	defer client.Close()

	ctx := context.Background()
	for {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("[NotificationWorker] Redis connection lost", zap.Error(err))
		}
		time.Sleep(10 * time.Second)
	}
}
