package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parkseva/internal/booking"
	"github.com/iliyamo/parkseva/internal/catalog"
	"github.com/iliyamo/parkseva/internal/config"
	"github.com/iliyamo/parkseva/internal/database"
	"github.com/iliyamo/parkseva/internal/handler"
	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/middleware"
	"github.com/iliyamo/parkseva/internal/notify"
	"github.com/iliyamo/parkseva/internal/payment"
	"github.com/iliyamo/parkseva/internal/repository"
	"github.com/iliyamo/parkseva/internal/router"
	"github.com/iliyamo/parkseva/internal/service"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the booking notification consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(migrateUp)
		},
	}
	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply database migrations before serving")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

func serve(migrateUp bool) error {
	cfg := config.Load()
	initLogging(cfg)
	payCfg := config.LoadPaymentConfig()
	notifyCfg := config.LoadNotifyConfig()
	catalogCfg := config.LoadCatalogConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if migrateUp {
		if err := database.Migrate(ctx, db, true); err != nil {
			return err
		}
	}

	lots := repository.NewLotRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	profiles := repository.NewProfileRepo(db)
	tokens := repository.NewTokenRepo(db)

	demo, err := catalog.LoadDataset(catalogCfg.FallbackFile)
	if err != nil {
		return err
	}
	reader := catalog.NewReader(lots, slots, demo, catalogCfg)

	// Notifications: the dispatcher is the consumer side of the booking
	// queue; the writer only ever sees the publisher.
	sms := notify.NewSMSSender(notifyCfg)
	whatsapp := notify.NewWhatsAppSender(notifyCfg)
	bookingLog := logger.NewRotatingWriter(notifyCfg.BookingLog)
	defer bookingLog.Close()
	dispatcher := notify.NewDispatcher(sms, whatsapp, notifyCfg.DefaultPhone, bookingLog)

	pub, closePub, err := service.NewPublisher(notifyCfg, dispatcher.Handle)
	if err != nil {
		return err
	}
	defer func() { _ = closePub() }()
	go func() {
		if err := service.StartConsumer(ctx, notifyCfg, dispatcher.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorLogger.WithError(err).Error("booking consumer stopped")
		}
	}()

	selector, gateway := payment.NewFromConfig(payCfg)
	if gateway == nil {
		logger.InfoLogger.Warn("no payment gateway configured; card bookings are stored as pending")
	}
	writer := booking.NewWriter(bookings, slots, pub)

	// nil when Redis is unreachable: the cache passes through and the
	// limiter uses its in-process store.
	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := router.New(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, profiles, tokens, notify.NewMailer(notifyCfg), notifyCfg.ResetTTL),
		handler.NewProfileHandler(profiles),
		cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewPublicHandler(reader), cache)
	router.RegisterCustomer(e, handler.NewCustomerHandler(reader, selector, writer, bookings, profiles), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(lots, slots, bookings), cfg.JWTSecret)
	payments := handler.NewPaymentHandler(gateway, selector.Wallet())
	router.RegisterFunctions(e, payments, handler.NewNotifyHandler(sms, whatsapp))
	router.RegisterPayments(e, payments, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.InfoLogger.WithField("env", cfg.Env).Infof("listening on %s", addr)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.InfoLogger.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
