package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/db"
	"food-delivery/internal/events"
	"food-delivery/internal/httpserver"
	"food-delivery/internal/payment"
	orderrepo "food-delivery/internal/repository/order"
	restaurantrepo "food-delivery/internal/repository/restaurant"
	tokenrepo "food-delivery/internal/repository/token"
	userrepo "food-delivery/internal/repository/user"
	ordersvc "food-delivery/internal/service/order"
	restaurantsvc "food-delivery/internal/service/restaurant"
	usersvc "food-delivery/internal/service/user"
	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.StripeSecretKey == "" || cfg.WebhookSecret == "" {
		logger.Printf("STRIPE_SECRET_KEY or WEBHOOK_ENDPOINT_SECRET not set, checkout and webhooks will fail")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Fatalf("connect to amqp: %v", err)
		}
		publisher = amqpPub
		logger.Printf("publishing order events to exchange %s", cfg.AMQPExchange)
	}
	defer publisher.Close()

	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)
	restaurantRepo := restaurantrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)

	userService := usersvc.New(userRepo, tokenRepo, cfg.TokenTTL, logger)
	restaurantService := restaurantsvc.New(restaurantRepo, orderRepo)
	orderService := ordersvc.New(orderRepo, restaurantRepo,
		payment.NewStripe(cfg.StripeSecretKey, cfg.WebhookSecret, logger),
		publisher,
		ordersvc.CheckoutConfig{
			Currency:         cfg.CheckoutCurrency,
			SuccessURL:       cfg.FrontendURL + "/order/status",
			CancelURL:        cfg.FrontendURL + "/cart",
			AllowedCountries: cfg.ShippingCountries,
		},
		logger,
	)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		UserSvc:       userService,
		RestaurantSvc: restaurantService,
		OrderSvc:      orderService,
	}, cfg.FrontendURL)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweepTokens(sweepCtx, userService, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// sweepTokens removes expired access tokens once an hour.
func sweepTokens(ctx context.Context, users *usersvc.Service, logger *log.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		n, err := users.PurgeExpiredTokens(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("purge expired tokens: %v", err)
		} else if n > 0 {
			logger.Printf("purged %d expired tokens", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
