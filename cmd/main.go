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

	"github.com/gin-gonic/gin"
	"github.com/jayansh1208/marketly/cache"
	"github.com/jayansh1208/marketly/config"
	"github.com/jayansh1208/marketly/controllers"
	"github.com/jayansh1208/marketly/database"
	"github.com/jayansh1208/marketly/logger"
	"github.com/jayansh1208/marketly/notification"
	"github.com/jayansh1208/marketly/payment"
	"github.com/jayansh1208/marketly/repository"
	"github.com/jayansh1208/marketly/repository/memory"
	"github.com/jayansh1208/marketly/routes"
	"github.com/jayansh1208/marketly/services"
	"go.uber.org/zap"
)

type stores struct {
	products  services.ProductRepository
	carts     services.CartRepository
	orders    services.OrderRepository
	users     services.UserRepository
	blacklist services.TokenBlacklist
	audit     services.AuditLog
	closers   []func(context.Context) error
}

func (s *stores) close(ctx context.Context, log *zap.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn("Failed to close store", zap.Error(err))
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*stores, error) {
	s := &stores{}

	switch cfg.Storage {
	case config.StorageMemory:
		s.products = memory.NewProductRepository()
		s.carts = memory.NewCartRepository()
		s.orders = memory.NewOrderRepository()
		s.users = memory.NewUserRepository()
		s.blacklist = memory.NewTokenBlacklist()
		s.audit = memory.NewAuditLog()
		log.Warn("Using in-memory storage, data is lost on restart")

	default:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.DBName)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if err := db.EnsureIndexes(ctx); err != nil {
			s.close(ctx, log)
			return nil, err
		}
		s.products = repository.NewProductRepository(db.DB)
		s.carts = repository.NewCartRepository(db.DB)
		s.orders = repository.NewOrderRepository(db.DB)
		s.users = repository.NewUserRepository(db.DB)
		s.blacklist = repository.NewTokenBlacklist(db.DB)
		s.audit = repository.NewAuditRepository(db.DB)
		log.Info("Connected to MongoDB", zap.String("db", cfg.DBName))
	}

	if cfg.RedisAddr != "" {
		client, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("Redis unavailable, product cache disabled", zap.Error(err))
			return s, nil
		}
		store := cache.NewRedisStore(client)
		s.closers = append(s.closers, func(context.Context) error { return store.Close() })
		s.products = cache.NewProductRepository(s.products, store, cfg.ProductCacheTTL, log)
		log.Info("Product cache enabled", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.ProductCacheTTL))
	}
	return s, nil
}

func newSender(cfg *config.Config, log *zap.Logger) notification.Sender {
	if cfg.EmailEnabled() {
		return notification.NewMailSender(cfg.EmailSenderName, cfg.EmailAccount, cfg.EmailPassword)
	}
	log.Info("Email credentials not set, confirmations are only logged")
	return notification.NewLogSender(log)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}

	notifier, err := notification.New(newSender(cfg, log), log)
	if err != nil {
		log.Fatal("Failed to start notifier", zap.Error(err))
	}

	authService := services.NewAuthService(st.users, st.blacklist, cfg.JWTSecret, cfg.JWTExpire)
	orderService := services.NewOrderService(
		st.products, st.carts, st.orders, st.users,
		notifier, st.audit, log,
		services.OrderOptions{
			CompensateStock: cfg.OrderCompensateStock,
			StrictStatus:    cfg.OrderStrictStatus,
		},
	)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	_ = r.SetTrustedProxies(nil)
	routes.RegisterRoutes(r, routes.Handlers{
		Auth:     controllers.NewAuthController(authService, log),
		Products: controllers.NewProductController(services.NewCatalogService(st.products, log), log),
		Cart:     controllers.NewCartController(services.NewCartService(st.products, st.carts), log),
		Orders:   controllers.NewOrderController(orderService, log),
		Payment:  controllers.NewPaymentController(payment.NewLocalGateway(), log),
	}, authService, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info("Received shutdown signal")
	case err := <-srvErr:
		log.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := notifier.Stop(); err != nil {
		log.Warn("Notifier did not stop cleanly", zap.Error(err))
	}
	st.close(shutdownCtx, log)

	log.Info("Server stopped")
}
