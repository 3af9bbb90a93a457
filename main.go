package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homedish/accounts"
	"homedish/auth"
	"homedish/config"
	"homedish/db"
	"homedish/favorites"
	"homedish/meals"
	"homedish/orders"
	"homedish/pay"
	"homedish/ratelim"
	"homedish/rdx"
	"homedish/receipts"
	"homedish/reviews"
	"homedish/routes"
	"homedish/stripe"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := db.Connect(startCtx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := store.EnsureIndexes(startCtx); err != nil {
		log.Fatalf("❌ %v", err)
	}

	conn, err := rdx.Connect(startCtx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	cancelStart()

	var intentCache pay.IntentCache = pay.NopCache{}
	if conn != nil {
		intentCache = pay.NewRedisIntentCache(conn)
	}

	if cfg.StripeSecretKey == "" {
		log.Println("STRIPE_SECRET_KEY not set; payment intents will fail")
	}

	database := store.Database
	tokens := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)

	accountRepo := accounts.NewMongoRepo(database)
	accountSvc := accounts.NewService(accountRepo)

	mealRepo := meals.NewMongoRepo(database)
	mealSvc := meals.NewService(mealRepo)

	reviewSvc := reviews.NewService(reviews.NewMongoRepo(database), mealRepo, mealSvc, accountRepo)
	favoriteSvc := favorites.NewService(favorites.NewMongoRepo(database), mealRepo)

	orderSvc := orders.NewService(orders.NewMongoRepo(database), mealRepo, accountRepo)

	bridge := pay.NewBridge(
		orderSvc,
		stripe.NewProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		pay.NewMongoLedger(database),
		intentCache,
		cfg.PaymentCurrency,
	)

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	stopJanitor := make(chan struct{})
	go rateLimiter.Janitor(time.Minute, stopJanitor)

	router := httprouter.New()
	router.GET("/health", Index)
	routes.RoutesWrapper(router, &routes.Deps{
		Tokens:      tokens,
		AccountRepo: accountRepo,
		Limiter:     rateLimiter,
		Idempotency: pay.NewMongoIdempotencyStore(database),
		Accounts:    accounts.NewHandler(accountSvc, tokens, cfg.CookieSecure),
		Meals:       meals.NewHandler(mealSvc),
		Reviews:     reviews.NewHandler(reviewSvc),
		Favorites:   favorites.NewHandler(favoriteSvc),
		Orders:      orders.NewHandler(orderSvc),
		Payments:    pay.NewHandler(bridge),
		Receipts:    receipts.NewHandler(orderSvc, receipts.NewSigner(cfg.ReceiptSecret), cfg.PaymentCurrency),
	})

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Idempotency-Key"},
		ExposedHeaders:   []string{"Idempotent-Replayed", "Retry-After"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		close(stopJanitor)
		closeStores(store, conn)
	})

	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}

func closeStores(store *db.Store, conn *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Printf("Mongo close: %v", err)
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Printf("Redis close: %v", err)
		}
	}
}
