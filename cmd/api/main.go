package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"todovault.org/internal/config"
	"todovault.org/internal/httpapi"
	"todovault.org/internal/obs"
	"todovault.org/internal/todo"
	"todovault.org/internal/token"
	"todovault.org/internal/user"
)

var commit = "none"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	obs.Init()
	obs.InitBuildInfo(cfg.Version, commit)

	if cfg.AuthSecret == "" {
		log.Fatal("TODOVAULT_AUTH_SECRET is required")
	}

	// Postgres when a DSN is configured, in-memory stores otherwise.
	var db *sql.DB
	var (
		tokenStore token.Store = token.NewInMemory()
		userStore  user.Store  = user.NewInMemory()
		todoStore  todo.Store  = todo.NewInMemory()
	)
	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		tokenStore = token.NewPGStore(db)
		userStore = user.NewPGStore(db)
		todoStore = todo.NewPGStore(db)
	}

	codec, err := token.NewCodec(cfg.AuthSecret)
	if err != nil {
		log.Fatalf("token codec: %v", err)
	}
	issuer, err := token.NewIssuer(codec, tokenStore, token.WithDefaultTTL(cfg.DefaultTokenTTL))
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}
	users, err := user.NewService(userStore)
	if err != nil {
		log.Fatalf("user service: %v", err)
	}
	todos, err := todo.NewService(todoStore)
	if err != nil {
		log.Fatalf("todo service: %v", err)
	}

	api, err := httpapi.New(httpapi.Deps{
		Codec:              codec,
		Issuer:             issuer,
		Tokens:             tokenStore,
		Users:              users,
		Todos:              todos,
		ReadyProbe:         httpapi.ReadyProbe{DB: db},
		Version:            cfg.Version,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		LoginRateBurst:     cfg.LoginRateBurst,
		LoginRatePerSecond: cfg.LoginRatePerSecond,
	})
	if err != nil {
		log.Fatalf("httpapi: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting todovault-api %s on %s", cfg.Version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
