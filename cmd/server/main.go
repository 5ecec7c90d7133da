package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-catalog-manager/internal/api"
	"product-catalog-manager/internal/catalog"
	"product-catalog-manager/internal/config"
	"product-catalog-manager/internal/store"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	appName         = "ProductCatalogManager"
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("INFO: No .env file found, using the process environment")
	}
	logger := log.New(os.Stdout, fmt.Sprintf("[%s] ", appName), log.LstdFlags|log.Lshortfile|log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("FATAL: Error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	logger.Println("INFO: Service stopped.")
}

// run serves HTTP and gRPC until ctx is cancelled or either server fails,
// then drains both and closes the store.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger.Printf("INFO: Starting env=%s store=%s", cfg.AppEnv, cfg.Store.Driver)

	productStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		if err := productStore.Close(); err != nil {
			logger.Printf("WARN: Error closing store: %v", err)
		}
	}()

	svc := catalog.NewService(productStore, logger)

	httpServer := &http.Server{
		Addr: ":" + cfg.HttpServer.Port,
		Handler: api.NewRouter(api.NewHTTPHandler(svc, logger), api.RouterOptions{
			AllowedOrigins: cfg.HttpServer.AllowedOrigins,
			RequestLogging: cfg.Debug() || cfg.AppEnv == "development",
		}, logger),
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}
	grpcServer := newGRPCServer(api.NewGRPCHandler(svc, logger), logger)

	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		return fmt.Errorf("listen for gRPC on port %s: %w", cfg.GrpcServer.Port, err)
	}

	serveErr := make(chan error, 2)
	go func() {
		logger.Printf("INFO: HTTP server listening on port %s", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server: %w", err)
		}
	}()
	go func() {
		logger.Printf("INFO: gRPC server listening on port %s", cfg.GrpcServer.Port)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErr <- fmt.Errorf("gRPC server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Println("INFO: Shutdown signal received.")
	case runErr = <-serveErr:
		logger.Printf("ERROR: %v", runErr)
	}

	shutdown(httpServer, grpcServer, logger)
	return runErr
}

func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.ProductStorer, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.Store.Driver {
	case config.DriverMemory:
		logger.Println("WARN: Using in-memory store, data is lost on restart.")
		return store.NewMemoryStore(), nil

	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if err := store.EnsurePostgresSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Printf("INFO: Connected to PostgreSQL at %s:%s", cfg.Postgres.Host, cfg.Postgres.Port)
		return store.NewPostgresStore(db), nil

	default:
		if cfg.Debug() {
			logger.Printf("DEBUG: Connecting to MongoDB database=%s collection=%s", cfg.Mongo.Database, cfg.Mongo.Collection)
		}
		ms, err := store.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, err
		}
		if err := ms.Ping(ctx); err != nil {
			ms.Close()
			return nil, fmt.Errorf("ping mongodb: %w", err)
		}
		logger.Printf("INFO: Connected to MongoDB collection %s.%s", cfg.Mongo.Database, cfg.Mongo.Collection)
		return ms, nil
	}
}

func newGRPCServer(handler *api.GRPCHandler, logger *log.Logger) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(api.LoggingUnaryInterceptor(logger)))
	api.RegisterProductCatalogServer(s, handler)
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	// Reflection lets grpcurl discover the service without .proto files.
	reflection.Register(s)
	logger.Printf("INFO: gRPC services registered: %s, health, reflection", api.ProductCatalogServiceName)
	return s
}

// shutdown drains in-flight requests on both servers, forcing the gRPC
// server to stop if it has not drained within shutdownTimeout.
func shutdown(httpServer *http.Server, grpcServer *grpc.Server, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcStopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(grpcStopped)
	}()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Printf("WARN: HTTP server graceful shutdown failed: %v", err)
	}

	select {
	case <-grpcStopped:
	case <-ctx.Done():
		logger.Printf("WARN: gRPC server graceful shutdown timed out: %v", ctx.Err())
		grpcServer.Stop()
	}
	logger.Println("INFO: HTTP and gRPC servers shut down.")
}
