package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"taskchat/internal/common"
	"taskchat/internal/config"
	"taskchat/internal/dbmysql"
	"taskchat/internal/di"
	"taskchat/internal/logger"
)

func main() {
	cfg := config.LoadConfig()
	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	log.Println("Starting Chat Service...")

	app, cleanup, err := di.InitializeChatService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize chat service: %v", err)
	}
	defer cleanup()

	if err := dbmysql.AutoMigrate(app.DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if app.Relay != nil {
		go func() {
			if err := app.Relay.Run(ctx, app.Hub); err != nil {
				log.Printf("Redis relay stopped: %v", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      newRouter(app),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Chat Service HTTP listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	grpcServer, healthServer := newAdminServer()
	lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
	if err != nil {
		log.Fatalf("Failed to listen on port %s: %v", cfg.Server.GRPCPort, err)
	}
	go func() {
		log.Printf("Admin gRPC running on port %s", cfg.Server.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down Chat Service...")
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	app.Hub.Shutdown()
	app.Notifier.Shutdown()
	grpcServer.GracefulStop()
	log.Println("Chat Service stopped")
}

// newRouter mounts the websocket endpoint and the REST API. Attachment routes
// sit outside the auth middleware and check the token themselves. CORS wraps
// the whole router so preflight requests never reach route matching.
func newRouter(app *di.Application) http.Handler {
	r := mux.NewRouter()
	r.Use(common.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"connections": app.Hub.ConnectionCount(),
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/ws", app.Hub.ServeWS)

	api := r.PathPrefix("/api").Subrouter()
	app.Chat.RegisterFileRoutes(api)

	protected := api.NewRoute().Subrouter()
	protected.Use(common.AuthMiddleware(app.Tokens, app.Users))
	app.Chat.RegisterRoutes(protected)
	app.Notifications.RegisterRoutes(protected)

	return common.CORSMiddleware(app.Config.Server.AllowOrigin)(r)
}

func newAdminServer() (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(loggingUnaryInterceptor),
		grpc.StreamInterceptor(loggingStreamInterceptor),
	)
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	return grpcServer, healthServer
}

func loggingUnaryInterceptor(ctx context.Context, req interface{},
	info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	start := time.Now()
	resp, err := handler(ctx, req)

	duration := time.Since(start)
	if err != nil {
		log.Printf("gRPC %s failed (%v): %v", info.FullMethod, duration, err)
	} else {
		log.Printf("gRPC %s completed (%v)", info.FullMethod, duration)
	}

	return resp, err
}

func loggingStreamInterceptor(srv interface{}, stream grpc.ServerStream,
	info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {

	log.Printf("gRPC %s stream started", info.FullMethod)
	err := handler(srv, stream)

	if err != nil {
		log.Printf("gRPC %s stream ended with error: %v", info.FullMethod, err)
	} else {
		log.Printf("gRPC %s stream completed", info.FullMethod)
	}
	return err
}
