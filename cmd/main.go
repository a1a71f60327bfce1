package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Epsilon-byte/ScholarsUnited/config"
	"github.com/Epsilon-byte/ScholarsUnited/internal/gateway"
	"github.com/Epsilon-byte/ScholarsUnited/internal/postgres"
	"github.com/Epsilon-byte/ScholarsUnited/internal/security"
	"github.com/Epsilon-byte/ScholarsUnited/internal/service"
	grpcx "github.com/Epsilon-byte/ScholarsUnited/internal/transport/grpc"
	httpx "github.com/Epsilon-byte/ScholarsUnited/internal/transport/http"
	"github.com/Epsilon-byte/ScholarsUnited/internal/transport/ws"
	"github.com/Epsilon-byte/ScholarsUnited/pkg/logger"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting messaging-gateway",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- postgres ---
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- repos ---
	messageRepo := postgres.NewMessageRepository(db.Pool)
	partRepo := postgres.NewParticipantRepository(db.Pool)
	notifRepo := postgres.NewNotificationRepository(db.Pool)

	// --- services ---
	chatSvc := service.NewChatService(messageRepo)
	partSvc := service.NewParticipationService(partRepo)

	// --- gateway ---
	gw := gateway.New(chatSvc, partSvc)
	gw.SetAuthzTimeout(cfg.WS.AuthzTimeoutOr(3 * time.Second))

	notifSvc := service.NewNotificationService(notifRepo, gw)

	// --- transports ---
	verifier := security.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.LeewayOr(30*time.Second))

	wsServer := ws.NewServer(gw, verifier)
	wsServer.SetTimings(cfg.WS.PingEveryOr(15*time.Second), cfg.WS.WriteTimeoutOr(5*time.Second))
	wsServer.SetLimits(cfg.WS.SendBuffer, cfg.WS.MaxMessageSize)

	handler := httpx.NewHandler(gw, chatSvc, partSvc, notifSvc)
	router := httpx.NewRouter(handler, wsServer, verifier)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	grpcServer, healthSrv := grpcx.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// --- run both servers ---
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", cfg.GRPC.Addr)
		if err != nil {
			errCh <- err
			return
		}
		slog.Info("grpc listen", "addr", cfg.GRPC.Addr)
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.GracefulStop()
	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
