package api

import (
	"context"
	"fmt"
	"net"

	"asterbot/internal/config"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer отдает стандартный grpc.health.v1.Health для оркестратора.
type GRPCServer struct {
	srv    *grpc.Server
	health *health.Server
	lis    net.Listener
	log    zerolog.Logger
}

func NewGRPCServer(cfg config.APIGRPCConfig, logger *zerolog.Logger) (*GRPCServer, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen grpc port %d: %w", cfg.Port, err)
	}

	// логирование снаружи, чтобы паника тоже попала в строку вызова с кодом
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		LoggingUnaryInterceptor(logger),
		RecoveryUnaryInterceptor(logger),
	))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	if cfg.Reflection {
		reflection.Register(srv)
	}

	return &GRPCServer{srv: srv, health: hs, lis: lis, log: componentLogger(logger, "grpc")}, nil
}

// Addr фактический адрес; при Port 0 порт выбирает система.
func (s *GRPCServer) Addr() string {
	return s.lis.Addr().String()
}

// SetServing переключает общий статус сервера ("") в health.
func (s *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
}

func (s *GRPCServer) Serve() error {
	s.log.Info().Str("addr", s.Addr()).Msg("grpc health server started")
	return s.srv.Serve(s.lis)
}

// Shutdown переводит health в NOT_SERVING и ждет текущие вызовы, пока жив ctx.
func (s *GRPCServer) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.srv.GracefulStop()
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		s.log.Warn().Msg("grpc graceful stop timed out, closing connections")
		s.srv.Stop()
	}
}
