package api

import (
	"context"
	"strings"
	"time"

	"asterbot/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const requestIDMetadataKey = "x-request-id"

// LoggingUnaryInterceptor кладет в контекст логгер с request_id, отдает id клиенту
// в заголовке и пишет по строке на вызов. Уровень зависит от кода ответа.
func LoggingUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	base := componentLogger(logger, "grpc")

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := incomingRequestID(ctx)
		if err := grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, requestID)); err != nil {
			base.Debug().Err(err).Msg("failed to set request id header")
		}
		l := base.With().Str("request_id", requestID).Logger()
		ctx = l.WithContext(ctx)

		started := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		metrics.IncGRPC(info.FullMethod, code.String())

		l.WithLevel(levelForCode(code)).
			Str("method", info.FullMethod).
			Str("peer", peerAddr(ctx)).
			Stringer("code", code).
			Dur("took", time.Since(started)).
			Msg("grpc call")
		return resp, err
	}
}

// RecoveryUnaryInterceptor превращает панику обработчика в codes.Internal.
func RecoveryUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	fallback := componentLogger(logger, "grpc")

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			l := zerolog.Ctx(ctx)
			if l.GetLevel() == zerolog.Disabled {
				l = &fallback
			}
			l.Error().Interface("panic", r).Str("method", info.FullMethod).Msg("grpc handler panicked")
			err = status.Error(codes.Internal, "internal error")
		}()
		return handler(ctx, req)
	}
}

func levelForCode(code codes.Code) zerolog.Level {
	switch code {
	case codes.OK, codes.NotFound, codes.Canceled:
		return zerolog.InfoLevel
	case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

func peerAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return clientKeyUnknown
	}
	return p.Addr.String()
}

// incomingRequestID берет x-request-id клиента или выдает новый.
func incomingRequestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for _, v := range md.Get(requestIDMetadataKey) {
			if id := strings.TrimSpace(v); id != "" {
				return id
			}
		}
	}
	return uuid.NewString()
}

func componentLogger(logger *zerolog.Logger, component string) zerolog.Logger {
	if logger == nil {
		return zerolog.Nop()
	}
	return logger.With().Str("component", component).Logger()
}
