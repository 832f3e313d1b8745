package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"StaffHub/config"
	"StaffHub/pkg/errors"
	"StaffHub/pkg/logger"
	"StaffHub/pkg/response"
)

// RecoverConfig controls how recovered panics are logged and reported.
type RecoverConfig struct {
	// OnSevereError is called for panics that indicate a broken process.
	OnSevereError     func(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte)
	EnableStackTrace  bool
	LogRequestDetails bool
	RecordInSpan      bool
	IsProduction      bool
}

func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		EnableStackTrace:  true,
		LogRequestDetails: true,
		RecordInSpan:      true,
		IsProduction:      config.Cfg.IsProduction(),
	}
}

func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()
		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	var stack []byte
	if cfg.EnableStackTrace {
		stack = debug.Stack()
	}

	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", err)),
		zap.String("path", string(c.Path())),
		zap.String("method", string(c.Method())),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", string(c.GetHeader("X-Request-Id"))),
	}
	if u, ok := CurrentUser(c); ok {
		fields = append(fields, zap.Int64("user_id", u.ID))
	}
	if cfg.LogRequestDetails {
		fields = append(fields, zap.String("user_agent", string(c.UserAgent())))
		if body := c.Request.Body(); len(body) > 0 && len(body) < 1024 && !strings.Contains(string(c.ContentType()), "multipart") {
			fields = append(fields, zap.ByteString("body", body))
		}
	}
	if len(stack) > 0 {
		fields = append(fields, zap.ByteString("stack", stack))
	}
	logger.Logger.Error("Panic recovered", fields...)

	if cfg.RecordInSpan {
		span := trace.SpanFromContext(ctx)
		span.RecordError(fmt.Errorf("panic: %v", err), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "panic")
	}

	if isSeverePanic(err) && cfg.OnSevereError != nil {
		cfg.OnSevereError(ctx, c, err, stack)
	}

	c.Abort()
	if cfg.IsProduction {
		response.Error(ctx, c, errors.Internal)
		return
	}
	response.ErrorWithDetails(ctx, c, errors.Internal, map[string]interface{}{
		"panic": fmt.Sprintf("%v", err),
	})
}

// isSeverePanic matches runtime failures that usually mean the process state is corrupt.
func isSeverePanic(err interface{}) bool {
	if err == nil {
		return false
	}
	msg := fmt.Sprintf("%v", err)
	for _, pattern := range []string{
		"out of memory",
		"concurrent map writes",
		"concurrent map read and map write",
		"all goroutines are asleep",
	} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
