package http

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const authHeaderKey = "Authorization"
const authType = "Bearer"
const userPayloadKey = "user_payload"

func abort(ctx *gin.Context, err error) {
	statusCode, _ := errorStatus(err)
	ctx.AbortWithStatusJSON(statusCode, messageResponse{Message: err.Error()})
}

func authCheck(tokenService port.TokenService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.Request.Header.Get(authHeaderKey)
		if len(header) == 0 {
			abort(ctx, domain.ErrEmptyAuthorizationHeader)
			return
		}

		words := strings.Fields(header)
		if len(words) != 2 {
			abort(ctx, domain.ErrInvalidAuthorizationHeader)
			return
		}
		if words[0] != authType {
			abort(ctx, domain.ErrInvalidAuthorizationType)
			return
		}
		token := words[1]
		payload, err := tokenService.VerifyToken(token)
		if err != nil {
			abort(ctx, domain.ErrInvalidToken)
			return
		}

		ctx.Set(userPayloadKey, payload)

		ctx.Next()
	}
}

// requireRole lets through only callers holding one of the roles.
func requireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !slices.Contains(roles, getAuthPayload(ctx).Role) {
			abort(ctx, domain.ErrForbidden)
			return
		}
		ctx.Next()
	}
}

func getAuthPayload(ctx *gin.Context) *port.TokenPayload {
	return ctx.MustGet(userPayloadKey).(*port.TokenPayload)
}

func getActor(ctx *gin.Context) domain.Actor {
	return getAuthPayload(ctx).Actor()
}

// requestTracing continues the caller's trace, or starts one, and logs
// the finished request.
func requestTracing(logger *zap.Logger) gin.HandlerFunc {
	tracer := otel.Tracer("github.com/MikeRez0/storefront/internal/adapter/handler/http")
	return func(ctx *gin.Context) {
		start := time.Now()
		reqCtx := otel.GetTextMapPropagator().Extract(ctx.Request.Context(),
			propagation.HeaderCarrier(ctx.Request.Header))

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path
		}
		reqCtx, span := tracer.Start(reqCtx, ctx.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", ctx.Request.Method),
				attribute.String("http.route", route),
			))
		defer span.End()
		ctx.Request = ctx.Request.WithContext(reqCtx)

		ctx.Next()

		status := ctx.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		fields := []zap.Field{
			zap.String("method", ctx.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if sc := span.SpanContext(); sc.IsValid() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}
		if status >= http.StatusInternalServerError {
			logger.Warn("request", fields...)
			return
		}
		logger.Debug("request", fields...)
	}
}
