package middleware

import (
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/pkg/httpcontext"
)

// AccessLog assigns the request id and logs one line per request.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			started := time.Now()
			reqID := httpcontext.RequestID(ctx)

			next(ctx)

			status := ctx.Response.StatusCode()
			fields := []zap.Field{
				zap.String("request_id", reqID),
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(started)),
				zap.Int("bytes", len(ctx.Response.Body())),
				zap.String("remote_addr", ctx.RemoteAddr().String()),
			}
			if ua := ctx.Request.Header.UserAgent(); len(ua) > 0 {
				fields = append(fields, zap.ByteString("user_agent", ua))
			}
			switch {
			case status >= fasthttp.StatusInternalServerError:
				logger.Error("request completed", fields...)
			case status >= fasthttp.StatusBadRequest:
				logger.Warn("request completed", fields...)
			default:
				logger.Info("request completed", fields...)
			}
		}
	}
}
