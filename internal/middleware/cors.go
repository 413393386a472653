package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"
)

const (
	allowMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	maxAge       = "600"
)

// Middleware wraps a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Chain applies middlewares so the first one listed runs outermost.
func Chain(h fasthttp.RequestHandler, mws ...Middleware) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CORS answers preflight requests and decorates responses for the allowed
// origins. A "*" entry allows any origin.
func CORS(allowOrigins []string) Middleware {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowOrigins))
	for _, origin := range allowOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			origin := string(ctx.Request.Header.Peek(fasthttp.HeaderOrigin))
			_, listed := allowed[origin]
			permitted := origin != "" && (allowAll || listed)

			if permitted {
				h := &ctx.Response.Header
				if allowAll {
					h.Set(fasthttp.HeaderAccessControlAllowOrigin, "*")
				} else {
					h.Set(fasthttp.HeaderAccessControlAllowOrigin, origin)
					h.Add(fasthttp.HeaderVary, fasthttp.HeaderOrigin)
				}
				h.Set(fasthttp.HeaderAccessControlExposeHeaders, "X-Request-ID")
			}

			preflight := ctx.IsOptions() && len(ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestMethod)) > 0
			if !preflight {
				next(ctx)
				return
			}

			if permitted {
				h := &ctx.Response.Header
				h.Set(fasthttp.HeaderAccessControlAllowMethods, allowMethods)
				if reqHeaders := ctx.Request.Header.Peek(fasthttp.HeaderAccessControlRequestHeaders); len(reqHeaders) > 0 {
					h.SetBytesV(fasthttp.HeaderAccessControlAllowHeaders, reqHeaders)
				} else {
					h.Set(fasthttp.HeaderAccessControlAllowHeaders, "*")
				}
				h.Set(fasthttp.HeaderAccessControlMaxAge, maxAge)
			}
			ctx.SetStatusCode(fasthttp.StatusNoContent)
		}
	}
}
