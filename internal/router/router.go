package router

import (
	"encoding/json"
	"net/http"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/middleware"
)

type Handlers struct {
	Root   *apiHandler.RootHandler
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// New registers every route. /api/tasks/stats is a static segment and wins
// over /api/tasks/{id} in fasthttp/router regardless of order.
func New(handlers Handlers, logger *zap.Logger) *router.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := router.New()
	r.PanicHandler = panicHandler(logger)
	r.NotFound = errorHandler(http.StatusNotFound, domain.ErrCodeNotFound, "Not found")
	r.MethodNotAllowed = errorHandler(http.StatusMethodNotAllowed, domain.ErrCodeInvalid, "Method not allowed")

	if handlers.Health != nil {
		r.GET("/health", handlers.Health.Check)
	}

	r.GET("/api", handlers.Root.Index)
	r.GET("/api/", handlers.Root.Index)

	api := r.Group("/api")

	api.GET("/tasks", handlers.Task.ListTasks)
	api.POST("/tasks", handlers.Task.CreateTask)
	api.GET("/tasks/stats", handlers.Task.Stats)
	api.GET("/tasks/{id}", handlers.Task.GetTask)
	api.PUT("/tasks/{id}", handlers.Task.UpdateTask)
	api.PATCH("/tasks/{id}/status", handlers.Task.UpdateStatus)
	api.DELETE("/tasks/{id}", handlers.Task.DeleteTask)

	return r
}

// Handler wraps the router with the access log and CORS middleware.
func Handler(r *router.Router, allowOrigins []string, logger *zap.Logger) fasthttp.RequestHandler {
	return middleware.Chain(r.Handler,
		middleware.AccessLog(logger),
		middleware.CORS(allowOrigins),
	)
}

func panicHandler(logger *zap.Logger) func(*fasthttp.RequestCtx, interface{}) {
	return func(ctx *fasthttp.RequestCtx, rcv interface{}) {
		logger.Error("handler panic",
			zap.ByteString("path", ctx.Path()),
			zap.Any("panic", rcv),
		)
		writeError(ctx, http.StatusInternalServerError, domain.ErrCodeInternal, "Internal server error")
	}
}

func errorHandler(status int, code domain.ErrorCode, detail string) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		writeError(ctx, status, code, detail)
	}
}

func writeError(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, detail string) {
	body, _ := json.Marshal(transport.ErrorResponse{Detail: detail, Code: string(code)})
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
