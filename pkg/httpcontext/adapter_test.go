package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	appLogger "github.com/fastygo/taskboard/pkg/logger"
)

func TestAdapter_UsesInboundRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx
	rc.Request.Header.Set(HeaderRequestID, "abc-123")

	ctx, cancel := NewAdapter(time.Second).Attach(&rc)
	defer cancel()

	assert.Equal(t, "abc-123", appLogger.RequestIDFromContext(ctx))
	assert.Equal(t, "abc-123", string(rc.Response.Header.Peek(HeaderRequestID)))

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 200*time.Millisecond)
}

func TestAdapter_GeneratesStableRequestID(t *testing.T) {
	var rc fasthttp.RequestCtx

	first := RequestID(&rc)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(&rc))

	ctx, cancel := NewAdapter(0).Attach(&rc)
	defer cancel()
	assert.Equal(t, first, appLogger.RequestIDFromContext(ctx))
}
