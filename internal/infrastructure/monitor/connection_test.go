package monitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_RefreshRecordsEachProbe(t *testing.T) {
	mon := New(time.Minute, nil,
		Probe{Name: "storage", Check: func(context.Context) error { return nil }},
		Probe{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }},
	)

	assert.False(t, mon.GetStatus().Healthy())

	status := mon.Refresh(context.Background())
	require.Len(t, status.Services, 2)
	assert.True(t, status.Services["storage"].Healthy)
	assert.False(t, status.Services["redis"].Healthy)
	assert.Equal(t, "connection refused", status.Services["redis"].Error)
	assert.False(t, status.Healthy())
	assert.False(t, mon.GetStatus().Healthy())
}

func TestMonitor_GetStatusReturnsCopy(t *testing.T) {
	mon := New(time.Minute, nil, Probe{Name: "storage", Check: func(context.Context) error { return nil }})
	mon.Refresh(context.Background())

	snapshot := mon.GetStatus()
	snapshot.Services["storage"] = ServiceStatus{Healthy: false}

	assert.True(t, mon.GetStatus().Healthy())
}

func TestMonitor_ProbeGetsDeadline(t *testing.T) {
	var sawDeadline atomic.Bool
	mon := New(time.Minute, nil, Probe{Name: "storage", Check: func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		sawDeadline.Store(ok)
		return nil
	}})

	mon.Refresh(context.Background())
	assert.True(t, sawDeadline.Load())
}

func TestMonitor_StartAndStop(t *testing.T) {
	var calls atomic.Int32
	mon := New(time.Hour, nil, Probe{Name: "storage", Check: func(context.Context) error {
		calls.Add(1)
		return nil
	}})

	require.NoError(t, mon.Start())
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, mon.GetStatus().Healthy())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	mon.Stop(ctx)
}
