package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_ShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	for _, name := range []string{"store", "cache", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	m.Register("ignored", nil)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http", "cache", "store"}, order)

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Len(t, order, 3)
}

func TestManager_ShutdownJoinsErrors(t *testing.T) {
	m := New(time.Second, nil)
	errStore := errors.New("store close")
	errCache := errors.New("cache close")

	ran := false
	m.Register("store", func(context.Context) error { return errStore })
	m.Register("monitor", func(context.Context) error { ran = true; return nil })
	m.Register("cache", func(context.Context) error { return errCache })

	err := m.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errStore)
	assert.ErrorIs(t, err, errCache)
	assert.True(t, ran)
}

func TestManager_HooksReceiveDeadline(t *testing.T) {
	m := New(50*time.Millisecond, nil)

	var deadline time.Time
	m.Register("flush", func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return nil
	})

	require.NoError(t, m.Shutdown(context.Background()))
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
}

func TestManager_ListenCancel(t *testing.T) {
	m := New(time.Second, nil)

	ctx, cancel := m.Listen(context.Background())
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}
