package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndInvoke(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("check_backend_health", func(ctx context.Context) (any, error) {
		return true, nil
	}))

	out, err := r.Invoke(context.Background(), "check_backend_health")
	require.NoError(t, err)
	assert.Equal(t, true, out)
	assert.Equal(t, []string{"check_backend_health"}, r.Names())
}

func TestRegistry_RejectsBadRegistrations(t *testing.T) {
	r := NewRegistry()
	noop := func(ctx context.Context) (any, error) { return nil, nil }

	assert.ErrorIs(t, r.Register("", noop), ErrEmptyName)
	assert.ErrorIs(t, r.Register("Check Backend", noop), ErrBadName)
	assert.Error(t, r.Register("nil_func", nil))

	require.NoError(t, r.Register("a", noop))
	assert.ErrorIs(t, r.Register("a", noop), ErrDuplicate)

	assert.Panics(t, func() { r.MustRegister("a", noop) })
}

func TestRegistry_UnknownCommand(t *testing.T) {
	r := NewRegistry()
	_, err := r.Invoke(context.Background(), "scan_file")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestRegistry_CommandErrorPassesThrough(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("boom")
	r.MustRegister("fails", func(ctx context.Context) (any, error) { return nil, boom })
	r.MustRegister("b", func(ctx context.Context) (any, error) { return nil, nil })

	_, err := r.Invoke(context.Background(), "fails")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnknown)
	assert.Equal(t, []string{"b", "fails"}, r.Names())
}
