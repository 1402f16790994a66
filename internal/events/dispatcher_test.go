package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	var calls []string
	d.Subscribe(EventClientInvited, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.AccountID)
		return nil
	})
	d.Subscribe(EventClientInvited, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.AccountID)
		return nil
	})
	d.Subscribe(EventStaffRoleChanged, func(context.Context, Event) error {
		calls = append(calls, "unrelated")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventClientInvited, "c-1", nil, nil)))
	assert.Equal(t, []string{"first:c-1", "second:c-1"}, calls)
}

func TestPublishLogsFailingHandlersAndContinues(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	reached := false
	d.Subscribe(EventPortalAccessChanged, func(context.Context, Event) error {
		return errors.New("smtp down")
	})
	d.Subscribe(EventPortalAccessChanged, func(context.Context, Event) error {
		reached = true
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), New(EventPortalAccessChanged, "c-1", nil, PortalAccessChangedPayload{Enabled: true})))
	assert.True(t, reached)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "event handler failed", logs.All()[0].Message)
}

func TestNewStampsIdentity(t *testing.T) {
	a := New(EventStaffRoleChanged, "s-1", &Actor{ID: "admin-1"}, nil)
	b := New(EventStaffRoleChanged, "s-1", nil, nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
