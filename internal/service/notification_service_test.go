package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/framehouse/agency-console/internal/config"
	"github.com/framehouse/agency-console/internal/events"
)

func TestNotificationLinksOnlyAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	notifications := NewNotificationService(dispatcher, zap.New(core), config.NotificationConfig{
		EmailFrom: "noreply@studio.test",
		PortalURL: "https://console.studio.test/portal/",
	})
	notifications.RegisterHandlers()

	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventClientInvited, "client-1", nil, events.ClientInvitedPayload{
		Email:     "buyer@brand.test",
		Token:     "secret-invite-token",
		ExpiresAt: time.Now().Add(time.Hour),
	})))

	entries := logs.FilterMessage("ClientInvited").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "client-1", entries[0].ContextMap()["account_id"])
	for _, entry := range logs.All() {
		for _, value := range entry.ContextMap() {
			if str, ok := value.(string); ok {
				assert.NotContains(t, str, "secret-invite-token")
			}
		}
	}
}

func TestNotificationLinkFormat(t *testing.T) {
	n := NewNotificationService(nil, zap.NewNop(), config.NotificationConfig{PortalURL: "https://console.studio.test/portal/"})
	assert.Equal(t, "https://console.studio.test/portal/activate?token=abc", n.link("/activate", "abc"))
	n.RegisterHandlers()
}
