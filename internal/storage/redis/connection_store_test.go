package redis

import (
	"testing"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionCodecRoundTrip(t *testing.T) {
	connectedAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	expiresAt := connectedAt.Add(90 * 24 * time.Hour)

	original := []domain.Connection{
		{
			ID:           "google_remote-123",
			UserID:       "user-1",
			ServiceID:    "google",
			ServiceName:  "Google",
			RemoteEmail:  "remote-123@example.com",
			RemoteName:   "Test User",
			Scopes:       []string{"openid", "email"},
			ConnectedAt:  connectedAt,
			ExpiresAt:    &expiresAt,
			IsActive:     true,
			RefreshToken: "refresh-token",
		},
		{
			ID:          "github_remote-9",
			UserID:      "user-1",
			ServiceID:   "github",
			ServiceName: "GitHub",
			ConnectedAt: connectedAt,
			IsActive:    false,
		},
	}

	payload, err := EncodeConnections(original)
	require.NoError(t, err)

	decoded, err := DecodeConnections(payload)
	require.NoError(t, err)
	require.Len(t, decoded, 2)

	assert.Equal(t, "google_remote-123", decoded[0].ID)
	assert.Equal(t, "google", decoded[0].ServiceID)
	assert.True(t, decoded[0].IsActive)
	assert.Equal(t, "refresh-token", decoded[0].RefreshToken)

	// Date fields reconstruct as equivalent instants.
	assert.True(t, decoded[0].ConnectedAt.Equal(connectedAt))
	require.NotNil(t, decoded[0].ExpiresAt)
	assert.True(t, decoded[0].ExpiresAt.Equal(expiresAt))

	assert.False(t, decoded[1].IsActive)
	assert.Nil(t, decoded[1].ExpiresAt)
}

func TestDecodeConnectionsRejectsGarbage(t *testing.T) {
	_, err := DecodeConnections([]byte("not json"))
	assert.Error(t, err)
}
