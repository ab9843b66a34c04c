package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	in48h := now.Add(48 * time.Hour)
	in2h := now.Add(2 * time.Hour)
	anHourAgo := now.Add(-time.Hour)

	tests := []struct {
		name       string
		connection Connection
		expected   ConnectionStatus
	}{
		{
			name:       "inactive is disconnected",
			connection: Connection{IsActive: false, ExpiresAt: &in48h},
			expected:   ConnectionStatusDisconnected,
		},
		{
			name:       "no expiry stays connected",
			connection: Connection{IsActive: true},
			expected:   ConnectionStatusConnected,
		},
		{
			name:       "far from expiry is connected",
			connection: Connection{IsActive: true, ExpiresAt: &in48h},
			expected:   ConnectionStatusConnected,
		},
		{
			name:       "inside the 24h window is expiring",
			connection: Connection{IsActive: true, ExpiresAt: &in2h},
			expected:   ConnectionStatusExpiring,
		},
		{
			name:       "past expiry is expired",
			connection: Connection{IsActive: true, ExpiresAt: &anHourAgo},
			expected:   ConnectionStatusExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.connection.Status(now))
		})
	}
}

func TestConnectionExpired(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.False(t, Connection{IsActive: true}.Expired(now), "no expiry never expires")
	assert.False(t, Connection{IsActive: true, ExpiresAt: &future}.Expired(now))
	assert.True(t, Connection{IsActive: true, ExpiresAt: &past}.Expired(now))
}
