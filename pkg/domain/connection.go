package domain

import "time"

// OAuthServiceDescriptor is the static per-provider configuration. The set
// of descriptors is fixed at process start and keyed by service identifier.
type OAuthServiceDescriptor struct {
	ID              string
	Name            string
	Icon            string
	Color           string
	AuthURL         string
	TokenURL        string
	UserInfoURL     string
	Scopes          []string
	RedirectURI     string
	ClientID        string
	ClientSecret    string
	RequiresRefresh bool
}

// ConnectionStatus is a view state derived from a connection's expiry at
// query time. It is never stored.
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusExpiring     ConnectionStatus = "expiring"
	ConnectionStatusExpired      ConnectionStatus = "expired"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
)

// expiringWindow is how close to expiry a connection is reported as expiring.
const expiringWindow = 24 * time.Hour

// Connection is one authorized link between the current user and an
// external service. Disconnecting clears IsActive rather than deleting the
// record, so read paths must filter on IsActive.
type Connection struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	ServiceID   string     `json:"service_id"`
	ServiceName string     `json:"service_name"`
	RemoteEmail string     `json:"remote_email"`
	RemoteName  string     `json:"remote_name"`
	AvatarURL   string     `json:"avatar_url,omitempty"`
	Scopes      []string   `json:"scopes"`
	ConnectedAt time.Time  `json:"connected_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`

	// RefreshToken is persisted with the connection but stripped from API
	// responses by the controller layer.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Status derives the connection's view state at the given instant.
func (c Connection) Status(now time.Time) ConnectionStatus {
	if !c.IsActive {
		return ConnectionStatusDisconnected
	}

	if c.ExpiresAt == nil {
		return ConnectionStatusConnected
	}

	switch {
	case now.After(*c.ExpiresAt):
		return ConnectionStatusExpired
	case c.ExpiresAt.Sub(now) < expiringWindow:
		return ConnectionStatusExpiring
	default:
		return ConnectionStatusConnected
	}
}

// Expired reports whether the connection is past its expiry. A connection
// with no expiry never expires.
func (c Connection) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// CallbackMessage is the payload relayed from the OAuth redirect target.
// Messages of any other type are ignored by the connection manager.
type CallbackMessage struct {
	Type string       `json:"type"`
	Data CallbackData `json:"data"`
}

// CallbackMessageType is the only message type the connection manager acts on.
const CallbackMessageType = "oauth_callback"

type CallbackData struct {
	Code  string `json:"code"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

// AuthorizationAttempt describes an in-flight authorization, returned by
// StartAuthorization so the caller can open the provider URL and await the
// outcome under the state token.
type AuthorizationAttempt struct {
	State     string
	AuthURL   string
	ServiceID string
	StartedAt time.Time
}
