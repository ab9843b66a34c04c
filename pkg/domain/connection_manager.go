package domain

import (
	"context"
	"time"
)

// ConnectionManager drives the full life cycle of third-party OAuth
// connections. The authorization flow is a state machine fed by explicit
// inputs: StartAuthorization opens an attempt, HandleCallback and
// FailAuthorization settle it, and a timeout settles it when nothing else
// does. The browser popup and postMessage plumbing live outside the core
// as thin adapters.
type ConnectionManager interface {
	// StartAuthorization validates the service descriptor, generates a
	// state token and registers a pending attempt. The caller opens
	// AuthURL (popup or redirect) and then calls Await.
	StartAuthorization(ctx context.Context, p StartAuthorizationParams) (AuthorizationAttempt, error)

	// Await blocks until the attempt identified by state settles, or the
	// attempt's timeout elapses.
	Await(ctx context.Context, state string) (Connection, error)

	// HandleCallback feeds a callback message into the flow. Messages with
	// an unknown type or a state that matches no pending attempt are
	// ignored and return false.
	HandleCallback(ctx context.Context, msg CallbackMessage) bool

	// FailAuthorization settles a pending attempt with a caller-side
	// failure (popup blocked, user closed the popup). Returns false when
	// the state matches no pending attempt.
	FailAuthorization(state string, cause error) bool

	// PendingCount reports the number of unsettled attempts.
	PendingCount() int

	GetConnections(ctx context.Context, userID string) ([]Connection, error)
	GetConnection(ctx context.Context, userID, connectionID string) (Connection, error)
	GetConnectionsByService(ctx context.Context, userID, serviceID string) ([]Connection, error)
	Disconnect(ctx context.Context, userID, connectionID string) error
	RefreshConnection(ctx context.Context, userID, connectionID string) (Connection, error)
	IsConnectionExpired(ctx context.Context, userID, connectionID string) (bool, error)

	// GetServices returns the configured service descriptors.
	GetServices() []OAuthServiceDescriptor
}

type StartAuthorizationParams struct {
	UserID           string
	ServiceID        string
	AdditionalScopes []string
}

// TokenGrant is the outcome of exchanging an authorization code (or
// refreshing an existing grant) with the provider.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Identity     RemoteIdentity
}

// RemoteIdentity identifies the remote account the grant belongs to.
type RemoteIdentity struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

// TokenExchanger turns authorization codes into token grants and refreshes
// existing grants. Implementations talk to the provider's token endpoint.
type TokenExchanger interface {
	Exchange(ctx context.Context, service OAuthServiceDescriptor, code string) (TokenGrant, error)
	Refresh(ctx context.Context, service OAuthServiceDescriptor, conn Connection) (TokenGrant, error)
}
