package managers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	// DefaultAuthorizationTimeout bounds how long an attempt may wait for
	// its callback before it is settled with domain.ErrAuthorizationTimeout.
	DefaultAuthorizationTimeout = 300 * time.Second

	// settledGrace is how long a settled attempt's result is retained for
	// a late Await before it is dropped.
	settledGrace = time.Minute

	stateTokenBytes = 32

	defaultRefreshExtension = time.Hour
)

type ConnectionManagerDependencies struct {
	Store     domain.ConnectionStore
	Exchanger domain.TokenExchanger
	Services  []domain.OAuthServiceDescriptor

	// AuthorizationTimeout overrides DefaultAuthorizationTimeout when set.
	AuthorizationTimeout time.Duration

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

type connectionManager struct {
	store     domain.ConnectionStore
	exchanger domain.TokenExchanger
	services  map[string]domain.OAuthServiceDescriptor
	ordered   []domain.OAuthServiceDescriptor
	timeout   time.Duration
	now       func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingAuthorization
	settled map[string]*pendingAuthorization
}

type pendingAuthorization struct {
	userID    string
	serviceID string
	startedAt time.Time
	timer     *time.Timer
	result    chan authorizationResult
}

type authorizationResult struct {
	connection domain.Connection
	err        error
}

func NewConnectionManager(deps ConnectionManagerDependencies) domain.ConnectionManager {
	timeout := deps.AuthorizationTimeout
	if timeout <= 0 {
		timeout = DefaultAuthorizationTimeout
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	services := make(map[string]domain.OAuthServiceDescriptor, len(deps.Services))
	for _, service := range deps.Services {
		services[service.ID] = service
	}

	return &connectionManager{
		store:     deps.Store,
		exchanger: deps.Exchanger,
		services:  services,
		ordered:   deps.Services,
		timeout:   timeout,
		now:       now,
		pending:   make(map[string]*pendingAuthorization),
		settled:   make(map[string]*pendingAuthorization),
	}
}

func (m *connectionManager) StartAuthorization(ctx context.Context, p domain.StartAuthorizationParams) (domain.AuthorizationAttempt, error) {
	service, ok := m.services[p.ServiceID]
	if !ok {
		return domain.AuthorizationAttempt{}, fmt.Errorf("service %q: %w", p.ServiceID, domain.ErrServiceNotConfigured)
	}

	if service.ClientID == "" {
		return domain.AuthorizationAttempt{}, fmt.Errorf("service %q has no client id: %w", p.ServiceID, domain.ErrServiceNotConfigured)
	}

	state, err := generateStateToken()
	if err != nil {
		return domain.AuthorizationAttempt{}, fmt.Errorf("failed to generate state token: %w", err)
	}

	config := oauthConfig(service, p.AdditionalScopes)
	authURL := config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	attempt := &pendingAuthorization{
		userID:    p.UserID,
		serviceID: p.ServiceID,
		startedAt: m.now(),
		result:    make(chan authorizationResult, 1),
	}
	attempt.timer = time.AfterFunc(m.timeout, func() {
		m.settle(state, authorizationResult{err: domain.ErrAuthorizationTimeout})
	})

	m.mu.Lock()
	m.pending[state] = attempt
	m.mu.Unlock()

	log.Info().Msgf("Started authorization for service %s", p.ServiceID)

	return domain.AuthorizationAttempt{
		State:     state,
		AuthURL:   authURL,
		ServiceID: p.ServiceID,
		StartedAt: attempt.startedAt,
	}, nil
}

func (m *connectionManager) Await(ctx context.Context, state string) (domain.Connection, error) {
	m.mu.Lock()
	attempt, ok := m.pending[state]
	if !ok {
		attempt, ok = m.settled[state]
		if ok {
			delete(m.settled, state)
		}
	}
	m.mu.Unlock()

	if !ok {
		return domain.Connection{}, fmt.Errorf("no authorization attempt for state: %w", domain.ErrConnectionNotFound)
	}

	select {
	case result := <-attempt.result:
		return result.connection, result.err
	case <-ctx.Done():
		m.settle(state, authorizationResult{err: ctx.Err()})
		return domain.Connection{}, ctx.Err()
	}
}

func (m *connectionManager) HandleCallback(ctx context.Context, msg domain.CallbackMessage) bool {
	if msg.Type != domain.CallbackMessageType {
		return false
	}

	m.mu.Lock()
	attempt, ok := m.pending[msg.Data.State]
	m.mu.Unlock()

	if !ok {
		// Unknown, replayed or already settled state.
		return false
	}

	if msg.Data.Error != "" {
		m.settle(msg.Data.State, authorizationResult{err: &domain.AuthorizationError{ProviderError: msg.Data.Error}})
		return true
	}

	service := m.services[attempt.serviceID]

	grant, err := m.exchanger.Exchange(ctx, service, msg.Data.Code)
	if err != nil {
		m.settle(msg.Data.State, authorizationResult{err: fmt.Errorf("token exchange failed: %w", err)})
		return true
	}

	connection, err := m.upsertConnection(ctx, attempt.userID, service, grant)
	if err != nil {
		m.settle(msg.Data.State, authorizationResult{err: err})
		return true
	}

	m.settle(msg.Data.State, authorizationResult{connection: connection})

	return true
}

func (m *connectionManager) FailAuthorization(state string, cause error) bool {
	m.mu.Lock()
	_, ok := m.pending[state]
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.settle(state, authorizationResult{err: cause})

	return true
}

func (m *connectionManager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.pending)
}

// settle delivers the attempt's outcome exactly once: the first caller to
// remove the state from the pending map wins, later calls are no-ops.
func (m *connectionManager) settle(state string, result authorizationResult) {
	m.mu.Lock()
	attempt, ok := m.pending[state]
	if !ok {
		m.mu.Unlock()
		return
	}

	delete(m.pending, state)
	m.settled[state] = attempt
	m.mu.Unlock()

	attempt.timer.Stop()
	attempt.result <- result

	time.AfterFunc(settledGrace, func() {
		m.mu.Lock()
		delete(m.settled, state)
		m.mu.Unlock()
	})
}

// upsertConnection stores the connection for the grant, replacing any
// active connection for the same (service, remote user) pair.
func (m *connectionManager) upsertConnection(ctx context.Context, userID string, service domain.OAuthServiceDescriptor, grant domain.TokenGrant) (domain.Connection, error) {
	connections, err := m.store.LoadConnections(ctx, userID)
	if err != nil {
		return domain.Connection{}, fmt.Errorf("failed to load connections: %w", err)
	}

	connection := domain.Connection{
		ID:           fmt.Sprintf("%s_%s", service.ID, grant.Identity.ID),
		UserID:       userID,
		ServiceID:    service.ID,
		ServiceName:  service.Name,
		RemoteEmail:  grant.Identity.Email,
		RemoteName:   grant.Identity.Name,
		AvatarURL:    grant.Identity.AvatarURL,
		Scopes:       service.Scopes,
		ConnectedAt:  m.now(),
		ExpiresAt:    grant.ExpiresAt,
		IsActive:     true,
		RefreshToken: grant.RefreshToken,
	}

	replaced := false
	for i := range connections {
		if connections[i].ID == connection.ID {
			// Re-authenticating the same account updates rather than duplicates.
			connection.ConnectedAt = connections[i].ConnectedAt
			connections[i] = connection
			replaced = true
			break
		}
	}

	if !replaced {
		connections = append(connections, connection)
	}

	if err := m.store.SaveConnections(ctx, userID, connections); err != nil {
		return domain.Connection{}, fmt.Errorf("failed to persist connections: %w", err)
	}

	log.Info().Msgf("Connected %s account %s", service.ID, grant.Identity.Email)

	return connection, nil
}

func (m *connectionManager) GetConnections(ctx context.Context, userID string) ([]domain.Connection, error) {
	connections, err := m.store.LoadConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load connections: %w", err)
	}

	active := make([]domain.Connection, 0, len(connections))
	for _, connection := range connections {
		if connection.IsActive {
			active = append(active, connection)
		}
	}

	return active, nil
}

func (m *connectionManager) GetConnection(ctx context.Context, userID, connectionID string) (domain.Connection, error) {
	connections, err := m.GetConnections(ctx, userID)
	if err != nil {
		return domain.Connection{}, err
	}

	for _, connection := range connections {
		if connection.ID == connectionID {
			return connection, nil
		}
	}

	return domain.Connection{}, fmt.Errorf("connection %q: %w", connectionID, domain.ErrConnectionNotFound)
}

func (m *connectionManager) GetConnectionsByService(ctx context.Context, userID, serviceID string) ([]domain.Connection, error) {
	connections, err := m.GetConnections(ctx, userID)
	if err != nil {
		return nil, err
	}

	matching := make([]domain.Connection, 0, len(connections))
	for _, connection := range connections {
		if connection.ServiceID == serviceID {
			matching = append(matching, connection)
		}
	}

	return matching, nil
}

func (m *connectionManager) Disconnect(ctx context.Context, userID, connectionID string) error {
	connections, err := m.store.LoadConnections(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load connections: %w", err)
	}

	for i := range connections {
		if connections[i].ID != connectionID || !connections[i].IsActive {
			continue
		}

		connections[i].IsActive = false

		if err := m.store.SaveConnections(ctx, userID, connections); err != nil {
			return fmt.Errorf("failed to persist connections: %w", err)
		}

		log.Info().Msgf("Disconnected connection %s", connectionID)

		return nil
	}

	return fmt.Errorf("connection %q: %w", connectionID, domain.ErrConnectionNotFound)
}

func (m *connectionManager) RefreshConnection(ctx context.Context, userID, connectionID string) (domain.Connection, error) {
	connections, err := m.store.LoadConnections(ctx, userID)
	if err != nil {
		return domain.Connection{}, fmt.Errorf("failed to load connections: %w", err)
	}

	for i := range connections {
		if connections[i].ID != connectionID || !connections[i].IsActive {
			continue
		}

		service, ok := m.services[connections[i].ServiceID]
		if !ok {
			return domain.Connection{}, fmt.Errorf("service %q: %w", connections[i].ServiceID, domain.ErrServiceNotConfigured)
		}

		if !service.RequiresRefresh {
			return domain.Connection{}, fmt.Errorf("service %q: %w", service.ID, domain.ErrRefreshNotSupported)
		}

		grant, err := m.exchanger.Refresh(ctx, service, connections[i])
		if err != nil {
			return domain.Connection{}, fmt.Errorf("token refresh failed: %w", err)
		}

		if grant.ExpiresAt != nil {
			connections[i].ExpiresAt = grant.ExpiresAt
		} else {
			extended := m.now().Add(defaultRefreshExtension)
			connections[i].ExpiresAt = &extended
		}

		// Providers may rotate the refresh token on use.
		if grant.RefreshToken != "" {
			connections[i].RefreshToken = grant.RefreshToken
		}

		if err := m.store.SaveConnections(ctx, userID, connections); err != nil {
			return domain.Connection{}, fmt.Errorf("failed to persist connections: %w", err)
		}

		return connections[i], nil
	}

	return domain.Connection{}, fmt.Errorf("connection %q: %w", connectionID, domain.ErrConnectionNotFound)
}

func (m *connectionManager) IsConnectionExpired(ctx context.Context, userID, connectionID string) (bool, error) {
	connection, err := m.GetConnection(ctx, userID, connectionID)
	if err != nil {
		return false, err
	}

	return connection.Expired(m.now()), nil
}

func (m *connectionManager) GetServices() []domain.OAuthServiceDescriptor {
	return m.ordered
}

func oauthConfig(service domain.OAuthServiceDescriptor, additionalScopes []string) *oauth2.Config {
	scopes := make([]string, 0, len(service.Scopes)+len(additionalScopes))
	scopes = append(scopes, service.Scopes...)

	for _, scope := range additionalScopes {
		if !containsScope(scopes, scope) {
			scopes = append(scopes, scope)
		}
	}

	return &oauth2.Config{
		ClientID:     service.ClientID,
		ClientSecret: service.ClientSecret,
		RedirectURL:  service.RedirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  service.AuthURL,
			TokenURL: service.TokenURL,
		},
	}
}

func containsScope(scopes []string, scope string) bool {
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func generateStateToken() (string, error) {
	buf := make([]byte, stateTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}
