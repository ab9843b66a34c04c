package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/frontand-tech/frontand/pkg/domain"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const userInfoTimeout = 10 * time.Second

// Exchanger implements domain.TokenExchanger against real provider token
// endpoints using the standard authorization-code flow.
type Exchanger struct {
	httpClient *http.Client
}

func NewExchanger(httpClient *http.Client) *Exchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: userInfoTimeout}
	}

	return &Exchanger{httpClient: httpClient}
}

func (e *Exchanger) Exchange(ctx context.Context, service domain.OAuthServiceDescriptor, code string) (domain.TokenGrant, error) {
	config := configFor(service)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return domain.TokenGrant{}, fmt.Errorf("code exchange failed: %w", err)
	}

	return e.grantFromToken(ctx, service, token)
}

func (e *Exchanger) Refresh(ctx context.Context, service domain.OAuthServiceDescriptor, conn domain.Connection) (domain.TokenGrant, error) {
	config := configFor(service)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)

	// TokenSource refreshes when handed an expired token.
	source := config.TokenSource(ctx, &oauth2.Token{
		RefreshToken: conn.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	})

	token, err := source.Token()
	if err != nil {
		return domain.TokenGrant{}, fmt.Errorf("token refresh failed: %w", err)
	}

	grant := domain.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		grant.ExpiresAt = &expiry
	}

	return grant, nil
}

func (e *Exchanger) grantFromToken(ctx context.Context, service domain.OAuthServiceDescriptor, token *oauth2.Token) (domain.TokenGrant, error) {
	grant := domain.TokenGrant{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		grant.ExpiresAt = &expiry
	}

	// Providers that return an id_token carry the identity in its claims;
	// otherwise fall back to the userinfo endpoint.
	if rawIDToken, ok := token.Extra("id_token").(string); ok && rawIDToken != "" {
		identity, err := identityFromIDToken(rawIDToken)
		if err == nil {
			grant.Identity = identity
			return grant, nil
		}
	}

	if service.UserInfoURL != "" {
		identity, err := e.fetchUserInfo(ctx, service, token)
		if err != nil {
			return domain.TokenGrant{}, err
		}
		grant.Identity = identity
	}

	return grant, nil
}

// identityFromIDToken reads the identity claims without verifying the
// signature: the token arrived over TLS directly from the provider's token
// endpoint, which is the trust anchor here.
func identityFromIDToken(rawIDToken string) (domain.RemoteIdentity, error) {
	claims := jwt.MapClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawIDToken, claims); err != nil {
		return domain.RemoteIdentity{}, fmt.Errorf("failed to parse id_token: %w", err)
	}

	identity := domain.RemoteIdentity{
		ID:        stringClaim(claims, "sub"),
		Email:     stringClaim(claims, "email"),
		Name:      stringClaim(claims, "name"),
		AvatarURL: stringClaim(claims, "picture"),
	}

	if identity.ID == "" {
		return domain.RemoteIdentity{}, fmt.Errorf("id_token has no subject")
	}

	return identity, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	value, _ := claims[key].(string)
	return value
}

func (e *Exchanger) fetchUserInfo(ctx context.Context, service domain.OAuthServiceDescriptor, token *oauth2.Token) (domain.RemoteIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, service.UserInfoURL, nil)
	if err != nil {
		return domain.RemoteIdentity{}, fmt.Errorf("failed to create userinfo request: %w", err)
	}

	token.SetAuthHeader(req)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return domain.RemoteIdentity{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RemoteIdentity{}, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Sub     string `json:"sub"`
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
		Avatar  string `json:"avatar_url"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.RemoteIdentity{}, fmt.Errorf("failed to decode userinfo response: %w", err)
	}

	identity := domain.RemoteIdentity{
		ID:        payload.Sub,
		Email:     payload.Email,
		Name:      payload.Name,
		AvatarURL: payload.Picture,
	}
	if identity.ID == "" {
		identity.ID = payload.ID
	}
	if identity.AvatarURL == "" {
		identity.AvatarURL = payload.Avatar
	}

	return identity, nil
}

func configFor(service domain.OAuthServiceDescriptor) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     service.ClientID,
		ClientSecret: service.ClientSecret,
		RedirectURL:  service.RedirectURI,
		Scopes:       service.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  service.AuthURL,
			TokenURL: service.TokenURL,
		},
	}
}
