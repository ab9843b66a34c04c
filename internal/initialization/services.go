package initialization

import (
	"github.com/frontand-tech/frontand/pkg/domain"
)

// ServiceCatalog builds the static per-provider descriptors from config.
// The set is fixed at process start; unconfigured providers stay listed
// so the UI can show them as "not configured".
func ServiceCatalog(config *Config) []domain.OAuthServiceDescriptor {
	return []domain.OAuthServiceDescriptor{
		{
			ID:              "google",
			Name:            "Google",
			Icon:            "google",
			Color:           "#4285F4",
			AuthURL:         "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:        "https://oauth2.googleapis.com/token",
			UserInfoURL:     "https://www.googleapis.com/oauth2/v2/userinfo",
			Scopes:          []string{"openid", "email", "profile"},
			RedirectURI:     config.OAuthRedirectURI,
			ClientID:        config.GoogleClientID,
			ClientSecret:    config.GoogleClientSecret,
			RequiresRefresh: true,
		},
		{
			ID:              "github",
			Name:            "GitHub",
			Icon:            "github",
			Color:           "#24292F",
			AuthURL:         "https://github.com/login/oauth/authorize",
			TokenURL:        "https://github.com/login/oauth/access_token",
			UserInfoURL:     "https://api.github.com/user",
			Scopes:          []string{"read:user", "user:email"},
			RedirectURI:     config.OAuthRedirectURI,
			ClientID:        config.GitHubClientID,
			ClientSecret:    config.GitHubClientSecret,
			RequiresRefresh: false,
		},
		{
			ID:              "slack",
			Name:            "Slack",
			Icon:            "slack",
			Color:           "#4A154B",
			AuthURL:         "https://slack.com/oauth/v2/authorize",
			TokenURL:        "https://slack.com/api/oauth.v2.access",
			UserInfoURL:     "https://slack.com/api/users.identity",
			Scopes:          []string{"identity.basic", "identity.email"},
			RedirectURI:     config.OAuthRedirectURI,
			ClientID:        config.SlackClientID,
			ClientSecret:    config.SlackClientSecret,
			RequiresRefresh: true,
		},
		{
			ID:              "notion",
			Name:            "Notion",
			Icon:            "notion",
			Color:           "#000000",
			AuthURL:         "https://api.notion.com/v1/oauth/authorize",
			TokenURL:        "https://api.notion.com/v1/oauth/token",
			UserInfoURL:     "https://api.notion.com/v1/users/me",
			Scopes:          []string{},
			RedirectURI:     config.OAuthRedirectURI,
			ClientID:        config.NotionClientID,
			ClientSecret:    config.NotionClientSecret,
			RequiresRefresh: false,
		},
	}
}
