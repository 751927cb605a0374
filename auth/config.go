package auth

import (
	"context"
	"fmt"

	"github.com/viant/scy/auth/authorizer"
)

const tokenURLTemplate = "https://login.microsoftonline.com/%v/oauth2/v2.0/token"

// Config holds the resolved client credential grant settings.
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Resource describes where the client credential config comes from: either
// a scy oauth2 config URL (optionally encrypted), or discrete tenant/client
// fields sourced from flags and environment variables.
type Resource struct {
	ConfigURL    string
	TenantID     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Resolve builds the client credential config for the given resource.
func Resolve(ctx context.Context, resource *Resource) (*Config, error) {
	if resource.ConfigURL != "" {
		service := authorizer.New()
		oAuthConfig := &authorizer.OAuthConfig{ConfigURL: resource.ConfigURL}
		if err := service.EnsureConfig(ctx, oAuthConfig); err != nil {
			return nil, fmt.Errorf("failed to load oauth2 config %v: %w", resource.ConfigURL, err)
		}
		config := oAuthConfig.Config
		return &Config{
			TokenURL:     config.Endpoint.TokenURL,
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Scopes:       resource.Scopes,
		}, nil
	}
	if resource.TenantID == "" {
		return nil, fmt.Errorf("tenant id was empty (DATAVERSE_TENANT_ID)")
	}
	if resource.ClientID == "" {
		return nil, fmt.Errorf("client id was empty (DATAVERSE_CLIENT_ID)")
	}
	if resource.ClientSecret == "" {
		return nil, fmt.Errorf("client secret was empty (DATAVERSE_CLIENT_SECRET)")
	}
	return &Config{
		TokenURL:     fmt.Sprintf(tokenURLTemplate, resource.TenantID),
		ClientID:     resource.ClientID,
		ClientSecret: resource.ClientSecret,
		Scopes:       resource.Scopes,
	}, nil
}
