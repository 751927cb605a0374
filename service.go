package dataverse

import (
	"context"

	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/mcp-dataverse/api"
	"github.com/viant/mcp-dataverse/auth"
)

// Service binds the Dataverse client to the MCP tool and prompt surface.
type Service struct {
	client *api.Client
}

// NewService resolves credentials and creates the service.
func NewService(ctx context.Context, options *Options) (*Service, error) {
	config, err := auth.Resolve(ctx, &auth.Resource{
		ConfigURL:    options.OAuth2ConfigURL,
		TenantID:     options.TenantID,
		ClientID:     options.ClientID,
		ClientSecret: options.ClientSecret,
		Scopes:       []string{options.URL + "/.default"},
	})
	if err != nil {
		return nil, err
	}
	tokens := auth.NewTokenSource(config)
	return &Service{client: api.New(options.URL, tokens)}, nil
}

// Register adds all Dataverse tools and prompts to the handler registry.
func (s *Service) Register(handler *protoserver.DefaultHandler) error {
	if err := s.registerTools(handler); err != nil {
		return err
	}
	s.registerPrompts(handler)
	return nil
}
