package dataverse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs"
)

// Options defines configuration for the Dataverse MCP server. Flags take
// their defaults from the environment; an optional JSON options document
// loaded from OptionsURL overrides both.
type Options struct {
	Name    string `yaml:"name" json:"name" long:"name" description:"server name"`
	Version string `yaml:"version" json:"version" long:"version" description:"server version"`

	URL          string `yaml:"url" json:"url" short:"u" long:"url" env:"DATAVERSE_URL" description:"dataverse environment url, e.g. https://org.crm.dynamics.com"`
	TenantID     string `yaml:"tenantId" json:"tenantId" long:"tenant" env:"DATAVERSE_TENANT_ID" description:"azure tenant id"`
	ClientID     string `yaml:"clientId" json:"clientId" long:"client" env:"DATAVERSE_CLIENT_ID" description:"oauth2 client id"`
	ClientSecret string `yaml:"-" json:"-" long:"secret" env:"DATAVERSE_CLIENT_SECRET" description:"oauth2 client secret"`

	OAuth2ConfigURL string `yaml:"oauth2ConfigURL" json:"oauth2ConfigURL" short:"c" long:"config" description:"oauth2 config url (scy resource)"`
	OptionsURL      string `yaml:"-" json:"-" short:"o" long:"options" description:"options document url"`

	Transport string `yaml:"transport" json:"transport" short:"T" long:"transport-type" description:"mcp transport type" choice:"stdio" choice:"sse" choice:"streamable"`
	Port      int    `yaml:"port" json:"port" short:"P" long:"port" description:"http port"`
}

// Init loads the optional options document, applies defaults and validates.
func (o *Options) Init(ctx context.Context) error {
	if o.OptionsURL != "" {
		fs := afs.New()
		data, err := fs.DownloadWithURL(ctx, o.OptionsURL)
		if err != nil {
			return fmt.Errorf("failed to load options %v: %w", o.OptionsURL, err)
		}
		if err := json.Unmarshal(data, o); err != nil {
			return fmt.Errorf("invalid options document %v: %w", o.OptionsURL, err)
		}
	}
	if o.Name == "" {
		o.Name = "mcp-dataverse"
	}
	if o.Version == "" {
		o.Version = "0.1"
	}
	if o.Transport == "" {
		o.Transport = "stdio"
	}
	if o.Port == 0 {
		o.Port = 4981
	}
	o.URL = strings.TrimSuffix(o.URL, "/")
	if o.URL == "" {
		return errors.New("dataverse url was empty (DATAVERSE_URL)")
	}
	return nil
}
