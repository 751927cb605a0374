package dataverse

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
)

func TestOptions_Init(t *testing.T) {
	ctx := context.Background()

	options := &Options{}
	err := options.Init(ctx)
	assert.NotNil(t, err, "url is required")

	options = &Options{URL: "https://org.crm.dynamics.com/"}
	err = options.Init(ctx)
	assert.Nil(t, err)
	assert.Equal(t, "https://org.crm.dynamics.com", options.URL)
	assert.Equal(t, "mcp-dataverse", options.Name)
	assert.Equal(t, "stdio", options.Transport)
	assert.Equal(t, 4981, options.Port)
}

func TestOptions_Env(t *testing.T) {
	t.Setenv("DATAVERSE_URL", "https://env.crm.dynamics.com")
	t.Setenv("DATAVERSE_TENANT_ID", "tenant-1")
	t.Setenv("DATAVERSE_CLIENT_ID", "client-1")
	t.Setenv("DATAVERSE_CLIENT_SECRET", "secret-1")

	options := &Options{}
	_, err := flags.ParseArgs(options, []string{})
	assert.Nil(t, err)
	assert.Equal(t, "https://env.crm.dynamics.com", options.URL)
	assert.Equal(t, "tenant-1", options.TenantID)
	assert.Equal(t, "client-1", options.ClientID)
	assert.Equal(t, "secret-1", options.ClientSecret)

	// flags win over environment
	options = &Options{}
	_, err = flags.ParseArgs(options, []string{"--tenant", "tenant-2"})
	assert.Nil(t, err)
	assert.Equal(t, "tenant-2", options.TenantID)
}

func TestOptions_Document(t *testing.T) {
	location := filepath.Join(t.TempDir(), "options.json")
	err := os.WriteFile(location, []byte(`{"url":"https://doc.crm.dynamics.com","transport":"sse","port":5001}`), 0644)
	assert.Nil(t, err)

	options := &Options{OptionsURL: location}
	err = options.Init(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "https://doc.crm.dynamics.com", options.URL)
	assert.Equal(t, "sse", options.Transport)
	assert.Equal(t, 5001, options.Port)
}
