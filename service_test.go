package dataverse

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/jsonrpc/transport/client/http/sse"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcp/client"
	"github.com/viant/mcp/server"
)

// TestService_Register drives the registered surface end to end: tool
// listing, a tool call and the prompt, all through a running server.
func TestService_Register(t *testing.T) {
	ctx := context.Background()
	backend := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/data/v9.2/WhoAmI", request.URL.Path)
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"UserId":"u-1","BusinessUnitId":"b-1","OrganizationId":"o-1"}`))
	}))
	defer backend.Close()

	addr, shutdown := startTestServer(t, ctx, testService(backend.URL))
	defer shutdown()

	transport, err := sse.New(ctx, "http://"+addr+"/sse")
	if err != nil {
		t.Fatalf("Failed to create transport: %v", err)
	}
	mcpClient := client.New("tester", "0.1", transport, client.WithCapabilities(schema.ClientCapabilities{}))
	initResult, err := mcpClient.Initialize(ctx)
	assert.Nil(t, err)
	assert.NotNil(t, initResult)

	tools, err := mcpClient.ListTools(ctx, nil)
	if !assert.Nil(t, err) {
		return
	}
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	for _, expected := range []string{
		"whoami",
		"entity_metadata",
		"entity_attributes",
		"entity_relationships",
		"attribute_options",
		"global_optionset",
		"query_records",
	} {
		assert.Contains(t, names, expected)
	}

	callResult, err := mcpClient.CallTool(ctx, &schema.CallToolRequestParams{Name: "whoami", Arguments: map[string]any{}})
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, "u-1", callResult.StructuredContent["userId"])
	if assert.Equal(t, 1, len(callResult.Content)) {
		data, _ := json.Marshal(callResult.Content[0])
		assert.Contains(t, string(data), `u-1`)
	}

	promptResult, err := mcpClient.GetPrompt(ctx, &schema.GetPromptRequestParams{
		Name:      "explore_entity",
		Arguments: map[string]string{"entity": "account"},
	})
	if !assert.Nil(t, err) {
		return
	}
	if assert.Equal(t, 1, len(promptResult.Messages)) {
		data, _ := json.Marshal(promptResult.Messages[0].Content)
		assert.Contains(t, string(data), `\"account\"`)
		assert.Contains(t, string(data), backend.URL)
	}
}

func startTestServer(t *testing.T, ctx context.Context, service *Service) (string, func()) {
	t.Helper()
	handler := protoserver.WithDefaultHandler(ctx, service.Register)
	srv, err := server.New(
		server.WithNewHandler(handler),
		server.WithImplementation(schema.Implementation{Name: "mcp-dataverse", Version: "0.1"}),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	httpSrv := srv.HTTP(ctx, ln.Addr().String())
	go func() { _ = httpSrv.Serve(ln) }()
	return ln.Addr().String(), func() {
		_ = httpSrv.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = httpSrv.Shutdown(shutdownCtx)
		cancel()
	}
}
