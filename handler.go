package dataverse

import (
	"context"
	"encoding/json"
	"log"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"

	"github.com/viant/mcp-dataverse/api"
)

type (
	// EntityInput identifies an entity by its logical name.
	EntityInput struct {
		Entity string `json:"entity" description:"entity logical name, e.g. account"`
	}

	// AttributeInput identifies an entity attribute.
	AttributeInput struct {
		Entity    string `json:"entity" description:"entity logical name"`
		Attribute string `json:"attribute" description:"attribute logical name, e.g. industrycode"`
	}

	// OptionSetInput identifies a global option set by name.
	OptionSetInput struct {
		Name string `json:"name" description:"global option set name"`
	}

	// QueryInput describes an OData record query.
	QueryInput struct {
		EntitySet string `json:"entitySet" description:"entity set name, e.g. accounts"`
		Select    string `json:"select,omitempty" description:"comma separated $select column list"`
		Filter    string `json:"filter,omitempty" description:"$filter expression"`
		OrderBy   string `json:"orderby,omitempty" description:"$orderby expression"`
		Expand    string `json:"expand,omitempty" description:"$expand expression"`
		Top       int    `json:"top,omitempty" description:"maximum number of records"`
	}

	// WhoAmIInput takes no arguments.
	WhoAmIInput struct{}

	// MetadataOutput carries a reshaped entity definition.
	MetadataOutput struct {
		Metadata map[string]interface{} `json:"metadata"`
	}

	// AttributesOutput carries the filtered attribute list.
	AttributesOutput struct {
		Attributes []map[string]interface{} `json:"attributes"`
	}

	// RelationshipsOutput carries both relationship kinds.
	RelationshipsOutput struct {
		OneToMany  []map[string]interface{} `json:"oneToMany"`
		ManyToMany []map[string]interface{} `json:"manyToMany"`
	}

	// ChoicesOutput carries option set value/label pairs.
	ChoicesOutput struct {
		Options []api.Choice `json:"options"`
	}

	// RecordsOutput carries a raw OData query response.
	RecordsOutput struct {
		Records json.RawMessage `json:"records"`
	}
)

func (s *Service) registerTools(handler *protoserver.DefaultHandler) error {
	if err := protoserver.RegisterTool[*WhoAmIInput, *api.WhoAmI](handler.Registry, "whoami",
		"Return the caller user, business unit and organization ids", s.whoAmI); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*EntityInput, *MetadataOutput](handler.Registry, "entity_metadata",
		"Fetch entity definition: names, primary attributes, display name", s.entityMetadata); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*EntityInput, *AttributesOutput](handler.Registry, "entity_attributes",
		"List entity attributes without derived lookup-name columns", s.entityAttributes); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*EntityInput, *RelationshipsOutput](handler.Registry, "entity_relationships",
		"List one-to-many and many-to-many relationships of an entity", s.entityRelationships); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*AttributeInput, *ChoicesOutput](handler.Registry, "attribute_options",
		"List picklist options of an entity attribute", s.attributeOptions); err != nil {
		return err
	}
	if err := protoserver.RegisterTool[*OptionSetInput, *ChoicesOutput](handler.Registry, "global_optionset",
		"List options of a global option set", s.globalOptionSet); err != nil {
		return err
	}
	return protoserver.RegisterTool[*QueryInput, *RecordsOutput](handler.Registry, "query_records",
		"Query records of an entity set with OData options", s.queryRecords)
}

func (s *Service) whoAmI(ctx context.Context, input *WhoAmIInput) (*schema.CallToolResult, *jsonrpc.Error) {
	identity, err := s.client.CallerIdentity(ctx)
	if err != nil {
		return errorResult("whoami", err)
	}
	return jsonResult(identity)
}

func (s *Service) entityMetadata(ctx context.Context, input *EntityInput) (*schema.CallToolResult, *jsonrpc.Error) {
	metadata, err := s.client.EntityMetadata(ctx, input.Entity)
	if err != nil {
		return errorResult("entity_metadata", err)
	}
	return jsonResult(&MetadataOutput{Metadata: metadata})
}

func (s *Service) entityAttributes(ctx context.Context, input *EntityInput) (*schema.CallToolResult, *jsonrpc.Error) {
	attributes, err := s.client.EntityAttributes(ctx, input.Entity)
	if err != nil {
		return errorResult("entity_attributes", err)
	}
	return jsonResult(&AttributesOutput{Attributes: attributes})
}

func (s *Service) entityRelationships(ctx context.Context, input *EntityInput) (*schema.CallToolResult, *jsonrpc.Error) {
	relationships, err := s.client.EntityRelationships(ctx, input.Entity)
	if err != nil {
		return errorResult("entity_relationships", err)
	}
	return jsonResult(&RelationshipsOutput{
		OneToMany:  relationships.OneToMany,
		ManyToMany: relationships.ManyToMany,
	})
}

func (s *Service) attributeOptions(ctx context.Context, input *AttributeInput) (*schema.CallToolResult, *jsonrpc.Error) {
	options, err := s.client.AttributeOptions(ctx, input.Entity, input.Attribute)
	if err != nil {
		return errorResult("attribute_options", err)
	}
	return jsonResult(&ChoicesOutput{Options: options})
}

func (s *Service) globalOptionSet(ctx context.Context, input *OptionSetInput) (*schema.CallToolResult, *jsonrpc.Error) {
	options, err := s.client.GlobalOptionSet(ctx, input.Name)
	if err != nil {
		return errorResult("global_optionset", err)
	}
	return jsonResult(&ChoicesOutput{Options: options})
}

func (s *Service) queryRecords(ctx context.Context, input *QueryInput) (*schema.CallToolResult, *jsonrpc.Error) {
	records, err := s.client.QueryRecords(ctx, &api.Query{
		EntitySet: input.EntitySet,
		Select:    input.Select,
		Filter:    input.Filter,
		OrderBy:   input.OrderBy,
		Expand:    input.Expand,
		Top:       input.Top,
	})
	if err != nil {
		return errorResult("query_records", err)
	}
	return jsonResult(&RecordsOutput{Records: records})
}

// jsonResult returns the value as JSON text content, with structured
// content when the value serializes to an object.
func jsonResult(value interface{}) (*schema.CallToolResult, *jsonrpc.Error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	result := &schema.CallToolResult{
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: string(data)},
		},
	}
	structured := map[string]interface{}{}
	if err := json.Unmarshal(data, &structured); err == nil {
		result.StructuredContent = structured
	}
	return result, nil
}

// errorResult maps any failure to text content with the error flag set;
// config, auth and HTTP failures are reported alike (never retried).
func errorResult(tool string, err error) (*schema.CallToolResult, *jsonrpc.Error) {
	log.Printf("[mcp-dataverse] %v: %v", tool, err)
	isError := true
	return &schema.CallToolResult{
		IsError: &isError,
		Content: []schema.CallToolResultContentElem{
			schema.TextContent{Type: "text", Text: "ERROR: " + err.Error()},
		},
	}, nil
}
