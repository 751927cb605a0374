package dataverse

import (
	"context"
	"strings"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
)

const exploreEntityTemplate = `You are exploring the Dataverse environment at {url}.

Walk through the "{entity}" entity step by step:
1. Call entity_metadata with entity "{entity}" to learn its set name and primary attributes.
2. Call entity_attributes with entity "{entity}" and summarize the columns worth querying.
3. Call entity_relationships with entity "{entity}" and note how it connects to other entities.
4. For every Picklist attribute you found, call attribute_options to resolve its labels.
5. Finish with query_records on the entity set, selecting the primary name attribute and up to 10 rows.

Present the findings as a short report with one section per step.`

func (s *Service) registerPrompts(handler *protoserver.DefaultHandler) {
	description := "Guided exploration of a Dataverse entity"
	entityDescription := "entity logical name, e.g. account"
	required := true
	handler.Registry.RegisterPrompts(&schema.Prompt{
		Name:        "explore_entity",
		Description: &description,
		Arguments: []schema.PromptArgument{
			{Name: "entity", Description: &entityDescription, Required: &required},
		},
	}, func(ctx context.Context, request *schema.GetPromptRequestParams) (*schema.GetPromptResult, *jsonrpc.Error) {
		entity := request.Arguments["entity"]
		if entity == "" {
			return nil, jsonrpc.NewInvalidParamsError("entity was empty", nil)
		}
		text := renderTemplate(exploreEntityTemplate, map[string]string{
			"url":    s.client.BaseURL(),
			"entity": entity,
		})
		return &schema.GetPromptResult{
			Description: &description,
			Messages: []schema.PromptMessage{
				{Role: schema.RoleUser, Content: schema.TextContent{Type: "text", Text: text}},
			},
		}, nil
	})
}

// renderTemplate substitutes {key} placeholders with the supplied values.
func renderTemplate(template string, values map[string]string) string {
	oldNew := make([]string, 0, 2*len(values))
	for key, value := range values {
		oldNew = append(oldNew, "{"+key+"}", value)
	}
	return strings.NewReplacer(oldNew...).Replace(template)
}
