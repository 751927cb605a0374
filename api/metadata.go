package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

var entitySelect = strings.Join([]string{
	"LogicalName",
	"SchemaName",
	"EntitySetName",
	"PrimaryIdAttribute",
	"PrimaryNameAttribute",
	"DisplayName",
	"Description",
	"IsCustomEntity",
	"OwnershipType",
}, ",")

var attributeSelect = strings.Join([]string{
	"LogicalName",
	"SchemaName",
	"AttributeType",
	"DisplayName",
	"Description",
	"IsPrimaryId",
	"IsPrimaryName",
	"RequiredLevel",
	"IsValidForCreate",
	"IsValidForUpdate",
	"IsCustomAttribute",
}, ",")

var oneToManySelect = strings.Join([]string{
	"SchemaName",
	"ReferencedEntity",
	"ReferencedAttribute",
	"ReferencingEntity",
	"ReferencingAttribute",
}, ",")

var manyToManySelect = strings.Join([]string{
	"SchemaName",
	"Entity1LogicalName",
	"Entity2LogicalName",
	"IntersectEntityName",
}, ",")

// Relationships groups the two relationship kinds fetched for an entity.
type Relationships struct {
	OneToMany  []map[string]interface{} `json:"oneToMany"`
	ManyToMany []map[string]interface{} `json:"manyToMany"`
}

// Choice is a single option-set entry.
type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// EntityMetadata fetches the entity definition and reshapes it to a flat
// object with localized display name and description.
func (c *Client) EntityMetadata(ctx context.Context, logicalName string) (map[string]interface{}, error) {
	resource := fmt.Sprintf("EntityDefinitions(LogicalName='%v')", logicalName)
	data, err := c.Get(ctx, resource, url.Values{"$select": []string{entitySelect}}, false)
	if err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode entity metadata %v: %w", logicalName, err)
	}
	return map[string]interface{}{
		"logicalName":          raw["LogicalName"],
		"schemaName":           raw["SchemaName"],
		"entitySetName":        raw["EntitySetName"],
		"primaryIdAttribute":   raw["PrimaryIdAttribute"],
		"primaryNameAttribute": raw["PrimaryNameAttribute"],
		"displayName":          localizedLabel(raw["DisplayName"]),
		"description":          localizedLabel(raw["Description"]),
		"isCustomEntity":       raw["IsCustomEntity"],
		"ownershipType":        raw["OwnershipType"],
	}, nil
}

// EntityAttributes fetches the attribute list of an entity, dropping the
// derived lookup-name columns that only mirror another attribute.
func (c *Client) EntityAttributes(ctx context.Context, logicalName string) ([]map[string]interface{}, error) {
	resource := fmt.Sprintf("EntityDefinitions(LogicalName='%v')/Attributes", logicalName)
	data, err := c.Get(ctx, resource, url.Values{"$select": []string{attributeSelect}}, false)
	if err != nil {
		return nil, err
	}
	listing := struct {
		Value []map[string]interface{} `json:"value"`
	}{}
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("failed to decode attributes of %v: %w", logicalName, err)
	}
	var attributes []map[string]interface{}
	for _, raw := range filterDerivedNames(listing.Value) {
		attributes = append(attributes, map[string]interface{}{
			"logicalName":       raw["LogicalName"],
			"schemaName":        raw["SchemaName"],
			"type":              raw["AttributeType"],
			"displayName":       localizedLabel(raw["DisplayName"]),
			"description":       localizedLabel(raw["Description"]),
			"isPrimaryId":       raw["IsPrimaryId"],
			"isPrimaryName":     raw["IsPrimaryName"],
			"requiredLevel":     requiredLevel(raw["RequiredLevel"]),
			"isValidForCreate":  raw["IsValidForCreate"],
			"isValidForUpdate":  raw["IsValidForUpdate"],
			"isCustomAttribute": raw["IsCustomAttribute"],
		})
	}
	return attributes, nil
}

// EntityRelationships fetches one-to-many and many-to-many relationships
// with two concurrent requests.
func (c *Client) EntityRelationships(ctx context.Context, logicalName string) (*Relationships, error) {
	type fetched struct {
		manyToMany bool
		rows       []map[string]interface{}
		err        error
	}
	resultChannel := make(chan fetched, 2)
	fetch := func(kind, selectList string, manyToMany bool) {
		resource := fmt.Sprintf("EntityDefinitions(LogicalName='%v')/%v", logicalName, kind)
		data, err := c.Get(ctx, resource, url.Values{"$select": []string{selectList}}, false)
		if err != nil {
			resultChannel <- fetched{manyToMany: manyToMany, err: err}
			return
		}
		listing := struct {
			Value []map[string]interface{} `json:"value"`
		}{}
		if err := json.Unmarshal(data, &listing); err != nil {
			resultChannel <- fetched{manyToMany: manyToMany, err: fmt.Errorf("failed to decode %v of %v: %w", kind, logicalName, err)}
			return
		}
		resultChannel <- fetched{manyToMany: manyToMany, rows: listing.Value}
	}
	go fetch("OneToManyRelationships", oneToManySelect, false)
	go fetch("ManyToManyRelationships", manyToManySelect, true)

	ret := &Relationships{}
	for i := 0; i < 2; i++ {
		result := <-resultChannel
		if result.err != nil {
			return nil, result.err
		}
		if result.manyToMany {
			ret.ManyToMany = result.rows
		} else {
			ret.OneToMany = result.rows
		}
	}
	return ret, nil
}

// AttributeOptions fetches the picklist option set of an entity attribute.
func (c *Client) AttributeOptions(ctx context.Context, entity, attribute string) ([]Choice, error) {
	resource := fmt.Sprintf("EntityDefinitions(LogicalName='%v')/Attributes(LogicalName='%v')/Microsoft.Dynamics.CRM.PicklistAttributeMetadata", entity, attribute)
	query := url.Values{
		"$select": []string{"LogicalName"},
		"$expand": []string{"OptionSet($select=Options)"},
	}
	data, err := c.Get(ctx, resource, query, false)
	if err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode option set of %v.%v: %w", entity, attribute, err)
	}
	optionSet, _ := raw["OptionSet"].(map[string]interface{})
	return choices(optionSet), nil
}

// GlobalOptionSet fetches a global option set definition by name.
func (c *Client) GlobalOptionSet(ctx context.Context, name string) ([]Choice, error) {
	resource := fmt.Sprintf("GlobalOptionSetDefinitions(Name='%v')", name)
	data, err := c.Get(ctx, resource, nil, false)
	if err != nil {
		return nil, err
	}
	raw := map[string]interface{}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode global option set %v: %w", name, err)
	}
	return choices(raw), nil
}

// choices reshapes an option set container to value/label pairs.
func choices(optionSet map[string]interface{}) []Choice {
	if optionSet == nil {
		return nil
	}
	options, _ := optionSet["Options"].([]interface{})
	var ret []Choice
	for _, item := range options {
		option, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		value, _ := option["Value"].(float64)
		ret = append(ret, Choice{Value: int(value), Label: localizedLabel(option["Label"])})
	}
	return ret
}

// filterDerivedNames removes attributes whose logical name only exists to
// carry the display text of another attribute: a trailing "name" or
// "yominame" whose stem names a sibling attribute.
func filterDerivedNames(attributes []map[string]interface{}) []map[string]interface{} {
	names := make(map[string]bool, len(attributes))
	for _, attribute := range attributes {
		if name, ok := attribute["LogicalName"].(string); ok {
			names[name] = true
		}
	}
	var ret []map[string]interface{}
	for _, attribute := range attributes {
		name, _ := attribute["LogicalName"].(string)
		if isDerivedName(name, names) {
			continue
		}
		ret = append(ret, attribute)
	}
	return ret
}

func isDerivedName(name string, names map[string]bool) bool {
	for _, suffix := range []string{"yominame", "name"} {
		if !strings.HasSuffix(name, suffix) || len(name) == len(suffix) {
			continue
		}
		stem := strings.TrimSuffix(name, suffix)
		if names[stem] || names[strings.Trim(stem, "_")] {
			return true
		}
	}
	return false
}

// localizedLabel digs the user-localized label text out of a label value.
func localizedLabel(value interface{}) string {
	label, ok := value.(map[string]interface{})
	if !ok {
		return ""
	}
	localized, ok := label["UserLocalizedLabel"].(map[string]interface{})
	if !ok {
		return ""
	}
	text, _ := localized["Label"].(string)
	return text
}

func requiredLevel(value interface{}) interface{} {
	level, ok := value.(map[string]interface{})
	if !ok {
		return nil
	}
	return level["Value"]
}
