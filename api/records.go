package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// Query describes a record query against an entity set.
type Query struct {
	EntitySet string
	Select    string
	Filter    string
	OrderBy   string
	Expand    string
	Top       int
}

// WhoAmI holds the caller identity returned by the WhoAmI function.
type WhoAmI struct {
	UserID         string `json:"userId"`
	BusinessUnitID string `json:"businessUnitId"`
	OrganizationID string `json:"organizationId"`
}

// QueryRecords runs an OData query against an entity set and returns the
// response body unmodified, annotations included.
func (c *Client) QueryRecords(ctx context.Context, query *Query) (json.RawMessage, error) {
	if query.EntitySet == "" {
		return nil, fmt.Errorf("entity set name was empty")
	}
	values := url.Values{}
	if query.Select != "" {
		values.Set("$select", query.Select)
	}
	if query.Filter != "" {
		values.Set("$filter", query.Filter)
	}
	if query.OrderBy != "" {
		values.Set("$orderby", query.OrderBy)
	}
	if query.Expand != "" {
		values.Set("$expand", query.Expand)
	}
	if query.Top > 0 {
		values.Set("$top", strconv.Itoa(query.Top))
	}
	data, err := c.Get(ctx, query.EntitySet, values, true)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// CallerIdentity runs the WhoAmI function, a cheap connectivity check.
func (c *Client) CallerIdentity(ctx context.Context) (*WhoAmI, error) {
	data, err := c.Get(ctx, "WhoAmI", nil, false)
	if err != nil {
		return nil, err
	}
	raw := struct {
		UserID         string `json:"UserId"`
		BusinessUnitID string `json:"BusinessUnitId"`
		OrganizationID string `json:"OrganizationId"`
	}{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode WhoAmI response: %w", err)
	}
	return &WhoAmI{
		UserID:         raw.UserID,
		BusinessUnitID: raw.BusinessUnitID,
		OrganizationID: raw.OrganizationID,
	}, nil
}
