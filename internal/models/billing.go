// Package models defines data structures and domain types.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value in a single currency.
// Values may be negative for refunds and credits.
type Amount struct {
	Currency string          `json:"currency"`
	Value    decimal.Decimal `json:"value"`
}

// CostResult is one atomic charge entry inside a cost bucket.
type CostResult struct {
	LineItem       *string `json:"line_item"`
	Amount         Amount  `json:"amount"`
	Object         string  `json:"object"`
	OrganizationID string  `json:"organization_id"`
	ProjectID      string  `json:"project_id"`
}

// CostBucket groups the charges that occurred within [StartTime, EndTime),
// both expressed as Unix seconds.
type CostBucket struct {
	Object    string       `json:"object"`
	Results   []CostResult `json:"results"`
	StartTime int64        `json:"start_time"`
	EndTime   int64        `json:"end_time"`
}

// Start returns the bucket start as a UTC time.
func (b CostBucket) Start() time.Time {
	return time.Unix(b.StartTime, 0).UTC()
}

// End returns the bucket end as a UTC time.
func (b CostBucket) End() time.Time {
	return time.Unix(b.EndTime, 0).UTC()
}

// CostsPage is the response of the organization costs endpoint.
type CostsPage struct {
	NextPage *string      `json:"next_page"`
	Object   string       `json:"object"`
	Data     []CostBucket `json:"data"`
	HasMore  bool         `json:"has_more"`
}

// Project is the metadata of a billing project.
type Project struct {
	Title          *string `json:"title,omitempty"`
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	Icon           *string `json:"icon,omitempty"`
	Color          *string `json:"color,omitempty"`
	Permission     *string `json:"permission,omitempty"`
	Status         *string `json:"status,omitempty"`
	CreatedAt      *int64  `json:"created_at,omitempty"`
	ArchivedAt     *int64  `json:"archived_at,omitempty"`
	ID             string  `json:"id"`
	Object         string  `json:"object"`
	OrganizationID string  `json:"organization_id"`
	Created        int64   `json:"created"`
	Updated        int64   `json:"updated"`
	Archived       bool    `json:"archived"`
}

// CreatedTime returns the best known creation time of the project.
func (p *Project) CreatedTime() time.Time {
	switch {
	case p.CreatedAt != nil && *p.CreatedAt > 0:
		return time.Unix(*p.CreatedAt, 0).UTC()
	case p.Created > 0:
		return time.Unix(p.Created, 0).UTC()
	default:
		return time.Time{}
	}
}

// PermissionLevel returns the permission string, or "" when unset.
func (p *Project) PermissionLevel() string {
	if p.Permission == nil {
		return ""
	}
	return *p.Permission
}

// DescriptionText returns the description, or "" when unset.
func (p *Project) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}

// ProjectsPage is the response of the organization projects endpoint.
type ProjectsPage struct {
	Object  string    `json:"object"`
	Data    []Project `json:"data"`
	HasMore bool      `json:"has_more"`
}

// StringPtr returns a pointer to s. Handy for optional fields in fixtures.
func StringPtr(s string) *string {
	return &s
}
