package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCostsPage_Decode(t *testing.T) {
	raw := `{
		"object": "page",
		"has_more": false,
		"next_page": null,
		"data": [{
			"object": "bucket",
			"start_time": 1704067200,
			"end_time": 1704153600,
			"results": [
				{"object": "organization.costs.result", "amount": {"value": 0.1, "currency": "usd"}, "line_item": "gpt-4", "project_id": "p1", "organization_id": "org"},
				{"object": "organization.costs.result", "amount": {"value": 0.2, "currency": "usd"}, "line_item": null, "project_id": "p1", "organization_id": "org"}
			]
		}]
	}`

	var page CostsPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(page.Data) != 1 || len(page.Data[0].Results) != 2 {
		t.Fatalf("unexpected shape: %+v", page)
	}

	first := page.Data[0].Results[0]
	if first.LineItem == nil || *first.LineItem != "gpt-4" {
		t.Errorf("LineItem = %v, want gpt-4", first.LineItem)
	}
	if first.Amount.Value.String() != "0.1" {
		t.Errorf("Amount = %s, want 0.1", first.Amount.Value)
	}
	if page.Data[0].Results[1].LineItem != nil {
		t.Error("null line_item should decode to nil")
	}

	wantStart := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !page.Data[0].Start().Equal(wantStart) {
		t.Errorf("Start() = %v, want %v", page.Data[0].Start(), wantStart)
	}
}

func TestProject_CreatedTime(t *testing.T) {
	at := int64(1700000000)

	tests := []struct {
		name string
		p    Project
		want time.Time
	}{
		{"created_at wins", Project{CreatedAt: &at, Created: 1}, time.Unix(at, 0).UTC()},
		{"falls back to created", Project{Created: at}, time.Unix(at, 0).UTC()},
		{"unknown", Project{}, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.CreatedTime(); !got.Equal(tt.want) {
				t.Errorf("CreatedTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSession_IsExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		s    *Session
		want bool
	}{
		{"nil", nil, true},
		{"future", &Session{ExpiresAt: now.Add(time.Hour)}, false},
		{"exact", &Session{ExpiresAt: now}, true},
		{"past", &Session{ExpiresAt: now.Add(-time.Second)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		u    User
		want string
	}{
		{"full", User{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}, "Ada Lovelace"},
		{"first only", User{FirstName: "Ada", Username: "ada"}, "Ada"},
		{"username", User{Username: "ada"}, "ada"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.u.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
