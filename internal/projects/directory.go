// Package projects provides lookup of project metadata by id.
package projects

import (
	"strings"

	"github.com/samber/lo"

	"github.com/j-veylop/openai-costs-tui/internal/models"
)

// UnnamedProject is shown for known projects that have neither a title nor
// a name.
const UnnamedProject = "Unnamed project"

// NoProject is shown for charges that carry no project id.
const NoProject = "(no project)"

// Directory is an immutable index of projects keyed by id.
type Directory struct {
	byID  map[string]models.Project
	order []string
}

// New indexes projects. A later record with the same id replaces the
// earlier one but keeps its listing position.
func New(projects []models.Project) *Directory {
	d := &Directory{byID: make(map[string]models.Project, len(projects))}
	for _, p := range projects {
		if _, seen := d.byID[p.ID]; !seen {
			d.order = append(d.order, p.ID)
		}
		d.byID[p.ID] = p
	}
	return d
}

// Name returns the display name for id. Unknown ids are returned unchanged
// and an empty id resolves to NoProject. A nil Directory knows no projects.
func (d *Directory) Name(id string) string {
	if d != nil {
		if p, ok := d.byID[id]; ok {
			return DisplayName(&p)
		}
	}
	if id == "" {
		return NoProject
	}
	return id
}

// DisplayName picks the title, then the name, then UnnamedProject.
func DisplayName(p *models.Project) string {
	if p.Title != nil && *p.Title != "" {
		return *p.Title
	}
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return UnnamedProject
}

// Get returns a copy of the project with id.
func (d *Directory) Get(id string) (*models.Project, bool) {
	p, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

// Has reports whether id is known.
func (d *Directory) Has(id string) bool {
	_, ok := d.byID[id]
	return ok
}

// All returns every project in first-seen order.
func (d *Directory) All() []models.Project {
	return lo.Map(d.order, func(id string, _ int) models.Project {
		return d.byID[id]
	})
}

// Len returns the number of distinct projects.
func (d *Directory) Len() int {
	return len(d.order)
}

// Search returns projects whose id, title, name or description contains
// query, ignoring case. An empty query matches everything.
func (d *Directory) Search(query string) []models.Project {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return d.All()
	}

	return lo.Filter(d.All(), func(p models.Project, _ int) bool {
		fields := []string{p.ID, deref(p.Title), deref(p.Name), deref(p.Description)}
		return lo.SomeBy(fields, func(f string) bool {
			return strings.Contains(strings.ToLower(f), query)
		})
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
