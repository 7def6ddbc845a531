// Package importer turns free-text tour records from a bulk import into tours
// whose company, guide and nationality references point at existing master
// entities. Resolution is best effort: names that match nothing are left as
// unresolved references for an operator to fix during review.
package importer

import (
	"strings"

	"github.com/tourdesk/tourdesk/internal/domain"
	"github.com/tourdesk/tourdesk/internal/textnorm"
)

// index is a name lookup over one master kind.
type index struct {
	all    []domain.MasterEntity
	names  []string
	byName map[string]int
}

func newIndex(entities []domain.MasterEntity) index {
	ix := index{
		all:    entities,
		names:  make([]string, len(entities)),
		byName: make(map[string]int, len(entities)),
	}
	for i, e := range entities {
		ix.names[i] = e.Name
		key := textnorm.Normalize(e.Name)
		if key == "" {
			continue
		}
		// first seen wins on duplicate normalized names
		if _, dup := ix.byName[key]; !dup {
			ix.byName[key] = i
		}
	}
	return ix
}

func (ix index) exact(name string) (domain.MasterEntity, bool) {
	i, ok := ix.byName[textnorm.Normalize(name)]
	if !ok {
		return domain.MasterEntity{}, false
	}
	return ix.all[i], true
}

func (ix index) fuzzy(name string, threshold float64) (domain.MasterEntity, bool) {
	m, ok := textnorm.BestMatch(name, ix.names, threshold)
	if !ok {
		return domain.MasterEntity{}, false
	}
	return ix.all[m.Index], true
}

// EntityCache holds name-indexed lookups over the master entities an import
// resolves against. Build it once per import session with BuildCache; it is
// read-only afterwards and safe for concurrent use.
type EntityCache struct {
	companies     index
	guides        index
	nationalities index
	nationalityBy map[string]int // upper-cased ISO code → index
}

// BuildCache indexes the given entity lists by normalized name, and
// nationalities additionally by their upper-cased code.
// Duplicate normalized names or codes keep the first entity seen.
func BuildCache(companies, guides, nationalities []domain.MasterEntity) *EntityCache {
	c := &EntityCache{
		companies:     newIndex(companies),
		guides:        newIndex(guides),
		nationalities: newIndex(nationalities),
		nationalityBy: make(map[string]int, len(nationalities)),
	}
	for i, n := range nationalities {
		code := strings.ToUpper(strings.TrimSpace(n.Code))
		if code == "" {
			continue
		}
		if _, dup := c.nationalityBy[code]; !dup {
			c.nationalityBy[code] = i
		}
	}
	return c
}

// Company returns the company whose normalized name equals Normalize(name).
func (c *EntityCache) Company(name string) (domain.MasterEntity, bool) {
	return c.companies.exact(name)
}

// Guide returns the guide whose normalized name equals Normalize(name).
func (c *EntityCache) Guide(name string) (domain.MasterEntity, bool) {
	return c.guides.exact(name)
}

// Nationality looks name up first as a normalized name, then as an ISO code.
func (c *EntityCache) Nationality(name string) (domain.MasterEntity, bool) {
	if e, ok := c.nationalities.exact(name); ok {
		return e, true
	}
	if i, ok := c.nationalityBy[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return c.nationalities.all[i], true
	}
	return domain.MasterEntity{}, false
}

// Len reports how many entities of each kind the cache holds.
func (c *EntityCache) Len() (companies, guides, nationalities int) {
	return len(c.companies.all), len(c.guides.all), len(c.nationalities.all)
}

func (c *EntityCache) indexFor(f Field) index {
	switch f {
	case FieldCompany:
		return c.companies
	case FieldGuide:
		return c.guides
	default:
		return c.nationalities
	}
}

func (c *EntityCache) exactFor(f Field, name string) (domain.MasterEntity, bool) {
	switch f {
	case FieldCompany:
		return c.Company(name)
	case FieldGuide:
		return c.Guide(name)
	default:
		return c.Nationality(name)
	}
}
