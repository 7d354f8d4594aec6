// Package listing filters and orders the in-memory vendor collection for display.
package listing

import (
	"sort"
	"strings"
	"time"

	"github.com/oksasatya/vendor-directory/internal/domain/entity"
)

// Filters are AND-combined; zero values disable a facet.
type Filters struct {
	Search       string
	Category     string
	Neighborhood string
	Subtype      entity.Subtype
	MaxDistance  *float64
}

// Query returns the vendors matching f, featured first and nearest first inside
// each partition. Vendors without a distance keep their encounter slots.
func Query(vendors []entity.Vendor, f Filters, now time.Time) []entity.Vendor {
	var featured, regular []entity.Vendor
	for _, v := range vendors {
		if !f.Match(&v) {
			continue
		}
		if v.IsFeatured(now) {
			featured = append(featured, v)
		} else {
			regular = append(regular, v)
		}
	}

	out := make([]entity.Vendor, 0, len(featured)+len(regular))
	out = append(out, orderByDistance(featured)...)
	out = append(out, orderByDistance(regular)...)
	return out
}

// Match reports whether v passes every active facet.
func (f Filters) Match(v *entity.Vendor) bool {
	if c := strings.TrimSpace(f.Category); c != "" && !strings.EqualFold(c, string(entity.SubtypeAll)) {
		if !anyContains(v.Categories, c) {
			return false
		}
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		if !containsFold(v.Name, q) && !containsFold(v.Description, q) {
			return false
		}
	}
	if f.MaxDistance != nil {
		if v.Distance == nil || *v.Distance > *f.MaxDistance {
			return false
		}
	}
	if n := strings.TrimSpace(f.Neighborhood); n != "" {
		if !containsFold(v.Address, n) {
			return false
		}
	}
	if f.Subtype != "" && f.Subtype != entity.SubtypeAll && v.Subtype != f.Subtype {
		return false
	}
	return true
}

// orderByDistance sorts the vendors that have a distance among the positions
// they already occupy, leaving distance-less vendors where they were.
func orderByDistance(vendors []entity.Vendor) []entity.Vendor {
	var slots []int
	var withDistance []entity.Vendor
	for i, v := range vendors {
		if v.Distance != nil {
			slots = append(slots, i)
			withDistance = append(withDistance, v)
		}
	}
	sort.SliceStable(withDistance, func(i, j int) bool {
		return *withDistance[i].Distance < *withDistance[j].Distance
	})
	for k, i := range slots {
		vendors[i] = withDistance[k]
	}
	return vendors
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyContains(values []string, sub string) bool {
	for _, v := range values {
		if containsFold(v, sub) {
			return true
		}
	}
	return false
}
