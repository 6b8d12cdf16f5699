package access

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kailas-cloud/newsrank/internal/domain/filter"
)

// Metadata field names shared by every store that enforces a Scope.
const (
	FieldGroup     = "group_guid"
	FieldCreatedAt = "created_at"
)

// Scope is the set of groups a caller may read. It is the only way a store
// is told what is visible; a zero Scope allows nothing.
type Scope struct {
	groups []string
}

// NewScope builds a Scope from permitted group identifiers.
func NewScope(groups []string) Scope {
	seen := make(map[string]struct{}, len(groups))
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	sort.Strings(out)
	return Scope{groups: out}
}

// Allows reports whether a document in group may be read. Unknown groups fail closed.
func (s Scope) Allows(group string) bool {
	if group == "" {
		return false
	}
	i := sort.SearchStrings(s.groups, group)
	return i < len(s.groups) && s.groups[i] == group
}

// Groups returns a sorted copy of the permitted groups.
func (s Scope) Groups() []string {
	out := make([]string, len(s.groups))
	copy(out, s.groups)
	return out
}

// IsEmpty reports whether nothing is visible.
func (s Scope) IsEmpty() bool { return len(s.groups) == 0 }

// VectorFilter returns the metadata pre-filter restricting a nearest-neighbor
// query to this scope and to documents created at or after since.
func (s Scope) VectorFilter(since time.Time) (filter.Expression, error) {
	if s.IsEmpty() {
		return filter.Expression{}, fmt.Errorf("empty access scope")
	}
	groups, err := filter.NewMatchAny(FieldGroup, s.groups)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("group condition: %w", err)
	}
	created, err := filter.NewRange(FieldCreatedAt, filter.AtLeast(float64(since.Unix())))
	if err != nil {
		return filter.Expression{}, fmt.Errorf("created_at condition: %w", err)
	}
	return filter.NewExpression(groups, created)
}
