// Package projection computes the SELECT column list for a search request.
package projection

import (
	"strings"

	"github.com/sql2ldap/sql2ldap/internal/attrmap"
)

// isWildcard reports whether attrs requests every mapped attribute: either
// the list is empty or it contains the LDAP "all attributes" marker "*".
func isWildcard(attrs []string) bool {
	if len(attrs) == 0 {
		return true
	}
	for _, a := range attrs {
		if a == "*" {
			return true
		}
	}
	return false
}

// BuildSelect returns the "SELECT <cols> " fragment for attrs against m.
// cn is always projected (aliased as "cn") even when not requested, since
// the executor needs it to synthesize the entry's DN.
func BuildSelect(attrs []string, m *attrmap.Map) string {
	var cols []string

	if isWildcard(attrs) {
		for _, e := range m.All() {
			cols = append(cols, e.Column+" AS "+e.Lower)
		}
	} else {
		hasCN := false
		for _, a := range attrs {
			e, ok := m.Get(a)
			if !ok {
				continue
			}
			if e.Lower == "cn" {
				hasCN = true
			}
			cols = append(cols, e.Column+" AS "+e.Lower)
		}
		if !hasCN {
			if e, ok := m.Get("cn"); ok {
				cols = append(cols, e.Column+" AS cn")
			}
		}
	}

	return "SELECT " + strings.Join(cols, ", ") + " "
}
