// Package attrmap implements the bidirectional, case-insensitive mapping
// between LDAP attribute names and SQL column names that the rest of the
// gateway consults when translating requests into queries.
package attrmap

import "strings"

// Entry is one mapped attribute: the canonical (user-configured) casing of
// the LDAP attribute name alongside the SQL column that backs it.
type Entry struct {
	Lower     string // lowercased attribute name, the lookup key
	Canonical string // casing as configured, used in response attribute labels
	Column    string // SQL column identifier
}

// Map is the immutable, shared, read-only attribute↔column mapping loaded
// once at configuration time and consulted by every session thereafter.
type Map struct {
	entries map[string]Entry
}

// New returns an empty Map ready for Insert.
func New() *Map {
	return &Map{entries: make(map[string]Entry)}
}

// Insert records attr -> col, keyed by lower(attr). Last writer wins.
func (m *Map) Insert(attr, col string) {
	lower := strings.ToLower(attr)
	m.entries[lower] = Entry{Lower: lower, Canonical: attr, Column: col}
}

// Get looks up name case-insensitively.
func (m *Map) Get(name string) (Entry, bool) {
	e, ok := m.entries[strings.ToLower(name)]
	return e, ok
}

// All returns every mapped entry, in unspecified order.
func (m *Map) All() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return out
}

// Len returns the number of mapped attributes.
func (m *Map) Len() int {
	return len(m.entries)
}

// Column resolves an attribute to its SQL column, falling back to the
// literal empty-string SQL expression for unknown attributes per the
// filter translator's injection-safe no-match contract.
func (m *Map) Column(attr string) string {
	if e, ok := m.Get(attr); ok {
		return e.Column
	}
	return "''"
}
