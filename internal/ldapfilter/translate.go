package ldapfilter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sql2ldap/sql2ldap/internal/attrmap"
)

// sanitize escapes the two LIKE metacharacters the gateway cares about.
// Backslash itself is left alone — a known, documented gap (spec §9.3),
// not a bug to guess-fix here.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// Translate walks n and produces a "WHERE ..." fragment using $1..$N
// placeholders, plus the ordered bindings those placeholders refer to.
// Every user-supplied value ends up in bindings, never interpolated into
// the returned string — see the injection-safety invariant in spec §8.
func Translate(n Node, m *attrmap.Map) (string, []string) {
	var sb strings.Builder
	bindings := make([]string, 0, 4)
	writeNode(&sb, &bindings, n, m)
	return "WHERE " + sb.String(), bindings
}

func nextPlaceholder(bindings *[]string, value string) string {
	*bindings = append(*bindings, value)
	return "$" + strconv.Itoa(len(*bindings))
}

func writeNode(sb *strings.Builder, bindings *[]string, n Node, m *attrmap.Map) {
	switch n.Kind {
	case KindAnd:
		writeGroup(sb, bindings, n.Children, " AND ", m)
	case KindOr:
		writeGroup(sb, bindings, n.Children, " OR ", m)
	case KindNot:
		sb.WriteString("(NOT ")
		writeNode(sb, bindings, n.Children[0], m)
		sb.WriteString(") ")
	case KindEquality:
		col := m.Column(n.Attribute)
		sb.WriteString("LOWER(")
		sb.WriteString(col)
		sb.WriteString(") = LOWER(")
		sb.WriteString(nextPlaceholder(bindings, sanitize(n.Value)))
		sb.WriteString(") ")
	case KindPresent:
		col := m.Column(n.Attribute)
		sb.WriteString(col)
		sb.WriteString(" <> '' ")
	case KindSubstring:
		col := m.Column(n.Attribute)
		pattern := buildSubstringPattern(n.Substr)
		sb.WriteString("LOWER(")
		sb.WriteString(col)
		sb.WriteString(") LIKE LOWER(")
		sb.WriteString(nextPlaceholder(bindings, pattern))
		sb.WriteString(") ")
	default:
		panic(fmt.Sprintf("ldapfilter: unreachable node kind %v", n.Kind))
	}
}

func writeGroup(sb *strings.Builder, bindings *[]string, children []Node, sep string, m *attrmap.Map) {
	if len(children) == 0 {
		return
	}
	sb.WriteString("(")
	for i, child := range children {
		if i > 0 {
			sb.WriteString(sep)
		}
		writeNode(sb, bindings, child, m)
	}
	sb.WriteString(") ")
}

func buildSubstringPattern(s Substring) string {
	var sb strings.Builder
	if s.Initial != nil {
		sb.WriteString(sanitize(*s.Initial))
		sb.WriteString("%")
	}
	if sb.Len() == 0 && len(s.Any) > 0 {
		sb.WriteString("%")
	}
	for _, a := range s.Any {
		sb.WriteString(sanitize(a))
		sb.WriteString("%")
	}
	if s.Final != nil {
		sb.WriteString(sanitize(*s.Final))
	}
	return sb.String()
}
