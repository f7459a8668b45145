// Package ldapfilter translates BER-decoded LDAP search filters into the
// gateway's own filter AST and, from there, into parameterized SQL.
package ldapfilter

import (
	"errors"
	"fmt"

	"github.com/lor00x/goldap/message"
)

// ErrUnsupportedFilter is returned by FromMessage for any filter kind the
// gateway does not translate (RFC 4511 kinds other than and/or/not/
// equality/substrings/present). Callers map it to the "other" result code.
var ErrUnsupportedFilter = errors.New("ldapfilter: unsupported filter kind")

// Kind tags the variant held by a Node.
type Kind int

const (
	KindAnd Kind = iota
	KindOr
	KindNot
	KindEquality
	KindSubstring
	KindPresent
)

// Substring holds the three (optional) pieces of a substring assertion:
// at most one initial and one final anchor, plus any number of "any" pieces
// in between. A nil Initial/Final means that anchor was not asserted.
type Substring struct {
	Initial *string
	Any     []string
	Final   *string
}

// Node is the tagged-union filter tree the translator consumes. Only one of
// the fields relevant to Kind is populated; the rest are zero.
type Node struct {
	Kind      Kind
	Children  []Node    // And, Or, Not (Not always has exactly one)
	Attribute string    // Equality, Substring, Present
	Value     string    // Equality
	Substr    Substring // Substring
}

// FromMessage converts a BER-decoded message.Filter into a Node tree.
func FromMessage(f message.Filter) (Node, error) {
	switch v := f.(type) {
	case message.FilterAnd:
		return fromGroup(KindAnd, []message.Filter(v))
	case message.FilterOr:
		return fromGroup(KindOr, []message.Filter(v))
	case message.FilterNot:
		child, err := FromMessage(v.Filter)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: KindNot, Children: []Node{child}}, nil
	case message.FilterEqualityMatch:
		return Node{
			Kind:      KindEquality,
			Attribute: string(v.AttributeDesc()),
			Value:     string(v.AssertionValue()),
		}, nil
	case message.FilterSubstrings:
		return fromSubstrings(v)
	case message.FilterPresent:
		return Node{Kind: KindPresent, Attribute: string(v)}, nil
	default:
		return Node{}, fmt.Errorf("%w: %T", ErrUnsupportedFilter, f)
	}
}

func fromGroup(kind Kind, filters []message.Filter) (Node, error) {
	children := make([]Node, 0, len(filters))
	for _, sub := range filters {
		child, err := FromMessage(sub)
		if err != nil {
			return Node{}, err
		}
		children = append(children, child)
	}
	return Node{Kind: kind, Children: children}, nil
}

func fromSubstrings(v message.FilterSubstrings) (Node, error) {
	n := Node{Kind: KindSubstring, Attribute: string(v.Type_())}
	for _, sub := range v.Substrings() {
		switch s := sub.(type) {
		case message.SubstringInitial:
			val := string(s)
			n.Substr.Initial = &val
		case message.SubstringAny:
			n.Substr.Any = append(n.Substr.Any, string(s))
		case message.SubstringFinal:
			val := string(s)
			n.Substr.Final = &val
		}
	}
	return n, nil
}
