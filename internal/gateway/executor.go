package gateway

import (
	"context"

	"github.com/lor00x/goldap/message"

	"github.com/sql2ldap/sql2ldap/internal/attrmap"
	"github.com/sql2ldap/sql2ldap/internal/dn"
	"github.com/sql2ldap/sql2ldap/internal/gatewayerr"
	"github.com/sql2ldap/sql2ldap/internal/ldapfilter"
	"github.com/sql2ldap/sql2ldap/internal/projection"
)

// Row is the minimal read-side contract the executor needs from a query
// result; sqlbackend.Row satisfies it, and so does any test double.
type Row interface {
	Get(col string) (string, bool)
}

// Querier executes a compiled SELECT against the backing table, returning
// rows shaped by column alias. Wire up sqlbackend.Backend through an
// adapter since its concrete Row slice doesn't satisfy this directly.
type Querier interface {
	Query(ctx context.Context, selectClause, whereClause string, limit int, args []string) ([]Row, error)
}

// Request is one LDAP search request, already decoded from the wire.
type Request struct {
	Base      string
	Scope     dn.Scope
	Filter    message.Filter
	Attrs     []string
	SizeLimit int
}

// Executor resolves a search request's base DN, compiles its filter and
// projection, runs the query, and shapes the rows into entries.
type Executor struct {
	Suffix  string
	Mapping *attrmap.Map
	SQL     Querier
}

// Search runs req and returns the matching entries, or a gatewayerr.Error
// describing why it could not. A nil error with no entries is a
// legitimate empty success: for the ancestor case (a Base-scope search at
// a base strictly above the configured suffix, or a non-Base-scope search
// at any base other than the suffix), and for a query that matches no rows.
func (e *Executor) Search(ctx context.Context, req Request) ([]Entry, *gatewayerr.Error) {
	class := dn.Resolve(req.Base, req.Scope, e.Suffix)

	switch class.Kind {
	case dn.KindRootDSE:
		return []Entry{e.rootDSEEntry()}, nil

	case dn.KindAncestor:
		return nil, nil

	case dn.KindSuffixEntry:
		return []Entry{e.suffixEntry(class)}, nil

	case dn.KindError:
		if class.ErrCode == dn.ErrOther {
			return nil, gatewayerr.New(gatewayerr.Other, "Not implemented")
		}
		return nil, gatewayerr.ErrNoSuchObject("No such object")

	case dn.KindLeaf:
		where := "WHERE " + e.Mapping.Column("cn") + " = $1 "
		return e.query(ctx, req, where, []string{class.CN})

	case dn.KindSubtreeScan:
		node, err := ldapfilter.FromMessage(req.Filter)
		if err != nil {
			return nil, gatewayerr.New(gatewayerr.Other, "Not implemented")
		}
		where, bindings := ldapfilter.Translate(node, e.Mapping)
		return e.query(ctx, req, where, bindings)

	default:
		return nil, gatewayerr.New(gatewayerr.Other, "Not implemented")
	}
}

// rootDSEEntry synthesizes the server's root DSE: an empty-DN entry
// advertising this gateway's single naming context, returned for every
// Base-scope search against an empty base DN.
func (e *Executor) rootDSEEntry() Entry {
	return Entry{
		DN: "",
		Attributes: []Attribute{
			{Name: "objectClass", Values: []string{"top"}},
			{Name: "namingContexts", Values: []string{e.Suffix}},
		},
	}
}

// suffixEntry synthesizes the single synthetic entry that represents the
// naming context's root, carrying an objectClass derived from its leading
// RDN type plus the directory-service metadata attributes clients expect
// from a container entry.
func (e *Executor) suffixEntry(c dn.Classification) Entry {
	objectClass := "organizationalUnit"
	if c.RDN.Type == "dc" {
		objectClass = "dcObject"
	}
	return Entry{
		DN: e.Suffix,
		Attributes: []Attribute{
			{Name: "objectClass", Values: []string{objectClass}},
			{Name: c.RDN.Type, Values: []string{c.RDN.Value}},
			{Name: "hasSubordinates", Values: []string{"TRUE"}},
			{Name: "entryDN", Values: []string{e.Suffix}},
		},
	}
}

func (e *Executor) query(ctx context.Context, req Request, where string, bindings []string) ([]Entry, *gatewayerr.Error) {
	selectClause := projection.BuildSelect(req.Attrs, e.Mapping)

	rows, err := e.SQL.Query(ctx, selectClause, where, req.SizeLimit, bindings)
	if err != nil {
		return nil, gatewayerr.New(gatewayerr.OperationsError, "Operations error")
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, e.shapeRow(req.Attrs, r))
	}
	return entries, nil
}

func (e *Executor) shapeRow(requested []string, r Row) Entry {
	var attrs []Attribute

	wildcard := len(requested) == 0
	for _, a := range requested {
		if a == "*" {
			wildcard = true
		}
	}

	addIfPresent := func(canonical, lower string) {
		if v, ok := r.Get(lower); ok && v != "" {
			attrs = append(attrs, Attribute{Name: canonical, Values: []string{v}})
		}
	}

	if wildcard {
		for _, me := range e.Mapping.All() {
			addIfPresent(me.Canonical, me.Lower)
		}
	} else {
		for _, a := range requested {
			if me, ok := e.Mapping.Get(a); ok {
				addIfPresent(me.Canonical, me.Lower)
			}
		}
	}

	cn, _ := r.Get("cn")
	return Entry{DN: buildDN(cn, e.Suffix), Attributes: attrs}
}
