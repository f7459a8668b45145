// Package server wires the gateway's domain components into
// vjeantet/ldapserver's request dispatch.
package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/lor00x/goldap/message"
	"github.com/vjeantet/ldapserver"

	"github.com/sql2ldap/sql2ldap/internal/dn"
	"github.com/sql2ldap/sql2ldap/internal/gateway"
	"github.com/sql2ldap/sql2ldap/internal/gatewayerr"
	"github.com/sql2ldap/sql2ldap/internal/session"
	"github.com/sql2ldap/sql2ldap/pkg/config"
)

// whoamiOID is the RFC 4532 "Who am I?" extended operation's request OID.
const whoamiOID = "1.3.6.1.4.1.4203.1.11.3"

// NullWriter discards all writes; it redirects ldapserver's internal
// unstructured logging away from stdout so only slog output is seen.
type NullWriter struct{}

func (NullWriter) Write(b []byte) (int, error) { return len(b), nil }

// Server owns the LDAP listener and its attached domain executor.
type Server struct {
	cfg      *config.Config
	executor *gateway.Executor
	sessions *session.Manager
	srv      *ldapserver.Server
}

// New builds a Server around executor, ready to Start.
func New(cfg *config.Config, executor *gateway.Executor) *Server {
	return &Server{
		cfg:      cfg,
		executor: executor,
		sessions: session.NewManager(),
	}
}

// Start binds the configured address and begins serving in the
// background.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.IP, s.cfg.Server.Port)

	mux := ldapserver.NewRouteMux()
	mux.Bind(s.handleBind)
	mux.Search(s.handleSearch)
	mux.Add(s.handleAdd)
	mux.Modify(s.handleModify)
	mux.Delete(s.handleDelete)
	mux.Compare(s.handleCompare)
	mux.Extended(s.handleExtended)
	mux.NotFound(s.handleNotFound)

	ldapserver.Logger = log.New(NullWriter{}, "", 0)

	s.srv = ldapserver.NewServer()
	s.srv.Handle(mux)

	slog.Info("ldap server starting", "address", addr)
	go func() {
		if err := s.srv.ListenAndServe(addr); err != nil {
			slog.Error("ldap server stopped", "error", err)
		}
	}()

	return nil
}

// Stop shuts the listener down.
func (s *Server) Stop() {
	if s.srv != nil {
		s.srv.Stop()
	}
}

func (s *Server) clientSession(m *ldapserver.Message) *session.Session {
	return s.sessions.Get(m.Client.Numero)
}

func (s *Server) handleBind(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	req := m.GetBindRequest()
	name := string(req.Name())
	password := string(req.AuthenticationSimple())

	if !session.IsAnonymousBindRequest(name, password) {
		slog.Debug("bind rejected: only anonymous bind is supported", "dn", name)
		w.Write(ldapserver.NewBindResponse(ldapserver.LDAPResultInvalidCredentials))
		return
	}

	s.clientSession(m).Bind(session.AnonymousDN)
	slog.Debug("anonymous bind accepted")
	w.Write(ldapserver.NewBindResponse(ldapserver.LDAPResultSuccess))
}

func (s *Server) handleSearch(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	ctx := context.Background()
	searchReq := m.GetSearchRequest()

	req := gateway.Request{
		Base:      string(searchReq.BaseObject()),
		Scope:     dn.Scope(int(searchReq.Scope())),
		Filter:    searchReq.Filter(),
		Attrs:     attrList(searchReq.Attributes()),
		SizeLimit: int(searchReq.SizeLimit()),
	}

	slog.Debug("search request", "base", req.Base, "scope", req.Scope, "attrs", req.Attrs)

	entries, gerr := s.executor.Search(ctx, req)
	if gerr != nil {
		w.Write(ldapserver.NewSearchResultDoneResponse(resultCode(gerr.Code)))
		return
	}

	for _, e := range entries {
		result := ldapserver.NewSearchResultEntry(e.DN)
		for _, a := range e.Attributes {
			vals := make([]message.AttributeValue, len(a.Values))
			for i, v := range a.Values {
				vals[i] = message.AttributeValue(v)
			}
			result.AddAttribute(message.AttributeDescription(a.Name), vals...)
		}
		w.Write(result)
	}

	w.Write(ldapserver.NewSearchResultDoneResponse(ldapserver.LDAPResultSuccess))
}

// handleExtended serves RFC 4532 whoami and rejects everything else.
func (s *Server) handleExtended(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	req := m.GetExtendedRequest()
	if string(req.RequestName()) != whoamiOID {
		w.Write(ldapserver.NewExtendedResponse(ldapserver.LDAPResultProtocolError))
		return
	}

	whoamiDN := s.clientSession(m).DN()
	resp := ldapserver.NewExtendedResponse(ldapserver.LDAPResultSuccess)
	resp.SetResponseName(whoamiOID)
	resp.SetResponseValue("dn:" + whoamiDN)
	w.Write(resp)
}

// handleCompare answers unwillingToPerform: the gateway does not evaluate
// compare operations.
func (s *Server) handleCompare(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	w.Write(ldapserver.NewCompareResponse(ldapserver.LDAPResultUnwillingToPerform))
}

// handleAdd, handleModify and handleDelete all answer unwillingToPerform:
// this gateway is read-only by design.
func (s *Server) handleAdd(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	w.Write(ldapserver.NewAddResponse(ldapserver.LDAPResultUnwillingToPerform))
}

func (s *Server) handleModify(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	w.Write(ldapserver.NewModifyResponse(ldapserver.LDAPResultUnwillingToPerform))
}

func (s *Server) handleDelete(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	w.Write(ldapserver.NewDeleteResponse(ldapserver.LDAPResultUnwillingToPerform))
}

func (s *Server) handleNotFound(w ldapserver.ResponseWriter, m *ldapserver.Message) {
	slog.Debug("unsupported operation", "operation", m.ProtocolOpName())
	w.Write(ldapserver.NewResponse(ldapserver.LDAPResultUnwillingToPerform))
}

func attrList(sel message.AttributeSelection) []string {
	out := make([]string, 0, len(sel))
	for _, a := range sel {
		out = append(out, string(a))
	}
	return out
}

func resultCode(c gatewayerr.Code) int {
	switch c {
	case gatewayerr.NoSuchObject:
		return ldapserver.LDAPResultNoSuchObject
	case gatewayerr.InvalidCredentials:
		return ldapserver.LDAPResultInvalidCredentials
	case gatewayerr.OperationsError:
		return ldapserver.LDAPResultOperationsError
	case gatewayerr.Other:
		return ldapserver.LDAPResultOther
	default:
		return ldapserver.LDAPResultSuccess
	}
}
