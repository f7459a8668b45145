package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionStartsUnbound(t *testing.T) {
	s := New()
	assert.Equal(t, "", s.DN())
}

func TestBindTransitionsToBound(t *testing.T) {
	s := New()
	s.Bind(AnonymousDN)
	assert.Equal(t, AnonymousDN, s.DN())
}

func TestUnbindClearsDN(t *testing.T) {
	s := New()
	s.Bind(AnonymousDN)
	s.Unbind()
	assert.Equal(t, "", s.DN())
}

func TestIsAnonymousBindRequest(t *testing.T) {
	assert.True(t, IsAnonymousBindRequest("", ""))
	assert.False(t, IsAnonymousBindRequest("cn=admin,dc=example,dc=com", ""))
	assert.False(t, IsAnonymousBindRequest("", "secret"))
}

func TestManagerGetCreatesAndReuses(t *testing.T) {
	m := NewManager()
	a := m.Get(1)
	b := m.Get(1)
	assert.Same(t, a, b)
}

func TestManagerDropRemovesSession(t *testing.T) {
	m := NewManager()
	a := m.Get(1)
	a.Bind(AnonymousDN)
	m.Drop(1)
	b := m.Get(1)
	assert.NotSame(t, a, b)
	assert.Equal(t, "", b.DN())
}
