package dn

import "testing"

const testSuffix = "dc=example,dc=com"

func TestResolveRootDSE(t *testing.T) {
	c := Resolve("", ScopeBase, testSuffix)
	if c.Kind != KindRootDSE {
		t.Fatalf("expected KindRootDSE, got %v", c.Kind)
	}
}

func TestResolveSuffixEntryDC(t *testing.T) {
	c := Resolve(testSuffix, ScopeBase, testSuffix)
	if c.Kind != KindSuffixEntry {
		t.Fatalf("expected KindSuffixEntry, got %v", c.Kind)
	}
	if c.RDN.Type != "dc" || c.RDN.Value != "example" {
		t.Fatalf("unexpected RDN: %+v", c.RDN)
	}
}

func TestResolveSuffixEntryOU(t *testing.T) {
	c := Resolve("ou=people,dc=example,dc=com", ScopeBase, "ou=people,dc=example,dc=com")
	if c.Kind != KindSuffixEntry {
		t.Fatalf("expected KindSuffixEntry, got %v", c.Kind)
	}
	if c.RDN.Type != "ou" || c.RDN.Value != "people" {
		t.Fatalf("unexpected RDN: %+v", c.RDN)
	}
}

func TestResolveSuffixEntryRejectsOtherRDNType(t *testing.T) {
	c := Resolve("o=example,dc=com", ScopeBase, "o=example,dc=com")
	if c.Kind != KindError || c.ErrCode != ErrOther {
		t.Fatalf("expected KindError/ErrOther, got %+v", c)
	}
}

func TestResolveAncestorAboveSuffixIsBase(t *testing.T) {
	c := Resolve("dc=com", ScopeBase, testSuffix)
	if c.Kind != KindAncestor {
		t.Fatalf("expected KindAncestor, got %v", c.Kind)
	}
}

func TestResolveLeaf(t *testing.T) {
	c := Resolve("cn=alice,"+testSuffix, ScopeBase, testSuffix)
	if c.Kind != KindLeaf {
		t.Fatalf("expected KindLeaf, got %v", c.Kind)
	}
	if c.CN != "alice" {
		t.Fatalf("expected cn=alice, got %q", c.CN)
	}
}

func TestResolveLeafIsCaseInsensitive(t *testing.T) {
	c := Resolve("CN=Alice,DC=Example,DC=Com", ScopeBase, testSuffix)
	if c.Kind != KindLeaf {
		t.Fatalf("expected KindLeaf, got %v", c.Kind)
	}
	if c.CN != "alice" {
		t.Fatalf("expected lowercased cn alice, got %q", c.CN)
	}
}

func TestResolveLeafRejectsMultiRDN(t *testing.T) {
	c := Resolve("ou=sub,cn=alice,"+testSuffix, ScopeBase, testSuffix)
	if c.Kind != KindError || c.ErrCode != ErrNoSuchObject {
		t.Fatalf("expected KindError/ErrNoSuchObject, got %+v", c)
	}
}

func TestResolveLeafRejectsNonCNType(t *testing.T) {
	c := Resolve("ou=people,"+testSuffix, ScopeBase, testSuffix)
	if c.Kind != KindError || c.ErrCode != ErrNoSuchObject {
		t.Fatalf("expected KindError/ErrNoSuchObject, got %+v", c)
	}
}

func TestResolveUnrelatedBaseIsNoSuchObject(t *testing.T) {
	c := Resolve("dc=other,dc=org", ScopeBase, testSuffix)
	if c.Kind != KindError || c.ErrCode != ErrNoSuchObject {
		t.Fatalf("expected KindError/ErrNoSuchObject, got %+v", c)
	}
}

func TestResolveSubtreeScanAtSuffix(t *testing.T) {
	for _, scope := range []Scope{ScopeOneLevel, ScopeSubtree} {
		c := Resolve(testSuffix, scope, testSuffix)
		if c.Kind != KindSubtreeScan {
			t.Fatalf("scope %v: expected KindSubtreeScan, got %v", scope, c.Kind)
		}
	}
}

func TestResolveNonBaseScopeElsewhereBoundsToOneLevel(t *testing.T) {
	c := Resolve("cn=alice,"+testSuffix, ScopeSubtree, testSuffix)
	if c.Kind != KindAncestor {
		t.Fatalf("expected KindAncestor, got %v", c.Kind)
	}
}
