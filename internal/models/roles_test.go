package models

import "testing"

func TestRoleSetHas(t *testing.T) {
	roles := RoleSet{RoleClient, RoleUser}
	if !roles.Has(RoleClient) {
		t.Fatal("expected ROLE_CLIENT to be present")
	}
	if roles.Has(RoleAdmin) {
		t.Fatal("did not expect ROLE_ADMIN")
	}
}

func TestRoleSetIntersects(t *testing.T) {
	client := RoleSet{RoleClient}
	if !client.Intersects(RoleSet{RoleUser, RoleClient}) {
		t.Fatal("expected overlap with {ROLE_USER, ROLE_CLIENT}")
	}
	if client.Intersects(RoleSet{RoleAdmin}) {
		t.Fatal("did not expect overlap with {ROLE_ADMIN}")
	}
	if client.Intersects(nil) {
		t.Fatal("empty allow-list never intersects")
	}
}

func TestRoleSetIsAdmin(t *testing.T) {
	if (RoleSet{RoleClient}).IsAdmin() {
		t.Fatal("client set must not be admin")
	}
	if !(RoleSet{RoleClient, RoleAdmin}).IsAdmin() {
		t.Fatal("set containing ROLE_ADMIN must be admin")
	}
}
