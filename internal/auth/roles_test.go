package auth

import "testing"

func TestNormalizeRole(t *testing.T) {
	for _, value := range []string{"viewer", "operator", "admin"} {
		role, ok := NormalizeRole(value)
		if !ok {
			t.Fatalf("%q not recognized", value)
		}
		if string(role) != value {
			t.Fatalf("normalized %q to %q", value, role)
		}
	}
	for _, value := range []string{"", "root", "Viewer", "superadmin"} {
		if _, ok := NormalizeRole(value); ok {
			t.Fatalf("%q should not be recognized", value)
		}
	}
}

func TestRoleAtLeastOrdering(t *testing.T) {
	if !RoleAtLeast(RoleAdmin, RoleOperator) || !RoleAtLeast(RoleOperator, RoleViewer) {
		t.Fatal("higher roles must satisfy lower requirements")
	}
	if RoleAtLeast(RoleViewer, RoleOperator) {
		t.Fatal("viewer must not satisfy operator")
	}
	for _, role := range []Role{RoleViewer, RoleOperator, RoleAdmin} {
		if !RoleAtLeast(role, role) {
			t.Fatalf("%q must satisfy itself", role)
		}
	}
	if RoleAtLeast("", RoleViewer) {
		t.Fatal("unknown role must rank below viewer")
	}
}
