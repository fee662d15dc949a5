package access

import (
	"testing"

	"github.com/rchavali/ClearanceAPI/internal/domain/docModel"
)

func TestResolve_KnownRoles(t *testing.T) {
	tests := []struct {
		role     Role
		expected []docModel.Level
	}{
		{RoleGuest, []docModel.Level{docModel.LevelLow}},
		{RoleEmployee, []docModel.Level{docModel.LevelLow, docModel.LevelMid}},
		{RoleManager, []docModel.Level{docModel.LevelLow, docModel.LevelMid, docModel.LevelHigh}},
		{RoleCEO, []docModel.Level{docModel.LevelLow, docModel.LevelMid, docModel.LevelHigh, docModel.LevelVeryHigh}},
		{RoleVicePresident, []docModel.Level{docModel.LevelLow, docModel.LevelMid, docModel.LevelHigh, docModel.LevelVeryHigh}},
	}

	for _, tt := range tests {
		got := Resolve(tt.role)
		if len(got) != len(tt.expected) {
			t.Fatalf("Resolve(%s) returned %d levels, want %d", tt.role, len(got), len(tt.expected))
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("Resolve(%s)[%d] = %s, want %s", tt.role, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestResolve_FailClosed(t *testing.T) {
	for _, role := range []Role{"", "INTERN", "ADMIN", "employee"} {
		if got := Resolve(role); len(got) != 0 {
			t.Errorf("Resolve(%q) = %v, want empty set", role, got)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	first := Resolve(RoleManager)
	for i := 0; i < 100; i++ {
		again := Resolve(RoleManager)
		if len(again) != len(first) {
			t.Fatal("Resolve is not deterministic")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatal("Resolve order changed between calls")
			}
		}
	}
}

func TestAllowed(t *testing.T) {
	if !Allowed(RoleEmployee, docModel.LevelMid) {
		t.Error("EMPLOYEE should read MID")
	}
	if Allowed(RoleEmployee, docModel.LevelHigh) {
		t.Error("EMPLOYEE must not read HIGH")
	}
	if Allowed("UNKNOWN", docModel.LevelLow) {
		t.Error("unknown role must not read anything")
	}
}
