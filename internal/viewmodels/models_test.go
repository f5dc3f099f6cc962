package viewmodels_test

import (
	"testing"

	vm "winsbygroup.com/prodreg/internal/viewmodels"
)

func TestRegistrationText(t *testing.T) {
	tests := []struct {
		name        string
		reg         vm.Registration
		wantUser    string
		wantProduct string
	}{
		{"unclaimed", vm.Registration{ProductID: 7, ProductName: "Kettle"}, "Unclaimed", "Kettle"},
		{"claimed", vm.Registration{UserID: 99, UserLogin: "jdoe", ProductID: 7}, "jdoe", "#7"},
		{"claimed unknown account", vm.Registration{UserID: 99, ProductID: 7, ProductName: "Kettle"}, "Unknown user", "Kettle"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.reg.UserText(); got != tc.wantUser {
				t.Errorf("UserText() = %q, want %q", got, tc.wantUser)
			}
			if got := tc.reg.ProductText(); got != tc.wantProduct {
				t.Errorf("ProductText() = %q, want %q", got, tc.wantProduct)
			}
		})
	}
}

func TestDateText(t *testing.T) {
	if got := vm.DateText("2025-03-01 09:05:00"); got != "Mar 1, 2025 09:05 UTC" {
		t.Errorf("unexpected %q", got)
	}
	if got := vm.DateText("yesterday"); got != "yesterday" {
		t.Errorf("expected raw value, got %q", got)
	}
}
