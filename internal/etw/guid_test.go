package etw

import "testing"

func TestProviderIDFromName(t *testing.T) {
	a := ProviderIDFromName("Contoso.App")

	if a != ProviderIDFromName("Contoso.App") {
		t.Error("provider ID is not deterministic")
	}
	if a != ProviderIDFromName("contoso.app") {
		t.Error("provider ID must be case-insensitive")
	}
	if a == ProviderIDFromName("Contoso.Other") {
		t.Error("distinct names hashed to the same provider ID")
	}
	if v := a.Data3 >> 12; v != 5 {
		t.Errorf("version nibble = %d, wanted 5", v)
	}
}
