package theme

import "testing"

func TestList(t *testing.T) {
	got := List()
	want := []string{"black", "dark", "light", "sepia"}
	if len(got) != len(want) {
		t.Fatalf("List() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
		if !Has(want[i]) {
			t.Errorf("Has(%q) = false", want[i])
		}
	}
	if Has("solarized") {
		t.Error("Has(solarized) = true")
	}
}

func TestNext(t *testing.T) {
	tests := map[string]string{
		"black":   "dark",
		"sepia":   "black",
		"unknown": "black",
	}
	for in, want := range tests {
		if got := Next(in); got != want {
			t.Errorf("Next(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSet(t *testing.T) {
	defer func() { Current = Light }()

	if !Set("sepia") || Current.Name != "sepia" {
		t.Errorf("Set(sepia) left Current = %q", Current.Name)
	}
	if Set("neon") {
		t.Error("Set(neon) succeeded")
	}
	if Current.Name != "sepia" {
		t.Error("failed Set changed Current")
	}
}
