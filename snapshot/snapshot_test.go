package snapshot

import (
	"errors"
	"testing"
)

// TestQueryRecoversPanic tests that a panicking source becomes an error
func TestQueryRecoversPanic(t *testing.T) {
	src := SourceFunc(func() (*GameSnapshot, error) {
		panic("host screen torn down")
	})

	snap, err := Query(src)
	if err == nil {
		t.Fatal("Expected error from panicking source")
	}
	if snap != nil {
		t.Error("Expected nil snapshot on panic")
	}
}

// TestQueryRejectsInvalid tests nil, partial and failing sources
func TestQueryRejectsInvalid(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		src  Source
		want error
	}{
		{"nil source", nil, ErrUnavailable},
		{"nil snapshot", SourceFunc(func() (*GameSnapshot, error) { return nil, nil }), ErrUnavailable},
		{"no hero", SourceFunc(func() (*GameSnapshot, error) { return &GameSnapshot{}, nil }), ErrUnavailable},
		{"error", SourceFunc(func() (*GameSnapshot, error) { return nil, boom }), boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Query(tt.src)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

// TestQueryValid tests the happy path
func TestQueryValid(t *testing.T) {
	want := &GameSnapshot{Hero: Stats{Health: 50, MaxHealth: 100}}
	got, err := Query(SourceFunc(func() (*GameSnapshot, error) { return want, nil }))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != want {
		t.Error("Expected the source snapshot to be returned")
	}
}

// TestItemText tests optional fields are skipped
func TestItemText(t *testing.T) {
	tests := []struct {
		item Item
		want string
	}{
		{Item{Name: "Dagger"}, "Dagger"},
		{Item{Name: "Shield", Tier: "Silver", Size: 2, Price: 6}, "Shield, Silver, size 2, 6 gold"},
		{Item{}, "Unknown item"},
	}
	for _, tt := range tests {
		if got := tt.item.Text(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

// TestStatsLines tests that health is always the first line
func TestStatsLines(t *testing.T) {
	lines := Stats{Health: 30, MaxHealth: 100, Gold: 4, Level: 2}.Lines()
	want := []string{"Health 30 of 100", "Level 2", "Gold 4"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %v, got %v", want, lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}
