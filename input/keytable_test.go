package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

// TestDefaultLookup tests default key and rune resolution
func TestDefaultLookup(t *testing.T) {
	kt := DefaultKeyTable()

	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Command
	}{
		{"right arrow", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), CmdNext},
		{"tab", tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone), CmdNextSection},
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), CmdConfirm},
		{"rune l", tcell.NewEventKey(tcell.KeyRune, 'l', tcell.ModNone), CmdNext},
		{"rune H", tcell.NewEventKey(tcell.KeyRune, 'H', tcell.ModNone), CmdHeroStats},
		{"unbound rune", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), CmdNone},
		{"nil", nil, CmdNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kt.Lookup(tt.ev); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestCommandNames tests name round trip for every command
func TestCommandNames(t *testing.T) {
	for c := CmdNone; c < commandCount; c++ {
		got, ok := CommandByName(c.String())
		if !ok || got != c {
			t.Errorf("Expected %v to resolve by name, got %v (%v)", c, got, ok)
		}
	}
	if _, ok := CommandByName("fly"); ok {
		t.Error("Expected unknown name to fail")
	}
	if !CmdQuit.HostLevel() || CmdNext.HostLevel() {
		t.Error("HostLevel classification mismatch")
	}
}

// TestLoadKeyConfigOverride tests sparse overrides and unbinding
func TestLoadKeyConfigOverride(t *testing.T) {
	data := []byte(`
[keys]
"Down" = "next"

[runes]
n = "next"
q = "none"
space = "confirm"
`)
	override, err := LoadKeyConfig(data)
	if err != nil {
		t.Fatalf("LoadKeyConfig: %v", err)
	}

	kt := MergeKeyTable(DefaultKeyTable(), override)

	if got := kt.Lookup(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)); got != CmdNext {
		t.Errorf("Expected Down rebound to next, got %v", got)
	}
	if got := kt.Lookup(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone)); got != CmdNext {
		t.Errorf("Expected n bound to next, got %v", got)
	}
	if got := kt.Lookup(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)); got != CmdConfirm {
		t.Errorf("Expected space bound to confirm, got %v", got)
	}
	if _, ok := kt.Runes['q']; ok {
		t.Error("Expected q unbound")
	}

	// Base must be untouched
	if DefaultKeyTable().Runes['q'] != CmdQuit {
		t.Error("Expected default table unchanged")
	}
}

// TestLoadKeyConfigErrors tests rejection of bad keymaps
func TestLoadKeyConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown action", "[runes]\nx = \"fly\"\n"},
		{"bad rune", "[runes]\nxy = \"next\"\n"},
		{"unknown key", "[keys]\nHyper = \"next\"\n"},
		{"unknown section", "[mouse]\nleft = \"next\"\n"},
		{"syntax", "[runes\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadKeyConfig([]byte(tt.data)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

// TestMergeNilOverride tests merging nothing returns a copy
func TestMergeNilOverride(t *testing.T) {
	base := DefaultKeyTable()
	got := MergeKeyTable(base, nil)
	got.Runes['z'] = CmdRead
	if _, ok := base.Runes['z']; ok {
		t.Error("Expected merge result to be independent of base")
	}
}
