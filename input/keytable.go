package input

import (
	"maps"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// KeyTable maps tcell keys to commands
type KeyTable struct {
	// Special keys (arrows, Tab, Enter, Ctrl+*)
	Keys map[tcell.Key]Command

	// Printable runes, looked up when the event key is tcell.KeyRune
	Runes map[rune]Command
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		Keys: map[tcell.Key]Command{
			tcell.KeyRight:   CmdNext,
			tcell.KeyLeft:    CmdPrev,
			tcell.KeyUp:      CmdUp,
			tcell.KeyDown:    CmdDown,
			tcell.KeyTab:     CmdNextSection,
			tcell.KeyBacktab: CmdPrevSection,
			tcell.KeyEnter:   CmdConfirm,
			tcell.KeyEscape:  CmdBack,
			tcell.KeyCtrlQ:   CmdQuit,
			tcell.KeyCtrlC:   CmdQuit,
		},
		Runes: map[rune]Command{
			'l': CmdNext,
			'h': CmdPrev,
			'k': CmdUp,
			'j': CmdDown,
			'd': CmdDetail,
			'r': CmdRead,
			's': CmdSummary,
			'H': CmdHeroStats,
			'E': CmdEnemyStats,
			'i': CmdInspectEnemy,
			'c': CmdToggleCombatNarration,
			'?': CmdStatus,
			'q': CmdQuit,
		},
	}
}

// Clone returns a deep copy
func (kt *KeyTable) Clone() *KeyTable {
	return &KeyTable{
		Keys:  maps.Clone(kt.Keys),
		Runes: maps.Clone(kt.Runes),
	}
}

// Lookup resolves a key event, CmdNone when unbound
func (kt *KeyTable) Lookup(ev *tcell.EventKey) Command {
	if ev == nil {
		return CmdNone
	}
	if ev.Key() == tcell.KeyRune {
		return kt.Runes[ev.Rune()]
	}
	return kt.Keys[ev.Key()]
}

// keyByName indexes tcell's own key names, lowercased ("up", "enter", "ctrl-q")
var keyByName = func() map[string]tcell.Key {
	m := make(map[string]tcell.Key, len(tcell.KeyNames))
	for k, name := range tcell.KeyNames {
		m[strings.ToLower(name)] = k
	}
	return m
}()

// KeyByName resolves a tcell key name, case-insensitive
func KeyByName(name string) (tcell.Key, bool) {
	k, ok := keyByName[strings.ToLower(strings.TrimSpace(name))]
	return k, ok
}
