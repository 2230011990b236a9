// Package input maps terminal keys to navigation commands
package input

import "strings"

// Command is a semantic navigation request, independent of the key that produced it
type Command uint8

const (
	CmdNone Command = iota

	// Item lists (non-wrapping)
	CmdNext // Right, l
	CmdPrev // Left, h

	// Sub-reader / hero subsection
	CmdUp   // Up, k
	CmdDown // Down, j

	// Section cycling (wrapping)
	CmdNextSection // Tab
	CmdPrevSection // Shift+Tab

	CmdConfirm // Enter
	CmdBack    // Esc
	CmdDetail  // d - toggle detail-line reader

	// Readers
	CmdRead         // r - re-read focus
	CmdSummary      // s - state summary
	CmdHeroStats    // H
	CmdEnemyStats   // E
	CmdInspectEnemy // i

	// Host-level, never reach the navigation context
	CmdToggleCombatNarration // c
	CmdStatus                // ? - read counters
	CmdQuit                  // q, Ctrl+Q, Ctrl+C

	commandCount
)

var commandNames = [commandCount]string{
	CmdNone:                  "none",
	CmdNext:                  "next",
	CmdPrev:                  "prev",
	CmdUp:                    "up",
	CmdDown:                  "down",
	CmdNextSection:           "next_section",
	CmdPrevSection:           "prev_section",
	CmdConfirm:               "confirm",
	CmdBack:                  "back",
	CmdDetail:                "detail",
	CmdRead:                  "read",
	CmdSummary:               "summary",
	CmdHeroStats:             "hero_stats",
	CmdEnemyStats:            "enemy_stats",
	CmdInspectEnemy:          "inspect_enemy",
	CmdToggleCombatNarration: "toggle_combat_narration",
	CmdStatus:                "status",
	CmdQuit:                  "quit",
}

var commandsByName map[string]Command

func init() {
	commandsByName = make(map[string]Command, commandCount)
	for c, name := range commandNames {
		commandsByName[name] = Command(c)
	}
}

func (c Command) String() string {
	if c < commandCount {
		return commandNames[c]
	}
	return "unknown"
}

// CommandByName resolves a keymap action name, case-insensitive
func CommandByName(name string) (Command, bool) {
	c, ok := commandsByName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// HostLevel reports commands the host handles itself
func (c Command) HostLevel() bool {
	return c == CmdToggleCombatNarration || c == CmdStatus || c == CmdQuit
}
