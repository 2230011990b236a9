package navigation

import "github.com/lixenwraith/narrator/events"

// Mode is the coarse navigation context, exactly one is active
type Mode uint8

const (
	ModeFree Mode = iota
	ModeCombat
	ModeReplay
	ModeEnemyInspect
)

var modeNames = [...]string{
	ModeFree:         "free",
	ModeCombat:       "combat",
	ModeReplay:       "replay",
	ModeEnemyInspect: "enemy_inspect",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// Section is a free-navigation area, each with its own cursor
type Section uint8

const (
	SectionSelection Section = iota
	SectionBoard
	SectionStash
	SectionSkills
	SectionHero

	sectionCount
)

var sectionNames = [sectionCount]string{
	SectionSelection: "Selection",
	SectionBoard:     "Board",
	SectionStash:     "Stash",
	SectionSkills:    "Skills",
	SectionHero:      "Hero",
}

func (s Section) String() string {
	if s < sectionCount {
		return sectionNames[s]
	}
	return "Unknown"
}

// fallbackOrder is consulted when the active section empties, hero is terminal
var fallbackOrder = []Section{SectionSelection, SectionBoard, SectionSkills, SectionHero}

// HeroView is the hero section's subsection
type HeroView uint8

const (
	HeroStats HeroView = iota
	HeroSkills

	heroViewCount
)

func (v HeroView) String() string {
	if v == HeroSkills {
		return "Skills"
	}
	return "Stats"
}

// Action is a host-side effect requested by user input
type Action uint8

const (
	ActionNone        Action = iota
	ActionConfirmItem        // Buy, select or use the focused item
	ActionContinue           // Leave the replay
	ActionReplay             // Replay the encounter again
	ActionRecap              // Show the encounter recap
)

func (a Action) String() string {
	switch a {
	case ActionConfirmItem:
		return "confirm_item"
	case ActionContinue:
		return "continue"
	case ActionReplay:
		return "replay"
	case ActionRecap:
		return "recap"
	}
	return "none"
}

// replayMenu is the wrapping action menu shown after an encounter
var replayMenu = []struct {
	label  string
	action Action
}{
	{"Continue", ActionContinue},
	{"Replay again", ActionReplay},
	{"Show recap", ActionRecap},
}

// modeKey is a transition trigger: a session mode event seen from a base mode
type modeKey struct {
	from Mode
	on   events.SessionMode
}

// modeTransitions lists every legal externally-driven mode change
// The enemy overlay is transparent: lookups use the mode beneath it
var modeTransitions = map[modeKey]Mode{
	{ModeFree, events.ModeEnterCombat}:   ModeCombat,
	{ModeReplay, events.ModeEnterCombat}: ModeCombat,
	{ModeCombat, events.ModeExitCombat}:  ModeFree,
	{ModeFree, events.ModeEnterReplay}:   ModeReplay,
	{ModeCombat, events.ModeEnterReplay}: ModeReplay,
	{ModeReplay, events.ModeExitReplay}:  ModeFree,
}

// onEnter runs after a transition into the keyed mode
var onEnter = map[Mode]func(c *Context){
	ModeFree: func(c *Context) {
		c.normalize()
	},
	// Combat silently forces the hero stats view
	ModeCombat: func(c *Context) {
		c.section = SectionHero
		c.heroView = HeroStats
		c.heroCursors[HeroStats].Index = 0
	},
	ModeReplay: func(c *Context) {
		c.replay.Index = 0
	},
}

// Result is the outcome of one navigation command
type Result struct {
	Text      string // What to speak, empty for nothing
	Interrupt bool
	Ignored   bool // Command not valid in the current mode
	Action    Action
	ItemID    string // Set with ActionConfirmItem
	Section   Section
}
