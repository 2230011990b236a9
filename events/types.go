package events

import "fmt"

// Kind discriminates domain events delivered by the host
type Kind uint8

const (
	KindUnknown Kind = iota

	// KindStateTransition signals the host moved between game states (shop, encounter, choice)
	// Consumer: ingestion refresh + debounced summary
	KindStateTransition

	// KindCombatEffect signals one simulated combat effect
	// Consumer: combat wave aggregator
	KindCombatEffect

	// KindHealthChanged signals a health/shield change for one side
	// Consumer: health threshold watcher
	KindHealthChanged

	// KindContentRevealed signals new items became visible (shop restock, loot)
	// Consumer: ingestion refresh + debounced summary
	KindContentRevealed

	// KindSessionModeChanged signals entering/leaving combat or replay
	// Consumer: navigation state machine, wave flush, watcher reset
	KindSessionModeChanged

	// KindUserActionCompleted signals a purchase, sale or disposal finished
	// Consumer: ingestion refresh + debounced summary
	KindUserActionCompleted
)

var kindNames = [...]string{
	KindUnknown:             "unknown",
	KindStateTransition:     "state_transition",
	KindCombatEffect:        "combat_effect",
	KindHealthChanged:       "health_changed",
	KindContentRevealed:     "content_revealed",
	KindSessionModeChanged:  "session_mode_changed",
	KindUserActionCompleted: "user_action_completed",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Event is the sum type of everything the host can publish
// Only types in this package implement it
type Event interface {
	Kind() Kind
	sealed()
}

// Side identifies which combatant an event refers to
type Side uint8

const (
	SideLocal Side = iota
	SideOpponent
)

func (s Side) String() string {
	if s == SideOpponent {
		return "opponent"
	}
	return "local"
}

// EffectKind identifies a combat effect type as reported by the simulation
type EffectKind uint8

const (
	EffectUnknown EffectKind = iota
	EffectDamage
	EffectHeal
	EffectShield
	EffectBurn
	EffectPoison
	EffectSlow
	EffectFreeze
	EffectHaste
	EffectCharge
	EffectReload
	EffectRegen
	EffectDestroy
)

var effectNames = [...]string{
	EffectUnknown: "unknown",
	EffectDamage:  "damage",
	EffectHeal:    "heal",
	EffectShield:  "shield",
	EffectBurn:    "burn",
	EffectPoison:  "poison",
	EffectSlow:    "slow",
	EffectFreeze:  "freeze",
	EffectHaste:   "haste",
	EffectCharge:  "charge",
	EffectReload:  "reload",
	EffectRegen:   "regen",
	EffectDestroy: "destroy",
}

func (k EffectKind) String() string {
	if int(k) < len(effectNames) {
		return effectNames[k]
	}
	return fmt.Sprintf("effect(%d)", k)
}

// SessionMode is the payload of a SessionModeChanged event
type SessionMode uint8

const (
	ModeEnterCombat SessionMode = iota + 1
	ModeExitCombat
	ModeEnterReplay
	ModeExitReplay
)

func (m SessionMode) String() string {
	switch m {
	case ModeEnterCombat:
		return "enter_combat"
	case ModeExitCombat:
		return "exit_combat"
	case ModeEnterReplay:
		return "enter_replay"
	case ModeExitReplay:
		return "exit_replay"
	}
	return fmt.Sprintf("mode(%d)", m)
}

// UserAction identifies a completed user-driven board change
type UserAction uint8

const (
	ActionUnknown UserAction = iota
	ActionPurchase
	ActionSale
	ActionDisposal
)

func (a UserAction) String() string {
	switch a {
	case ActionPurchase:
		return "purchase"
	case ActionSale:
		return "sale"
	case ActionDisposal:
		return "disposal"
	}
	return "unknown"
}

// StateTransition reports a host game-state change
type StateTransition struct {
	From string
	To   string
}

// CombatEffect reports one combat effect produced by Side
type CombatEffect struct {
	Side   Side
	Effect EffectKind
	Item   string // Name of the item that produced the effect, may be empty
	Amount int
	Crit   bool
}

// HealthChanged reports the current health of one side
type HealthChanged struct {
	Side      Side
	Health    int
	MaxHealth int
	Shield    int
}

// ContentRevealed reports newly visible content in a section
type ContentRevealed struct {
	Section string
	Count   int
}

// SessionModeChanged reports entering or leaving combat/replay
type SessionModeChanged struct {
	Mode SessionMode
}

// UserActionCompleted reports a finished purchase, sale or disposal
type UserActionCompleted struct {
	Action UserAction
	Item   string
}

func (StateTransition) Kind() Kind     { return KindStateTransition }
func (CombatEffect) Kind() Kind        { return KindCombatEffect }
func (HealthChanged) Kind() Kind       { return KindHealthChanged }
func (ContentRevealed) Kind() Kind     { return KindContentRevealed }
func (SessionModeChanged) Kind() Kind  { return KindSessionModeChanged }
func (UserActionCompleted) Kind() Kind { return KindUserActionCompleted }

func (StateTransition) sealed()     {}
func (CombatEffect) sealed()        {}
func (HealthChanged) sealed()       {}
func (ContentRevealed) sealed()     {}
func (SessionModeChanged) sealed()  {}
func (UserActionCompleted) sealed() {}
