package combat

import (
	"fmt"

	"github.com/lixenwraith/narrator/events"
)

// Formatter folds one effect kind into a wave and describes it on its own
type Formatter interface {
	Accumulate(w *WaveData, e events.CombatEffect)
	Describe(e events.CombatEffect) string
}

// formatters is the single allow-list: kinds without an entry are ignored
var formatters = map[events.EffectKind]Formatter{
	events.EffectDamage: damageFormatter{},
	events.EffectHeal:   totalFormatter{label: "heal", field: func(w *WaveData) *int { return &w.TotalHeal }},
	events.EffectShield: totalFormatter{label: "shield", field: func(w *WaveData) *int { return &w.TotalShield }},
	events.EffectBurn:   statusFormatter{label: "burn"},
	events.EffectPoison: statusFormatter{label: "poison"},
	events.EffectSlow:   statusFormatter{label: "slow"},
	events.EffectFreeze: statusFormatter{label: "freeze"},
}

// Lookup returns the formatter for kind, ok is false for kinds outside the allow-list
func Lookup(kind events.EffectKind) (Formatter, bool) {
	f, ok := formatters[kind]
	return f, ok
}

// Allowed reports whether kind is narrated at all
func Allowed(kind events.EffectKind) bool {
	_, ok := formatters[kind]
	return ok
}

// Individual renders "[Enemy ]<item>: <description>[, crit]"
func Individual(e events.CombatEffect) string {
	f, ok := Lookup(e.Effect)
	if !ok {
		return ""
	}

	prefix := e.Item
	if e.Side == events.SideOpponent {
		if prefix == "" {
			prefix = "Enemy"
		} else {
			prefix = "Enemy " + prefix
		}
	}

	text := f.Describe(e)
	if prefix != "" {
		text = prefix + ": " + text
	}
	if e.Crit {
		text += ", crit"
	}
	return text
}

type damageFormatter struct{}

func (damageFormatter) Accumulate(w *WaveData, e events.CombatEffect) {
	w.AddDamage(e.Item, e.Amount)
}

func (damageFormatter) Describe(e events.CombatEffect) string {
	return fmt.Sprintf("%d damage", max(e.Amount, 0))
}

type totalFormatter struct {
	label string
	field func(w *WaveData) *int
}

func (f totalFormatter) Accumulate(w *WaveData, e events.CombatEffect) {
	if e.Amount > 0 {
		*f.field(w) += e.Amount
	}
}

func (f totalFormatter) Describe(e events.CombatEffect) string {
	return fmt.Sprintf("%d %s", max(e.Amount, 0), f.label)
}

type statusFormatter struct {
	label string
}

func (f statusFormatter) Accumulate(w *WaveData, _ events.CombatEffect) {
	w.AddStatus(f.label)
}

func (f statusFormatter) Describe(e events.CombatEffect) string {
	if e.Amount > 0 {
		return fmt.Sprintf("%d %s", e.Amount, f.label)
	}
	return f.label
}
