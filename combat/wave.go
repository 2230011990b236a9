package combat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/narrator/events"
)

// WaveData is the rolling aggregate of one actor's effects
// Totals never go negative, HadCrit is only cleared by Reset
type WaveData struct {
	TotalDamage  int
	TotalHeal    int
	TotalShield  int
	DamageByItem map[string]int
	Statuses     []string // Ordered set, first application wins the position
	HadCrit      bool
	Effects      int

	itemOrder []string
}

// Active reports whether the wave has anything to summarize
func (w *WaveData) Active() bool {
	return w.TotalDamage > 0 || w.TotalHeal > 0 || w.TotalShield > 0 || len(w.Statuses) > 0
}

// AddDamage accumulates damage and its per-item contribution
func (w *WaveData) AddDamage(item string, amount int) {
	if amount <= 0 {
		return
	}
	w.TotalDamage += amount
	if item == "" {
		return
	}
	if w.DamageByItem == nil {
		w.DamageByItem = make(map[string]int)
	}
	if _, seen := w.DamageByItem[item]; !seen {
		w.itemOrder = append(w.itemOrder, item)
	}
	w.DamageByItem[item] += amount
}

// AddStatus inserts label once
func (w *WaveData) AddStatus(label string) {
	for _, s := range w.Statuses {
		if s == label {
			return
		}
	}
	w.Statuses = append(w.Statuses, label)
}

// TopItem returns the item with the most damage, ties go to the earliest seen
func (w *WaveData) TopItem() string {
	top, best := "", 0
	for _, item := range w.itemOrder {
		if dmg := w.DamageByItem[item]; dmg > best {
			top, best = item, dmg
		}
	}
	return top
}

// Reset empties the wave
func (w *WaveData) Reset() {
	*w = WaveData{}
}

// Summary renders "<actor>: <dmg> damage (<top>), <heal> heal, <shield> shield, <statuses>[, critical]"
// Zero totals are omitted
func (w *WaveData) Summary(side events.Side) string {
	parts := make([]string, 0, 4+len(w.Statuses))

	if w.TotalDamage > 0 {
		if top := w.TopItem(); top != "" {
			parts = append(parts, fmt.Sprintf("%d damage (%s)", w.TotalDamage, top))
		} else {
			parts = append(parts, fmt.Sprintf("%d damage", w.TotalDamage))
		}
	}
	if w.TotalHeal > 0 {
		parts = append(parts, fmt.Sprintf("%d heal", w.TotalHeal))
	}
	if w.TotalShield > 0 {
		parts = append(parts, fmt.Sprintf("%d shield", w.TotalShield))
	}
	parts = append(parts, w.Statuses...)
	if w.HadCrit {
		parts = append(parts, "critical")
	}

	return actorName(side) + ": " + strings.Join(parts, ", ")
}

func actorName(side events.Side) string {
	if side == events.SideOpponent {
		return "Enemy"
	}
	return "You"
}
