// Package snapshot models the pull-based view of game state the narration
// engine reads on every refresh
package snapshot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned by a Source when no game state can be read yet
var ErrUnavailable = errors.New("snapshot unavailable")

// Source is implemented by the host adapter
// QuerySnapshot may return nil with a nil error when the host has nothing to show
type Source interface {
	QuerySnapshot() (*GameSnapshot, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func() (*GameSnapshot, error)

func (f SourceFunc) QuerySnapshot() (*GameSnapshot, error) { return f() }

// Item is one narratable entity: a shop offer, a board card, a stash entry or a skill
type Item struct {
	ID     string
	Name   string
	Tier   string
	Size   int
	Price  int
	Detail []string // Additional lines read by the detail sub-reader
}

// Text returns the one-line description of the item
func (it Item) Text() string {
	var b strings.Builder
	name := it.Name
	if name == "" {
		name = "Unknown item"
	}
	b.WriteString(name)
	if it.Tier != "" {
		b.WriteString(", ")
		b.WriteString(it.Tier)
	}
	if it.Size > 0 {
		fmt.Fprintf(&b, ", size %d", it.Size)
	}
	if it.Price > 0 {
		fmt.Fprintf(&b, ", %d gold", it.Price)
	}
	return b.String()
}

// Stats is the fixed stat block of one actor
type Stats struct {
	Name      string
	Health    int
	MaxHealth int
	Shield    int
	Gold      int
	Level     int
	Income    int
	Prestige  int
}

// Lines returns the stat block as individually readable lines
// Zero-valued economy fields are omitted; health is always present
func (s Stats) Lines() []string {
	lines := []string{fmt.Sprintf("Health %d of %d", s.Health, s.MaxHealth)}
	if s.Shield > 0 {
		lines = append(lines, fmt.Sprintf("Shield %d", s.Shield))
	}
	if s.Level > 0 {
		lines = append(lines, fmt.Sprintf("Level %d", s.Level))
	}
	if s.Gold > 0 {
		lines = append(lines, fmt.Sprintf("Gold %d", s.Gold))
	}
	if s.Income > 0 {
		lines = append(lines, fmt.Sprintf("Income %d", s.Income))
	}
	if s.Prestige > 0 {
		lines = append(lines, fmt.Sprintf("Prestige %d", s.Prestige))
	}
	return lines
}

// Opponent is the opposing actor during an encounter
type Opponent struct {
	Stats Stats
	Items []Item
}

// GameSnapshot is a point-in-time copy of everything narratable
// Collections may be empty or nil; partial snapshots are valid
type GameSnapshot struct {
	State     string // Host game state name (shop, encounter, choice)
	Selection []Item
	Board     []Item
	Stash     []Item
	Skills    []Item // Skill offers available to pick
	Hero      Stats
	HeroSkill []Item // Skills the hero already owns
	Opponent  *Opponent
}

// Valid reports whether the snapshot is usable for a refresh
// A snapshot without hero health data is treated as not yet loaded
func (g *GameSnapshot) Valid() bool {
	return g != nil && g.Hero.MaxHealth > 0
}

// Query calls src and converts panics, errors and invalid snapshots into an error
// The returned snapshot is non-nil and valid whenever err is nil
func Query(src Source) (snap *GameSnapshot, err error) {
	if src == nil {
		return nil, ErrUnavailable
	}

	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("snapshot query panicked: %v", r)
		}
	}()

	snap, err = src.QuerySnapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	if !snap.Valid() {
		return nil, ErrUnavailable
	}
	return snap, nil
}
