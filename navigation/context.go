// Package navigation tracks what the user is focused on and what should be
// read for it
//
// Gameplay item lists (sections, enemy items, detail lines) stop at their
// edges and re-read the current entry. Generic menus (section cycling, the
// hero subsection toggle, the replay menu) wrap.
package navigation

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/narrator/events"
	"github.com/lixenwraith/narrator/snapshot"
)

// Context is the navigation state machine for one screen
// Not safe for concurrent use, owned by the session executor
type Context struct {
	mode     Mode
	returnTo Mode // Mode restored when the enemy overlay closes

	section     Section
	heroView    HeroView
	cursors     [sectionCount]Cursor
	heroCursors [heroViewCount]Cursor
	enemy       Cursor
	replay      Cursor

	detail     bool
	detailLine Cursor

	snap *snapshot.GameSnapshot
}

// NewContext creates a free-navigation context focused on the selection
func NewContext() *Context {
	return &Context{
		mode:    ModeFree,
		section: SectionSelection,
		replay:  Cursor{Wrap: true},
	}
}

// Refresh replaces the cached snapshot and clamps every index
// Invalid snapshots are ignored and the previous cache is kept
func (c *Context) Refresh(snap *snapshot.GameSnapshot) bool {
	if !snap.Valid() {
		return false
	}
	c.snap = snap
	c.normalize()
	return true
}

// OnSessionMode applies an external mode change
// Returns false when the event does not apply to the current mode
func (c *Context) OnSessionMode(m events.SessionMode) bool {
	base := c.baseMode()
	target, ok := modeTransitions[modeKey{from: base, on: m}]
	if !ok {
		return false
	}

	c.detail = false
	c.mode = target
	c.returnTo = target
	if enter := onEnter[target]; enter != nil {
		enter(c)
	}
	return true
}

// Mode returns the active mode
func (c *Context) Mode() Mode { return c.mode }

// BaseMode returns the mode beneath the enemy overlay
func (c *Context) BaseMode() Mode { return c.baseMode() }

// Section returns the focused free-navigation section
func (c *Context) Section() Section { return c.section }

// HeroView returns the hero subsection
func (c *Context) HeroView() HeroView { return c.heroView }

// Index returns the cursor of section s
func (c *Context) Index(s Section) int {
	if s == SectionHero {
		return c.heroCursors[c.heroView].Index
	}
	if s < sectionCount {
		return c.cursors[s].Index
	}
	return 0
}

// DetailActive reports whether the detail-line reader is open
func (c *Context) DetailActive() bool { return c.detail }

// Snapshot returns the cached snapshot, nil before the first valid refresh
func (c *Context) Snapshot() *snapshot.GameSnapshot { return c.snap }

// CurrentText is what re-reading the focus says
func (c *Context) CurrentText() string {
	if c.snap == nil {
		return "No data"
	}
	switch c.mode {
	case ModeCombat:
		return c.HeroStatsText()
	case ModeReplay:
		return replayMenu[c.replay.Index].label
	case ModeEnemyInspect:
		return c.enemyEntry()
	}
	if c.detail {
		return c.detailText()
	}
	return c.entryText(c.section)
}

// Summary is the state announcement composed for the coordinator
// Empty before the first valid refresh
func (c *Context) Summary() string {
	if c.snap == nil {
		return ""
	}
	switch c.mode {
	case ModeCombat:
		return "Combat. " + c.HeroStatsText()
	case ModeReplay:
		return "Replay. " + replayMenu[c.replay.Index].label
	case ModeEnemyInspect:
		return c.enemyEntry()
	}

	if c.section == SectionHero {
		return "Hero. " + c.entryText(SectionHero)
	}
	n := c.count(c.section)
	return fmt.Sprintf("%s, %s. %s", c.section, plural(n, "item"), c.entryText(c.section))
}

// HeroStatsText reads the hero stat block on one line
func (c *Context) HeroStatsText() string {
	if c.snap == nil {
		return "No data"
	}
	return strings.Join(c.snap.Hero.Lines(), ", ")
}

// EnemyStatsText reads the opponent stat block on one line
func (c *Context) EnemyStatsText() string {
	if c.snap == nil || c.snap.Opponent == nil || c.snap.Opponent.Stats.MaxHealth <= 0 {
		return "No enemy"
	}
	st := c.snap.Opponent.Stats
	name := "Enemy"
	if st.Name != "" {
		name = "Enemy " + st.Name
	}
	return name + ": " + strings.Join(st.Lines(), ", ")
}

func (c *Context) baseMode() Mode {
	if c.mode == ModeEnemyInspect {
		return c.returnTo
	}
	return c.mode
}

// normalize clamps indices and applies the empty-section fallback
func (c *Context) normalize() {
	for s := SectionSelection; s < SectionHero; s++ {
		c.cursors[s].Clamp(c.count(s))
	}
	for v := HeroStats; v < heroViewCount; v++ {
		c.heroCursors[v].Clamp(c.heroCount(v))
	}
	c.replay.Clamp(len(replayMenu))

	if c.baseMode() == ModeCombat {
		c.section = SectionHero
	}
	if c.count(c.section) == 0 {
		c.detail = false
		for _, s := range fallbackOrder {
			if c.count(s) > 0 {
				c.section = s
				break
			}
		}
	}

	if c.mode == ModeEnemyInspect {
		n := len(c.enemyItems())
		if n == 0 {
			c.mode = c.returnTo
		} else {
			c.enemy.Clamp(n)
		}
	}

	if c.detail {
		lines := c.detailLines()
		if len(lines) == 0 {
			c.detail = false
		} else {
			c.detailLine.Clamp(len(lines))
		}
	}
}

func (c *Context) items(s Section) []snapshot.Item {
	if c.snap == nil {
		return nil
	}
	switch s {
	case SectionSelection:
		return c.snap.Selection
	case SectionBoard:
		return c.snap.Board
	case SectionStash:
		return c.snap.Stash
	case SectionSkills:
		return c.snap.Skills
	}
	return nil
}

// count is the number of entries in s, hero is never empty
func (c *Context) count(s Section) int {
	if s == SectionHero {
		return max(c.heroCount(c.heroView), 1)
	}
	return len(c.items(s))
}

func (c *Context) heroCount(v HeroView) int {
	if c.snap == nil {
		return 0
	}
	if v == HeroSkills {
		return len(c.snap.HeroSkill)
	}
	return len(c.snap.Hero.Lines())
}

func (c *Context) cursor(s Section) *Cursor {
	if s == SectionHero {
		return &c.heroCursors[c.heroView]
	}
	return &c.cursors[s]
}

// focusedItem returns the item under the cursor, hero stat lines have none
func (c *Context) focusedItem() (snapshot.Item, bool) {
	if c.section == SectionHero {
		if c.heroView != HeroSkills || c.snap == nil {
			return snapshot.Item{}, false
		}
		i := c.heroCursors[HeroSkills].Index
		if i < len(c.snap.HeroSkill) {
			return c.snap.HeroSkill[i], true
		}
		return snapshot.Item{}, false
	}
	list := c.items(c.section)
	i := c.cursors[c.section].Index
	if i < len(list) {
		return list[i], true
	}
	return snapshot.Item{}, false
}

func (c *Context) entryText(s Section) string {
	if s == SectionHero {
		return c.heroEntry()
	}
	list := c.items(s)
	if len(list) == 0 {
		return "Empty"
	}
	i := c.cursors[s].Index
	return fmt.Sprintf("%s, %d of %d", list[i].Text(), i+1, len(list))
}

func (c *Context) heroEntry() string {
	if c.snap == nil {
		return "No data"
	}
	i := c.heroCursors[c.heroView].Index
	if c.heroView == HeroSkills {
		skills := c.snap.HeroSkill
		if len(skills) == 0 {
			return "No skills"
		}
		return fmt.Sprintf("%s, %d of %d", skills[i].Text(), i+1, len(skills))
	}
	lines := c.snap.Hero.Lines()
	return fmt.Sprintf("%s, %d of %d", lines[i], i+1, len(lines))
}

func (c *Context) detailLines() []string {
	it, ok := c.focusedItem()
	if !ok {
		return nil
	}
	return it.Detail
}

func (c *Context) detailText() string {
	lines := c.detailLines()
	if len(lines) == 0 {
		return "No details"
	}
	return lines[c.detailLine.Index]
}

func (c *Context) enemyItems() []snapshot.Item {
	if c.snap == nil || c.snap.Opponent == nil {
		return nil
	}
	return c.snap.Opponent.Items
}

func (c *Context) enemyEntry() string {
	list := c.enemyItems()
	if len(list) == 0 {
		return "No enemy items"
	}
	i := c.enemy.Index
	return fmt.Sprintf("Enemy %s, %d of %d", list[i].Text(), i+1, len(list))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
