package navigation

import (
	"strings"

	"github.com/lixenwraith/narrator/input"
)

// Overlay close announcement
const closedText = "Enemy items closed"

// HandleInput dispatches cmd to the active mode
// User input never changes Combat or Replay membership
func (c *Context) HandleInput(cmd input.Command) Result {
	if cmd == input.CmdNone || cmd.HostLevel() {
		return ignored()
	}

	switch c.mode {
	case ModeCombat:
		return c.handleCombat(cmd)
	case ModeEnemyInspect:
		return c.handleInspect(cmd)
	case ModeReplay:
		return c.handleReplay(cmd)
	}
	return c.handleFree(cmd)
}

func (c *Context) handleFree(cmd input.Command) Result {
	switch cmd {
	case input.CmdNext:
		return c.step(1)
	case input.CmdPrev:
		return c.step(-1)
	case input.CmdUp:
		return c.vertical(-1)
	case input.CmdDown:
		return c.vertical(1)
	case input.CmdNextSection:
		return c.cycleSection(1)
	case input.CmdPrevSection:
		return c.cycleSection(-1)
	case input.CmdDetail:
		return c.toggleDetail()
	case input.CmdBack:
		if !c.detail {
			return ignored()
		}
		c.detail = false
		return say(c.entryText(c.section))
	case input.CmdConfirm:
		it, ok := c.focusedItem()
		if !ok || c.section == SectionHero {
			return ignored()
		}
		return Result{Action: ActionConfirmItem, ItemID: it.ID, Section: c.section}
	case input.CmdRead:
		return say(c.CurrentText())
	case input.CmdSummary:
		return say(c.Summary())
	case input.CmdHeroStats:
		return say(c.HeroStatsText())
	case input.CmdEnemyStats:
		return say(c.EnemyStatsText())
	case input.CmdInspectEnemy:
		return c.enterInspect()
	}
	return ignored()
}

// handleCombat only exposes the stat readers and the enemy overlay
func (c *Context) handleCombat(cmd input.Command) Result {
	switch cmd {
	case input.CmdHeroStats:
		return say(c.HeroStatsText())
	case input.CmdEnemyStats:
		return say(c.EnemyStatsText())
	case input.CmdInspectEnemy:
		return c.enterInspect()
	}
	return ignored()
}

// handleInspect owns next/prev/confirm/back, anything else closes the overlay and is consumed
func (c *Context) handleInspect(cmd input.Command) Result {
	list := c.enemyItems()
	switch cmd {
	case input.CmdNext:
		c.enemy.Move(1, len(list))
		return say(c.enemyEntry())
	case input.CmdPrev:
		c.enemy.Move(-1, len(list))
		return say(c.enemyEntry())
	case input.CmdConfirm:
		if len(list) == 0 {
			return say(c.enemyEntry())
		}
		it := list[c.enemy.Index]
		parts := append([]string{it.Text()}, it.Detail...)
		return say(strings.Join(parts, ". "))
	}
	c.mode = c.returnTo
	return say(closedText)
}

func (c *Context) handleReplay(cmd input.Command) Result {
	switch cmd {
	case input.CmdNext:
		c.replay.Move(1, len(replayMenu))
		return say(replayMenu[c.replay.Index].label)
	case input.CmdPrev:
		c.replay.Move(-1, len(replayMenu))
		return say(replayMenu[c.replay.Index].label)
	case input.CmdRead:
		return say(replayMenu[c.replay.Index].label)
	case input.CmdConfirm:
		return Result{Action: replayMenu[c.replay.Index].action}
	}
	return ignored()
}

// step moves within the focused gameplay list, re-reading at the edge
func (c *Context) step(delta int) Result {
	if c.section != SectionHero && c.count(c.section) == 0 {
		return say("Empty")
	}
	if c.cursor(c.section).Move(delta, c.count(c.section)) {
		c.detail = false
	}
	if c.detail {
		return say(c.detailText())
	}
	return say(c.entryText(c.section))
}

// vertical walks detail lines when the reader is open, else toggles the hero subsection
func (c *Context) vertical(delta int) Result {
	if c.detail {
		c.detailLine.Move(delta, len(c.detailLines()))
		return say(c.detailText())
	}
	if c.section != SectionHero {
		return ignored()
	}

	views := Cursor{Index: int(c.heroView), Wrap: true}
	views.Move(delta, int(heroViewCount))
	c.heroView = HeroView(views.Index)
	c.heroCursors[c.heroView].Clamp(c.heroCount(c.heroView))
	return say(c.heroView.String() + ". " + c.heroEntry())
}

// cycleSection wraps through sections, skipping empty ones
func (c *Context) cycleSection(delta int) Result {
	sections := Cursor{Index: int(c.section), Wrap: true}
	for range sectionCount {
		sections.Move(delta, int(sectionCount))
		if c.count(Section(sections.Index)) > 0 {
			break
		}
	}
	c.section = Section(sections.Index)
	c.detail = false
	return say(c.section.String() + ". " + c.entryText(c.section))
}

func (c *Context) toggleDetail() Result {
	if c.detail {
		c.detail = false
		return say(c.entryText(c.section))
	}
	if len(c.detailLines()) == 0 {
		return say("No details")
	}
	c.detail = true
	c.detailLine.Index = 0
	return say(c.detailText())
}

func (c *Context) enterInspect() Result {
	list := c.enemyItems()
	if len(list) == 0 {
		return say("No enemy items")
	}
	c.returnTo = c.mode
	c.mode = ModeEnemyInspect
	c.enemy.Clamp(len(list))
	return say(c.enemyEntry())
}

func say(text string) Result {
	return Result{Text: text, Interrupt: true}
}

func ignored() Result {
	return Result{Ignored: true}
}
