package main

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/lixenwraith/narrator/events"
	"github.com/lixenwraith/narrator/navigation"
	"github.com/lixenwraith/narrator/snapshot"
)

// demoGame is a scripted stand-in for the hosting game
// It owns the authoritative state, publishes domain events from its own
// goroutine and answers snapshot queries from the session loop
type demoGame struct {
	mu    sync.Mutex
	state snapshot.GameSnapshot
	modal bool
	round int

	bus *events.Router
	rng *rand.Rand
}

// scriptStep runs after delay, mutating state under the lock
// Returned events are published after the lock is released
type scriptStep struct {
	delay time.Duration
	run   func(g *demoGame) []events.Event
}

var shopStock = []snapshot.Item{
	{ID: "dagger", Name: "Dagger", Tier: "Bronze", Size: 1, Price: 3, Detail: []string{"Deal 5 damage", "Cooldown 4 seconds"}},
	{ID: "buckler", Name: "Buckler", Tier: "Bronze", Size: 2, Price: 4, Detail: []string{"Gain 8 shield"}},
	{ID: "tonic", Name: "Tonic", Size: 1, Price: 2, Detail: []string{"Heal 6", "Consumed on use"}},
	{ID: "torch", Name: "Torch", Tier: "Silver", Size: 2, Price: 6, Detail: []string{"Burn 3"}},
}

var opponentStock = []snapshot.Item{
	{ID: "club", Name: "Club", Size: 2, Detail: []string{"Deal 7 damage"}},
	{ID: "frost", Name: "Frost Wand", Tier: "Silver", Size: 1, Detail: []string{"Freeze 1 second"}},
}

func newDemoGame(bus *events.Router, seed uint64) *demoGame {
	g := &demoGame{
		bus: bus,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	g.state = snapshot.GameSnapshot{
		State:     "shop",
		Selection: slices.Clone(shopStock[:3]),
		Hero:      snapshot.Stats{Name: "Vanessa", Health: 60, MaxHealth: 60, Gold: 10, Level: 1, Income: 5},
		HeroSkill: []snapshot.Item{{ID: "aim", Name: "Keen Eye", Detail: []string{"Crit chance up"}}},
	}
	return g
}

// QuerySnapshot returns a deep copy of the current state
func (g *demoGame) QuerySnapshot() (*snapshot.GameSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := g.state
	s.Selection = slices.Clone(s.Selection)
	s.Board = slices.Clone(s.Board)
	s.Stash = slices.Clone(s.Stash)
	s.Skills = slices.Clone(s.Skills)
	s.HeroSkill = slices.Clone(s.HeroSkill)
	if s.Opponent != nil {
		op := *s.Opponent
		op.Items = slices.Clone(op.Items)
		s.Opponent = &op
	}
	return &s, nil
}

// Modal reports whether a game dialog currently holds focus
func (g *demoGame) Modal() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.modal
}

// Apply carries out a host action chosen in the navigation menus
func (g *demoGame) Apply(res navigation.Result) {
	switch res.Action {
	case navigation.ActionConfirmItem:
		g.do(func(g *demoGame) []events.Event { return g.purchase(res.ItemID) })
	case navigation.ActionContinue:
		g.do(endReplay)
	case navigation.ActionReplay:
		g.publish(events.StateTransition{From: "replay", To: "replay"})
	case navigation.ActionRecap:
		g.publish(events.ContentRevealed{Section: "recap", Count: 1})
	}
}

// run plays the script in a loop until ctx is done
func (g *demoGame) run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		for _, step := range script {
			timer.Reset(step.delay)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			g.do(step.run)
		}
	}
}

func (g *demoGame) do(fn func(g *demoGame) []events.Event) {
	g.mu.Lock()
	evs := fn(g)
	g.mu.Unlock()
	g.publish(evs...)
}

func (g *demoGame) publish(evs ...events.Event) {
	for _, e := range evs {
		g.bus.Publish(e)
	}
}

// purchase moves a selection item to the board, caller holds the lock
func (g *demoGame) purchase(id string) []events.Event {
	i := slices.IndexFunc(g.state.Selection, func(it snapshot.Item) bool { return it.ID == id })
	if i < 0 {
		return nil
	}
	it := g.state.Selection[i]
	if it.Price > g.state.Hero.Gold {
		return []events.Event{events.StateTransition{From: "shop", To: "shop"}}
	}
	g.state.Hero.Gold -= it.Price
	g.state.Selection = slices.Delete(g.state.Selection, i, i+1)
	g.state.Board = append(g.state.Board, it)
	return []events.Event{events.UserActionCompleted{Action: events.ActionPurchase, Item: it.Name}}
}

// strike applies one hit and returns the effect plus the resulting health event
func (g *demoGame) strike(side events.Side, item string, amount int, crit bool) []events.Event {
	target := &g.state.Hero
	if side == events.SideLocal && g.state.Opponent != nil {
		target = &g.state.Opponent.Stats
	}
	target.Health = max(target.Health-amount, 0)

	targetSide := events.SideLocal
	if target != &g.state.Hero {
		targetSide = events.SideOpponent
	}
	return []events.Event{
		events.CombatEffect{Side: side, Effect: events.EffectDamage, Item: item, Amount: amount, Crit: crit},
		events.HealthChanged{Side: targetSide, Health: target.Health, MaxHealth: target.MaxHealth, Shield: target.Shield},
	}
}

func openShop(g *demoGame) []events.Event {
	g.round++
	g.state.State = "shop"
	g.state.Opponent = nil
	g.state.Hero.Health = g.state.Hero.MaxHealth
	g.state.Hero.Gold += g.state.Hero.Income

	start := g.rng.IntN(len(shopStock))
	g.state.Selection = g.state.Selection[:0]
	for i := range 3 {
		g.state.Selection = append(g.state.Selection, shopStock[(start+i)%len(shopStock)])
	}
	return []events.Event{
		events.StateTransition{From: "replay", To: "shop"},
		events.ContentRevealed{Section: "selection", Count: len(g.state.Selection)},
	}
}

func buyFirst(g *demoGame) []events.Event {
	if len(g.state.Selection) == 0 {
		return nil
	}
	return g.purchase(g.state.Selection[0].ID)
}

func openDialog(g *demoGame) []events.Event {
	g.modal = true
	g.state.Hero.Level++
	return []events.Event{events.StateTransition{From: "shop", To: "level_up"}}
}

func closeDialog(g *demoGame) []events.Event {
	g.modal = false
	return []events.Event{events.StateTransition{From: "level_up", To: "shop"}}
}

func startCombat(g *demoGame) []events.Event {
	g.state.State = "combat"
	g.state.Opponent = &snapshot.Opponent{
		Stats: snapshot.Stats{Name: "Dooley", Health: 50, MaxHealth: 50, Level: g.round},
		Items: slices.Clone(opponentStock),
	}
	return []events.Event{
		events.StateTransition{From: "shop", To: "combat"},
		events.SessionModeChanged{Mode: events.ModeEnterCombat},
	}
}

func heroVolley(g *demoGame) []events.Event {
	var evs []events.Event
	for _, it := range g.state.Board {
		evs = append(evs, g.strike(events.SideLocal, it.Name, 3+g.rng.IntN(5), g.rng.IntN(5) == 0)...)
	}
	if len(g.state.Board) == 0 {
		evs = append(evs, g.strike(events.SideLocal, "Fists", 2, false)...)
	}
	return evs
}

func enemyVolley(g *demoGame) []events.Event {
	evs := g.strike(events.SideOpponent, "Club", 8+g.rng.IntN(6), false)
	evs = append(evs, g.strike(events.SideOpponent, "Club", 8+g.rng.IntN(6), g.rng.IntN(3) == 0)...)
	evs = append(evs, events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectBurn, Item: "Club", Amount: 2})
	return evs
}

func enemyFreeze(g *demoGame) []events.Event {
	return []events.Event{events.CombatEffect{Side: events.SideOpponent, Effect: events.EffectFreeze, Item: "Frost Wand", Amount: 1}}
}

func endCombat(g *demoGame) []events.Event {
	g.state.State = "replay"
	return []events.Event{
		events.SessionModeChanged{Mode: events.ModeExitCombat},
		events.SessionModeChanged{Mode: events.ModeEnterReplay},
	}
}

func endReplay(g *demoGame) []events.Event {
	if g.state.State != "replay" {
		return nil
	}
	g.state.State = "shop"
	g.state.Opponent = nil
	return []events.Event{events.SessionModeChanged{Mode: events.ModeExitReplay}}
}

// script is one round: shop, a level-up dialog, combat, replay
var script = []scriptStep{
	{2 * time.Second, openShop},
	{4 * time.Second, buyFirst},
	{3 * time.Second, openDialog},
	{2 * time.Second, closeDialog},
	{4 * time.Second, startCombat},
	{800 * time.Millisecond, heroVolley},
	{600 * time.Millisecond, enemyVolley},
	{2500 * time.Millisecond, enemyFreeze},
	{500 * time.Millisecond, heroVolley},
	{700 * time.Millisecond, enemyVolley},
	{3 * time.Second, endCombat},
	{6 * time.Second, endReplay},
}
