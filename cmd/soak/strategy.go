package main

import (
	"math/rand/v2"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
	"github.com/wricardo/mcp-training/rotationwalls/game/service"
)

// Strategy produces the next batch of intents
type Strategy interface {
	Next(n int) []service.Intent
}

// SystematicStrategy walks the rotations in order. For each one it fills
// lanes round-robin up to the wall cap, then breaks up to the break cap in
// mark mode, so every rotation but the last carries forward.
type SystematicStrategy struct {
	plan []service.Intent
	pos  int
}

func NewSystematicStrategy(rules *engine.GameConfig) *SystematicStrategy {
	var plan []service.Intent
	for r := 0; r < rules.Rotations; r++ {
		for i := 0; i < rules.WallCap; i++ {
			plan = append(plan, service.Intent{Action: engine.ActionPlace, Rotation: r, Lane: i % rules.Lanes})
		}
		plan = append(plan, service.Intent{Action: engine.ActionToggleMark})
		for i := 0; i < rules.BreakCap; i++ {
			plan = append(plan, service.Intent{Action: engine.ActionBreak, Rotation: r, Lane: i % rules.Lanes})
		}
		plan = append(plan, service.Intent{Action: engine.ActionToggleMark})
	}
	return &SystematicStrategy{plan: plan}
}

// Next returns up to n intents; an empty batch means the plan is done
func (s *SystematicStrategy) Next(n int) []service.Intent {
	end := min(s.pos+n, len(s.plan))
	batch := s.plan[s.pos:end]
	s.pos = end
	return batch
}

// Remaining reports how many planned intents have not been handed out
func (s *SystematicStrategy) Remaining() int {
	return len(s.plan) - s.pos
}

type weightedAction struct {
	action string
	weight int
}

// randomMix favours placing and breaking so caps are reached regularly
var randomMix = []weightedAction{
	{engine.ActionPlace, 45},
	{engine.ActionBreak, 25},
	{engine.ActionUnbreak, 10},
	{engine.ActionRemove, 8},
	{engine.ActionToggleMark, 10},
	{engine.ActionReset, 2},
}

// RandomStrategy draws intents from a seeded source so runs can be repeated
type RandomStrategy struct {
	rules *engine.GameConfig
	rng   *rand.Rand
	total int
}

func NewRandomStrategy(rules *engine.GameConfig, seed uint64) *RandomStrategy {
	total := 0
	for _, w := range randomMix {
		total += w.weight
	}
	return &RandomStrategy{
		rules: rules,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		total: total,
	}
}

func (s *RandomStrategy) Next(n int) []service.Intent {
	batch := make([]service.Intent, n)
	for i := range batch {
		batch[i] = service.Intent{
			Action:   s.pick(),
			Rotation: s.rng.IntN(s.rules.Rotations),
			Lane:     s.rng.IntN(s.rules.Lanes),
		}
	}
	return batch
}

func (s *RandomStrategy) pick() string {
	roll := s.rng.IntN(s.total)
	for _, w := range randomMix {
		if roll < w.weight {
			return w.action
		}
		roll -= w.weight
	}
	return engine.ActionPlace
}
