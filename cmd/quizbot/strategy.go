package main

import (
	"fmt"
	"math/rand"

	"github.com/astroturfstudio/quizzi-go/protocol"
)

// Strategy picks an answer for a round's question.
type Strategy interface {
	Name() string
	Pick(q protocol.Question, rng *rand.Rand) int
}

// newStrategy returns the strategy registered under name.
func newStrategy(name string) (Strategy, error) {
	switch name {
	case "random":
		return randomStrategy{}, nil
	case "first":
		return firstStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (available: random, first)", name)
	}
}

// randomStrategy answers uniformly at random.
type randomStrategy struct{}

func (randomStrategy) Name() string { return "random" }

func (randomStrategy) Pick(q protocol.Question, rng *rand.Rand) int {
	if len(q.Answers) == 0 {
		return 0
	}
	return q.Answers[rng.Intn(len(q.Answers))].ID
}

// firstStrategy always takes the first listed answer. Useful as a fixed
// baseline when comparing bot runs.
type firstStrategy struct{}

func (firstStrategy) Name() string { return "first" }

func (firstStrategy) Pick(q protocol.Question, rng *rand.Rand) int {
	if len(q.Answers) == 0 {
		return 0
	}
	return q.Answers[0].ID
}
