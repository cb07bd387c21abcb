package agent

import (
	"math/rand/v2"

	"github.com/palemoky/x-nimmt/internal/apperrors"
	"github.com/palemoky/x-nimmt/internal/game/card"
	"github.com/palemoky/x-nimmt/internal/game/rule"
)

// RandomName is the registry name of the random baseline.
const RandomName = "random"

// Random plays a uniformly random card from its hand.
type Random struct {
	rng *rand.Rand
}

// NewRandom seeds the agent from s.Seed.
func NewRandom(s Settings) *Random {
	return &Random{rng: rand.New(rand.NewPCG(s.Seed, 0x9e3779b97f4a7c15))}
}

func (r *Random) Name() string { return RandomName }

func (r *Random) Choose(hand card.Hand, _ rule.Table) (int, error) {
	if len(hand) == 0 {
		return 0, apperrors.Wrap(apperrors.ErrAgentFailed, nil, "empty hand")
	}
	return hand[r.rng.IntN(len(hand))].Number, nil
}
