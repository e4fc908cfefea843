package shuffler

import "math/rand/v2"

// maxSeed bounds random seeds to the range image models commonly accept.
const maxSeed = 2_000_000_000

// seeder hands out generation seeds. The random stream is derived from the
// configured base seed so runs are reproducible.
type seeder struct {
	policy SeedPolicy
	base   int64
	rng    *rand.Rand
}

func newSeeder(policy SeedPolicy, base int64) *seeder {
	return &seeder{
		policy: policy,
		base:   base,
		rng:    rand.New(rand.NewPCG(uint64(base), 0x5eed)),
	}
}

func (s *seeder) next() int64 {
	if s.policy == SeedFixed {
		return s.base
	}
	return 1 + s.rng.Int64N(maxSeed-1)
}
