// internal/gem/gem.go
//
// Gem values and the sources that produce them.
// Defines:
//   - Kind:    the enumerated colour/category of a gem (0..N-1).
//   - Special: reserved special-behaviour tag (never produced in this version).
//   - Gem:     a plain value record; gems carry no identity beyond their cell.
//   - Source:  anything that can hand out fresh gems (random, seeded, scripted).

package gem

import (
	"math/rand"
	"time"
)

const (
	DefaultKinds = 6
	MinKinds     = 2
	MaxKinds     = 8
)

// Kind is the category of a gem. Valid kinds are 0..N-1 for a board of N kinds.
type Kind uint8

// Special tags a gem with extra behaviour. Only SpecialNone is ever produced.
type Special uint8

const (
	SpecialNone Special = iota
	SpecialStripedH
	SpecialStripedV
	SpecialBomb
	SpecialRainbow
)

var specialNames = [...]string{"", "stripedH", "stripedV", "bomb", "rainbow"}

func (s Special) String() string {
	if int(s) < len(specialNames) {
		return specialNames[s]
	}
	return "unknown"
}

// Gem is the content of a single board cell.
type Gem struct {
	Kind    Kind    `json:"kind"`
	Special Special `json:"special,omitempty"`
}

// Source produces fresh gems. Board logic never depends on how kinds are chosen.
type Source interface {
	Next() Gem
}

// ClampKinds keeps a configured kind count inside [MinKinds, MaxKinds].
func ClampKinds(n int) int {
	return min(max(n, MinKinds), MaxKinds)
}

// Random draws kinds uniformly from 0..kinds-1.
// Not safe for concurrent use; each board owns its own Random.
type Random struct {
	kinds int
	rng   *rand.Rand
}

// NewRandom builds a uniform source. A zero seed means time-based.
func NewRandom(kinds int, seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{
		kinds: ClampKinds(kinds),
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Next returns a gem of a uniformly random kind with no special tag.
func (r *Random) Next() Gem {
	return Gem{Kind: Kind(r.rng.Intn(r.kinds))}
}

// Kinds reports how many kinds this source draws from.
func (r *Random) Kinds() int { return r.kinds }

// sequence replays a fixed list of kinds, wrapping around at the end.
type sequence struct {
	kinds []Kind
	i     int
}

// Sequence returns a deterministic source cycling through kinds.
// With no kinds it always yields kind 0.
func Sequence(kinds ...Kind) Source {
	return &sequence{kinds: kinds}
}

func (s *sequence) Next() Gem {
	if len(s.kinds) == 0 {
		return Gem{}
	}
	k := s.kinds[s.i%len(s.kinds)]
	s.i++
	return Gem{Kind: k}
}
