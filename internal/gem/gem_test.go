package gem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandom_KindsInRange(t *testing.T) {
	src := NewRandom(6, 42)
	seen := make(map[Kind]int)
	for i := 0; i < 6000; i++ {
		g := src.Next()
		require.Less(t, int(g.Kind), 6)
		assert.Equal(t, SpecialNone, g.Special)
		seen[g.Kind]++
	}
	// every kind should show up with a uniform draw of this size
	assert.Len(t, seen, 6)
	for k, n := range seen {
		assert.Greater(t, n, 700, "kind %d under-represented", k)
	}
}

func TestRandom_SeedIsDeterministic(t *testing.T) {
	a := NewRandom(5, 7)
	b := NewRandom(5, 7)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(), b.Next())
	}
}

func TestRandom_ClampsKinds(t *testing.T) {
	assert.Equal(t, MinKinds, NewRandom(0, 1).Kinds())
	assert.Equal(t, MaxKinds, NewRandom(99, 1).Kinds())
	assert.Equal(t, 4, NewRandom(4, 1).Kinds())
}

func TestSequence_Cycles(t *testing.T) {
	src := Sequence(1, 2, 3)
	var got []Kind
	for i := 0; i < 7; i++ {
		got = append(got, src.Next().Kind)
	}
	assert.Equal(t, []Kind{1, 2, 3, 1, 2, 3, 1}, got)

	assert.Equal(t, Gem{}, Sequence().Next())
}

func TestSpecial_String(t *testing.T) {
	assert.Equal(t, "", SpecialNone.String())
	assert.Equal(t, "bomb", SpecialBomb.String())
	assert.Equal(t, "unknown", Special(42).String())
}
