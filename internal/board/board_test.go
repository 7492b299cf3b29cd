package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/stardust-blast/internal/gem"
)

// grid parses rows of digit strings into a board; refills come from src.
func grid(t *testing.T, src gem.Source, rows ...string) *Board {
	t.Helper()
	kinds := make([][]gem.Kind, len(rows))
	for y, r := range rows {
		for _, c := range r {
			kinds[y] = append(kinds[y], gem.Kind(c-'0'))
		}
	}
	b, err := FromKinds(kinds, src)
	require.NoError(t, err)
	return b
}

func markedCells(b *Board) []Pos {
	var out []Pos
	for y := 0; y < b.Rows(); y++ {
		for x := 0; x < b.Cols(); x++ {
			if b.Marked(x, y) {
				out = append(out, Pos{X: x, Y: y})
			}
		}
	}
	return out
}

func TestFindMatches_Rows(t *testing.T) {
	tests := []struct {
		name   string
		row    string
		want   []Match
		marked []Pos
	}{
		{
			name:   "leading run of three",
			row:    "00011",
			want:   []Match{{Dir: Horizontal, Line: 0, Start: 0, Length: 3}},
			marked: []Pos{{0, 0}, {1, 0}, {2, 0}},
		},
		{
			name:   "trailing run of four",
			row:    "001111",
			want:   []Match{{Dir: Horizontal, Line: 0, Start: 2, Length: 4}},
			marked: []Pos{{2, 0}, {3, 0}, {4, 0}, {5, 0}},
		},
		{
			name: "no run",
			row:  "01011",
		},
		{
			name: "two runs in one row",
			row:  "0001112",
			want: []Match{
				{Dir: Horizontal, Line: 0, Start: 0, Length: 3},
				{Dir: Horizontal, Line: 0, Start: 3, Length: 3},
			},
			marked: []Pos{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}, {5, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := grid(t, gem.Sequence(9), tt.row)
			assert.Equal(t, tt.want, b.FindMatches())
			assert.Equal(t, tt.marked, markedCells(b))
		})
	}
}

func TestFindMatches_Column(t *testing.T) {
	b := grid(t, gem.Sequence(9), "1", "2", "2", "2", "3")
	assert.Equal(t, []Match{{Dir: Vertical, Line: 0, Start: 1, Length: 3}}, b.FindMatches())
	assert.Equal(t, []Pos{{0, 1}, {0, 2}, {0, 3}}, markedCells(b))
}

func TestFindMatches_CrossMarksOnce(t *testing.T) {
	b := grid(t, gem.Sequence(9),
		"102",
		"000",
		"304",
	)
	m := b.FindMatches()
	assert.Equal(t, []Match{
		{Dir: Horizontal, Line: 1, Start: 0, Length: 3},
		{Dir: Vertical, Line: 1, Start: 0, Length: 3},
	}, m)
	// five distinct cells even though the descriptors cover six
	assert.Len(t, markedCells(b), 5)
	assert.Equal(t, 5, b.Collapse())
}

func TestFindMatches_Idempotent(t *testing.T) {
	b := New(8, 8, gem.NewRandom(4, 11))
	first := b.FindMatches()
	firstMarks := markedCells(b)
	second := b.FindMatches()
	assert.Equal(t, first, second)
	assert.Equal(t, firstMarks, markedCells(b))
}

func TestFindMatches_ClearsStaleMarks(t *testing.T) {
	b := grid(t, gem.Sequence(9), "012", "120", "201")
	b.cells[b.idx(1, 1)].marked = true
	assert.Empty(t, b.FindMatches())
	assert.Empty(t, markedCells(b))
}

func TestClearMarks(t *testing.T) {
	b := grid(t, gem.Sequence(9), "000", "120", "201")
	require.Len(t, b.FindMatches(), 1)
	require.Len(t, markedCells(b), 3)

	b.ClearMarks()
	assert.Empty(t, markedCells(b))
	assert.Equal(t, "000\n120\n201\n", b.String(), "clearing marks leaves the gems alone")
}

func TestCollapse_Gravity(t *testing.T) {
	// single column, top to bottom: A B A with B marked
	b := grid(t, gem.Sequence(7), "0", "1", "0")
	b.cells[b.idx(0, 1)].marked = true

	require.Equal(t, 1, b.Collapse())
	assert.Equal(t, gem.Kind(7), b.TokenAt(0, 0).Kind)
	assert.Equal(t, gem.Kind(0), b.TokenAt(0, 1).Kind)
	assert.Equal(t, gem.Kind(0), b.TokenAt(0, 2).Kind)
	assert.Empty(t, markedCells(b))
}

func TestCollapse_PreservesOrder(t *testing.T) {
	b := grid(t, gem.Sequence(7), "1", "2", "3", "4", "5")
	b.cells[b.idx(0, 1)].marked = true
	b.cells[b.idx(0, 3)].marked = true

	require.Equal(t, 2, b.Collapse())
	got := []gem.Kind{}
	for y := 0; y < b.Rows(); y++ {
		got = append(got, b.TokenAt(0, y).Kind)
	}
	assert.Equal(t, []gem.Kind{7, 7, 1, 3, 5}, got)
}

func TestCollapse_NothingMarked(t *testing.T) {
	b := grid(t, gem.Sequence(7), "012", "120")
	before := b.String()
	assert.Equal(t, 0, b.Collapse())
	assert.Equal(t, before, b.String())
}

func TestCollapse_Conservation(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		b := New(8, 8, gem.NewRandom(3, seed))
		b.FindMatches()
		marked := len(markedCells(b))

		// cells that are not marked are the ones retained through the collapse
		retained := b.Cols()*b.Rows() - marked
		removed := b.Collapse()
		assert.Equal(t, marked, removed, "seed %d", seed)
		assert.Equal(t, b.Cols()*b.Rows()-retained, removed, "seed %d", seed)
	}
}

func TestSwap_RevertRestoresGrid(t *testing.T) {
	b := grid(t, gem.Sequence(9),
		"0121",
		"1202",
		"2010",
	)
	before := b.Clone()
	a, c := Pos{X: 1, Y: 1}, Pos{X: 2, Y: 1}

	b.Swap(a, c)
	assert.Equal(t, gem.Kind(0), b.TokenAt(1, 1).Kind)
	assert.Equal(t, gem.Kind(2), b.TokenAt(2, 1).Kind)
	require.Empty(t, b.FindMatches())
	b.Swap(a, c)

	for y := 0; y < b.Rows(); y++ {
		for x := 0; x < b.Cols(); x++ {
			assert.Equal(t, before.TokenAt(x, y), b.TokenAt(x, y))
		}
	}
}

func TestSettle_ProducesStableBoard(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		b := New(8, 8, gem.NewRandom(gem.DefaultKinds, seed))
		require.True(t, b.Settle(1000))
		assert.Empty(t, b.FindMatches())
		assert.Empty(t, markedCells(b))
	}
}

func TestClone_IsIndependent(t *testing.T) {
	b := grid(t, gem.Sequence(9), "01", "23")
	c := b.Clone()
	c.Swap(Pos{0, 0}, Pos{1, 1})
	assert.Equal(t, "01\n23\n", b.String())
	assert.Equal(t, "31\n20\n", c.String())
}

func TestFromKinds_Errors(t *testing.T) {
	_, err := FromKinds(nil, gem.Sequence())
	assert.ErrorIs(t, err, ErrEmptyGrid)

	_, err = FromKinds([][]gem.Kind{{0, 1}, {0}}, gem.Sequence())
	assert.ErrorIs(t, err, ErrRaggedGrid)
}

func TestNew_FillsEveryCell(t *testing.T) {
	b := New(5, 4, gem.NewRandom(3, 5))
	assert.Equal(t, 5, b.Cols())
	assert.Equal(t, 4, b.Rows())
	for y := 0; y < b.Rows(); y++ {
		for x := 0; x < b.Cols(); x++ {
			assert.Less(t, int(b.TokenAt(x, y).Kind), 3)
		}
	}

	tiny := New(0, -2, gem.Sequence(1))
	assert.Equal(t, 1, tiny.Cols())
	assert.Equal(t, 1, tiny.Rows())
}

func TestInBounds(t *testing.T) {
	b := New(3, 2, gem.Sequence(0, 1))
	assert.True(t, b.InBounds(0, 0))
	assert.True(t, b.InBounds(2, 1))
	assert.False(t, b.InBounds(3, 0))
	assert.False(t, b.InBounds(0, 2))
	assert.False(t, b.InBounds(-1, 0))
}

func TestPos_Adjacent(t *testing.T) {
	p := Pos{X: 2, Y: 2}
	assert.True(t, p.Adjacent(Pos{3, 2}))
	assert.True(t, p.Adjacent(Pos{2, 1}))
	assert.False(t, p.Adjacent(Pos{3, 3}))
	assert.False(t, p.Adjacent(Pos{2, 2}))
	assert.False(t, p.Adjacent(Pos{4, 2}))
}

func TestMatch_Cells(t *testing.T) {
	h := Match{Dir: Horizontal, Line: 2, Start: 1, Length: 3}
	assert.Equal(t, []Pos{{1, 2}, {2, 2}, {3, 2}}, h.Cells())
	v := Match{Dir: Vertical, Line: 4, Start: 0, Length: 3}
	assert.Equal(t, []Pos{{4, 0}, {4, 1}, {4, 2}}, v.Cells())
}

func TestDirection_Text(t *testing.T) {
	b, err := Vertical.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "V", string(b))

	var d Direction
	require.NoError(t, d.UnmarshalText([]byte("V")))
	assert.Equal(t, Vertical, d)
	assert.Error(t, d.UnmarshalText([]byte("X")))
}
