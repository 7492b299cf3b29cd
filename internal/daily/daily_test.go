package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/stardust-blast/assets"
	"github.com/robalobadob/stardust-blast/internal/database"
)

func TestSeed_StablePerDayAndSalt(t *testing.T) {
	morning := time.Date(2026, 3, 1, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	nextDay := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)

	assert.Equal(t, Seed(morning, "s"), Seed(evening, "s"))
	assert.NotEqual(t, Seed(morning, "s"), Seed(nextDay, "s"))
	assert.NotEqual(t, Seed(morning, "s"), Seed(morning, "t"))
	assert.Greater(t, Seed(morning, "s"), int64(0))
	assert.Equal(t, "2026-03-01", DateKey(evening))
}

func TestStore_ResultsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, assets.Migrations()))

	st := NewStore(db)
	played, err := st.AlreadyPlayed(ctx, "u1", "2026-03-01")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u1", Date: "2026-03-01", Score: 300, MovesUsed: 20, ElapsedMs: 9000}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u2", Date: "2026-03-01", Score: 450, MovesUsed: 20, ElapsedMs: 12000}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u3", Date: "2026-03-01", Score: 300, MovesUsed: 20, ElapsedMs: 5000}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u4", Date: "2026-03-02", Score: 999, MovesUsed: 20, ElapsedMs: 1}))
	// duplicate is ignored
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u1", Date: "2026-03-01", Score: 5000, MovesUsed: 1, ElapsedMs: 1}))

	played, err = st.AlreadyPlayed(ctx, "u1", "2026-03-01")
	require.NoError(t, err)
	assert.True(t, played)

	rows, err := st.Leaderboard(ctx, "2026-03-01", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"u2", "u3", "u1"}, []string{rows[0].UserID, rows[1].UserID, rows[2].UserID})
	assert.Equal(t, 300, rows[2].Score)
}
