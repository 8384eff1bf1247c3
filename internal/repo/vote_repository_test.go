package repo

import (
	"ModPlanner/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countVoteRows(t *testing.T, r *voteRepo, userID, partID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, r.db.Model(&model.Vote{}).Where("user_id = ? AND part_id = ?", userID, partID).Count(&n).Error)
	return n
}

func TestVoteRepository_ToggleSemantics(t *testing.T) {
	db := newTestDB(t)
	r := NewVoteRepository(db).(*voteRepo)
	ctx := context.Background()

	// первый голос создаёт строку
	dir, err := r.Toggle(ctx, 1, 10, model.VoteUp)
	require.NoError(t, err)
	require.NotNil(t, dir)
	assert.Equal(t, model.VoteUp, *dir)
	assert.Equal(t, int64(1), countVoteRows(t, r, 1, 10))

	// противоположный голос меняет направление на месте
	dir, err = r.Toggle(ctx, 1, 10, model.VoteDown)
	require.NoError(t, err)
	require.NotNil(t, dir)
	assert.Equal(t, model.VoteDown, *dir)
	assert.Equal(t, int64(1), countVoteRows(t, r, 1, 10))

	// тот же голос повторно — снятие голоса
	dir, err = r.Toggle(ctx, 1, 10, model.VoteDown)
	require.NoError(t, err)
	assert.Nil(t, dir)
	assert.Equal(t, int64(0), countVoteRows(t, r, 1, 10))
}

func TestVoteRepository_ToggleSameTwiceRoundTrip(t *testing.T) {
	db := newTestDB(t)
	r := NewVoteRepository(db).(*voteRepo)
	ctx := context.Background()

	_, err := r.Toggle(ctx, 5, 50, model.VoteUp)
	require.NoError(t, err)
	dir, err := r.Toggle(ctx, 5, 50, model.VoteUp)
	require.NoError(t, err)
	assert.Nil(t, dir)

	dirs, err := r.UserDirections(ctx, 5, []int64{50})
	require.NoError(t, err)
	_, ok := dirs[50]
	assert.False(t, ok)
}

func TestVoteRepository_RemoveIsNoopWhenAbsent(t *testing.T) {
	db := newTestDB(t)
	r := NewVoteRepository(db)
	ctx := context.Background()

	removed, err := r.Remove(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = r.Toggle(ctx, 1, 1, model.VoteDown)
	require.NoError(t, err)
	removed, err = r.Remove(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, removed)
}

func TestVoteRepository_CountsAndUserDirections(t *testing.T) {
	db := newTestDB(t)
	r := NewVoteRepository(db)
	ctx := context.Background()

	// деталь 1: 2 up, 1 down; деталь 2: 1 down; деталь 3 без голосов
	for _, v := range []struct {
		user, part int64
		dir        model.VoteDirection
	}{
		{1, 1, model.VoteUp}, {2, 1, model.VoteUp}, {3, 1, model.VoteDown}, {1, 2, model.VoteDown},
	} {
		_, err := r.Toggle(ctx, v.user, v.part, v.dir)
		require.NoError(t, err)
	}

	counts, err := r.Counts(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	if assert.Len(t, counts, 2) {
		assert.Equal(t, int64(1), counts[0].PartID)
		assert.Equal(t, int64(2), counts[0].Upvotes)
		assert.Equal(t, int64(1), counts[0].Downvotes)
		assert.False(t, counts[0].LastVoteAt.IsZero())
		assert.Equal(t, int64(2), counts[1].PartID)
		assert.Equal(t, int64(0), counts[1].Upvotes)
		assert.Equal(t, int64(1), counts[1].Downvotes)
	}

	all, err := r.AllCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, counts, all)

	dirs, err := r.UserDirections(ctx, 1, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, map[int64]model.VoteDirection{1: model.VoteUp, 2: model.VoteDown}, dirs)

	// анонимный пользователь — пустая карта без запроса
	dirs, err = r.UserDirections(ctx, 0, []int64{1})
	require.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestVoteRepository_RecentDownvotesAndDeleteByPart(t *testing.T) {
	db := newTestDB(t)
	r := NewVoteRepository(db).(*voteRepo)
	ctx := context.Background()

	for user := int64(1); user <= 3; user++ {
		_, err := r.Toggle(ctx, user, 9, model.VoteDown)
		require.NoError(t, err)
	}
	_, err := r.Toggle(ctx, 4, 9, model.VoteUp)
	require.NoError(t, err)

	// один downvote «состарим» за пределы окна
	old := time.Now().UTC().Add(-60 * 24 * time.Hour)
	require.NoError(t, db.Model(&model.Vote{}).Where("user_id = ? AND part_id = ?", 1, 9).UpdateColumn("updated_at", old).Error)

	recent, err := r.RecentDownvotes(ctx, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent[9])

	n, err := r.DeleteByPart(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	counts, err := r.Counts(ctx, []int64{9})
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestVoteRepository_RecentDownvotesIgnoresCutoffZone(t *testing.T) {
	db := newTestDB(t)
	r := NewVoteRepository(db)
	ctx := context.Background()

	for user := int64(1); user <= 3; user++ {
		_, err := r.Toggle(ctx, user, 7, model.VoteDown)
		require.NoError(t, err)
	}
	// один голос переключён туда-обратно: updated_at ставится через Updates
	_, err := r.Toggle(ctx, 3, 7, model.VoteUp)
	require.NoError(t, err)
	_, err = r.Toggle(ctx, 3, 7, model.VoteDown)
	require.NoError(t, err)

	var stored model.Vote
	require.NoError(t, db.Where("user_id = ? AND part_id = ?", 1, 7).Take(&stored).Error)
	_, offset := stored.UpdatedAt.Zone()
	assert.Equal(t, 0, offset, "timestamps must be stored in UTC")

	// одна и та же граница окна, выраженная в зонах до и после UTC
	cutoff := time.Now().Add(-time.Minute)
	for _, loc := range []*time.Location{
		time.UTC,
		time.FixedZone("UTC+5", 5*60*60),
		time.FixedZone("UTC-5", -5*60*60),
	} {
		recent, err := r.RecentDownvotes(ctx, cutoff.In(loc))
		require.NoError(t, err)
		assert.Equal(t, int64(3), recent[7], "cutoff in %s", loc)
	}

	// граница в будущем ничего не находит независимо от зоны
	recent, err := r.RecentDownvotes(ctx, time.Now().Add(time.Hour).In(time.FixedZone("UTC-5", -5*60*60)))
	require.NoError(t, err)
	assert.Empty(t, recent)
}
