package repo

import (
	"ModPlanner/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestJunctionRepository_CreateIfAbsentAndNotes(t *testing.T) {
	db := newTestDB(t)
	parts := NewPartRepository(db)
	lists := NewBuildListRepository(db)
	r := NewJunctionRepository(db)
	ctx := context.Background()

	p := mkPart(t, parts, "Exhaust", 1)
	bl := &model.BuildList{UserID: 2, Name: "Track car"}
	require.NoError(t, lists.Create(ctx, bl))

	notes := "buy used"
	j := &model.BuildListPart{BuildListID: bl.ID, PartID: p.ID, AddedBy: 2, Notes: &notes}
	created, err := r.CreateIfAbsent(ctx, j)
	require.NoError(t, err)
	assert.True(t, created)

	// повторная пара — created=false
	created, err = r.CreateIfAbsent(ctx, &model.BuildListPart{BuildListID: bl.ID, PartID: p.ID, AddedBy: 2})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := r.GetByPair(ctx, bl.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, j.ID, got.ID)

	newNotes := "buy new"
	require.NoError(t, r.UpdateNotes(ctx, j.ID, &newNotes))
	list, err := r.ListByBuildList(ctx, bl.ID)
	require.NoError(t, err)
	if assert.Len(t, list, 1) {
		assert.Equal(t, "buy new", *list[0].Notes)
		if assert.NotNil(t, list[0].Part) {
			assert.Equal(t, "Exhaust", list[0].Part.Name)
		}
	}

	require.NoError(t, r.UpdateNotes(ctx, j.ID, nil))
	got, err = r.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Notes)
}

func TestJunctionRepository_DeleteAndDeleteByPart(t *testing.T) {
	db := newTestDB(t)
	parts := NewPartRepository(db)
	r := NewJunctionRepository(db)
	ctx := context.Background()

	p := mkPart(t, parts, "Wheels", 1)
	other := mkPart(t, parts, "Tyres", 1)

	var ids []int64
	for list := int64(1); list <= 3; list++ {
		j := &model.BuildListPart{BuildListID: list, PartID: p.ID, AddedBy: list}
		_, err := r.CreateIfAbsent(ctx, j)
		require.NoError(t, err)
		ids = append(ids, j.ID)
	}
	_, err := r.CreateIfAbsent(ctx, &model.BuildListPart{BuildListID: 1, PartID: other.ID, AddedBy: 1})
	require.NoError(t, err)

	// удаление одной связи не трогает соседние
	require.NoError(t, r.Delete(ctx, ids[0]))
	n, err := r.CountByPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.ErrorIs(t, r.Delete(ctx, ids[0]), gorm.ErrRecordNotFound)

	deleted, err := r.DeleteByPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	n, err = r.CountByPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.CountByPart(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
