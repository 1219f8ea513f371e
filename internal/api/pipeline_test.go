package api

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextmic/nextmic/internal/models"
)

func TestDragEventFromMove_WithDestination(t *testing.T) {
	id := uuid.New()
	ev, err := dragEventFromMove(MoveRequest{
		CardID:    id.String(),
		FromStage: "new",
		FromIndex: 2,
		ToStage:   "pitched",
		ToIndex:   0,
	})
	require.NoError(t, err)

	assert.Equal(t, id, ev.CardID)
	assert.Equal(t, models.StageNew, ev.Source.Stage)
	assert.Equal(t, 2, ev.Source.Index)
	require.NotNil(t, ev.Destination)
	assert.Equal(t, models.StagePitched, ev.Destination.Stage)
	assert.Equal(t, 0, ev.Destination.Index)
}

func TestDragEventFromMove_CancelledHasNoDestination(t *testing.T) {
	ev, err := dragEventFromMove(MoveRequest{
		CardID:    uuid.New().String(),
		FromStage: "interested",
		Cancelled: true,
		ToStage:   "pitched",
	})
	require.NoError(t, err)
	assert.Nil(t, ev.Destination)
}

func TestDragEventFromMove_EmptyTargetHasNoDestination(t *testing.T) {
	ev, err := dragEventFromMove(MoveRequest{
		CardID:    uuid.New().String(),
		FromStage: "new",
	})
	require.NoError(t, err)
	assert.Nil(t, ev.Destination)
}

func TestDragEventFromMove_BadCardID(t *testing.T) {
	_, err := dragEventFromMove(MoveRequest{CardID: "not-a-uuid", FromStage: "new"})
	assert.Error(t, err)
}
