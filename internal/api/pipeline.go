package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nextmic/nextmic/internal/auth"
	"github.com/nextmic/nextmic/internal/models"
	"github.com/nextmic/nextmic/internal/pipeline"
)

// boardResponse is what every board mutation returns: the authoritative
// column layout plus any toasts raised since the last response.
type boardResponse struct {
	Columns       []models.StageColumn    `json:"columns"`
	Stats         models.StageStats       `json:"stats"`
	Notifications []pipeline.Notification `json:"notifications,omitempty"`
}

// sessionFor returns the user's board session, building one on first use.
// The engine loads the full card list up front; later mutations are
// optimistic against that in-memory copy.
func (s *Server) sessionFor(ctx context.Context, userID uuid.UUID) (*boardSession, error) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}

	intervals := models.DefaultFollowUpIntervals
	if profile, err := s.Store.GetProfile(ctx, userID); err == nil {
		intervals = profile.Intervals()
	}

	collector := pipeline.NewCollector()
	engine := pipeline.NewEngine(s.Store, s.Functions, collector, userID, intervals)
	if err := engine.Load(ctx); err != nil {
		return nil, err
	}

	sess := &boardSession{engine: engine, collector: collector}
	s.sessions[userID] = sess
	return sess, nil
}

func (s *Server) dropSession(userID uuid.UUID) {
	s.sessMu.Lock()
	delete(s.sessions, userID)
	s.sessMu.Unlock()
}

func (s *Server) boardJSON(c echo.Context, sess *boardSession) error {
	return c.JSON(http.StatusOK, boardResponse{
		Columns:       sess.engine.Columns(),
		Stats:         sess.engine.Stats(),
		Notifications: sess.collector.Drain(),
	})
}

func (s *Server) handleGetBoard(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()

	// refresh=true rebuilds from the database, discarding optimistic state.
	if c.QueryParam("refresh") == "true" {
		s.dropSession(userID)
	}

	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		c.Logger().Errorf("Failed to load board for %s: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load board"})
	}
	return s.boardJSON(c, sess)
}

// MoveRequest mirrors one drag-and-drop gesture on the board. A cancelled
// drag (dropped outside any column) has no destination.
type MoveRequest struct {
	CardID    string `json:"card_id" validate:"required,uuid"`
	FromStage string `json:"from_stage" validate:"required"`
	FromIndex int    `json:"from_index" validate:"gte=0"`
	ToStage   string `json:"to_stage"`
	ToIndex   int    `json:"to_index" validate:"gte=0"`
	Cancelled bool   `json:"cancelled"`
}

func dragEventFromMove(req MoveRequest) (pipeline.DragEvent, error) {
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		return pipeline.DragEvent{}, fmt.Errorf("invalid card ID")
	}

	ev := pipeline.DragEvent{
		CardID: cardID,
		Source: pipeline.DropPosition{
			Stage: models.PipelineStage(req.FromStage),
			Index: req.FromIndex,
		},
	}
	if !req.Cancelled && req.ToStage != "" {
		ev.Destination = &pipeline.DropPosition{
			Stage: models.PipelineStage(req.ToStage),
			Index: req.ToIndex,
		}
	}
	return ev, nil
}

func (s *Server) handleMoveCard(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	var req MoveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ev, err := dragEventFromMove(req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load board"})
	}

	if err := sess.engine.HandleDragEnd(ctx, ev); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return s.boardJSON(c, sess)
}

func (s *Server) handleViewCard(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	scoreID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid card ID"})
	}

	ctx := c.Request().Context()
	sess, err := s.sessionFor(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load board"})
	}

	card, ok := sess.engine.ViewCard(ctx, scoreID)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Card not found"})
	}
	return c.JSON(http.StatusOK, card)
}

func (s *Server) handleGetActivity(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	limit := 50
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}

	entries, err := s.Store.ListActivityForUser(c.Request().Context(), userID, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load activity"})
	}
	return c.JSON(http.StatusOK, entries)
}
