package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nextmic/nextmic/internal/models"
)

// ScoreStore is the slice of the record store the engine needs: reads of a
// user's scored opportunities and partial writes against single score
// records. *db.Store satisfies it.
type ScoreStore interface {
	ListScoresForUser(ctx context.Context, userID uuid.UUID) ([]models.OpportunityCard, error)
	UpdateScoreStage(ctx context.Context, scoreID uuid.UUID, update models.StageUpdate) error
	MarkScoreViewed(ctx context.Context, scoreID uuid.UUID, viewedAt time.Time) error
	AppendActivity(ctx context.Context, entry models.ActivityLogEntry) error
}

// ReminderScheduler is the externally hosted follow-up reminder function.
type ReminderScheduler interface {
	CreateFollowUpReminders(ctx context.Context, userID, scoreID uuid.UUID, pitchDate time.Time, intervals []int) error
}

// Notifier receives the user-facing outcome of an operation. The HTTP layer
// collects these into the response; tests inspect them directly.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// DropPosition identifies a board location: a column and an index within it.
type DropPosition struct {
	Stage models.PipelineStage
	Index int
}

// DragEvent is the result of one drag gesture. A nil Destination means the
// card was dropped outside any valid target.
type DragEvent struct {
	CardID      uuid.UUID
	Source      DropPosition
	Destination *DropPosition
}

// Engine owns the authoritative in-memory card list for one signed-in user
// and processes stage transitions originating from drag-and-drop.
//
// Transitions are optimistic: the in-memory card is rewritten before the
// store confirms the write, and a failed write rolls back by re-fetching the
// whole list rather than reverting the single mutation. Side effects
// (activity log, follow-up reminders) are best-effort and never undo a
// committed transition.
type Engine struct {
	store     ScoreStore
	reminders ReminderScheduler
	notify    Notifier
	userID    uuid.UUID
	intervals []int
	now       func() time.Time

	mu    sync.Mutex
	cards []models.OpportunityCard
}

// NewEngine builds an engine for one user session. intervals is the user's
// configured follow-up cadence; pass nil to use the 7/14/21 default.
func NewEngine(store ScoreStore, reminders ReminderScheduler, notify Notifier, userID uuid.UUID, intervals []int) *Engine {
	if len(intervals) == 0 {
		intervals = models.DefaultFollowUpIntervals
	}
	return &Engine{
		store:     store,
		reminders: reminders,
		notify:    notify,
		userID:    userID,
		intervals: intervals,
		now:       time.Now,
	}
}

// Load replaces the in-memory list wholesale from the store. On failure the
// previous list is kept (stale-but-present over empty) and the user is told.
func (e *Engine) Load(ctx context.Context) error {
	cards, err := e.store.ListScoresForUser(ctx, e.userID)
	if err != nil {
		loadsTotal.WithLabelValues("error").Inc()
		e.notify.Error("Failed to load your pipeline")
		return fmt.Errorf("load pipeline: %w", err)
	}

	loadsTotal.WithLabelValues("ok").Inc()
	e.mu.Lock()
	e.cards = cards
	e.mu.Unlock()
	return nil
}

// HandleDragEnd processes one completed drag gesture.
//
// Every stage is reachable from every other stage; there is no validity
// graph. The in-memory card is rewritten before the store write is issued,
// so the new grouping is visible within the same interaction. A failed write
// notifies the user and reloads ground truth; a successful write appends one
// activity entry and, on entry to "pitched", schedules follow-up reminders.
func (e *Engine) HandleDragEnd(ctx context.Context, ev DragEvent) error {
	if ev.Destination == nil {
		return nil
	}
	if *ev.Destination == ev.Source {
		return nil
	}

	dest := ev.Destination.Stage
	if !dest.Valid() {
		return fmt.Errorf("unknown pipeline stage %q", dest)
	}

	e.mu.Lock()
	idx := e.indexOfLocked(ev.CardID)
	if idx < 0 {
		e.mu.Unlock()
		return fmt.Errorf("card %s not in pipeline", ev.CardID)
	}
	e.cards[idx].PipelineStage = dest
	e.mu.Unlock()

	update := models.StageUpdate{Stage: dest}
	if dest.StampsTimestamp() {
		at := e.now()
		update.EnteredAt = &at
	}

	if err := e.store.UpdateScoreStage(ctx, ev.CardID, update); err != nil {
		transitionsTotal.WithLabelValues(string(dest), "error").Inc()
		e.notify.Error("Failed to move opportunity")
		// Coarse rollback: re-fetch ground truth instead of reverting the
		// single optimistic mutation.
		e.reload(ctx)
		return fmt.Errorf("update stage: %w", err)
	}

	transitionsTotal.WithLabelValues(string(dest), "ok").Inc()
	e.notify.Success(fmt.Sprintf("Moved to %q", dest.Label()))
	e.dispatchSideEffects(ctx, ev.CardID, dest)
	return nil
}

// dispatchSideEffects fires the best-effort follow-ups of a committed
// transition. Failures are logged, never surfaced, and never roll back the
// stage change.
func (e *Engine) dispatchSideEffects(ctx context.Context, scoreID uuid.UUID, dest models.PipelineStage) {
	entry := models.ActivityLogEntry{
		ScoreID: scoreID,
		UserID:  e.userID,
		Type:    models.ActivityNote,
		Notes:   fmt.Sprintf("Moved to %q stage", dest.Label()),
	}
	if err := e.store.AppendActivity(ctx, entry); err != nil {
		log.Printf("[pipeline] activity append failed for %s: %v", scoreID, err)
	}

	if dest != models.StagePitched {
		return
	}

	if err := e.reminders.CreateFollowUpReminders(ctx, e.userID, scoreID, e.now(), e.intervals); err != nil {
		reminderInvocations.WithLabelValues("error").Inc()
		log.Printf("[pipeline] follow-up reminder creation failed for %s: %v", scoreID, err)
		return
	}
	reminderInvocations.WithLabelValues("ok").Inc()
	e.notify.Success("Follow-up reminders created")
}

// ViewCard returns the card for a detail view and stamps its viewed-at
// timestamp. The stamp is silent-best-effort: a write failure is logged, not
// surfaced.
func (e *Engine) ViewCard(ctx context.Context, scoreID uuid.UUID) (models.OpportunityCard, bool) {
	e.mu.Lock()
	idx := e.indexOfLocked(scoreID)
	if idx < 0 {
		e.mu.Unlock()
		return models.OpportunityCard{}, false
	}
	at := e.now()
	e.cards[idx].ViewedAt = &at
	card := e.cards[idx]
	e.mu.Unlock()

	if err := e.store.MarkScoreViewed(ctx, scoreID, at); err != nil {
		log.Printf("[pipeline] viewed-at stamp failed for %s: %v", scoreID, err)
	}
	return card, true
}

// Columns groups the in-memory list by board stage, preserving list order
// within each column. Recomputed on every call.
func (e *Engine) Columns() []models.StageColumn {
	e.mu.Lock()
	defer e.mu.Unlock()

	columns := make([]models.StageColumn, 0, len(models.BoardStages))
	for _, stage := range models.BoardStages {
		col := models.StageColumn{
			Stage:       stage,
			Label:       stage.Label(),
			BorderColor: stage.BorderColor(),
			Background:  stage.Background(),
			Cards:       []models.OpportunityCard{},
		}
		for _, c := range e.cards {
			if c.PipelineStage == stage {
				col.Cards = append(col.Cards, c)
			}
		}
		columns = append(columns, col)
	}
	return columns
}

// Stats counts cards per stage, including legacy stages with no column.
func (e *Engine) Stats() models.StageStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := models.StageStats{}
	for _, c := range e.cards {
		stats[c.PipelineStage]++
	}
	return stats
}

// Cards returns a copy of the in-memory list.
func (e *Engine) Cards() []models.OpportunityCard {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.OpportunityCard, len(e.cards))
	copy(out, e.cards)
	return out
}

func (e *Engine) indexOfLocked(scoreID uuid.UUID) int {
	for i := range e.cards {
		if e.cards[i].ScoreID == scoreID {
			return i
		}
	}
	return -1
}

// reload is the rollback path: replace the list from the store, keeping the
// stale list if even the re-fetch fails.
func (e *Engine) reload(ctx context.Context) {
	cards, err := e.store.ListScoresForUser(ctx, e.userID)
	if err != nil {
		log.Printf("[pipeline] rollback reload failed for user %s: %v", e.userID, err)
		e.notify.Error("Failed to refresh your pipeline")
		return
	}
	e.mu.Lock()
	e.cards = cards
	e.mu.Unlock()
}
