package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"event-chat-service/internal/models"
)

var ErrEventNotFound = errors.New("event not found")

// EventRepository reads event records owned by the event-management service.
type EventRepository interface {
	GetEvent(ctx context.Context, eventID int) (models.Event, error)
}

// EventRepo is a sqlx implementation of EventRepository.
type EventRepo struct {
	db *sqlx.DB
}

// NewEventRepo constructs an EventRepo.
func NewEventRepo(db *sqlx.DB) *EventRepo {
	return &EventRepo{db: db}
}

// GetEvent fetches an event by id.
func (r *EventRepo) GetEvent(ctx context.Context, eventID int) (models.Event, error) {
	var event models.Event
	err := r.db.GetContext(ctx, &event, `SELECT id, title, description, begins_at, ends_at, address, city, category, created_at FROM events WHERE id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return event, err
}
