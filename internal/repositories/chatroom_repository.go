package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"event-chat-service/internal/models"
)

var (
	ErrChatroomNotFound = errors.New("chatroom not found")
	ErrChatroomExists   = errors.New("chatroom already exists for event")
)

const uniqueViolation = "23505"

// ChatroomRepository abstracts chatroom persistence.
type ChatroomRepository interface {
	CreateChatroom(ctx context.Context, eventID int) (models.Chatroom, error)
	GetChatroom(ctx context.Context, chatroomID int) (models.Chatroom, error)
	GetChatroomByEvent(ctx context.Context, eventID int) (models.Chatroom, error)
}

// ChatroomRepo is a sqlx implementation of ChatroomRepository.
type ChatroomRepo struct {
	db *sqlx.DB
}

// NewChatroomRepo constructs a ChatroomRepo.
func NewChatroomRepo(db *sqlx.DB) *ChatroomRepo {
	return &ChatroomRepo{db: db}
}

// CreateChatroom binds a new chatroom to the event. The unique constraint on
// event_id turns a second creation attempt into ErrChatroomExists.
func (r *ChatroomRepo) CreateChatroom(ctx context.Context, eventID int) (models.Chatroom, error) {
	var room models.Chatroom
	err := r.db.QueryRowxContext(ctx, `INSERT INTO chatrooms (event_id) VALUES ($1) RETURNING id, event_id, created_at`, eventID).
		Scan(&room.ID, &room.EventID, &room.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Chatroom{}, ErrChatroomExists
		}
		return models.Chatroom{}, err
	}
	return room, nil
}

// GetChatroom fetches a chatroom by id.
func (r *ChatroomRepo) GetChatroom(ctx context.Context, chatroomID int) (models.Chatroom, error) {
	var room models.Chatroom
	err := r.db.GetContext(ctx, &room, `SELECT id, event_id, created_at FROM chatrooms WHERE id=$1`, chatroomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chatroom{}, ErrChatroomNotFound
	}
	return room, err
}

// GetChatroomByEvent fetches the chatroom bound to an event.
func (r *ChatroomRepo) GetChatroomByEvent(ctx context.Context, eventID int) (models.Chatroom, error) {
	var room models.Chatroom
	err := r.db.GetContext(ctx, &room, `SELECT id, event_id, created_at FROM chatrooms WHERE event_id=$1`, eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chatroom{}, ErrChatroomNotFound
	}
	return room, err
}
