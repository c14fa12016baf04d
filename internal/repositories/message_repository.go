package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"event-chat-service/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository defines interactions for chatroom messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, chatroomID, userID int, content string) (models.Message, error)
	GetMessage(ctx context.Context, messageID int) (models.Message, error)
	UpdateMessagePinned(ctx context.Context, messageID int, pinned bool) (models.Message, error)
	ListMessagesByChatroom(ctx context.Context, chatroomID int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a message; pinned always starts false.
func (r *MessageRepo) CreateMessage(ctx context.Context, chatroomID, userID int, content string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (chatroom_id, user_id, content) VALUES ($1, $2, $3) RETURNING id, chatroom_id, user_id, content, pinned, created_at`, chatroomID, userID, content).
		Scan(&msg.ID, &msg.ChatroomID, &msg.UserID, &msg.Content, &msg.Pinned, &msg.CreatedAt)
	return msg, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT id, chatroom_id, user_id, content, pinned, created_at FROM messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// UpdateMessagePinned sets the pinned flag and returns the updated row.
func (r *MessageRepo) UpdateMessagePinned(ctx context.Context, messageID int, pinned bool) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `UPDATE messages SET pinned=$2 WHERE id=$1 RETURNING id, chatroom_id, user_id, content, pinned, created_at`, messageID, pinned).
		Scan(&msg.ID, &msg.ChatroomID, &msg.UserID, &msg.Content, &msg.Pinned, &msg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListMessagesByChatroom returns the full ordered history of a chatroom.
// created_at is authoritative, tie-broken by id.
func (r *MessageRepo) ListMessagesByChatroom(ctx context.Context, chatroomID int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, chatroom_id, user_id, content, pinned, created_at FROM messages WHERE chatroom_id=$1 ORDER BY created_at ASC, id ASC`, chatroomID)
	return msgs, err
}
