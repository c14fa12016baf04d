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
	ErrAccessNotFound = errors.New("access not found")
	ErrAccessExists   = errors.New("access already exists for user and chatroom")
)

// AccessRepository abstracts access-grant persistence.
type AccessRepository interface {
	GetAccess(ctx context.Context, userID, chatroomID int) (models.Access, error)
	CreateAccess(ctx context.Context, userID, chatroomID int, role models.Role) (models.Access, error)
	UpdateAccessRole(ctx context.Context, accessID int, role models.Role) (models.Access, error)
	DeleteAccess(ctx context.Context, accessID int) error
	ListParticipants(ctx context.Context, chatroomID int) ([]models.Participant, error)
}

// AccessRepo is a sqlx implementation of AccessRepository.
type AccessRepo struct {
	db *sqlx.DB
}

// NewAccessRepo constructs an AccessRepo.
func NewAccessRepo(db *sqlx.DB) *AccessRepo {
	return &AccessRepo{db: db}
}

// GetAccess fetches the single grant for a (user, chatroom) pair.
func (r *AccessRepo) GetAccess(ctx context.Context, userID, chatroomID int) (models.Access, error) {
	var access models.Access
	err := r.db.GetContext(ctx, &access, `SELECT id, user_id, chatroom_id, role FROM accesses WHERE user_id=$1 AND chatroom_id=$2`, userID, chatroomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Access{}, ErrAccessNotFound
	}
	return access, err
}

// CreateAccess stores a new grant. The unique constraint on
// (user_id, chatroom_id) turns a duplicate grant into ErrAccessExists.
func (r *AccessRepo) CreateAccess(ctx context.Context, userID, chatroomID int, role models.Role) (models.Access, error) {
	var access models.Access
	err := r.db.QueryRowxContext(ctx, `INSERT INTO accesses (user_id, chatroom_id, role) VALUES ($1, $2, $3) RETURNING id, user_id, chatroom_id, role`, userID, chatroomID, role).
		Scan(&access.ID, &access.UserID, &access.ChatroomID, &access.Role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Access{}, ErrAccessExists
		}
		return models.Access{}, err
	}
	return access, nil
}

// UpdateAccessRole replaces the role on an existing grant.
func (r *AccessRepo) UpdateAccessRole(ctx context.Context, accessID int, role models.Role) (models.Access, error) {
	var access models.Access
	err := r.db.QueryRowxContext(ctx, `UPDATE accesses SET role=$2 WHERE id=$1 RETURNING id, user_id, chatroom_id, role`, accessID, role).
		Scan(&access.ID, &access.UserID, &access.ChatroomID, &access.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Access{}, ErrAccessNotFound
	}
	return access, err
}

// DeleteAccess removes a grant.
func (r *AccessRepo) DeleteAccess(ctx context.Context, accessID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accesses WHERE id=$1`, accessID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrAccessNotFound
	}
	return nil
}

// ListParticipants returns every grant holder of a chatroom with their
// current username.
func (r *AccessRepo) ListParticipants(ctx context.Context, chatroomID int) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.SelectContext(ctx, &participants, `SELECT a.user_id, u.username, a.role FROM accesses a INNER JOIN users u ON u.id = a.user_id WHERE a.chatroom_id=$1 ORDER BY u.username ASC`, chatroomID)
	return participants, err
}
