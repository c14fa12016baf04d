package chat

import (
	"context"
	"errors"

	"event-chat-service/internal/auth"
	"event-chat-service/internal/models"
	"event-chat-service/internal/repositories"
)

// AccessResolution is the outcome of resolving a token against an event's
// chatroom. Access is nil when the user holds no grant; that is a valid
// state, not an error.
type AccessResolution struct {
	Identity auth.Identity
	Chatroom models.Chatroom
	Access   *models.Access
}

// AccessService resolves roles and manages access grants.
type AccessService struct {
	verifier  auth.TokenVerifier
	events    repositories.EventRepository
	chatrooms repositories.ChatroomRepository
	accesses  repositories.AccessRepository
	users     repositories.UserRepository
}

// NewAccessService constructs an AccessService.
func NewAccessService(verifier auth.TokenVerifier, events repositories.EventRepository, chatrooms repositories.ChatroomRepository, accesses repositories.AccessRepository, users repositories.UserRepository) *AccessService {
	return &AccessService{
		verifier:  verifier,
		events:    events,
		chatrooms: chatrooms,
		accesses:  accesses,
		users:     users,
	}
}

// ResolveAccess resolves the caller's identity and grant for the event's
// chatroom. Fails with NotFound when the event or its chatroom is missing;
// absence of a grant yields a nil Access without error.
func (s *AccessService) ResolveAccess(ctx context.Context, token string, eventID int) (AccessResolution, error) {
	identity, err := s.verifier.ResolveIdentity(ctx, token)
	if err != nil {
		return AccessResolution{}, Unauthenticated(err)
	}

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return AccessResolution{}, NotFound("event not found")
		}
		return AccessResolution{}, StorageFailure(err)
	}

	room, err := s.chatrooms.GetChatroomByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatroomNotFound) {
			return AccessResolution{}, NotFound("chatroom not found")
		}
		return AccessResolution{}, StorageFailure(err)
	}

	access, err := s.RoleFor(ctx, identity.UserID, room.ID)
	if err != nil {
		return AccessResolution{}, err
	}

	return AccessResolution{Identity: identity, Chatroom: room, Access: access}, nil
}

// RoleFor returns the grant for a (user, chatroom) pair, or nil when none
// exists.
func (s *AccessService) RoleFor(ctx context.Context, userID, chatroomID int) (*models.Access, error) {
	access, err := s.accesses.GetAccess(ctx, userID, chatroomID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccessNotFound) {
			return nil, nil
		}
		return nil, StorageFailure(err)
	}
	return &access, nil
}

// Grant hands a role to another user. Caller must be admin or organizer;
// organizer itself is never assignable this way.
func (s *AccessService) Grant(ctx context.Context, token string, eventID, targetUserID int, role models.Role) (models.Access, error) {
	res, err := s.authorizeGrant(ctx, token, eventID, role)
	if err != nil {
		return models.Access{}, err
	}

	if _, err := s.users.GetUser(ctx, targetUserID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.Access{}, NotFound("user not found")
		}
		return models.Access{}, StorageFailure(err)
	}

	return s.createAccess(ctx, targetUserID, res.Chatroom.ID, role)
}

// GrantByUsername is Grant with the target named by username instead of id.
// The permission check runs before the lookup so an unprivileged caller
// learns nothing about which usernames exist.
func (s *AccessService) GrantByUsername(ctx context.Context, token string, eventID int, username string, role models.Role) (models.Access, error) {
	res, err := s.authorizeGrant(ctx, token, eventID, role)
	if err != nil {
		return models.Access{}, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return models.Access{}, NotFound("user not found")
		}
		return models.Access{}, StorageFailure(err)
	}

	return s.createAccess(ctx, user.ID, res.Chatroom.ID, role)
}

func (s *AccessService) authorizeGrant(ctx context.Context, token string, eventID int, role models.Role) (AccessResolution, error) {
	res, err := s.resolveForMutation(ctx, token, eventID)
	if err != nil {
		return AccessResolution{}, err
	}
	if res.Access == nil || !res.Access.Role.CanModerate() {
		return AccessResolution{}, Deny()
	}
	if !role.Assignable() {
		return AccessResolution{}, InvalidInput("role cannot be granted")
	}
	return res, nil
}

func (s *AccessService) createAccess(ctx context.Context, userID, chatroomID int, role models.Role) (models.Access, error) {
	access, err := s.accesses.CreateAccess(ctx, userID, chatroomID, role)
	if err != nil {
		if errors.Is(err, repositories.ErrAccessExists) {
			return models.Access{}, AlreadyExists("user already has access")
		}
		return models.Access{}, StorageFailure(err)
	}
	return access, nil
}

// UpdateRole replaces another user's role. Caller must be admin or
// organizer; the new role is restricted to the assignable set.
func (s *AccessService) UpdateRole(ctx context.Context, token string, eventID, targetUserID int, role models.Role) (models.Access, error) {
	res, err := s.resolveForMutation(ctx, token, eventID)
	if err != nil {
		return models.Access{}, err
	}
	if res.Access == nil || !res.Access.Role.CanModerate() {
		return models.Access{}, Deny()
	}
	if !role.Assignable() {
		return models.Access{}, InvalidInput("role cannot be assigned")
	}

	target, err := s.accesses.GetAccess(ctx, targetUserID, res.Chatroom.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccessNotFound) {
			return models.Access{}, NotFound("access not found")
		}
		return models.Access{}, StorageFailure(err)
	}

	updated, err := s.accesses.UpdateAccessRole(ctx, target.ID, role)
	if err != nil {
		if errors.Is(err, repositories.ErrAccessNotFound) {
			return models.Access{}, NotFound("access not found")
		}
		return models.Access{}, StorageFailure(err)
	}
	return updated, nil
}

// Revoke removes the caller's own grant. Any access holder may do this.
func (s *AccessService) Revoke(ctx context.Context, token string, eventID int) error {
	res, err := s.resolveForMutation(ctx, token, eventID)
	if err != nil {
		return err
	}
	if res.Access == nil {
		return Deny()
	}

	if err := s.accesses.DeleteAccess(ctx, res.Access.ID); err != nil {
		if errors.Is(err, repositories.ErrAccessNotFound) {
			return NotFound("access not found")
		}
		return StorageFailure(err)
	}
	return nil
}

// Participants returns the current grant holders of the event's chatroom.
// An event without a chatroom is indistinguishable from one the caller may
// not see.
func (s *AccessService) Participants(ctx context.Context, eventID int) ([]models.Participant, error) {
	room, err := s.chatrooms.GetChatroomByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrChatroomNotFound) {
			return nil, Deny()
		}
		return nil, StorageFailure(err)
	}

	participants, err := s.accesses.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, StorageFailure(err)
	}
	return participants, nil
}

// resolveForMutation is ResolveAccess with the uniform collapse applied:
// a missing event or chatroom is reported as the same forbidden outcome a
// missing permission would produce.
func (s *AccessService) resolveForMutation(ctx context.Context, token string, eventID int) (AccessResolution, error) {
	res, err := s.ResolveAccess(ctx, token, eventID)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return AccessResolution{}, Deny()
		}
		return AccessResolution{}, err
	}
	return res, nil
}
