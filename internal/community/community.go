// Package community manages communities, memberships, leaderboards and the
// activity feed. Scores come from the tracker's calculators.
package community

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/stride/internal/achievement"
	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/tracker"
	"github.com/julianstephens/stride/internal/validation"
)

type Service struct {
	tracker *tracker.Service
	store   storage.Provider
	newCode func() (string, error)
}

func New(t *tracker.Service) *Service {
	return &Service{tracker: t, store: t.Store(), newCode: InviteCode}
}

// InviteCode returns a random code drawn from constants.InviteCodeAlphabet.
func InviteCode() (string, error) {
	alphabet := constants.InviteCodeAlphabet
	limit := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	for i := 0; i < constants.InviteCodeLength; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generating invite code: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// withCode runs fn with fresh invite codes until it stops failing with
// storage.ErrDuplicate, up to constants.InviteCodeMaxAttempts times.
func (s *Service) withCode(fn func(code string) error) (string, error) {
	for attempt := 1; attempt <= constants.InviteCodeMaxAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		err = fn(code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return "", err
		}
		logger.Debug("Invite code collision, retrying", "attempt", attempt)
	}
	return "", apperrors.Conflict("Could not generate a unique invite code, please try again")
}

func hasGoalFor(goals []models.Goal, goalType constants.GoalType) bool {
	if goalType == "" {
		return len(goals) > 0
	}
	for _, g := range goals {
		if g.Type == goalType {
			return true
		}
	}
	return false
}

func (s *Service) requireGoal(ctx context.Context, userID string, goalType constants.GoalType) error {
	goals, err := s.store.ListGoals(ctx, userID)
	if err != nil {
		return err
	}
	if hasGoalFor(goals, goalType) {
		return nil
	}
	if goalType == "" {
		return apperrors.Conflict("Create a goal before joining a community")
	}
	return apperrors.Conflict("This community requires a %s goal", goalType)
}

// Create makes a community with the user as its admin.
func (s *Service) Create(ctx context.Context, userID, displayName string, req validation.CommunityRequest) (models.Community, error) {
	if err := req.Validate(); err != nil {
		return models.Community{}, err
	}
	if err := s.requireGoal(ctx, userID, req.GoalType); err != nil {
		return models.Community{}, err
	}
	maxMembers := req.MaxMembers
	if maxMembers == 0 {
		maxMembers = constants.DefaultMaxMembers
	}
	now := s.tracker.Now()
	c := models.Community{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		GoalType:    req.GoalType,
		CreatedBy:   userID,
		MaxMembers:  maxMembers,
		CreatedAt:   now,
	}

	code, err := s.withCode(func(code string) error {
		c.InviteCode = code
		return s.store.WithTx(ctx, func(tx storage.Store) error {
			if err := tx.AddCommunity(ctx, c); err != nil {
				return err
			}
			return tx.AddMember(ctx, models.CommunityMember{
				CommunityID: c.ID,
				UserID:      userID,
				DisplayName: displayName,
				Role:        constants.CommunityRoleAdmin,
				JoinedAt:    now,
			})
		})
	})
	if err != nil {
		return models.Community{}, err
	}
	c.InviteCode = code
	logger.Info("Created community", "community", c.ID, "user", userID)

	s.afterMembership(ctx, userID, achievement.TriggerCommunityCreated)
	return c, nil
}

// Join adds the user to the community behind inviteCode (case-insensitive).
func (s *Service) Join(ctx context.Context, userID, displayName, inviteCode string) (models.Community, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return models.Community{}, apperrors.Invalid("invite_code", "invite code is required")
	}

	var c models.Community
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		var err error
		c, err = tx.GetCommunityByInviteCode(ctx, code)
		if apperrors.IsNotFound(err) {
			return apperrors.NotFound("invite code", code)
		}
		if err != nil {
			return err
		}

		goals, err := tx.ListGoals(ctx, userID)
		if err != nil {
			return err
		}
		if !hasGoalFor(goals, c.GoalType) {
			if c.GoalType == "" {
				return apperrors.Conflict("Create a goal before joining a community")
			}
			return apperrors.Conflict("This community requires a %s goal", c.GoalType)
		}

		if _, err := tx.GetMember(ctx, c.ID, userID); err == nil {
			return apperrors.Conflict("You are already a member of this community")
		} else if !apperrors.IsNotFound(err) {
			return err
		}
		members, err := tx.ListMembers(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(members) >= c.MaxMembers {
			return apperrors.Conflict("Community is full (%d members)", c.MaxMembers)
		}

		err = tx.AddMember(ctx, models.CommunityMember{
			CommunityID: c.ID,
			UserID:      userID,
			DisplayName: displayName,
			Role:        constants.CommunityRoleMember,
			JoinedAt:    s.tracker.Now(),
		})
		if errors.Is(err, storage.ErrDuplicate) {
			return apperrors.Conflict("You are already a member of this community")
		}
		return err
	})
	if err != nil {
		return models.Community{}, err
	}
	logger.Info("Joined community", "community", c.ID, "user", userID)

	if err := s.store.AddActivity(ctx, models.Activity{
		ID:          uuid.NewString(),
		CommunityID: c.ID,
		UserID:      userID,
		Type:        constants.ActivityMemberJoined,
		Message:     "joined the community",
		CreatedAt:   s.tracker.Now(),
	}); err != nil {
		observability.RecordFanoutFailure("activity")
		logger.Warn("Failed to write join activity", "community", c.ID, "user", userID, "error", err)
	}
	s.afterMembership(ctx, userID, achievement.TriggerCommunityJoined)
	return c, nil
}

// afterMembership feeds the user's membership count to the social achievements.
func (s *Service) afterMembership(ctx context.Context, userID string, trigger achievement.Trigger) {
	communities, err := s.store.ListUserCommunities(ctx, userID)
	if err == nil {
		_, err = s.tracker.CheckAndUnlockAchievements(ctx, userID, trigger, len(communities))
	}
	if err != nil {
		observability.RecordFanoutFailure("achievement")
		logger.Warn("Failed to check social achievements", "user", userID, "trigger", trigger, "error", err)
	}
}

// Leave removes the user from the community. The only admin cannot leave
// while other members remain.
func (s *Service) Leave(ctx context.Context, userID, communityID string) error {
	return s.store.WithTx(ctx, func(tx storage.Store) error {
		m, err := tx.GetMember(ctx, communityID, userID)
		if err != nil {
			return err
		}
		if m.Role == constants.CommunityRoleAdmin {
			members, err := tx.ListMembers(ctx, communityID)
			if err != nil {
				return err
			}
			admins := 0
			for _, other := range members {
				if other.Role == constants.CommunityRoleAdmin {
					admins++
				}
			}
			if admins == 1 && len(members) > 1 {
				return apperrors.Conflict("You are the only admin; another admin is needed before you can leave")
			}
		}
		if err := tx.RemoveMember(ctx, communityID, userID); err != nil {
			return err
		}
		logger.Info("Left community", "community", communityID, "user", userID)
		return nil
	})
}

// RegenerateInviteCode replaces the community's invite code. Admins only.
func (s *Service) RegenerateInviteCode(ctx context.Context, userID, communityID string) (string, error) {
	m, err := s.store.GetMember(ctx, communityID, userID)
	if err != nil {
		return "", err
	}
	if m.Role != constants.CommunityRoleAdmin {
		return "", apperrors.Conflict("Only admins can regenerate the invite code")
	}
	return s.withCode(func(code string) error {
		return s.store.UpdateInviteCode(ctx, communityID, code)
	})
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Community, error) {
	return s.store.ListUserCommunities(ctx, userID)
}

// Members lists the community's members. The caller must be one of them.
func (s *Service) Members(ctx context.Context, userID, communityID string) ([]models.CommunityMember, error) {
	if _, err := s.store.GetMember(ctx, communityID, userID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, communityID)
}
