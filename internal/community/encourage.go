package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/stride/internal/achievement"
	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/observability"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/validation"
)

// ReactionResult reports which way a reaction toggle went.
type ReactionResult struct {
	ActivityID string `json:"activity_id"`
	Emoji      string `json:"emoji"`
	Added      bool   `json:"added"`
}

// InboxEntry is a received encouragement with the sender's name resolved.
type InboxEntry struct {
	models.Encouragement
	FromDisplayName string `json:"from_display_name"`
}

// pair loads both members. The sender missing means the caller is not in the
// community; the recipient missing is reported by user id.
func pair(ctx context.Context, tx storage.Store, communityID, fromUserID, toUserID string) (models.CommunityMember, models.CommunityMember, error) {
	from, err := tx.GetMember(ctx, communityID, fromUserID)
	if err != nil {
		return models.CommunityMember{}, models.CommunityMember{}, err
	}
	to, err := tx.GetMember(ctx, communityID, toUserID)
	if apperrors.IsNotFound(err) {
		return models.CommunityMember{}, models.CommunityMember{}, apperrors.NotFound("community member", toUserID)
	}
	return from, to, err
}

// send writes the encouragement and its feed row in one transaction.
func (s *Service) send(ctx context.Context, kind constants.EncouragementType, fromUserID, communityID string, req validation.EncouragementRequest) (models.Encouragement, error) {
	if err := req.Validate(); err != nil {
		return models.Encouragement{}, err
	}
	if req.ToUserID == fromUserID {
		return models.Encouragement{}, apperrors.Invalid("to_user_id", "You can't send a %s to yourself", kind)
	}
	message := strings.TrimSpace(req.Message)
	activityType, verb := constants.ActivityCheerSent, "cheered"
	if kind == constants.EncouragementNudge {
		activityType, verb = constants.ActivityNudgeSent, "nudged"
		if message == "" {
			message = constants.DefaultNudgeMessage
		}
	} else if message == "" {
		message = constants.DefaultCheerMessage
	}
	day, err := s.tracker.Today(ctx)
	if err != nil {
		return models.Encouragement{}, err
	}

	now := s.tracker.Now()
	e := models.Encouragement{
		ID:          uuid.NewString(),
		Type:        kind,
		FromUserID:  fromUserID,
		ToUserID:    req.ToUserID,
		CommunityID: communityID,
		FeedID:      uuid.NewString(),
		Message:     message,
		Day:         day,
		CreatedAt:   now,
	}
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		_, to, err := pair(ctx, tx, communityID, fromUserID, req.ToUserID)
		if err != nil {
			return err
		}
		err = tx.AddEncouragement(ctx, e)
		if errors.Is(err, storage.ErrDuplicate) && kind == constants.EncouragementNudge {
			return apperrors.Conflict("You've already nudged this person today")
		}
		if err != nil {
			return err
		}
		return tx.AddActivity(ctx, models.Activity{
			ID:          e.FeedID,
			CommunityID: communityID,
			UserID:      fromUserID,
			Type:        activityType,
			Message:     fmt.Sprintf("%s %s", verb, to.DisplayName),
			CreatedAt:   now,
		})
	})
	if err != nil {
		return models.Encouragement{}, err
	}
	logger.Info("Sent encouragement", "type", kind, "community", communityID, "from", fromUserID, "to", req.ToUserID)
	return e, nil
}

// Cheer sends a cheer to another member and checks the sender's social
// achievements against the number of cheers sent.
func (s *Service) Cheer(ctx context.Context, fromUserID, communityID string, req validation.EncouragementRequest) (models.Encouragement, error) {
	e, err := s.send(ctx, constants.EncouragementCheer, fromUserID, communityID, req)
	if err != nil {
		return models.Encouragement{}, err
	}
	sent, err := s.store.CountEncouragementsSent(ctx, fromUserID, constants.EncouragementCheer)
	if err == nil {
		_, err = s.tracker.CheckAndUnlockAchievements(ctx, fromUserID, achievement.TriggerCheerSent, sent)
	}
	if err != nil {
		observability.RecordFanoutFailure("achievement")
		logger.Warn("Failed to check cheer achievements", "user", fromUserID, "error", err)
	}
	return e, nil
}

// Nudge reminds another member to log today. One nudge per sender and
// recipient per day, in the configured timezone.
func (s *Service) Nudge(ctx context.Context, fromUserID, communityID string, req validation.EncouragementRequest) (models.Encouragement, error) {
	return s.send(ctx, constants.EncouragementNudge, fromUserID, communityID, req)
}

// React toggles the user's emoji on a feed entry. Adding writes a feed row;
// removing deletes the reaction together with that row.
func (s *Service) React(ctx context.Context, userID, activityID string, req validation.ReactionRequest) (ReactionResult, error) {
	if err := req.Validate(); err != nil {
		return ReactionResult{}, err
	}
	emoji := strings.TrimSpace(req.Emoji)
	if emoji == "" {
		return ReactionResult{}, apperrors.Invalid("emoji", "emoji is required")
	}
	day, err := s.tracker.Today(ctx)
	if err != nil {
		return ReactionResult{}, err
	}
	result := ReactionResult{ActivityID: activityID, Emoji: emoji}

	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		target, err := tx.GetActivity(ctx, activityID)
		if err != nil {
			return err
		}
		if _, err := tx.GetMember(ctx, target.CommunityID, userID); err != nil {
			return err
		}

		existing, err := tx.GetReaction(ctx, activityID, userID, emoji)
		if err == nil {
			if err := tx.DeleteEncouragement(ctx, existing.ID); err != nil {
				return err
			}
			if existing.FeedID == "" {
				return nil
			}
			if err := tx.DeleteActivity(ctx, existing.FeedID); err != nil && !apperrors.IsNotFound(err) {
				return err
			}
			return nil
		}
		if !apperrors.IsNotFound(err) {
			return err
		}

		now := s.tracker.Now()
		e := models.Encouragement{
			ID:          uuid.NewString(),
			Type:        constants.EncouragementReaction,
			FromUserID:  userID,
			ToUserID:    target.UserID,
			CommunityID: target.CommunityID,
			ActivityID:  activityID,
			FeedID:      uuid.NewString(),
			Emoji:       emoji,
			Day:         day,
			CreatedAt:   now,
		}
		// Reacting to your own entry does not land in your inbox.
		if e.ToUserID == userID {
			e.Read = true
		}
		if err := tx.AddEncouragement(ctx, e); err != nil {
			return err
		}
		result.Added = true
		return tx.AddActivity(ctx, models.Activity{
			ID:          e.FeedID,
			CommunityID: target.CommunityID,
			UserID:      userID,
			Type:        constants.ActivityReaction,
			Message:     fmt.Sprintf("reacted %s", emoji),
			CreatedAt:   now,
		})
	})
	if errors.Is(err, storage.ErrDuplicate) {
		return ReactionResult{}, apperrors.Conflict("Reaction changed concurrently, please try again")
	}
	if err != nil {
		return ReactionResult{}, err
	}
	logger.Debug("Toggled reaction", "activity", activityID, "user", userID, "emoji", emoji, "added", result.Added)
	return result, nil
}

// Inbox lists encouragements the user received, newest first. Senders who have
// left the community they wrote from are shown as constants.UnknownSender.
func (s *Service) Inbox(ctx context.Context, userID string, unreadOnly bool) ([]InboxEntry, error) {
	received, err := s.store.ListEncouragements(ctx, userID, unreadOnly)
	if err != nil {
		return nil, err
	}
	type sender struct{ communityID, userID string }
	names := make(map[sender]string)
	out := make([]InboxEntry, 0, len(received))
	for _, e := range received {
		if e.FromUserID == userID {
			continue
		}
		key := sender{e.CommunityID, e.FromUserID}
		name, ok := names[key]
		if !ok {
			name = constants.UnknownSender
			m, err := s.store.GetMember(ctx, e.CommunityID, e.FromUserID)
			if err == nil && m.DisplayName != "" {
				name = m.DisplayName
			} else if err != nil && !apperrors.IsNotFound(err) {
				return nil, err
			}
			names[key] = name
		}
		out = append(out, InboxEntry{Encouragement: e, FromDisplayName: name})
	}
	return out, nil
}

// MarkRead marks the given received encouragements read, or all of them when
// ids is empty. Ids that belong to someone else are ignored.
func (s *Service) MarkRead(ctx context.Context, userID string, ids []string) (int, error) {
	return s.store.MarkEncouragementsRead(ctx, userID, ids)
}
