package community

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	apperrors "github.com/julianstephens/stride/internal/errors"
	"github.com/julianstephens/stride/internal/models"
	"github.com/julianstephens/stride/internal/stats"
	"github.com/julianstephens/stride/internal/utils"
)

// Leaderboard ranks the community's members by kind, highest score first.
// Ties keep member join order; ranks are 1-based positions.
func (s *Service) Leaderboard(ctx context.Context, userID, communityID string, kind constants.LeaderboardKind) ([]models.LeaderboardEntry, error) {
	if kind == "" {
		kind = constants.LeaderboardStreak
	}
	switch kind {
	case constants.LeaderboardStreak, constants.LeaderboardCompletion, constants.LeaderboardActivity:
	default:
		return nil, apperrors.Invalid("kind", "unknown leaderboard %q (streak, completion, activity)", kind)
	}

	members, err := s.Members(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}
	today, err := s.tracker.Today(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		var score float64
		switch kind {
		case constants.LeaderboardStreak:
			score, err = s.bestStreak(ctx, m.UserID)
		case constants.LeaderboardCompletion:
			score, err = s.completion(ctx, m.UserID, today)
		case constants.LeaderboardActivity:
			score, err = s.activity(ctx, communityID, m.UserID)
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.LeaderboardEntry{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Score:       score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (s *Service) bestStreak(ctx context.Context, userID string) (float64, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return 0, err
	}
	best := 0
	for _, h := range habits {
		st, err := s.tracker.GetStreak(ctx, h.ID)
		if err != nil {
			return 0, err
		}
		best = max(best, st.Current)
	}
	return float64(best), nil
}

func (s *Service) completion(ctx context.Context, userID, today string) (float64, error) {
	from, to := stats.Window(today, constants.LeaderboardWindowDays)
	logs, err := s.store.ListUserLogs(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}
	return float64(stats.CompletionRate(logs, today, constants.LeaderboardWindowDays)), nil
}

func (s *Service) activity(ctx context.Context, communityID, userID string) (float64, error) {
	since := s.tracker.Now().Add(-constants.LeaderboardWindowDays * 24 * time.Hour)
	n, err := s.store.CountActivitySince(ctx, communityID, userID, since)
	return float64(n), err
}

// FeedEntry is an activity with the member's current display name.
type FeedEntry struct {
	models.Activity
	DisplayName string     `json:"display_name"`
	Day         string     `json:"day"`
	Reactions   []Reaction `json:"reactions"`
}

// Reaction counts one emoji on a feed entry. Mine is set when the caller
// left it.
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
	Mine  bool   `json:"mine"`
}

func reactionsOrEmpty(r []Reaction) []Reaction {
	if r == nil {
		return []Reaction{}
	}
	return r
}

// groupReactions buckets reactions per feed entry in first-seen emoji order.
func groupReactions(reactions []models.Encouragement, userID string) map[string][]Reaction {
	out := make(map[string][]Reaction)
	for _, r := range reactions {
		list := out[r.ActivityID]
		i := slices.IndexFunc(list, func(x Reaction) bool { return x.Emoji == r.Emoji })
		if i < 0 {
			list = append(list, Reaction{Emoji: r.Emoji})
			i = len(list) - 1
		}
		list[i].Count++
		if r.FromUserID == userID {
			list[i].Mine = true
		}
		out[r.ActivityID] = list
	}
	return out
}

// Feed returns the community's newest activity. The caller must be a member.
func (s *Service) Feed(ctx context.Context, userID, communityID string, limit int) ([]FeedEntry, error) {
	members, err := s.Members(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.UserID] = m.DisplayName
	}
	activity, err := s.store.ListActivity(ctx, communityID, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(activity))
	for _, a := range activity {
		ids = append(ids, a.ID)
	}
	reactions, err := s.store.ListReactions(ctx, ids)
	if err != nil {
		return nil, err
	}
	byActivity := groupReactions(reactions, userID)

	out := make([]FeedEntry, 0, len(activity))
	for _, a := range activity {
		name, ok := names[a.UserID]
		if !ok {
			name = "former member"
		}
		out = append(out, FeedEntry{
			Activity:    a,
			DisplayName: name,
			Day:         utils.FormatDay(a.CreatedAt),
			Reactions:   reactionsOrEmpty(byActivity[a.ID]),
		})
	}
	return out, nil
}
