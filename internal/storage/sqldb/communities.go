package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

const communityColumns = "id, name, description, goal_type, invite_code, created_by, max_members, created_at"

func scanCommunity(row scanner) (models.Community, error) {
	var c models.Community
	var goalType, createdAt string
	err := row.Scan(&c.ID, &c.Name, &c.Description, &goalType, &c.InviteCode, &c.CreatedBy, &c.MaxMembers, &createdAt)
	if err != nil {
		return models.Community{}, err
	}
	c.GoalType = constants.GoalType(goalType)
	if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Community{}, err
	}
	return c, nil
}

// AddCommunity returns storage.ErrDuplicate when the invite code is taken.
func (d *DB) AddCommunity(ctx context.Context, c models.Community) error {
	_, err := d.exec(ctx, "INSERT INTO communities ("+communityColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Description, string(c.GoalType), c.InviteCode, c.CreatedBy, c.MaxMembers, formatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting community: %w", err)
	}
	return nil
}

func (d *DB) GetCommunity(ctx context.Context, id string) (models.Community, error) {
	c, err := scanCommunity(d.queryRow(ctx, "SELECT "+communityColumns+" FROM communities WHERE id = ?", id))
	if err != nil {
		return models.Community{}, notFound(err, "community", id)
	}
	return c, nil
}

func (d *DB) GetCommunityByInviteCode(ctx context.Context, code string) (models.Community, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	c, err := scanCommunity(d.queryRow(ctx, "SELECT "+communityColumns+" FROM communities WHERE invite_code = ?", code))
	if err != nil {
		return models.Community{}, notFound(err, "invite code", code)
	}
	return c, nil
}

func (d *DB) ListUserCommunities(ctx context.Context, userID string) ([]models.Community, error) {
	rows, err := d.query(ctx, `
		SELECT c.id, c.name, c.description, c.goal_type, c.invite_code, c.created_by, c.max_members, c.created_at
		FROM communities c JOIN community_members m ON m.community_id = c.id
		WHERE m.user_id = ? ORDER BY m.joined_at, c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Community
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) UpdateInviteCode(ctx context.Context, communityID, code string) error {
	res, err := d.exec(ctx, "UPDATE communities SET invite_code = ? WHERE id = ?", code, communityID)
	if err != nil {
		return fmt.Errorf("updating invite code: %w", err)
	}
	return requireRow(res, "community", communityID)
}

const memberColumns = "community_id, user_id, display_name, role, joined_at"

func scanMember(row scanner) (models.CommunityMember, error) {
	var m models.CommunityMember
	var joinedAt string
	err := row.Scan(&m.CommunityID, &m.UserID, &m.DisplayName, &m.Role, &joinedAt)
	if err != nil {
		return models.CommunityMember{}, err
	}
	if m.JoinedAt, err = parseTime(joinedAt, "joined_at"); err != nil {
		return models.CommunityMember{}, err
	}
	return m, nil
}

// AddMember returns storage.ErrDuplicate when the user is already a member.
func (d *DB) AddMember(ctx context.Context, m models.CommunityMember) error {
	_, err := d.exec(ctx, "INSERT INTO community_members ("+memberColumns+") VALUES (?, ?, ?, ?, ?)",
		m.CommunityID, m.UserID, m.DisplayName, m.Role, formatTime(m.JoinedAt))
	if err != nil {
		return fmt.Errorf("inserting community member: %w", err)
	}
	return nil
}

func (d *DB) GetMember(ctx context.Context, communityID, userID string) (models.CommunityMember, error) {
	m, err := scanMember(d.queryRow(ctx,
		"SELECT "+memberColumns+" FROM community_members WHERE community_id = ? AND user_id = ?", communityID, userID))
	if err != nil {
		return models.CommunityMember{}, notFound(err, "community member", userID)
	}
	return m, nil
}

func (d *DB) ListMembers(ctx context.Context, communityID string) ([]models.CommunityMember, error) {
	rows, err := d.query(ctx,
		"SELECT "+memberColumns+" FROM community_members WHERE community_id = ? ORDER BY joined_at, user_id", communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CommunityMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (d *DB) RemoveMember(ctx context.Context, communityID, userID string) error {
	res, err := d.exec(ctx, "DELETE FROM community_members WHERE community_id = ? AND user_id = ?", communityID, userID)
	if err != nil {
		return fmt.Errorf("removing community member: %w", err)
	}
	return requireRow(res, "community member", userID)
}

const activityColumns = "id, community_id, user_id, type, message, created_at"

func scanActivity(row scanner) (models.Activity, error) {
	var a models.Activity
	var activityType, createdAt string
	if err := row.Scan(&a.ID, &a.CommunityID, &a.UserID, &activityType, &a.Message, &createdAt); err != nil {
		return models.Activity{}, err
	}
	a.Type = constants.ActivityType(activityType)
	var err error
	if a.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Activity{}, err
	}
	return a, nil
}

func (d *DB) AddActivity(ctx context.Context, a models.Activity) error {
	_, err := d.exec(ctx, `
		INSERT INTO activity_feed (id, community_id, user_id, type, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.CommunityID, a.UserID, string(a.Type), a.Message, formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// ListActivity returns the newest entries first.
func (d *DB) ListActivity(ctx context.Context, communityID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = constants.DefaultFeedLimit
	}
	rows, err := d.query(ctx, `
		SELECT `+activityColumns+` FROM activity_feed
		WHERE community_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, communityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *DB) CountActivitySince(ctx context.Context, communityID, userID string, since time.Time) (int, error) {
	var n int
	err := d.queryRow(ctx, `
		SELECT COUNT(*) FROM activity_feed
		WHERE community_id = ? AND user_id = ? AND created_at >= ?`,
		communityID, userID, formatTime(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting activity: %w", err)
	}
	return n, nil
}

func (d *DB) GetActivity(ctx context.Context, id string) (models.Activity, error) {
	a, err := scanActivity(d.queryRow(ctx, "SELECT "+activityColumns+" FROM activity_feed WHERE id = ?", id))
	if err != nil {
		return models.Activity{}, notFound(err, "activity", id)
	}
	return a, nil
}

func (d *DB) DeleteActivity(ctx context.Context, id string) error {
	res, err := d.exec(ctx, "DELETE FROM activity_feed WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	return requireRow(res, "activity", id)
}
