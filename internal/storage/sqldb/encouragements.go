package sqldb

import (
	"context"
	"fmt"

	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/models"
)

const encouragementColumns = "id, type, from_user_id, to_user_id, community_id, activity_id, feed_id, emoji, message, day, is_read, created_at"

func scanEncouragement(row scanner) (models.Encouragement, error) {
	var e models.Encouragement
	var kind, createdAt string
	err := row.Scan(&e.ID, &kind, &e.FromUserID, &e.ToUserID, &e.CommunityID, &e.ActivityID, &e.FeedID,
		&e.Emoji, &e.Message, &e.Day, &e.Read, &createdAt)
	if err != nil {
		return models.Encouragement{}, err
	}
	e.Type = constants.EncouragementType(kind)
	if e.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Encouragement{}, err
	}
	return e, nil
}

func (d *DB) listEncouragements(ctx context.Context, query string, args ...any) ([]models.Encouragement, error) {
	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Encouragement
	for rows.Next() {
		e, err := scanEncouragement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AddEncouragement returns storage.ErrDuplicate for a repeated nudge on the
// same day or a repeated reaction.
func (d *DB) AddEncouragement(ctx context.Context, e models.Encouragement) error {
	_, err := d.exec(ctx, "INSERT INTO encouragements ("+encouragementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, string(e.Type), e.FromUserID, e.ToUserID, e.CommunityID, e.ActivityID, e.FeedID,
		e.Emoji, e.Message, e.Day, e.Read, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting encouragement: %w", err)
	}
	return nil
}

func (d *DB) GetReaction(ctx context.Context, activityID, fromUserID, emoji string) (models.Encouragement, error) {
	e, err := scanEncouragement(d.queryRow(ctx, `
		SELECT `+encouragementColumns+` FROM encouragements
		WHERE type = ? AND activity_id = ? AND from_user_id = ? AND emoji = ?`,
		string(constants.EncouragementReaction), activityID, fromUserID, emoji))
	if err != nil {
		return models.Encouragement{}, notFound(err, "reaction", emoji)
	}
	return e, nil
}

func (d *DB) DeleteEncouragement(ctx context.Context, id string) error {
	res, err := d.exec(ctx, "DELETE FROM encouragements WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting encouragement: %w", err)
	}
	return requireRow(res, "encouragement", id)
}

func (d *DB) CountEncouragementsSent(ctx context.Context, fromUserID string, kind constants.EncouragementType) (int, error) {
	var n int
	err := d.queryRow(ctx, "SELECT COUNT(*) FROM encouragements WHERE from_user_id = ? AND type = ?",
		fromUserID, string(kind)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting encouragements: %w", err)
	}
	return n, nil
}

// ListEncouragements returns the recipient's inbox, newest first. Reactions
// are included; they point at the feed entry they were left on.
func (d *DB) ListEncouragements(ctx context.Context, toUserID string, unreadOnly bool) ([]models.Encouragement, error) {
	query := "SELECT " + encouragementColumns + " FROM encouragements WHERE to_user_id = ?"
	args := []any{toUserID}
	if unreadOnly {
		query += " AND is_read = ?"
		args = append(args, false)
	}
	query += " ORDER BY created_at DESC, id DESC"
	return d.listEncouragements(ctx, query, args...)
}

func (d *DB) MarkEncouragementsRead(ctx context.Context, toUserID string, ids []string) (int, error) {
	query := "UPDATE encouragements SET is_read = ? WHERE to_user_id = ? AND is_read = ?"
	args := []any{true, toUserID, false}
	if len(ids) > 0 {
		query += " AND id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	res, err := d.exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("marking encouragements read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (d *DB) ListReactions(ctx context.Context, activityIDs []string) ([]models.Encouragement, error) {
	if len(activityIDs) == 0 {
		return nil, nil
	}
	args := []any{string(constants.EncouragementReaction)}
	for _, id := range activityIDs {
		args = append(args, id)
	}
	return d.listEncouragements(ctx, `
		SELECT `+encouragementColumns+` FROM encouragements
		WHERE type = ? AND activity_id IN (`+placeholders(len(activityIDs))+`)
		ORDER BY created_at, id`, args...)
}
