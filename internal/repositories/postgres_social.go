package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/familygallery/backend/internal/db"
	"github.com/familygallery/backend/internal/models"
)

// PostgresCommentRepository provides PostgreSQL-backed persistence for comments.
type PostgresCommentRepository struct {
	pool db.Pool
}

// NewPostgresCommentRepository constructs a comment repository backed by PostgreSQL.
func NewPostgresCommentRepository(pool db.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

// Create persists a comment or reply.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment models.Comment) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO comments (id, photo_id, user_id, content, parent_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, comment.ID, comment.PhotoID, comment.AuthorID, comment.Content, comment.ParentID, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return ErrConflict
			case "23503":
				return ErrNotFound
			}
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

const commentSelect = `
        SELECT c.id, c.photo_id, c.user_id, c.content, c.parent_id, c.created_at, c.updated_at,
               u.username, u.first_name, u.last_name, u.avatar_url
        FROM comments c
        JOIN users u ON u.id = c.user_id`

func scanComment(row userScanner) (models.Comment, error) {
	var (
		comment  models.Comment
		parentID sql.NullString
	)
	err := row.Scan(&comment.ID, &comment.PhotoID, &comment.AuthorID, &comment.Content, &parentID,
		&comment.CreatedAt, &comment.UpdatedAt,
		&comment.Author.Username, &comment.Author.FirstName, &comment.Author.LastName, &comment.Author.AvatarURL)
	if err != nil {
		return models.Comment{}, err
	}
	if parentID.Valid {
		comment.ParentID = &parentID.String
	}
	comment.Author.ID = comment.AuthorID
	return comment, nil
}

// FindByID fetches a single comment with its author.
func (r *PostgresCommentRepository) FindByID(ctx context.Context, id string) (models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	comment, err := scanComment(conn.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}
	return comment, nil
}

// ListByPhoto returns every comment on the photo newest-first, flat.
func (r *PostgresCommentRepository) ListByPhoto(ctx context.Context, photoID string) ([]models.Comment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, commentSelect+` WHERE c.photo_id = $1 ORDER BY c.created_at DESC`, photoID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return comments, nil
}

// Delete removes the comment. The self-referencing ON DELETE CASCADE on
// parent_id takes the whole reply subtree with it.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresReactionRepository provides PostgreSQL-backed persistence for reactions.
type PostgresReactionRepository struct {
	pool db.Pool
}

// NewPostgresReactionRepository constructs a reaction repository backed by PostgreSQL.
func NewPostgresReactionRepository(pool db.Pool) *PostgresReactionRepository {
	return &PostgresReactionRepository{pool: pool}
}

// Set upserts the caller's reaction. The UNIQUE (photo_id, user_id)
// constraint carries the conflict: re-reacting overwrites the type and
// refreshes the timestamp instead of adding a second row.
func (r *PostgresReactionRepository) Set(ctx context.Context, reaction models.Reaction) (models.Reaction, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Reaction{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stored models.Reaction
	err = conn.QueryRow(ctx, `
        INSERT INTO reactions (id, photo_id, user_id, type, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (photo_id, user_id)
        DO UPDATE SET type = EXCLUDED.type, created_at = EXCLUDED.created_at
        RETURNING id, photo_id, user_id, type, created_at
    `, reaction.ID, reaction.PhotoID, reaction.AuthorID, reaction.Type, reaction.CreatedAt).
		Scan(&stored.ID, &stored.PhotoID, &stored.AuthorID, &stored.Type, &stored.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return models.Reaction{}, ErrNotFound
		}
		return models.Reaction{}, fmt.Errorf("upsert reaction: %w", err)
	}
	stored.Author = reaction.Author
	stored.Author.ID = stored.AuthorID
	return stored, nil
}

// Clear removes the caller's reaction on the photo, if any.
func (r *PostgresReactionRepository) Clear(ctx context.Context, photoID, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `DELETE FROM reactions WHERE photo_id = $1 AND user_id = $2`, photoID, userID)
	if err != nil {
		return fmt.Errorf("delete reaction: %w", err)
	}
	return nil
}

// ListByPhoto returns the photo's reactions with their authors, newest-first.
func (r *PostgresReactionRepository) ListByPhoto(ctx context.Context, photoID string) ([]models.Reaction, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT r.id, r.photo_id, r.user_id, r.type, r.created_at,
               u.username, u.first_name, u.last_name, u.avatar_url
        FROM reactions r
        JOIN users u ON u.id = r.user_id
        WHERE r.photo_id = $1
        ORDER BY r.created_at DESC
    `, photoID)
	if err != nil {
		return nil, fmt.Errorf("query reactions: %w", err)
	}
	defer rows.Close()

	var reactions []models.Reaction
	for rows.Next() {
		var reaction models.Reaction
		err := rows.Scan(&reaction.ID, &reaction.PhotoID, &reaction.AuthorID, &reaction.Type, &reaction.CreatedAt,
			&reaction.Author.Username, &reaction.Author.FirstName, &reaction.Author.LastName, &reaction.Author.AvatarURL)
		if err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		reaction.Author.ID = reaction.AuthorID
		reactions = append(reactions, reaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reactions: %w", err)
	}
	return reactions, nil
}

// CountsByType returns the per-type totals for one photo. Types with no
// reactions are absent from the map.
func (r *PostgresReactionRepository) CountsByType(ctx context.Context, photoID string) (map[string]int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT type, COUNT(*) FROM reactions WHERE photo_id = $1 GROUP BY type
    `, photoID)
	if err != nil {
		return nil, fmt.Errorf("query reaction counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			reactionType string
			count        int
		)
		if err := rows.Scan(&reactionType, &count); err != nil {
			return nil, fmt.Errorf("scan reaction count: %w", err)
		}
		counts[reactionType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reaction counts: %w", err)
	}
	return counts, nil
}

// PostgresFeedRepository computes the dashboard projections with plain SQL.
type PostgresFeedRepository struct {
	pool db.Pool
}

// NewPostgresFeedRepository constructs a feed repository backed by PostgreSQL.
func NewPostgresFeedRepository(pool db.Pool) *PostgresFeedRepository {
	return &PostgresFeedRepository{pool: pool}
}

// LatestPhotos returns the newest photos with their live activity counts.
func (r *PostgresFeedRepository) LatestPhotos(ctx context.Context) ([]models.FeedPhoto, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT p.id, p.title, p.description, p.path, p.thumbnail_path, p.created_at,
               u.id, u.username, u.first_name, u.last_name, u.avatar_url,
               (SELECT COUNT(*) FROM comments c WHERE c.photo_id = p.id) AS comment_count,
               (SELECT COUNT(*) FROM reactions rc WHERE rc.photo_id = p.id) AS reaction_count
        FROM photos p
        JOIN users u ON u.id = p.uploaded_by
        ORDER BY p.created_at DESC
        LIMIT $1
    `, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("query latest photos: %w", err)
	}
	defer rows.Close()

	var photos []models.FeedPhoto
	for rows.Next() {
		var entry models.FeedPhoto
		err := rows.Scan(&entry.ID, &entry.Title, &entry.Description, &entry.Path, &entry.ThumbnailPath, &entry.CreatedAt,
			&entry.Author.ID, &entry.Author.Username, &entry.Author.FirstName, &entry.Author.LastName, &entry.Author.AvatarURL,
			&entry.CommentCount, &entry.ReactionCount)
		if err != nil {
			return nil, fmt.Errorf("scan latest photo: %w", err)
		}
		photos = append(photos, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate latest photos: %w", err)
	}
	return photos, nil
}

// RecentComments returns the newest comment of each recently discussed
// photo: the per-photo MAX(created_at) subquery keeps a single comment per
// photo so one busy thread cannot monopolize the panel.
func (r *PostgresFeedRepository) RecentComments(ctx context.Context) ([]models.FeedComment, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT c.id, c.content, c.created_at,
               u.id, u.username, u.first_name, u.last_name, u.avatar_url,
               p.id, p.title, p.path, p.thumbnail_path
        FROM comments c
        JOIN users u ON u.id = c.user_id
        JOIN photos p ON p.id = c.photo_id
        WHERE (c.photo_id, c.created_at) IN (
            SELECT photo_id, MAX(created_at) FROM comments GROUP BY photo_id
        )
        ORDER BY c.created_at DESC
        LIMIT $1
    `, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("query recent comments: %w", err)
	}
	defer rows.Close()

	var comments []models.FeedComment
	for rows.Next() {
		var entry models.FeedComment
		err := rows.Scan(&entry.ID, &entry.Content, &entry.CreatedAt,
			&entry.Author.ID, &entry.Author.Username, &entry.Author.FirstName, &entry.Author.LastName, &entry.Author.AvatarURL,
			&entry.Photo.ID, &entry.Photo.Title, &entry.Photo.Path, &entry.Photo.ThumbnailPath)
		if err != nil {
			return nil, fmt.Errorf("scan recent comment: %w", err)
		}
		comments = append(comments, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent comments: %w", err)
	}
	return comments, nil
}

// RecentReactions returns the newest reactions across the whole gallery.
func (r *PostgresFeedRepository) RecentReactions(ctx context.Context) ([]models.FeedReaction, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT r.id, r.type, r.created_at,
               u.id, u.username, u.first_name, u.last_name, u.avatar_url,
               p.id, p.title, p.path, p.thumbnail_path
        FROM reactions r
        JOIN users u ON u.id = r.user_id
        JOIN photos p ON p.id = r.photo_id
        ORDER BY r.created_at DESC
        LIMIT $1
    `, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("query recent reactions: %w", err)
	}
	defer rows.Close()

	var reactions []models.FeedReaction
	for rows.Next() {
		var entry models.FeedReaction
		err := rows.Scan(&entry.ID, &entry.Type, &entry.CreatedAt,
			&entry.Author.ID, &entry.Author.Username, &entry.Author.FirstName, &entry.Author.LastName, &entry.Author.AvatarURL,
			&entry.Photo.ID, &entry.Photo.Title, &entry.Photo.Path, &entry.Photo.ThumbnailPath)
		if err != nil {
			return nil, fmt.Errorf("scan recent reaction: %w", err)
		}
		reactions = append(reactions, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent reactions: %w", err)
	}
	return reactions, nil
}

var _ CommentRepository = (*PostgresCommentRepository)(nil)
var _ ReactionRepository = (*PostgresReactionRepository)(nil)
var _ FeedRepository = (*PostgresFeedRepository)(nil)
