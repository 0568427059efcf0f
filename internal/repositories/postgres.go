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

const userColumns = `id, username, email, password_hash, first_name, last_name, avatar_url, is_admin, is_first_login, created_at, last_login`

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

type userScanner interface {
	Scan(dest ...any) error
}

func scanUser(row userScanner) (models.User, error) {
	var (
		user         models.User
		passwordHash sql.NullString
		lastLogin    sql.NullTime
	)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &passwordHash,
		&user.FirstName, &user.LastName, &user.AvatarURL,
		&user.IsAdmin, &user.IsFirstLogin, &user.CreatedAt, &lastLogin)
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = passwordHash.String
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		user.LastLogin = &t
	}
	return user, nil
}

// Create persists a new user record. A provisioned account carries a NULL
// password hash until the first login completes.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	passwordHash := sql.NullString{String: user.PasswordHash, Valid: user.PasswordHash != ""}

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, password_hash, first_name, last_name, avatar_url, is_admin, is_first_login, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, user.ID, user.Username, user.Email, passwordHash, user.FirstName, user.LastName, user.AvatarURL, user.IsAdmin, user.IsFirstLogin, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByID fetches a user by id.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}
	return user, nil
}

// FindByUsername fetches a user by their exact username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by username: %w", err)
	}
	return user, nil
}

// FindByLogin fetches a user whose username or email matches the login field.
func (r *PostgresUserRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	user, err := scanUser(conn.QueryRow(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE username = $1 OR email = $1
    `, usernameOrEmail))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by login: %w", err)
	}
	return user, nil
}

// EmailTakenByOther reports whether the email belongs to a different account.
func (r *PostgresUserRepository) EmailTakenByOther(ctx context.Context, email, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var taken bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id != $2)
    `, email, userID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email collision: %w", err)
	}
	return taken, nil
}

// SetPassword stores the email and password hash and permanently clears the
// first-login flag. The flip is one-way: there is no path back.
func (r *PostgresUserRepository) SetPassword(ctx context.Context, userID, email, passwordHash string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET email = $2, password_hash = $3, is_first_login = FALSE
        WHERE id = $1
    `, userID, email, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("set password: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful login.
func (r *PostgresUserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAdmin grants or revokes the admin flag.
func (r *PostgresUserRepository) SetAdmin(ctx context.Context, userID string, isAdmin bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE users SET is_admin = $2 WHERE id = $1`, userID, isAdmin)
	if err != nil {
		return fmt.Errorf("set admin flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account. Albums, photos, comments, reactions and
// sessions owned by the user cascade away with it.
func (r *PostgresUserRepository) Delete(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRoster returns the non-admin accounts shown on the login screen.
func (r *PostgresUserRepository) ListRoster(ctx context.Context) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+userColumns+`
        FROM users
        WHERE is_admin = FALSE
        ORDER BY first_name, last_name, username
    `)
	if err != nil {
		return nil, fmt.Errorf("query roster: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roster user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return users, nil
}

// ListWithCounts returns every account with its contribution counts for the
// admin listing, newest accounts first.
func (r *PostgresUserRepository) ListWithCounts(ctx context.Context) ([]models.UserWithCounts, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.avatar_url,
               u.is_admin, u.is_first_login, u.created_at, u.last_login,
               (SELECT COUNT(*) FROM photos p WHERE p.uploaded_by = u.id) AS photo_count,
               (SELECT COUNT(*) FROM albums a WHERE a.user_id = u.id) AS album_count,
               (SELECT COUNT(*) FROM comments c WHERE c.user_id = u.id) AS comment_count
        FROM users u
        ORDER BY u.created_at DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("query users with counts: %w", err)
	}
	defer rows.Close()

	var users []models.UserWithCounts
	for rows.Next() {
		var (
			entry        models.UserWithCounts
			passwordHash sql.NullString
			lastLogin    sql.NullTime
		)
		err := rows.Scan(&entry.ID, &entry.Username, &entry.Email, &passwordHash,
			&entry.FirstName, &entry.LastName, &entry.AvatarURL,
			&entry.IsAdmin, &entry.IsFirstLogin, &entry.CreatedAt, &lastLogin,
			&entry.PhotoCount, &entry.AlbumCount, &entry.CommentCount)
		if err != nil {
			return nil, fmt.Errorf("scan user with counts: %w", err)
		}
		entry.PasswordHash = passwordHash.String
		if lastLogin.Valid {
			t := lastLogin.Time.UTC()
			entry.LastLogin = &t
		}
		users = append(users, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users with counts: %w", err)
	}
	return users, nil
}

// Stats returns the dashboard totals.
func (r *PostgresUserRepository) Stats(ctx context.Context) (models.SiteStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.SiteStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats models.SiteStats
	err = conn.QueryRow(ctx, `
        SELECT (SELECT COUNT(*) FROM users),
               (SELECT COUNT(*) FROM photos),
               (SELECT COUNT(*) FROM albums),
               (SELECT COUNT(*) FROM comments),
               (SELECT COUNT(*) FROM reactions)
    `).Scan(&stats.TotalUsers, &stats.TotalPhotos, &stats.TotalAlbums, &stats.TotalComments, &stats.TotalReactions)
	if err != nil {
		return models.SiteStats{}, fmt.Errorf("query site stats: %w", err)
	}
	return stats, nil
}

// ListUploaders returns the distinct users that have uploaded at least one
// photo, for the gallery filter.
func (r *PostgresUserRepository) ListUploaders(ctx context.Context) ([]models.UserRef, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT DISTINCT u.id, u.username, u.first_name, u.last_name, u.avatar_url
        FROM photos p
        JOIN users u ON u.id = p.uploaded_by
        ORDER BY u.first_name, u.last_name, u.username
    `)
	if err != nil {
		return nil, fmt.Errorf("query uploaders: %w", err)
	}
	defer rows.Close()

	var uploaders []models.UserRef
	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username, &ref.FirstName, &ref.LastName, &ref.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan uploader: %w", err)
		}
		uploaders = append(uploaders, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate uploaders: %w", err)
	}
	return uploaders, nil
}

// PostgresAlbumRepository provides PostgreSQL-backed persistence for albums.
type PostgresAlbumRepository struct {
	pool db.Pool
}

// NewPostgresAlbumRepository constructs an album repository backed by PostgreSQL.
func NewPostgresAlbumRepository(pool db.Pool) *PostgresAlbumRepository {
	return &PostgresAlbumRepository{pool: pool}
}

// Create persists a new album.
func (r *PostgresAlbumRepository) Create(ctx context.Context, album models.Album) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO albums (id, title, description, user_id, is_shared, cover_photo_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `, album.ID, album.Title, album.Description, album.OwnerID, album.IsShared, album.CoverPhotoID, album.CreatedAt, album.UpdatedAt)
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
		return fmt.Errorf("insert album: %w", err)
	}
	return nil
}

// FindByID fetches an album by id.
func (r *PostgresAlbumRepository) FindByID(ctx context.Context, id string) (models.Album, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Album{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var (
		album        models.Album
		coverPhotoID sql.NullString
	)
	err = conn.QueryRow(ctx, `
        SELECT id, title, description, user_id, is_shared, cover_photo_id, created_at, updated_at
        FROM albums
        WHERE id = $1
    `, id).Scan(&album.ID, &album.Title, &album.Description, &album.OwnerID, &album.IsShared, &coverPhotoID, &album.CreatedAt, &album.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Album{}, ErrNotFound
		}
		return models.Album{}, fmt.Errorf("select album: %w", err)
	}
	if coverPhotoID.Valid {
		album.CoverPhotoID = &coverPhotoID.String
	}
	return album, nil
}

// ListVisibleTo returns the albums the viewer may see: their own plus shared
// albums of other users, decorated with photo counts and cover paths.
func (r *PostgresAlbumRepository) ListVisibleTo(ctx context.Context, viewerID string) ([]models.AlbumSummary, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT a.id, a.title, a.description, a.user_id, a.is_shared, a.cover_photo_id, a.created_at, a.updated_at,
               u.username, u.first_name, u.last_name, u.avatar_url,
               (SELECT COUNT(*) FROM photos p WHERE p.album_id = a.id) AS photo_count,
               COALESCE(cp.path, ''), COALESCE(cp.thumbnail_path, '')
        FROM albums a
        JOIN users u ON u.id = a.user_id
        LEFT JOIN photos cp ON cp.id = a.cover_photo_id
        WHERE a.user_id = $1 OR (a.is_shared AND a.user_id != $1)
        ORDER BY a.updated_at DESC
    `, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	var albums []models.AlbumSummary
	for rows.Next() {
		var (
			entry        models.AlbumSummary
			coverPhotoID sql.NullString
		)
		err := rows.Scan(&entry.ID, &entry.Title, &entry.Description, &entry.OwnerID, &entry.IsShared, &coverPhotoID,
			&entry.CreatedAt, &entry.UpdatedAt,
			&entry.Owner.Username, &entry.Owner.FirstName, &entry.Owner.LastName, &entry.Owner.AvatarURL,
			&entry.PhotoCount, &entry.CoverPath, &entry.CoverThumbnail)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		if coverPhotoID.Valid {
			entry.CoverPhotoID = &coverPhotoID.String
		}
		entry.Owner.ID = entry.OwnerID
		entry.Owned = entry.OwnerID == viewerID
		albums = append(albums, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

// Update modifies the album's title, description, sharing flag and cover.
func (r *PostgresAlbumRepository) Update(ctx context.Context, album models.Album) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE albums
        SET title = $2, description = $3, is_shared = $4, cover_photo_id = $5, updated_at = NOW()
        WHERE id = $1
    `, album.ID, album.Title, album.Description, album.IsShared, album.CoverPhotoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("update album: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the album row. The photos FK is ON DELETE SET NULL, so the
// album's photos are detached rather than deleted.
func (r *PostgresAlbumRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostgresPhotoRepository provides PostgreSQL-backed persistence for photos.
type PostgresPhotoRepository struct {
	pool db.Pool
}

// NewPostgresPhotoRepository constructs a photo repository backed by PostgreSQL.
func NewPostgresPhotoRepository(pool db.Pool) *PostgresPhotoRepository {
	return &PostgresPhotoRepository{pool: pool}
}

// Create persists a freshly uploaded photo.
func (r *PostgresPhotoRepository) Create(ctx context.Context, photo models.Photo) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var takenAt sql.NullTime
	if photo.TakenAt != nil {
		takenAt = sql.NullTime{Time: photo.TakenAt.UTC(), Valid: true}
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO photos (id, filename, original_filename, path, thumbnail_path, title, description,
                            category, location, taken_at, width, height, size, mime_type, album_id, uploaded_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
    `, photo.ID, photo.Filename, photo.OriginalFilename, photo.Path, photo.ThumbnailPath, photo.Title, photo.Description,
		photo.Category, photo.Location, takenAt, photo.Width, photo.Height, photo.Size, photo.MimeType, photo.AlbumID, photo.UploadedBy, photo.CreatedAt)
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
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

const photoSelect = `
        SELECT p.id, p.filename, p.original_filename, p.path, p.thumbnail_path, p.title, p.description,
               p.category, p.location, p.taken_at, p.width, p.height, p.size, p.mime_type, p.album_id, p.uploaded_by, p.created_at,
               u.username, u.first_name, u.last_name, u.avatar_url
        FROM photos p
        JOIN users u ON u.id = p.uploaded_by`

func scanPhoto(row userScanner) (models.Photo, error) {
	var (
		photo   models.Photo
		takenAt sql.NullTime
		albumID sql.NullString
	)
	err := row.Scan(&photo.ID, &photo.Filename, &photo.OriginalFilename, &photo.Path, &photo.ThumbnailPath,
		&photo.Title, &photo.Description, &photo.Category, &photo.Location, &takenAt,
		&photo.Width, &photo.Height, &photo.Size, &photo.MimeType, &albumID, &photo.UploadedBy, &photo.CreatedAt,
		&photo.Author.Username, &photo.Author.FirstName, &photo.Author.LastName, &photo.Author.AvatarURL)
	if err != nil {
		return models.Photo{}, err
	}
	if takenAt.Valid {
		t := takenAt.Time.UTC()
		photo.TakenAt = &t
	}
	if albumID.Valid {
		photo.AlbumID = &albumID.String
	}
	photo.Author.ID = photo.UploadedBy
	return photo, nil
}

// FindByID fetches a photo with its uploader.
func (r *PostgresPhotoRepository) FindByID(ctx context.Context, id string) (models.Photo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Photo{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	photo, err := scanPhoto(conn.QueryRow(ctx, photoSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Photo{}, ErrNotFound
		}
		return models.Photo{}, fmt.Errorf("select photo: %w", err)
	}
	return photo, nil
}

// List returns the whole gallery newest-first with uploader info.
func (r *PostgresPhotoRepository) List(ctx context.Context) ([]models.Photo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, photoSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, photo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}

// UpdateDetails overwrites the photo title and description in place.
func (r *PostgresPhotoRepository) UpdateDetails(ctx context.Context, id, title, description string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE photos SET title = $2, description = $3 WHERE id = $1
    `, id, title, description)
	if err != nil {
		return fmt.Errorf("update photo details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the photo row. Comments and reactions cascade away; album
// covers pointing at the photo are cleared.
func (r *PostgresPhotoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `DELETE FROM photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ AlbumRepository = (*PostgresAlbumRepository)(nil)
var _ PhotoRepository = (*PostgresPhotoRepository)(nil)
