package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/cockroachdb/cockroach-go/v2/testserver"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/familygallery/backend/internal/auth"
	"github.com/familygallery/backend/internal/models"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	server, err := testserver.NewTestServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start cockroach test server: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, server.PGURL().String())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to cockroach test server: %v\n", err)
		server.Stop()
		os.Exit(1)
	}

	if err := applyMigrations(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "apply migrations: %v\n", err)
		pool.Close()
		server.Stop()
		os.Exit(1)
	}

	testPool = pool

	code := m.Run()

	pool.Close()
	server.Stop()

	os.Exit(code)
}

func TestPostgresUserRepository_ProvisionAndActivate(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	repo := NewPostgresUserRepository(testPool)

	provisioned := models.User{
		ID:           uuid.NewString(),
		Username:     "mamie",
		Email:        "mamie@temp.familygallery.local",
		FirstName:    "Mamie",
		IsFirstLogin: true,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := repo.Create(ctx, provisioned); err != nil {
		t.Fatalf("create provisioned user: %v", err)
	}

	dup := provisioned
	dup.ID = uuid.NewString()
	dup.Email = "other@example.com"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate username, got %v", err)
	}

	fetched, err := repo.FindByUsername(ctx, provisioned.Username)
	if err != nil {
		t.Fatalf("find by username: %v", err)
	}
	if !fetched.IsFirstLogin || fetched.PasswordHash != "" {
		t.Fatalf("expected provisioned account without credentials, got %+v", fetched)
	}

	if err := repo.SetPassword(ctx, provisioned.ID, "mamie@example.com", "bcrypt-hash"); err != nil {
		t.Fatalf("set password: %v", err)
	}

	activated, err := repo.FindByLogin(ctx, "mamie@example.com")
	if err != nil {
		t.Fatalf("find by email login: %v", err)
	}
	if activated.IsFirstLogin {
		t.Fatalf("expected first-login flag cleared after activation")
	}
	if activated.PasswordHash != "bcrypt-hash" {
		t.Fatalf("expected stored hash, got %q", activated.PasswordHash)
	}

	byUsername, err := repo.FindByLogin(ctx, "mamie")
	if err != nil {
		t.Fatalf("find by username login: %v", err)
	}
	if byUsername.ID != activated.ID {
		t.Fatalf("expected same account via username and email login")
	}

	taken, err := repo.EmailTakenByOther(ctx, "mamie@example.com", dup.ID)
	if err != nil {
		t.Fatalf("check email collision: %v", err)
	}
	if !taken {
		t.Fatalf("expected email to be reported as taken by another account")
	}

	taken, err = repo.EmailTakenByOther(ctx, "mamie@example.com", provisioned.ID)
	if err != nil {
		t.Fatalf("check own email: %v", err)
	}
	if taken {
		t.Fatalf("own email must not count as a collision")
	}

	if err := repo.SetPassword(ctx, uuid.NewString(), "ghost@example.com", "hash"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestPostgresUserRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	photoRepo := NewPostgresPhotoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)

	owner := createTestUser(t, userRepo, "owner")
	other := createTestUser(t, userRepo, "other")

	photo := createTestPhoto(t, photoRepo, owner.ID)
	otherPhoto := createTestPhoto(t, photoRepo, other.ID)

	comment := models.Comment{
		ID:        uuid.NewString(),
		PhotoID:   otherPhoto.ID,
		AuthorID:  owner.ID,
		Content:   "belle photo",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := commentRepo.Create(ctx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := userRepo.Delete(ctx, owner.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := photoRepo.FindByID(ctx, photo.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected owner's photo to cascade away, got %v", err)
	}
	if _, err := commentRepo.FindByID(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected owner's comment to cascade away, got %v", err)
	}
	if _, err := photoRepo.FindByID(ctx, otherPhoto.ID); err != nil {
		t.Fatalf("expected other user's photo to survive, got %v", err)
	}

	if err := userRepo.Delete(ctx, owner.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestPostgresCommentRepository_SubtreeCascade(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	photoRepo := NewPostgresPhotoRepository(testPool)
	repo := NewPostgresCommentRepository(testPool)

	author := createTestUser(t, userRepo, "author")
	photo := createTestPhoto(t, photoRepo, author.ID)

	base := time.Now().UTC().Add(-time.Hour)
	root := createTestComment(t, repo, photo.ID, author.ID, nil, base)
	reply := createTestComment(t, repo, photo.ID, author.ID, &root.ID, base.Add(time.Minute))
	nested := createTestComment(t, repo, photo.ID, author.ID, &reply.ID, base.Add(2*time.Minute))
	sibling := createTestComment(t, repo, photo.ID, author.ID, nil, base.Add(3*time.Minute))

	rows, err := repo.ListByPhoto(ctx, photo.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 comments, got %d", len(rows))
	}
	if rows[0].ID != sibling.ID {
		t.Fatalf("expected newest comment first, got %s", rows[0].ID)
	}

	if err := repo.Delete(ctx, root.ID); err != nil {
		t.Fatalf("delete root comment: %v", err)
	}

	for _, gone := range []string{root.ID, reply.ID, nested.ID} {
		if _, err := repo.FindByID(ctx, gone); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected comment %s removed with subtree, got %v", gone, err)
		}
	}
	if _, err := repo.FindByID(ctx, sibling.ID); err != nil {
		t.Fatalf("expected sibling thread to survive, got %v", err)
	}
}

func TestPostgresReactionRepository_UpsertSingleRow(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	photoRepo := NewPostgresPhotoRepository(testPool)
	repo := NewPostgresReactionRepository(testPool)

	user := createTestUser(t, userRepo, "reactor")
	photo := createTestPhoto(t, photoRepo, user.ID)

	first := models.Reaction{
		ID:        uuid.NewString(),
		PhotoID:   photo.ID,
		AuthorID:  user.ID,
		Type:      models.ReactionLike,
		CreatedAt: time.Now().UTC().Add(-time.Minute),
	}
	stored, err := repo.Set(ctx, first)
	if err != nil {
		t.Fatalf("set reaction: %v", err)
	}
	if stored.Type != models.ReactionLike {
		t.Fatalf("expected like, got %s", stored.Type)
	}

	second := first
	second.ID = uuid.NewString()
	second.Type = models.ReactionLove
	second.CreatedAt = time.Now().UTC()
	stored, err = repo.Set(ctx, second)
	if err != nil {
		t.Fatalf("overwrite reaction: %v", err)
	}
	if stored.ID != first.ID {
		t.Fatalf("expected the original row updated in place, got new id %s", stored.ID)
	}
	if stored.Type != models.ReactionLove {
		t.Fatalf("expected type overwritten to love, got %s", stored.Type)
	}

	reactions, err := repo.ListByPhoto(ctx, photo.ID)
	if err != nil {
		t.Fatalf("list reactions: %v", err)
	}
	if len(reactions) != 1 {
		t.Fatalf("expected a single reaction row after re-reacting, got %d", len(reactions))
	}

	counts, err := repo.CountsByType(ctx, photo.ID)
	if err != nil {
		t.Fatalf("count reactions: %v", err)
	}
	if counts[models.ReactionLove] != 1 || counts[models.ReactionLike] != 0 {
		t.Fatalf("unexpected counts: %v", counts)
	}

	if err := repo.Clear(ctx, photo.ID, user.ID); err != nil {
		t.Fatalf("clear reaction: %v", err)
	}
	if err := repo.Clear(ctx, photo.ID, user.ID); err != nil {
		t.Fatalf("clear must be idempotent: %v", err)
	}

	if _, err := repo.Set(ctx, models.Reaction{
		ID:        uuid.NewString(),
		PhotoID:   uuid.NewString(),
		AuthorID:  user.ID,
		Type:      models.ReactionWow,
		CreatedAt: time.Now().UTC(),
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound reacting to a missing photo, got %v", err)
	}
}

func TestPostgresAlbumRepository_Visibility(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	photoRepo := NewPostgresPhotoRepository(testPool)
	repo := NewPostgresAlbumRepository(testPool)

	owner := createTestUser(t, userRepo, "albumowner")
	viewer := createTestUser(t, userRepo, "viewer")

	private := createTestAlbum(t, repo, owner.ID, "Private", false)
	shared := createTestAlbum(t, repo, owner.ID, "Shared", true)
	mine := createTestAlbum(t, repo, viewer.ID, "Mine", false)

	photo := createTestPhoto(t, photoRepo, owner.ID)
	shared.CoverPhotoID = &photo.ID
	if err := repo.Update(ctx, shared); err != nil {
		t.Fatalf("set album cover: %v", err)
	}

	visible, err := repo.ListVisibleTo(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("list albums for viewer: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected own album plus shared album, got %d", len(visible))
	}
	for _, entry := range visible {
		if entry.ID == private.ID {
			t.Fatalf("private album of another user must not be visible")
		}
		switch entry.ID {
		case mine.ID:
			if !entry.Owned {
				t.Fatalf("expected viewer's album marked as owned")
			}
		case shared.ID:
			if entry.Owned {
				t.Fatalf("shared album of another user must not be marked owned")
			}
			if entry.CoverPath != photo.Path {
				t.Fatalf("expected cover path %q, got %q", photo.Path, entry.CoverPath)
			}
			if entry.Owner.Username != "albumowner" {
				t.Fatalf("expected owner info on shared album, got %+v", entry.Owner)
			}
		}
	}

	if err := photoRepo.Delete(ctx, photo.ID); err != nil {
		t.Fatalf("delete cover photo: %v", err)
	}

	refetched, err := repo.FindByID(ctx, shared.ID)
	if err != nil {
		t.Fatalf("refetch shared album: %v", err)
	}
	if refetched.CoverPhotoID != nil {
		t.Fatalf("expected cover cleared when the photo is deleted, got %v", *refetched.CoverPhotoID)
	}

	if err := repo.Delete(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting unknown album, got %v", err)
	}
}

func TestPostgresSessionStore_SaveFindDeleteAndSweep(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	user := createTestUser(t, userRepo, "sessionuser")

	store := NewPostgresSessionStore(testPool)
	now := time.Now().UTC()

	live := auth.Session{Token: uuid.NewString(), UserID: user.ID, ExpiresAt: now.Add(24 * time.Hour)}
	stale := auth.Session{Token: uuid.NewString(), UserID: user.ID, ExpiresAt: now.Add(-time.Minute)}

	for _, session := range []auth.Session{live, stale} {
		if err := store.Save(ctx, session); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}

	loaded, err := store.Find(ctx, live.Token)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if loaded.UserID != user.ID || !timesClose(loaded.ExpiresAt, live.ExpiresAt, time.Millisecond) {
		t.Fatalf("unexpected session loaded: %+v", loaded)
	}

	swept, err := store.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("delete expired sessions: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 swept session, got %d", swept)
	}
	if _, err := store.Find(ctx, stale.Token); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected stale session gone, got %v", err)
	}
	if _, err := store.Find(ctx, live.Token); err != nil {
		t.Fatalf("expected live session to survive sweep, got %v", err)
	}

	if err := store.Delete(ctx, live.Token); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if err := store.Delete(ctx, live.Token); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound deleting twice, got %v", err)
	}
}

func TestPostgresFeedRepository_Projections(t *testing.T) {
	ctx := context.Background()
	resetDatabase(t)

	userRepo := NewPostgresUserRepository(testPool)
	photoRepo := NewPostgresPhotoRepository(testPool)
	commentRepo := NewPostgresCommentRepository(testPool)
	reactionRepo := NewPostgresReactionRepository(testPool)
	repo := NewPostgresFeedRepository(testPool)

	user := createTestUser(t, userRepo, "feeduser")

	base := time.Now().UTC().Add(-time.Hour)
	var photos []models.Photo
	for i := 0; i < FeedLimit+2; i++ {
		photo := models.Photo{
			ID:         uuid.NewString(),
			Filename:   fmt.Sprintf("photo-%02d.jpg", i),
			Path:       fmt.Sprintf("/uploads/photo-%02d.jpg", i),
			Title:      fmt.Sprintf("Photo %02d", i),
			MimeType:   "image/jpeg",
			UploadedBy: user.ID,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := photoRepo.Create(ctx, photo); err != nil {
			t.Fatalf("create photo %d: %v", i, err)
		}
		photos = append(photos, photo)
	}

	busy := photos[len(photos)-1]
	quiet := photos[len(photos)-2]
	for i := 0; i < 3; i++ {
		createTestComment(t, commentRepo, busy.ID, user.ID, nil, base.Add(time.Duration(10+i)*time.Minute))
	}
	lastQuiet := createTestComment(t, commentRepo, quiet.ID, user.ID, nil, base.Add(20*time.Minute))

	if _, err := reactionRepo.Set(ctx, models.Reaction{
		ID: uuid.NewString(), PhotoID: busy.ID, AuthorID: user.ID,
		Type: models.ReactionLaugh, CreatedAt: base.Add(30 * time.Minute),
	}); err != nil {
		t.Fatalf("set reaction: %v", err)
	}

	latest, err := repo.LatestPhotos(ctx)
	if err != nil {
		t.Fatalf("latest photos: %v", err)
	}
	if len(latest) != FeedLimit {
		t.Fatalf("expected %d photos, got %d", FeedLimit, len(latest))
	}
	if latest[0].ID != busy.ID {
		t.Fatalf("expected newest photo first, got %s", latest[0].ID)
	}
	if latest[0].CommentCount != 3 || latest[0].ReactionCount != 1 {
		t.Fatalf("expected live counts 3/1, got %d/%d", latest[0].CommentCount, latest[0].ReactionCount)
	}

	recent, err := repo.RecentComments(ctx)
	if err != nil {
		t.Fatalf("recent comments: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected one entry per commented photo, got %d", len(recent))
	}
	seen := map[string]int{}
	for _, entry := range recent {
		seen[entry.Photo.ID]++
	}
	if seen[busy.ID] != 1 || seen[quiet.ID] != 1 {
		t.Fatalf("expected exactly one comment per photo, got %v", seen)
	}
	if recent[0].Photo.ID != quiet.ID || recent[0].ID != lastQuiet.ID {
		t.Fatalf("expected the newest comment overall first, got %+v", recent[0])
	}

	reactions, err := repo.RecentReactions(ctx)
	if err != nil {
		t.Fatalf("recent reactions: %v", err)
	}
	if len(reactions) != 1 || reactions[0].Type != models.ReactionLaugh {
		t.Fatalf("unexpected recent reactions: %+v", reactions)
	}
	if reactions[0].Photo.ID != busy.ID || reactions[0].Author.Username != "feeduser" {
		t.Fatalf("expected photo and author context on reactions, got %+v", reactions[0])
	}
}

func applyMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		contents, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func resetDatabase(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	conn, err := testPool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire connection: %v", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "TRUNCATE TABLE reactions, comments, photos, albums, sessions, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, username string) models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "password-hash",
		FirstName:    username,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

func createTestPhoto(t *testing.T, repo *PostgresPhotoRepository, uploadedBy string) models.Photo {
	t.Helper()
	photo := models.Photo{
		ID:         uuid.NewString(),
		Filename:   uuid.NewString() + ".jpg",
		Path:       "/uploads/" + uuid.NewString() + ".jpg",
		MimeType:   "image/jpeg",
		UploadedBy: uploadedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), photo); err != nil {
		t.Fatalf("create test photo: %v", err)
	}
	return photo
}

func createTestComment(t *testing.T, repo *PostgresCommentRepository, photoID, userID string, parentID *string, createdAt time.Time) models.Comment {
	t.Helper()
	comment := models.Comment{
		ID:        uuid.NewString(),
		PhotoID:   photoID,
		AuthorID:  userID,
		Content:   "comment " + uuid.NewString()[:8],
		ParentID:  parentID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), comment); err != nil {
		t.Fatalf("create test comment: %v", err)
	}
	return comment
}

func createTestAlbum(t *testing.T, repo *PostgresAlbumRepository, ownerID, title string, shared bool) models.Album {
	t.Helper()
	album := models.Album{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   ownerID,
		IsShared:  shared,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), album); err != nil {
		t.Fatalf("create test album: %v", err)
	}
	return album
}

func timesClose(a, b time.Time, delta time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= delta
}
