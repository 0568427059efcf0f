package handlers

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	"github.com/familygallery/backend/internal/auth"
	"github.com/familygallery/backend/internal/imaging"
	"github.com/familygallery/backend/internal/models"
	"github.com/familygallery/backend/internal/repositories"
)

type inMemoryUserStore struct {
	users map[string]models.User
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{users: make(map[string]models.User)}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) FindByLogin(_ context.Context, login string) (models.User, error) {
	for _, user := range s.users {
		if user.Username == login || user.Email == login {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) EmailTakenByOther(_ context.Context, email, userID string) (bool, error) {
	for _, user := range s.users {
		if user.Email == email && user.ID != userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *inMemoryUserStore) SetPassword(_ context.Context, userID, email, passwordHash string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Email = email
	user.PasswordHash = passwordHash
	user.IsFirstLogin = false
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) TouchLastLogin(_ context.Context, userID string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) SetAdmin(_ context.Context, userID string, isAdmin bool) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.IsAdmin = isAdmin
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) Delete(_ context.Context, userID string) error {
	if _, ok := s.users[userID]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *inMemoryUserStore) ListRoster(_ context.Context) ([]models.User, error) {
	var roster []models.User
	for _, user := range s.users {
		if !user.IsAdmin {
			roster = append(roster, user)
		}
	}
	sort.Slice(roster, func(i, j int) bool { return roster[i].Username < roster[j].Username })
	return roster, nil
}

func (s *inMemoryUserStore) ListWithCounts(_ context.Context) ([]models.UserWithCounts, error) {
	var entries []models.UserWithCounts
	for _, user := range s.users {
		entries = append(entries, models.UserWithCounts{User: user})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Username < entries[j].Username })
	return entries, nil
}

func (s *inMemoryUserStore) Stats(_ context.Context) (models.SiteStats, error) {
	return models.SiteStats{TotalUsers: len(s.users)}, nil
}

func (s *inMemoryUserStore) ListUploaders(_ context.Context) ([]models.UserRef, error) {
	return nil, nil
}

type inMemoryAlbumStore struct {
	albums map[string]models.Album
}

func newInMemoryAlbumStore() *inMemoryAlbumStore {
	return &inMemoryAlbumStore{albums: make(map[string]models.Album)}
}

func (s *inMemoryAlbumStore) Create(_ context.Context, album models.Album) error {
	s.albums[album.ID] = album
	return nil
}

func (s *inMemoryAlbumStore) FindByID(_ context.Context, id string) (models.Album, error) {
	album, ok := s.albums[id]
	if !ok {
		return models.Album{}, repositories.ErrNotFound
	}
	return album, nil
}

func (s *inMemoryAlbumStore) ListVisibleTo(_ context.Context, viewerID string) ([]models.AlbumSummary, error) {
	var visible []models.AlbumSummary
	for _, album := range s.albums {
		if album.OwnerID == viewerID || (album.IsShared && album.OwnerID != viewerID) {
			visible = append(visible, models.AlbumSummary{Album: album, Owned: album.OwnerID == viewerID})
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].UpdatedAt.After(visible[j].UpdatedAt) })
	return visible, nil
}

func (s *inMemoryAlbumStore) Update(_ context.Context, album models.Album) error {
	if _, ok := s.albums[album.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.albums[album.ID] = album
	return nil
}

func (s *inMemoryAlbumStore) Delete(_ context.Context, id string) error {
	if _, ok := s.albums[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.albums, id)
	return nil
}

type inMemoryPhotoStore struct {
	photos map[string]models.Photo
}

func newInMemoryPhotoStore() *inMemoryPhotoStore {
	return &inMemoryPhotoStore{photos: make(map[string]models.Photo)}
}

func (s *inMemoryPhotoStore) Create(_ context.Context, photo models.Photo) error {
	s.photos[photo.ID] = photo
	return nil
}

func (s *inMemoryPhotoStore) FindByID(_ context.Context, id string) (models.Photo, error) {
	photo, ok := s.photos[id]
	if !ok {
		return models.Photo{}, repositories.ErrNotFound
	}
	return photo, nil
}

func (s *inMemoryPhotoStore) List(_ context.Context) ([]models.Photo, error) {
	var photos []models.Photo
	for _, photo := range s.photos {
		photos = append(photos, photo)
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].CreatedAt.After(photos[j].CreatedAt) })
	return photos, nil
}

func (s *inMemoryPhotoStore) UpdateDetails(_ context.Context, id, title, description string) error {
	photo, ok := s.photos[id]
	if !ok {
		return repositories.ErrNotFound
	}
	photo.Title = title
	photo.Description = description
	s.photos[id] = photo
	return nil
}

func (s *inMemoryPhotoStore) Delete(_ context.Context, id string) error {
	if _, ok := s.photos[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.photos, id)
	return nil
}

type inMemoryCommentStore struct {
	comments map[string]models.Comment
}

func newInMemoryCommentStore() *inMemoryCommentStore {
	return &inMemoryCommentStore{comments: make(map[string]models.Comment)}
}

func (s *inMemoryCommentStore) Create(_ context.Context, comment models.Comment) error {
	s.comments[comment.ID] = comment
	return nil
}

func (s *inMemoryCommentStore) FindByID(_ context.Context, id string) (models.Comment, error) {
	comment, ok := s.comments[id]
	if !ok {
		return models.Comment{}, repositories.ErrNotFound
	}
	return comment, nil
}

func (s *inMemoryCommentStore) ListByPhoto(_ context.Context, photoID string) ([]models.Comment, error) {
	var rows []models.Comment
	for _, comment := range s.comments {
		if comment.PhotoID == photoID {
			rows = append(rows, comment)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

// Delete mirrors the database cascade: the comment and its whole reply
// subtree are removed.
func (s *inMemoryCommentStore) Delete(_ context.Context, id string) error {
	if _, ok := s.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	doomed := []string{id}
	for len(doomed) > 0 {
		current := doomed[0]
		doomed = doomed[1:]
		delete(s.comments, current)
		for childID, child := range s.comments {
			if child.ParentID != nil && *child.ParentID == current {
				doomed = append(doomed, childID)
			}
		}
	}
	return nil
}

type inMemoryReactionStore struct {
	reactions map[string]models.Reaction
}

func newInMemoryReactionStore() *inMemoryReactionStore {
	return &inMemoryReactionStore{reactions: make(map[string]models.Reaction)}
}

// Set mirrors the upsert: one row per (photo, user), type overwritten.
func (s *inMemoryReactionStore) Set(_ context.Context, reaction models.Reaction) (models.Reaction, error) {
	for id, existing := range s.reactions {
		if existing.PhotoID == reaction.PhotoID && existing.AuthorID == reaction.AuthorID {
			existing.Type = reaction.Type
			existing.CreatedAt = reaction.CreatedAt
			s.reactions[id] = existing
			return existing, nil
		}
	}
	s.reactions[reaction.ID] = reaction
	return reaction, nil
}

func (s *inMemoryReactionStore) Clear(_ context.Context, photoID, userID string) error {
	for id, reaction := range s.reactions {
		if reaction.PhotoID == photoID && reaction.AuthorID == userID {
			delete(s.reactions, id)
		}
	}
	return nil
}

func (s *inMemoryReactionStore) ListByPhoto(_ context.Context, photoID string) ([]models.Reaction, error) {
	var rows []models.Reaction
	for _, reaction := range s.reactions {
		if reaction.PhotoID == photoID {
			rows = append(rows, reaction)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows, nil
}

func (s *inMemoryReactionStore) CountsByType(_ context.Context, photoID string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, reaction := range s.reactions {
		if reaction.PhotoID == photoID {
			counts[reaction.Type]++
		}
	}
	return counts, nil
}

type stubFeedStore struct {
	photos    []models.FeedPhoto
	comments  []models.FeedComment
	reactions []models.FeedReaction
	err       error
}

func (s *stubFeedStore) LatestPhotos(_ context.Context) ([]models.FeedPhoto, error) {
	return s.photos, s.err
}

func (s *stubFeedStore) RecentComments(_ context.Context) ([]models.FeedComment, error) {
	return s.comments, s.err
}

func (s *stubFeedStore) RecentReactions(_ context.Context) ([]models.FeedReaction, error) {
	return s.reactions, s.err
}

type stubFileStore struct {
	saved   map[string][]byte
	removed []string
	saveErr error
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{saved: make(map[string][]byte)}
}

func (s *stubFileStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.saved[name] = buf.Bytes()
	return "/uploads/" + name, nil
}

func (s *stubFileStore) Remove(_ context.Context, name string) error {
	s.removed = append(s.removed, name)
	delete(s.saved, name)
	return nil
}

type stubProcessor struct {
	result imaging.Result
	err    error
}

func (p stubProcessor) Process(_ io.Reader) (imaging.Result, error) {
	return p.result, p.err
}

// newTestSession creates a session manager plus a valid session for the user.
func newTestSession(userID string) (*auth.Manager, auth.Session) {
	manager := auth.NewManager(30*24*time.Hour, auth.NewInMemorySessionStore())
	session, err := manager.Create(context.Background(), userID)
	if err != nil {
		panic(err)
	}
	return manager, session
}
