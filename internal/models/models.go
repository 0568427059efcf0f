package models

import "time"

// User represents a family member account.
//
// Accounts are provisioned by an admin with a placeholder email and no
// password (IsFirstLogin = true). The first successful set-password call
// supplies the real email and password and flips IsFirstLogin permanently.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	AvatarURL    string     `json:"avatar_url"`
	IsAdmin      bool       `json:"is_admin"`
	IsFirstLogin bool       `json:"is_first_login"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// UserRef carries the subset of user fields embedded in comments, reactions
// and gallery entries.
type UserRef struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	AvatarURL string `json:"avatar_url"`
}

// Ref returns the embeddable view of the user.
func (u User) Ref() UserRef {
	return UserRef{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}

// Album groups photos owned by one user. A shared album is visible to every
// family member; a private one only to its owner. CoverPhotoID is a weak
// reference: deleting the photo clears it without touching the album.
type Album struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	OwnerID      string    `json:"owner_id"`
	IsShared     bool      `json:"is_shared"`
	CoverPhotoID *string   `json:"cover_photo_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AlbumSummary decorates an album with the derived fields the album list
// renders: live photo count, cover paths and whether the viewer owns it.
type AlbumSummary struct {
	Album
	PhotoCount     int     `json:"photo_count"`
	CoverPath      string  `json:"cover_path,omitempty"`
	CoverThumbnail string  `json:"cover_thumbnail,omitempty"`
	Owned          bool    `json:"owned"`
	Owner          UserRef `json:"owner"`
}

// Photo categories. Every photo carries exactly one.
const (
	CategoryQuotidien = "quotidien"
	CategoryVacances  = "vacances"
	CategoryFetes     = "fetes"
)

// ValidCategory reports whether the category is one of the enumerated values.
func ValidCategory(category string) bool {
	switch category {
	case CategoryQuotidien, CategoryVacances, CategoryFetes:
		return true
	}
	return false
}

// Photo is an uploaded image with its stored file locations and metadata.
// AlbumID is nullable; deleting an album detaches its photos rather than
// deleting them.
type Photo struct {
	ID               string     `json:"id"`
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"original_filename"`
	Path             string     `json:"path"`
	ThumbnailPath    string     `json:"thumbnail_path"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Location         string     `json:"location"`
	TakenAt          *time.Time `json:"taken_at,omitempty"`
	Width            int        `json:"width"`
	Height           int        `json:"height"`
	Size             int64      `json:"size"`
	MimeType         string     `json:"mime_type"`
	AlbumID          *string    `json:"album_id,omitempty"`
	UploadedBy       string     `json:"uploaded_by"`
	CreatedAt        time.Time  `json:"created_at"`

	Author UserRef `json:"user"`
}

// PhotoRef is the compact photo view embedded in feed entries.
type PhotoRef struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Path          string `json:"path"`
	ThumbnailPath string `json:"thumbnail_path"`
}

// Comment is one node of a photo's comment forest. Root comments have a nil
// ParentID; replies point at an earlier comment on the same photo.
type Comment struct {
	ID        string    `json:"id"`
	PhotoID   string    `json:"photo_id"`
	Content   string    `json:"content"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AuthorID string  `json:"-"`
	Author   UserRef `json:"user"`
}

// Reaction types. A user holds at most one reaction per photo.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionLaugh = "laugh"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
)

// ReactionTypes lists the enumerated reaction types in display order.
func ReactionTypes() []string {
	return []string{ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad}
}

// ValidReactionType reports whether t is one of the enumerated reaction types.
func ValidReactionType(t string) bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad:
		return true
	}
	return false
}

// Reaction is a single categorized response to a photo. Setting a new type
// for the same (photo, user) pair overwrites the previous one.
type Reaction struct {
	ID        string    `json:"id"`
	PhotoID   string    `json:"photo_id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`

	AuthorID string  `json:"-"`
	Author   UserRef `json:"user"`
}

// FeedPhoto is a latest-photos entry annotated with live activity counts.
type FeedPhoto struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Path          string    `json:"path"`
	ThumbnailPath string    `json:"thumbnail_path"`
	CreatedAt     time.Time `json:"created_at"`
	CommentCount  int       `json:"comments_count"`
	ReactionCount int       `json:"reactions_count"`
	Author        UserRef   `json:"user"`
}

// FeedComment is the single most recent comment of one photo.
type FeedComment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    UserRef   `json:"user"`
	Photo     PhotoRef  `json:"photo"`
}

// FeedReaction is a recent reaction across the whole gallery.
type FeedReaction struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Author    UserRef   `json:"user"`
	Photo     PhotoRef  `json:"photo"`
}

// SiteStats are the admin dashboard totals.
type SiteStats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalPhotos    int `json:"totalPhotos"`
	TotalAlbums    int `json:"totalAlbums"`
	TotalComments  int `json:"totalComments"`
	TotalReactions int `json:"totalReactions"`
}

// UserWithCounts decorates a user with per-user contribution counts for the
// admin listing.
type UserWithCounts struct {
	User
	PhotoCount   int `json:"photos_count"`
	AlbumCount   int `json:"albums_count"`
	CommentCount int `json:"comments_count"`
}
