// Package authz holds the resource-specific authorization rules evaluated
// after a request has been authenticated. The rules are deliberately uneven:
// photos are admin-managed, comments allow an admin override, albums do not.
package authz

import (
	"errors"

	"github.com/familygallery/backend/internal/models"
)

var (
	// ErrForbidden indicates the caller is authenticated but lacks the
	// privilege the operation requires.
	ErrForbidden = errors.New("forbidden")
	// ErrSelfAction indicates an admin attempted a destructive operation on
	// their own account. Rejected unconditionally to avoid lockout.
	ErrSelfAction = errors.New("operation not permitted on own account")
)

// DeleteUserConfirmation is the literal phrase the admin surface must send
// along with a user deletion. Its absence fails the request before any
// privilege check side effects.
const DeleteUserConfirmation = "SUPPRIMER"

// CanManageUsers gates the admin surface: listing, creating and editing
// accounts.
func CanManageUsers(caller models.User) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// CanEditPhoto gates photo title/description edits. Admin only.
func CanEditPhoto(caller models.User) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// CanDeletePhoto gates photo deletion. Admin only.
func CanDeletePhoto(caller models.User) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// CanChangeAdminFlag permits an admin to grant or revoke the admin flag on
// another account. An admin may never change their own flag.
func CanChangeAdminFlag(caller models.User, targetID string) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}
	if caller.ID == targetID {
		return ErrSelfAction
	}
	return nil
}

// CanDeleteUser permits an admin to delete another account. Deleting the
// caller's own account is rejected regardless of flags.
func CanDeleteUser(caller models.User, targetID string) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}
	if caller.ID == targetID {
		return ErrSelfAction
	}
	return nil
}

// CanDeleteComment permits the comment's author or any admin.
func CanDeleteComment(caller models.User, comment models.Comment) error {
	if comment.AuthorID == caller.ID || caller.IsAdmin {
		return nil
	}
	return ErrForbidden
}

// CanModifyAlbum permits only the album owner. There is no admin override for
// albums.
func CanModifyAlbum(caller models.User, album models.Album) error {
	if album.OwnerID != caller.ID {
		return ErrForbidden
	}
	return nil
}

// AlbumVisibleTo reports whether the viewer may see the album: their own
// albums always, other users' albums only when shared.
func AlbumVisibleTo(viewer models.User, album models.Album) bool {
	if album.OwnerID == viewer.ID {
		return true
	}
	return album.IsShared
}
