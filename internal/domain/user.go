package domain

import (
	"context"
	"strings"
)

// UserRecord is a directory user as presented by the list and edit screens.
type UserRecord struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	AvatarURL string
}

// FullName returns the first and last name joined by a single space.
func (u UserRecord) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserFields holds the editable attributes of a user.
type UserFields struct {
	FirstName string
	LastName  string
	Email     string
}

// Fields returns the editable attributes of the record.
func (u UserRecord) Fields() UserFields {
	return UserFields{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
}

// UserPatch carries an update for a single record. Nil fields are absent and
// leave the existing value untouched when merged.
type UserPatch struct {
	ID        int64
	FirstName *string
	LastName  *string
	Email     *string
	AvatarURL *string
}

// PatchFromFields builds a patch that overwrites the three editable fields of
// the record with the given ID.
func PatchFromFields(id int64, f UserFields) UserPatch {
	return UserPatch{
		ID:        id,
		FirstName: &f.FirstName,
		LastName:  &f.LastName,
		Email:     &f.Email,
	}
}

// Apply returns a copy of u with every present field of p written over it.
func (p UserPatch) Apply(u UserRecord) UserRecord {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	return u
}

// Page is one page of the remote directory listing.
type Page struct {
	Records    UserCollection
	Page       int
	TotalPages int
}

// Directory is the remote user directory. Every failure is reported as
// ErrNetwork (or ErrUnauthorized for rejected logins); nothing is retried.
type Directory interface {
	List(ctx context.Context, page int) (Page, error)
	Update(ctx context.Context, id int64, fields UserFields) (UserRecord, error)
	Delete(ctx context.Context, id int64) error
	Login(ctx context.Context, email, password string) (string, error)
}
