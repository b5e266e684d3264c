package models

import "time"

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// PlaceholderPassword is stored as the password credential for accounts whose
// authentication is delegated to the external identity provider. It is not a
// bcrypt hash and can never match a real password comparison.
const PlaceholderPassword = "external-auth"

// User is the canonical user record. The relational store is keyed by the
// numeric ID; the document store files the same record under the external
// auth UID (or the stringified numeric ID when no UID is bound).
type User struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	AuthUID          string     `json:"auth_uid,omitempty" gorm:"uniqueIndex;type:varchar(128)"`
	Email            string     `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Username         string     `json:"username" gorm:"type:varchar(100)" validate:"required,min=3,max=100"`
	Password         string     `json:"-" gorm:"type:varchar(255)"`
	Role             Role       `json:"role" gorm:"type:varchar(16);default:user"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	TwoFactorSecret  string     `json:"-" gorm:"type:varchar(64)"`
	PhotoURL         string     `json:"photo_url,omitempty" gorm:"type:varchar(512)"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-" gorm:"index"`
}

// IsAdmin reports whether the record grants admin authority.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// DocumentKey returns the key the record is filed under in the document
// store: the auth UID when bound, otherwise the stringified numeric ID.
func (u *User) DocumentKey() string {
	if u.AuthUID != "" {
		return u.AuthUID
	}
	return FormatID(u.ID)
}

// ToDocument converts the canonical record to its document-store shape.
// The password credential is never mirrored.
func (u *User) ToDocument() map[string]interface{} {
	return map[string]interface{}{
		"id":               int64(u.ID),
		"authUid":          u.AuthUID,
		"email":            u.Email,
		"username":         u.Username,
		"role":             string(u.Role),
		"twoFactorEnabled": u.TwoFactorEnabled,
		"photoURL":         u.PhotoURL,
	}
}

// UserFromDocument converts a document-store snapshot back to the canonical
// shape. Missing fields stay zero-valued; the role defaults to "user".
func UserFromDocument(docID string, data map[string]interface{}) *User {
	u := &User{
		AuthUID:  docString(data, "authUid"),
		Email:    docString(data, "email"),
		Username: docString(data, "username"),
		Role:     Role(docString(data, "role")),
		PhotoURL: docString(data, "photoURL"),
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if v, ok := data["twoFactorEnabled"].(bool); ok {
		u.TwoFactorEnabled = v
	}
	if id, ok := docUint(data, "id"); ok {
		u.ID = id
	}
	if u.AuthUID == "" {
		// Older documents carry the UID only as the document key.
		if _, err := ParseNumericID(docID); err != nil {
			u.AuthUID = docID
		}
	}
	return u
}
