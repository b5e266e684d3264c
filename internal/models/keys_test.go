package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumericID(t *testing.T) {
	id, err := ParseNumericID("42")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)

	id, err = ParseNumericID(" 7 ")
	assert.NoError(t, err)
	assert.Equal(t, uint(7), id)

	for _, bad := range []string{"", "abc", "12.5", "-3", "fb-uid-001"} {
		_, err = ParseNumericID(bad)
		assert.ErrorIs(t, err, ErrMalformedKey, "key %q", bad)
	}
}

func TestFormatIDRoundTrip(t *testing.T) {
	id, err := ParseNumericID(FormatID(123))
	assert.NoError(t, err)
	assert.Equal(t, uint(123), id)
}

func TestUserDocumentRoundTrip(t *testing.T) {
	u := &User{
		ID:       9,
		AuthUID:  "uid-9",
		Email:    "nine@example.com",
		Username: "nine",
		Password: "secret-hash",
		Role:     RoleAdmin,
	}

	doc := u.ToDocument()
	assert.NotContains(t, doc, "password")

	back := UserFromDocument("uid-9", doc)
	assert.Equal(t, u.ID, back.ID)
	assert.Equal(t, u.AuthUID, back.AuthUID)
	assert.Equal(t, u.Email, back.Email)
	assert.Equal(t, RoleAdmin, back.Role)
	assert.Empty(t, back.Password)
}

func TestUserFromDocumentToleratesLooseTypes(t *testing.T) {
	// Documents written by other clients carry float64 ids and hold the UID
	// only in the document key.
	back := UserFromDocument("fb-uid-001", map[string]interface{}{
		"id":    float64(12),
		"email": "loose@example.com",
	})
	assert.Equal(t, uint(12), back.ID)
	assert.Equal(t, "fb-uid-001", back.AuthUID)
	assert.Equal(t, RoleUser, back.Role)

	// String-typed numeric ids are tolerated too.
	back = UserFromDocument("34", map[string]interface{}{
		"id":    "34",
		"email": "string@example.com",
	})
	assert.Equal(t, uint(34), back.ID)
	assert.Empty(t, back.AuthUID)
}

func TestUserDocumentKey(t *testing.T) {
	assert.Equal(t, "uid-9", (&User{ID: 9, AuthUID: "uid-9"}).DocumentKey())
	assert.Equal(t, "9", (&User{ID: 9}).DocumentKey())
}
