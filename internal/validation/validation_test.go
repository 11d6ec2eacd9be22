package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsername(t *testing.T) {
	assert.NoError(t, Username("johndoe"))
	assert.NoError(t, Username("ValidName"))
	assert.NoError(t, Username("9876543210"))

	assert.Error(t, Username("john doe"))
	assert.Error(t, Username("john123"))
	assert.Error(t, Username("12345"))
	assert.Error(t, Username(""))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("a@b.com"))
	assert.NoError(t, Email("first.last@corp.example.org"))

	assert.Error(t, Email("not-an-email"))
	assert.Error(t, Email("a@b"))
	assert.Error(t, Email("@example.com"))
}

func TestPhone(t *testing.T) {
	assert.NoError(t, Phone("9876543210"))

	assert.Error(t, Phone("98765"))
	assert.Error(t, Phone("98765432101"))
	assert.Error(t, Phone("98765abc10"))
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("Pass1@"))
	assert.NoError(t, Password("abcdef1!"))

	assert.Error(t, Password("short"))
	// Missing symbol.
	assert.Error(t, Password("abcdef12"))
	// Missing digit.
	assert.Error(t, Password("abcdef@!"))
	// Missing letter.
	assert.Error(t, Password("123456@!"))
	// Symbol outside the allowed set.
	assert.Error(t, Password("abcdef1*"))
	// Too long (21 chars).
	assert.Error(t, Password("aaaaaaaaaaaaaaaaaa1@x"))
}

func TestGender(t *testing.T) {
	assert.NoError(t, Gender("Male"))
	assert.NoError(t, Gender("Female"))
	assert.NoError(t, Gender("Other"))

	assert.Error(t, Gender("male"))
	assert.Error(t, Gender("unknown"))
}

func TestPrice(t *testing.T) {
	assert.NoError(t, Price("250000"))
	assert.NoError(t, Price("250000.5"))
	assert.NoError(t, Price("250000.55"))

	assert.Error(t, Price("250000.555"))
	assert.Error(t, Price("-10"))
	assert.Error(t, Price("ten"))
}

func TestImageFilename(t *testing.T) {
	assert.NoError(t, ImageFilename("house.jpg"))
	assert.NoError(t, ImageFilename("house.JPEG"))
	assert.NoError(t, ImageFilename("floor-plan.WebP"))

	assert.Error(t, ImageFilename("house.pdf"))
	assert.Error(t, ImageFilename("house"))
	assert.Error(t, ImageFilename("my house.png"))
}

func TestRating(t *testing.T) {
	assert.NoError(t, Rating("0"))
	assert.NoError(t, Rating("4.5"))
	assert.NoError(t, Rating("5"))

	assert.Error(t, Rating("5.5"))
	assert.Error(t, Rating("6"))
	assert.Error(t, Rating("4.55"))
}

func TestFieldErrorNamesField(t *testing.T) {
	err := Phone("123")
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "mobileNo", fe.Field)
}
