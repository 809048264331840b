package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestStruct struct {
	UID      string   `json:"uid" validate:"notblank,max=64"`
	Password string   `json:"password" validate:"required,password"`
	Email    string   `json:"email" validate:"required,email"`
	Phone    string   `json:"phoneNumber" validate:"required,phone"`
	Roles    []string `json:"roles" validate:"required"`
}

func validTestStruct() TestStruct {
	return TestStruct{
		UID:      "alice",
		Password: "Passw0rd!",
		Email:    "alice@example.com",
		Phone:    "010-1234-5678",
		Roles:    []string{},
	}
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := validTestStruct()

		err := ValidateStruct(&s)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(*TestStruct)
		field  string
	}{
		{"blank uid", func(s *TestStruct) { s.UID = "   " }, "uid"},
		{"weak password", func(s *TestStruct) { s.Password = "password" }, "password"},
		{"invalid email", func(s *TestStruct) { s.Email = "invalid-email" }, "email"},
		{"invalid phone", func(s *TestStruct) { s.Phone = "02-123-4567" }, "phoneNumber"},
		{"nil roles", func(s *TestStruct) { s.Roles = nil }, "roles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validTestStruct()
			tt.mutate(&s)

			err := ValidateStruct(&s)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			fields := GetValidationFields(err)
			assert.Contains(t, fields, tt.field)
			assert.Len(t, fields, 1)
		})
	}
}

func TestIsStrongPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"aB3$efgh", true},
		{"Zz9?Zz9?Zz9?", true},
		{"aB3$efg", false},    // too short
		{"password1!", false}, // no upper
		{"PASSWORD1!", false}, // no lower
		{"Password!!", false}, // no digit
		{"Password11", false}, // no special
		{"Passw0rd!~", false}, // disallowed character
		{"Pass w0rd!", false}, // space
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStrongPassword(tt.password))
		})
	}
}

func TestIsPhoneNumber(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"010-1234-5678", true},
		{"01012345678", true},
		{"011-123-4567", true},
		{"016-1234-5678", true},
		{"019-123-4567", true},
		{"0101234-5678", true},
		{"012-1234-5678", false},
		{"02-1234-5678", false},
		{"010-12-5678", false},
		{"010-1234-567", false},
		{"010_1234_5678", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPhoneNumber(tt.phone))
		})
	}
}

func TestNewValidationError(t *testing.T) {
	t.Run("creates validation error with field details", func(t *testing.T) {
		s := TestStruct{
			Email: "invalid-email",
			Phone: "123",
		}

		err := ValidateStruct(&s)
		require.Error(t, err)

		validationErr, ok := err.(*ValidationError)
		require.True(t, ok)

		assert.Equal(t, "Validation failed", validationErr.Message)
		assert.Contains(t, validationErr.Fields, "uid")
		assert.Contains(t, validationErr.Fields, "password")
		assert.Contains(t, validationErr.Fields, "email")
		assert.Contains(t, validationErr.Fields, "phoneNumber")
		assert.Contains(t, validationErr.Fields, "roles")
		assert.Equal(t, "password is required", validationErr.Fields["password"])
	})
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Message: "Test validation error",
		Fields: map[string]string{
			"field1": "error1",
		},
	}

	assert.Equal(t, "Test validation error", err.Error())
}

func TestIsValidationError(t *testing.T) {
	t.Run("is validation error", func(t *testing.T) {
		err := &ValidationError{
			Message: "test",
			Fields:  map[string]string{},
		}

		assert.True(t, IsValidationError(err))
	})

	t.Run("is not validation error", func(t *testing.T) {
		err := assert.AnError

		assert.False(t, IsValidationError(err))
	})
}

func TestGetValidationFields(t *testing.T) {
	fields := map[string]string{"field1": "error1"}
	assert.Equal(t, fields, GetValidationFields(&ValidationError{Message: "test", Fields: fields}))
	assert.Nil(t, GetValidationFields(assert.AnError))
}

func TestParseUUID(t *testing.T) {
	id := uuid.New()

	parsed, err := ParseUUID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseUUID("not-a-uuid")
	assert.Error(t, err)
}
