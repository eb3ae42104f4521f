package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Bio   string `json:"bio" validate:"omitempty,max=5"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&signup{Name: "Alice", Email: "a@x.com"}))

	cases := []struct {
		in   signup
		want string
	}{
		{signup{Email: "a@x.com"}, "Name is required"},
		{signup{Name: "Alice", Email: "nope"}, "Email must be a valid email address"},
		{signup{Name: "Alice", Email: "a@x.com", Bio: "too long"}, "Bio must be at most 5 characters"},
	}
	for _, tc := range cases {
		err := v.Validate(&tc.in)
		require.Error(t, err)
		assert.Equal(t, tc.want, Message(err))
	}
}
