package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsSentinelAndCause(t *testing.T) {
	sentinel := New(Conflict, "user.email_taken")
	cause := errors.New("duplicate key value")

	err := fmt.Errorf("create user: %w", Wrap(sentinel, cause))

	assert.ErrorIs(t, err, sentinel)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Conflict, KindOf(err))
	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "user.email_taken", e.Key)
}

func TestKindOfUnclassifiedIsInternal(t *testing.T) {
	assert.Equal(t, Internal, KindOf(errors.New("boom")))
	assert.Equal(t, Internal, KindOf(nil))
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		Validation:         http.StatusBadRequest,
		Conflict:           http.StatusBadRequest,
		InvalidCredentials: http.StatusUnauthorized,
		Unauthorized:       http.StatusUnauthorized,
		Forbidden:          http.StatusForbidden,
		NotFound:           http.StatusNotFound,
		Internal:           http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, Status(k), k.String())
	}
}
