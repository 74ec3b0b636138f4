package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestIssueValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		kind Kind
	}{
		{name: "user", kind: KindUser},
		{name: "instructor", kind: KindInstructor},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id := uuid.NewString()
			token, err := Issue(tt.kind, id, SessionTTL, testSecret)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			subject, err := Validate(token, tt.kind, testSecret)
			require.NoError(t, err)
			assert.Equal(t, id, subject)
		})
	}
}

func TestValidate_WrongKindRejected(t *testing.T) {
	t.Parallel()

	userToken, err := Issue(KindUser, uuid.NewString(), SessionTTL, testSecret)
	require.NoError(t, err)
	instructorToken, err := Issue(KindInstructor, uuid.NewString(), SessionTTL, testSecret)
	require.NoError(t, err)

	_, err = Validate(userToken, KindInstructor, testSecret)
	assert.ErrorIs(t, err, ErrWrongKind)

	_, err = Validate(instructorToken, KindUser, testSecret)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestValidate_Expired(t *testing.T) {
	t.Parallel()

	token, err := Issue(KindUser, uuid.NewString(), -time.Minute, testSecret)
	require.NoError(t, err)

	_, err = Validate(token, KindUser, testSecret)
	// Expired must be reported as expiry, never as a signature problem.
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrBadSignature)
}

func TestValidate_BadSignature(t *testing.T) {
	t.Parallel()

	token, err := Issue(KindUser, uuid.NewString(), SessionTTL, testSecret)
	require.NoError(t, err)

	_, err = Validate(token, KindUser, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		_, err := Validate(bad, KindUser, testSecret)
		assert.ErrorIs(t, err, ErrMalformed, "input %q", bad)
	}
}
