package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ServerError(t *testing.T) {
	testCases := []struct {
		name      string
		err       *ServerError
		text      string
		temporary bool
	}{
		{
			name:      "with message",
			err:       &ServerError{Status: http.StatusInternalServerError, Message: "boom"},
			text:      "server responded 500: boom",
			temporary: true,
		},
		{
			name:      "without message",
			err:       &ServerError{Status: http.StatusBadRequest},
			text:      "server responded 400 Bad Request",
			temporary: false,
		},
		{
			name:      "rate limited",
			err:       &ServerError{Status: http.StatusTooManyRequests},
			text:      "server responded 429 Too Many Requests",
			temporary: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.text, tc.err.Error())
			assert.Equal(t, tc.temporary, tc.err.Temporary())
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tc.err), ErrServer)
		})
	}
}

func Test_UserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "boom", UserMessage(fmt.Errorf("fetch page 2: %w", &ServerError{Status: 500, Message: "boom"})))
	assert.Equal(t, "server responded 502 Bad Gateway", UserMessage(&ServerError{Status: 502}))
	assert.Equal(t, "network error: dial tcp", UserMessage(fmt.Errorf("%w: dial tcp", ErrNetwork)))
	assert.True(t, errors.Is(fmt.Errorf("%w: x", ErrNetwork), ErrNetwork))
}
