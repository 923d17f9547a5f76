package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPErrorDiagnostic(t *testing.T) {
	message := "Prediction is not open for betting"
	tests := []struct {
		name      string
		errorCode string
		message   *string
		want      string
		wantUser  string
	}{
		{"with error code", "BAD_REQUEST", &message, "HTTP Status: 400. Error response: BAD_REQUEST. " + message, message},
		{"without error code", "", &message, "HTTP Status: 400. " + message, message},
		{"without message", "", nil, "HTTP Status: 400. " + UserMessageNoServerError, UserMessageNoServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewHTTPError(400, tt.errorCode, tt.message)
			assert.Equal(t, tt.want, err.Diagnostic)
			assert.Equal(t, tt.wantUser, UserMessageFor(err))
			assert.Equal(t, 400, err.StatusCode)
			assert.NotContains(t, err.Diagnostic, "Error response: .")
		})
	}
}

func TestUserMessageForNonAPIError(t *testing.T) {
	assert.Equal(t, UserMessageUnexpected, UserMessageFor(errors.New("boom")))
	assert.Empty(t, UserMessageFor(nil))
}
