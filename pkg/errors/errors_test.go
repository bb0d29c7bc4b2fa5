package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromResponse(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantType    ErrorType
		wantMessage string
	}{
		{
			name:        "message field",
			status:      http.StatusBadRequest,
			body:        `{"success":false,"message":"Invalid OTP"}`,
			wantType:    ErrorTypeValidation,
			wantMessage: "Invalid OTP",
		},
		{
			name:        "error field fallback",
			status:      http.StatusConflict,
			body:        `{"error":"Already voted"}`,
			wantType:    ErrorTypeConflict,
			wantMessage: "Already voted",
		},
		{
			name:        "unauthorized without body",
			status:      http.StatusUnauthorized,
			body:        ``,
			wantType:    ErrorTypeAuthentication,
			wantMessage: GenericMessage,
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        `{"message":"Admins only"}`,
			wantType:    ErrorTypeAuthorization,
			wantMessage: "Admins only",
		},
		{
			name:        "html error page",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantType:    ErrorTypeInternal,
			wantMessage: GenericMessage,
		},
		{
			name:        "other 4xx is business",
			status:      http.StatusTooManyRequests,
			body:        `{"message":"Slow down"}`,
			wantType:    ErrorTypeBusiness,
			wantMessage: "Slow down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromResponse(tt.status, []byte(tt.body))
			assert.Equal(t, tt.wantType, err.Type)
			assert.Equal(t, tt.wantMessage, err.Message)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(FromResponse(401, nil)))
	assert.True(t, IsAuthFailure(fmt.Errorf("wrapped: %w", FromResponse(403, nil))))
	assert.False(t, IsAuthFailure(FromResponse(400, nil)))
	assert.False(t, IsAuthFailure(stderrors.New("plain")))
	assert.False(t, IsAuthFailure(nil))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "", MessageOf(nil, "x"))
	assert.Equal(t, "Invalid OTP", MessageOf(FromResponse(400, []byte(`{"message":"Invalid OTP"}`)), "fallback"))
	assert.Equal(t, "fallback", MessageOf(stderrors.New("boom"), "fallback"))
	assert.Equal(t, GenericMessage, MessageOf(stderrors.New("boom"), ""))
	assert.Equal(t, GenericMessage, MessageOf(NewNetworkError(context.DeadlineExceeded), "fallback"))
}
