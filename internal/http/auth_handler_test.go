package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookcatalog/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	handler := NewAuthHandler(
		auth.Credentials{Username: "admin", Password: "hunter22"},
		"test-secret",
		time.Hour,
	)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "correct credentials",
			body:           `{"username":"admin","password":"hunter22"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wrong password",
			body:           `{"username":"admin","password":"wrong"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong username",
			body:           `{"username":"root","password":"hunter22"}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "empty body fields",
			body:           `{}`,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed json",
			body:           `{"username":`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))

			handler.Login(w, r)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthHandler_Login_TokenIsValid(t *testing.T) {
	handler := NewAuthHandler(
		auth.Credentials{Username: "admin", Password: "hunter22"},
		"test-secret",
		time.Hour,
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"admin","password":"hunter22"}`))
	handler.Login(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := auth.ParseToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}
