package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierflow/media-stash/internal/media"
)

func TestHealthz(t *testing.T) {
	req, err := http.NewRequest("GET", "/healthz", nil)
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(healthz)
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		header       string
		expectedCode int
	}{
		{
			name:         "valid token",
			token:        "secret",
			header:       "Bearer secret",
			expectedCode: http.StatusOK,
		},
		{
			name:         "invalid token",
			token:        "secret",
			header:       "Bearer wrong",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "no header",
			token:        "secret",
			header:       "",
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("GET", "/", nil)
			assert.NoError(t, err)
			req.Header.Set("Authorization", tt.header)

			rr := httptest.NewRecorder()
			handler := auth(tt.token, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestWriteSaveError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{
			name:         "invalid mime type",
			err:          &media.InvalidMimeTypeError{Received: "text/html", Allowed: media.AllowedMimeTypes()},
			expectedCode: http.StatusUnsupportedMediaType,
		},
		{
			name:         "invalid storage mode",
			err:          &media.InvalidStorageModeError{Mode: "s3"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "file too large",
			err:          &media.FileTooLargeError{Size: media.MaxInlineBytes + 1, MaxSize: media.MaxInlineBytes},
			expectedCode: http.StatusRequestEntityTooLarge,
		},
		{
			name:         "cloud not implemented",
			err:          media.ErrNotImplemented,
			expectedCode: http.StatusNotImplemented,
		},
		{
			name:         "write error",
			err:          &media.WriteError{Path: "users/u1/x.png"},
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeSaveError(rr, tt.err)
			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestWriteSaveErrorFileTooLargeDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	writeSaveError(rr, &media.FileTooLargeError{
		Size:        media.MaxInlineBytes + 1024,
		MaxSize:     media.MaxInlineBytes,
		Recommended: []media.StorageMode{media.StorageModeLocal, media.StorageModeCloud},
	})

	var body errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, float64(16777216), body.Details["maxSize"])
	assert.Equal(t, float64(media.MaxInlineBytes+1024), body.Details["size"])
}
