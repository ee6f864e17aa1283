package utils

import (
	"errors"
	"intake-service/internal/pkg/constvars"
	"intake-service/internal/pkg/exceptions"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) exceptions.CustomError {
	var envelope exceptions.CustomError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope
}

func TestBuildErrorResponse(t *testing.T) {
	t.Run("Custom Error Keeps Its Status", func(t *testing.T) {
		t.Setenv("APP_ENV", "development")
		rr := httptest.NewRecorder()

		BuildErrorResponse(zap.NewNop(), rr, exceptions.ErrTemplateValidation(nil, "img", "Mark the pain"))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		envelope := decodeEnvelope(t, rr)
		assert.False(t, envelope.Success)
		assert.Contains(t, envelope.ClientMessage, "Mark the pain")
		assert.NotEmpty(t, envelope.DevMessage)
		assert.NotEmpty(t, envelope.Locations)
	})

	t.Run("Production Hides Dev Details", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		rr := httptest.NewRecorder()

		BuildErrorResponse(zap.NewNop(), rr, exceptions.ErrTemplateValidation(nil, "img", "Mark the pain"))

		envelope := decodeEnvelope(t, rr)
		assert.Empty(t, envelope.DevMessage)
		assert.Empty(t, envelope.Locations)
	})

	t.Run("Plain Error Is Internal", func(t *testing.T) {
		rr := httptest.NewRecorder()

		BuildErrorResponse(zap.NewNop(), rr, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, constvars.ErrClientSomethingWrongWithApplication, decodeEnvelope(t, rr).ClientMessage)
	})

	t.Run("Oversized Body Behind A Parse Error", func(t *testing.T) {
		rr := httptest.NewRecorder()

		BuildErrorResponse(zap.NewNop(), rr, exceptions.ErrCannotParseJSON(&http.MaxBytesError{Limit: 1024}))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
		assert.Equal(t, constvars.ErrClientRequestBodyTooLarge, decodeEnvelope(t, rr).ClientMessage)
	})
}

func TestBuildSuccessResponse(t *testing.T) {
	rr := httptest.NewRecorder()

	BuildSuccessResponse(rr, http.StatusCreated, "created", map[string]string{"id": "x"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, constvars.MIMEApplicationJSON, rr.Header().Get(constvars.HeaderContentType))
	assert.JSONEq(t, `{"success":true,"message":"created","data":{"id":"x"}}`, rr.Body.String())
}
