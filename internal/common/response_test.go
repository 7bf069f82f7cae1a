package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewForbiddenError("You can only delete your own messages"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "You can only delete your own messages", body.Message)
	assert.Empty(t, body.ErrorType)
	assert.Empty(t, body.Error)
}

func TestWriteError_TypeOnlyWhenSet(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, &AppError{Kind: KindForbidden, Message: "Please verify your email", Type: "EMAIL_NOT_VERIFIED"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "EMAIL_NOT_VERIFIED", body.ErrorType)

	rec = httptest.NewRecorder()
	WriteError(rec, NewValidationError("bad"))
	assert.NotContains(t, rec.Body.String(), "errorType")
}

func TestWriteError_ServerErrorCarriesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewServerError("Failed to send message", errors.New("connection refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to send message", body.Message)
	assert.Equal(t, "connection refused", body.Error)
}

func TestWriteError_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("kaput"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "kaput")
}

type decodeTarget struct {
	SenderID string `json:"senderId" validate:"required"`
}

func TestDecodeJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"senderId":"u1"}`))
	var dst decodeTarget
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
	assert.Equal(t, "u1", dst.SenderID)

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`))
	err := DecodeJSON(httptest.NewRecorder(), req, &decodeTarget{})
	assert.True(t, IsKind(err, KindValidation))
	assert.Contains(t, err.Error(), "SenderID is required")

	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{not json`))
	err = DecodeJSON(httptest.NewRecorder(), req, &decodeTarget{})
	assert.True(t, IsKind(err, KindValidation))
}

func TestDecodeJSON_RejectsOversizedBody(t *testing.T) {
	body := `{"senderId":"` + strings.Repeat("x", MaxJSONBody) + `"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))

	err := DecodeJSON(httptest.NewRecorder(), req, &decodeTarget{})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindValidation))
	assert.Equal(t, "Request body too large", err.Error())
}
