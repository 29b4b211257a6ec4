package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "Chat not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Chat not found"}`, rec.Body.String())
}

func TestRespondErrorDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorDetail(rec, http.StatusGatewayTimeout, "AI service timed out", "deadline exceeded")

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.JSONEq(t, `{"message":"AI service timed out","error":"deadline exceeded"}`, rec.Body.String())
}
