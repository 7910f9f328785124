package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ServiceID string  `json:"serviceId" validate:"required,uuid"`
	Email     *string `json:"contactEmail,omitempty" validate:"omitempty,email"`
}

func TestDecodeJSON(t *testing.T) {
	var dst sample

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"serviceId":"x"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.ServiceID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"serviceId":"x","extra":1}`))
	assert.Error(t, DecodeJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"serviceId":"x"}{"serviceId":"y"}`))
	assert.Error(t, DecodeJSON(req, &dst))
}

func TestDecodeOptionalJSON_EmptyBody(t *testing.T) {
	var dst sample
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.NoError(t, DecodeOptionalJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.NoError(t, DecodeOptionalJSON(req, &dst))
}

func TestValidate_UsesJSONNames(t *testing.T) {
	bad := "nope"
	err := Validate(&sample{ServiceID: "abc", Email: &bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "serviceId (uuid)")
	assert.Contains(t, err.Error(), "contactEmail (email)")

	assert.NoError(t, Validate(&sample{ServiceID: "6f1c2a7e-3b1d-4e5f-9a0b-1c2d3e4f5a6b"}))
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondConflict(rec, "занято")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"занято"}`, rec.Body.String())
}
