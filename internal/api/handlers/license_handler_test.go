package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tribalconversions/tribal-backend/internal/api/handlers"
)

func newLicenseHandlerRig() (*gin.Engine, *MockLicenseStore) {
	gin.SetMode(gin.TestMode)
	mockStore := new(MockLicenseStore)
	handler := handlers.NewLicenseHandler(mockStore)

	r := gin.New()
	r.POST("/verify-license", handler.VerifyLicense)
	return r, mockStore
}

func TestLicenseHandler_Valid(t *testing.T) {
	r, mockStore := newLicenseHandlerRig()
	mockStore.On("Verify", mock.Anything, "acme", "key-123").Return(true, nil)

	w := postJSON(r, "/verify-license", gin.H{"client_id": "acme", "license_key": "key-123"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "valid", resp["status"])
	mockStore.AssertExpectations(t)
}

func TestLicenseHandler_Invalid(t *testing.T) {
	r, mockStore := newLicenseHandlerRig()
	mockStore.On("Verify", mock.Anything, "acme", "wrong").Return(false, nil)

	w := postJSON(r, "/verify-license", gin.H{"client_id": "acme", "license_key": "wrong"})

	assert.Equal(t, http.StatusOK, w.Code, "a wrong key is still a 200")
	var resp map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid", resp["status"])
}

func TestLicenseHandler_MissingFields(t *testing.T) {
	r, mockStore := newLicenseHandlerRig()

	for _, body := range []gin.H{
		{"client_id": "acme"},
		{"license_key": "key-123"},
		{},
	} {
		w := postJSON(r, "/verify-license", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/verify-license", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockStore.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
}

func TestLicenseHandler_StoreError(t *testing.T) {
	r, mockStore := newLicenseHandlerRig()
	mockStore.On("Verify", mock.Anything, "acme", "key-123").Return(false, errors.New("db down"))

	w := postJSON(r, "/verify-license", gin.H{"client_id": "acme", "license_key": "key-123"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
