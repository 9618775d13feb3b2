package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tribalconversions/tribal-backend/internal/services"
)

// LicenseHandler serves per-client license key verification.
type LicenseHandler struct {
	store services.ILicenseStore
}

// NewLicenseHandler creates a new LicenseHandler.
func NewLicenseHandler(store services.ILicenseStore) *LicenseHandler {
	return &LicenseHandler{store: store}
}

// licenseCheckRequest is the POST /verify-license body.
type licenseCheckRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	LicenseKey string `json:"license_key" binding:"required"`
}

// VerifyLicense handles POST /verify-license. Valid and invalid keys both
// answer 200; only a malformed body or a store failure is an error status.
func (h *LicenseHandler) VerifyLicense(c *gin.Context) {
	var req licenseCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	valid, err := h.store.Verify(c.Request.Context(), req.ClientID, req.LicenseKey)
	if err != nil {
		log.Printf("License verification failed for %s: %v", req.ClientID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "License verification failed"})
		return
	}

	status := "invalid"
	if valid {
		status = "valid"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
