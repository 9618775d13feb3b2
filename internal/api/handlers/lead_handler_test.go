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
	"github.com/tribalconversions/tribal-backend/internal/config"
	"github.com/tribalconversions/tribal-backend/internal/models"
)

func newLeadHandlerRig() (*gin.Engine, *MockScoreService, *MockMessageService, *MockLeadService, *MockEmailSender) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{SmtpFromAddress: "noreply@test.local"}
	mockScore := new(MockScoreService)
	mockMessage := new(MockMessageService)
	mockLead := new(MockLeadService)
	mockSender := new(MockEmailSender)
	handler := handlers.NewLeadHandler(cfg, mockScore, mockMessage, mockLead, mockSender)

	r := gin.New()
	r.POST("/submit", handler.Submit)
	r.GET("/leads", handler.ListLeads)
	r.GET("/analytics/summary", handler.AnalyticsSummary)
	r.GET("/analytics/timeline", handler.AnalyticsTimeline)
	return r, mockScore, mockMessage, mockLead, mockSender
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestLeadHandler_Submit_Success(t *testing.T) {
	r, mockScore, mockMessage, mockLead, mockSender := newLeadHandlerRig()

	attrs := models.LeadAttributes{Name: "Jane", Email: "jane@example.com", Budget: "150k+"}
	storedLead := &models.Lead{Seq: 7, LeadAttributes: attrs, Score: 85, Message: "Hi Jane!"}

	mockScore.On("Score", mock.Anything, attrs).Return(85)
	mockMessage.On("Compose", mock.Anything, attrs).Return("Hi Jane!")
	mockLead.On("CreateLeadWithFollowups", mock.Anything, attrs, 85, "Hi Jane!").Return(storedLead, nil)
	mockSender.On("Send", mock.Anything, []string{"jane@example.com"}, handlers.WelcomeSubject, mock.Anything).Return(nil)

	w := postJSON(r, "/submit", attrs)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Lead received!", resp["message"])
	assert.Equal(t, float64(85), resp["score"])
	assert.Equal(t, "Hi Jane!", resp["followup"])
	assert.Equal(t, true, resp["email_sent"])
	mockScore.AssertExpectations(t)
	mockMessage.AssertExpectations(t)
	mockLead.AssertExpectations(t)
	mockSender.AssertExpectations(t)
}

func TestLeadHandler_Submit_InvalidBody(t *testing.T) {
	r, _, _, mockLead, _ := newLeadHandlerRig()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/submit", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockLead.AssertNotCalled(t, "CreateLeadWithFollowups", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadHandler_Submit_StoreFailureIsFatal(t *testing.T) {
	r, mockScore, mockMessage, mockLead, mockSender := newLeadHandlerRig()

	attrs := models.LeadAttributes{Name: "Jane", Email: "jane@example.com"}
	mockScore.On("Score", mock.Anything, attrs).Return(10)
	mockMessage.On("Compose", mock.Anything, attrs).Return("msg")
	mockLead.On("CreateLeadWithFollowups", mock.Anything, attrs, 10, "msg").Return(nil, errors.New("db down"))

	w := postJSON(r, "/submit", attrs)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadHandler_Submit_EmailFailureStillSucceeds(t *testing.T) {
	r, mockScore, mockMessage, mockLead, mockSender := newLeadHandlerRig()

	attrs := models.LeadAttributes{Name: "Jane", Email: "jane@example.com"}
	storedLead := &models.Lead{LeadAttributes: attrs, Score: 10, Message: "msg"}
	mockScore.On("Score", mock.Anything, attrs).Return(10)
	mockMessage.On("Compose", mock.Anything, attrs).Return("msg")
	mockLead.On("CreateLeadWithFollowups", mock.Anything, attrs, 10, "msg").Return(storedLead, nil)
	mockSender.On("Send", mock.Anything, []string{"jane@example.com"}, handlers.WelcomeSubject, mock.Anything).Return(errors.New("smtp refused"))

	w := postJSON(r, "/submit", attrs)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["email_sent"])
	assert.Equal(t, float64(10), resp["score"])
}

func TestLeadHandler_Submit_NoEmailSkipsSend(t *testing.T) {
	r, mockScore, mockMessage, mockLead, mockSender := newLeadHandlerRig()

	attrs := models.LeadAttributes{Name: "Anonymous"}
	storedLead := &models.Lead{LeadAttributes: attrs, Score: 0, Message: "msg"}
	mockScore.On("Score", mock.Anything, attrs).Return(0)
	mockMessage.On("Compose", mock.Anything, attrs).Return("msg")
	mockLead.On("CreateLeadWithFollowups", mock.Anything, attrs, 0, "msg").Return(storedLead, nil)

	w := postJSON(r, "/submit", attrs)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["email_sent"])
	mockSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeadHandler_ListLeads(t *testing.T) {
	r, _, _, mockLead, _ := newLeadHandlerRig()

	leads := []models.Lead{
		{Seq: 2, LeadAttributes: models.LeadAttributes{Name: "High"}, Score: 90},
		{Seq: 1, LeadAttributes: models.LeadAttributes{Name: "Low"}, Score: 10},
	}
	mockLead.On("ListByScoreDesc", mock.Anything).Return(leads, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/leads", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []models.Lead
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, "High", resp[0].Name)
	mockLead.AssertExpectations(t)
}

func TestLeadHandler_ListLeads_Error(t *testing.T) {
	r, _, _, mockLead, _ := newLeadHandlerRig()
	mockLead.On("ListByScoreDesc", mock.Anything).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/leads", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLeadHandler_AnalyticsSummary(t *testing.T) {
	r, _, _, mockLead, _ := newLeadHandlerRig()

	summary := &models.AnalyticsSummary{TotalLeads: 12, AverageScore: 44.5, LeadsThisMonth: 3}
	mockLead.On("AnalyticsSummary", mock.Anything).Return(summary, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/analytics/summary", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp models.AnalyticsSummary
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(12), resp.TotalLeads)
	assert.Equal(t, 44.5, resp.AverageScore)
}

func TestLeadHandler_AnalyticsTimeline(t *testing.T) {
	r, _, _, mockLead, _ := newLeadHandlerRig()

	points := []models.TimelinePoint{
		{Date: "2025-06-01", Count: 2},
		{Date: "2025-06-02", Count: 5},
	}
	mockLead.On("AnalyticsTimeline", mock.Anything).Return(points, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/analytics/timeline", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []models.TimelinePoint
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, "2025-06-01", resp[0].Date)
}
