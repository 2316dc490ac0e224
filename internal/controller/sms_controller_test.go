package controller_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/artbattle/sms-marketing-backend/internal/controller"
)

func TestSendEnqueuesJob(t *testing.T) {
	publisher := &mockPublisher{}
	ctrl := &controller.SMSController{
		Publisher: publisher,
		Auth:      newAuthenticator(map[string]int{"admin-1": 1}),
	}

	body := `{"to":"+15551234567","message":"Hi %%NAME%%"}`
	req := httptest.NewRequest(http.MethodPost, "/sms/send", strings.NewReader(body))
	authorize(t, req, "admin-1")
	rec := httptest.NewRecorder()
	ctrl.Send(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["queued"] != true {
		t.Errorf("response = %v", resp)
	}
	if len(publisher.jobs) != 1 || publisher.jobs[0].To != "+15551234567" {
		t.Errorf("published jobs = %+v", publisher.jobs)
	}
}

func TestSendMissingFields(t *testing.T) {
	ctrl := &controller.SMSController{
		Publisher: &mockPublisher{},
		Auth:      newAuthenticator(map[string]int{"admin-1": 1}),
	}

	req := httptest.NewRequest(http.MethodPost, "/sms/send", strings.NewReader(`{"to":"+15551234567"}`))
	authorize(t, req, "admin-1")
	rec := httptest.NewRecorder()
	ctrl.Send(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSendQueueFailure(t *testing.T) {
	ctrl := &controller.SMSController{
		Publisher: &mockPublisher{failErr: errors.New("broker unreachable")},
		Auth:      newAuthenticator(map[string]int{"admin-1": 1}),
	}

	body := `{"to":"+15551234567","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/sms/send", strings.NewReader(body))
	authorize(t, req, "admin-1")
	rec := httptest.NewRecorder()
	ctrl.Send(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestSendRequiresAuth(t *testing.T) {
	ctrl := &controller.SMSController{
		Publisher: &mockPublisher{},
		Auth:      newAuthenticator(nil),
	}

	req := httptest.NewRequest(http.MethodPost, "/sms/send", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	ctrl.Send(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
