package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resumesmith/internal/database"
	"resumesmith/internal/resume"
)

func jsonRequest(t *testing.T, method, path string, payload any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))
	return c, w
}

func TestValidateResumeContent_ReportsFieldErrors(t *testing.T) {
	h := &ResumeHandler{db: newTestDB(t)}

	p := resume.NewProfile()
	p.Personal.Email = "not-an-email"

	c, w := jsonRequest(t, http.MethodPost, "/v1/resumes/validate", p)
	h.ValidateResumeContent(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Valid  bool                `json:"valid"`
		Errors []resume.FieldError `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Valid {
		t.Fatal("profile with bad email should be invalid")
	}
	found := false
	for _, e := range resp.Errors {
		if e.Field == "personal.email" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected personal.email error, got %v", resp.Errors)
	}
}

func TestValidateResumeContent_MalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &ResumeHandler{db: newTestDB(t)}

	req := httptest.NewRequest(http.MethodPost, "/v1/resumes/validate", bytes.NewBufferString(`{"personal": 42}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))

	h.ValidateResumeContent(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateResume_EnforcesLimit(t *testing.T) {
	db := newTestDB(t)
	h := &ResumeHandler{db: db, maxResumes: 2}

	if err := db.Create(&database.User{Username: "u1", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	seedResume(t, db, 1)
	seedResume(t, db, 1)

	content, _ := json.Marshal(resume.NewProfile())
	c, w := jsonRequest(t, http.MethodPost, "/v1/resumes", gin.H{
		"title":   "One Too Many",
		"content": json.RawMessage(content),
	})

	h.CreateResume(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestCreateResume_MarksActive(t *testing.T) {
	db := newTestDB(t)
	h := &ResumeHandler{db: db, maxResumes: 10}

	if err := db.Create(&database.User{Username: "u1", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	content, _ := json.Marshal(resume.NewProfile())
	c, w := jsonRequest(t, http.MethodPost, "/v1/resumes", gin.H{
		"title":   "First",
		"content": json.RawMessage(content),
	})

	h.CreateResume(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var user database.User
	if err := db.First(&user, 1).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if user.ActiveResumeID == nil {
		t.Fatal("created resume should become active")
	}
}
