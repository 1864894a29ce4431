package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"resumesmith/internal/database"
	"resumesmith/internal/resume"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.User{}, &database.Resume{}, &database.Photo{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedResume(t *testing.T, db *gorm.DB, userID uint) *database.Resume {
	t.Helper()
	content, err := json.Marshal(resume.NewProfile())
	if err != nil {
		t.Fatalf("marshal profile: %v", err)
	}
	r := database.Resume{
		Title:   "Test Resume",
		Content: datatypes.JSON(content),
		UserID:  userID,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("seed resume: %v", err)
	}
	return &r
}

func storedProfile(t *testing.T, db *gorm.DB, resumeID uint) *resume.Profile {
	t.Helper()
	var r database.Resume
	if err := db.First(&r, resumeID).Error; err != nil {
		t.Fatalf("reload resume: %v", err)
	}
	var p resume.Profile
	if err := json.Unmarshal(r.Content, &p); err != nil {
		t.Fatalf("decode content: %v", err)
	}
	return &p
}

func sectionTestContext(t *testing.T, method, path string, body any, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reqBody *bytes.Buffer = &bytes.Buffer{}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	c.Set("userID", uint(1))
	return c, w
}

func TestAddSection_PersistsAndOrders(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	c, w := sectionTestContext(t, http.MethodPost, "/v1/resumes/1/sections",
		gin.H{"title": "Certifications", "type": "bullets"},
		gin.Params{{Key: "id", Value: "1"}})

	h.AddSection(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	p := storedProfile(t, db, r.ID)
	if len(p.CustomSections) != 1 {
		t.Fatalf("expected one custom section, got %d", len(p.CustomSections))
	}
	cs := p.CustomSections[0]
	if cs.Title != "Certifications" || cs.Type != resume.SectionBullets {
		t.Fatalf("unexpected section: %+v", cs)
	}
	if p.SectionOrder[len(p.SectionOrder)-1] != cs.Key {
		t.Fatalf("new section should be last in order: %v", p.SectionOrder)
	}
}

func TestAddSection_RejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	c, w := sectionTestContext(t, http.MethodPost, "/v1/resumes/1/sections",
		gin.H{"title": "Odd", "type": "carousel"},
		gin.Params{{Key: "id", Value: "1"}})

	h.AddSection(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if p := storedProfile(t, db, r.ID); len(p.CustomSections) != 0 {
		t.Fatal("rejected add must not modify stored profile")
	}
}

func TestAddSection_BlankTitleIsSilentNoop(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	c, w := sectionTestContext(t, http.MethodPost, "/v1/resumes/1/sections",
		gin.H{"title": "   ", "type": "bullets"},
		gin.Params{{Key: "id", Value: "1"}})

	h.AddSection(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if p := storedProfile(t, db, r.ID); len(p.CustomSections) != 0 {
		t.Fatal("blank-title add must not modify stored profile")
	}
}

func TestRemoveSection_MissingKeyIsSilentNoop(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	c, w := sectionTestContext(t, http.MethodDelete, "/v1/resumes/1/sections/custom-gone", nil,
		gin.Params{{Key: "id", Value: "1"}, {Key: "key", Value: "custom-gone"}})

	h.RemoveSection(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	p := storedProfile(t, db, r.ID)
	if len(p.SectionOrder) != len(resume.NewProfile().SectionOrder) {
		t.Fatalf("missing-key remove must not modify order: %v", p.SectionOrder)
	}
}

func TestRemoveSection_BuiltinRejected(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	c, w := sectionTestContext(t, http.MethodDelete, "/v1/resumes/1/sections/experience", nil,
		gin.Params{{Key: "id", Value: "1"}, {Key: "key", Value: "experience"}})

	h.RemoveSection(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	p := storedProfile(t, db, r.ID)
	if len(p.SectionOrder) != 3 {
		t.Fatalf("builtin removal must not change order: %v", p.SectionOrder)
	}
}

func TestMoveSection_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	move := func(key, direction string) {
		c, w := sectionTestContext(t, http.MethodPost, "/v1/resumes/1/sections/"+key+"/move",
			gin.H{"direction": direction},
			gin.Params{{Key: "id", Value: "1"}, {Key: "key", Value: key}})
		h.MoveSection(c)
		if w.Code != http.StatusOK {
			t.Fatalf("move %s %s: expected 200 got %d body=%s", key, direction, w.Code, w.Body.String())
		}
	}

	move("skills", "up")
	p := storedProfile(t, db, r.ID)
	if p.SectionOrder[1] != "skills" {
		t.Fatalf("skills should be second after move up: %v", p.SectionOrder)
	}

	move("skills", "down")
	p = storedProfile(t, db, r.ID)
	if p.SectionOrder[2] != "skills" {
		t.Fatalf("skills should be back at end: %v", p.SectionOrder)
	}
}

func TestMoveSection_BoundaryReturnsUnchanged(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	c, w := sectionTestContext(t, http.MethodPost, "/v1/resumes/1/sections/experience/move",
		gin.H{"direction": "up"},
		gin.Params{{Key: "id", Value: "1"}, {Key: "key", Value: "experience"}})

	h.MoveSection(c)

	if w.Code != http.StatusOK {
		t.Fatalf("boundary move should still be 200, got %d", w.Code)
	}
	p := storedProfile(t, db, r.ID)
	if p.SectionOrder[0] != "experience" {
		t.Fatalf("boundary move must not change order: %v", p.SectionOrder)
	}
}

func TestToggleSection_FlipsVisibility(t *testing.T) {
	db := newTestDB(t)
	r := seedResume(t, db, 1)
	h := NewSectionHandler(db)

	toggle := func() *httptest.ResponseRecorder {
		c, w := sectionTestContext(t, http.MethodPost, "/v1/resumes/1/sections/education/toggle", nil,
			gin.Params{{Key: "id", Value: "1"}, {Key: "key", Value: "education"}})
		h.ToggleSection(c)
		return w
	}

	if w := toggle(); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	p := storedProfile(t, db, r.ID)
	if p.SectionVisible("education") {
		t.Fatal("education should be hidden after toggle")
	}

	if w := toggle(); w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	p = storedProfile(t, db, r.ID)
	if !p.SectionVisible("education") {
		t.Fatal("education should be visible after second toggle")
	}
}

func TestListSections_OtherUsersResumeHidden(t *testing.T) {
	db := newTestDB(t)
	seedResume(t, db, 2)
	h := NewSectionHandler(db)

	c, w := sectionTestContext(t, http.MethodGet, "/v1/resumes/1/sections", nil,
		gin.Params{{Key: "id", Value: "1"}})

	h.ListSections(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign resume, got %d", w.Code)
	}
}
