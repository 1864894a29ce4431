package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"resumesmith/internal/database"
)

type fakeStorage struct {
	uploaded map[string][]byte

	deleted []string

	presign map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		uploaded: map[string][]byte{},
		presign:  map[string]string{},
	}
}

func (s *fakeStorage) UploadFile(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (*minio.UploadInfo, error) {
	b, _ := io.ReadAll(reader)
	s.uploaded[objectName] = b
	return &minio.UploadInfo{}, nil
}

func (s *fakeStorage) GeneratePresignedURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if v, ok := s.presign[objectKey]; ok {
		return v, nil
	}
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.uploaded, objectKey)
	return nil
}

func newMultipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func newPhotoHandler(db *gorm.DB, storage *fakeStorage, maxPhotos, maxDaily int) *PhotoHandler {
	return &PhotoHandler{
		store:            newGormPhotoStore(db),
		Storage:          storage,
		Logger:           nil,
		ClamdAddr:        "",
		MaxBytes:         5 * 1024 * 1024,
		MIMEWhitelist:    []string{"image/png"},
		RedisClient:      nil,
		maxPhotosPerUser: maxPhotos,
		maxUploadsPerDay: maxDaily,
	}
}

func uploadRequest(t *testing.T, h *PhotoHandler, contentType string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	body, formContentType := newMultipartUpload(t, "a.png", contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/v1/photos/upload", body)
	req.Header.Set("Content-Type", formContentType)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))

	h.UploadPhoto(c)
	return w
}

func TestUploadPhoto_LimitsByCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	storage := newFakeStorage()
	h := newPhotoHandler(db, storage, 4, 0)

	for i := 0; i < 4; i++ {
		objectKey := "user-photos/1/existing-" + strconv.Itoa(i) + ".png"
		if err := h.store.Create(ctx, database.Photo{UserID: 1, ObjectKey: objectKey}); err != nil {
			t.Fatalf("seed photo: %v", err)
		}
	}

	w := uploadRequest(t, h, "image/png", []byte("\x89PNG\r\n\x1a\n"))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
	if len(storage.uploaded) != 0 {
		t.Fatal("over-limit upload must not reach storage")
	}
}

func TestUploadPhoto_StoresObjectAndRecord(t *testing.T) {
	db := newTestDB(t)
	storage := newFakeStorage()
	h := newPhotoHandler(db, storage, 8, 0)

	w := uploadRequest(t, h, "image/png", []byte("\x89PNG\r\n\x1a\n"))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	if len(storage.uploaded) != 1 {
		t.Fatalf("expected one uploaded object, got %d", len(storage.uploaded))
	}

	count, err := h.store.CountByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("count photos: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one photo record, got %d", count)
	}
}

func TestUploadPhoto_RejectsUnsupportedMIME(t *testing.T) {
	db := newTestDB(t)
	storage := newFakeStorage()
	h := newPhotoHandler(db, storage, 8, 0)

	w := uploadRequest(t, h, "application/pdf", []byte("%PDF-1.4"))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestValidatePhotoKey(t *testing.T) {
	cases := []struct {
		key    string
		userID uint
		valid  bool
	}{
		{"user-photos/1/abc.png", 1, true},
		{"user-photos/1/abc.webp", 1, true},
		{"user-photos/2/abc.png", 1, false},
		{"user-photos/1/../2/abc.png", 1, false},
		{"user-photos/1/abc.exe", 1, false},
		{"", 1, false},
	}
	for _, tc := range cases {
		err := validatePhotoKey(tc.key, tc.userID)
		if tc.valid && err != nil {
			t.Errorf("key %q should be valid, got %v", tc.key, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("key %q should be rejected", tc.key)
		}
	}
}

func TestGetPhotoURL_ForeignKeyRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	storage := newFakeStorage()
	h := newPhotoHandler(db, storage, 8, 0)

	req := httptest.NewRequest(http.MethodGet, "/v1/photos/view?key=user-photos/2/abc.png", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("userID", uint(1))

	h.GetPhotoURL(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
}
