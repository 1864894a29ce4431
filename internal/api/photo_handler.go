package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumesmith/internal/database"
	"resumesmith/internal/storage"
)

// photoStorage 是 PhotoHandler 依赖的最小对象存储面，方便测试替换。
type photoStorage interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// PhotoHandler 负责头像照片的上传、访问与删除。
// 上传前走 clamd 病毒扫描，数量与频率限额都在这里兜住。
type PhotoHandler struct {
	store            *gormPhotoStore
	Storage          photoStorage
	Logger           *slog.Logger
	ClamdAddr        string
	MaxBytes         int64
	MIMEWhitelist    []string
	RedisClient      *redis.Client
	maxPhotosPerUser int
	maxUploadsPerDay int
}

// NewPhotoHandler 返回 PhotoHandler 实例。
func NewPhotoHandler(db *gorm.DB, storageClient photoStorage, redisClient *redis.Client, logger *slog.Logger, clamdAddr string, maxBytes int64, maxPhotosPerUser, maxUploadsPerDay int) *PhotoHandler {
	return &PhotoHandler{
		store:            newGormPhotoStore(db),
		Storage:          storageClient,
		Logger:           logger,
		ClamdAddr:        clamdAddr,
		MaxBytes:         maxBytes,
		MIMEWhitelist:    []string{"image/png", "image/jpeg", "image/webp"},
		RedisClient:      redisClient,
		maxPhotosPerUser: maxPhotosPerUser,
		maxUploadsPerDay: maxUploadsPerDay,
	}
}

// gormPhotoStore 把照片归属记录落在数据库里，限额统计依赖它。
type gormPhotoStore struct {
	db *gorm.DB
}

func newGormPhotoStore(db *gorm.DB) *gormPhotoStore {
	return &gormPhotoStore{db: db}
}

func (s *gormPhotoStore) Create(ctx context.Context, photo database.Photo) error {
	return s.db.WithContext(ctx).Create(&photo).Error
}

func (s *gormPhotoStore) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Photo{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *gormPhotoStore) FindByKey(ctx context.Context, userID uint, objectKey string) (*database.Photo, error) {
	var photo database.Photo
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND object_key = ?", userID, objectKey).
		First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func (s *gormPhotoStore) Delete(ctx context.Context, photoID uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&database.Photo{}, photoID).Error
}

func (s *gormPhotoStore) ListByUser(ctx context.Context, userID uint) ([]database.Photo, error) {
	var photos []database.Photo
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&photos).Error
	return photos, err
}

func (h *PhotoHandler) mimeAllowed(contentType string) bool {
	for _, allowed := range h.MIMEWhitelist {
		if strings.EqualFold(contentType, allowed) {
			return true
		}
	}
	return false
}

// scanForViruses 把文件流交给 clamd。地址为空表示扫描被显式关掉（本地开发）。
func (h *PhotoHandler) scanForViruses(reader io.Reader) error {
	if h.ClamdAddr == "" {
		return nil
	}

	clamdClient := clamd.NewClamd(h.ClamdAddr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(reader, abortChan)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return fmt.Errorf("malicious file detected: %s", result.Description)
		}
	}
	return nil
}

// UploadPhoto 处理受保护的照片上传。
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	if h.MaxBytes > 0 && file.Size > h.MaxBytes {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !h.mimeAllowed(contentType) {
		BadRequest(c, "unsupported file type")
		return
	}

	ctx := c.Request.Context()

	if h.maxPhotosPerUser > 0 {
		count, err := h.store.CountByUser(ctx, userID)
		if err != nil {
			Internal(c, "failed to count photos")
			return
		}
		if count >= int64(h.maxPhotosPerUser) {
			Forbidden(c, "photo limit reached")
			return
		}
	}

	if h.maxUploadsPerDay > 0 && h.RedisClient != nil {
		count, err := incrWithTTL(ctx, h.RedisClient, dailyQuotaKey("photo_upload_rate", userID), 24*time.Hour)
		if err != nil {
			Internal(c, "failed to check upload quota")
			return
		}
		if count > int64(h.maxUploadsPerDay) {
			Error(c, http.StatusTooManyRequests, "daily upload limit reached")
			return
		}
	}

	fileReader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}

	err = h.scanForViruses(fileReader)
	fileReader.Close()
	if err != nil {
		if strings.Contains(err.Error(), "malicious") {
			BadRequest(c, "malicious file detected")
			return
		}
		if h.Logger != nil {
			h.Logger.Error("scan file", slog.String("error", err.Error()))
		}
		Internal(c, "failed to scan file")
		return
	}

	fileReader, err = file.Open()
	if err != nil {
		Internal(c, "failed to reopen file")
		return
	}
	defer fileReader.Close()

	objectKey := fmt.Sprintf("user-photos/%d/%s%s", userID, uuid.NewString(), extensionForMIME(contentType))

	if _, err := h.Storage.UploadFile(ctx, objectKey, fileReader, file.Size, contentType); err != nil {
		if h.Logger != nil {
			h.Logger.Error("upload file", slog.String("error", err.Error()))
		}
		Internal(c, "failed to upload file")
		return
	}

	if err := h.store.Create(ctx, database.Photo{UserID: userID, ObjectKey: objectKey}); err != nil {
		_ = h.Storage.DeleteObject(ctx, objectKey)
		Internal(c, "failed to record photo")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"objectKey": objectKey})
}

func extensionForMIME(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// ListPhotos 列出用户上传的照片，附带短期预签名链接。
func (h *PhotoHandler) ListPhotos(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	photos, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		Internal(c, "failed to list photos")
		return
	}

	items := make([]gin.H, 0, len(photos))
	for _, photo := range photos {
		url, err := h.Storage.GeneratePresignedURL(ctx, photo.ObjectKey, 10*time.Minute)
		if err != nil {
			if h.Logger != nil {
				h.Logger.Error("generate photo url", slog.String("objectKey", photo.ObjectKey), slog.String("error", err.Error()))
			}
			continue
		}
		items = append(items, gin.H{
			"objectKey":  photo.ObjectKey,
			"previewUrl": url,
			"uploadedAt": photo.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetPhotoURL 返回照片的临时预签名 URL。
func (h *PhotoHandler) GetPhotoURL(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}

	if err := validatePhotoKey(objectKey, userID); err != nil {
		Forbidden(c, "access denied")
		return
	}

	signedURL, err := h.Storage.GeneratePresignedURL(c.Request.Context(), objectKey, 15*time.Minute)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("generate presigned url", slog.String("error", err.Error()))
		}
		Internal(c, "failed to generate url")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

// DeletePhoto 删除照片对象及归属记录。
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	objectKey := c.Query("key")
	if err := validatePhotoKey(objectKey, userID); err != nil {
		Forbidden(c, "access denied")
		return
	}

	ctx := c.Request.Context()
	photo, err := h.store.FindByKey(ctx, userID, objectKey)
	if err != nil {
		NotFound(c, "photo not found")
		return
	}

	// 对象已经不在时继续删记录，保证删除幂等。
	if err := h.Storage.DeleteObject(ctx, objectKey); err != nil && !storage.IsNoSuchKey(err) {
		Internal(c, "failed to delete photo")
		return
	}

	if err := h.store.Delete(ctx, photo.ID); err != nil {
		Internal(c, "failed to delete photo record")
		return
	}

	c.Status(http.StatusNoContent)
}
