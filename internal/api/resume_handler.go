package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumesmith/internal/api/middleware"
	"resumesmith/internal/database"
	"resumesmith/internal/errcode"
	"resumesmith/internal/resume"
	"resumesmith/internal/storage"
	"resumesmith/internal/tasks"
)

// ResumeHandler 负责处理与简历相关的 API 请求。
type ResumeHandler struct {
	db            *gorm.DB
	asynqClient   *asynq.Client
	storage       *storage.Client
	redisClient   *redis.Client
	maxResumes    int
	exportsPerDay int
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(db *gorm.DB, asynqClient *asynq.Client, storageClient *storage.Client, redisClient *redis.Client, maxResumes, exportsPerDay int) *ResumeHandler {
	return &ResumeHandler{
		db:            db,
		asynqClient:   asynqClient,
		storage:       storageClient,
		redisClient:   redisClient,
		maxResumes:    maxResumes,
		exportsPerDay: exportsPerDay,
	}
}

var errInvalidResumeID = errors.New("invalid resume id")

type createResumeRequest struct {
	Title      string         `json:"title" binding:"required"`
	Content    datatypes.JSON `json:"content" binding:"required"`
	TemplateID *string        `json:"template_id"`
}

type resumeListItem struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	TemplateID      string    `json:"template_id,omitempty"`
	PreviewImageURL string    `json:"preview_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type resumeResponse struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	Content         datatypes.JSON `json:"content"`
	TemplateID      string         `json:"template_id,omitempty"`
	PreviewImageURL string         `json:"preview_image_url,omitempty"`
	Status          string         `json:"status,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// decodeProfile 确保提交的 content 至少是合法的档案 JSON。
// 字段级校验走 ValidateResumeContent 接口，这里只挡结构性坏数据。
func decodeProfile(content datatypes.JSON) (*resume.Profile, error) {
	var profile resume.Profile
	if err := json.Unmarshal(content, &profile); err != nil {
		return nil, fmt.Errorf("malformed resume content: %w", err)
	}
	return &profile, nil
}

// CreateResume 保存一份新的简历，超过限额则提示升级。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if _, err := decodeProfile(req.Content); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()

	var count int64
	if err := h.db.WithContext(ctx).
		Model(&database.Resume{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		Internal(c, "failed to count resumes")
		return
	}

	if h.maxResumes > 0 && count >= int64(h.maxResumes) {
		Forbidden(c, "resume limit reached")
		return
	}

	resumeModel := database.Resume{
		Title:   req.Title,
		Content: req.Content,
		UserID:  userID,
	}
	if req.TemplateID != nil {
		resumeModel.TemplateID = *req.TemplateID
	}

	if err := h.db.WithContext(ctx).Create(&resumeModel).Error; err != nil {
		Internal(c, "failed to create resume")
		return
	}

	if err := h.setActiveResumeID(ctx, userID, &resumeModel.ID); err != nil {
		Internal(c, "failed to mark active resume")
		return
	}

	c.JSON(http.StatusCreated, newResumeResponse(resumeModel))
}

// GetLatestResume 返回用户最近的简历，没有则返回一份空白档案。
func (h *ResumeHandler) GetLatestResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	resumeModel, err := h.findActiveOrLatestResume(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, resumeResponse{
				ID:      0,
				Title:   defaultResumeTitle,
				Content: defaultResumeContent(),
			})
			return
		}
		Internal(c, "failed to query latest resume")
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*resumeModel))
}

// ListResumes 列出用户全部简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	var resumes []database.Resume
	if err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&resumes).Error; err != nil {
		Internal(c, "failed to list resumes")
		return
	}

	items := make([]resumeListItem, 0, len(resumes))
	for _, r := range resumes {
		items = append(items, resumeListItem{
			ID:              r.ID,
			Title:           r.Title,
			TemplateID:      r.TemplateID,
			PreviewImageURL: r.PreviewImageURL,
			CreatedAt:       r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, items)
}

// GetResume 返回指定 ID 的简历并标记为当前正在编辑。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumeModel, err := getResumeForUser(c.Request.Context(), h.db, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	if err := h.setActiveResumeID(c.Request.Context(), userID, &resumeModel.ID); err != nil {
		Internal(c, "failed to mark active resume")
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*resumeModel))
}

// UpdateResume 覆盖指定简历。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	var req createResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if _, err := decodeProfile(req.Content); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumeModel, err := getResumeForUser(c.Request.Context(), h.db, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	updates := map[string]any{
		"title":   req.Title,
		"content": req.Content,
	}
	if req.TemplateID != nil {
		updates["template_id"] = *req.TemplateID
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(resumeModel).Updates(updates).Error; err != nil {
		Internal(c, "failed to update resume")
		return
	}

	if err := h.db.WithContext(ctx).First(resumeModel, resumeModel.ID).Error; err != nil {
		Internal(c, "failed to reload resume")
		return
	}

	if err := h.setActiveResumeID(ctx, userID, &resumeModel.ID); err != nil {
		Internal(c, "failed to mark active resume")
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*resumeModel))
}

// DeleteResume 删除指定简历，并尝试回落到最近一份。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumeModel, err := getResumeForUser(c.Request.Context(), h.db, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Delete(&database.Resume{}, resumeModel.ID).Error; err != nil {
		Internal(c, "failed to delete resume")
		return
	}

	if err := h.assignLatestResumeAsActive(ctx, userID); err != nil {
		Internal(c, "failed to update active resume")
		return
	}

	c.Status(http.StatusNoContent)
}

// ValidateResumeContent 对提交的档案做字段级校验，返回逐字段错误列表。
// 校验不落库，前端保存前调用。
func (h *ResumeHandler) ValidateResumeContent(c *gin.Context) {
	var content datatypes.JSON
	if err := c.ShouldBindJSON(&content); err != nil {
		BadRequest(c, err.Error())
		return
	}

	profile, err := decodeProfile(content)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	fieldErrors := resume.ValidateProfile(profile)
	c.JSON(http.StatusOK, gin.H{
		"valid":  len(fieldErrors) == 0,
		"errors": fieldErrors,
	})
}

type exportRequest struct {
	TemplateID string `json:"template_id"`
}

// ExportResumePDF 将 PDF 导出任务入队并立即返回 202。
func (h *ResumeHandler) ExportResumePDF(c *gin.Context) {
	h.enqueueExport(c, "pdf")
}

// ExportResumeDocx 将 Word 导出任务入队并立即返回 202。
func (h *ResumeHandler) ExportResumeDocx(c *gin.Context) {
	h.enqueueExport(c, "docx")
}

func (h *ResumeHandler) enqueueExport(c *gin.Context, kind string) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumeModel, err := getResumeForUser(c.Request.Context(), h.db, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	if h.exportsPerDay > 0 {
		count, err := incrWithTTL(ctx, h.redisClient, dailyQuotaKey("export_rate", userID), 24*time.Hour)
		if err != nil {
			Internal(c, "failed to check export quota")
			return
		}
		if count > int64(h.exportsPerDay) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "daily export limit reached",
				"code":  errcode.QuotaExceeded,
			})
			return
		}
	}

	correlationID := middleware.GetCorrelationID(c)

	var task *asynq.Task
	switch kind {
	case "pdf":
		task, err = tasks.NewPDFExportTask(resumeModel.ID, req.TemplateID, correlationID)
	case "docx":
		task, err = tasks.NewDocxExportTask(resumeModel.ID, req.TemplateID, correlationID)
	default:
		Internal(c, "unknown export kind")
		return
	}
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue export")
		return
	}

	if err := h.db.WithContext(ctx).Model(resumeModel).Update("status", "processing").Error; err != nil {
		Internal(c, "failed to mark resume processing")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "export request accepted",
		"task_id": info.ID,
	})
}

// GetDownloadLink 生成导出产物的预签名下载链接，format 取 pdf 或 docx。
func (h *ResumeHandler) GetDownloadLink(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	resumeModel, err := getResumeForUser(c.Request.Context(), h.db, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	objectKey := ""
	switch c.DefaultQuery("format", "pdf") {
	case "pdf":
		objectKey = resumeModel.PdfKey
	case "docx":
		objectKey = resumeModel.DocxKey
	default:
		BadRequest(c, "unknown format")
		return
	}

	if objectKey == "" {
		Conflict(c, "export not ready")
		return
	}

	signedURL, err := h.storage.GeneratePresignedURL(c.Request.Context(), objectKey, 5*time.Minute)
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func respondResumeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidResumeID):
		BadRequest(c, "invalid resume id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "resume not found")
	default:
		Internal(c, "failed to query resume")
	}
}

func (h *ResumeHandler) setActiveResumeID(ctx context.Context, userID uint, resumeID *uint) error {
	var value any
	if resumeID != nil {
		value = *resumeID
	} else {
		value = nil
	}
	return h.db.WithContext(ctx).Model(&database.User{}).
		Where("id = ?", userID).
		Update("active_resume_id", value).Error
}

func (h *ResumeHandler) assignLatestResumeAsActive(ctx context.Context, userID uint) error {
	var resumeModel database.Resume
	err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		First(&resumeModel).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return h.setActiveResumeID(ctx, userID, nil)
	case err != nil:
		return err
	default:
		return h.setActiveResumeID(ctx, userID, &resumeModel.ID)
	}
}

func (h *ResumeHandler) findActiveOrLatestResume(ctx context.Context, userID uint) (*database.Resume, error) {
	var user database.User
	if err := h.db.WithContext(ctx).
		Select("id", "active_resume_id").
		First(&user, userID).Error; err != nil {
		return nil, err
	}

	if user.ActiveResumeID != nil {
		var resumeModel database.Resume
		if err := h.db.WithContext(ctx).
			Where("id = ? AND user_id = ?", *user.ActiveResumeID, userID).
			First(&resumeModel).Error; err == nil {
			return &resumeModel, nil
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	var latest database.Resume
	err := h.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = h.setActiveResumeID(ctx, userID, nil)
		}
		return nil, err
	}

	if err := h.setActiveResumeID(ctx, userID, &latest.ID); err != nil {
		return nil, err
	}
	return &latest, nil
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

func getResumeForUser(ctx context.Context, db *gorm.DB, idParam string, userID uint) (*database.Resume, error) {
	resumeID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidResumeID
	}

	var resumeModel database.Resume
	if err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", uint(resumeID), userID).
		First(&resumeModel).Error; err != nil {
		return nil, err
	}

	return &resumeModel, nil
}

const defaultResumeTitle = "我的第一份简历"

// defaultResumeContent 返回空白档案的 JSON 序列化，给还没有简历的新用户。
func defaultResumeContent() datatypes.JSON {
	data, err := json.Marshal(resume.NewProfile())
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(data)
}

func newResumeResponse(resumeModel database.Resume) resumeResponse {
	return resumeResponse{
		ID:              resumeModel.ID,
		Title:           resumeModel.Title,
		Content:         resumeModel.Content,
		TemplateID:      resumeModel.TemplateID,
		PreviewImageURL: resumeModel.PreviewImageURL,
		Status:          resumeModel.Status,
		CreatedAt:       resumeModel.CreatedAt,
		UpdatedAt:       resumeModel.UpdatedAt,
	}
}
