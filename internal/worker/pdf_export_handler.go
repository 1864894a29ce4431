package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumesmith/internal/database"
	"resumesmith/internal/errcode"
	"resumesmith/internal/pdf"
	"resumesmith/internal/render"
	"resumesmith/internal/resume"
	"resumesmith/internal/storage"
	"resumesmith/internal/tasks"
)

// fallbackTemplateID 兜底模板：简历行上没有保存模板、任务也没指定时使用。
const fallbackTemplateID = "meridian-graphite"

// PDFExportHandler 负责消费 PDF 导出任务。
type PDFExportHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewPDFExportHandler 创建任务处理器。
func NewPDFExportHandler(db *gorm.DB, storageClient *storage.Client, redisClient *redis.Client, logger *slog.Logger) *PDFExportHandler {
	return &PDFExportHandler{
		db:          db,
		storage:     storageClient,
		redisClient: redisClient,
		logger:      logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *PDFExportHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("resume_id", int(payload.ResumeID)),
	)
	log.Info("Starting PDF export task...")

	var resumeModel database.Resume
	if err := h.db.WithContext(ctx).First(&resumeModel, payload.ResumeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("resume not found, skipping task")
			return nil
		}
		log.Error("query resume failed", slog.Any("error", err))
		return err
	}

	log = log.With(slog.Uint64("user_id", uint64(resumeModel.UserID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}
		notify := ExportNotifyMessage{
			Status:        "error",
			Kind:          "pdf",
			ResumeID:      resumeModel.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := publishExportNotify(ctx, h.redisClient, resumeModel.UserID, notify); err != nil {
			log.Error("publish pdf error notification failed", slog.Any("error", err))
		}
	}()

	htmlDoc, photoSkipped, err := renderResumeDocument(ctx, h.storage, &resumeModel, payload.TemplateID)
	if err != nil {
		log.Error("render resume document failed", slog.Any("error", err))
		return err
	}

	pdfBytes, previewBytes, err := pdf.RenderArtifacts(string(htmlDoc), 80)
	if err != nil {
		log.Error("render pdf artifacts failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("generated-resumes/%d/%s.pdf", resumeModel.UserID, uuid.NewString())
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	update := map[string]any{
		"pdf_key": objectName,
		"status":  "completed",
	}
	if err := h.db.WithContext(ctx).Model(&resumeModel).Updates(update).Error; err != nil {
		log.Error("update resume failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        "completed",
		Kind:          "pdf",
		ResumeID:      resumeModel.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if photoSkipped {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "头像资源缺失/无效，已自动跳过并继续生成"
		log.Warn("pdf generated without photo, key invalid or unsignable")
	}
	if err := publishExportNotify(ctx, h.redisClient, resumeModel.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	if err := h.updatePreviewImage(ctx, &resumeModel, previewBytes); err != nil {
		log.Warn("update resume preview failed", slog.Any("error", err))
	}

	log.Info("PDF export task completed successfully.")
	return nil
}

func (h *PDFExportHandler) updatePreviewImage(ctx context.Context, resumeModel *database.Resume, previewBytes []byte) error {
	const presignTTL = 7 * 24 * time.Hour

	objectName := fmt.Sprintf("thumbnails/resume/%d/preview.jpg", resumeModel.ID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(previewBytes), int64(len(previewBytes)), "image/jpeg"); err != nil {
		return fmt.Errorf("upload preview image: %w", err)
	}

	presignedURL, err := h.storage.GeneratePresignedURL(ctx, objectName, presignTTL)
	if err != nil {
		return fmt.Errorf("generate preview presigned url: %w", err)
	}

	if err := h.db.WithContext(ctx).Model(resumeModel).Updates(map[string]any{
		"preview_image_url":  presignedURL,
		"preview_object_key": objectName,
	}).Error; err != nil {
		return fmt.Errorf("update resume preview url: %w", err)
	}
	return nil
}

// renderResumeDocument 解码 JSONB 档案并渲染成完整 HTML。
// 模板优先级：任务指定 > 简历行保存 > 兜底模板。头像转成限时预签名 URL，
// Key 非法或签名失败时跳过头像继续生成，photoSkipped 供通知分支使用。
func renderResumeDocument(ctx context.Context, storageClient *storage.Client, resumeModel *database.Resume, templateOverride string) (htmlDoc []byte, photoSkipped bool, err error) {
	var profile resume.Profile
	if err := json.Unmarshal(resumeModel.Content, &profile); err != nil {
		return nil, false, fmt.Errorf("decode resume content: %w", err)
	}

	templateID := strings.TrimSpace(templateOverride)
	if templateID == "" {
		templateID = strings.TrimSpace(resumeModel.TemplateID)
	}
	if templateID == "" {
		templateID = fallbackTemplateID
	}

	photoURL := ""
	if key := strings.TrimSpace(profile.Personal.PhotoKey); key != "" {
		expectedPrefix := fmt.Sprintf("user-photos/%d/", resumeModel.UserID)
		if strings.HasPrefix(key, expectedPrefix) {
			// 预签名只是本地计算，先 Stat 确认对象真的存在。
			if _, statErr := storageClient.StatObject(ctx, key); statErr == nil {
				if url, signErr := storageClient.GeneratePresignedURL(ctx, key, time.Hour); signErr == nil {
					photoURL = url
				}
			} else if !storage.IsNoSuchKey(statErr) {
				return nil, false, fmt.Errorf("stat photo object: %w", statErr)
			}
		}
		photoSkipped = photoURL == ""
	}

	htmlDoc, err = render.RenderDocument(&profile, templateID, photoURL)
	return htmlDoc, photoSkipped, err
}

func publishExportNotify(ctx context.Context, client *redis.Client, userID uint, notify ExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
