package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumesmith/internal/database"
	"resumesmith/internal/docx"
	"resumesmith/internal/errcode"
	"resumesmith/internal/resume"
	"resumesmith/internal/storage"
	"resumesmith/internal/tasks"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocxExportHandler 负责消费 Word 导出任务。
type DocxExportHandler struct {
	db           *gorm.DB
	storage      *storage.Client
	redisClient  *redis.Client
	templatePath string
	logger       *slog.Logger
}

func NewDocxExportHandler(db *gorm.DB, storageClient *storage.Client, redisClient *redis.Client, templatePath string, logger *slog.Logger) *DocxExportHandler {
	return &DocxExportHandler{
		db:           db,
		storage:      storageClient,
		redisClient:  redisClient,
		templatePath: templatePath,
		logger:       logger,
	}
}

// ProcessTask 实现 asynq.Handler。
// Word 导出和 PDF 走同一条有序可见小节序列，两种产物内容保持一致。
func (h *DocxExportHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
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
	log.Info("Starting Word export task...")

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
			Kind:          "docx",
			ResumeID:      resumeModel.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := publishExportNotify(ctx, h.redisClient, resumeModel.UserID, notify); err != nil {
			log.Error("publish docx error notification failed", slog.Any("error", err))
		}
	}()

	var profile resume.Profile
	if err := json.Unmarshal(resumeModel.Content, &profile); err != nil {
		log.Error("decode resume content failed", slog.Any("error", err))
		return err
	}

	tmpDir, err := os.MkdirTemp("", "docx-export-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "resume.docx")
	if err := docx.ExportToFile(&profile, h.templatePath, outPath); err != nil {
		log.Error("render docx failed", slog.Any("error", err))
		return err
	}

	f, err := os.Open(outPath)
	if err != nil {
		return fmt.Errorf("open rendered docx: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat rendered docx: %w", err)
	}

	objectName := fmt.Sprintf("generated-resumes/%d/%s.docx", resumeModel.UserID, uuid.NewString())
	if _, err := h.storage.UploadFile(ctx, objectName, f, stat.Size(), docxContentType); err != nil {
		log.Error("upload docx to minio failed", slog.Any("error", err))
		return err
	}

	if err := h.db.WithContext(ctx).Model(&resumeModel).Update("docx_key", objectName).Error; err != nil {
		log.Error("update resume failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        "completed",
		Kind:          "docx",
		ResumeID:      resumeModel.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
	}
	if err := publishExportNotify(ctx, h.redisClient, resumeModel.UserID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("Word export task completed successfully.")
	return nil
}
