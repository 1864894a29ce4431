package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"resumesmith/internal/pdf"
	"resumesmith/internal/render"
	"resumesmith/internal/resume"
	"resumesmith/internal/storage"
	"resumesmith/internal/tasks"
)

// TemplatePreviewHandler 用示例档案为模板生成缩略图。
// 通常由 admin 命令在模板目录更新后批量入队。
type TemplatePreviewHandler struct {
	storage *storage.Client
	logger  *slog.Logger
}

func NewTemplatePreviewHandler(storageClient *storage.Client, logger *slog.Logger) *TemplatePreviewHandler {
	return &TemplatePreviewHandler{storage: storageClient, logger: logger}
}

// ProcessTask 实现 asynq.Handler。
func (h *TemplatePreviewHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.TemplatePreviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log := h.logger.With(slog.String("template_id", payload.TemplateID))
	log.Info("Starting template preview task...")

	if _, ok := render.TemplateByID(payload.TemplateID); !ok {
		log.Warn("unknown template id, skipping task")
		return nil
	}

	sample := resume.SampleProfile()
	htmlDoc, err := render.RenderDocument(sample, payload.TemplateID, "")
	if err != nil {
		log.Error("render sample document failed", slog.Any("error", err))
		return err
	}

	jpegBytes, err := pdf.CaptureJPEGFromHTML(string(htmlDoc), 80)
	if err != nil {
		log.Error("capture template screenshot failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("thumbnails/templates/%s.jpg", payload.TemplateID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(jpegBytes), int64(len(jpegBytes)), "image/jpeg"); err != nil {
		log.Error("upload template thumbnail failed", slog.Any("error", err))
		return err
	}

	log.Info("Template preview task completed successfully.")
	return nil
}
