package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypePDFExport       = "export:pdf"
	TypeDocxExport      = "export:docx"
	TypeTemplatePreview = "template:preview"
)

// ExportPayload 描述一次文档导出所需的最小信息。
// TemplateID 允许覆盖简历上保存的模板（预览页"用这个模板导出"场景）。
type ExportPayload struct {
	ResumeID      uint   `json:"resume_id"`
	TemplateID    string `json:"template_id,omitempty"`
	CorrelationID string `json:"correlation_id"`
}

// NewPDFExportTask 构造一个简历 PDF 导出任务。
func NewPDFExportTask(id uint, templateID, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExportPayload{
		ResumeID:      id,
		TemplateID:    templateID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePDFExport, payload), nil
}

// NewDocxExportTask 构造一个简历 Word 导出任务。
func NewDocxExportTask(id uint, templateID, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExportPayload{
		ResumeID:      id,
		TemplateID:    templateID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDocxExport, payload), nil
}

// TemplatePreviewPayload 描述模板缩略图生成任务。
type TemplatePreviewPayload struct {
	TemplateID    string `json:"template_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewTemplatePreviewTask 构造一个模板缩略图生成任务。
func NewTemplatePreviewTask(templateID, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TemplatePreviewPayload{
		TemplateID:    templateID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTemplatePreview, payload), nil
}
