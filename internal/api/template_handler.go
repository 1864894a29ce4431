package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesmith/internal/render"
	"resumesmith/internal/storage"
)

// TemplateHandler 负责模板目录相关的 API。
// 目录是编译期生成的静态数据，这里只做查询和缩略图签名，没有写路径。
type TemplateHandler struct {
	db      *gorm.DB
	storage *storage.Client
}

func NewTemplateHandler(db *gorm.DB, storageClient *storage.Client) *TemplateHandler {
	return &TemplateHandler{db: db, storage: storageClient}
}

type templateListItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Family    string `json:"family"`
	ColorName string `json:"color_name"`
	Color     string `json:"color"`
}

type templateDetailResponse struct {
	templateListItem
	Font         string `json:"font"`
	Archetype    string `json:"archetype"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func newTemplateListItem(d render.Descriptor) templateListItem {
	return templateListItem{
		ID:        d.ID,
		Name:      d.Name,
		Family:    d.Family,
		ColorName: d.ColorName,
		Color:     d.Color,
	}
}

// GET /v1/templates
// 列表：支持 q 关键字与 family 过滤，两者都可省略。
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	query := c.Query("q")
	family := c.Query("family")

	var descriptors []render.Descriptor
	if query == "" && family == "" {
		descriptors = render.Templates()
	} else {
		descriptors = render.SearchTemplates(query, family)
	}

	items := make([]templateListItem, 0, len(descriptors))
	for _, d := range descriptors {
		items = append(items, newTemplateListItem(d))
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/templates/families
// 返回版式族列表，前端筛选栏使用。
func (h *TemplateHandler) ListFamilies(c *gin.Context) {
	families := render.Families()
	items := make([]gin.H, 0, len(families))
	for _, f := range families {
		items = append(items, gin.H{
			"id":        f.ID,
			"name":      f.Name,
			"archetype": string(f.Archetype),
			"font":      string(f.Font),
		})
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/templates/:id
// 详情：附带缩略图的预签名链接。缩略图还没生成时字段为空。
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	descriptor, ok := render.TemplateByID(c.Param("id"))
	if !ok {
		NotFound(c, "template not found")
		return
	}

	family, _ := render.FamilyByID(descriptor.Family)

	detail := templateDetailResponse{
		templateListItem: newTemplateListItem(descriptor),
		Font:             string(family.Font),
		Archetype:        string(family.Archetype),
	}

	thumbKey := fmt.Sprintf("thumbnails/templates/%s.jpg", descriptor.ID)
	if url, err := h.storage.GeneratePresignedURL(c.Request.Context(), thumbKey, time.Hour); err == nil {
		detail.ThumbnailURL = url
	}

	c.JSON(http.StatusOK, detail)
}

// GET /v1/resumes/:id/preview?template=...
// 用指定模板把简历渲染成完整 HTML，前端 iframe 直接展示。
// 省略 template 参数时使用简历上保存的模板。
func (h *TemplateHandler) PreviewResume(c *gin.Context) {
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

	templateID := c.Query("template")
	if templateID == "" {
		templateID = resumeModel.TemplateID
	}
	if _, ok := render.TemplateByID(templateID); !ok {
		BadRequest(c, "unknown template id")
		return
	}

	htmlDoc, err := renderStoredResume(c.Request.Context(), h.storage, resumeModel, templateID)
	if err != nil {
		Internal(c, "failed to render preview")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", htmlDoc)
}
