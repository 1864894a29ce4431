package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumesmith/internal/database"
	"resumesmith/internal/resume"
)

// SectionHandler 操作简历档案里的小节结构：增删、排序、显隐。
// 每个操作都是 读取 JSONB -> 内存变换 -> 整体写回，档案本身是唯一事实来源。
type SectionHandler struct {
	db *gorm.DB
}

func NewSectionHandler(db *gorm.DB) *SectionHandler {
	return &SectionHandler{db: db}
}

type sectionListResponse struct {
	Sections []resume.SectionDescriptor `json:"sections"`
}

// Title 不做 binding 校验：空白标题按静默 no-op 处理，不是请求错误。
type addSectionRequest struct {
	Title string `json:"title"`
	Type  string `json:"type" binding:"required"`
}

type moveSectionRequest struct {
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

// ListSections 返回有序可见的小节序列，供前端渲染侧栏。
func (h *SectionHandler) ListSections(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	_, profile, err := h.loadProfile(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, sectionListResponse{Sections: profile.OrderedVisibleSections()})
}

// AddSection 新增一个自定义小节，追加到顺序末尾。
func (h *SectionHandler) AddSection(c *gin.Context) {
	var req addSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	resumeModel, profile, err := h.loadProfile(ctx, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	if !resume.ValidSectionType(resume.SectionType(req.Type)) {
		BadRequest(c, fmt.Sprintf("unknown section type %q", req.Type))
		return
	}

	created := profile.AddCustomSection(req.Title, resume.SectionType(req.Type))
	if created == nil {
		// 空白标题是静默 no-op，按原样返回当前小节序列。
		c.JSON(http.StatusOK, sectionListResponse{Sections: profile.OrderedVisibleSections()})
		return
	}

	if err := h.storeProfile(ctx, resumeModel, profile); err != nil {
		Internal(c, "failed to save resume")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"section":  created,
		"sections": profile.OrderedVisibleSections(),
	})
}

// RemoveSection 删除一个自定义小节，内置小节不可删。
func (h *SectionHandler) RemoveSection(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	key := c.Param("key")
	if resume.IsBuiltinKey(key) {
		BadRequest(c, "builtin sections cannot be removed")
		return
	}

	ctx := c.Request.Context()
	resumeModel, profile, err := h.loadProfile(ctx, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	if !profile.RemoveSection(key) {
		// 不存在的 key 是静默 no-op，不落库也不报错。
		c.JSON(http.StatusOK, sectionListResponse{Sections: profile.OrderedVisibleSections()})
		return
	}

	if err := h.storeProfile(ctx, resumeModel, profile); err != nil {
		Internal(c, "failed to save resume")
		return
	}

	c.JSON(http.StatusOK, sectionListResponse{Sections: profile.OrderedVisibleSections()})
}

// MoveSection 将小节上移或下移一位。越界移动不报错，原序返回。
func (h *SectionHandler) MoveSection(c *gin.Context) {
	var req moveSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	resumeModel, profile, err := h.loadProfile(ctx, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	dir := resume.MoveUp
	if req.Direction == "down" {
		dir = resume.MoveDown
	}
	profile.MoveSection(c.Param("key"), dir)

	if err := h.storeProfile(ctx, resumeModel, profile); err != nil {
		Internal(c, "failed to save resume")
		return
	}

	c.JSON(http.StatusOK, sectionListResponse{Sections: profile.OrderedVisibleSections()})
}

// ToggleSection 翻转小节的显隐状态。
func (h *SectionHandler) ToggleSection(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	resumeModel, profile, err := h.loadProfile(ctx, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	key := c.Param("key")
	profile.ToggleVisibility(key)

	if err := h.storeProfile(ctx, resumeModel, profile); err != nil {
		Internal(c, "failed to save resume")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":      key,
		"visible":  profile.SectionVisible(key),
		"sections": profile.OrderedVisibleSections(),
	})
}

func (h *SectionHandler) loadProfile(ctx context.Context, idParam string, userID uint) (*database.Resume, *resume.Profile, error) {
	resumeModel, err := getResumeForUser(ctx, h.db, idParam, userID)
	if err != nil {
		return nil, nil, err
	}

	var profile resume.Profile
	if err := json.Unmarshal(resumeModel.Content, &profile); err != nil {
		return nil, nil, fmt.Errorf("decode resume content: %w", err)
	}
	return resumeModel, &profile, nil
}

func (h *SectionHandler) storeProfile(ctx context.Context, resumeModel *database.Resume, profile *resume.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode resume content: %w", err)
	}
	return h.db.WithContext(ctx).
		Model(resumeModel).
		Update("content", datatypes.JSON(data)).Error
}
