package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username           string   `gorm:"uniqueIndex;size:64"`
	PasswordHash       string   `gorm:"size:255"`
	MustChangePassword bool     `gorm:"default:false"`
	ActiveResumeID     *uint    `gorm:"index"`
	Resumes            []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// Resume 表示用户创建的简历。
// Content 是不透明的 JSONB 档案（internal/resume.Profile 的序列化形态），
// TemplateID 指向静态模板目录中的一项。
type Resume struct {
	gorm.Model
	Title            string         `gorm:"size:255"`
	Content          datatypes.JSON `gorm:"type:jsonb"`
	TemplateID       string         `gorm:"size:64"`
	UserID           uint           `gorm:"index"`
	User             User           `gorm:"constraint:OnDelete:CASCADE"`
	PdfKey           string         `gorm:"size:512"`
	DocxKey          string         `gorm:"size:512"`
	PreviewImageURL  string         `gorm:"size:1024"`
	PreviewObjectKey string         `gorm:"size:512"`
	Status           string         `gorm:"size:32"`
}

// Photo 表示用户上传的头像/照片资源，用于配额统计与归属校验。
type Photo struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	ObjectKey string `gorm:"uniqueIndex;size:512"`
}
