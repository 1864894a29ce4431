package resume

import (
	"github.com/lithammer/shortuuid/v4"
)

// SectionType 标识段落条目的形态，决定条目的有效字段与渲染规则。
type SectionType string

const (
	SectionBullets    SectionType = "bullets"
	SectionSkills     SectionType = "skills"
	SectionProjects   SectionType = "projects"
	SectionText       SectionType = "text"
	SectionExperience SectionType = "experience"
	SectionEducation  SectionType = "education"
)

// 内置段落的固定 Key。内置段落永远存在，只能隐藏或排序，不能删除。
const (
	KeyExperience = "experience"
	KeyEducation  = "education"
	KeySkills     = "skills"
)

// Profile 表示存储在简历 Content(JSONB) 中的结构化数据。
// SectionOrder 与 SectionVisibility 共同决定渲染序列：
// 顺序以 SectionOrder 为准，Key 不在 SectionVisibility 中视为可见。
type Profile struct {
	Personal          PersonalInfo      `json:"personal"`
	Experience        []ExperienceEntry `json:"experience"`
	Education         []EducationEntry  `json:"education"`
	Skills            []SkillEntry      `json:"skills"`
	CustomSections    []CustomSection   `json:"custom_sections"`
	SectionOrder      []string          `json:"section_order"`
	SectionVisibility map[string]bool   `json:"section_visibility"`
}

// PersonalInfo 是档案头部的个人信息。缺失字段渲染为空串，绝不渲染占位文本。
type PersonalInfo struct {
	FullName string `json:"full_name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website,omitempty"`
	Summary  string `json:"summary,omitempty"`
	PhotoKey string `json:"photo_key,omitempty"`
}

// ExperienceEntry 表示一段工作经历。数组顺序即展示顺序。
type ExperienceEntry struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Role        string `json:"role"`
	DateRange   string `json:"date_range"`
	Description string `json:"description"`
}

// EducationEntry 表示一段教育经历。
type EducationEntry struct {
	ID          string `json:"id"`
	School      string `json:"school"`
	Degree      string `json:"degree"`
	DateRange   string `json:"date_range"`
	Description string `json:"description,omitempty"`
}

// SkillEntry 表示一项技能。
type SkillEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomSection 表示用户自定义段落。
// Key 与 ID 不同：ID 只做定位，Key 参与 section_order/section_visibility 关联。
type CustomSection struct {
	ID      string      `json:"id"`
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Type    SectionType `json:"type"`
	Enabled bool        `json:"enabled"`
	// Order 仅作参考提示，实际顺序以 Profile.SectionOrder 为准。
	Order int    `json:"order"`
	Items []Item `json:"items"`
}

// Item 是自定义段落条目的存储形态：字段超集，实际有效字段由段落 Type 决定。
// 同一段落内所有条目共享同一形态；渲染层按类型收敛成封闭的变体集合。
type Item struct {
	ID          string `json:"id"`
	Text        string `json:"text,omitempty"`
	Name        string `json:"name,omitempty"`
	Title       string `json:"title,omitempty"`
	Subtitle    string `json:"subtitle,omitempty"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
	Link        string `json:"link,omitempty"`
}

// SectionDescriptor 是某个段落在渲染序列中的最小描述。
type SectionDescriptor struct {
	Key   string      `json:"key"`
	Title string      `json:"title"`
	Type  SectionType `json:"type"`
}

// NewEntryID 生成条目主键。创建时分配，之后不再变化、不会复用。
func NewEntryID() string {
	return shortuuid.New()
}

// NewProfile 返回带默认段落顺序的空档案。
func NewProfile() *Profile {
	return &Profile{
		Experience:     []ExperienceEntry{},
		Education:      []EducationEntry{},
		Skills:         []SkillEntry{},
		CustomSections: []CustomSection{},
		SectionOrder:   []string{KeyExperience, KeyEducation, KeySkills},
		SectionVisibility: map[string]bool{
			KeyExperience: true,
			KeyEducation:  true,
			KeySkills:     true,
		},
	}
}

// IsBuiltinKey 判断 Key 是否属于内置段落。
func IsBuiltinKey(key string) bool {
	switch key {
	case KeyExperience, KeyEducation, KeySkills:
		return true
	}
	return false
}

// ValidSectionType 判断段落类型是否在封闭枚举内。
func ValidSectionType(t SectionType) bool {
	switch t {
	case SectionBullets, SectionSkills, SectionProjects, SectionText, SectionExperience, SectionEducation:
		return true
	}
	return false
}

var builtinDescriptors = map[string]SectionDescriptor{
	KeyExperience: {Key: KeyExperience, Title: "Experience", Type: SectionExperience},
	KeyEducation:  {Key: KeyEducation, Title: "Education", Type: SectionEducation},
	KeySkills:     {Key: KeySkills, Title: "Skills", Type: SectionSkills},
}
