package render

import (
	"bytes"
	"html/template"
	"sync"

	"resumesmith/internal/resume"
)

// Variant 是渲染密度提示：只影响样式 class，绝不改变字段选择或条目顺序。
type Variant string

const (
	VariantDefault  Variant = "default"
	VariantSidebar  Variant = "sidebar"
	VariantTimeline Variant = "timeline"
)

// 条目的封闭变体集合。存储层是字段超集（resume.Item），
// 渲染前按段落类型收敛到下面六种形态之一，渲染时穷尽匹配。
type (
	// Bullet 是一条带列表标记的文本。
	Bullet struct {
		Text string
	}
	// Skill 是一枚紧凑的技能标签。
	Skill struct {
		Name string
	}
	// Project 是一个带标题的块：日期、描述、链接均可缺省。
	Project struct {
		Title       string
		Date        string
		Description string
		Link        string
	}
	// Paragraph 是一段自由文本。
	Paragraph struct {
		Text string
	}
	// ExperienceItem 与内置工作经历条目同构。
	ExperienceItem struct {
		Role        string
		Company     string
		Date        string
		Description string
	}
	// EducationItem 与内置教育经历条目同构，描述可缺省。
	EducationItem struct {
		School      string
		Degree      string
		Date        string
		Description string
	}
)

// Section 是渲染器的输入：内置数据或自定义段落统一成这个形态。
type Section struct {
	Key   string
	Title string
	Type  resume.SectionType
	Items []resume.Item
}

// CustomSection 把自定义段落转成渲染器输入。
func CustomSection(cs resume.CustomSection) Section {
	return Section{Key: cs.Key, Title: cs.Title, Type: cs.Type, Items: cs.Items}
}

var (
	sectionTmplOnce sync.Once
	sectionTmpl     *template.Template
)

func sectionTemplates() *template.Template {
	sectionTmplOnce.Do(func() {
		sectionTmpl = template.Must(template.New("sections").Parse(sectionTemplateString))
	})
	return sectionTmpl
}

type sectionData struct {
	Title   string
	Variant Variant
	Items   any
}

// RenderSection 按段落类型渲染统一的结构化内容，供所有布局共用。
// 条目为空时返回空串，调用方应当什么都不渲染（不输出空标题）。
// 类型不在封闭枚举内同样返回空串（结构上不应出现，静默跳过）。
func RenderSection(sec Section, variant Variant) template.HTML {
	if len(sec.Items) == 0 {
		return ""
	}
	if variant == "" {
		variant = VariantDefault
	}

	var name string
	data := sectionData{Title: sec.Title, Variant: variant}

	switch sec.Type {
	case resume.SectionBullets:
		items := make([]Bullet, 0, len(sec.Items))
		for _, it := range sec.Items {
			items = append(items, Bullet{Text: it.Text})
		}
		name, data.Items = "section_bullets", items
	case resume.SectionSkills:
		items := make([]Skill, 0, len(sec.Items))
		for _, it := range sec.Items {
			items = append(items, Skill{Name: it.Name})
		}
		name, data.Items = "section_skills", items
	case resume.SectionProjects:
		items := make([]Project, 0, len(sec.Items))
		for _, it := range sec.Items {
			items = append(items, Project{
				Title:       it.Title,
				Date:        it.Date,
				Description: it.Description,
				Link:        it.Link,
			})
		}
		name, data.Items = "section_projects", items
	case resume.SectionText:
		items := make([]Paragraph, 0, len(sec.Items))
		for _, it := range sec.Items {
			items = append(items, Paragraph{Text: it.Text})
		}
		name, data.Items = "section_text", items
	case resume.SectionExperience:
		items := make([]ExperienceItem, 0, len(sec.Items))
		for _, it := range sec.Items {
			items = append(items, ExperienceItem{
				Role:        it.Title,
				Company:     it.Subtitle,
				Date:        it.Date,
				Description: it.Description,
			})
		}
		name, data.Items = "section_experience", items
	case resume.SectionEducation:
		items := make([]EducationItem, 0, len(sec.Items))
		for _, it := range sec.Items {
			items = append(items, EducationItem{
				School:      it.Title,
				Degree:      it.Subtitle,
				Date:        it.Date,
				Description: it.Description,
			})
		}
		name, data.Items = "section_education", items
	default:
		return ""
	}

	var buf bytes.Buffer
	if err := sectionTemplates().ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
