package docx

import (
	"fmt"
	"strings"

	godocx "github.com/lukasjarosch/go-docx"

	"resumesmith/internal/resume"
)

// ExportToFile 用占位符模板生成 Word 文档。
// 与 HTML/PDF 路径共用同一份有序可见段落序列：Word 导出不再退化成
// 固定的 experience→education→skills 顺序，自定义段落与显隐设置同样生效。
func ExportToFile(p *resume.Profile, templatePath, outPath string) error {
	doc, err := godocx.Open(templatePath)
	if err != nil {
		return fmt.Errorf("open docx template: %w", err)
	}

	if err := doc.ReplaceAll(BuildPlaceholders(p)); err != nil {
		return fmt.Errorf("replace placeholders: %w", err)
	}

	if err := doc.WriteToFile(outPath); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// BuildPlaceholders 把档案展平成模板占位符。
// body 按 section_order/visibility 逐段拼接，空段落整段省略。
func BuildPlaceholders(p *resume.Profile) godocx.PlaceholderMap {
	return godocx.PlaceholderMap{
		"full_name": p.Personal.FullName,
		"headline":  p.Personal.Title,
		"contact":   contactLine(p.Personal),
		"summary":   p.Personal.Summary,
		"body":      flattenSections(p),
	}
}

func contactLine(info resume.PersonalInfo) string {
	parts := make([]string, 0, 4)
	for _, v := range []string{info.Email, info.Phone, info.Location, info.Website} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

func flattenSections(p *resume.Profile) string {
	var blocks []string
	for _, desc := range p.OrderedVisibleSections() {
		var block string
		switch desc.Key {
		case resume.KeyExperience:
			block = flattenExperience(desc.Title, p.Experience)
		case resume.KeyEducation:
			block = flattenEducation(desc.Title, p.Education)
		case resume.KeySkills:
			block = flattenSkills(desc.Title, p.Skills)
		default:
			if cs := p.CustomSectionByKey(desc.Key); cs != nil {
				block = flattenCustomSection(*cs)
			}
		}
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func flattenExperience(title string, entries []resume.ExperienceEntry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := []string{title}
	for _, e := range entries {
		lines = append(lines, headLine(e.Role, e.Company, e.DateRange))
		if e.Description != "" {
			lines = append(lines, e.Description)
		}
	}
	return strings.Join(lines, "\n")
}

func flattenEducation(title string, entries []resume.EducationEntry) string {
	if len(entries) == 0 {
		return ""
	}
	lines := []string{title}
	for _, e := range entries {
		lines = append(lines, headLine(e.School, e.Degree, e.DateRange))
		if e.Description != "" {
			lines = append(lines, e.Description)
		}
	}
	return strings.Join(lines, "\n")
}

func flattenSkills(title string, entries []resume.SkillEntry) string {
	if len(entries) == 0 {
		return ""
	}
	names := make([]string, 0, len(entries))
	for _, s := range entries {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return title + "\n" + strings.Join(names, ", ")
}

// flattenCustomSection 按段落类型展平条目，穷尽封闭枚举。
func flattenCustomSection(cs resume.CustomSection) string {
	if len(cs.Items) == 0 {
		return ""
	}
	lines := []string{cs.Title}
	switch cs.Type {
	case resume.SectionBullets:
		for _, it := range cs.Items {
			lines = append(lines, "- "+it.Text)
		}
	case resume.SectionSkills:
		names := make([]string, 0, len(cs.Items))
		for _, it := range cs.Items {
			if it.Name != "" {
				names = append(names, it.Name)
			}
		}
		lines = append(lines, strings.Join(names, ", "))
	case resume.SectionProjects:
		for _, it := range cs.Items {
			lines = append(lines, headLine(it.Title, "", it.Date))
			if it.Description != "" {
				lines = append(lines, it.Description)
			}
			if it.Link != "" {
				lines = append(lines, it.Link)
			}
		}
	case resume.SectionText:
		for _, it := range cs.Items {
			lines = append(lines, it.Text)
		}
	case resume.SectionExperience:
		for _, it := range cs.Items {
			lines = append(lines, headLine(it.Title, it.Subtitle, it.Date))
			if it.Description != "" {
				lines = append(lines, it.Description)
			}
		}
	case resume.SectionEducation:
		for _, it := range cs.Items {
			lines = append(lines, headLine(it.Title, it.Subtitle, it.Date))
			if it.Description != "" {
				lines = append(lines, it.Description)
			}
		}
	default:
		return ""
	}
	return strings.Join(lines, "\n")
}

func headLine(primary, secondary, date string) string {
	parts := make([]string, 0, 3)
	for _, v := range []string{primary, secondary, date} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " — ")
}
