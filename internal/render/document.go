package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"resumesmith/internal/resume"
)

// zoneSection 是分区后的一个段落：内置段落由骨架模板就地渲染，
// 自定义段落在这里已经通过 RenderSection 渲染完毕。
type zoneSection struct {
	Desc    resume.SectionDescriptor
	Builtin bool
	HTML    template.HTML
}

type zoneData struct {
	Sections []zoneSection
	Profile  *resume.Profile
	// Compact/Timeline 决定内置段落选用哪套骨架内标记。
	Compact  bool
	Timeline bool
}

type documentData struct {
	Profile     *resume.Profile
	Desc        Descriptor
	Family      LayoutFamily
	MainZone    zoneData
	SideZone    zoneData
	ContactLine string
	PhotoURL    string
	CSS         template.CSS
}

var (
	docTmplOnce sync.Once
	docTmpl     *template.Template
)

func documentTemplates() *template.Template {
	docTmplOnce.Do(func() {
		docTmpl = template.Must(template.New("document").Parse(documentTemplateString))
	})
	return docTmpl
}

// RenderDocument 把档案按模板 ID 渲染成完整的 HTML 文档。
// 纯函数：不读写任何外部状态，每次调用基于当前档案重新计算。
// photoURL 为空时头像区整体省略。
func RenderDocument(p *resume.Profile, templateID string, photoURL string) ([]byte, error) {
	desc, ok := TemplateByID(templateID)
	if !ok {
		return nil, fmt.Errorf("unknown template id %q", templateID)
	}
	family, ok := FamilyByID(desc.Family)
	if !ok {
		return nil, fmt.Errorf("unknown layout family %q", desc.Family)
	}

	mainDescs, sideDescs := family.Partition(p.OrderedVisibleSections())
	timeline := family.Archetype == ArchetypeTimeline

	data := documentData{
		Profile:     p,
		Desc:        desc,
		Family:      family,
		MainZone:    buildZone(p, mainDescs, false, timeline),
		SideZone:    buildZone(p, sideDescs, true, false),
		ContactLine: contactLine(p.Personal),
		PhotoURL:    photoURL,
		CSS:         template.CSS(buildCSS(family, desc.Color)),
	}

	var buf bytes.Buffer
	if err := documentTemplates().ExecuteTemplate(&buf, "document", data); err != nil {
		return nil, fmt.Errorf("execute document template: %w", err)
	}
	return buf.Bytes(), nil
}

func buildZone(p *resume.Profile, descs []resume.SectionDescriptor, compact, timeline bool) zoneData {
	zone := zoneData{Profile: p, Compact: compact, Timeline: timeline}
	for _, desc := range descs {
		if resume.IsBuiltinKey(desc.Key) {
			zone.Sections = append(zone.Sections, zoneSection{Desc: desc, Builtin: true})
			continue
		}
		cs := p.CustomSectionByKey(desc.Key)
		if cs == nil {
			continue
		}
		variant := VariantDefault
		if compact {
			variant = VariantSidebar
		} else if timeline {
			variant = VariantTimeline
		}
		zone.Sections = append(zone.Sections, zoneSection{
			Desc: desc,
			HTML: RenderSection(CustomSection(*cs), variant),
		})
	}
	return zone
}

// contactLine 把非空联系字段拼成一行。缺失字段直接跳过，不渲染占位符。
func contactLine(p resume.PersonalInfo) string {
	parts := make([]string, 0, 4)
	for _, v := range []string{p.Email, p.Phone, p.Location, p.Website} {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "  ·  ")
}
