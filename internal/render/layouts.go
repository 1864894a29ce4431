package render

import (
	"resumesmith/internal/resume"
)

// Archetype 是布局家族的结构骨架：决定页面如何分区。
type Archetype string

const (
	ArchetypeSingle       Archetype = "single"
	ArchetypeSidebarLeft  Archetype = "sidebar-left"
	ArchetypeSidebarRight Archetype = "sidebar-right"
	ArchetypeTimeline     Archetype = "timeline"
	ArchetypeBanner       Archetype = "banner"
)

// FontStack 决定整份文档的字体族。
type FontStack string

const (
	FontSerif FontStack = "serif"
	FontSans  FontStack = "sans"
	FontMono  FontStack = "mono"
)

// LayoutFamily 描述一个布局家族：结构骨架、字体、标题处理，
// 以及该家族自己的分区策略（哪些段落类型进侧栏）。
// 分区是每个家族各自的决定，不是共享规则；条目级渲染全部走 RenderSection。
type LayoutFamily struct {
	ID   string
	Name string

	Archetype Archetype
	Font      FontStack

	// HeadingClass 控制段落标题的视觉处理：caps/rule/accent/plain/band。
	HeadingClass string

	// SidebarTypes 是本家族的分区策略；对非侧栏骨架无意义。
	SidebarTypes []resume.SectionType
}

// layoutFamilies 是固定的布局家族表，进程启动后只读。
var layoutFamilies = []LayoutFamily{
	{ID: "meridian", Name: "Meridian", Archetype: ArchetypeSingle, Font: FontSerif, HeadingClass: "rule"},
	{ID: "slate", Name: "Slate", Archetype: ArchetypeSingle, Font: FontSans, HeadingClass: "caps"},
	{ID: "vellum", Name: "Vellum", Archetype: ArchetypeSingle, Font: FontSerif, HeadingClass: "plain"},
	{ID: "prairie", Name: "Prairie", Archetype: ArchetypeSingle, Font: FontSans, HeadingClass: "accent"},

	{ID: "harbor", Name: "Harbor", Archetype: ArchetypeSidebarLeft, Font: FontSans, HeadingClass: "caps",
		SidebarTypes: []resume.SectionType{resume.SectionSkills, resume.SectionEducation}},
	{ID: "atlas", Name: "Atlas", Archetype: ArchetypeSidebarLeft, Font: FontSerif, HeadingClass: "rule",
		SidebarTypes: []resume.SectionType{resume.SectionSkills}},
	{ID: "citadel", Name: "Citadel", Archetype: ArchetypeSidebarLeft, Font: FontSans, HeadingClass: "accent",
		SidebarTypes: []resume.SectionType{resume.SectionSkills, resume.SectionEducation, resume.SectionBullets}},
	{ID: "foundry", Name: "Foundry", Archetype: ArchetypeSidebarLeft, Font: FontMono, HeadingClass: "plain",
		SidebarTypes: []resume.SectionType{resume.SectionSkills, resume.SectionText}},

	{ID: "terrace", Name: "Terrace", Archetype: ArchetypeSidebarRight, Font: FontSans, HeadingClass: "rule",
		SidebarTypes: []resume.SectionType{resume.SectionSkills, resume.SectionEducation}},
	{ID: "orchard", Name: "Orchard", Archetype: ArchetypeSidebarRight, Font: FontSerif, HeadingClass: "plain",
		SidebarTypes: []resume.SectionType{resume.SectionSkills}},
	{ID: "mosaic", Name: "Mosaic", Archetype: ArchetypeSidebarRight, Font: FontSans, HeadingClass: "caps",
		SidebarTypes: []resume.SectionType{resume.SectionSkills, resume.SectionBullets}},
	{ID: "quill", Name: "Quill", Archetype: ArchetypeSidebarRight, Font: FontSerif, HeadingClass: "accent",
		SidebarTypes: []resume.SectionType{resume.SectionEducation, resume.SectionSkills}},

	{ID: "cascade", Name: "Cascade", Archetype: ArchetypeTimeline, Font: FontSans, HeadingClass: "rule"},
	{ID: "lumen", Name: "Lumen", Archetype: ArchetypeTimeline, Font: FontSans, HeadingClass: "accent"},
	{ID: "delta", Name: "Delta", Archetype: ArchetypeTimeline, Font: FontMono, HeadingClass: "caps"},
	{ID: "summit", Name: "Summit", Archetype: ArchetypeTimeline, Font: FontSerif, HeadingClass: "plain"},

	{ID: "beacon", Name: "Beacon", Archetype: ArchetypeBanner, Font: FontSans, HeadingClass: "caps"},
	{ID: "onyx", Name: "Onyx", Archetype: ArchetypeBanner, Font: FontSans, HeadingClass: "accent"},
	{ID: "ivory", Name: "Ivory", Archetype: ArchetypeBanner, Font: FontSerif, HeadingClass: "plain"},
	{ID: "ledger", Name: "Ledger", Archetype: ArchetypeBanner, Font: FontMono, HeadingClass: "rule"},
}

// FamilyByID 查找布局家族。
func FamilyByID(id string) (LayoutFamily, bool) {
	for _, f := range layoutFamilies {
		if f.ID == id {
			return f, true
		}
	}
	return LayoutFamily{}, false
}

// Families 返回布局家族表的拷贝。
func Families() []LayoutFamily {
	out := make([]LayoutFamily, len(layoutFamilies))
	copy(out, layoutFamilies)
	return out
}

// Partition 按本家族的策略把有序可见段落切成主区与侧栏区。
// 非侧栏骨架全部归主区；两个区内各自保持 section_order 的相对顺序。
func (f LayoutFamily) Partition(sections []resume.SectionDescriptor) (main, side []resume.SectionDescriptor) {
	if f.Archetype != ArchetypeSidebarLeft && f.Archetype != ArchetypeSidebarRight {
		return sections, nil
	}

	sidebar := make(map[resume.SectionType]bool, len(f.SidebarTypes))
	for _, t := range f.SidebarTypes {
		sidebar[t] = true
	}

	for _, desc := range sections {
		if sidebar[desc.Type] {
			side = append(side, desc)
		} else {
			main = append(main, desc)
		}
	}
	return main, side
}
