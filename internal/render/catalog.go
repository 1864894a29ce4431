package render

import (
	"fmt"
	"strings"
	"sync"
)

// Descriptor 是模板目录中的一项：布局家族 × 主色的组合。
// 目录在进程内只构建一次，之后只读，不提供任何修改入口。
type Descriptor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Family    string    `json:"family"`
	Color     string    `json:"color"`
	ColorName string    `json:"color_name"`
	Font      FontStack `json:"font"`
}

type paletteColor struct {
	name string
	hex  string
}

// palette 是固定主色表，与布局家族表做笛卡尔积生成目录。
var palette = []paletteColor{
	{"graphite", "#54585a"},
	{"crimson", "#b0263c"},
	{"indigo", "#3f51b5"},
	{"forest", "#2e7d32"},
	{"teal", "#00796b"},
	{"amber", "#b36b00"},
	{"plum", "#6a3d9a"},
	{"navy", "#1f3a5f"},
	{"rust", "#a84a32"},
	{"olive", "#6b705c"},
	{"charcoal", "#333638"},
	{"cobalt", "#2455a4"},
	{"emerald", "#198754"},
	{"burgundy", "#6d1a36"},
	{"periwinkle", "#5a67d8"},
	{"copper", "#b06c49"},
	{"midnight", "#1a2238"},
	{"moss", "#4a5d23"},
	{"coral", "#d9534f"},
	{"storm", "#475569"},
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var (
	catalogOnce sync.Once
	catalogList []Descriptor
	catalogByID map[string]Descriptor
)

func buildCatalog() {
	catalogList = make([]Descriptor, 0, len(layoutFamilies)*len(palette))
	catalogByID = make(map[string]Descriptor, len(layoutFamilies)*len(palette))
	for _, family := range layoutFamilies {
		for _, color := range palette {
			d := Descriptor{
				ID:        family.ID + "-" + color.name,
				Name:      fmt.Sprintf("%s %s", family.Name, capitalize(color.name)),
				Family:    family.ID,
				Color:     color.hex,
				ColorName: color.name,
				Font:      family.Font,
			}
			catalogList = append(catalogList, d)
			catalogByID[d.ID] = d
		}
	}
}

// Templates 返回完整模板目录的拷贝。
func Templates() []Descriptor {
	catalogOnce.Do(buildCatalog)
	out := make([]Descriptor, len(catalogList))
	copy(out, catalogList)
	return out
}

// TemplateByID 按 ID 查找模板。
func TemplateByID(id string) (Descriptor, bool) {
	catalogOnce.Do(buildCatalog)
	d, ok := catalogByID[id]
	return d, ok
}

// SearchTemplates 按布局家族与自由文本过滤目录。
// query 对 ID 与显示名做不区分大小写的包含匹配；两个条件都为空时返回全量。
func SearchTemplates(query, family string) []Descriptor {
	catalogOnce.Do(buildCatalog)

	query = strings.ToLower(strings.TrimSpace(query))
	family = strings.TrimSpace(family)

	out := make([]Descriptor, 0, len(catalogList))
	for _, d := range catalogList {
		if family != "" && d.Family != family {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(d.ID), query) &&
			!strings.Contains(strings.ToLower(d.Name), query) {
			continue
		}
		out = append(out, d)
	}
	return out
}
