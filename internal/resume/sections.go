package resume

import (
	"strings"

	"github.com/lithammer/shortuuid/v4"
)

// Direction 表示段落上移/下移的方向。
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// OrderedVisibleSections 返回应当渲染的段落序列。
// 每次调用基于当前 SectionOrder/SectionVisibility/CustomSections 重新计算，不缓存。
// 悬空 Key（既不是内置也找不到对应自定义段落）会被静默跳过。
func (p *Profile) OrderedVisibleSections() []SectionDescriptor {
	result := make([]SectionDescriptor, 0, len(p.SectionOrder))
	for _, key := range p.SectionOrder {
		if !p.SectionVisible(key) {
			continue
		}
		if desc, ok := builtinDescriptors[key]; ok {
			result = append(result, desc)
			continue
		}
		if cs := p.CustomSectionByKey(key); cs != nil {
			result = append(result, SectionDescriptor{Key: cs.Key, Title: cs.Title, Type: cs.Type})
		}
	}
	return result
}

// SectionVisible 返回某个 Key 的有效可见性：缺省视为可见，显式 false 为隐藏。
func (p *Profile) SectionVisible(key string) bool {
	if p.SectionVisibility == nil {
		return true
	}
	visible, ok := p.SectionVisibility[key]
	if !ok {
		return true
	}
	return visible
}

// CustomSectionByKey 按 Key 查找自定义段落，不存在时返回 nil。
func (p *Profile) CustomSectionByKey(key string) *CustomSection {
	for i := range p.CustomSections {
		if p.CustomSections[i].Key == key {
			return &p.CustomSections[i]
		}
	}
	return nil
}

// MoveSection 将 Key 对应的段落与相邻段落交换位置。
// Key 不存在或已处于边界时静默不动，与前端禁用态的按钮语义一致。
func (p *Profile) MoveSection(key string, dir Direction) {
	idx := -1
	for i, k := range p.SectionOrder {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	switch dir {
	case MoveUp:
		if idx == 0 {
			return
		}
		p.SectionOrder[idx-1], p.SectionOrder[idx] = p.SectionOrder[idx], p.SectionOrder[idx-1]
	case MoveDown:
		if idx >= len(p.SectionOrder)-1 {
			return
		}
		p.SectionOrder[idx], p.SectionOrder[idx+1] = p.SectionOrder[idx+1], p.SectionOrder[idx]
	}
}

// ToggleVisibility 翻转段落的有效可见性并显式写入布尔值。
// Key 既不是内置段落也没有对应自定义段落时静默忽略，不留下悬空条目。
func (p *Profile) ToggleVisibility(key string) {
	if !IsBuiltinKey(key) && p.CustomSectionByKey(key) == nil {
		return
	}
	if p.SectionVisibility == nil {
		p.SectionVisibility = map[string]bool{}
	}
	p.SectionVisibility[key] = !p.SectionVisible(key)
}

// AddCustomSection 创建一个自定义段落并注册进排序与可见性表。
// 标题去除首尾空白后为空、或类型不在枚举内时静默拒绝（返回 nil）。
// 生成的 Key 保证不与任何既有 Key（内置或自定义）冲突。
func (p *Profile) AddCustomSection(title string, typ SectionType) *CustomSection {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	if !ValidSectionType(typ) {
		return nil
	}

	key := p.newSectionKey()
	section := CustomSection{
		ID:      NewEntryID(),
		Key:     key,
		Title:   title,
		Type:    typ,
		Enabled: true,
		Order:   len(p.SectionOrder),
		Items:   []Item{},
	}

	p.CustomSections = append(p.CustomSections, section)
	p.SectionOrder = append(p.SectionOrder, key)
	if p.SectionVisibility == nil {
		p.SectionVisibility = map[string]bool{}
	}
	p.SectionVisibility[key] = true

	return p.CustomSectionByKey(key)
}

// RemoveSection 删除自定义段落并清理其在排序与可见性表中的痕迹。
// 内置段落受保护：请求删除时不做任何变更，返回 false。
func (p *Profile) RemoveSection(key string) bool {
	if IsBuiltinKey(key) {
		return false
	}

	found := false
	sections := p.CustomSections[:0]
	for _, cs := range p.CustomSections {
		if cs.Key == key {
			found = true
			continue
		}
		sections = append(sections, cs)
	}
	if !found {
		return false
	}
	p.CustomSections = sections

	order := p.SectionOrder[:0]
	for _, k := range p.SectionOrder {
		if k == key {
			continue
		}
		order = append(order, k)
	}
	p.SectionOrder = order

	delete(p.SectionVisibility, key)
	return true
}

// newSectionKey 生成不与既有 Key 冲突的段落 Key。
// shortuuid 碰撞概率可以忽略，但唯一性是排序/可见性表的硬约束，仍然显式校验。
func (p *Profile) newSectionKey() string {
	for {
		key := "custom-" + shortuuid.New()
		if IsBuiltinKey(key) {
			continue
		}
		if p.CustomSectionByKey(key) != nil {
			continue
		}
		taken := false
		for _, k := range p.SectionOrder {
			if k == key {
				taken = true
				break
			}
		}
		if !taken {
			return key
		}
	}
}
