package render

import (
	"strings"
	"testing"
)

func TestTemplates_FullCatalog(t *testing.T) {
	all := Templates()
	want := len(layoutFamilies) * len(palette)
	if len(all) != want {
		t.Fatalf("expected %d templates, got %d", want, len(all))
	}

	seen := map[string]bool{}
	for _, d := range all {
		if seen[d.ID] {
			t.Fatalf("duplicate template id %s", d.ID)
		}
		seen[d.ID] = true
		if _, ok := FamilyByID(d.Family); !ok {
			t.Fatalf("template %s references unknown family %s", d.ID, d.Family)
		}
		if !strings.HasPrefix(d.Color, "#") {
			t.Fatalf("template %s has non-hex color %q", d.ID, d.Color)
		}
	}
}

func TestTemplates_ReturnsCopy(t *testing.T) {
	first := Templates()
	first[0].Name = "mutated"

	again := Templates()
	if again[0].Name == "mutated" {
		t.Fatal("catalog must not be mutable through returned slice")
	}
}

func TestTemplateByID(t *testing.T) {
	d, ok := TemplateByID("meridian-graphite")
	if !ok {
		t.Fatal("expected meridian-graphite to exist")
	}
	if d.Family != "meridian" || d.ColorName != "graphite" {
		t.Fatalf("unexpected descriptor: %+v", d)
	}

	if _, ok := TemplateByID("meridian-neon"); ok {
		t.Fatal("unknown color should not resolve")
	}
}

func TestSearchTemplates_ByFamily(t *testing.T) {
	out := SearchTemplates("", "harbor")
	if len(out) != len(palette) {
		t.Fatalf("expected %d harbor templates, got %d", len(palette), len(out))
	}
	for _, d := range out {
		if d.Family != "harbor" {
			t.Fatalf("wrong family in result: %+v", d)
		}
	}
}

func TestSearchTemplates_ByName(t *testing.T) {
	out := SearchTemplates("Crimson", "")
	if len(out) != len(layoutFamilies) {
		t.Fatalf("expected one crimson per family (%d), got %d", len(layoutFamilies), len(out))
	}

	out = SearchTemplates("crimson", "atlas")
	if len(out) != 1 || out[0].ID != "atlas-crimson" {
		t.Fatalf("expected single atlas-crimson, got %v", out)
	}

	if out := SearchTemplates("zzz-no-match", ""); len(out) != 0 {
		t.Fatalf("expected empty result, got %d entries", len(out))
	}
}

func TestPartition_PreservesOrder(t *testing.T) {
	family, _ := FamilyByID("harbor")

	p := samplePartitionProfile()
	main, side := family.Partition(p.OrderedVisibleSections())

	// harbor 把 skills 和 education 收进侧栏，其余归主区。
	for _, d := range side {
		if d.Key != "skills" && d.Key != "education" {
			t.Fatalf("unexpected section in sidebar: %+v", d)
		}
	}
	for _, d := range main {
		if d.Key == "skills" || d.Key == "education" {
			t.Fatalf("sidebar section leaked into main: %+v", d)
		}
	}
	if len(main)+len(side) != len(p.OrderedVisibleSections()) {
		t.Fatal("partition lost sections")
	}
}

func TestPartition_SingleColumnAllMain(t *testing.T) {
	family, _ := FamilyByID("meridian")

	p := samplePartitionProfile()
	sections := p.OrderedVisibleSections()
	main, side := family.Partition(sections)

	if len(side) != 0 {
		t.Fatalf("single column layout must not produce sidebar, got %v", side)
	}
	if len(main) != len(sections) {
		t.Fatalf("expected all %d sections in main, got %d", len(sections), len(main))
	}
}
