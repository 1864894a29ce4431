package render

import (
	"strings"
	"testing"

	"resumesmith/internal/resume"
)

func TestRenderSection_EmptyItemsRendersNothing(t *testing.T) {
	sec := Section{Key: "custom-a", Title: "Certifications", Type: resume.SectionBullets}
	if got := RenderSection(sec, VariantDefault); got != "" {
		t.Fatalf("expected empty output for empty section, got %q", got)
	}
}

func TestRenderSection_UnknownTypeRendersNothing(t *testing.T) {
	sec := Section{
		Key:   "custom-a",
		Title: "Odd",
		Type:  resume.SectionType("carousel"),
		Items: []resume.Item{{ID: "1", Text: "x"}},
	}
	if got := RenderSection(sec, VariantDefault); got != "" {
		t.Fatalf("expected empty output for unknown type, got %q", got)
	}
}

func TestRenderSection_Bullets(t *testing.T) {
	sec := Section{
		Key:   "custom-a",
		Title: "Certifications",
		Type:  resume.SectionBullets,
		Items: []resume.Item{
			{ID: "1", Text: "CKA"},
			{ID: "2", Text: "AWS SAA"},
		},
	}

	out := string(RenderSection(sec, VariantDefault))
	if !strings.Contains(out, "Certifications") {
		t.Fatalf("missing title: %s", out)
	}
	if !strings.Contains(out, "CKA") || !strings.Contains(out, "AWS SAA") {
		t.Fatalf("missing bullet text: %s", out)
	}
	// 顺序必须与条目数组一致。
	if strings.Index(out, "CKA") > strings.Index(out, "AWS SAA") {
		t.Fatalf("bullet order not preserved: %s", out)
	}
}

func TestRenderSection_ProjectsOmitsMissingFields(t *testing.T) {
	sec := Section{
		Key:   "custom-p",
		Title: "Projects",
		Type:  resume.SectionProjects,
		Items: []resume.Item{
			{ID: "1", Title: "resumesmith", Description: "Resume builder.", Link: "https://example.com/r"},
			{ID: "2", Title: "sidecar", Date: "2024"},
		},
	}

	out := string(RenderSection(sec, VariantDefault))
	if !strings.Contains(out, "resumesmith") || !strings.Contains(out, "sidecar") {
		t.Fatalf("missing project titles: %s", out)
	}
	if !strings.Contains(out, "https://example.com/r") {
		t.Fatalf("missing project link: %s", out)
	}
	// 无链接的条目不应输出空的 <a> 标签。
	if strings.Count(out, "<a ") != 1 {
		t.Fatalf("expected exactly one link, got: %s", out)
	}
}

func TestRenderSection_ExperienceFieldMapping(t *testing.T) {
	sec := Section{
		Key:   "custom-e",
		Title: "Freelance",
		Type:  resume.SectionExperience,
		Items: []resume.Item{
			{ID: "1", Title: "Consultant", Subtitle: "Various", Date: "2021 - 2023", Description: "Shipped things."},
		},
	}

	out := string(RenderSection(sec, VariantDefault))
	for _, want := range []string{"Consultant", "Various", "2021 - 2023", "Shipped things."} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %s", want, out)
		}
	}
}

func TestRenderSection_VariantOnlyChangesClasses(t *testing.T) {
	sec := Section{
		Key:   "skills",
		Title: "Skills",
		Type:  resume.SectionSkills,
		Items: []resume.Item{{ID: "1", Name: "Go"}, {ID: "2", Name: "Postgres"}},
	}

	def := string(RenderSection(sec, VariantDefault))
	side := string(RenderSection(sec, VariantSidebar))

	stripped := func(s string) string {
		s = strings.ReplaceAll(s, string(VariantDefault), "")
		s = strings.ReplaceAll(s, string(VariantSidebar), "")
		return s
	}
	if stripped(def) != stripped(side) {
		t.Fatalf("variant changed more than class names:\n%s\n---\n%s", def, side)
	}
}

func TestRenderSection_EscapesUserContent(t *testing.T) {
	sec := Section{
		Key:   "custom-t",
		Title: "Notes",
		Type:  resume.SectionText,
		Items: []resume.Item{{ID: "1", Text: "<script>alert(1)</script>"}},
	}

	out := string(RenderSection(sec, VariantDefault))
	if strings.Contains(out, "<script>") {
		t.Fatalf("user content not escaped: %s", out)
	}
}

func TestCustomSection_Conversion(t *testing.T) {
	cs := resume.CustomSection{
		Key:   "custom-x",
		Title: "Awards",
		Type:  resume.SectionBullets,
		Items: []resume.Item{{ID: "1", Text: "Best in show"}},
	}

	sec := CustomSection(cs)
	if sec.Key != cs.Key || sec.Title != cs.Title || sec.Type != cs.Type || len(sec.Items) != 1 {
		t.Fatalf("conversion lost data: %+v", sec)
	}
}
