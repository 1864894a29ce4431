package render

import (
	"strings"
	"testing"

	"resumesmith/internal/resume"
)

func samplePartitionProfile() *resume.Profile {
	return resume.SampleProfile()
}

func TestRenderDocument_UnknownTemplate(t *testing.T) {
	if _, err := RenderDocument(resume.SampleProfile(), "no-such-template", ""); err == nil {
		t.Fatal("expected error for unknown template id")
	}
}

func TestRenderDocument_ContainsProfileContent(t *testing.T) {
	p := resume.SampleProfile()
	out, err := RenderDocument(p, "meridian-graphite", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := string(out)
	for _, want := range []string{
		"Jordan Avery",
		"Senior Product Engineer",
		"Northwind Labs",
		"Oregon State University",
		"Certifications",
		"jordan.avery@example.com",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("document missing %q", want)
		}
	}
}

func TestRenderDocument_HiddenSectionAbsent(t *testing.T) {
	p := resume.SampleProfile()
	p.ToggleVisibility(resume.KeyEducation)

	out, err := RenderDocument(p, "slate-indigo", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "Oregon State University") {
		t.Fatal("hidden education section leaked into document")
	}
}

func TestRenderDocument_EmptyBuiltinRendersNoHeading(t *testing.T) {
	p := resume.SampleProfile()
	p.Skills = nil

	out, err := RenderDocument(p, "meridian-graphite", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), ">Skills<") {
		t.Fatal("empty skills section must not render its heading")
	}
}

func TestRenderDocument_SidebarSplit(t *testing.T) {
	p := resume.SampleProfile()
	out, err := RenderDocument(p, "harbor-teal", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := string(out)
	sidebarIdx := strings.Index(html, `class="side"`)
	if sidebarIdx < 0 {
		t.Fatalf("sidebar column missing: %s", html[:200])
	}
	// harbor 把技能放进侧栏，工作经历留在主区。
	if skillsIdx := strings.Index(html, "Go"); skillsIdx < sidebarIdx {
		t.Fatal("skills rendered before sidebar column opened")
	}
}

func TestRenderDocument_PhotoOmittedWhenEmpty(t *testing.T) {
	p := resume.SampleProfile()

	withPhoto, err := RenderDocument(p, "beacon-navy", "https://cdn.example.com/photo.jpg")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(withPhoto), "https://cdn.example.com/photo.jpg") {
		t.Fatal("photo url missing from document")
	}

	withoutPhoto, err := RenderDocument(p, "beacon-navy", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(withoutPhoto), "<img") {
		t.Fatal("photo element present without photo url")
	}
}

func TestRenderDocument_AccentColorApplied(t *testing.T) {
	p := resume.SampleProfile()

	crimson, err := RenderDocument(p, "slate-crimson", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(crimson), "#b0263c") {
		t.Fatal("accent color missing from stylesheet")
	}

	indigo, err := RenderDocument(p, "slate-indigo", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(indigo), "#b0263c") {
		t.Fatal("wrong accent color in stylesheet")
	}
}

func TestRenderDocument_AllTemplatesRender(t *testing.T) {
	p := resume.SampleProfile()
	for _, d := range Templates() {
		if _, err := RenderDocument(p, d.ID, ""); err != nil {
			t.Fatalf("template %s failed to render: %v", d.ID, err)
		}
	}
}

func TestContactLine_SkipsEmptyFields(t *testing.T) {
	line := contactLine(resume.PersonalInfo{Email: "a@b.c", Location: "Berlin"})
	if line != "a@b.c  ·  Berlin" {
		t.Fatalf("unexpected contact line %q", line)
	}

	if contactLine(resume.PersonalInfo{}) != "" {
		t.Fatal("empty personal info should produce empty contact line")
	}
}
