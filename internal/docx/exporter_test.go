package docx

import (
	"strings"
	"testing"

	"resumesmith/internal/resume"
)

func TestBuildPlaceholders_Basics(t *testing.T) {
	p := resume.SampleProfile()
	placeholders := BuildPlaceholders(p)

	if placeholders["full_name"] != "Jordan Avery" {
		t.Fatalf("unexpected full_name: %v", placeholders["full_name"])
	}
	contact, _ := placeholders["contact"].(string)
	if !strings.Contains(contact, "jordan.avery@example.com") || !strings.Contains(contact, " | ") {
		t.Fatalf("unexpected contact line: %q", contact)
	}
}

func TestFlattenSections_FollowsOrder(t *testing.T) {
	p := resume.SampleProfile()
	p.MoveSection(resume.KeySkills, resume.MoveUp)
	p.MoveSection(resume.KeySkills, resume.MoveUp)

	body := flattenSections(p)
	skillsIdx := strings.Index(body, "Skills")
	expIdx := strings.Index(body, "Experience")
	if skillsIdx < 0 || expIdx < 0 {
		t.Fatalf("missing sections in body:\n%s", body)
	}
	if skillsIdx > expIdx {
		t.Fatalf("skills should precede experience after reorder:\n%s", body)
	}
}

func TestFlattenSections_SkipsHiddenAndEmpty(t *testing.T) {
	p := resume.SampleProfile()
	p.ToggleVisibility(resume.KeyEducation)
	p.Skills = nil

	body := flattenSections(p)
	if strings.Contains(body, "Oregon State University") {
		t.Fatalf("hidden education leaked:\n%s", body)
	}
	if strings.Contains(body, "Skills") {
		t.Fatalf("empty skills section should be omitted:\n%s", body)
	}
	if !strings.Contains(body, "Northwind Labs") {
		t.Fatalf("experience missing:\n%s", body)
	}
}

func TestFlattenSections_CustomSectionIncluded(t *testing.T) {
	p := resume.SampleProfile()
	body := flattenSections(p)

	if !strings.Contains(body, "Certifications") {
		t.Fatalf("custom section title missing:\n%s", body)
	}
	if !strings.Contains(body, "- AWS Solutions Architect Associate") {
		t.Fatalf("bullet items missing:\n%s", body)
	}
}

func TestFlattenCustomSection_Projects(t *testing.T) {
	cs := resume.CustomSection{
		Key:   "custom-p",
		Title: "Projects",
		Type:  resume.SectionProjects,
		Items: []resume.Item{
			{ID: "1", Title: "resumesmith", Date: "2025", Description: "Builder.", Link: "https://example.com"},
			{ID: "2", Title: "bare"},
		},
	}

	out := flattenCustomSection(cs)
	if !strings.Contains(out, "resumesmith") || !strings.Contains(out, "https://example.com") {
		t.Fatalf("project fields missing:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if lines[len(lines)-1] != "bare" {
		t.Fatalf("entry without optional fields should be a single line:\n%s", out)
	}
}

func TestHeadLine(t *testing.T) {
	if got := headLine("Engineer", "Acme", "2020"); got != "Engineer — Acme — 2020" {
		t.Fatalf("unexpected head line %q", got)
	}
	if got := headLine("Engineer", "", ""); got != "Engineer" {
		t.Fatalf("unexpected head line %q", got)
	}
}
