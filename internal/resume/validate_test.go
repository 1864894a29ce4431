package resume

import "testing"

func validProfile() *Profile {
	p := NewProfile()
	p.Personal = PersonalInfo{
		FullName: "Jordan Avery",
		Title:    "Platform Engineer",
		Email:    "jordan@example.com",
		Phone:    "555-0100",
		Location: "Rotterdam, NL",
	}
	return p
}

func hasFieldError(errs []FieldError, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestValidateProfile_Valid(t *testing.T) {
	if errs := ValidateProfile(validProfile()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateProfile_RequiredPersonalFields(t *testing.T) {
	p := validProfile()
	p.Personal.FullName = "   "
	p.Personal.Email = ""

	errs := ValidateProfile(p)
	if !hasFieldError(errs, "personal.full_name") {
		t.Fatalf("expected full_name error, got %v", errs)
	}
	if !hasFieldError(errs, "personal.email") {
		t.Fatalf("expected email error, got %v", errs)
	}
}

func TestValidateProfile_EmailFormat(t *testing.T) {
	p := validProfile()
	p.Personal.Email = "not-an-email"

	errs := ValidateProfile(p)
	if !hasFieldError(errs, "personal.email") {
		t.Fatalf("expected email format error, got %v", errs)
	}
}

func TestValidateProfile_WebsiteOptionalButChecked(t *testing.T) {
	p := validProfile()
	if errs := ValidateProfile(p); len(errs) != 0 {
		t.Fatalf("empty website should pass, got %v", errs)
	}

	p.Personal.Website = "not a url"
	errs := ValidateProfile(p)
	if !hasFieldError(errs, "personal.website") {
		t.Fatalf("expected website error, got %v", errs)
	}

	p.Personal.Website = "https://example.com"
	if errs := ValidateProfile(p); len(errs) != 0 {
		t.Fatalf("valid website should pass, got %v", errs)
	}
}

func TestValidateProfile_IndexedEntryErrors(t *testing.T) {
	p := validProfile()
	p.Experience = []ExperienceEntry{
		{ID: NewEntryID(), Company: "Acme", Role: "Engineer", DateRange: "2020 - 2023", Description: "Built things."},
		{ID: NewEntryID(), Company: "", Role: "Engineer", DateRange: "2023 -", Description: "More things."},
	}
	p.Education = []EducationEntry{
		{ID: NewEntryID(), School: "TU Delft", Degree: "", DateRange: "2016 - 2020"},
	}
	p.Skills = []SkillEntry{{ID: NewEntryID(), Name: " "}}

	errs := ValidateProfile(p)
	if !hasFieldError(errs, "experience[1].company") {
		t.Fatalf("expected experience[1].company error, got %v", errs)
	}
	if hasFieldError(errs, "experience[0].company") {
		t.Fatalf("unexpected error for complete entry, got %v", errs)
	}
	if !hasFieldError(errs, "education[0].degree") {
		t.Fatalf("expected education[0].degree error, got %v", errs)
	}
	if !hasFieldError(errs, "skills[0].name") {
		t.Fatalf("expected skills[0].name error, got %v", errs)
	}
}

func TestValidateProfile_CustomItemsNotValidated(t *testing.T) {
	// 自定义段落的条目不做 schema 校验：空字符串合法。
	p := validProfile()
	cs := p.AddCustomSection("Certifications", SectionBullets)
	cs.Items = append(cs.Items, Item{ID: NewEntryID(), Text: ""})

	if errs := ValidateProfile(p); len(errs) != 0 {
		t.Fatalf("custom section items must not produce errors, got %v", errs)
	}
}
