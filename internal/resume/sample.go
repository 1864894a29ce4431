package resume

// SampleProfile 返回一份用于模板缩略图/画廊展示的示例档案。
// 内容覆盖全部内置段落和一个自定义段落，保证缩略图能体现布局差异。
func SampleProfile() *Profile {
	p := NewProfile()
	p.Personal = PersonalInfo{
		FullName: "Jordan Avery",
		Title:    "Senior Product Engineer",
		Email:    "jordan.avery@example.com",
		Phone:    "+1 555 010 2288",
		Location: "Portland, OR",
		Website:  "https://jordanavery.example.com",
		Summary:  "Product engineer with eight years of experience shipping consumer web applications, from prototype to multi-region production.",
	}
	p.Experience = []ExperienceEntry{
		{
			ID:          NewEntryID(),
			Company:     "Northwind Labs",
			Role:        "Senior Product Engineer",
			DateRange:   "2021 – Present",
			Description: "Lead a team of five building the customer onboarding platform. Cut signup drop-off by 32%.",
		},
		{
			ID:          NewEntryID(),
			Company:     "Brightline Systems",
			Role:        "Software Engineer",
			DateRange:   "2017 – 2021",
			Description: "Built internal billing tools and migrated the reporting pipeline to an event-driven design.",
		},
	}
	p.Education = []EducationEntry{
		{
			ID:        NewEntryID(),
			School:    "Oregon State University",
			Degree:    "B.S. Computer Science",
			DateRange: "2013 – 2017",
		},
	}
	p.Skills = []SkillEntry{
		{ID: NewEntryID(), Name: "Go"},
		{ID: NewEntryID(), Name: "TypeScript"},
		{ID: NewEntryID(), Name: "PostgreSQL"},
		{ID: NewEntryID(), Name: "Kubernetes"},
	}

	if section := p.AddCustomSection("Certifications", SectionBullets); section != nil {
		section.Items = []Item{
			{ID: NewEntryID(), Text: "AWS Solutions Architect Associate"},
			{ID: NewEntryID(), Text: "CKA: Certified Kubernetes Administrator"},
		}
	}
	return p
}
