package render

// sectionTemplateString 是六种段落类型的共享渲染模板。
// Variant 只出现在 class 名里：布局通过 CSS 控制密度，内容结构完全一致。
const sectionTemplateString = `
{{define "section_bullets"}}<section class="sec sec-bullets variant-{{.Variant}}">
<h3 class="sec-title">{{.Title}}</h3>
<ul class="bullet-list">
{{range .Items}}<li class="bullet">{{.Text}}</li>
{{end}}</ul>
</section>{{end}}

{{define "section_skills"}}<section class="sec sec-skills variant-{{.Variant}}">
<h3 class="sec-title">{{.Title}}</h3>
<div class="chip-row">
{{range .Items}}<span class="chip">{{.Name}}</span>
{{end}}</div>
</section>{{end}}

{{define "section_projects"}}<section class="sec sec-projects variant-{{.Variant}}">
<h3 class="sec-title">{{.Title}}</h3>
{{range .Items}}<div class="project">
<div class="project-head"><span class="project-title">{{.Title}}</span>{{if .Date}}<span class="date">{{.Date}}</span>{{end}}</div>
{{if .Description}}<p class="desc">{{.Description}}</p>{{end}}
{{if .Link}}<a class="project-link" href="{{.Link}}">{{.Link}}</a>{{end}}
</div>
{{end}}</section>{{end}}

{{define "section_text"}}<section class="sec sec-text variant-{{.Variant}}">
<h3 class="sec-title">{{.Title}}</h3>
{{range .Items}}<p class="freeform">{{.Text}}</p>
{{end}}</section>{{end}}

{{define "section_experience"}}<section class="sec sec-experience variant-{{.Variant}}">
<h3 class="sec-title">{{.Title}}</h3>
{{range .Items}}<div class="entry">
<div class="entry-head"><span class="entry-role">{{.Role}}</span>{{if .Company}}<span class="entry-org">{{.Company}}</span>{{end}}{{if .Date}}<span class="date">{{.Date}}</span>{{end}}</div>
{{if .Description}}<p class="desc">{{.Description}}</p>{{end}}
</div>
{{end}}</section>{{end}}

{{define "section_education"}}<section class="sec sec-education variant-{{.Variant}}">
<h3 class="sec-title">{{.Title}}</h3>
{{range .Items}}<div class="entry">
<div class="entry-head"><span class="entry-role">{{.School}}</span>{{if .Degree}}<span class="entry-org">{{.Degree}}</span>{{end}}{{if .Date}}<span class="date">{{.Date}}</span>{{end}}</div>
{{if .Description}}<p class="desc">{{.Description}}</p>{{end}}
</div>
{{end}}</section>{{end}}
`
