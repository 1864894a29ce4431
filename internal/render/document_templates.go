package render

import "fmt"

// documentTemplateString 是布局骨架的 Go HTML 模板。
// 内置段落（experience/education/skills）由各骨架用自己的标记渲染，
// 自定义段落的 HTML 已经由 RenderSection 统一生成，这里只负责落位。
const documentTemplateString = `
{{define "document"}}<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>{{.CSS}}</style>
</head>
<body class="arch-{{.Family.Archetype}} font-{{.Family.Font}} heading-{{.Family.HeadingClass}}">
<div class="page">
{{if eq .Family.Archetype "banner"}}<header class="doc-header banner">
{{if .PhotoURL}}<img class="photo" src="{{.PhotoURL}}" alt="">{{end}}
<div class="identity">
<h1 class="full-name">{{.Profile.Personal.FullName}}</h1>
<p class="headline">{{.Profile.Personal.Title}}</p>
<p class="contact">{{.ContactLine}}</p>
</div>
</header>
{{if .Profile.Personal.Summary}}<p class="summary">{{.Profile.Personal.Summary}}</p>{{end}}
{{else}}<header class="doc-header">
{{if .PhotoURL}}<img class="photo" src="{{.PhotoURL}}" alt="">{{end}}
<h1 class="full-name">{{.Profile.Personal.FullName}}</h1>
<p class="headline">{{.Profile.Personal.Title}}</p>
<p class="contact">{{.ContactLine}}</p>
{{if .Profile.Personal.Summary}}<p class="summary">{{.Profile.Personal.Summary}}</p>{{end}}
</header>
{{end}}
{{if eq .Family.Archetype "sidebar-left"}}<div class="columns">
<aside class="side">{{template "zone" .SideZone}}</aside>
<main class="main">{{template "zone" .MainZone}}</main>
</div>
{{else if eq .Family.Archetype "sidebar-right"}}<div class="columns">
<main class="main">{{template "zone" .MainZone}}</main>
<aside class="side">{{template "zone" .SideZone}}</aside>
</div>
{{else}}<main class="main">{{template "zone" .MainZone}}</main>
{{end}}</div>
</body>
</html>{{end}}

{{define "zone"}}{{range .Sections}}{{if .Builtin}}{{if eq .Desc.Key "experience"}}{{if $.Timeline}}{{template "bi_experience_timeline" $.Profile}}{{else}}{{template "bi_experience" $.Profile}}{{end}}{{else if eq .Desc.Key "education"}}{{if $.Compact}}{{template "bi_education_side" $.Profile}}{{else if $.Timeline}}{{template "bi_education_timeline" $.Profile}}{{else}}{{template "bi_education" $.Profile}}{{end}}{{else if eq .Desc.Key "skills"}}{{if $.Compact}}{{template "bi_skills_side" $.Profile}}{{else}}{{template "bi_skills" $.Profile}}{{end}}{{end}}{{else}}{{.HTML}}{{end}}{{end}}{{end}}

{{define "bi_experience"}}{{if .Experience}}<section class="sec sec-experience builtin">
<h3 class="sec-title">Experience</h3>
{{range .Experience}}<div class="entry">
<div class="entry-head"><span class="entry-role">{{.Role}}</span><span class="entry-org">{{.Company}}</span><span class="date">{{.DateRange}}</span></div>
<p class="desc">{{.Description}}</p>
</div>
{{end}}</section>{{end}}{{end}}

{{define "bi_experience_timeline"}}{{if .Experience}}<section class="sec sec-experience builtin timeline">
<h3 class="sec-title">Experience</h3>
<div class="timeline-track">
{{range .Experience}}<div class="entry timeline-entry">
<span class="timeline-marker"></span>
<div class="entry-head"><span class="date">{{.DateRange}}</span><span class="entry-role">{{.Role}}</span><span class="entry-org">{{.Company}}</span></div>
<p class="desc">{{.Description}}</p>
</div>
{{end}}</div>
</section>{{end}}{{end}}

{{define "bi_education"}}{{if .Education}}<section class="sec sec-education builtin">
<h3 class="sec-title">Education</h3>
{{range .Education}}<div class="entry">
<div class="entry-head"><span class="entry-role">{{.School}}</span><span class="entry-org">{{.Degree}}</span><span class="date">{{.DateRange}}</span></div>
{{if .Description}}<p class="desc">{{.Description}}</p>{{end}}
</div>
{{end}}</section>{{end}}{{end}}

{{define "bi_education_timeline"}}{{if .Education}}<section class="sec sec-education builtin timeline">
<h3 class="sec-title">Education</h3>
<div class="timeline-track">
{{range .Education}}<div class="entry timeline-entry">
<span class="timeline-marker"></span>
<div class="entry-head"><span class="date">{{.DateRange}}</span><span class="entry-role">{{.School}}</span><span class="entry-org">{{.Degree}}</span></div>
{{if .Description}}<p class="desc">{{.Description}}</p>{{end}}
</div>
{{end}}</div>
</section>{{end}}{{end}}

{{define "bi_education_side"}}{{if .Education}}<section class="sec sec-education builtin variant-sidebar">
<h3 class="sec-title">Education</h3>
{{range .Education}}<div class="entry compact">
<div class="entry-role">{{.School}}</div>
<div class="entry-org">{{.Degree}}</div>
<div class="date">{{.DateRange}}</div>
</div>
{{end}}</section>{{end}}{{end}}

{{define "bi_skills"}}{{if .Skills}}<section class="sec sec-skills builtin">
<h3 class="sec-title">Skills</h3>
<div class="chip-row">
{{range .Skills}}<span class="chip">{{.Name}}</span>
{{end}}</div>
</section>{{end}}{{end}}

{{define "bi_skills_side"}}{{if .Skills}}<section class="sec sec-skills builtin variant-sidebar">
<h3 class="sec-title">Skills</h3>
<ul class="skill-list">
{{range .Skills}}<li>{{.Name}}</li>
{{end}}</ul>
</section>{{end}}{{end}}
`

var fontStacks = map[FontStack]string{
	FontSerif: `Georgia, 'Times New Roman', serif`,
	FontSans:  `'Helvetica Neue', Arial, sans-serif`,
	FontMono:  `'Courier New', Courier, monospace`,
}

// buildCSS 生成整份文档的样式：A4 纸面基线 + 家族字体 + 主色 + 标题处理。
// 页面尺寸与打印参数必须和 internal/pdf 的导出参数保持一致。
func buildCSS(family LayoutFamily, accent string) string {
	return fmt.Sprintf(`
body { margin: 0; padding: 0; font-family: %s; font-size: 10pt; color: #1c1e21; }
.page { width: 794px; min-height: 1122px; background: white; margin: 0 auto; padding: 40px 48px; box-sizing: border-box; }
.doc-header { margin-bottom: 18px; }
.full-name { font-size: 24pt; margin: 0 0 2px; }
.headline { font-size: 12pt; margin: 0 0 6px; color: %[2]s; }
.contact { font-size: 9pt; margin: 0; color: #555; }
.summary { font-size: 10pt; margin: 8px 0 0; }
.photo { float: right; width: 84px; height: 84px; object-fit: cover; border-radius: 4px; margin-left: 12px; }
.sec { margin-bottom: 14px; }
.sec-title { font-size: 11pt; margin: 0 0 6px; }
.entry { margin-bottom: 8px; }
.entry-head { display: flex; gap: 8px; align-items: baseline; flex-wrap: wrap; }
.entry-role { font-weight: bold; }
.entry-org { color: #444; }
.date { color: #777; font-size: 9pt; margin-left: auto; }
.desc { margin: 2px 0 0; white-space: pre-line; }
.freeform { margin: 0 0 6px; white-space: pre-line; }
.bullet-list { margin: 0; padding-left: 18px; }
.bullet { margin-bottom: 2px; }
.chip-row { display: flex; flex-wrap: wrap; gap: 4px; }
.chip { border: 1px solid %[2]s; color: %[2]s; border-radius: 10px; padding: 1px 8px; font-size: 9pt; }
.project-head { display: flex; gap: 8px; align-items: baseline; }
.project-title { font-weight: bold; }
.project-link { font-size: 9pt; color: %[2]s; }
.project { margin-bottom: 8px; }

.heading-caps .sec-title { text-transform: uppercase; letter-spacing: 0.12em; font-size: 10pt; }
.heading-rule .sec-title { border-bottom: 1.5px solid %[2]s; padding-bottom: 2px; }
.heading-accent .sec-title { color: %[2]s; }
.heading-plain .sec-title { font-weight: 600; }

.arch-sidebar-left .columns, .arch-sidebar-right .columns { display: flex; gap: 24px; }
.arch-sidebar-left .side, .arch-sidebar-right .side { width: 30%%; }
.arch-sidebar-left .main, .arch-sidebar-right .main { width: 70%%; }
.side { background: %[2]s14; padding: 12px; box-sizing: border-box; border-radius: 4px; }
.side .sec-title { font-size: 9.5pt; }
.variant-sidebar .entry, .variant-sidebar .bullet { font-size: 9pt; }
.variant-sidebar .date { margin-left: 0; }
.skill-list { margin: 0; padding-left: 16px; font-size: 9pt; }

.arch-timeline .timeline-track, .variant-timeline { border-left: 2px solid %[2]s; padding-left: 16px; }
.timeline-marker { position: absolute; width: 8px; height: 8px; border-radius: 50%%; background: %[2]s; margin-left: -21px; margin-top: 4px; }
.timeline-entry { position: relative; }
.timeline-entry .date { margin-left: 0; font-weight: 600; color: %[2]s; }

.arch-banner .banner { background: %[2]s; color: white; margin: -40px -48px 18px; padding: 28px 48px; }
.arch-banner .banner .headline, .arch-banner .banner .contact { color: rgba(255,255,255,0.85); }

@media print {
  * { -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; }
  @page { size: A4; margin: 0; }
  body { background: white; }
}
`, fontStacks[family.Font], accent)
}
