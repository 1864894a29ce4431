package resume

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError 是字段级校验错误。校验失败不阻断编辑，档案保持"无效但可编辑"。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = validator.New()

// ValidateProfile 对档案做字段级校验并返回全部错误。
// 自定义段落的条目不做 schema 校验：空字符串合法，渲染时显示为空白。
func ValidateProfile(p *Profile) []FieldError {
	var errs []FieldError

	errs = appendRequired(errs, "personal.full_name", p.Personal.FullName)
	errs = appendRequired(errs, "personal.title", p.Personal.Title)
	errs = appendRequired(errs, "personal.phone", p.Personal.Phone)
	errs = appendRequired(errs, "personal.location", p.Personal.Location)

	if strings.TrimSpace(p.Personal.Email) == "" {
		errs = append(errs, FieldError{Field: "personal.email", Message: "required"})
	} else if validate.Var(p.Personal.Email, "email") != nil {
		errs = append(errs, FieldError{Field: "personal.email", Message: "invalid email"})
	}

	// website 可选，但填了就必须是合法 URL。
	if p.Personal.Website != "" && validate.Var(p.Personal.Website, "url") != nil {
		errs = append(errs, FieldError{Field: "personal.website", Message: "invalid url"})
	}

	for i, e := range p.Experience {
		prefix := fmt.Sprintf("experience[%d]", i)
		errs = appendRequired(errs, prefix+".company", e.Company)
		errs = appendRequired(errs, prefix+".role", e.Role)
		errs = appendRequired(errs, prefix+".date_range", e.DateRange)
		errs = appendRequired(errs, prefix+".description", e.Description)
	}

	for i, e := range p.Education {
		prefix := fmt.Sprintf("education[%d]", i)
		errs = appendRequired(errs, prefix+".school", e.School)
		errs = appendRequired(errs, prefix+".degree", e.Degree)
		errs = appendRequired(errs, prefix+".date_range", e.DateRange)
	}

	for i, s := range p.Skills {
		errs = appendRequired(errs, fmt.Sprintf("skills[%d].name", i), s.Name)
	}

	return errs
}

func appendRequired(errs []FieldError, field, value string) []FieldError {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, FieldError{Field: field, Message: "required"})
	}
	return errs
}
