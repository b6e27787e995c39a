package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	apperrors "github.com/iceymoss/go-press/pkg/errors"
	"github.com/iceymoss/go-press/pkg/sensitive"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误里使用 json 字段名，与表单字段保持一致
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct 把 validator 的错误逐条写入 verr
func checkStruct(verr *apperrors.CodeMsg, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	for _, fe := range ves {
		field, msg := describe(fe)
		verr.Add(field, msg)
	}
	return nil
}

func describe(fe validator.FieldError) (string, string) {
	field := fe.Field()
	label := strings.ReplaceAll(field, "_", " ")
	switch fe.Tag() {
	case "required":
		return field, fmt.Sprintf("The %s field is required.", label)
	case "max":
		return field, fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "min":
		return field, fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "email":
		return field, fmt.Sprintf("The %s field must be a valid email address.", label)
	case "eqfield":
		// 确认字段不一致时错误挂在原字段上
		field = strings.TrimSuffix(field, "_confirmation")
		return field, fmt.Sprintf("The %s field confirmation does not match.", strings.ReplaceAll(field, "_", " "))
	}
	return field, fmt.Sprintf("The %s field is invalid.", label)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate 空串返回 nil
func parseDate(raw string) (*time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// checkWords words 为 nil 时不做过滤
func checkWords(verr *apperrors.CodeMsg, words *sensitive.Word, field, value string) {
	if words == nil || value == "" {
		return
	}
	if ok, hit := words.Validate(value); !ok {
		verr.Add(field, fmt.Sprintf("The %s contains a blocked word: %s.", strings.ReplaceAll(field, "_", " "), hit))
	}
}
