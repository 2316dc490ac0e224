// internal/sms/template.go
package sms

import (
	"regexp"
	"strings"

	"github.com/artbattle/sms-marketing-backend/internal/model"
)

var varPattern = regexp.MustCompile(`(?i)%%([A-Z_]+)%%`)

// RenderPersonVariables substitutes %%NAME%%, %%FIRST_NAME%%, %%LAST_NAME%%
// and %%HASH%% placeholders (case-insensitive) with live contact data. An
// unknown placeholder renders as empty rather than leaking the token.
func RenderPersonVariables(message string, p *model.Person) string {
	if p == nil {
		return message
	}
	vars := map[string]string{
		"NAME":       p.FullName(),
		"FIRST_NAME": p.FirstName,
		"LAST_NAME":  p.LastName,
		"HASH":       p.Hash,
	}
	return varPattern.ReplaceAllStringFunc(message, func(tok string) string {
		key := strings.ToUpper(strings.Trim(tok, "%"))
		return vars[key]
	})
}

// RenderTemplate substitutes {{variable}} placeholders from a variable map.
// Missing variables are left in place so the gap is visible downstream.
func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{{"+k+"}}", v)
	}
	return result
}
