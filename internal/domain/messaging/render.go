package messaging

import "strings"

// Render substitutes {{placeholder}} tokens in text with values from vars.
// Unknown placeholders are left in place so a missing variable is visible
// in the delivered message instead of silently dropped.
func Render(text string, vars map[string]string) string {
	if text == "" || len(vars) == 0 {
		return text
	}

	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// RenderTemplate renders a template's subject and body with the given vars
func RenderTemplate(t *Template, vars map[string]string) (subject, body string) {
	return Render(t.Subject, vars), Render(t.Body, vars)
}
