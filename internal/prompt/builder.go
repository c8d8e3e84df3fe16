// Package prompt assembles the exact text sent to a provider for each
// pipeline stage from embedded templates and runtime variables.
package prompt

import (
	"fmt"
	"strings"

	"alttext/internal/config"
)

// Recognized placeholder names. Anything else wrapped in braces is left
// verbatim so a missing substitution shows up in the provider payload instead
// of silently disappearing.
const (
	VarLanguage       = "LANGUAGE"
	VarTargetLanguage = "TARGET_LANGUAGE"
	VarContext        = "CONTEXT"
	VarImageTypeHint  = "IMAGE_TYPE_HINT"
	VarDescription    = "DESCRIPTION"
	VarAltText        = "ALT_TEXT"
)

// TemplateError reports a template that cannot produce a usable prompt.
type TemplateError struct {
	Stage  config.StageName
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("prompt: stage %s: %s", e.Stage, e.Reason)
}

// Build merges a stage template with runtime variables. Recognized
// placeholders (`{LANGUAGE}`, `{CONTEXT}`, ...) are substituted from vars;
// unrecognized placeholders stay verbatim. Pure function: same inputs always
// produce the same output.
func Build(stage config.StageName, template string, vars map[string]string) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", &TemplateError{Stage: stage, Reason: "template is empty"}
	}

	out := template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out, nil
}
