package pipeline

import "alttext/internal/config"

// Step is one planned unit of per-language work.
type Step struct {
	Language string
	// Translate marks steps served by translating the reference result
	// instead of a full pipeline run.
	Translate bool
}

// ExecutionPlan lays out how the requested languages will be produced before
// any provider call happens.
type ExecutionPlan struct {
	// Reference is the language whose full run seeds translations. Always
	// the first requested language.
	Reference string
	Steps     []Step
}

// PlanLanguages builds the execution plan for a language list. Duplicates
// collapse to their first occurrence and order is preserved. Fast mode plans
// one full run plus a translation per remaining language; accurate mode
// plans a full run for every language. A single-language request degenerates
// to one full run in either mode.
func PlanLanguages(languages []string, mode config.TranslationMode) ExecutionPlan {
	ordered := dedupe(languages)
	if len(ordered) == 0 {
		return ExecutionPlan{}
	}

	plan := ExecutionPlan{Reference: ordered[0]}
	for i, lang := range ordered {
		translate := mode == config.TranslationFast && i > 0
		plan.Steps = append(plan.Steps, Step{Language: lang, Translate: translate})
	}
	return plan
}

func dedupe(languages []string) []string {
	seen := make(map[string]struct{}, len(languages))
	var ordered []string
	for _, lang := range languages {
		if lang == "" {
			continue
		}
		if _, ok := seen[lang]; ok {
			continue
		}
		seen[lang] = struct{}{}
		ordered = append(ordered, lang)
	}
	return ordered
}
