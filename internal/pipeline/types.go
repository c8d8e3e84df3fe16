// Package pipeline turns one image into validated alt text through the
// vision, processing and translation stages, tracking every provider
// interaction in a stage trace.
package pipeline

import (
	"time"

	"alttext/internal/config"
)

// ImageTask is one unit of work for the pipeline: an image, its page
// context and the languages alt text is wanted in.
type ImageTask struct {
	ID       string   `json:"id"`
	Path     string   `json:"path,omitempty"`
	Image    []byte   `json:"-"`
	MIMEType string   `json:"mime_type"`
	Context  string   `json:"context,omitempty"`

	// TypeHint is an optional classification hint lifted from the page
	// markup (e.g. role="presentation" suggests decorative).
	TypeHint string `json:"type_hint,omitempty"`

	// Languages is an ordered set of BCP 47 style codes. The first entry is
	// the reference language in fast translation mode.
	Languages []string `json:"languages"`
}

// ImageType is the classification produced by the vision stage.
type ImageType string

const (
	TypeInformative ImageType = "informative"
	TypeDecorative  ImageType = "decorative"
	TypeFunctional  ImageType = "functional"
	TypeComplex     ImageType = "complex"
	TypeText        ImageType = "text"
)

// StageStatus is the terminal status of one stage execution.
type StageStatus string

const (
	// StatusOK means the provider answered and the answer parsed into the
	// stage schema.
	StatusOK StageStatus = "ok"
	// StatusParseError means the provider answered but the text could not be
	// coerced into the stage schema. The raw text is preserved.
	StatusParseError StageStatus = "parse_error"
	// StatusProviderError means the call itself failed after retries.
	StatusProviderError StageStatus = "provider_error"
)

// Parsed is the structured stage output. Fields are optional at the wire
// level; each stage enforces its own required subset.
type Parsed struct {
	ImageType   ImageType `json:"image_type,omitempty"`
	Description string    `json:"image_description,omitempty"`
	AltText     *string   `json:"alt_text,omitempty"`
	Reasoning   string    `json:"reasoning,omitempty"`
}

// StageResult records one stage execution, success or not. Raw provider text
// is kept on parse failures so nothing is lost to a malformed answer.
type StageResult struct {
	Stage    config.StageName `json:"stage"`
	Language string           `json:"language,omitempty"`
	Model    string           `json:"model,omitempty"`
	Status   StageStatus      `json:"status"`
	Raw      string           `json:"raw,omitempty"`
	Parsed   *Parsed          `json:"parsed,omitempty"`
	Error    string           `json:"error,omitempty"`
	Duration time.Duration    `json:"duration_ns,omitempty"`
}

// OK reports whether the stage produced usable structured output.
func (r StageResult) OK() bool { return r.Status == StatusOK }

// LanguageResult is the final alt text for one requested language.
type LanguageResult struct {
	// AltText is the validated alt text. Empty string is a meaningful value:
	// decorative images are explicitly marked with alt_text == "".
	AltText   string    `json:"alt_text"`
	ImageType ImageType `json:"image_type"`
	Reasoning string    `json:"reasoning,omitempty"`

	// Translated marks results produced by translating the reference
	// language rather than by a full pipeline run.
	Translated bool `json:"translated,omitempty"`
}

// GenerationResult is the terminal outcome for one image across all
// requested languages.
type GenerationResult struct {
	ImageID string `json:"image_id"`

	// PerLanguage holds an entry for every language that reached DONE.
	// Languages that failed are absent here and explained in Errors.
	PerLanguage map[string]LanguageResult `json:"per_language"`

	// StageTrace lists every stage execution in the order it ran.
	StageTrace []StageResult `json:"stage_trace"`

	Errors []string `json:"errors,omitempty"`
}

// Failed reports whether no language produced a result.
func (r GenerationResult) Failed() bool { return len(r.PerLanguage) == 0 }

var languageNames = map[string]string{
	"en": "English",
	"it": "Italian",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"pt": "Portuguese",
	"nl": "Dutch",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"ru": "Russian",
	"ar": "Arabic",
}

// LanguageName maps a language code to the English name used in prompts.
// Unknown codes pass through unchanged so providers still get a usable hint.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
