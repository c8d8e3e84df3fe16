package prompt

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"alttext/internal/config"
)

//go:embed templates/*.md templates/templates.yaml
var templateFS embed.FS

type manifest struct {
	Stages     map[string]string `yaml:"stages"`
	SingleStep string            `yaml:"single_step"`
	GEOBoost   string            `yaml:"geo_boost"`
}

// Library holds the loaded stage templates.
type Library struct {
	stages     map[config.StageName]string
	singleStep string
	geoBoost   string
}

// LoadLibrary reads the embedded template pack. It fails when the manifest
// references a missing file or maps a stage to an empty template.
func LoadLibrary() (*Library, error) {
	raw, err := templateFS.ReadFile("templates/templates.yaml")
	if err != nil {
		return nil, fmt.Errorf("read template manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse template manifest: %w", err)
	}

	lib := &Library{stages: make(map[config.StageName]string, len(m.Stages))}

	for stage, file := range m.Stages {
		content, err := readTemplate(file)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		lib.stages[config.StageName(stage)] = content
	}

	if lib.singleStep, err = readTemplate(m.SingleStep); err != nil {
		return nil, fmt.Errorf("single_step: %w", err)
	}
	if lib.geoBoost, err = readTemplate(m.GEOBoost); err != nil {
		return nil, fmt.Errorf("geo_boost: %w", err)
	}

	for _, stage := range []config.StageName{config.StageVision, config.StageProcessing, config.StageTranslation} {
		if _, ok := lib.stages[stage]; !ok {
			return nil, fmt.Errorf("template manifest is missing stage %s", stage)
		}
	}

	return lib, nil
}

func readTemplate(file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("template file not set in manifest")
	}
	content, err := templateFS.ReadFile("templates/" + file)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", file, err)
	}
	return string(content), nil
}

// Stage returns the template for a pipeline stage.
func (l *Library) Stage(stage config.StageName) string {
	return l.stages[stage]
}

// SingleStep returns the combined vision+processing template used when
// two-step processing is disabled.
func (l *Library) SingleStep() string {
	return l.singleStep
}

// GEOBoost returns the search-discoverability instruction block appended to
// the processing prompt when the geo_boost option is enabled.
func (l *Library) GEOBoost() string {
	return l.geoBoost
}
