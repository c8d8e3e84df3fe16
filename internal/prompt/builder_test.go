package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"alttext/internal/config"
)

func TestBuildSubstitutesRecognizedPlaceholders(t *testing.T) {
	t.Parallel()

	template := "Write alt text in {LANGUAGE}. Context: {CONTEXT}"
	out, err := Build(config.StageProcessing, template, map[string]string{
		VarLanguage: "Italian",
		VarContext:  "a cycling blog",
	})

	require.NoError(t, err)
	require.Equal(t, "Write alt text in Italian. Context: a cycling blog", out)
}

func TestBuildLeavesUnrecognizedPlaceholdersVerbatim(t *testing.T) {
	t.Parallel()

	template := "Language: {LANGUAGE}. Tone: {TONE}."
	out, err := Build(config.StageProcessing, template, map[string]string{
		VarLanguage: "English",
	})

	require.NoError(t, err)
	require.Equal(t, "Language: English. Tone: {TONE}.", out)
}

func TestBuildIsIdempotent(t *testing.T) {
	t.Parallel()

	template := "{TARGET_LANGUAGE}: {ALT_TEXT}"
	vars := map[string]string{
		VarTargetLanguage: "German",
		VarAltText:        "A red bicycle",
	}

	first, err := Build(config.StageTranslation, template, vars)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Build(config.StageTranslation, template, vars)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestBuildRejectsEmptyTemplate(t *testing.T) {
	t.Parallel()

	for _, template := range []string{"", "   ", "\n\t  \n"} {
		_, err := Build(config.StageVision, template, nil)
		require.Error(t, err)

		var templateErr *TemplateError
		require.ErrorAs(t, err, &templateErr)
		require.Equal(t, config.StageVision, templateErr.Stage)
	}
}

func TestLoadLibrary(t *testing.T) {
	t.Parallel()

	lib, err := LoadLibrary()
	require.NoError(t, err)

	for _, stage := range []config.StageName{config.StageVision, config.StageProcessing, config.StageTranslation} {
		require.NotEmpty(t, lib.Stage(stage), "stage %s", stage)
	}
	require.NotEmpty(t, lib.SingleStep())
	require.NotEmpty(t, lib.GEOBoost())

	// Templates reference only recognized placeholders.
	require.Contains(t, lib.Stage(config.StageVision), "{CONTEXT}")
	require.Contains(t, lib.Stage(config.StageProcessing), "{DESCRIPTION}")
	require.Contains(t, lib.Stage(config.StageProcessing), "{LANGUAGE}")
	require.Contains(t, lib.Stage(config.StageTranslation), "{TARGET_LANGUAGE}")
	require.Contains(t, lib.Stage(config.StageTranslation), "{ALT_TEXT}")
	require.Contains(t, lib.SingleStep(), "{LANGUAGE}")
}
