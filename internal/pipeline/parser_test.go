package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrictJSON(t *testing.T) {
	out := ParseStageOutput(`{"image_type":"informative","image_description":"a red bicycle"}`)

	require.True(t, out.OK)
	assert.Equal(t, TypeInformative, out.Parsed.ImageType)
	assert.Equal(t, "a red bicycle", out.Parsed.Description)
	assert.Nil(t, out.Parsed.AltText)
}

func TestParseFencedBlock(t *testing.T) {
	raw := "```json\n{\"alt_text\":\"A red bicycle\",\"reasoning\":\"concise\"}\n```"
	out := ParseStageOutput(raw)

	require.True(t, out.OK)
	require.NotNil(t, out.Parsed.AltText)
	assert.Equal(t, "A red bicycle", *out.Parsed.AltText)
	assert.Equal(t, raw, out.Raw)
}

func TestParseJSONEmbeddedInProse(t *testing.T) {
	raw := `Sure, here is the result: {"image_type":"Informative","image_description":"a dog"} hope that helps!`
	out := ParseStageOutput(raw)

	require.True(t, out.OK)
	assert.Equal(t, TypeInformative, out.Parsed.ImageType, "image type is normalized to lower case")
}

func TestParseRepairsDamagedJSON(t *testing.T) {
	// Trailing comma and single quotes, the usual provider damage.
	out := ParseStageOutput(`{'alt_text': 'A red bicycle',}`)

	require.True(t, out.OK)
	require.NotNil(t, out.Parsed.AltText)
	assert.Equal(t, "A red bicycle", *out.Parsed.AltText)
}

func TestParseBracesInsideStrings(t *testing.T) {
	out := ParseStageOutput(`prefix {"alt_text":"curly {brace} inside"} suffix`)

	require.True(t, out.OK)
	assert.Equal(t, "curly {brace} inside", *out.Parsed.AltText)
}

func TestParseFailurePreservesRaw(t *testing.T) {
	raw := "I cannot describe this image."
	out := ParseStageOutput(raw)

	assert.False(t, out.OK)
	assert.Equal(t, raw, out.Raw)
}

func TestParseRejectsEmptyAndSchemalessJSON(t *testing.T) {
	assert.False(t, ParseStageOutput("").OK)
	assert.False(t, ParseStageOutput("   \n\t").OK)
	assert.False(t, ParseStageOutput(`{"unrelated":"field"}`).OK)
}

func TestParseExplicitEmptyAltText(t *testing.T) {
	out := ParseStageOutput(`{"image_type":"decorative","alt_text":""}`)

	require.True(t, out.OK)
	require.NotNil(t, out.Parsed.AltText, "empty alt text is present, not missing")
	assert.Equal(t, "", *out.Parsed.AltText)
}
