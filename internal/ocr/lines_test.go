package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleLinesGroupsByEngineLine(t *testing.T) {
	words := []recognizedWord{
		{Text: "Project", Confidence: 90, Block: 0, Paragraph: 0, Line: 0, Top: 10},
		{Text: "Hail", Confidence: 88, Block: 0, Paragraph: 0, Line: 0, Top: 10},
		{Text: "Mary", Confidence: 91, Block: 0, Paragraph: 0, Line: 0, Top: 11},
		{Text: "Andy", Confidence: 85, Block: 0, Paragraph: 0, Line: 1, Top: 42},
		{Text: "Weir", Confidence: 87, Block: 0, Paragraph: 0, Line: 1, Top: 42},
	}

	lines := assembleLines(words)
	assert.Equal(t, []string{"Project Hail Mary", "Andy Weir"}, lines)
}

func TestAssembleLinesDropsNonPositiveConfidence(t *testing.T) {
	words := []recognizedWord{
		{Text: "keep", Confidence: 50, Line: 0, Top: 5},
		{Text: "drop", Confidence: 0, Line: 0, Top: 5},
		{Text: "also-drop", Confidence: -1, Line: 0, Top: 5},
		{Text: "   ", Confidence: 80, Line: 0, Top: 5},
	}

	lines := assembleLines(words)
	assert.Equal(t, []string{"keep"}, lines)
}

func TestAssembleLinesOrdersByVerticalPosition(t *testing.T) {
	// The engine reported the lower line first.
	words := []recognizedWord{
		{Text: "second", Confidence: 80, Line: 5, Top: 100},
		{Text: "first", Confidence: 80, Line: 2, Top: 20},
	}

	lines := assembleLines(words)
	assert.Equal(t, []string{"first", "second"}, lines)
}

func TestAssembleLinesSeparateBlocks(t *testing.T) {
	// Same line index in different blocks must not merge.
	words := []recognizedWord{
		{Text: "alpha", Confidence: 80, Block: 0, Line: 0, Top: 10},
		{Text: "beta", Confidence: 80, Block: 1, Line: 0, Top: 50},
	}

	lines := assembleLines(words)
	assert.Equal(t, []string{"alpha", "beta"}, lines)
}

func TestAssembleLinesEmptyInput(t *testing.T) {
	assert.Empty(t, assembleLines(nil))
}

func TestAverageConfidence(t *testing.T) {
	words := []recognizedWord{
		{Text: "a", Confidence: 80},
		{Text: "b", Confidence: 60},
		{Text: "c", Confidence: 0},
	}

	assert.InDelta(t, 0.70, averageConfidence(words, 100), 0.001)
	assert.Equal(t, float64(0), averageConfidence(nil, 100))
}
