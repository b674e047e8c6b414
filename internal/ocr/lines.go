package ocr

import "strings"

// recognizedWord is one word as reported by an OCR engine, tagged with
// the engine's own line identity and vertical position.
type recognizedWord struct {
	Text       string
	Confidence float64 // 0..100 for tesseract, 0..1 for vision; only sign matters here
	Block      int
	Paragraph  int
	Line       int
	Top        int // pixel Y of the word's bounding box
}

type lineAccum struct {
	words []string
	top   int
}

// assembleLines groups words by the engine's (block, paragraph, line)
// identity, joins words within a line by single spaces, and returns the
// lines ordered top-to-bottom by detected vertical position. Words
// without positive confidence are dropped.
func assembleLines(words []recognizedWord) []string {
	type lineKey struct{ block, par, line int }

	order := make([]lineKey, 0, len(words))
	lines := make(map[lineKey]*lineAccum)

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || w.Confidence <= 0 {
			continue
		}
		key := lineKey{w.Block, w.Paragraph, w.Line}
		acc, ok := lines[key]
		if !ok {
			acc = &lineAccum{top: w.Top}
			lines[key] = acc
			order = append(order, key)
		}
		if w.Top < acc.top {
			acc.top = w.Top
		}
		acc.words = append(acc.words, text)
	}

	// Engines report lines in reading order already; a stable sort on
	// the top coordinate fixes the cases where they don't.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && lines[order[j]].top < lines[order[j-1]].top; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	out := make([]string, 0, len(order))
	for _, key := range order {
		out = append(out, strings.Join(lines[key].words, " "))
	}
	return out
}

// averageConfidence returns the mean confidence of positive-confidence
// words, normalized to 0..1 given the engine's scale maximum.
func averageConfidence(words []recognizedWord, scale float64) float64 {
	var sum float64
	var count int
	for _, w := range words {
		if w.Confidence > 0 {
			sum += w.Confidence
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) / scale
}
