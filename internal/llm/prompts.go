package llm

// analyzeSystemPrompt frames the model as a book-list reader. The text
// it sees is OCR output from the Fable app's shelf views.
const analyzeSystemPrompt = `You are analyzing OCR text extracted from a screenshot of the Fable reading app showing a list of books.

The text follows the app's visual layout: each book entry is a title line, then an author line, then sometimes a metadata line (page count, dates, or a shelf name such as "Finished" or "Want to Read").

TASK:
Extract every book with:
1. "title" - exact as shown
2. "author" - exact as shown; empty string if no author line is visible
3. "reading_status" - one of "read", "currently-reading", "want-to-read", "unknown"; infer from shelf or section names when present
4. "date_started" / "date_finished" - only if a date is visible, exactly as displayed

INSTRUCTIONS:
- OCR output is noisy: ignore page counts, ratings, button labels and navigation text
- If a book entry looks truncated, include it as long as the title is readable
- Respond with strict JSON only, no commentary

OUTPUT FORMAT:
{
  "books": [
    {
      "title": "The Way of Kings",
      "author": "Brandon Sanderson",
      "reading_status": "want-to-read"
    }
  ],
  "confidence": 0.95
}`

// variationsSystemPrompt asks for search-friendly rewrites of a title
// that failed an exact bibliographic lookup.
const variationsSystemPrompt = `You generate alternative search titles for books that were not found in a bibliographic database under their displayed title.

Given a title (and author for context), propose up to 3 variations that are more likely to match a catalog entry:
- strip subtitles after a colon
- remove series annotations like "(The Eta Chronicles Book 1)"
- drop leading articles ("The", "A", "An")

Order the variations from most to least likely. Respond with a strict JSON array of strings only, e.g. ["The Station", "Station"]. Return [] if no sensible variation exists.`
