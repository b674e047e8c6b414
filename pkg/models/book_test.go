package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAuthor(t *testing.T) {
	assert.True(t, (&BookRecord{Author: "Andy Weir"}).HasAuthor())
	assert.False(t, (&BookRecord{Author: ""}).HasAuthor())
	assert.False(t, (&BookRecord{Author: "unknown"}).HasAuthor())
	assert.False(t, (&BookRecord{Author: "Unknown"}).HasAuthor())
	assert.False(t, (&BookRecord{Author: " N/A "}).HasAuthor())
}

func TestPrimaryAuthor(t *testing.T) {
	assert.Equal(t, "Olga Tokarczuk", PrimaryAuthor("Olga Tokarczuk, Jennifer Croft (Translator)"))
	assert.Equal(t, "Andy Weir", PrimaryAuthor("Andy Weir"))
	assert.Equal(t, "Homer", PrimaryAuthor("Homer (Translator"))
	assert.Equal(t, "A", PrimaryAuthor("A, B, C"))
}

func TestSearchAuthor(t *testing.T) {
	assert.Equal(t, "", (&BookRecord{Author: "unknown"}).SearchAuthor())
	assert.Equal(t, "Olga Tokarczuk", (&BookRecord{Author: "Olga Tokarczuk, Jennifer Croft (Translator)"}).SearchAuthor())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusRead))
	assert.True(t, ValidStatus(StatusCurrentlyReading))
	assert.True(t, ValidStatus(StatusWantToRead))
	assert.True(t, ValidStatus(StatusUnknown))
	assert.False(t, ValidStatus("finished"))
	assert.False(t, ValidStatus(""))
}

func TestNormalizeISBN(t *testing.T) {
	assert.Equal(t, "9780593135204", NormalizeISBN("978-0-593-13520-4"))
	assert.Equal(t, "0140449131", NormalizeISBN("0 14 044913 1"))
}

func TestValidISBN(t *testing.T) {
	assert.True(t, ValidISBN("978-0-593-13520-4"))
	assert.True(t, ValidISBN("0-306-40615-2"))
	assert.True(t, ValidISBN("080442957X"))
	assert.False(t, ValidISBN("9780593135205"))
	assert.False(t, ValidISBN("0306406153"))
	assert.False(t, ValidISBN("12345"))
	assert.False(t, ValidISBN("abcdefghij"))
}
