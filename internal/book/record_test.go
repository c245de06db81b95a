package book

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNewAppliesPlaceholders(t *testing.T) {
	r := New("abc", "Dune", nil, "", "")

	assert.Equal(t, "abc", r.BookID)
	assert.Equal(t, "Dune", r.Title)
	assert.Equal(t, []string{NoAuthorPlaceholder}, r.Authors)
	assert.Equal(t, NoDescriptionPlaceholder, r.Description)
	assert.Equal(t, "", r.Image)
}

func TestNewKeepsProvidedValues(t *testing.T) {
	r := New("abc", "Dune", []string{"Frank Herbert"}, "Spice.", "http://img/dune.jpg")

	assert.Equal(t, []string{"Frank Herbert"}, r.Authors)
	assert.Equal(t, "Spice.", r.Description)
	assert.Equal(t, "http://img/dune.jpg", r.Image)
}

func TestNewDropsBlankAuthorEntries(t *testing.T) {
	r := New("x", "T", []string{"", ""}, "d", "")
	assert.Equal(t, []string{NoAuthorPlaceholder}, r.Authors)

	r = New("x", "T", []string{"", "Ursula K. Le Guin"}, "d", "")
	assert.Equal(t, []string{"Ursula K. Le Guin"}, r.Authors)
}

func TestNewDoesNotAliasInput(t *testing.T) {
	authors := []string{"A"}
	r := New("x", "T", authors, "d", "")
	authors[0] = "changed"

	assert.Equal(t, []string{"A"}, r.Authors)
}

func TestFind(t *testing.T) {
	records := []Record{
		New("a", "First", nil, "", ""),
		New("b", "Second", nil, "", ""),
	}

	got, ok := Find(records, "b")
	assert.True(t, ok)
	assert.Equal(t, "Second", got.Title)

	_, ok = Find(records, "missing")
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	assert.Zero(t, Clone(nil))

	records := []Record{New("a", "First", []string{"X"}, "", "")}
	cloned := Clone(records)
	cloned[0].Authors[0] = "Y"
	cloned[0].Title = "Other"

	assert.Equal(t, "X", records[0].Authors[0])
	assert.Equal(t, "First", records[0].Title)
}
