// Package book holds the book record shown in search results and its
// normalization policy for values coming from external sources.
package book

const (
	// NoAuthorPlaceholder is used when a source lists no authors.
	NoAuthorPlaceholder = "No author to display"
	// NoDescriptionPlaceholder is used when a source has no description.
	NoDescriptionPlaceholder = "No description available"
)

// Record is a single book in a result list. Records are treated as
// immutable once built; share them, don't modify them.
type Record struct {
	BookID      string   `json:"bookId" yaml:"bookId"`
	Title       string   `json:"title" yaml:"title"`
	Authors     []string `json:"authors" yaml:"authors"`
	Description string   `json:"description" yaml:"description"`
	Image       string   `json:"image" yaml:"image"`
}

// New builds a Record, filling the placeholder defaults for missing authors
// and description. Every source mapping goes through here.
func New(bookID, title string, authors []string, description, image string) Record {
	a := make([]string, 0, len(authors))
	for _, author := range authors {
		if author != "" {
			a = append(a, author)
		}
	}
	if len(a) == 0 {
		a = []string{NoAuthorPlaceholder}
	}

	if description == "" {
		description = NoDescriptionPlaceholder
	}

	return Record{
		BookID:      bookID,
		Title:       title,
		Authors:     a,
		Description: description,
		Image:       image,
	}
}

// Find returns the record with the given id from records.
func Find(records []Record, bookID string) (Record, bool) {
	for _, r := range records {
		if r.BookID == bookID {
			return r, true
		}
	}
	return Record{}, false
}

// Clone returns a deep copy of records; the copy shares no slices with its source.
func Clone(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	for i, r := range records {
		r.Authors = append([]string(nil), r.Authors...)
		out[i] = r
	}
	return out
}
