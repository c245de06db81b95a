package googlebooks

import "github.com/lepinkainen/bookfinder/internal/book"

// Response matches the Google Books volumes search response.
type Response struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is a single search hit.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo holds the fields the search screen uses. Everything is optional.
type VolumeInfo struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	ImageLinks  struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
}

// Record converts the volume into a book.Record.
func (v Volume) Record() book.Record {
	info := v.VolumeInfo
	return book.New(v.ID, info.Title, info.Authors, info.Description, info.ImageLinks.Thumbnail)
}

// Records converts every item of the response, keeping order.
func (r Response) Records() []book.Record {
	records := make([]book.Record, 0, len(r.Items))
	for _, item := range r.Items {
		records = append(records, item.Record())
	}
	return records
}
