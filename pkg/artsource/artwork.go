// Package artsource decides when to fetch a new photo from the origin, turns it into
// the current artwork and tells the host when to ask again.
package artsource

import "strings"

// PhotoRecord is one photo as described by the origin.
type PhotoRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Empty reports whether the record carries nothing that could be displayed.
func (p *PhotoRecord) Empty() bool {
	return p == nil || (strings.TrimSpace(p.ID) == "" && strings.TrimSpace(p.URL) == "")
}

// Artwork is the descriptor handed to publishers.
type Artwork struct {
	Title    string `json:"title"`
	Byline   string `json:"byline"`
	ImageURI string `json:"image_uri"`
	Token    string `json:"token"`
	ViewURI  string `json:"view_uri"`
}

// NewArtwork maps a photo record onto an artwork, field for field.
func NewArtwork(p PhotoRecord) Artwork {
	return Artwork{
		Title:    p.Name,
		Byline:   p.Author,
		ImageURI: p.URL,
		Token:    p.ID,
		ViewURI:  p.Source,
	}
}
