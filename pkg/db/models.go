package db

import "time"

// Book is a logical work spanning one or more volumes. A translation is a
// separate Book whose SourceID names the original.
type Book struct {
	ID          string
	Title       string
	Author      string
	SourceID    string
	VolumeCount int // highest volume number ever imported, not a count of rows
	ImportedAt  *time.Time
}

// Volume is a numbered subdivision of a Book, keyed by (BookID, Volume).
type Volume struct {
	BookID     string
	Volume     int
	TotalPages int
	ImportedAt *time.Time
}

// Page is the unit of stored text, keyed by (BookID, Volume, Page).
// Text holds a JSON array of paragraph strings.
type Page struct {
	BookID string
	Volume int
	Page   int
	Text   string
}
