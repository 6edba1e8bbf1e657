package catalog

import "time"

// Record describes one uniquely-hashed audio item.
//
// Checksum holds the storage form of the content checksum; use
// ChecksumFromStorage to recover the unsigned value. Optional text fields use
// the empty string for NULL; optional numeric fields use nil. The JSON form
// is the mirror exchange format.
type Record struct {
	ID       int64  `json:"id,omitempty"`
	Checksum int64  `json:"checksum"`
	SourceID int64  `json:"source_id"`
	Path     string `json:"path"`
	Filename string `json:"filename"`

	Artist      string `json:"artist,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	Title       string `json:"title,omitempty"`
	Album       string `json:"album,omitempty"`
	Genre       string `json:"genre,omitempty"`
	TrackNumber *int64 `json:"track_number,omitempty"`
	DiscNumber  *int64 `json:"disc_number,omitempty"`
	Year        *int64 `json:"year,omitempty"`
	DurationMS  int64  `json:"duration_ms"`

	TrackGain *float64 `json:"track_gain,omitempty"`
	TrackPeak *float64 `json:"track_peak,omitempty"`
	AlbumGain *float64 `json:"album_gain,omitempty"`
	AlbumPeak *float64 `json:"album_peak,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayTitle returns the tagged title, falling back to the filename.
func (r *Record) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Filename
}

// SourceStats aggregates catalog contents for one source.
type SourceStats struct {
	Records     int
	DurationMS  int64
	LastIndexed *time.Time
}
