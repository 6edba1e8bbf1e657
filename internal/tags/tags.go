// Package tags reads container-embedded metadata from audio files.
//
// A file without any tag container is not an error: it yields empty
// metadata. Only I/O failures and malformed tag data propagate.
package tags

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// RawReplayGain carries the unparsed text values of the four ReplayGain
// tag keys, empty when the key is absent.
type RawReplayGain struct {
	TrackGain string
	TrackPeak string
	AlbumGain string
	AlbumPeak string
}

// Metadata is the tag surface the catalog persists.
type Metadata struct {
	Artist      string
	AlbumArtist string
	Title       string
	Album       string
	Genre       string
	TrackNumber *int64
	DiscNumber  *int64
	Year        *int64

	ReplayGain RawReplayGain
}

// Reader extracts metadata from audio files on disk.
type Reader interface {
	ReadFile(path string) (*Metadata, error)
}

// NewReader returns the tag-container backed reader.
func NewReader() Reader {
	return fileReader{}
}

type fileReader struct{}

func (fileReader) ReadFile(path string) (*Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return &Metadata{}, nil
		}
		return nil, fmt.Errorf("read tags from %s: %w", path, err)
	}
	return FromTag(m), nil
}

// FromTag maps a parsed tag container onto the catalog's metadata surface.
func FromTag(m tag.Metadata) *Metadata {
	out := &Metadata{
		Artist:      clean(m.Artist()),
		AlbumArtist: clean(m.AlbumArtist()),
		Title:       clean(m.Title()),
		Album:       clean(m.Album()),
		Genre:       clean(m.Genre()),
		ReplayGain:  replayGainFromRaw(m.Raw()),
	}
	if track, _ := m.Track(); track > 0 {
		out.TrackNumber = ptr(int64(track))
	}
	if disc, _ := m.Disc(); disc > 0 {
		out.DiscNumber = ptr(int64(disc))
	}
	if year := m.Year(); year > 0 {
		out.Year = ptr(int64(year))
	}
	return out
}

func replayGainFromRaw(raw map[string]interface{}) RawReplayGain {
	var rg RawReplayGain
	for key, value := range raw {
		name := key
		var text string
		switch v := value.(type) {
		case string:
			text = v
		case *tag.Comm:
			// ID3v2 user-defined text frames carry the real key in the
			// description field.
			if v.Description != "" {
				name = v.Description
			}
			text = v.Text
		default:
			continue
		}

		switch {
		case matchKey(name, "REPLAYGAIN_TRACK_GAIN"):
			rg.TrackGain = text
		case matchKey(name, "REPLAYGAIN_TRACK_PEAK"):
			rg.TrackPeak = text
		case matchKey(name, "REPLAYGAIN_ALBUM_GAIN"):
			rg.AlbumGain = text
		case matchKey(name, "REPLAYGAIN_ALBUM_PEAK"):
			rg.AlbumPeak = text
		}
	}
	return rg
}

func matchKey(key, want string) bool {
	return strings.Contains(strings.ToUpper(key), want)
}

func clean(value string) string {
	value = strings.TrimSpace(value)
	return strings.ReplaceAll(value, "\x00", "")
}

func ptr(v int64) *int64 {
	return &v
}
