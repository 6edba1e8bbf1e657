package tags_test

import (
	"path/filepath"
	"testing"

	"github.com/dhowden/tag"

	"aria/internal/tags"
	"aria/internal/testsupport"
)

// fakeMetadata implements tag.Metadata for mapping tests.
type fakeMetadata struct {
	artist, albumArtist, title, album, genre string
	track, disc, year                        int
	raw                                      map[string]interface{}
}

func (m fakeMetadata) Format() tag.Format              { return tag.VORBIS }
func (m fakeMetadata) FileType() tag.FileType          { return tag.FLAC }
func (m fakeMetadata) Title() string                   { return m.title }
func (m fakeMetadata) Album() string                   { return m.album }
func (m fakeMetadata) Artist() string                  { return m.artist }
func (m fakeMetadata) AlbumArtist() string             { return m.albumArtist }
func (m fakeMetadata) Composer() string                { return "" }
func (m fakeMetadata) Genre() string                   { return m.genre }
func (m fakeMetadata) Year() int                       { return m.year }
func (m fakeMetadata) Track() (int, int)               { return m.track, 0 }
func (m fakeMetadata) Disc() (int, int)                { return m.disc, 0 }
func (m fakeMetadata) Picture() *tag.Picture           { return nil }
func (m fakeMetadata) Lyrics() string                  { return "" }
func (m fakeMetadata) Comment() string                 { return "" }
func (m fakeMetadata) Raw() map[string]interface{}     { return m.raw }

func TestFromTagMapsFields(t *testing.T) {
	meta := tags.FromTag(fakeMetadata{
		artist:      " Nina Simone ",
		albumArtist: "Nina Simone",
		title:       "Sinnerman\x00",
		album:       "Pastel Blues",
		genre:       "Jazz",
		track:       10,
		disc:        1,
		year:        1965,
	})

	if meta.Artist != "Nina Simone" {
		t.Fatalf("artist = %q", meta.Artist)
	}
	if meta.Title != "Sinnerman" {
		t.Fatalf("title = %q", meta.Title)
	}
	if meta.TrackNumber == nil || *meta.TrackNumber != 10 {
		t.Fatalf("track number = %v", meta.TrackNumber)
	}
	if meta.DiscNumber == nil || *meta.DiscNumber != 1 {
		t.Fatalf("disc number = %v", meta.DiscNumber)
	}
	if meta.Year == nil || *meta.Year != 1965 {
		t.Fatalf("year = %v", meta.Year)
	}
}

func TestFromTagLeavesAbsentNumbersNil(t *testing.T) {
	meta := tags.FromTag(fakeMetadata{title: "Untitled"})

	if meta.TrackNumber != nil || meta.DiscNumber != nil || meta.Year != nil {
		t.Fatalf("expected nil numeric fields, got %v/%v/%v",
			meta.TrackNumber, meta.DiscNumber, meta.Year)
	}
}

func TestFromTagExtractsReplayGainKeys(t *testing.T) {
	meta := tags.FromTag(fakeMetadata{
		raw: map[string]interface{}{
			"REPLAYGAIN_TRACK_GAIN": "-8.97 dB",
			"replaygain_track_peak": "0.988751",
			"TXXX": &tag.Comm{
				Description: "REPLAYGAIN_ALBUM_GAIN",
				Text:        "-9.22 dB",
			},
			"ENCODER": "reference libFLAC",
		},
	})

	rg := meta.ReplayGain
	if rg.TrackGain != "-8.97 dB" {
		t.Fatalf("track gain = %q", rg.TrackGain)
	}
	if rg.TrackPeak != "0.988751" {
		t.Fatalf("track peak = %q", rg.TrackPeak)
	}
	if rg.AlbumGain != "-9.22 dB" {
		t.Fatalf("album gain = %q", rg.AlbumGain)
	}
	if rg.AlbumPeak != "" {
		t.Fatalf("album peak = %q, want empty", rg.AlbumPeak)
	}
}

func TestReadFileWithoutTagContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.wav")
	testsupport.WriteTone(t, path, 44100, 440, 0.2)

	meta, err := tags.NewReader().ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if meta.Artist != "" || meta.Title != "" || meta.ReplayGain.TrackGain != "" {
		t.Fatalf("expected empty metadata, got %+v", meta)
	}
}

func TestReadFileMissingFile(t *testing.T) {
	if _, err := tags.NewReader().ReadFile(filepath.Join(t.TempDir(), "absent.flac")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
