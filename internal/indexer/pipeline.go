package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"aria/internal/catalog"
	"aria/internal/checksum"
	"aria/internal/media"
	"aria/internal/replaygain"
)

// containerOpener abstracts the media probe so tests can count decodes or
// inject failures.
type containerOpener func(path string) (media.Container, error)

// processFile runs the single-pass dual aggregation over one candidate:
// every packet feeds the content checksum, and packets of the selected
// track feed the loudness analyzer when tag values did not preempt it.
// The returned record is complete but unwritten; any error here is fatal
// for the whole batch.
func (ix *Indexer) processFile(ctx context.Context, sourceID int64, cand Candidate, now time.Time) (catalog.Record, error) {
	meta, err := ix.tagReader.ReadFile(cand.Path)
	if err != nil {
		return catalog.Record{}, err
	}

	container, err := ix.openContainer(cand.Path)
	if err != nil {
		return catalog.Record{}, err
	}
	defer container.Close()

	track := container.DefaultTrack()
	loud, err := NewLoudness(meta.ReplayGain, track.SampleRate, track.Channels)
	if err != nil {
		return catalog.Record{}, fmt.Errorf("%s: %w", cand.Path, err)
	}

	var decoder media.Decoder
	if loud.State() == LoudnessComputing {
		decoder, err = container.NewDecoder(track)
		if err != nil {
			return catalog.Record{}, fmt.Errorf("%s: %w", cand.Path, err)
		}
	}

	acc := checksum.New()
	for {
		if err := ctx.Err(); err != nil {
			return catalog.Record{}, err
		}

		packet, err := container.NextPacket()
		if errors.Is(err, media.ErrEndOfStream) {
			break
		}
		if err != nil {
			return catalog.Record{}, fmt.Errorf("%s: %w", cand.Path, err)
		}

		acc.Write(packet.Data)

		if packet.TrackID != track.ID || loud.State() != LoudnessComputing {
			continue
		}
		pcm, err := decoder.Decode(packet)
		switch {
		case err == nil:
			loud.Add(pcm)
		case media.IsCorrupt(err):
			// Local damage: drop the packet, keep accumulating.
		default:
			// Decoding is unrecoverable but the checksum pass is not.
			loud.Fail()
			ix.log.Warn("loudness analysis failed",
				"path", cand.Path, "error", err)
		}
	}

	stored, err := catalog.ChecksumToStorage(acc.Sum64())
	if err != nil {
		return catalog.Record{}, fmt.Errorf("%s: %w", cand.Path, err)
	}
	duration, err := catalog.DurationToStorage(track.DurationMillis())
	if err != nil {
		return catalog.Record{}, fmt.Errorf("%s: %w", cand.Path, err)
	}

	record := catalog.Record{
		Checksum:    stored,
		SourceID:    sourceID,
		Path:        filepath.Dir(cand.Path),
		Filename:    filepath.Base(cand.Path),
		Artist:      meta.Artist,
		AlbumArtist: meta.AlbumArtist,
		Title:       meta.Title,
		Album:       meta.Album,
		Genre:       meta.Genre,
		TrackNumber: meta.TrackNumber,
		DiscNumber:  meta.DiscNumber,
		Year:        meta.Year,
		DurationMS:  duration,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if gain, peak, ok := loud.Resolve(); ok {
		record.TrackGain = &gain
		record.TrackPeak = &peak
	}
	applyAlbumTags(&record, meta.ReplayGain.AlbumGain, meta.ReplayGain.AlbumPeak)

	return record, nil
}

// applyAlbumTags overlays album-level gain and peak from tags. Album
// aggregates are never computed locally; an unparsable value is treated
// as absent.
func applyAlbumTags(record *catalog.Record, rawGain, rawPeak string) {
	if rawGain != "" {
		if gain, err := replaygain.ParseGain(rawGain); err == nil {
			record.AlbumGain = &gain
		}
	}
	if rawPeak != "" {
		if peak, err := replaygain.ParseGain(rawPeak); err == nil {
			record.AlbumPeak = &peak
		}
	}
}
