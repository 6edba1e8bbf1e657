package indexer

import (
	"io/fs"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

// Candidate is one audio file selected for processing.
type Candidate struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// audioTypes maps the extensions the scanner recognizes directly. The
// platform mime database fills in anything not listed here.
var audioTypes = map[string]string{
	".wav":  "audio/wav",
	".wave": "audio/wav",
	".flac": "audio/flac",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wma":  "audio/x-ms-wma",
	".aiff": "audio/aiff",
	".aif":  "audio/aiff",
}

func mediaType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if typ, ok := audioTypes[ext]; ok {
		return typ
	}
	return mime.TypeByExtension(ext)
}

// Scan walks root and collects the audio files that need processing: every
// audio file when force is set, otherwise those modified at or after cutoff.
// Entries that cannot be read or typed are skipped, never fatal; only a
// completely unreadable root fails the scan.
func Scan(root string, force bool, cutoff time.Time) ([]Candidate, error) {
	var out []Candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// A single bad directory entry must not fail the run.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasPrefix(mediaType(path), "audio/") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !force && info.ModTime().Before(cutoff) {
			return nil
		}

		out = append(out, Candidate{Path: path, Size: info.Size(), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
