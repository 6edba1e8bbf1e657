package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrEndOfStream signals that a container has no more packets. It is the
// normal termination of a packet loop, not a failure.
var ErrEndOfStream = errors.New("end of stream")

// CorruptPacketError marks a packet whose payload could not be decoded but
// whose damage is local: the caller may skip it and continue.
type CorruptPacketError struct {
	Reason string
}

func (e *CorruptPacketError) Error() string {
	return "corrupt packet: " + e.Reason
}

// IsCorrupt reports whether err is a recoverable per-packet decode error.
func IsCorrupt(err error) bool {
	var corrupt *CorruptPacketError
	return errors.As(err, &corrupt)
}

// Track describes one decodable stream within a container.
type Track struct {
	ID         int
	SampleRate int
	Channels   int
	// Frames is the total PCM frame count when the container declares it.
	Frames uint64
}

// Duration returns the track length derived from its frame count.
func (t Track) Duration() time.Duration {
	if t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(t.Frames) * time.Second / time.Duration(t.SampleRate)
}

// DurationMillis returns the track length in whole milliseconds.
func (t Track) DurationMillis() uint64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return t.Frames * 1000 / uint64(t.SampleRate)
}

// Packet is one timestamped chunk of encoded audio belonging to a track.
type Packet struct {
	TrackID int
	// Frame is the position of the packet's first PCM frame within the track.
	Frame uint64
	Data  []byte
}

// Decoder turns packets into interleaved float32 samples in [-1, 1].
type Decoder interface {
	Decode(packet Packet) ([]float32, error)
}

// Container exposes a demuxed audio file.
type Container interface {
	// DefaultTrack returns the track the pipeline analyzes.
	DefaultTrack() Track
	// NextPacket yields packets in decode order until ErrEndOfStream.
	NextPacket() (Packet, error)
	// NewDecoder constructs a decoder for the given track.
	NewDecoder(track Track) (Decoder, error)
	Close() error
}

// Open probes a file by extension and returns its container.
func Open(path string) (Container, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return openWAV(path)
	default:
		return nil, fmt.Errorf("unsupported container format %q", filepath.Ext(path))
	}
}
