package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// wavPacketFrames is how many PCM frames each demuxed packet carries.
const wavPacketFrames = 4096

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

type wavContainer struct {
	file  *os.File
	track Track

	format     uint16
	bits       int
	blockAlign int

	dataStart int64
	dataLen   int64
	read      int64
	frame     uint64
}

func openWAV(path string) (Container, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	container, err := parseWAV(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return container, nil
}

func parseWAV(file *os.File) (*wavContainer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(file, riff[:]); err != nil {
		return nil, fmt.Errorf("read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}

	container := &wavContainer{file: file}
	var haveFmt, haveData bool

	offset := int64(12)
	for !(haveFmt && haveData) {
		var header [8]byte
		if _, err := file.ReadAt(header[:], offset); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		chunkID := string(header[0:4])
		chunkLen := int64(binary.LittleEndian.Uint32(header[4:8]))
		body := offset + 8

		switch chunkID {
		case "fmt ":
			if err := container.parseFormatChunk(body, chunkLen); err != nil {
				return nil, err
			}
			haveFmt = true
		case "data":
			container.dataStart = body
			container.dataLen = chunkLen
			haveData = true
		}

		// Chunks are word-aligned.
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}

	if !haveFmt {
		return nil, errors.New("missing fmt chunk")
	}
	if !haveData {
		return nil, errors.New("missing data chunk")
	}

	container.track.Frames = uint64(container.dataLen / int64(container.blockAlign))
	return container, nil
}

func (c *wavContainer) parseFormatChunk(offset, length int64) error {
	if length < 16 {
		return errors.New("fmt chunk too short")
	}
	var raw [16]byte
	if _, err := c.file.ReadAt(raw[:], offset); err != nil {
		return fmt.Errorf("read fmt chunk: %w", err)
	}

	c.format = binary.LittleEndian.Uint16(raw[0:2])
	channels := int(binary.LittleEndian.Uint16(raw[2:4]))
	sampleRate := int(binary.LittleEndian.Uint32(raw[4:8]))
	c.blockAlign = int(binary.LittleEndian.Uint16(raw[12:14]))
	c.bits = int(binary.LittleEndian.Uint16(raw[14:16]))

	switch {
	case c.format == wavFormatPCM && c.bits == 16:
	case c.format == wavFormatFloat && c.bits == 32:
	default:
		return fmt.Errorf("unsupported wav encoding (format %d, %d bits)", c.format, c.bits)
	}
	if channels <= 0 {
		return errors.New("invalid channel count")
	}
	if sampleRate <= 0 {
		return errors.New("invalid sample rate")
	}
	if c.blockAlign != channels*c.bits/8 {
		return fmt.Errorf("inconsistent block alignment %d", c.blockAlign)
	}

	c.track = Track{ID: 0, SampleRate: sampleRate, Channels: channels}
	return nil
}

func (c *wavContainer) DefaultTrack() Track {
	return c.track
}

func (c *wavContainer) NextPacket() (Packet, error) {
	remaining := c.dataLen - c.read
	if remaining <= 0 {
		return Packet{}, ErrEndOfStream
	}

	size := int64(wavPacketFrames * c.blockAlign)
	if size > remaining {
		size = remaining
	}

	data := make([]byte, size)
	n, err := c.file.ReadAt(data, c.dataStart+c.read)
	if err != nil && !errors.Is(err, io.EOF) {
		return Packet{}, fmt.Errorf("read packet: %w", err)
	}
	if int64(n) < size {
		// Header promised more audio than the file holds.
		return Packet{}, fmt.Errorf("truncated data chunk: %w", io.ErrUnexpectedEOF)
	}

	packet := Packet{TrackID: c.track.ID, Frame: c.frame, Data: data}
	c.read += size
	c.frame += uint64(size / int64(c.blockAlign))
	return packet, nil
}

func (c *wavContainer) NewDecoder(track Track) (Decoder, error) {
	if track.ID != c.track.ID {
		return nil, fmt.Errorf("no such track %d", track.ID)
	}
	return &wavDecoder{format: c.format, blockAlign: c.blockAlign}, nil
}

func (c *wavContainer) Close() error {
	return c.file.Close()
}

type wavDecoder struct {
	format     uint16
	blockAlign int
}

func (d *wavDecoder) Decode(packet Packet) ([]float32, error) {
	if len(packet.Data) == 0 || len(packet.Data)%d.blockAlign != 0 {
		return nil, &CorruptPacketError{Reason: "payload not frame-aligned"}
	}

	switch d.format {
	case wavFormatPCM:
		samples := make([]float32, len(packet.Data)/2)
		for i := range samples {
			raw := int16(binary.LittleEndian.Uint16(packet.Data[i*2:]))
			samples[i] = float32(raw) / 32768
		}
		return samples, nil
	case wavFormatFloat:
		samples := make([]float32, len(packet.Data)/4)
		for i := range samples {
			bits := binary.LittleEndian.Uint32(packet.Data[i*4:])
			sample := math.Float32frombits(bits)
			if sample != sample || sample > math.MaxFloat32 || sample < -math.MaxFloat32 {
				return nil, &CorruptPacketError{Reason: "non-finite sample"}
			}
			samples[i] = sample
		}
		return samples, nil
	default:
		return nil, fmt.Errorf("unsupported wav encoding %d", d.format)
	}
}
