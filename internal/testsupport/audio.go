package testsupport

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// WriteWAV encodes interleaved samples as a 16-bit PCM RIFF/WAVE file.
func WriteWAV(t testing.TB, path string, sampleRate, channels int, samples []float32) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	blockAlign := channels * 2
	dataLen := len(samples) * 2
	buf := make([]byte, 44+dataLen)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, sample := range samples {
		scaled := float64(sample) * 32767
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(int16(scaled)))
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTone writes a stereo sine tone of the given frequency and length.
func WriteTone(t testing.TB, path string, sampleRate int, freqHz float64, seconds float64) {
	t.Helper()

	frames := int(float64(sampleRate) * seconds)
	samples := make([]float32, frames*2)
	for i := 0; i < frames; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*freqHz*float64(i)/float64(sampleRate)))
		samples[i*2] = v
		samples[i*2+1] = v
	}
	WriteWAV(t, path, sampleRate, 2, samples)
}

// WriteSilence writes a stereo all-zero file of the given length.
func WriteSilence(t testing.TB, path string, sampleRate int, seconds float64) {
	t.Helper()

	frames := int(float64(sampleRate) * seconds)
	WriteWAV(t, path, sampleRate, 2, make([]float32, frames*2))
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
