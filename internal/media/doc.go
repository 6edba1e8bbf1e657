// Package media abstracts audio containers for the indexing pipeline.
//
// A Container demuxes a file into timestamped packets and hands out decoders
// that turn packets into interleaved float32 samples. The error classes here
// carry the distinctions the pipeline depends on: ErrEndOfStream terminates a
// packet loop normally, and CorruptPacketError marks a packet that may be
// skipped without abandoning the file.
//
// A PCM WAV implementation ships with the repository; other formats plug in
// behind the same interface.
package media
