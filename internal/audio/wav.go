// Package audio holds the waveform side of the renderer: a minimal PCM WAV
// codec, a linear resampler, and the narration/music mixer with ducking,
// fades and peak normalization.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Buffer is a mono waveform: float64 samples in [-1, 1] at a fixed rate.
// Stereo sources are downmixed on read.
type Buffer struct {
	Samples []float64
	Rate    int
}

// Seconds is the buffer length in seconds.
func (b *Buffer) Seconds() float64 {
	if b.Rate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.Rate)
}

// ReadWAV decodes a 16-bit PCM WAV file into a mono buffer, averaging
// channels for multi-channel sources.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()
	return DecodeWAV(f)
}

// DecodeWAV decodes 16-bit PCM WAV data from a reader.
func DecodeWAV(r io.Reader) (*Buffer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		channels   int
		sampleRate int
		bitDepth   int
		haveFormat bool
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("wav has no data chunk")
			}
			return nil, fmt.Errorf("read wav chunk: %w", err)
		}
		chunkID := string(chunk[0:4])
		chunkSize := int(binary.LittleEndian.Uint32(chunk[4:8]))

		switch chunkID {
		case "fmt ":
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtData); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(fmtData[0:2])
			if format != 1 {
				return nil, fmt.Errorf("unsupported wav format %d (PCM only)", format)
			}
			channels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			if bitDepth != 16 {
				return nil, fmt.Errorf("unsupported wav bit depth %d (16-bit only)", bitDepth)
			}
			if channels < 1 {
				return nil, fmt.Errorf("wav has %d channels", channels)
			}
			haveFormat = true

		case "data":
			if !haveFormat {
				return nil, fmt.Errorf("wav data chunk precedes fmt chunk")
			}
			raw := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
			return decodePCM16(raw, channels, sampleRate), nil

		default:
			// Skip unknown chunks (LIST, fact, ...). Chunks are even-aligned.
			skip := int64(chunkSize)
			if chunkSize%2 != 0 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("skip %s chunk: %w", chunkID, err)
			}
		}
	}
}

func decodePCM16(raw []byte, channels, rate int) *Buffer {
	frameBytes := channels * 2
	frames := len(raw) / frameBytes
	samples := make([]float64, frames)

	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < channels; ch++ {
			off := i*frameBytes + ch*2
			v := int16(binary.LittleEndian.Uint16(raw[off : off+2]))
			sum += float64(v) / 32768.0
		}
		samples[i] = sum / float64(channels)
	}
	return &Buffer{Samples: samples, Rate: rate}
}

// WriteWAV encodes the buffer as 16-bit PCM mono WAV. Samples are clipped to
// [-1, 1] before quantization.
func WriteWAV(path string, buf *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	defer f.Close()

	if err := EncodeWAV(f, buf); err != nil {
		return err
	}
	return f.Sync()
}

// wavWriter accumulates the first write error so WAV assembly doesn't need
// an error check per field.
type wavWriter struct {
	w   io.Writer
	err error
}

func (ww *wavWriter) bytes(p []byte) {
	if ww.err != nil {
		return
	}
	_, ww.err = ww.w.Write(p)
}

func (ww *wavWriter) u16(v uint16) {
	if ww.err != nil {
		return
	}
	ww.err = binary.Write(ww.w, binary.LittleEndian, v)
}

func (ww *wavWriter) u32(v uint32) {
	if ww.err != nil {
		return
	}
	ww.err = binary.Write(ww.w, binary.LittleEndian, v)
}

// EncodeWAV writes the buffer to w as 16-bit PCM mono.
func EncodeWAV(w io.Writer, buf *Buffer) error {
	dataSize := uint32(len(buf.Samples) * 2)
	ww := &wavWriter{w: w}

	ww.bytes([]byte("RIFF"))
	ww.u32(36 + dataSize)
	ww.bytes([]byte("WAVE"))

	ww.bytes([]byte("fmt "))
	ww.u32(16)
	ww.u16(1) // PCM
	ww.u16(1) // mono
	ww.u32(uint32(buf.Rate))
	ww.u32(uint32(buf.Rate * 2)) // byte rate
	ww.u16(2)                    // block align
	ww.u16(16)                   // bits per sample

	ww.bytes([]byte("data"))
	ww.u32(dataSize)

	pcm := make([]byte, len(buf.Samples)*2)
	for i, s := range buf.Samples {
		v := int16(math.Round(clampSample(s) * 32767.0))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	ww.bytes(pcm)

	if ww.err != nil {
		return fmt.Errorf("write wav: %w", ww.err)
	}
	return nil
}

func clampSample(s float64) float64 {
	if s < -1 {
		return -1
	}
	if s > 1 {
		return 1
	}
	return s
}
