// Package wavfile loads and saves the PCM buffers that a BufferSource
// node plays, giving the engine a way to populate one from a .wav file
// without hand-rolling RIFF parsing.
package wavfile

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Load decodes r as a WAV file and returns its samples as a
// channel-planar buffer (data[ch][frame]) normalized to [-1, 1],
// alongside the file's sample rate. r must also implement io.Seeker,
// as required by the underlying decoder.
func Load(r io.Reader) (data [][]float64, sampleRate int, err error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, 0, fmt.Errorf("wavfile: reader must support Seek")
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("wavfile: not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavfile: decoding pcm data: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	frames := len(buf.Data) / channels

	maxVal := fullScale(buf.SourceBitDepth)
	planar := make([][]float64, channels)
	for ch := range planar {
		planar[ch] = make([]float64, frames)
	}
	for i, v := range buf.Data {
		ch := i % channels
		frame := i / channels
		planar[ch][frame] = float64(v) / maxVal
	}

	return planar, buf.Format.SampleRate, nil
}

// Save encodes a channel-planar buffer as a 16-bit PCM WAV file.
func Save(w io.WriteSeeker, data [][]float64, sampleRate int) error {
	if len(data) == 0 {
		return fmt.Errorf("wavfile: no channels to write")
	}
	channels := len(data)
	frames := len(data[0])

	enc := wav.NewEncoder(w, sampleRate, 16, channels, 1)

	ints := make([]int, frames*channels)
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			v := data[ch][frame]
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			ints[frame*channels+ch] = int(v * 32767)
		}
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:   ints,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavfile: writing pcm data: %w", err)
	}
	return enc.Close()
}

func fullScale(bitDepth int) float64 {
	switch bitDepth {
	case 8:
		return 128
	case 24:
		return 8388608
	case 32:
		return 2147483648
	default:
		return 32768
	}
}
