package otoplay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// pcm is interleaved stereo signed 16-bit little-endian audio.
type pcm struct {
	data       []byte
	sampleRate int
}

// decode turns an mp3 or wav asset into stereo PCM, chosen by extension.
func decode(name string, raw []byte) (pcm, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".mp3":
		return decodeMP3(raw)
	case ".wav":
		return decodeWAV(raw)
	default:
		return pcm{}, fmt.Errorf("otoplay: unsupported asset %q", name)
	}
}

func decodeMP3(raw []byte) (pcm, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(raw))
	if err != nil {
		return pcm{}, err
	}
	data, err := io.ReadAll(d)
	if err != nil {
		return pcm{}, err
	}
	return pcm{data: data, sampleRate: d.SampleRate()}, nil
}

func decodeWAV(raw []byte) (pcm, error) {
	d := wav.NewDecoder(bytes.NewReader(raw))
	if !d.IsValidFile() {
		return pcm{}, errors.New("otoplay: invalid wav")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return pcm{}, err
	}
	channels := buf.Format.NumChannels
	if channels <= 0 {
		return pcm{}, errors.New("otoplay: wav without channels")
	}
	shift := int(d.BitDepth) - 16
	frames := len(buf.Data) / channels
	out := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		l := to16(buf.Data[i*channels], shift, d.BitDepth)
		r := l
		if channels > 1 {
			r = to16(buf.Data[i*channels+1], shift, d.BitDepth)
		}
		binary.LittleEndian.PutUint16(out[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(r))
	}
	return pcm{data: out, sampleRate: buf.Format.SampleRate}, nil
}

func to16(v, shift int, depth uint16) int16 {
	if depth == 8 {
		return int16((v - 128) << 8)
	}
	if shift > 0 {
		return int16(v >> shift)
	}
	return int16(v << -shift)
}

// resample converts p to rate by nearest-frame selection.
func resample(p pcm, rate int) pcm {
	if p.sampleRate == rate || p.sampleRate <= 0 || rate <= 0 {
		return p
	}
	in := len(p.data) / 4
	out := int(int64(in) * int64(rate) / int64(p.sampleRate))
	data := make([]byte, out*4)
	for i := 0; i < out; i++ {
		src := int(int64(i) * int64(p.sampleRate) / int64(rate))
		if src >= in {
			src = in - 1
		}
		copy(data[i*4:i*4+4], p.data[src*4:src*4+4])
	}
	return pcm{data: data, sampleRate: rate}
}
