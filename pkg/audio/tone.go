// Package audio renders the short alert tone played when the loaded weight
// drops below the empty weight.
package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Tone describes a sine beep with an exponential attack and decay.
type Tone struct {
	Frequency  float64
	SampleRate int
	Duration   time.Duration
	Attack     time.Duration
	Decay      time.Duration
	StartGain  float64
	PeakGain   float64
	FloorGain  float64
}

// AlertTone is the weighbridge beep: 880 Hz, ramping to 0.3 over 10ms and
// fading to 0.0001 by 250ms, stopped at 260ms.
func AlertTone() Tone {
	return Tone{
		Frequency:  880,
		SampleRate: 22050,
		Duration:   260 * time.Millisecond,
		Attack:     10 * time.Millisecond,
		Decay:      250 * time.Millisecond,
		StartGain:  0.001,
		PeakGain:   0.3,
		FloorGain:  0.0001,
	}
}

// Samples returns the tone as signed 16-bit mono PCM.
func (t Tone) Samples() []int16 {
	n := int(t.Duration.Seconds() * float64(t.SampleRate))
	out := make([]int16, n)
	for i := range out {
		sec := float64(i) / float64(t.SampleRate)
		v := t.gainAt(sec) * math.Sin(2*math.Pi*t.Frequency*sec)
		out[i] = int16(math.Round(v * math.MaxInt16))
	}
	return out
}

func (t Tone) gainAt(sec float64) float64 {
	attack, decay := t.Attack.Seconds(), t.Decay.Seconds()
	switch {
	case sec < attack:
		return t.StartGain * math.Pow(t.PeakGain/t.StartGain, sec/attack)
	case sec < decay:
		return t.PeakGain * math.Pow(t.FloorGain/t.PeakGain, (sec-attack)/(decay-attack))
	default:
		return t.FloorGain
	}
}

// WAV encodes the tone as a RIFF/WAVE file.
func (t Tone) WAV() ([]byte, error) {
	if t.SampleRate <= 0 || t.Duration <= 0 {
		return nil, fmt.Errorf("invalid tone: rate=%d duration=%s", t.SampleRate, t.Duration)
	}
	samples := t.Samples()
	const (
		channels      = 1
		bitsPerSample = 16
	)
	dataSize := uint32(len(samples) * bitsPerSample / 8)
	blockAlign := uint16(channels * bitsPerSample / 8)

	buf := new(bytes.Buffer)
	buf.Grow(44 + int(dataSize))
	buf.WriteString("RIFF")
	fields := []any{
		36 + dataSize,
	}
	if err := writeLE(buf, fields...); err != nil {
		return nil, err
	}
	buf.WriteString("WAVEfmt ")
	fields = []any{
		uint32(16), // PCM chunk size
		uint16(1),  // PCM
		uint16(channels),
		uint32(t.SampleRate),
		uint32(t.SampleRate) * uint32(blockAlign),
		blockAlign,
		uint16(bitsPerSample),
	}
	if err := writeLE(buf, fields...); err != nil {
		return nil, err
	}
	buf.WriteString("data")
	if err := writeLE(buf, dataSize, samples); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLE(buf *bytes.Buffer, values ...any) error {
	for _, v := range values {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("encode wav: %w", err)
		}
	}
	return nil
}
