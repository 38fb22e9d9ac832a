package audio_test

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/weighbridge/pkg/audio"
)

func TestAlertToneWAVHeader(t *testing.T) {
	tone := audio.AlertTone()
	wav, err := tone.WAV()
	require.NoError(t, err)

	samples := int(tone.Duration.Seconds() * float64(tone.SampleRate))
	require.Len(t, wav, 44+samples*2)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))
	assert.Equal(t, "data", string(wav[36:40]))
	assert.Equal(t, uint32(len(wav)-8), binary.LittleEndian.Uint32(wav[4:8]))
	assert.Equal(t, uint32(tone.SampleRate), binary.LittleEndian.Uint32(wav[24:28]))
	assert.Equal(t, uint32(samples*2), binary.LittleEndian.Uint32(wav[40:44]))
}

func TestAlertToneEnvelope(t *testing.T) {
	samples := audio.AlertTone().Samples()
	peak := 0
	for _, s := range samples {
		if v := int(math.Abs(float64(s))); v > peak {
			peak = v
		}
	}
	maxAmp := float64(math.MaxInt16)
	assert.LessOrEqual(t, peak, int(0.3*maxAmp)+1)
	assert.Greater(t, peak, int(0.25*maxAmp))

	tail := samples[len(samples)-100:]
	for _, s := range tail {
		assert.LessOrEqual(t, math.Abs(float64(s)), 5.0)
	}
}

func TestInvalidTone(t *testing.T) {
	_, err := audio.Tone{SampleRate: 0, Duration: time.Second}.WAV()
	assert.Error(t, err)
}

func TestBeeper(t *testing.T) {
	b := audio.NewBeeper(audio.AlertTone(), nil)
	assert.Equal(t, uint64(0), b.Sequence())
	b.Trigger()
	b.Trigger()
	assert.Equal(t, uint64(2), b.Sequence())
	assert.NotEmpty(t, b.WAV())

	broken := audio.NewBeeper(audio.Tone{}, nil)
	assert.Nil(t, broken.WAV())
}
