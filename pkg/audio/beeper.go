package audio

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Beeper is a fire-and-forget alarm. Each Trigger bumps a sequence number the
// page polls for; the encoded tone is served separately via WAV.
type Beeper struct {
	tone   Tone
	seq    atomic.Uint64
	logger *zap.Logger

	once sync.Once
	wav  []byte
}

// NewBeeper builds a beeper for the given tone.
func NewBeeper(tone Tone, logger *zap.Logger) *Beeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Beeper{tone: tone, logger: logger}
}

// Trigger records one alarm.
func (b *Beeper) Trigger() {
	n := b.seq.Add(1)
	b.logger.Debug("alarm triggered", zap.Uint64("seq", n))
}

// Sequence returns how many alarms have fired so far.
func (b *Beeper) Sequence() uint64 {
	return b.seq.Load()
}

// WAV returns the encoded tone, or nil if it could not be rendered.
func (b *Beeper) WAV() []byte {
	b.once.Do(func() {
		wav, err := b.tone.WAV()
		if err != nil {
			b.logger.Warn("alarm tone unavailable", zap.Error(err))
			return
		}
		b.wav = wav
	})
	return b.wav
}
