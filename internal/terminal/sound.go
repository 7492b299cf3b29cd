package terminal

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chimeBase     = 660.0
	chimeStep     = 110.0
	chimeMaxSteps = 6
	chimeLength   = 60 * time.Millisecond
)

// Sound plays the swap chime. A nil or uninitialised Sound is silent.
type Sound struct {
	ok bool
}

// NewSound opens the speaker. On failure the returned Sound is silent and the
// error is reported so the caller can log it; the client keeps running.
func NewSound() (*Sound, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &Sound{}, err
	}
	return &Sound{ok: true}, nil
}

// chimeFreq rises with the cascade depth, capped so long chains stay audible.
func chimeFreq(cascades int) float64 {
	steps := cascades - 1
	if steps < 0 {
		steps = 0
	}
	if steps > chimeMaxSteps {
		steps = chimeMaxSteps
	}
	return chimeBase + chimeStep*float64(steps)
}

// Chime plays a short sine tone for an accepted swap.
func (s *Sound) Chime(cascades int) {
	if s == nil || !s.ok {
		return
	}
	sine, err := generators.SineTone(sampleRate, chimeFreq(cascades))
	if err != nil {
		return
	}
	tone := &effects.Volume{
		Streamer: beep.Take(sampleRate.N(chimeLength), sine),
		Base:     2,
		Volume:   -1,
	}
	speaker.Play(tone)
}

// Close releases the speaker.
func (s *Sound) Close() {
	if s != nil && s.ok {
		speaker.Close()
		s.ok = false
	}
}
