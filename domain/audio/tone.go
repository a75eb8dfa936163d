package audio

import (
	"encoding/binary"
	"math"
	"time"
)

// Shutter beep shape: a square wave at 1200 Hz joined after 60 ms by a sine
// at 700 Hz, under a gain envelope that peaks at 20 ms and decays by 280 ms.
const (
	toneLength     = 300 * time.Millisecond
	toneSquareHz   = 1200.0
	toneSineHz     = 700.0
	toneSineDelay  = 0.06
	toneGainFloor  = 0.0001
	toneGainPeak   = 0.5
	toneGainKnee   = 0.08
	toneAttackEnd  = 0.02
	toneKneeAt     = 0.12
	toneReleaseEnd = 0.28
)

// ToneDuration is the length of the synthesized beep.
const ToneDuration = toneLength

// toneGain evaluates the envelope at t seconds.
func toneGain(t float64) float64 {
	switch {
	case t <= 0:
		return toneGainFloor
	case t < toneAttackEnd:
		return toneGainFloor + (toneGainPeak-toneGainFloor)*t/toneAttackEnd
	case t < toneKneeAt:
		return expRamp(toneGainPeak, toneGainKnee, (t-toneAttackEnd)/(toneKneeAt-toneAttackEnd))
	case t < toneReleaseEnd:
		return expRamp(toneGainKnee, toneGainFloor, (t-toneKneeAt)/(toneReleaseEnd-toneKneeAt))
	default:
		return toneGainFloor
	}
}

func expRamp(from, to, frac float64) float64 {
	return from * math.Pow(to/from, frac)
}

// SynthesizeTone renders the shutter beep as interleaved stereo signed 16-bit
// little-endian PCM at sampleRate.
func SynthesizeTone(sampleRate int) []byte {
	if sampleRate <= 0 {
		return nil
	}
	n := int(toneLength.Seconds() * float64(sampleRate))
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		v := square(toneSquareHz * t)
		if t >= toneSineDelay {
			v += math.Sin(2 * math.Pi * toneSineHz * (t - toneSineDelay))
		}
		v *= toneGain(t)
		s := int16(math.Max(-1, math.Min(1, v)) * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*4:], uint16(s))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(s))
	}
	return out
}

func square(phase float64) float64 {
	if phase-math.Floor(phase) < 0.5 {
		return 1
	}
	return -1
}
