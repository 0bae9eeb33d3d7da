package sound

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	SampleRate   = 44100
	ChannelCount = 2
	MaxVoices    = 16

	bytesPerFrame = 4 * ChannelCount // float32 per channel
	clickLength   = 0.12             // seconds
	clickDecay    = 40.0             // exponential decay rate, 1/s
)

type voice struct {
	frequency float64
	amplitude float64
	sample    int
	length    int
}

// Mixer sums short decaying sine clicks into interleaved float32 stereo. It implements
// io.Reader so a player can pull from it on its own goroutine.
type Mixer struct {
	mu     sync.Mutex
	voices []voice
}

func NewMixer() *Mixer {
	return &Mixer{voices: make([]voice, 0, MaxVoices)}
}

// Trigger starts a click. volume is clamped to [0,1]; when all voices are busy the oldest
// one is replaced.
func (m *Mixer) Trigger(volume, frequency float32) {
	if volume <= 0 || frequency <= 0 {
		return
	}
	v := voice{
		frequency: float64(frequency),
		amplitude: math.Min(float64(volume), 1),
		length:    int(clickLength * SampleRate),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.voices) == MaxVoices {
		copy(m.voices, m.voices[1:])
		m.voices = m.voices[:MaxVoices-1]
	}
	m.voices = append(m.voices, v)
}

// Active reports the number of clicks still sounding.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Read fills buf with whole frames; idle output is silence.
func (m *Mixer) Read(buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := len(buf) / bytesPerFrame
	for f := 0; f < frames; f++ {
		var sum float64
		for i := range m.voices {
			v := &m.voices[i]
			if v.sample >= v.length {
				continue
			}
			t := float64(v.sample) / SampleRate
			sum += v.amplitude * math.Exp(-clickDecay*t) * math.Sin(2*math.Pi*v.frequency*t)
			v.sample++
		}
		// Soft clip so stacked clicks don't wrap
		sample := float32(math.Tanh(sum))
		for c := 0; c < ChannelCount; c++ {
			writeFloat32LE(buf[f*bytesPerFrame+c*4:], sample)
		}
	}

	live := m.voices[:0]
	for _, v := range m.voices {
		if v.sample < v.length {
			live = append(live, v)
		}
	}
	m.voices = live

	return frames * bytesPerFrame, nil
}

func writeFloat32LE(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
