package sound

import (
	"fmt"
	"log"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Shared oto context; oto allows only one per process.
var (
	otoContext     *oto.Context
	otoContextOnce sync.Once
	otoContextErr  error
)

func initOtoContext() error {
	otoContextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: ChannelCount,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		otoContext, ready, otoContextErr = oto.NewContext(op)
		if otoContextErr != nil {
			otoContextErr = fmt.Errorf("sound: create context: %w", otoContextErr)
			return
		}
		<-ready
		log.Println("Sound: audio context initialized")
	})
	return otoContextErr
}

// Player streams a Mixer to the audio device.
type Player struct {
	mixer  *Mixer
	player *oto.Player
}

func Open() (*Player, error) {
	if err := initOtoContext(); err != nil {
		return nil, err
	}
	m := NewMixer()
	p := otoContext.NewPlayer(m)
	p.Play()
	return &Player{mixer: m, player: p}, nil
}

// Impact plays a click for a collision at the given closing speed. Faster hits are louder
// and higher pitched.
func (p *Player) Impact(speed float32) {
	if p == nil || speed < minImpactSpeed {
		return
	}
	volume := speed / loudImpactSpeed
	p.mixer.Trigger(volume, 220+min(speed, loudImpactSpeed)*40)
}

func (p *Player) Close() error {
	if p == nil {
		return nil
	}
	return p.player.Close()
}

const (
	minImpactSpeed  = 0.5
	loudImpactSpeed = 10
)
