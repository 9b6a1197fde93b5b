//go:build !gpio

package gpio

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Indicator drives one output pin per ring position. Without the gpio
// build tag the pin pattern is only logged.
type Indicator struct {
	mu     sync.Mutex
	pinout []int
	last   []bool
}

func Open(pinout []int) (*Indicator, error) {
	log.Debug().Ints("pinout", pinout).Msg("GPIO will be simulated")
	return &Indicator{pinout: pinout}, nil
}

func (ind *Indicator) Show(position int) error {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	ind.last = States(len(ind.pinout), position)
	log.Debug().Str("pins", Pattern(ind.last)).Msg("GPIO")
	return nil
}

// Last returns the most recent pin states written by Show.
func (ind *Indicator) Last() []bool {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	return append([]bool(nil), ind.last...)
}

func (ind *Indicator) Close() error {
	log.Debug().Msg("Simulated GPIO closing")
	return nil
}
