//go:build gpio

package gpio

import (
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// Indicator drives one output pin per ring position. Only the pin for
// the current position is high.
type Indicator struct {
	mu   sync.Mutex
	pins []rpio.Pin
}

// Open maps the memory range for GPIO access and configures every pin in
// pinout as a low output.
func Open(pinout []int) (*Indicator, error) {
	if err := rpio.Open(); err != nil {
		return nil, err
	}

	pins := make([]rpio.Pin, 0, len(pinout))
	for _, p := range pinout {
		pin := rpio.Pin(p)
		pin.Output()
		pin.Low()
		pins = append(pins, pin)
	}

	return &Indicator{pins: pins}, nil
}

func (ind *Indicator) Show(position int) error {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	for i, state := range States(len(ind.pins), position) {
		if state {
			ind.pins[i].High()
		} else {
			ind.pins[i].Low()
		}
	}

	return nil
}

func (ind *Indicator) Close() error {
	ind.mu.Lock()
	defer ind.mu.Unlock()

	for _, pin := range ind.pins {
		pin.Low()
	}
	return rpio.Close()
}
