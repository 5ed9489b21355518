package servo

import "math"

// OscillatorHz is the PCA9685 internal oscillator frequency.
const OscillatorHz = 25000000.0

// Ticks is the number of counter steps in one PWM cycle.
const Ticks = 4096

// Calculate returns the prescale byte for the requested cycle time and the
// cycle time the chip will actually run at. Callers must use the returned
// cycle time from then on; the prescale is clamped to a byte silently.
func Calculate(requestedCycleUSec float64) (byte, float64) {
	freq := 1e6 / requestedCycleUSec
	p := math.Floor(OscillatorHz/Ticks/freq) - 1
	if p < 0 {
		p = 0
	} else if p > 255 {
		p = 255
	}
	prescale := byte(p)
	return prescale, 1e6 * float64(int(prescale)+1) / (OscillatorHz / Ticks)
}
