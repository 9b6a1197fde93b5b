package gpio

// States returns pin states for n pins with only the pin for position
// lit. Positions past the last pin wrap around; a negative position
// turns every pin off.
func States(n int, position int) []bool {
	states := make([]bool, n)
	if n == 0 || position < 0 {
		return states
	}
	states[position%n] = true
	return states
}

// Pattern renders states as '#' for high and ' ' for low.
func Pattern(states []bool) string {
	b := make([]byte, len(states))
	for i, state := range states {
		if state {
			b[i] = '#'
		} else {
			b[i] = ' '
		}
	}
	return string(b)
}
