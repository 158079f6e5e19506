package main

import "fmt"

// LaneLayout maps lane index to the button symbol written in the chart
type LaneLayout [laneCount]byte

// DefaultLaneLayout puts lane 0 on button 1 and so on
var DefaultLaneLayout = LaneLayout{'1', '2', '3', '4', '5', '6', '7', '8'}

// ParseLaneLayout accepts exactly 8 characters, each one of '1' to '8'.
// Repeats are allowed so several lanes can share a button.
func ParseLaneLayout(config string) (LaneLayout, error) {
	var layout LaneLayout

	if len(config) != laneCount {
		return layout, fmt.Errorf("%w: '%s' has %d characters, need %d", ErrInvalidLayout, config, len(config), laneCount)
	}

	for i := 0; i < laneCount; i++ {
		c := config[i]
		if c < '1' || c > '8' {
			return layout, fmt.Errorf("%w: '%c' at position %d is not a button 1-8", ErrInvalidLayout, c, i+1)
		}
		layout[i] = c
	}

	return layout, nil
}

// Symbol returns the button for a lane
func (l LaneLayout) Symbol(lane int) byte {
	return l[lane]
}

func (l LaneLayout) String() string {
	return string(l[:])
}
