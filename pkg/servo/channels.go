package servo

import "github.com/pkg/errors"

// Channels is the number of PWM outputs on one chip.
const Channels = 16

// ErrChannel is returned for a channel index outside 0..15.
var ErrChannel = errors.New("invalid servo number")

// ChannelState is what the daemon remembers about one output.
type ChannelState struct {
	Index     int
	StartTick int
	Position  float64
}

// PulseTicks are the on and off counter values of one channel.
type PulseTicks struct {
	On  int
	Off int
}

type channelStore [Channels]ChannelState

// InitStarts sets every start tick to zero, or spreads them evenly over the
// cycle so the outputs don't all switch at once.
func (s *channelStore) InitStarts(spread bool) {
	start := 0
	for i := range s {
		s[i].Index = i
		s[i].StartTick = start
		if spread {
			start += Ticks / Channels
		}
	}
}

func (s *channelStore) Get(i int) (ChannelState, error) {
	if i < 0 || i >= Channels {
		return ChannelState{}, errors.Wrapf(ErrChannel, "channel %d", i)
	}
	return s[i], nil
}

func (s *channelStore) Set(i int, position float64) error {
	if i < 0 || i >= Channels {
		return errors.Wrapf(ErrChannel, "channel %d", i)
	}
	s[i].Position = position
	return nil
}
