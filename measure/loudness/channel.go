package loudness

// Channel is the role of one input channel. The role determines the
// channel's weight in the block energy sum.
//
// Positional names follow ITU-R BS.2051: M/U/T/B for middle, upper, top
// and bottom layer, p/m for positive (left) and negative (right) azimuth
// in degrees.
type Channel int

// Classic 5.0 roles. Unused channels are skipped; Left, Right and Center
// weigh 1.0, the surrounds 1.41.
const (
	Unused Channel = iota
	Left
	Right
	Center
	LeftSurround
	RightSurround
	// DualMono marks the single channel of a mono signal that is played
	// back through two speakers.
	DualMono

	// Positional roles of ITU-R BS.2051. Mp060, Mm060, Mp090 and Mm090
	// weigh 1.41, all others 1.0.
	MpSC
	MmSC
	Mp060
	Mm060
	Mp090
	Mm090
	Mp135
	Mm135
	Mp180
	Up000
	Up030
	Um030
	Up045
	Um045
	Up090
	Um090
	Up110
	Um110
	Up135
	Um135
	Up180
	Tp000
	Bp000
	Bp045
	Bm045

	numChannelRoles
)

// BS.2051 aliases of the classic 5.0 layout.
const (
	Mp030 = Left
	Mm030 = Right
	Mp000 = Center
	Mp110 = LeftSurround
	Mm110 = RightSurround
)

var channelNames = [numChannelRoles]string{
	"Unused", "Left", "Right", "Center", "LeftSurround", "RightSurround",
	"DualMono", "MpSC", "MmSC", "Mp060", "Mm060", "Mp090", "Mm090",
	"Mp135", "Mm135", "Mp180", "Up000", "Up030", "Um030", "Up045", "Um045",
	"Up090", "Um090", "Up110", "Um110", "Up135", "Um135", "Up180",
	"Tp000", "Bp000", "Bp045", "Bm045",
}

// String returns the role name.
func (c Channel) String() string {
	if !c.valid() {
		return "Channel(invalid)"
	}

	return channelNames[c]
}

// Weight returns the BS.1770 channel gain.
func (c Channel) Weight() float64 {
	switch c {
	case Unused:
		return 0
	case Mp110, Mm110, Mp060, Mm060, Mp090, Mm090:
		return 1.41
	case DualMono:
		return 2
	default:
		return 1
	}
}

func (c Channel) valid() bool { return c >= 0 && c < numChannelRoles }

var defaultLayout = [...]Channel{Left, Right, Center, LeftSurround, RightSurround}

// defaultChannelMap returns L, R, C, Ls, Rs for the first five channels and
// Unused for the rest.
func defaultChannelMap(channels int) []Channel {
	m := make([]Channel, channels)
	copy(m, defaultLayout[:])

	return m
}
