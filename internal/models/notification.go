package models

// Color is an RGB triple for the LED matrix.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

var (
	ColorRed    = Color{255, 0, 0}
	ColorGreen  = Color{35, 125, 0}
	ColorBlue   = Color{0, 0, 255}
	ColorOrange = Color{255, 128, 0}
	ColorYellow = Color{255, 255, 0}
	ColorPink   = Color{204, 0, 102}
	ColorEmpty  = Color{0, 0, 0}
)

// Channel is one notification source shown on the display.
type Channel int

const (
	ChannelAirSensor Channel = iota
	ChannelSecondarySensor
	ChannelPrimaryUpload
	ChannelSecondaryUpload
	ChannelDataLoad
	channelCount
)

// Channels lists every channel in display sweep order.
var Channels = []Channel{
	ChannelAirSensor,
	ChannelSecondarySensor,
	ChannelPrimaryUpload,
	ChannelSecondaryUpload,
	ChannelDataLoad,
}

// ChannelCount is the number of declared channels.
const ChannelCount = int(channelCount)

func (c Channel) String() string {
	switch c {
	case ChannelAirSensor:
		return "AirSensor"
	case ChannelSecondarySensor:
		return "SecondarySensor"
	case ChannelPrimaryUpload:
		return "PrimaryUpload"
	case ChannelSecondaryUpload:
		return "SecondaryUpload"
	case ChannelDataLoad:
		return "DataLoad"
	default:
		return "Unknown"
	}
}

// Color is the sweep colour for the channel.
func (c Channel) Color() Color {
	switch c {
	case ChannelAirSensor:
		return ColorRed
	case ChannelSecondarySensor:
		return ColorPink
	case ChannelPrimaryUpload:
		return ColorBlue
	case ChannelSecondaryUpload:
		return ColorOrange
	case ChannelDataLoad:
		return ColorGreen
	default:
		return ColorEmpty
	}
}
