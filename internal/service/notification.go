package service

import "weather_station/internal/models"

// NotificationState holds one raised flag per channel. Each flag is set and
// cleared only by the component that owns the channel.
type NotificationState struct {
	raised [models.ChannelCount]bool
}

func (n *NotificationState) Raise(c models.Channel) { n.Set(c, true) }
func (n *NotificationState) Clear(c models.Channel) { n.Set(c, false) }

func (n *NotificationState) Set(c models.Channel, on bool) {
	if int(c) < 0 || int(c) >= models.ChannelCount {
		return
	}
	n.raised[c] = on
}

func (n *NotificationState) Raised(c models.Channel) bool {
	if int(c) < 0 || int(c) >= models.ChannelCount {
		return false
	}
	return n.raised[c]
}

// Active returns the raised channels in declared order.
func (n *NotificationState) Active() []models.Channel {
	var out []models.Channel
	for _, c := range models.Channels {
		if n.raised[c] {
			out = append(out, c)
		}
	}
	return out
}

// Flags returns a name→raised copy for reporting.
func (n *NotificationState) Flags() map[string]bool {
	out := make(map[string]bool, models.ChannelCount)
	for _, c := range models.Channels {
		out[c.String()] = n.raised[c]
	}
	return out
}
