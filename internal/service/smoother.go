package service

const smoothingWindow = 3

// Smoother keeps a moving average over the last three readings of each metric key.
type Smoother struct {
	windows map[string]*[smoothingWindow]float64
}

// NewSmoother prepares windows for the given keys; other keys get one on first push.
func NewSmoother(keys ...string) *Smoother {
	s := &Smoother{windows: make(map[string]*[smoothingWindow]float64, len(keys))}
	for _, k := range keys {
		s.windows[k] = nil
	}
	return s
}

// Push records raw for key and returns the mean of the window.
// The first push for a key fills every slot with raw.
func (s *Smoother) Push(key string, raw float64) float64 {
	w := s.windows[key]
	if w == nil {
		w = &[smoothingWindow]float64{raw, raw, raw}
		s.windows[key] = w
	}

	w[2] = w[1]
	w[1] = w[0]
	w[0] = raw

	return (w[0] + w[1] + w[2]) / smoothingWindow
}

