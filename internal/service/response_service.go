package service

import "time"

// LogFilter selects station events by time range, type and upload target.
type LogFilter struct {
	From   time.Time // inclusive; zero means no lower bound
	To     time.Time // inclusive; zero means no upper bound
	Type   string    // one of models.EventTypes, any case; "" for all
	Target string    // "primary" or "secondary", any case; "" for all
}

// AuthConfig configures operator tokens.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}
