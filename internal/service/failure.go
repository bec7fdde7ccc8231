package service

// FailurePolicy counts consecutive primary upload failures and latches a
// reboot request once the count exceeds the configured maximum.
type FailurePolicy struct {
	max       int
	reboot    bool
	recordCSV bool

	consecutive int
	latched     bool
}

func NewFailurePolicy(max int, reboot, recordCSV bool) *FailurePolicy {
	return &FailurePolicy{max: max, reboot: reboot, recordCSV: recordCSV}
}

// RecordSuccess resets the consecutive failure counter.
func (p *FailurePolicy) RecordSuccess() {
	p.consecutive = 0
}

// RecordFailure counts one failure and reports whether a reboot should be
// requested now. It returns true at most once per process.
func (p *FailurePolicy) RecordFailure() bool {
	p.consecutive++
	if p.latched || !p.reboot || p.consecutive <= p.max {
		return false
	}
	p.latched = true
	return true
}

// ShouldRecord reports whether a failure at minute gets a durable failure record.
func (p *FailurePolicy) ShouldRecord(minute int) bool {
	return p.recordCSV && (minute == 0 || minute == 30)
}

func (p *FailurePolicy) Consecutive() int { return p.consecutive }
