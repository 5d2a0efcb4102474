package execution

// FullReportAttempts is how many leading attempts are always reported.
const FullReportAttempts = 5

// reportEvery is the cadence once the leading attempts are over.
const reportEvery = 3

// ShouldReport decides whether a non-terminal observation is shown. It has no
// influence on the state machine.
func ShouldReport(ordinal int) bool {
	if ordinal <= 0 {
		return false
	}
	if ordinal <= FullReportAttempts {
		return true
	}
	return ordinal%reportEvery == 0
}

// Reporter receives progress from the controller.
type Reporter interface {
	// Progress is called for non-terminal observations selected by
	// ShouldReport and for every failed query.
	Progress(attempt PollAttempt)
	// Finished is called once with the final outcome.
	Finished(outcome *Outcome)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Progress(PollAttempt) {}
func (NopReporter) Finished(*Outcome)    {}
