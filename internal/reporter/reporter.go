package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Comparing(summary ComparisonSummary)
	SourceOpened(summary SourceSummary)
	SamplingStarted(plan SamplingPlan)
	SamplingProgress(progress SampleProgress)
	ScoreComputed(summary ScoreSummary)
	ResultSaved(path string)
	Warning(message string)
	Error(err ReporterError)
	OperationFailed(message string)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Comparing(ComparisonSummary)     {}
func (NullReporter) SourceOpened(SourceSummary)      {}
func (NullReporter) SamplingStarted(SamplingPlan)    {}
func (NullReporter) SamplingProgress(SampleProgress) {}
func (NullReporter) ScoreComputed(ScoreSummary)      {}
func (NullReporter) ResultSaved(string)              {}
func (NullReporter) Warning(string)                  {}
func (NullReporter) Error(ReporterError)             {}
func (NullReporter) OperationFailed(string)          {}
func (NullReporter) Verbose(string)                  {}
