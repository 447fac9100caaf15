package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter. Nil reporters are skipped.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	c := &CompositeReporter{}
	for _, r := range reporters {
		if r != nil {
			c.reporters = append(c.reporters, r)
		}
	}
	return c
}

func (c *CompositeReporter) Comparing(summary ComparisonSummary) {
	for _, r := range c.reporters {
		r.Comparing(summary)
	}
}

func (c *CompositeReporter) SourceOpened(summary SourceSummary) {
	for _, r := range c.reporters {
		r.SourceOpened(summary)
	}
}

func (c *CompositeReporter) SamplingStarted(plan SamplingPlan) {
	for _, r := range c.reporters {
		r.SamplingStarted(plan)
	}
}

func (c *CompositeReporter) SamplingProgress(progress SampleProgress) {
	for _, r := range c.reporters {
		r.SamplingProgress(progress)
	}
}

func (c *CompositeReporter) ScoreComputed(summary ScoreSummary) {
	for _, r := range c.reporters {
		r.ScoreComputed(summary)
	}
}

func (c *CompositeReporter) ResultSaved(path string) {
	for _, r := range c.reporters {
		r.ResultSaved(path)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) OperationFailed(message string) {
	for _, r := range c.reporters {
		r.OperationFailed(message)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}
