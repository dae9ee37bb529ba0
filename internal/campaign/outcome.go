package campaign

// Outcome is the terminal classification of one company's processing.
// Exactly one outcome is assigned per company.
type Outcome string

const (
	// OutcomeSuccess means a draft was staged and the success log written.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailure means the contact lookup found no emails. This is a
	// first-class outcome, logged distinctly from errors.
	OutcomeFailure Outcome = "failure"
	// OutcomeError means a pipeline step failed for this company.
	OutcomeError Outcome = "error"
)

// Stage names the pipeline step where an error outcome occurred.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageSummarize Stage = "summarize"
	StageCompose   Stage = "compose"
	// StagePublish is the explicit, named classification for a draft that
	// could not be staged after a contact was found. No failure-log row is
	// written for it: the failure range records lookup misses only.
	StagePublish Stage = "publish"
	StagePanic   Stage = "panic"
)

// CompanyResult is one company's terminal classification.
type CompanyResult struct {
	CompanyURL   string
	Domain       string
	Outcome      Outcome
	Stage        Stage
	Reason       string
	ContactEmail string
	ContactName  string
	DraftID      string
	// Processed reports whether the company reached the contact branch.
	// Companies short-circuited at fetch/extract/summarize do not count as
	// processed.
	Processed bool
}

// Tally accumulates outcomes across a campaign run.
type Tally struct {
	Processed int
	Successes int
	Failures  int
	Errors    int
}

// apply folds one company's result into the tally. Exactly one of
// Successes/Failures/Errors increments per call.
func (t *Tally) apply(res CompanyResult) {
	switch res.Outcome {
	case OutcomeSuccess:
		t.Successes++
	case OutcomeFailure:
		t.Failures++
	default:
		t.Errors++
	}
	if res.Processed {
		t.Processed++
	}
}
