package reconcile

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrNoContainerSucceeded is the fatal aggregate outcome.
var ErrNoContainerSucceeded = errors.New("no containers were successfully processed")

// Outcome classifies a finished run.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeDegraded Outcome = "degraded"
	OutcomeFailed   Outcome = "failed"
)

// Summary provides aggregate counts over container results.
type Summary struct {
	Containers  int      `json:"containers"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Attempted   int      `json:"attempted"`
	Uploaded    int      `json:"uploaded"`
	FailedItems int      `json:"failed_items"`
	Successful  []string `json:"successful"`
	FailedNames []string `json:"failed_names"`
}

// Report collects container results in processing order.
type Report struct {
	Results []*ContainerResult
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

func (r *Report) Add(res *ContainerResult) {
	r.Results = append(r.Results, res)
}

// Summary computes the aggregate counts. Only succeeded containers contribute
// uploaded documents.
func (r *Report) Summary() Summary {
	var s Summary
	s.Containers = len(r.Results)
	for _, res := range r.Results {
		s.Attempted += res.Attempted
		switch res.State {
		case StateSucceeded:
			s.Succeeded++
			s.Uploaded += res.Uploaded
			s.FailedItems += res.FailedItems()
			s.Successful = append(s.Successful, res.Name)
		default:
			s.Failed++
			s.FailedNames = append(s.FailedNames, res.Name)
		}
	}
	return s
}

// Outcome is failed when nothing succeeded, degraded when some containers
// failed, and success otherwise.
func (r *Report) Outcome() Outcome {
	s := r.Summary()
	switch {
	case s.Succeeded == 0:
		return OutcomeFailed
	case s.Failed > 0:
		return OutcomeDegraded
	default:
		return OutcomeSuccess
	}
}

// Failures combines the errors of every failed container, or returns nil.
func (r *Report) Failures() error {
	var errs *multierror.Error
	for _, res := range r.Results {
		if res.State == StateSucceeded {
			continue
		}
		cause := res.Err
		if cause == nil {
			cause = fmt.Errorf("ended in state %s", res.State)
		}
		errs = multierror.Append(errs, fmt.Errorf("container %s: %w", res.Name, cause))
	}
	return errs.ErrorOrNil()
}

// Err returns the fatal error when no container succeeded.
func (r *Report) Err() error {
	if r.Outcome() != OutcomeFailed {
		return nil
	}
	if failures := r.Failures(); failures != nil {
		return fmt.Errorf("%w: %w", ErrNoContainerSucceeded, failures)
	}
	return ErrNoContainerSucceeded
}
