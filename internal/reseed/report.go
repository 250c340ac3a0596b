package reseed

import (
	"errors"
	"fmt"
	"time"
)

// Stage names one step of a run.
type Stage string

// Stages in the order Run executes them.
const (
	StagePing           Stage = "ping"
	StageErase          Stage = "erase"
	StageCategories     Stage = "create_categories"
	StageCustomizations Stage = "create_customizations"
	StageMenuItems      Stage = "create_menu_items"
	StageVerify         Stage = "verify"
	StageDone           Stage = "done"
)

// ErrStructural is matched by every *StructuralError.
var ErrStructural = errors.New("structural reseed failure")

// StructuralError aborts a run. Row-level failures never produce one.
type StructuralError struct {
	Stage Stage
	Err   error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("reseed %s: %v", e.Stage, e.Err)
}

func (e *StructuralError) Unwrap() []error { return []error{ErrStructural, e.Err} }

// Op names the kind of work behind a RowResult.
type Op string

// Operations a run performs.
const (
	OpCreate     Op = "create"
	OpDelete     Op = "delete"
	OpDeleteFile Op = "delete_file"
	OpList       Op = "list"
)

// RowResult is the outcome of one row operation. Err is nil on success.
type RowResult struct {
	Op    Op     `json:"op"`
	Table string `json:"table"`
	Name  string `json:"name,omitempty"`
	ID    string `json:"id,omitempty"`
	Err   error  `json:"-"`
}

// OK reports whether the operation succeeded.
func (r RowResult) OK() bool { return r.Err == nil }

// StageReport collects the row results of one creation stage.
type StageReport struct {
	Stage    Stage         `json:"stage"`
	Results  []RowResult   `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Created counts successful rows.
func (s StageReport) Created() int {
	n := 0
	for _, r := range s.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failures returns the failed rows.
func (s StageReport) Failures() []RowResult {
	var out []RowResult
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// EraseResult is the outcome of clearing one table or bucket. A failed list
// is recorded in ListErr and the target is treated as empty.
type EraseResult struct {
	Target   string      `json:"target"`
	Listed   int         `json:"listed"`
	Deleted  int         `json:"deleted"`
	Failures []RowResult `json:"-"`
	ListErr  error       `json:"-"`
}

// Errors returns the failed deletes plus, when the list failed, one result
// carrying ListErr.
func (e EraseResult) Errors() []RowResult {
	out := append([]RowResult(nil), e.Failures...)
	if e.ListErr != nil {
		out = append(out, RowResult{Op: OpList, Table: e.Target, Err: e.ListErr})
	}
	return out
}

// Lookups are the name to id maps built during a run. On duplicate names the
// last created row wins.
type Lookups struct {
	Categories     map[string]string `json:"categories"`
	Customizations map[string]string `json:"customizations"`
	Menu           map[string]string `json:"menu"`
}

// Report is the aggregate outcome of a run.
type Report struct {
	Erased    []EraseResult `json:"erased"`
	Stages    []StageReport `json:"stages"`
	Lookups   Lookups       `json:"-"`
	MenuTotal int           `json:"menuTotal"`
	Duration  time.Duration `json:"duration"`
}

// Stage returns the report for a creation stage.
func (r *Report) Stage(s Stage) (StageReport, bool) {
	for _, sr := range r.Stages {
		if sr.Stage == s {
			return sr, true
		}
	}
	return StageReport{}, false
}

// Created counts successful row creations across every stage.
func (r *Report) Created() int {
	n := 0
	for _, s := range r.Stages {
		n += s.Created()
	}
	return n
}

// Failures returns every failed row creation across every stage.
func (r *Report) Failures() []RowResult {
	var out []RowResult
	for _, s := range r.Stages {
		out = append(out, s.Failures()...)
	}
	return out
}

// Failed counts failed row creations.
func (r *Report) Failed() int { return len(r.Failures()) }

// EraseFailures returns every failed list or delete of the Erase stage. Any
// entry means stale rows may have survived the run.
func (r *Report) EraseFailures() []RowResult {
	var out []RowResult
	for _, e := range r.Erased {
		out = append(out, e.Errors()...)
	}
	return out
}

// Clean reports whether every erase and creation succeeded.
func (r *Report) Clean() bool {
	return r.Failed() == 0 && len(r.EraseFailures()) == 0
}
