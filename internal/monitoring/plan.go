package monitoring

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PlanStep is one deferred verb of a pipeline.
type PlanStep struct {
	Verb     string        `json:"verb"`
	Args     string        `json:"args,omitempty"`
	RowsIn   int64         `json:"rows_in,omitempty"`
	RowsOut  int64         `json:"rows_out,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Ran      bool          `json:"ran"`
}

// PlanSource describes the collection a pipeline starts from.
type PlanSource struct {
	Rows    int      `json:"rows"`
	GroupBy []string `json:"group_by,omitempty"`
}

// Plan describes a pipeline: its source and its steps in execution order.
type Plan struct {
	Source PlanSource `json:"source"`
	Steps  []PlanStep `json:"steps"`
}

// PlanBuilder assembles a Plan.
type PlanBuilder struct {
	source PlanSource
	steps  []PlanStep
}

// NewPlanBuilder creates a builder for a pipeline over rows records.
func NewPlanBuilder(rows int, groupBy []string) *PlanBuilder {
	return &PlanBuilder{
		source: PlanSource{Rows: rows, GroupBy: groupBy},
		steps:  make([]PlanStep, 0),
	}
}

// AddStep appends a verb to the plan.
func (pb *PlanBuilder) AddStep(verb, args string) *PlanBuilder {
	pb.steps = append(pb.steps, PlanStep{Verb: verb, Args: args})
	return pb
}

// WithMetrics fills in the steps that ran from recorded metrics. Metrics are
// matched to steps by position.
func (pb *PlanBuilder) WithMetrics(metrics []OperationMetrics) *PlanBuilder {
	for i := range pb.steps {
		if i >= len(metrics) {
			break
		}
		m := metrics[i]
		if m.Operation != pb.steps[i].Verb {
			break
		}
		pb.steps[i].RowsIn = m.RowsIn
		pb.steps[i].RowsOut = m.RowsOut
		pb.steps[i].Duration = m.Duration
		pb.steps[i].Ran = !m.Failed
	}
	return pb
}

// Build returns the assembled plan.
func (pb *PlanBuilder) Build() Plan {
	steps := make([]PlanStep, len(pb.steps))
	copy(steps, pb.steps)
	return Plan{Source: pb.source, Steps: steps}
}

// ToJSON renders the plan as indented JSON.
func (p *Plan) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON replaces p with the plan encoded in data.
func (p *Plan) FromJSON(data []byte) error {
	return json.Unmarshal(data, p)
}

// Executed counts the steps that ran successfully.
func (p *Plan) Executed() int {
	n := 0
	for _, s := range p.Steps {
		if s.Ran {
			n++
		}
	}
	return n
}

// String renders the plan as an indented tree, one step per line.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "source (%d rows", p.Source.Rows)
	if len(p.Source.GroupBy) > 0 {
		fmt.Fprintf(&b, ", grouped by %s", strings.Join(p.Source.GroupBy, ", "))
	}
	b.WriteString(")\n")
	for i, s := range p.Steps {
		fmt.Fprintf(&b, "%s└─ %s(%s)", strings.Repeat("  ", i+1), s.Verb, s.Args)
		if s.Ran {
			fmt.Fprintf(&b, " %d -> %d rows in %s", s.RowsIn, s.RowsOut, s.Duration)
		}
		b.WriteString("\n")
	}
	return b.String()
}
