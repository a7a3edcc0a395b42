// Package workflow models the multi-stage approval logic shared by
// registrations, attendance sessions, payments and grade results as one
// generic state machine instead of per-entity copies.
//
// A Machine is a linear progression of statuses with an optional terminal
// rejected status. A Pipeline is an ordered list of named sign-off stages
// where each stage records its own Decision; rejection at any stage is
// terminal for the cycle.
//
// Neither type persists anything. Callers pair every transition with a
// conditional ("status must still equal the expected prior status") update
// in their repository so concurrent approvers cannot double-advance a
// record.
package workflow

import (
	"fmt"
	"time"

	"github.com/dagmawi/collegehub/core"
)

// Status is one state of an approval-bearing entity.
type Status string

// Decision statuses shared by pipeline stages.
const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
)

// Decision is one per-stage sub-record of a Pipeline.
type Decision struct {
	Status  Status    `json:"status" db:"status"`
	Actor   string    `json:"actor,omitempty" db:"actor"`
	Date    time.Time `json:"date,omitempty" db:"date"`
	Comment string    `json:"comment,omitempty" db:"comment"`
}

// Machine is a linear status progression. The first stage is the initial
// status; the last one is terminal. When Rejection is set, any non-terminal
// status may transition to it and it is terminal.
type Machine struct {
	Name      string
	Stages    []Status
	Rejection Status
}

// Initial returns the status new records start in.
func (m Machine) Initial() Status { return m.Stages[0] }

// Final returns the last (fully approved) stage.
func (m Machine) Final() Status { return m.Stages[len(m.Stages)-1] }

// Terminal reports whether no further transition is possible from s.
func (m Machine) Terminal(s Status) bool {
	return s == m.Final() || (m.Rejection != "" && s == m.Rejection)
}

func (m Machine) index(s Status) int {
	for i, stage := range m.Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Next returns the stage following cur. A terminal or unknown current
// status is a stage-order violation.
func (m Machine) Next(cur Status) (Status, error) {
	i := m.index(cur)
	if i < 0 || m.Terminal(cur) {
		return "", core.NewConflictError(fmt.Sprintf("%s cannot advance from status %q", m.Name, cur))
	}
	return m.Stages[i+1], nil
}

// Advance validates a cur -> want transition. Statuses only move forward
// one stage at a time; skipping or repeating a stage is a conflict.
func (m Machine) Advance(cur, want Status) error {
	next, err := m.Next(cur)
	if err != nil {
		return err
	}
	if want != next {
		return core.NewConflictError(fmt.Sprintf("%s cannot move from %q to %q", m.Name, cur, want))
	}
	return nil
}

// Reject validates a rejection from cur and returns the rejected status.
func (m Machine) Reject(cur Status) (Status, error) {
	if m.Rejection == "" {
		return "", core.NewConflictError(fmt.Sprintf("%s does not support rejection", m.Name))
	}
	if m.index(cur) < 0 || m.Terminal(cur) {
		return "", core.NewConflictError(fmt.Sprintf("%s cannot be rejected from status %q", m.Name, cur))
	}
	return m.Rejection, nil
}

// Pipeline is an ordered list of named sign-off stages, each holding its own
// Decision. The overall record is approved only once the final stage
// approves; a rejection at any stage short-circuits the rest.
type Pipeline struct {
	Name   string
	Stages []string
}

// Progress inspects per-stage decisions (looked up by stage name) and
// reports the overall outcome plus the stage awaiting a decision, if any.
func (p Pipeline) Progress(decision func(stage string) Status) (awaiting string, overall Status) {
	for _, stage := range p.Stages {
		switch decision(stage) {
		case Rejected:
			return "", Rejected
		case Approved:
			continue
		default:
			return stage, Pending
		}
	}
	return "", Approved
}

// Guard validates that stage is the one currently awaiting a decision.
func (p Pipeline) Guard(stage string, decision func(stage string) Status) error {
	awaiting, overall := p.Progress(decision)
	if overall != Pending {
		return core.NewConflictError(fmt.Sprintf("%s is already %s", p.Name, overall))
	}
	if awaiting != stage {
		return core.NewConflictError(fmt.Sprintf("%s is awaiting %s approval, not %s", p.Name, awaiting, stage))
	}
	return nil
}
