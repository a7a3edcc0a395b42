package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagmawi/collegehub/core"
)

func TestMachine_Advance(t *testing.T) {
	m := Machine{Name: "attendance session", Stages: []Status{"draft", "submitted", "approved"}}

	assert.Equal(t, Status("draft"), m.Initial())
	assert.Equal(t, Status("approved"), m.Final())

	assert.NoError(t, m.Advance("draft", "submitted"))
	assert.NoError(t, m.Advance("submitted", "approved"))

	// skipping a stage
	err := m.Advance("draft", "approved")
	assert.True(t, core.IsConflict(err))

	// advancing from terminal
	err = m.Advance("approved", "approved")
	assert.True(t, core.IsConflict(err))

	// unknown status
	err = m.Advance("nope", "submitted")
	assert.True(t, core.IsConflict(err))
}

func TestMachine_Reject(t *testing.T) {
	pay := Machine{Name: "payment", Stages: []Status{Pending, "verified"}, Rejection: Rejected}

	got, err := pay.Reject(Pending)
	assert.NoError(t, err)
	assert.Equal(t, Rejected, got)

	// verified payments cannot be rejected
	_, err = pay.Reject("verified")
	assert.True(t, core.IsConflict(err))

	// rejection is terminal
	_, err = pay.Reject(Rejected)
	assert.True(t, core.IsConflict(err))

	// results have no rejection path
	res := Machine{Name: "result", Stages: []Status{"Pending", "Approved"}}
	_, err = res.Reject("Pending")
	assert.True(t, core.IsConflict(err))
}

func TestPipeline_Progress(t *testing.T) {
	p := Pipeline{Name: "registration", Stages: []string{"department-head", "dean"}}

	decisions := map[string]Status{"department-head": Pending, "dean": Pending}
	lookup := func(stage string) Status { return decisions[stage] }

	awaiting, overall := p.Progress(lookup)
	assert.Equal(t, "department-head", awaiting)
	assert.Equal(t, Pending, overall)

	decisions["department-head"] = Approved
	awaiting, overall = p.Progress(lookup)
	assert.Equal(t, "dean", awaiting)
	assert.Equal(t, Pending, overall)

	decisions["dean"] = Approved
	_, overall = p.Progress(lookup)
	assert.Equal(t, Approved, overall)
}

func TestPipeline_RejectShortCircuits(t *testing.T) {
	p := Pipeline{Name: "registration", Stages: []string{"department-head", "dean"}}

	decisions := map[string]Status{"department-head": Rejected, "dean": Pending}
	lookup := func(stage string) Status { return decisions[stage] }

	_, overall := p.Progress(lookup)
	assert.Equal(t, Rejected, overall)

	// no stage may decide once rejected
	err := p.Guard("dean", lookup)
	assert.True(t, core.IsConflict(err))
}

func TestPipeline_Guard(t *testing.T) {
	p := Pipeline{Name: "registration", Stages: []string{"department-head", "dean"}}

	decisions := map[string]Status{"department-head": Pending, "dean": Pending}
	lookup := func(stage string) Status { return decisions[stage] }

	assert.NoError(t, p.Guard("department-head", lookup))

	// dean cannot decide before the department head
	err := p.Guard("dean", lookup)
	assert.True(t, core.IsConflict(err))

	decisions["department-head"] = Approved
	assert.NoError(t, p.Guard("dean", lookup))
	err = p.Guard("department-head", lookup)
	assert.True(t, core.IsConflict(err))
}
