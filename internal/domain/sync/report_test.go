package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReport_Counts(t *testing.T) {
	report := NewReport(PhaseCategories)

	report.AddCreated()
	report.AddCreated()
	report.AddUpdated()
	report.AddSkipped()
	report.AddError("CAT-99", ErrCodeReference, "parent code not found")

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 5, report.Total())
	assert.True(t, report.HasErrors())
}

func TestReport_ErrorOrder(t *testing.T) {
	report := NewReport(PhaseProducts)

	report.AddError("1", ErrCodeReference, "first")
	report.AddError("2", ErrCodeValidation, "second")
	report.AddError("3", ErrCodePersistence, "third")

	assert.Equal(t, "1", report.Errors[0].Ref)
	assert.Equal(t, "2", report.Errors[1].Ref)
	assert.Equal(t, "3", report.Errors[2].Ref)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    Phase
		to      Phase
		allowed bool
	}{
		{PhaseIdle, PhaseCategories, true},
		{PhaseCategories, PhaseProducts, true},
		{PhaseProducts, PhaseStockRefresh, true},
		{PhaseProducts, PhaseDone, true},
		{PhaseStockRefresh, PhaseDone, true},
		{PhaseIdle, PhaseProducts, false},
		{PhaseCategories, PhaseDone, false},
		{PhaseDone, PhaseCategories, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}
