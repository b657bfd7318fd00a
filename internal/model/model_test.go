package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/lims-api/internal/model"
	apperrors "github.com/jwalitptl/lims-api/pkg/errors"
)

func TestPatientValidate(t *testing.T) {
	valid := model.Patient{Name: "Jane Doe", Age: 34, Gender: model.GenderFemale, Phone: "555-0100"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		patient model.Patient
	}{
		{"missing name", model.Patient{Age: 34, Phone: "555-0100"}},
		{"missing phone", model.Patient{Name: "Jane Doe", Age: 34}},
		{"zero age", model.Patient{Name: "Jane Doe", Phone: "555-0100"}},
		{"negative age", model.Patient{Name: "Jane Doe", Age: -1, Phone: "555-0100"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patient.Validate()
			assert.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}

func TestOrderValidate(t *testing.T) {
	order := model.Order{
		Status: model.StatusBooked,
		Tests:  []model.Test{{ID: "1", Name: "CBC", Code: "CBC"}},
	}
	assert.NoError(t, order.Validate())

	empty := model.Order{Status: model.StatusBooked}
	err := empty.Validate()
	assert.True(t, apperrors.IsValidation(err))

	unknown := model.Order{Status: "archived", Tests: order.Tests}
	err = unknown.Validate()
	assert.True(t, apperrors.IsValidation(err))
}

func TestOrderStatusEnumeration(t *testing.T) {
	assert.Len(t, model.AllStatuses, 10)
	for _, status := range model.AllStatuses {
		assert.True(t, status.Valid(), "status %s", status)
		assert.NotEmpty(t, status.Label(), "status %s", status)
	}
	assert.False(t, model.OrderStatus("unknown").Valid())
}

func TestOrderCloneIsDeep(t *testing.T) {
	order := model.Order{
		Status:  model.StatusResultSaved,
		Tests:   []model.Test{{ID: "1", Name: "CBC"}},
		Results: []model.TestResult{{TestID: "1", Value: "5.0"}},
	}
	clone := order.Clone()
	clone.Tests[0].Name = "changed"
	clone.Results[0].Value = "changed"

	assert.Equal(t, "CBC", order.Tests[0].Name)
	assert.Equal(t, "5.0", order.Results[0].Value)
}
