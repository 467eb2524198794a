package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clinica/clinic-api/pkg/util/errorutil"
)

func TestAmountAcceptsNumberOrString(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Amount
		err  bool
	}{
		{"number", `{"precio_costo": 350.50}`, "350.50", false},
		{"integer", `{"precio_costo": 0}`, "0", false},
		{"string", `{"precio_costo": "120.75"}`, "120.75", false},
		{"bool", `{"precio_costo": true}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AppointmentUpdateRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, req.Cost)
			assert.Equal(t, tt.want, *req.Cost)
			assert.Equal(t, string(tt.want), *req.CostString())
		})
	}
}

func TestOptionalIDDistinguishesNullFromAbsent(t *testing.T) {
	var absent UserUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"nombre": "Ana"}`), &absent))
	assert.False(t, absent.PatientID.Set)
	assert.False(t, absent.Patch().PatientID.Set)

	var cleared UserUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id_paciente": null}`), &cleared))
	assert.True(t, cleared.PatientID.Set)
	assert.Nil(t, cleared.PatientID.Value)

	var linked UserUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id_doctor": 7}`), &linked))
	patch := linked.Patch()
	assert.True(t, patch.DoctorID.Set)
	require.NotNil(t, patch.DoctorID.ID)
	assert.Equal(t, 7, *patch.DoctorID.ID)
}

func TestValidateReportsFirstMissingField(t *testing.T) {
	var req AppointmentCreateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"id_paciente": 1, "hora": "10:00:00"}`), &req))

	err := Validate(&req)
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, "El campo id_doctor es requerido", domainErr.Message)
	assert.Equal(t, "id_doctor", domainErr.Details["campo"])
}

func TestValidateAcceptsExplicitZeroValues(t *testing.T) {
	var req AppointmentCreateRequest
	body := `{"id_paciente": 1, "id_doctor": 2, "fecha": "2024-01-01", "hora": "08:00:00", "motivo": "", "precio_costo": 0}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.NoError(t, Validate(&req))
}

func TestValidateLogin(t *testing.T) {
	var req LoginRequest
	require.NoError(t, json.Unmarshal([]byte(`{"password": "x"}`), &req))
	assert.True(t, apperrors.IsCode(Validate(&req), apperrors.CodeValidation))
}
