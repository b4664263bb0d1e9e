package query_test

import (
	"testing"
	"time"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/query"
	"github.com/staff-portfolio-api/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePatchStaff(t *testing.T) {
	payload := map[string]any{
		"nationality":    "Australian",
		"careerStart":    "2010-05-01",
		"qualifications": []any{"BEng", "MEng"},
	}
	updates, err := query.ValidatePatch(schema.Staff, payload)
	require.NoError(t, err)

	assert.Equal(t, "Australian", updates["nationality"])
	assert.Equal(t, time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC), updates["careerStart"])
	assert.Equal(t, domain.StringList{"BEng", "MEng"}, updates["qualifications"])
}

func TestValidatePatchUnknownKeyAtomic(t *testing.T) {
	// Один недопустимый ключ отклоняет патч целиком
	payload := map[string]any{
		"nationality": "Australian",
		"ShoeSize":    42,
	}
	updates, err := query.ValidatePatch(schema.Staff, payload)
	assert.ErrorIs(t, err, domain.ErrUnknownAttribute)
	assert.Nil(t, updates)
}

func TestValidatePatchImmutableIdentifier(t *testing.T) {
	payload := map[string]any{"StaffID": float64(1)}
	_, err := query.ValidatePatch(schema.Staff, payload)
	assert.ErrorIs(t, err, domain.ErrImmutableField)

	payload = map[string]any{"ProjectCode": float64(5)}
	_, err = query.ValidatePatch(schema.Project, payload)
	assert.ErrorIs(t, err, domain.ErrImmutableField)
}

func TestValidatePatchUnknownBeatsImmutable(t *testing.T) {
	payload := map[string]any{
		"StaffID":  float64(1),
		"ShoeSize": 42,
	}
	_, err := query.ValidatePatch(schema.Staff, payload)
	assert.ErrorIs(t, err, domain.ErrUnknownAttribute)
}

func TestValidatePatchIgnoredFields(t *testing.T) {
	// Поля других подсистем молча отбрасываются
	payload := map[string]any{
		"ClientName": "Globex",
		"imgURL":     []any{"a.png"},
		"Keywords":   "K100;K200",
	}
	updates, err := query.ValidatePatch(schema.Project, payload)
	require.NoError(t, err)

	assert.Equal(t, "Globex", updates["ClientName"])
	assert.NotContains(t, updates, "imgURL")
	assert.NotContains(t, updates, "Keywords")
}

func TestValidatePatchFilterOnlyNotMutable(t *testing.T) {
	// StaffName фильтруем, но не изменяем
	payload := map[string]any{"StaffName": "Mallory"}
	_, err := query.ValidatePatch(schema.Staff, payload)
	assert.ErrorIs(t, err, domain.ErrUnknownAttribute)
}

func TestValidatePatchTypeMismatch(t *testing.T) {
	payload := map[string]any{"Latitude": "far north"}
	_, err := query.ValidatePatch(schema.Project, payload)
	assert.ErrorIs(t, err, domain.ErrUnknownAttribute)
}

func TestValidatePatchNull(t *testing.T) {
	updates, err := query.ValidatePatch(schema.Staff, map[string]any{"valueStatement": nil})
	require.NoError(t, err)
	require.Contains(t, updates, "valueStatement")
	assert.Nil(t, updates["valueStatement"])
}

func TestValidatePatchExperience(t *testing.T) {
	payload := map[string]any{
		"TotalHrs":   float64(12.5),
		"experience": "Lead designer",
	}
	updates, err := query.ValidatePatch(schema.Experience, payload)
	require.NoError(t, err)
	assert.Equal(t, 12.5, updates["TotalHrs"])
	assert.Equal(t, "Lead designer", updates["experience"])

	_, err = query.ValidatePatch(schema.Experience, map[string]any{"experienceID": float64(9)})
	assert.ErrorIs(t, err, domain.ErrImmutableField)
}
