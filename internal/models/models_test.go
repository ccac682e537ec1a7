package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nurseryhub/nursery-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRow implements pgx.Row for scan tests
type mockRow struct {
	values []interface{}
	err    error
}

func (m *mockRow) Scan(dest ...interface{}) error {
	if m.err != nil {
		return m.err
	}

	for i, v := range m.values {
		if i >= len(dest) {
			continue
		}

		switch d := dest[i].(type) {
		case *string:
			*d, _ = v.(string)
		case **string:
			if str, ok := v.(string); ok {
				*d = &str
			}
		case *bool:
			*d, _ = v.(bool)
		case *int64:
			*d, _ = v.(int64)
		case *time.Time:
			*d, _ = v.(time.Time)
		case **time.Time:
			if ts, ok := v.(time.Time); ok {
				*d = &ts
			}
		case *models.Gender:
			*d = models.Gender(v.(string))
		case *models.EnrollmentStatus:
			*d = models.EnrollmentStatus(v.(string))
		case *models.DocumentType:
			*d = models.DocumentType(v.(string))
		}
	}
	return nil
}

func TestScanEnrollment(t *testing.T) {
	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	start := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	e, err := models.ScanEnrollment(&mockRow{values: []interface{}{
		"e1", "c1", "Yasmine", "Trabelsi", start, true, true, nil, "pending", nil, created, created,
	}})

	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "Trabelsi", e.ChildLastName)
	assert.Equal(t, start, e.RequestedStartDate)
	assert.True(t, e.LunchAssistanceSelected)
	assert.Nil(t, e.Notes)
	assert.Nil(t, e.StatusChangedAt)
	assert.Equal(t, models.EnrollmentPending, e.Status)
}

func TestScanChild(t *testing.T) {
	c, err := models.ScanChild(&mockRow{values: []interface{}{
		"c1", "Yasmine", "Trabelsi", time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), "female",
		"peanut allergy", "Leila Trabelsi", "+21698123456", time.Now(),
	}})

	require.NoError(t, err)
	assert.Equal(t, models.GenderFemale, c.Gender)
	require.NotNil(t, c.MedicalInfo)
	assert.Equal(t, "peanut allergy", *c.MedicalInfo)
}

func TestScanStoredDocument(t *testing.T) {
	d, err := models.ScanStoredDocument(&mockRow{values: []interface{}{
		"d1", "c1", "ACTE_NAISSANCE", "acte_naissance.pdf", "application/pdf", int64(2048),
		"children/c1/acte_naissance.pdf", "https://s3/acte", time.Now(),
	}})

	require.NoError(t, err)
	assert.Equal(t, models.DocumentActeNaissance, d.DocumentType)
	assert.Equal(t, int64(2048), d.SizeBytes)
	assert.Equal(t, "children/c1/acte_naissance.pdf", d.StorageKey)
}

func TestScan_PropagatesError(t *testing.T) {
	_, err := models.ScanEnrollment(&mockRow{err: errors.New("no rows")})
	assert.Error(t, err)
}

func TestEnrollmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to models.EnrollmentStatus
		want     bool
	}{
		{models.EnrollmentPending, models.EnrollmentApproved, true},
		{models.EnrollmentPending, models.EnrollmentRejected, true},
		{models.EnrollmentPending, models.EnrollmentPending, false},
		{models.EnrollmentApproved, models.EnrollmentPending, true},
		{models.EnrollmentApproved, models.EnrollmentRejected, false},
		{models.EnrollmentRejected, models.EnrollmentApproved, false},
		{models.EnrollmentStatus("archived"), models.EnrollmentPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseDocumentType(t *testing.T) {
	tests := []struct {
		raw    string
		want   models.DocumentType
		wantOK bool
	}{
		{"CARNET_MEDICAL", models.DocumentCarnetMedical, true},
		{"acte_naissance", models.DocumentActeNaissance, true},
		{"Certificat_Medical", models.DocumentCertificatMedical, true},
		{"passport", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := models.ParseDocumentType(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocumentType_Metadata(t *testing.T) {
	for _, dt := range models.AllDocumentTypes {
		assert.True(t, dt.IsValid())
		assert.True(t, dt.Required())
		assert.NotEmpty(t, dt.Keywords())
		assert.NotEqual(t, string(dt), dt.Label())
	}
	assert.False(t, models.DocumentType("OTHER").IsValid())
	assert.Equal(t, "OTHER", models.DocumentType("OTHER").Label())
}
