package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDamageReportValidate(t *testing.T) {
	report := &DamageReport{
		ItemSKU:        "SKU-1",
		CreatedByID:    "user-42",
		CreatedByEmail: "reporter@example.com",
		Status:         StatusPending,
	}
	assert.NoError(t, report.Validate())

	report.ItemSKU = ""
	assert.Error(t, report.Validate(), "empty SKU must not validate")

	report.ItemSKU = "SKU-1"
	report.Status = "OPEN"
	assert.Error(t, report.Validate(), "status outside the enum must not validate")
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range ReportStatuses {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("pending"))
	assert.False(t, IsValidStatus(""))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"pending to manual", StatusPending, StatusManual, true},
		{"same decision is idempotent", StatusConfirmed, StatusConfirmed, true},
		{"terminal states never reopen", StatusConfirmed, StatusPending, false},
		{"no cross-terminal moves", StatusRejected, StatusManual, false},
		{"unknown target", StatusPending, "OPEN", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	doc := JSON(`{"gps":{"latitude":37.7,"longitude":-122.4}}`)

	val, err := doc.Value()
	require.NoError(t, err)
	assert.Equal(t, string(doc), val)

	var scanned JSON
	require.NoError(t, scanned.Scan(val))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(scanned, &decoded))
	gps := decoded["gps"].(map[string]any)
	assert.InDelta(t, 37.7, gps["latitude"].(float64), 0.0001)
}

func TestJSONScanNil(t *testing.T) {
	var doc JSON
	require.NoError(t, doc.Scan(nil))
	assert.Equal(t, JSON("{}"), doc)
}

func TestJSONValueInvalid(t *testing.T) {
	doc := JSON(`{"broken":`)
	val, err := doc.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", val)
}
