package synthesizer

import (
	"testing"

	"homelead-workers/internal/query/filter"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Match-all and record numbers
// ==========================

func TestExtract_MatchAll(t *testing.T) {
	for _, u := range []string{
		"total brokers",
		"count of leads",
		"list all properties",
		"all projects",
		"show all lands in Pune",
	} {
		t.Run(u, func(t *testing.T) {
			assert.Equal(t, filter.Filter{}, Extract(u))
		})
	}
}

func TestExtract_RecordNumber(t *testing.T) {
	tests := []struct {
		utterance string
		field     string
		n         int64
	}{
		{"show lead 38", "leadNo", 38},
		{"lead no 12", "leadNo", 12},
		{"lead 7", "leadNo", 7},
		{"property no 12", "propertyNo", 12},
		{"show property 15", "propertyNo", 15},
		{"broker no 5", "brokerNo", 5},
		{"show broker 2", "brokerNo", 2},
		{"project no 7", "projectNo", 7},
		{"Show Project 8", "projectNo", 8},
		{"land no 3", "landNo", 3},
		{"land 4", "landNo", 4},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, filter.RecordNumber(tt.field, tt.n), Extract(tt.utterance))
		})
	}
}

// ==========================
// Signals
// ==========================

func TestExtract_Budget(t *testing.T) {
	tests := []struct {
		utterance string
		max       int64
	}{
		{"properties under 10 lakh", 1000000},
		{"flats within 2 crore", 20000000},
		{"plots for 500k", 500000},
		{"plots for 500 thousand", 500000},
		{"properties around 1 million", 1000000},
		{"properties under 750000", 750000},
		{"properties less than 900000", 900000},
		{"properties upto 300000", 300000},
		{"properties with budget 450000", 450000},
		{"properties with less budget", 1000000},
		{"properties with lower budget", 1000000},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got := Extract(tt.utterance)
			assert.Equal(t, filter.LTE(tt.max), got["maxBudget"])
			assert.NotContains(t, got, "minBudget")
		})
	}
}

func TestExtract_BudgetRange(t *testing.T) {
	got := Extract("properties with budget range 120000 - 1500000")
	assert.Equal(t, filter.Filter{
		"minBudget": filter.GTE(120000),
		"maxBudget": filter.LTE(1500000),
	}, got)
}

func TestExtract_OversizedAmountsSkipped(t *testing.T) {
	tests := []struct {
		utterance string
		field     string
	}{
		{"properties under 99999999999999999999 crore", "maxBudget"},
		{"properties under 922337203686 crore", "maxBudget"},
		{"plots for 99999999999999999999k", "maxBudget"},
		{"budget range 1 - 99999999999999999999", "minBudget"},
		{"budget range 1 - 99999999999999999999", "maxBudget"},
		{"show lead 99999999999999999999", "leadNo"},
	}

	for _, tt := range tests {
		t.Run(tt.utterance+"/"+tt.field, func(t *testing.T) {
			assert.NotContains(t, Extract(tt.utterance), tt.field)
		})
	}
}

func TestExtract_LargestCroreAmountKept(t *testing.T) {
	got := Extract("properties under 922337203685 crore")
	assert.Equal(t, filter.LTE(9223372036850000000), got["maxBudget"])
}

func TestExtract_Signals(t *testing.T) {
	tests := []struct {
		utterance string
		want      filter.Filter
	}{
		{
			"top 5 brokers in Mumbai",
			filter.Filter{"address": filter.Regex("Mumbai")},
		},
		{
			"commercial properties in pune",
			filter.Filter{"propertyType": "Commercial", "address": filter.Regex("Pune")},
		},
		{
			"residential projects",
			filter.Filter{"category": "Residential"},
		},
		{
			"completed projects",
			filter.Filter{"projectStatus": "Completed"},
		},
		{
			"available properties",
			filter.Filter{"propertyStatus": "Available"},
		},
		{
			"converted leads",
			filter.Filter{"leadStatus": "Converted"},
		},
		{
			"which ones are active",
			filter.Filter{"status": "Active"},
		},
		{
			"projects under construction",
			filter.Filter{"projectStatus": "Under Construction"},
		},
		{
			"brokers with 6% commission",
			filter.Filter{"commissionPercent": int64(6)},
		},
		{
			"brokers commission 2%",
			filter.Filter{"commissionPercent": int64(2)},
		},
		{
			"broker with phone 921-343-4545",
			filter.Filter{"phone": "9213434545"},
		},
		{
			"phone 92134 34545",
			filter.Filter{"phone": "9213434545"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.utterance))
		})
	}
}

// ==========================
// Name search
// ==========================

func TestExtract_NameSearch(t *testing.T) {
	tests := []struct {
		utterance string
		want      filter.Filter
	}{
		{"Silverstone Enterprises", filter.Filter{"name": filter.Regex("Silverstone Enterprises")}},
		{"show me Monil", filter.Filter{"name": filter.Regex("Monil")}},
		{"find Sai (Homes)", filter.Filter{"name": filter.Regex(`Sai \(Homes\)`)}},
		{"horizon group", filter.Filter{"name": filter.Regex("Horizon")}},
		{"horizon brokers in delhi", filter.Filter{
			"address": filter.Regex("Delhi"),
			"name":    filter.Regex("Horizon"),
		}},
		{"brokers", filter.Filter{}},
		{"average budget of leads", filter.Filter{}},
		{"top 5 brokers", filter.Filter{}},
		{"what does this long sentence mean", filter.Filter{}},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.utterance))
		})
	}
}
