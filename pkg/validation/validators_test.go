package validation

import (
	"strings"
	"testing"

	"github.com/metapub/go-meta-api-wrapper/pkg/types"
)

func TestIsValidGraphID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"17841400000000000", true},
		{"12345", true},
		{"123_456", true},
		{"", false},
		{"abc123", false},
		{"123_456_789", false},
		{"12345 ", false},
	}
	for _, tt := range tests {
		if got := IsValidGraphID(tt.id); got != tt.want {
			t.Errorf("IsValidGraphID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"natgeo", true},
		{"some.account_1", true},
		{"", false},
		{"has space", false},
		{"waytoolongusernamethatkeepsgoingon", false},
		{"semi;colon", false},
	}
	for _, tt := range tests {
		if got := IsValidUsername(tt.name); got != tt.want {
			t.Errorf("IsValidUsername(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsValidMetric(t *testing.T) {
	tests := []struct {
		metric string
		want   bool
	}{
		{"reach", true},
		{"total_interactions", true},
		{"days_28", true},
		{"", false},
		{"Reach", false},
		{"reach,impressions", false},
	}
	for _, tt := range tests {
		if got := IsValidMetric(tt.metric); got != tt.want {
			t.Errorf("IsValidMetric(%q) = %v, want %v", tt.metric, got, tt.want)
		}
	}
}

func TestValidateUserTag(t *testing.T) {
	if err := ValidateUserTag(types.UserTag{Username: "natgeo", X: 0.5, Y: 0.5}); err != nil {
		t.Errorf("valid tag rejected: %v", err)
	}

	tests := []struct {
		name string
		tag  types.UserTag
	}{
		{"missing username", types.UserTag{X: 0.5, Y: 0.5}},
		{"bad username", types.UserTag{Username: "has space", X: 0.5, Y: 0.5}},
		{"x out of range", types.UserTag{Username: "natgeo", X: 1.5, Y: 0.5}},
		{"y negative", types.UserTag{Username: "natgeo", X: 0.5, Y: -0.1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateUserTag(tt.tag); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestValidateUserTagsReportsIndex(t *testing.T) {
	tags := []types.UserTag{
		{Username: "natgeo", X: 0.1, Y: 0.1},
		{Username: "", X: 0.2, Y: 0.2},
	}
	err := ValidateUserTags(tags)
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); !strings.Contains(got, "index 1") {
		t.Errorf("error %q does not name the offending index", got)
	}
}

func TestValidateMetrics(t *testing.T) {
	if err := ValidateMetrics([]string{"reach", "impressions"}); err != nil {
		t.Errorf("valid metrics rejected: %v", err)
	}
	if err := ValidateMetrics([]string{"reach", "not a metric"}); err == nil {
		t.Error("expected an error")
	}
}
