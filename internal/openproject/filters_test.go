package openproject

import (
	"testing"
)

func TestEncodeFilters(t *testing.T) {
	tests := []struct {
		name    string
		filters []Filter
		want    string
	}{
		{
			"empty set",
			nil,
			"",
		},
		{
			"open status",
			[]Filter{FilterOpenStatus()},
			`[{"status":{"operator":"o","values":[]}}]`,
		},
		{
			"equality",
			[]Filter{FilterEq("parent", 12)},
			`[{"parent":{"operator":"=","values":["12"]}}]`,
		},
		{
			"date window",
			[]Filter{FilterBetween("spentOn", "2025-01-06", "2025-01-12")},
			`[{"spentOn":{"operator":"<>d","values":["2025-01-06","2025-01-12"]}}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeFilters(tt.filters)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("encodeFilters = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestListQuery_OmitsZeroPagination(t *testing.T) {
	q, err := listQuery(nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(q) != 0 {
		t.Errorf("query = %v, want empty", q)
	}

	q, err = listQuery(nil, 40, 20)
	if err != nil {
		t.Fatal(err)
	}
	if q.Get("offset") != "40" || q.Get("pageSize") != "20" {
		t.Errorf("query = %v", q)
	}
}

func TestIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want int
	}{
		{"/api/v3/work_packages/42", 42},
		{"/api/v3/users/7", 7},
		{"/api/v3/projects/", 0},
		{"", 0},
		{"/api/v3/statuses/13", 13},
	}
	for _, tt := range tests {
		if got := IDFromHref(tt.href); got != tt.want {
			t.Errorf("IDFromHref(%q) = %d, want %d", tt.href, got, tt.want)
		}
	}
}

func TestIsoHours(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{8, "PT8H"},
		{1.5, "PT1.5H"},
		{0.25, "PT0.25H"},
	}
	for _, tt := range tests {
		if got := isoHours(tt.hours); got != tt.want {
			t.Errorf("isoHours(%v) = %s, want %s", tt.hours, got, tt.want)
		}
	}
}
