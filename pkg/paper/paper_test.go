package paper

import (
	"encoding/json"
	"math"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  ID
	}{
		{"number", `{"id": 12}`, "12"},
		{"string", `{"id": "abc"}`, "abc"},
		{"zero", `{"id": 0}`, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			if err := json.Unmarshal([]byte(tt.input), &r); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if r.ID != tt.want {
				t.Errorf("ID = %q, want %q", r.ID, tt.want)
			}
		})
	}

	var r Record
	if err := json.Unmarshal([]byte(`{"id": true}`), &r); err == nil {
		t.Error("boolean id should fail")
	}
}

func TestHasPosition(t *testing.T) {
	if !(Record{X: 0.5, Y: 0}).HasPosition() {
		t.Error("finite coordinates should have a position")
	}
	if (Record{X: math.NaN(), Y: 0.5}).HasPosition() {
		t.Error("NaN x should not have a position")
	}
	if (Record{X: 0.5, Y: math.Inf(1)}).HasPosition() {
		t.Error("Inf y should not have a position")
	}
}

func TestHighlightSet(t *testing.T) {
	var empty HighlightSet
	if empty.Active() || empty.Len() != 0 || empty.Has("1") {
		t.Error("zero value should be an inactive empty set")
	}

	h := NewHighlightSet("2", "1", "2")
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
	if !h.Has("1") || h.Has("3") {
		t.Error("membership mismatch")
	}
	if ids := h.IDs(); ids[0] != "1" || ids[1] != "2" {
		t.Errorf("IDs() = %v, want sorted [1 2]", ids)
	}
	if !h.Equal(NewHighlightSet("1", "2")) {
		t.Error("sets with same members should be equal")
	}
	if h.Equal(NewHighlightSet("1")) {
		t.Error("sets with different members should differ")
	}
}

func TestSearch(t *testing.T) {
	records := []Record{
		{ID: "1", Title: "Diffusion Models for Video", Authors: "Ada Lovelace"},
		{ID: "2", Title: "Neural Radiance Fields", Authors: "Alan Turing"},
		{ID: "3", Title: "Point Clouds", Authors: "Grace Hopper, Alan Kay"},
	}

	tests := []struct {
		term string
		want []ID
	}{
		{"diffusion", []ID{"1"}},
		{"ALAN", []ID{"2", "3"}},
		{"", nil},
		{"   ", nil},
		{"nothing-matches", nil},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got := Search(records, tt.term)
			if !got.Equal(NewHighlightSet(tt.want...)) {
				t.Errorf("Search(%q) = %v, want %v", tt.term, got.IDs(), tt.want)
			}
		})
	}
}
