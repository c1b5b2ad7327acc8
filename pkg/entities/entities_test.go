package entities

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/dtnitsch/docmeta/models"
)

func TestGroup(t *testing.T) {
	tests := []struct {
		name string
		in   []Entity
		want map[string][]string
	}{
		{
			name: "duplicates collapse",
			in:   []Entity{{"PERSON", "Ann"}, {"PERSON", "Ann"}, {"ORG", "Acme"}},
			want: map[string][]string{"PERSON": {"Ann"}, "ORG": {"Acme"}},
		},
		{
			name: "values sorted",
			in:   []Entity{{"GPE", "Paris"}, {"GPE", "Berlin"}, {"GPE", "Oslo"}},
			want: map[string][]string{"GPE": {"Berlin", "Oslo", "Paris"}},
		},
		{
			name: "blank values skipped",
			in:   []Entity{{"PERSON", "  "}, {"", "Nobody"}},
			want: map[string][]string{},
		},
		{
			name: "empty",
			in:   nil,
			want: map[string][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Group(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Group() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDominant(t *testing.T) {
	tests := []struct {
		name    string
		grouped map[string][]string
		want    string
	}{
		{"none", map[string][]string{}, models.NoEntityType},
		{"nil", nil, models.NoEntityType},
		{"most values wins", map[string][]string{"ORG": {"Acme"}, "PERSON": {"Ann", "Bob"}}, "PERSON"},
		{"tie goes to first label", map[string][]string{"PERSON": {"Ann"}, "GPE": {"Oslo"}, "ORG": {"Acme"}}, "GPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dominant(tt.grouped); got != tt.want {
				t.Errorf("Dominant() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		n           int
		want        string
		wantPartial bool
	}{
		{"shorter", "hello", 10, "hello", false},
		{"exact", "hello", 5, "hello", false},
		{"cut", "hello world", 5, "hello", true},
		{"multibyte", "ééééé", 3, "ééé", true},
		{"empty", "", 3, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, partial := Window(tt.text, tt.n)
			if got != tt.want || partial != tt.wantPartial {
				t.Errorf("Window(%q, %d) = %q, %v; want %q, %v", tt.text, tt.n, got, partial, tt.want, tt.wantPartial)
			}
		})
	}

	long := strings.Repeat("a", DefaultWindow+10)
	if got, partial := Window(long, 0); len(got) != DefaultWindow || !partial {
		t.Errorf("default window returned %d chars, partial=%v", len(got), partial)
	}
}

func TestProseRecognizer_Empty(t *testing.T) {
	got, err := NewProseRecognizer().Recognize(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Recognize() failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no entities", got)
	}
}
