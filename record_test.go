package poster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadEventRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.yml")
	in := `time: "19:00"
date: "2026-09-12"
title: |-
  Reunión
  EXATEC
  Bonn
venue: Biergarten am Rhein
address: Rheinaustraße 134, Bonn
keywords: summer networking
page: 2
`
	if err := os.WriteFile(path, []byte(in), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadEventRecord(path)
	if err != nil {
		t.Fatal(err)
	}
	want := EventRecord{
		Time:            "19:00",
		Date:            "2026-09-12",
		Title:           "Reunión\nEXATEC\nBonn",
		Venue:           "Biergarten am Rhein",
		Address:         "Rheinaustraße 134, Bonn",
		BackgroundQuery: "summer networking",
		Page:            2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
}

func TestLoadEventRecordMissingFile(t *testing.T) {
	if _, err := LoadEventRecord(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected an error")
	}
}

func TestEventRecordValidate(t *testing.T) {
	valid := EventRecord{Time: "19:00", Date: "2026-09-12", Title: "Reunión"}
	tests := []struct {
		name    string
		mutate  func(r *EventRecord)
		wantErr bool
	}{
		{"valid", func(r *EventRecord) {}, false},
		{"missing title", func(r *EventRecord) { r.Title = "  \n " }, true},
		{"missing time", func(r *EventRecord) { r.Time = "" }, true},
		{"missing date", func(r *EventRecord) { r.Date = "" }, true},
		{"negative page", func(r *EventRecord) { r.Page = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventRecordTitleLines(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  []string
	}{
		{"uppercases lines", "Reunión\nEXATEC\nBonn", []string{"REUNIÓN", "EXATEC", "BONN"}},
		{"drops empty lines", "Reunión\n\n  \nBonn", []string{"REUNIÓN", "BONN"}},
		{"trims whitespace", "  Sommerfest  ", []string{"SOMMERFEST"}},
		{"empty title", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := EventRecord{Title: tt.title}
			if diff := cmp.Diff(tt.want, r.TitleLines()); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestEventRecordText(t *testing.T) {
	r := EventRecord{Time: "19:00", Date: "2026-09-12", Title: "Reunión\nEXATEC\nBonn"}
	if got, want := r.DatetimeText(), "19:00 | 2026-09-12"; got != want {
		t.Errorf("DatetimeText() = %q, want %q", got, want)
	}
	if got, want := r.FirstTitleLine(), "Reunión"; got != want {
		t.Errorf("FirstTitleLine() = %q, want %q", got, want)
	}
	if got, want := r.TitleText(), "Reunión EXATEC Bonn"; got != want {
		t.Errorf("TitleText() = %q, want %q", got, want)
	}
}
