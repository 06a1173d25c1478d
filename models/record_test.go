package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRecords_RoundTrip(t *testing.T) {
	in := Records{
		&DivisionRecord{AuthNumber: "12345", Address: "100 Main St", CleaningTime: "2h", Status: "Posted"},
		&FutureRecord{FutureAction: true, AuthNumber: "A-1", Address: "9 Oak Ave", Status: "Pending"},
		&MaintenanceRecord{IDTeam: "T4", Address: "5 Elm St", Comments: "Brush"},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out Records
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	again, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("field order changed:\n%s\n%s", again, data)
	}
}

func TestRecords_FieldOrder(t *testing.T) {
	data, err := json.Marshal(Records{&MaintenanceRecord{IDTeam: "T1"}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"idTeam":"T1","address":"","location":"","comments":"","division":"","status":""}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}

func TestRecords_EmptyAndNull(t *testing.T) {
	var nilRecords Records
	data, err := json.Marshal(nilRecords)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Marshal(nil) = %s, want []", data)
	}

	var out Records
	if err := json.Unmarshal([]byte("null"), &out); err != nil {
		t.Fatalf("Unmarshal(null) error = %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("Unmarshal(null) = %#v, want empty list", out)
	}
}

func TestActivity(t *testing.T) {
	rec := &MaintenanceRecord{IDTeam: "T4", Address: "5 Elm St", Status: "Done"}
	got := rec.Activity()
	if got.IDTeam != "T4" || got.Address != "5 Elm St" || got.Status != "Done" || got.AuthNumber != "" {
		t.Errorf("Activity() = %+v", got)
	}
	if rec.Mode() != ModeMaintenance {
		t.Errorf("Mode() = %v", rec.Mode())
	}
}
