package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one reconstructed table row, typed by the mode it was read in.
type Record interface {
	Mode() Mode
	// Activity flattens the record into the shared column set used for CSV export.
	Activity() Activity
}

// DivisionRecord is a current-division sweep.
type DivisionRecord struct {
	AuthNumber     string `json:"authNumber"`
	Address        string `json:"address"`
	CrossStreetOne string `json:"crossStreetOne"`
	CrossStreetTwo string `json:"crossStreetTwo"`
	Location       string `json:"location"`
	Comments       string `json:"comments"`
	CleaningTime   string `json:"cleaningTime"`
	Division       string `json:"division"`
	Status         string `json:"status"`
}

// FutureRecord is a future, not yet confirmed, sweep.
type FutureRecord struct {
	FutureAction   bool   `json:"futureAction"`
	AuthNumber     string `json:"authNumber"`
	Address        string `json:"address"`
	CrossStreetOne string `json:"crossStreetOne"`
	CrossStreetTwo string `json:"crossStreetTwo"`
	Location       string `json:"location"`
	Comments       string `json:"comments"`
	Division       string `json:"division"`
	Status         string `json:"status"`
}

// MaintenanceRecord is a maintenance team activity.
type MaintenanceRecord struct {
	IDTeam   string `json:"idTeam"`
	Address  string `json:"address"`
	Location string `json:"location"`
	Comments string `json:"comments"`
	Division string `json:"division"`
	Status   string `json:"status"`
}

// Activity is the union of every record column, in CSV order.
type Activity struct {
	AuthNumber     string `csv:"authNumber"`
	IDTeam         string `csv:"idTeam"`
	Address        string `csv:"address"`
	CrossStreetOne string `csv:"crossStreetOne"`
	CrossStreetTwo string `csv:"crossStreetTwo"`
	Location       string `csv:"location"`
	Comments       string `csv:"comments"`
	CleaningTime   string `csv:"cleaningTime"`
	Division       string `csv:"division"`
	Status         string `csv:"status"`
}

func (r *DivisionRecord) Mode() Mode { return ModeDivision }

func (r *DivisionRecord) Activity() Activity {
	return Activity{
		AuthNumber:     r.AuthNumber,
		Address:        r.Address,
		CrossStreetOne: r.CrossStreetOne,
		CrossStreetTwo: r.CrossStreetTwo,
		Location:       r.Location,
		Comments:       r.Comments,
		CleaningTime:   r.CleaningTime,
		Division:       r.Division,
		Status:         r.Status,
	}
}

func (r *FutureRecord) Mode() Mode { return ModeFuture }

func (r *FutureRecord) Activity() Activity {
	return Activity{
		AuthNumber:     r.AuthNumber,
		Address:        r.Address,
		CrossStreetOne: r.CrossStreetOne,
		CrossStreetTwo: r.CrossStreetTwo,
		Location:       r.Location,
		Comments:       r.Comments,
		Division:       r.Division,
		Status:         r.Status,
	}
}

func (r *MaintenanceRecord) Mode() Mode { return ModeMaintenance }

func (r *MaintenanceRecord) Activity() Activity {
	return Activity{
		IDTeam:   r.IDTeam,
		Address:  r.Address,
		Location: r.Location,
		Comments: r.Comments,
		Division: r.Division,
		Status:   r.Status,
	}
}

// Records is an ordered list of mixed record variants. It decodes each
// element back into its variant by the keys present in the object.
type Records []Record

// MarshalJSON always emits an array, never null.
func (rs Records) MarshalJSON() ([]byte, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Record(rs))
}

func (rs *Records) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*rs = Records{}
		return nil
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode records: %w", err)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return fmt.Errorf("failed to decode records: %w", err)
	}

	out := make(Records, 0, len(elems))
	for i, elem := range elems {
		var rec Record
		switch {
		case has(raw[i], "futureAction"):
			rec = &FutureRecord{}
		case has(raw[i], "idTeam"):
			rec = &MaintenanceRecord{}
		default:
			rec = &DivisionRecord{}
		}
		if err := json.Unmarshal(elem, rec); err != nil {
			return fmt.Errorf("failed to decode record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	*rs = out
	return nil
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}
