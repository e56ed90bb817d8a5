package importer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Legacy exports come from a pre-relational version of the system. Field
// types are loose: ids and priorities show up as both strings and numbers
// depending on which export produced the file.

// FlexID accepts a JSON string or number and keeps it as a string key for
// the legacy-to-new id mapping.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexID(n.String())
		return nil
	}
	return fmt.Errorf("id must be a string or number")
}

// FlexInt accepts a JSON number or numeric string and remembers whether a
// usable value was present. An absent field or garbage input leaves Valid
// false so normalization can tell "missing" apart from an explicit zero.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			f.Value, f.Valid = v, true
		}
		return nil
	}
	return nil
}

// Ptr returns the value as a pointer, nil when no value was present.
func (f FlexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

type LegacyPhone struct {
	Number   string `json:"number"`
	WhatsApp bool   `json:"whatsapp"`
}

type LegacyPatient struct {
	ID           FlexID        `json:"id"`
	Name         string        `json:"name"`
	BirthDate    string        `json:"birthDate"`
	CNS          string        `json:"cns"`
	Guardian     string        `json:"guardian"`
	Phone        string        `json:"phone"`
	WhatsApp     string        `json:"whatsapp"`
	Phones       []LegacyPhone `json:"phones"`
	Email        string        `json:"email"`
	Municipality string        `json:"municipality"`
	Notes        string        `json:"notes"`
	Status       string        `json:"status"`
}

type LegacyOrder struct {
	ID                  FlexID  `json:"id"`
	PatientID           FlexID  `json:"patientId"`
	Status              string  `json:"status"`
	Priority            FlexInt `json:"priority"`
	PatientType         string  `json:"patientType"`
	Sedation            string  `json:"sedation"`
	RequestingPhysician string  `json:"requestingPhysician"`
	Notes               string  `json:"notes"`
	OrderDate           string  `json:"orderDate"`
	ScheduledDate       string  `json:"scheduledDate"`
	ScheduledTime       string  `json:"scheduledTime"`
}

// Backup is a parsed legacy export.
type Backup struct {
	Patients []LegacyPatient
	Orders   []LegacyOrder
}

// Summary reports an import run. Batch failures accumulate here instead
// of aborting the run.
type Summary struct {
	PatientsCreated int      `json:"patients_created"`
	PatientErrors   int      `json:"patient_errors"`
	OrdersCreated   int      `json:"orders_created"`
	OrderErrors     int      `json:"order_errors"`
	Batches         int      `json:"batches"`
	Errors          []string `json:"errors,omitempty"`
}
