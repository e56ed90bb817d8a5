package importer

import (
	"encoding/json"
	"fmt"
)

// Parse reads a legacy export. Patients always live under "patients".
// Orders live under "orders" in current exports; older files used
// arbitrary key names, so when "orders" is absent we fall back to
// scanning every top-level array for elements carrying a patientId field.
func Parse(data []byte) (*Backup, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid backup file: %w", err)
	}

	patientsRaw, ok := raw["patients"]
	if !ok {
		return nil, fmt.Errorf("backup has no patients array")
	}
	b := &Backup{}
	if err := json.Unmarshal(patientsRaw, &b.Patients); err != nil {
		return nil, fmt.Errorf("invalid patients array: %w", err)
	}

	if ordersRaw, ok := raw["orders"]; ok {
		if err := json.Unmarshal(ordersRaw, &b.Orders); err != nil {
			return nil, fmt.Errorf("invalid orders array: %w", err)
		}
		return b, nil
	}

	for key, msg := range raw {
		if key == "patients" {
			continue
		}
		var probe []map[string]json.RawMessage
		if err := json.Unmarshal(msg, &probe); err != nil {
			continue
		}
		if len(probe) == 0 {
			continue
		}
		if _, hasRef := probe[0]["patientId"]; !hasRef {
			continue
		}
		if err := json.Unmarshal(msg, &b.Orders); err != nil {
			return nil, fmt.Errorf("invalid order array under %q: %w", key, err)
		}
		return b, nil
	}
	// No order array is fine; patient-only backups exist.
	return b, nil
}
