package engine

import (
	"encoding/json"
	"fmt"
)

// ParseSnapshot decodes a frozen slate document. Snapshots are the unit of
// regression testing: a captured snapshot replayed through Build must
// reproduce the original output exactly.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse slate snapshot: %w", err)
	}
	return &snap, nil
}

// Encode serializes the snapshot to its canonical JSON form. encoding/json
// sorts map keys, so the same snapshot always encodes to the same bytes.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode slate snapshot: %w", err)
	}
	return data, nil
}
