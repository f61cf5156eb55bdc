package engine

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slatewise/parlayforge/internal/rules"
)

func loadTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "slate_2026_01_12.json"))
	require.NoError(t, err)
	snap, err := ParseSnapshot(data)
	require.NoError(t, err)
	return snap
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := loadTestSnapshot(t)

	encoded, err := snap.Encode()
	require.NoError(t, err)

	reparsed, err := ParseSnapshot(encoded)
	require.NoError(t, err)

	reencoded, err := reparsed.Encode()
	require.NoError(t, err)

	assert.Equal(t, encoded, reencoded, "snapshot must round-trip losslessly")
	assert.Equal(t, snap.SlateDate, reparsed.SlateDate)
	assert.Len(t, reparsed.Candidates, 3)

	// Nullable fields survive the round trip
	require.NotNil(t, reparsed.Candidates[0].HitRate)
	assert.Equal(t, 0.62, *reparsed.Candidates[0].HitRate)
	assert.Nil(t, reparsed.Candidates[2].HitRate)
	require.NotNil(t, reparsed.Candidates[2].SampleSize)
	assert.Equal(t, 6, *reparsed.Candidates[2].SampleSize)
}

func TestParseSnapshot_Invalid(t *testing.T) {
	_, err := ParseSnapshot([]byte("{not json"))
	assert.Error(t, err)
}

// TestGoldenSnapshotReplay replays a captured slate through the builder and
// pins the exact selection, ordering, and scores. Any change to filter or
// scoring semantics shows up here first.
func TestGoldenSnapshotReplay(t *testing.T) {
	snap := loadTestSnapshot(t)
	preset, ok := rules.PresetByName(snap.PresetID)
	require.True(t, ok)

	builder := NewBuilder(nil)
	output := builder.Build(snap, preset)

	require.Len(t, output.Legs, 3)
	assert.Equal(t, "Domantas Sabonis", output.Legs[0].Pick.Player)
	assert.Equal(t, "Luka Doncic", output.Legs[1].Pick.Player)
	assert.Equal(t, "Marcus Smart", output.Legs[2].Pick.Player)

	// Pattern scores pinned by hand: glass cleaner 2+3+2+2, elite scorer
	// 2+3+2+2, cold shooter 2+3+2+2+1+4.
	assert.Equal(t, 9.0, output.Legs[0].PatternScore)
	assert.Equal(t, 9.0, output.Legs[1].PatternScore)
	assert.Equal(t, 14.0, output.Legs[2].PatternScore)

	// Final scores under the balanced preset, computed by hand
	assert.InDelta(t, 3.9945, output.Legs[0].Breakdown.Total, 1e-9)
	assert.InDelta(t, 4.0030, output.Legs[1].Breakdown.Total, 1e-9)
	assert.InDelta(t, 5.1750, output.Legs[2].Breakdown.Total, 1e-9)

	// Smart has no reliability signal and a thin sample: both penalties show
	assert.Equal(t, rules.PresetBalanced.MissingReliabilityPenalty, output.Legs[2].Breakdown.MissingPenalty)
	assert.Equal(t, -0.5, output.Legs[2].Breakdown.SamplePenalty)

	// Replaying the same snapshot produces byte-identical output
	again := builder.Build(snap, preset)
	firstJSON, err := json.Marshal(output)
	require.NoError(t, err)
	againJSON, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, againJSON)
}
