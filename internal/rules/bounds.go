package rules

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ZoneBounds is the safe operating envelope for one grid zone. The rule
// engine needs these even when no model artifacts load, so they ship as a
// plain JSON file next to the models rather than inside a model bundle.
type ZoneBounds struct {
	VoltageMin float64 `json:"voltage_min"`
	VoltageMax float64 `json:"voltage_max"`
	CurrentMin float64 `json:"current_min"`
	CurrentMax float64 `json:"current_max"`
	PowerMin   float64 `json:"power_min"`
	PowerMax   float64 `json:"power_max"`
}

// BoundsTable resolves per-zone bounds with a shared default for zones that
// have no explicit entry.
type BoundsTable struct {
	Default ZoneBounds
	Zones   map[int]ZoneBounds
}

// ForZone returns the bounds for a zone, falling back to the default
// envelope when the zone has no entry of its own.
func (t BoundsTable) ForZone(zoneID int) ZoneBounds {
	if b, ok := t.Zones[zoneID]; ok {
		return b
	}
	return t.Default
}

// DefaultBounds is the 230V-nominal envelope used when no bounds file is
// present.
func DefaultBounds() ZoneBounds {
	return ZoneBounds{
		VoltageMin: 207.0,
		VoltageMax: 253.0,
		CurrentMin: 0.0,
		CurrentMax: 120.0,
		PowerMin:   0.0,
		PowerMax:   300.0,
	}
}

type boundsFile struct {
	Default *ZoneBounds           `json:"default"`
	Zones   map[string]ZoneBounds `json:"zones"`
}

// LoadBounds reads a zone bounds file. A missing file is not an error: the
// rule engine must stay available regardless of what is on disk, so it
// degrades to the built-in default envelope.
func LoadBounds(path string) BoundsTable {
	table := BoundsTable{
		Default: DefaultBounds(),
		Zones:   make(map[int]ZoneBounds),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read zone bounds file, using defaults")
		}
		return table
	}

	var f boundsFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to parse zone bounds file, using defaults")
		return table
	}

	if f.Default != nil {
		table.Default = *f.Default
	}
	for key, b := range f.Zones {
		zoneID, err := strconv.Atoi(key)
		if err != nil {
			log.Warn().Str("zone", key).Msg("Skipping non-numeric zone key in bounds file")
			continue
		}
		table.Zones[zoneID] = b
	}

	log.Info().Int("zones", len(table.Zones)).Str("path", path).Msg("Loaded zone bounds")
	return table
}

// Validate reports nonsensical envelopes (min above max). Used at startup to
// surface configuration mistakes without refusing to serve.
func (b ZoneBounds) Validate() error {
	if b.VoltageMin > b.VoltageMax {
		return errors.Errorf("voltage bounds inverted: %f > %f", b.VoltageMin, b.VoltageMax)
	}
	if b.CurrentMin > b.CurrentMax {
		return errors.Errorf("current bounds inverted: %f > %f", b.CurrentMin, b.CurrentMax)
	}
	if b.PowerMin > b.PowerMax {
		return errors.Errorf("power bounds inverted: %f > %f", b.PowerMin, b.PowerMax)
	}
	return nil
}
