package ml

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Artifact file names under the models directory. The layout matches the
// export side: models/physical/* and models/cyber/*.
const (
	physicalModelsFile   = "physical/zone_models.json"
	physicalScalersFile  = "physical/zone_scalers.json"
	cyberModelFile       = "cyber/rf_model.json"
	cyberScalerFile      = "cyber/scaler.json"
	cyberEncodersFile    = "cyber/encoders.json"
	cyberAutoencoderFile = "cyber/seq_autoencoder.json"
)

// ZoneModel is the fitted scaler + detector pair for one grid zone.
type ZoneModel struct {
	Scaler   *StandardScaler
	Detector *Forest
}

// HybridCyberModel is the global cyber-domain bundle: feature scaler,
// classifier, per-column categorical encoders and an optional sequence
// autoencoder. Encoders may be partial; missing columns degrade to a neutral
// code at inference time.
type HybridCyberModel struct {
	Scaler      *StandardScaler
	Classifier  *Forest
	Encoders    map[string]*LabelEncoder
	Autoencoder *SequenceAutoencoder
}

// Encoder looks up the fitted encoder for a categorical column.
func (m *HybridCyberModel) Encoder(column string) (*LabelEncoder, bool) {
	enc, ok := m.Encoders[column]
	return enc, ok
}

// Registry holds every loaded model. It is constructed exactly once at
// process start and never mutated afterwards, so concurrent requests read it
// without locking.
type Registry struct {
	zones map[int]ZoneModel
	cyber *HybridCyberModel
}

// LoadRegistry loads all model artifacts under dir. The two domains load
// independently: a failure on one side logs a warning and leaves that domain
// degraded while the other stays fully functional. LoadRegistry itself never
// fails; a registry with nothing loaded is a valid state.
func LoadRegistry(dir string) *Registry {
	reg := &Registry{zones: make(map[int]ZoneModel)}

	zones, err := loadPhysical(dir)
	if err != nil {
		log.Warn().Err(err).Msg("Physical model artifacts unavailable, zone inference disabled")
	} else {
		reg.zones = zones
		log.Info().Int("zones", len(zones)).Msg("Loaded physical zone models")
	}

	cyber, err := loadCyber(dir)
	if err != nil {
		log.Warn().Err(err).Msg("Cyber model artifacts unavailable, hybrid inference disabled")
	} else {
		reg.cyber = cyber
		log.Info().
			Int("encoders", len(cyber.Encoders)).
			Bool("autoencoder", cyber.Autoencoder != nil).
			Msg("Loaded hybrid cyber model")
	}

	return reg
}

// Zone returns the model for a zone. The second return is false for unknown
// zones, an expected state rather than an error.
func (r *Registry) Zone(zoneID int) (ZoneModel, bool) {
	m, ok := r.zones[zoneID]
	return m, ok
}

// Cyber returns the hybrid model if its artifacts loaded.
func (r *Registry) Cyber() (*HybridCyberModel, bool) {
	if r.cyber == nil {
		return nil, false
	}
	return r.cyber, true
}

// ZoneCount reports how many zone models loaded. Used by health reporting.
func (r *Registry) ZoneCount() int {
	return len(r.zones)
}

func loadPhysical(dir string) (map[int]ZoneModel, error) {
	var forests map[string]*Forest
	if err := loadJSON(filepath.Join(dir, physicalModelsFile), &forests); err != nil {
		return nil, err
	}

	var scalers map[string]*StandardScaler
	if err := loadJSON(filepath.Join(dir, physicalScalersFile), &scalers); err != nil {
		return nil, err
	}

	zones := make(map[int]ZoneModel, len(forests))
	for key, forest := range forests {
		zoneID, err := strconv.Atoi(key)
		if err != nil {
			log.Warn().Str("zone", key).Msg("Skipping non-numeric zone key in model artifact")
			continue
		}
		scaler, ok := scalers[key]
		if !ok {
			log.Warn().Int("zone", zoneID).Msg("Zone has a detector but no scaler, skipping")
			continue
		}
		if err := forest.Validate(); err != nil {
			log.Warn().Err(err).Int("zone", zoneID).Msg("Zone detector artifact invalid, skipping")
			continue
		}
		zones[zoneID] = ZoneModel{Scaler: scaler, Detector: forest}
	}
	return zones, nil
}

func loadCyber(dir string) (*HybridCyberModel, error) {
	model := &HybridCyberModel{Encoders: make(map[string]*LabelEncoder)}

	var classifier Forest
	if err := loadJSON(filepath.Join(dir, cyberModelFile), &classifier); err != nil {
		return nil, err
	}
	if err := classifier.Validate(); err != nil {
		return nil, errors.Wrap(err, "cyber classifier artifact invalid")
	}
	model.Classifier = &classifier

	var scaler StandardScaler
	if err := loadJSON(filepath.Join(dir, cyberScalerFile), &scaler); err != nil {
		return nil, err
	}
	model.Scaler = &scaler

	// Encoders and the autoencoder are optional parts of the bundle.
	var encoders map[string]*LabelEncoder
	if err := loadJSON(filepath.Join(dir, cyberEncodersFile), &encoders); err != nil {
		log.Warn().Err(err).Msg("Cyber encoders unavailable, falling back to neutral codes")
	} else {
		for _, enc := range encoders {
			enc.buildIndex()
		}
		model.Encoders = encoders
	}

	var autoencoder SequenceAutoencoder
	if err := loadJSON(filepath.Join(dir, cyberAutoencoderFile), &autoencoder); err == nil {
		model.Autoencoder = &autoencoder
	}

	return model, nil
}

func loadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "failed to parse %s", path)
	}
	return nil
}
