package rules

import (
	"strings"

	"github.com/sanjayishigh/PowerGrid-Anomaly-Detection-and-Prediction/internal/models"
)

// Cyber rule verdicts. SAFE is the baseline carried forward when no rule
// matches and the hybrid model is unavailable or negative.
const (
	VerdictMaliciousOversized = "MALICIOUS_OVERSIZED"
	VerdictBlacklistedIP      = "BLACKLISTED_IP"
	VerdictPossibleDDoS       = "POSSIBLE_DDOS"
	VerdictSafe               = "SAFE"
)

// Heuristic thresholds for the cyber rule chain.
const (
	// oversizedPacketLength is the standard ethernet MTU; anything larger is
	// treated as a crafted packet.
	oversizedPacketLength = 1500.0
	// ddosPacketLength flags large UDP payloads typical of amplification
	// floods.
	ddosPacketLength = 800.0
	// blacklistMarker appears in source addresses seeded by the simulated
	// attacker ranges.
	blacklistMarker = "666"
)

// EvaluateCyber runs the deterministic packet checks in strict priority
// order and short-circuits on the first match. It never consults a model and
// never fails; matched=false means all heuristics passed and the caller may
// proceed to statistical inference.
func EvaluateCyber(p models.PacketObservation) (verdict string, matched bool) {
	if p.PacketLength > oversizedPacketLength {
		return VerdictMaliciousOversized, true
	}
	if strings.Contains(p.SourceIP, blacklistMarker) {
		return VerdictBlacklistedIP, true
	}
	if strings.EqualFold(p.Protocol, "UDP") && p.PacketLength > ddosPacketLength {
		return VerdictPossibleDDoS, true
	}
	return VerdictSafe, false
}
