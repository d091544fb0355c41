package risk

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"
)

// HistoryReader provides the trailing approval history of policy-engine
// decisions for the compliance component. Implementations live outside the
// engine (see pkg/history).
type HistoryReader interface {
	// ApprovalStats returns how many decisions since the given time were
	// approvals, and how many decisions there were in total. A toolID of ""
	// means all tools.
	ApprovalStats(ctx context.Context, toolID string, since time.Time) (approved, total int, err error)
}

// Config contains configuration for the Scorer.
type Config struct {
	// HistoryTimeout bounds the compliance-history lookup.
	// Default: 2 seconds.
	HistoryTimeout time.Duration

	// HistoryWindow is how far back the compliance lookup reaches.
	// Default: 30 days.
	HistoryWindow time.Duration
}

// DefaultConfig returns the default scorer configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryTimeout: 2 * time.Second,
		HistoryWindow:  30 * 24 * time.Hour,
	}
}

// Scorer computes composite risk scores from telemetry batches.
// Scoring is a pure computation except for the compliance-history lookup,
// which is timeout-bounded and failure-tolerant. Independent calls are safe
// to run concurrently.
type Scorer struct {
	history HistoryReader
	config  *Config
	logger  *slog.Logger

	// now is the clock, overridable in tests.
	now func() time.Time
}

// NewScorer creates a risk scorer. The history reader may be nil; the
// compliance component then always uses its moderate default.
func NewScorer(history HistoryReader, config *Config, logger *slog.Logger) *Scorer {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scorer{
		history: history,
		config:  config,
		logger:  logger.With("component", "risk.scorer"),
		now:     time.Now,
	}
}

// Severity weights per atom.
var severityWeights = map[Severity]float64{
	SeverityInfo:      0,
	SeverityWarning:   10,
	SeverityViolation: 25,
	SeverityCritical:  40,
}

// Regional weighting multipliers.
var regionalWeights = map[string]float64{
	"EU":    1.2,
	"US":    1.0,
	"APAC":  0.9,
	"other": 0.9,
}

// Score computes the composite risk score for one telemetry batch.
// It never returns an error: collaborator failures degrade to conservative
// defaults and the score is always computable from the atoms alone.
func (s *Scorer) Score(ctx context.Context, atoms []Atom, opts Options) *Score {
	timeWindow := opts.TimeWindow
	if timeWindow == "" {
		timeWindow = "24h"
	}
	region := opts.Region
	if region == "" {
		region = "US"
	}
	multiplier, ok := regionalWeights[region]
	if !ok {
		multiplier = regionalWeights["other"]
	}

	breakdown := Breakdown{
		Frequency:  frequencyRisk(len(atoms), timeWindow),
		Severity:   severityRisk(atoms),
		Pattern:    patternRisk(atoms),
		Compliance: s.complianceRisk(ctx, opts.ToolID),
	}

	baseTotal := breakdown.Frequency + breakdown.Severity + breakdown.Pattern + breakdown.Compliance
	total := int(math.Round(float64(baseTotal) * multiplier))
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	factors := riskFactors(breakdown, atoms)

	score := &Score{
		Total:           total,
		Breakdown:       breakdown,
		RiskLevel:       levelFor(total),
		Factors:         factors,
		Recommendations: recommendations(total, factors),
		Metadata: Metadata{
			AtomsAnalyzed: len(atoms),
			TimeWindow:    timeWindow,
			Region:        region,
			ToolID:        opts.ToolID,
		},
	}

	s.logger.Debug("risk score calculated",
		"total", score.Total,
		"risk_level", score.RiskLevel,
		"atoms_analyzed", len(atoms),
	)

	return score
}

// levelFor maps a total score onto the coarse risk level.
func levelFor(total int) Level {
	switch {
	case total >= 81:
		return LevelCritical
	case total >= 61:
		return LevelHigh
	case total >= 31:
		return LevelMedium
	default:
		return LevelLow
	}
}

// frequencyRisk scores event volume against threshold bands (0-25).
func frequencyRisk(eventCount int, timeWindow string) int {
	hours := windowHours(timeWindow)
	eventsPerHour := float64(eventCount) / hours

	switch {
	case eventsPerHour > 100:
		return 25
	case eventsPerHour > 50:
		return 20
	case eventsPerHour > 20:
		return 15
	case eventsPerHour > 10:
		return 10
	case eventsPerHour > 5:
		return 5
	default:
		return 0
	}
}

// severityRisk scores the severity-weighted average over the batch (0-40).
func severityRisk(atoms []Atom) int {
	var weighted float64
	for _, atom := range atoms {
		weighted += severityWeights[normalizeSeverity(atom.Severity)]
	}

	divisor := len(atoms)
	if divisor < 1 {
		divisor = 1
	}

	score := int(math.Round(weighted / float64(divisor)))
	if score > 40 {
		score = 40
	}
	return score
}

func normalizeSeverity(s Severity) Severity {
	if s == "" {
		return SeverityInfo
	}
	return s
}

// patternChunks is the fixed number of contiguous chunks the batch is split
// into for pattern detection. This bounds the loop regardless of input size.
const patternChunks = 5

// patternRisk detects rate spikes and increasing trends (0-20).
// Batches below 10 atoms carry no pattern signal.
func patternRisk(atoms []Atom) int {
	if len(atoms) < 10 {
		return 0
	}

	sorted := make([]Atom, len(atoms))
	copy(sorted, atoms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	// Chunk rates: events per elapsed hour within each chunk, with elapsed
	// floored to one hour to avoid division blow-ups on dense bursts.
	chunkSize := len(sorted) / patternChunks
	rates := make([]float64, 0, patternChunks)
	for i := 0; i < patternChunks && i*chunkSize < len(sorted); i++ {
		chunk := sorted[i*chunkSize : (i+1)*chunkSize]
		if len(chunk) < 2 {
			continue
		}
		hours := chunk[len(chunk)-1].Timestamp.Sub(chunk[0].Timestamp).Hours()
		if hours < 1 {
			hours = 1
		}
		rates = append(rates, float64(len(chunk))/hours)
	}

	if len(rates) < 2 {
		return 0
	}

	var sum float64
	for _, rate := range rates {
		sum += rate
	}
	avgRate := sum / float64(len(rates))

	hasSpike := false
	for _, rate := range rates {
		if rate > avgRate*2 {
			hasSpike = true
			break
		}
	}

	isIncreasing := true
	for i := 1; i < len(rates); i++ {
		if rates[i] < rates[i-1]*0.8 {
			isIncreasing = false
			break
		}
	}

	score := 0
	if hasSpike {
		score += 12
	}
	if isIncreasing {
		score += 8
	}
	if score > 20 {
		score = 20
	}
	return score
}

// moderateComplianceRisk is the default compliance contribution used when no
// history is available. Missing history must never fail the score.
const moderateComplianceRisk = 5

// complianceRisk scores the trailing approval rate for the tool (0-15).
// Lookup failures and empty histories degrade to the moderate default.
func (s *Scorer) complianceRisk(ctx context.Context, toolID string) int {
	if s.history == nil {
		return moderateComplianceRisk
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.config.HistoryTimeout)
	defer cancel()

	since := s.now().Add(-s.config.HistoryWindow)
	approved, total, err := s.history.ApprovalStats(lookupCtx, toolID, since)
	if err != nil {
		s.logger.Warn("compliance history lookup failed, using default",
			"tool_id", toolID,
			"error", err,
		)
		return moderateComplianceRisk
	}
	if total == 0 {
		return moderateComplianceRisk
	}

	approvalRate := float64(approved) / float64(total)
	switch {
	case approvalRate > 0.9:
		return 0
	case approvalRate > 0.75:
		return 5
	case approvalRate > 0.5:
		return 10
	default:
		return 15
	}
}

// Materiality thresholds above which a component becomes a surfaced factor.
const (
	frequencyFactorThreshold  = 15
	severityFactorThreshold   = 25
	patternFactorThreshold    = 10
	complianceFactorThreshold = 10
)

// maxFactors caps the surfaced factor list.
const maxFactors = 5

// riskFactors surfaces the materially contributing components, highest
// contribution first.
func riskFactors(breakdown Breakdown, atoms []Atom) []Factor {
	factors := make([]Factor, 0, 4)

	if breakdown.Frequency > frequencyFactorThreshold {
		factors = append(factors, Factor{
			Category:     "frequency",
			Contribution: breakdown.Frequency,
			Description:  describeFrequency(len(atoms)),
		})
	}

	if breakdown.Severity > severityFactorThreshold {
		criticalCount := 0
		for _, atom := range atoms {
			if atom.Severity == SeverityCritical {
				criticalCount++
			}
		}
		factors = append(factors, Factor{
			Category:     "severity",
			Contribution: breakdown.Severity,
			Description:  describeCritical(criticalCount),
		})
	}

	if breakdown.Pattern > patternFactorThreshold {
		factors = append(factors, Factor{
			Category:     "pattern",
			Contribution: breakdown.Pattern,
			Description:  "Anomalous usage patterns or spikes detected",
		})
	}

	if breakdown.Compliance > complianceFactorThreshold {
		factors = append(factors, Factor{
			Category:     "compliance",
			Contribution: breakdown.Compliance,
			Description:  "Poor historical compliance record",
		})
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Contribution > factors[j].Contribution
	})
	if len(factors) > maxFactors {
		factors = factors[:maxFactors]
	}
	return factors
}

func describeFrequency(atomCount int) string {
	return "High event volume detected (" + strconv.Itoa(atomCount) + " events)"
}

func describeCritical(criticalCount int) string {
	return strconv.Itoa(criticalCount) + " critical violations detected"
}

// maxRecommendations caps the recommendation list.
const maxRecommendations = 5

// recommendations builds the level headline plus one action per triggered
// factor category, deduplicated and capped.
func recommendations(total int, factors []Factor) []string {
	recs := make([]string, 0, maxRecommendations)

	switch {
	case total >= 81:
		recs = append(recs,
			"CRITICAL: Escalate to security team immediately",
			"Suspend tool access pending investigation",
		)
	case total >= 61:
		recs = append(recs,
			"HIGH: Require immediate policy review",
			"Implement additional monitoring and alerts",
		)
	case total >= 31:
		recs = append(recs,
			"MEDIUM: Schedule policy compliance review",
			"Increase audit frequency for this tool",
		)
	default:
		recs = append(recs, "LOW: Continue standard monitoring")
	}

	for _, factor := range factors {
		switch factor.Category {
		case "frequency":
			recs = append(recs, "Consider rate limiting or usage quotas")
		case "severity":
			recs = append(recs, "Review and strengthen approval workflows")
		case "pattern":
			recs = append(recs, "Investigate anomalous usage patterns")
		case "compliance":
			recs = append(recs, "Provide additional compliance training")
		}
	}

	seen := make(map[string]struct{}, len(recs))
	deduped := recs[:0]
	for _, rec := range recs {
		if _, ok := seen[rec]; ok {
			continue
		}
		seen[rec] = struct{}{}
		deduped = append(deduped, rec)
	}

	if len(deduped) > maxRecommendations {
		deduped = deduped[:maxRecommendations]
	}
	return deduped
}
