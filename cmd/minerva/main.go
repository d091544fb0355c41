// Minerva is a deterministic policy decision engine for AI governance.
//
// It evaluates tool-usage requests against a governance rule catalog,
// computes composite risk scores from usage telemetry, and harmonizes
// policy rule sets across jurisdictions:
//   - Rule-based request evaluation with deterministic outcomes
//   - Composite risk scoring with regional weighting
//   - Policy harmonization with conflict detection
//   - Audit trail and decision history recording
//
// Usage:
//
//	# Start the decision API server with default configuration
//	minerva run
//
//	# Start with a custom configuration file
//	minerva run --config /path/to/config.yaml
//
//	# Evaluate a single request from a file
//	minerva evaluate --input request.json
//
//	# Score a telemetry batch
//	minerva score --input atoms.json --region EU
//
//	# Harmonize two policy rule sets
//	minerva harmonize --input policies.json --strategy strict
//
//	# Show version information
//	minerva version
package main

func main() {
	Execute()
}
