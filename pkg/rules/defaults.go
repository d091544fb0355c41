package rules

import (
	"fmt"
	"strings"
)

// maxFileSizeBytes is the processing limit enforced by the built-in file
// size rule (10 MiB).
const maxFileSizeBytes = 10 * 1024 * 1024

// minDocConfidence is the minimum acceptable document-processing confidence.
const minDocConfidence = 0.7

// restrictedClientFacingTools are tool-name fragments that may not be used
// in client-facing contexts.
var restrictedClientFacingTools = []string{"image-generator", "deepfake", "voice-clone"}

// RegisterDefaults installs the built-in rule catalog into a registry.
func RegisterDefaults(r *Registry) error {
	defaults := []*Rule{
		{
			ID:          "compliance-gdpr-data-types",
			Name:        "GDPR Data Types Check",
			Description: "Ensure GDPR compliance for personal data processing",
			Category:    CategoryCompliance,
			Severity:    SeverityCritical,
			Enabled:     true,
			Validator:   validateGDPRDataTypes,
		},
		{
			ID:          "security-client-facing-restriction",
			Name:        "Client-Facing Tool Restriction",
			Description: "Restrict certain tools from client-facing use",
			Category:    CategorySecurity,
			Severity:    SeverityHigh,
			Enabled:     true,
			Validator:   validateClientFacingRestriction,
		},
		{
			ID:          "business-urgency-approval",
			Name:        "Urgency Approval Requirement",
			Description: "High urgency requests require additional approval",
			Category:    CategoryBusiness,
			Severity:    SeverityMedium,
			Enabled:     true,
			Validator:   validateUrgencyApproval,
		},
		{
			ID:          "technical-file-size-limit",
			Name:        "File Size Limit",
			Description: "Enforce file size limits for processing",
			Category:    CategoryTechnical,
			Severity:    SeverityMedium,
			Enabled:     true,
			Validator:   validateFileSizeLimit,
		},
		{
			ID:          "document-processing-confidence",
			Name:        "Document Processing Confidence",
			Description: "Ensure document processing meets minimum confidence threshold",
			Category:    CategoryTechnical,
			Severity:    SeverityHigh,
			Enabled:     true,
			Validator:   validateDocConfidence,
		},
	}

	for _, rule := range defaults {
		if err := r.AddRule(rule); err != nil {
			return err
		}
	}
	return nil
}

// validateGDPRDataTypes fails when personal data is processed without an
// affirmed GDPR compliance flag.
func validateGDPRDataTypes(ec *Context) RuleOutcome {
	hasPersonalData := false
	for _, dt := range ec.InputStrings("dataTypes") {
		if dt == "personal_data" {
			hasPersonalData = true
			break
		}
	}

	if hasPersonalData && !ec.InputBool("gdprCompliance") {
		return RuleOutcome{
			Outcome:    StrictFail,
			Message:    "GDPR compliance required for personal data processing",
			Confidence: 1.0,
			Applicable: true,
		}
	}

	return RuleOutcome{
		Outcome:    StrictPass,
		Message:    "GDPR compliance check passed",
		Confidence: 1.0,
		Applicable: true,
	}
}

// validateClientFacingRestriction fails when a restricted tool is used in a
// client-facing context. Tool name matching is case-insensitive.
func validateClientFacingRestriction(ec *Context) RuleOutcome {
	toolName := strings.ToLower(ec.InputString("toolName"))
	clientFacing := ec.InputBool("clientFacing")

	restricted := false
	for _, fragment := range restrictedClientFacingTools {
		if strings.Contains(toolName, fragment) {
			restricted = true
			break
		}
	}

	if restricted && clientFacing {
		return RuleOutcome{
			Outcome:    StrictFail,
			Message:    fmt.Sprintf("Tool '%s' is restricted for client-facing use", toolName),
			Confidence: 1.0,
			Applicable: true,
		}
	}

	return RuleOutcome{
		Outcome:    StrictPass,
		Message:    "Client-facing tool restriction check passed",
		Confidence: 1.0,
		Applicable: true,
	}
}

// validateUrgencyApproval warns when a high-urgency request lacks the extra
// approval flag.
func validateUrgencyApproval(ec *Context) RuleOutcome {
	urgencyLevel := ec.InputNumber("urgencyLevel")

	if urgencyLevel > 0.8 && !ec.InputBool("urgentApproval") {
		return RuleOutcome{
			Outcome:    SoftWarn,
			Message:    "High urgency requests should have additional approval",
			Confidence: 0.8,
			Applicable: true,
		}
	}

	return RuleOutcome{
		Outcome:    StrictPass,
		Message:    "Urgency approval check passed",
		Confidence: 1.0,
		Applicable: true,
	}
}

// validateFileSizeLimit fails when the payload exceeds the processing limit.
func validateFileSizeLimit(ec *Context) RuleOutcome {
	sizeBytes := int64(ec.InputNumber("sizeBytes"))

	if sizeBytes > maxFileSizeBytes {
		return RuleOutcome{
			Outcome:    StrictFail,
			Message:    fmt.Sprintf("File size %d exceeds limit of %d bytes", sizeBytes, maxFileSizeBytes),
			Confidence: 1.0,
			Applicable: true,
		}
	}

	return RuleOutcome{
		Outcome:    StrictPass,
		Message:    "File size check passed",
		Confidence: 1.0,
		Applicable: true,
	}
}

// validateDocConfidence warns when document extraction confidence is below
// the minimum threshold. The warning carries the document confidence value
// so low-confidence documents also trip the human-review trigger.
func validateDocConfidence(ec *Context) RuleOutcome {
	confidence := ec.DocNumber("confidence")

	if confidence < minDocConfidence {
		return RuleOutcome{
			Outcome:    SoftWarn,
			Message:    fmt.Sprintf("Document processing confidence %v below threshold %v", confidence, minDocConfidence),
			Confidence: confidence,
			Applicable: true,
		}
	}

	return RuleOutcome{
		Outcome:    StrictPass,
		Message:    "Document processing confidence check passed",
		Confidence: 1.0,
		Applicable: true,
	}
}
