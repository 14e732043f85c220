package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"iamaudit/internal/domain"
)

// RepairReply normalizes the escaping artifacts observed in raw analysis
// replies before parsing. In order: escaped double quotes become literal
// quotes, escaped-newline sequences are dropped, and the stray quote that
// wraps the whole object (immediately outside an opening or closing brace)
// is stripped. Applying the repair to already-clean text is a no-op.
func RepairReply(raw string) string {
	s := strings.ReplaceAll(raw, `\"`, `"`)
	s = strings.ReplaceAll(s, `\n`, "")
	s = strings.ReplaceAll(s, `}"`, "}")
	s = strings.ReplaceAll(s, `"{`, "{")
	return s
}

// ParseOverview repairs and parses a structured overview reply. A reply that
// still fails to parse after repair is an error for this one analysis call.
// Fields absent from a parseable reply each default to the NotAvailable
// sentinel; boolean verdicts render as "Yes"/"No".
func ParseOverview(raw string) (domain.AnalysisResult, error) {
	repaired := RepairReply(raw)

	var reply map[string]interface{}
	if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
		return domain.UnavailableAnalysis(), fmt.Errorf("failed to parse analysis reply: %w", err)
	}

	return domain.AnalysisResult{
		Capabilities:       stringField(reply, "ARN_capabilities"),
		BestPractice:       boolField(reply, "Best_Practice"),
		BestPracticeDetail: stringField(reply, "BestPractice_description"),
		SecurityConcerns:   boolField(reply, "Security_Concerns"),
		SecurityDetail:     stringField(reply, "SecurityDescription"),
		Recommendations:    stringField(reply, "Recommendations"),
	}, nil
}

func stringField(reply map[string]interface{}, key string) string {
	v, ok := reply[key]
	if !ok || v == nil {
		return domain.NotAvailable
	}
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return domain.NotAvailable
		}
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// boolField accepts the verdict as a JSON bool or as a "true"/"yes" style
// string, which some replies use interchangeably.
func boolField(reply map[string]interface{}, key string) string {
	v, ok := reply[key]
	if !ok || v == nil {
		return domain.NotAvailable
	}
	switch b := v.(type) {
	case bool:
		if b {
			return "Yes"
		}
		return "No"
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes":
			return "Yes"
		case "false", "no":
			return "No"
		}
	}
	return domain.NotAvailable
}
