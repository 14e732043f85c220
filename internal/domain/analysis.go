package domain

// AnalysisResult is the structured verdict returned by the analysis service
// for one principal. Boolean verdicts are carried as "Yes"/"No" so a field
// that was absent from the reply degrades to NotAvailable like the others.
type AnalysisResult struct {
	Capabilities       string `json:"capabilities"`
	BestPractice       string `json:"bestPractice"`
	BestPracticeDetail string `json:"bestPracticeDetail"`
	SecurityConcerns   string `json:"securityConcerns"`
	SecurityDetail     string `json:"securityDetail"`
	Recommendations    string `json:"recommendations"`
}

// UnavailableAnalysis returns a result with every field set to the
// NotAvailable sentinel, used when the analysis call failed outright.
func UnavailableAnalysis() AnalysisResult {
	return AnalysisResult{
		Capabilities:       NotAvailable,
		BestPractice:       NotAvailable,
		BestPracticeDetail: NotAvailable,
		SecurityConcerns:   NotAvailable,
		SecurityDetail:     NotAvailable,
		Recommendations:    NotAvailable,
	}
}

// StatusFor derives the principal status from an analysis verdict.
func StatusFor(r AnalysisResult) PrincipalStatus {
	switch {
	case r.SecurityConcerns == "Yes":
		return StatusSecurityConcern
	case r.BestPractice == "Yes":
		return StatusBestPractice
	case r.BestPractice == NotAvailable && r.SecurityConcerns == NotAvailable:
		return StatusNotAnalyzed
	default:
		return StatusNeedsReview
	}
}
