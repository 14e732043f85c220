package domain

// PrincipalKind identifies the kind of IAM principal being audited
type PrincipalKind string

const (
	KindRole             PrincipalKind = "role"
	KindUser             PrincipalKind = "user"
	KindGroup            PrincipalKind = "group"
	KindIdentityProvider PrincipalKind = "identity-provider"
)

// PrincipalStatus represents the audit status of a principal
type PrincipalStatus string

const (
	StatusBestPractice    PrincipalStatus = "Best Practice"
	StatusSecurityConcern PrincipalStatus = "Security Concern"
	StatusNeedsReview     PrincipalStatus = "Needs Review"
	StatusNotAnalyzed     PrincipalStatus = "Not Analyzed"
	StatusError           PrincipalStatus = "Error"
)

// PolicySource distinguishes inline policies from attached managed policies
type PolicySource string

const (
	PolicySourceInline   PolicySource = "inline"
	PolicySourceAttached PolicySource = "attached"
)

// Sentinel strings used in place of missing or failed data.
// These render directly; null/undefined never reaches the presentation layer.
const (
	NotAvailable   = "Not Available"
	InfoNotFound   = "Information not found"
	AnalysisFailed = "Analysis failed."
	Unknown        = "Unknown"
)

// LogLevel represents log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// ValidKind reports whether s names a supported principal kind.
func ValidKind(s string) (PrincipalKind, bool) {
	switch PrincipalKind(s) {
	case KindRole, KindUser, KindGroup, KindIdentityProvider:
		return PrincipalKind(s), true
	}
	// plural CLI spellings
	switch s {
	case "roles":
		return KindRole, true
	case "users":
		return KindUser, true
	case "groups":
		return KindGroup, true
	case "identity-providers":
		return KindIdentityProvider, true
	}
	return "", false
}
