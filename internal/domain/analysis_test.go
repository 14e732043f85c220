package domain

import "testing"

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		result AnalysisResult
		want   PrincipalStatus
	}{
		{
			name:   "security concern wins",
			result: AnalysisResult{BestPractice: "Yes", SecurityConcerns: "Yes"},
			want:   StatusSecurityConcern,
		},
		{
			name:   "best practice without concerns",
			result: AnalysisResult{BestPractice: "Yes", SecurityConcerns: "No"},
			want:   StatusBestPractice,
		},
		{
			name:   "all sentinels means not analyzed",
			result: UnavailableAnalysis(),
			want:   StatusNotAnalyzed,
		},
		{
			name:   "neither verdict set needs review",
			result: AnalysisResult{BestPractice: "No", SecurityConcerns: "No"},
			want:   StatusNeedsReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.result); got != tt.want {
				t.Errorf("StatusFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnavailableAnalysis(t *testing.T) {
	r := UnavailableAnalysis()
	for field, value := range map[string]string{
		"Capabilities":       r.Capabilities,
		"BestPractice":       r.BestPractice,
		"BestPracticeDetail": r.BestPracticeDetail,
		"SecurityConcerns":   r.SecurityConcerns,
		"SecurityDetail":     r.SecurityDetail,
		"Recommendations":    r.Recommendations,
	} {
		if value != NotAvailable {
			t.Errorf("%s = %q, want %q", field, value, NotAvailable)
		}
	}
}

func TestExtractNameFromARN(t *testing.T) {
	tests := []struct {
		arn  string
		want string
	}{
		{"arn:aws:iam::123456789012:role/my-role", "my-role"},
		{"arn:aws:iam::123456789012:role/service-role/nested", "nested"},
		{"not-an-arn", "not-an-arn"},
		{"arn:aws:iam::123456789012:root", "arn:aws:iam::123456789012:root"},
	}
	for _, tt := range tests {
		if got := ExtractNameFromARN(tt.arn); got != tt.want {
			t.Errorf("ExtractNameFromARN(%q) = %q, want %q", tt.arn, got, tt.want)
		}
	}
}

func TestValidKind(t *testing.T) {
	tests := []struct {
		in     string
		want   PrincipalKind
		wantOK bool
	}{
		{"role", KindRole, true},
		{"roles", KindRole, true},
		{"users", KindUser, true},
		{"group", KindGroup, true},
		{"identity-providers", KindIdentityProvider, true},
		{"buckets", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ValidKind(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ValidKind(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
