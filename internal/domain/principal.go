package domain

import (
	"strings"
	"time"
)

// Principal is one audited IAM identity. The envelope fields are common to
// every kind; exactly one of the kind payloads is non-nil, selected by Kind.
type Principal struct {
	ID      string          `json:"id"`
	Kind    PrincipalKind   `json:"kind"`
	Name    string          `json:"name"`
	Created time.Time       `json:"created"`
	Status  PrincipalStatus `json:"status"`

	// MoreInfo carries a human-readable placeholder on degraded records.
	MoreInfo  string `json:"moreInfo,omitempty"`
	CreatedBy string `json:"createdBy,omitempty"`

	InlinePolicies   []PolicyReference `json:"inlinePolicies"`
	AttachedPolicies []PolicyReference `json:"attachedPolicies"`

	Role             *RolePayload             `json:"role,omitempty"`
	User             *UserPayload             `json:"user,omitempty"`
	Group            *GroupPayload            `json:"group,omitempty"`
	IdentityProvider *IdentityProviderPayload `json:"identityProvider,omitempty"`

	Analysis *AnalysisResult `json:"analysis,omitempty"`
}

// RolePayload holds role-specific detail
type RolePayload struct {
	AssumeRolePolicy string `json:"assumeRolePolicy,omitempty"`
}

// UserPayload holds user-specific detail
type UserPayload struct {
	AccessKeys        []AccessKeySummary `json:"accessKeys"`
	Groups            []string           `json:"groups"`
	ConsoleSignInLink string             `json:"consoleSignInLink,omitempty"`
}

// AccessKeySummary is the key id plus creation time of one access key
type AccessKeySummary struct {
	ID      string    `json:"keyId"`
	Created time.Time `json:"created"`
}

// GroupPayload holds group-specific detail
type GroupPayload struct {
	Members []string `json:"members"`
}

// IdentityProviderPayload holds OIDC provider detail
type IdentityProviderPayload struct {
	URL         string   `json:"url,omitempty"`
	ClientIDs   []string `json:"clientIds,omitempty"`
	Thumbprints []string `json:"thumbprints,omitempty"`
}

// PolicyReference is one policy document bound to a principal. Document is
// URL-decoded JSON text; when the fetch or decode failed, Unavailable is set
// and Document holds the InfoNotFound sentinel instead.
type PolicyReference struct {
	Name        string       `json:"policyName"`
	Document    string       `json:"policyDocument"`
	Source      PolicySource `json:"source"`
	Unavailable bool         `json:"unavailable,omitempty"`

	// Analysis holds the free-text policy summary when requested.
	Analysis string `json:"analysis,omitempty"`
}

// UnavailablePolicy returns the degraded marker for a policy that could not
// be fetched or decoded.
func UnavailablePolicy(name string, source PolicySource) PolicyReference {
	return PolicyReference{
		Name:        name,
		Document:    InfoNotFound,
		Source:      source,
		Unavailable: true,
	}
}

// PolicyCount returns the total number of policy references on the principal.
func (p Principal) PolicyCount() int {
	return len(p.InlinePolicies) + len(p.AttachedPolicies)
}

// CreatedDisplay renders the creation time, or Unknown when it was never fetched.
func (p Principal) CreatedDisplay() string {
	if p.Created.IsZero() {
		return Unknown
	}
	return p.Created.UTC().Format(time.RFC3339)
}

// ExtractNameFromARN extracts the trailing resource name from an IAM ARN
// (arn:aws:iam::123456789012:role/my-role -> my-role). Returns the input
// unchanged when it does not look like an ARN.
func ExtractNameFromARN(arn string) string {
	if !strings.HasPrefix(arn, "arn:") {
		return arn
	}
	if idx := strings.LastIndex(arn, "/"); idx >= 0 && idx < len(arn)-1 {
		return arn[idx+1:]
	}
	return arn
}
