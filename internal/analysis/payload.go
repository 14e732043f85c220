// Package analysis implements the language-model side of the pipeline:
// payload normalization, the analysis-service client, reply sanitization and
// the TTL result cache.
package analysis

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"iamaudit/internal/domain"
)

// overviewPayload is the flat, serializable projection of one principal sent
// to the analysis service. Field order is fixed by the struct, timestamps are
// rendered as strings, so the same principal always produces the same bytes.
type overviewPayload struct {
	ARN              string          `json:"arn"`
	Kind             string          `json:"kind"`
	Name             string          `json:"name"`
	Created          string          `json:"created"`
	CreatedBy        string          `json:"createdBy,omitempty"`
	AssumeRolePolicy string          `json:"assumeRolePolicy,omitempty"`
	AccessKeys       []payloadKey    `json:"accessKeys,omitempty"`
	Groups           []string        `json:"groups,omitempty"`
	Members          []string        `json:"members,omitempty"`
	ProviderURL      string          `json:"providerUrl,omitempty"`
	InlinePolicies   []payloadPolicy `json:"inlinePolicies"`
	AttachedPolicies []payloadPolicy `json:"attachedPolicies"`
}

type payloadKey struct {
	KeyID   string `json:"keyId"`
	Created string `json:"created"`
}

type payloadPolicy struct {
	PolicyName     string `json:"policyName"`
	PolicyDocument string `json:"policyDocument"`
}

// BuildOverviewPayload serializes a principal's aggregated metadata and
// policy references into the bounded textual payload the analysis service
// accepts: deterministic JSON, base64-encoded. Same input state, same output.
func BuildOverviewPayload(p domain.Principal) string {
	payload := overviewPayload{
		ARN:              p.ID,
		Kind:             string(p.Kind),
		Name:             p.Name,
		Created:          formatTime(p.Created),
		CreatedBy:        p.CreatedBy,
		InlinePolicies:   toPayloadPolicies(p.InlinePolicies),
		AttachedPolicies: toPayloadPolicies(p.AttachedPolicies),
	}

	switch {
	case p.Role != nil:
		payload.AssumeRolePolicy = p.Role.AssumeRolePolicy
	case p.User != nil:
		payload.Groups = p.User.Groups
		for _, key := range p.User.AccessKeys {
			payload.AccessKeys = append(payload.AccessKeys, payloadKey{
				KeyID:   key.ID,
				Created: formatTime(key.Created),
			})
		}
	case p.Group != nil:
		payload.Members = p.Group.Members
	case p.IdentityProvider != nil:
		payload.ProviderURL = p.IdentityProvider.URL
	}

	// Marshal cannot fail: the payload is strings and slices of strings all
	// the way down, so cycles and non-serializable members cannot occur.
	raw, _ := json.Marshal(payload)
	return base64.StdEncoding.EncodeToString(raw)
}

func toPayloadPolicies(refs []domain.PolicyReference) []payloadPolicy {
	out := make([]payloadPolicy, 0, len(refs))
	for _, ref := range refs {
		out = append(out, payloadPolicy{
			PolicyName:     ref.Name,
			PolicyDocument: ref.Document,
		})
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return domain.Unknown
	}
	return t.UTC().Format(time.RFC3339)
}
