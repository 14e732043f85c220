package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"iamaudit/internal/domain"
	"iamaudit/internal/fault"
	"iamaudit/internal/logging"
)

// Collector gathers the inline and attached policy documents bound to one
// principal. Per-policy fetches run concurrently; a single failed fetch
// degrades to an unavailable marker without failing the principal.
type Collector struct {
	client        API
	maxConcurrent int
}

// NewCollector returns a Collector over the given directory client
func NewCollector(client API, maxConcurrent int) *Collector {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Collector{client: client, maxConcurrent: maxConcurrent}
}

// Collect returns the inline and attached policy references for the named
// principal, each list in the order the directory authority listed them.
// A listing failure is an error for the principal; a document fetch failure
// degrades that one policy only.
func (c *Collector) Collect(ctx context.Context, kind domain.PrincipalKind, name string) (inline, attached []domain.PolicyReference, err error) {
	inlineNames, err := c.listInlineNames(ctx, kind, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list inline policies for %s %s: %w", kind, name, err)
	}

	attachedRefs, err := c.listAttached(ctx, kind, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list attached policies for %s %s: %w", kind, name, err)
	}

	inline = make([]domain.PolicyReference, len(inlineNames))
	attached = make([]domain.PolicyReference, len(attachedRefs))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxConcurrent)

	for i, policyName := range inlineNames {
		wg.Add(1)
		go func(idx int, policyName string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			inline[idx] = fault.Isolate(func(err error) domain.PolicyReference {
				logging.LogWarn("Inline policy unavailable", map[string]interface{}{
					"principal": name,
					"policy":    policyName,
					"error":     err.Error(),
				})
				return domain.UnavailablePolicy(policyName, domain.PolicySourceInline)
			}, func() (domain.PolicyReference, error) {
				return c.fetchInline(ctx, kind, name, policyName)
			})
		}(i, policyName)
	}

	for i, ap := range attachedRefs {
		wg.Add(1)
		go func(idx int, ap iamtypes.AttachedPolicy) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			policyName := aws.ToString(ap.PolicyName)
			attached[idx] = fault.Isolate(func(err error) domain.PolicyReference {
				logging.LogWarn("Attached policy unavailable", map[string]interface{}{
					"principal": name,
					"policy":    policyName,
					"error":     err.Error(),
				})
				return domain.UnavailablePolicy(policyName, domain.PolicySourceAttached)
			}, func() (domain.PolicyReference, error) {
				return c.fetchAttached(ctx, ap)
			})
		}(i, ap)
	}

	wg.Wait()
	return inline, attached, nil
}

func (c *Collector) listInlineNames(ctx context.Context, kind domain.PrincipalKind, name string) ([]string, error) {
	names := make([]string, 0)

	switch kind {
	case domain.KindRole:
		paginator := iam.NewListRolePoliciesPaginator(c.client, &iam.ListRolePoliciesInput{RoleName: aws.String(name)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			names = append(names, page.PolicyNames...)
		}
	case domain.KindUser:
		paginator := iam.NewListUserPoliciesPaginator(c.client, &iam.ListUserPoliciesInput{UserName: aws.String(name)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			names = append(names, page.PolicyNames...)
		}
	case domain.KindGroup:
		paginator := iam.NewListGroupPoliciesPaginator(c.client, &iam.ListGroupPoliciesInput{GroupName: aws.String(name)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			names = append(names, page.PolicyNames...)
		}
	case domain.KindIdentityProvider:
		// OIDC providers carry no inline policies
	default:
		return nil, fmt.Errorf("unsupported principal kind: %s", kind)
	}

	return names, nil
}

func (c *Collector) listAttached(ctx context.Context, kind domain.PrincipalKind, name string) ([]iamtypes.AttachedPolicy, error) {
	policies := make([]iamtypes.AttachedPolicy, 0)

	switch kind {
	case domain.KindRole:
		paginator := iam.NewListAttachedRolePoliciesPaginator(c.client, &iam.ListAttachedRolePoliciesInput{RoleName: aws.String(name)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			policies = append(policies, page.AttachedPolicies...)
		}
	case domain.KindUser:
		paginator := iam.NewListAttachedUserPoliciesPaginator(c.client, &iam.ListAttachedUserPoliciesInput{UserName: aws.String(name)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			policies = append(policies, page.AttachedPolicies...)
		}
	case domain.KindGroup:
		paginator := iam.NewListAttachedGroupPoliciesPaginator(c.client, &iam.ListAttachedGroupPoliciesInput{GroupName: aws.String(name)})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, err
			}
			policies = append(policies, page.AttachedPolicies...)
		}
	case domain.KindIdentityProvider:
		// OIDC providers carry no attached policies
	default:
		return nil, fmt.Errorf("unsupported principal kind: %s", kind)
	}

	return policies, nil
}

func (c *Collector) fetchInline(ctx context.Context, kind domain.PrincipalKind, name, policyName string) (domain.PolicyReference, error) {
	var raw string
	var err error
	start := time.Now()

	switch kind {
	case domain.KindRole:
		var out *iam.GetRolePolicyOutput
		out, err = c.client.GetRolePolicy(ctx, &iam.GetRolePolicyInput{
			RoleName:   aws.String(name),
			PolicyName: aws.String(policyName),
		})
		if err == nil {
			raw = aws.ToString(out.PolicyDocument)
		}
		logging.LogAPICall("iam:GetRolePolicy", err == nil, time.Since(start), err)
	case domain.KindUser:
		var out *iam.GetUserPolicyOutput
		out, err = c.client.GetUserPolicy(ctx, &iam.GetUserPolicyInput{
			UserName:   aws.String(name),
			PolicyName: aws.String(policyName),
		})
		if err == nil {
			raw = aws.ToString(out.PolicyDocument)
		}
		logging.LogAPICall("iam:GetUserPolicy", err == nil, time.Since(start), err)
	case domain.KindGroup:
		var out *iam.GetGroupPolicyOutput
		out, err = c.client.GetGroupPolicy(ctx, &iam.GetGroupPolicyInput{
			GroupName:  aws.String(name),
			PolicyName: aws.String(policyName),
		})
		if err == nil {
			raw = aws.ToString(out.PolicyDocument)
		}
		logging.LogAPICall("iam:GetGroupPolicy", err == nil, time.Since(start), err)
	default:
		return domain.PolicyReference{}, fmt.Errorf("unsupported principal kind: %s", kind)
	}

	if err != nil {
		return domain.PolicyReference{}, err
	}

	doc, err := DecodePolicyDocument(raw)
	if err != nil {
		return domain.PolicyReference{}, fmt.Errorf("failed to decode inline policy %s: %w", policyName, err)
	}

	return domain.PolicyReference{
		Name:     policyName,
		Document: doc,
		Source:   domain.PolicySourceInline,
	}, nil
}

func (c *Collector) fetchAttached(ctx context.Context, ap iamtypes.AttachedPolicy) (domain.PolicyReference, error) {
	policyName := aws.ToString(ap.PolicyName)

	start := time.Now()
	policyOut, err := c.client.GetPolicy(ctx, &iam.GetPolicyInput{PolicyArn: ap.PolicyArn})
	logging.LogAPICall("iam:GetPolicy", err == nil, time.Since(start), err)
	if err != nil {
		return domain.PolicyReference{}, err
	}
	if policyOut.Policy == nil || policyOut.Policy.DefaultVersionId == nil {
		return domain.PolicyReference{}, fmt.Errorf("policy %s has no default version", policyName)
	}

	start = time.Now()
	versionOut, err := c.client.GetPolicyVersion(ctx, &iam.GetPolicyVersionInput{
		PolicyArn: policyOut.Policy.Arn,
		VersionId: policyOut.Policy.DefaultVersionId,
	})
	logging.LogAPICall("iam:GetPolicyVersion", err == nil, time.Since(start), err)
	if err != nil {
		return domain.PolicyReference{}, err
	}
	if versionOut.PolicyVersion == nil {
		return domain.PolicyReference{}, fmt.Errorf("policy %s returned empty version", policyName)
	}

	doc, err := DecodePolicyDocument(aws.ToString(versionOut.PolicyVersion.Document))
	if err != nil {
		return domain.PolicyReference{}, fmt.Errorf("failed to decode attached policy %s: %w", policyName, err)
	}

	return domain.PolicyReference{
		Name:     policyName,
		Document: doc,
		Source:   domain.PolicySourceAttached,
	}, nil
}
