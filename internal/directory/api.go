// Package directory implements the read-only view over the IAM directory
// authority: principal enumeration and per-principal policy collection.
package directory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// API is the subset of the IAM service the pipeline consumes. Paginated
// listings embed the SDK's per-operation client interfaces so the standard
// paginators work against fakes in tests.
type API interface {
	iam.ListRolesAPIClient
	iam.ListUsersAPIClient
	iam.ListGroupsAPIClient
	iam.ListGroupsForUserAPIClient
	iam.ListAccessKeysAPIClient
	iam.ListRolePoliciesAPIClient
	iam.ListUserPoliciesAPIClient
	iam.ListGroupPoliciesAPIClient
	iam.ListAttachedRolePoliciesAPIClient
	iam.ListAttachedUserPoliciesAPIClient
	iam.ListAttachedGroupPoliciesAPIClient
	iam.GetGroupAPIClient

	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	GetRolePolicy(ctx context.Context, params *iam.GetRolePolicyInput, optFns ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error)
	GetUserPolicy(ctx context.Context, params *iam.GetUserPolicyInput, optFns ...func(*iam.Options)) (*iam.GetUserPolicyOutput, error)
	GetGroupPolicy(ctx context.Context, params *iam.GetGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.GetGroupPolicyOutput, error)
	GetPolicy(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error)
	GetPolicyVersion(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error)
	ListOpenIDConnectProviders(ctx context.Context, params *iam.ListOpenIDConnectProvidersInput, optFns ...func(*iam.Options)) (*iam.ListOpenIDConnectProvidersOutput, error)
	GetOpenIDConnectProvider(ctx context.Context, params *iam.GetOpenIDConnectProviderInput, optFns ...func(*iam.Options)) (*iam.GetOpenIDConnectProviderOutput, error)
}

// Compile-time check that the real SDK client satisfies the interface
var _ API = (*iam.Client)(nil)
