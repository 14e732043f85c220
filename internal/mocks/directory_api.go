// Package mocks provides a configurable fake of the IAM directory client for
// testing. Every operation defaults to an empty successful page; tests
// override only the operations a scenario needs.
package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
)

// DirectoryAPI is a function-field fake of the directory client. A nil field
// means "return an empty page"; set a field to script that operation.
type DirectoryAPI struct {
	ListRolesFunc                  func(ctx context.Context, params *iam.ListRolesInput, optFns ...func(*iam.Options)) (*iam.ListRolesOutput, error)
	ListUsersFunc                  func(ctx context.Context, params *iam.ListUsersInput, optFns ...func(*iam.Options)) (*iam.ListUsersOutput, error)
	ListGroupsFunc                 func(ctx context.Context, params *iam.ListGroupsInput, optFns ...func(*iam.Options)) (*iam.ListGroupsOutput, error)
	ListGroupsForUserFunc          func(ctx context.Context, params *iam.ListGroupsForUserInput, optFns ...func(*iam.Options)) (*iam.ListGroupsForUserOutput, error)
	ListAccessKeysFunc             func(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error)
	ListRolePoliciesFunc           func(ctx context.Context, params *iam.ListRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error)
	ListUserPoliciesFunc           func(ctx context.Context, params *iam.ListUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListUserPoliciesOutput, error)
	ListGroupPoliciesFunc          func(ctx context.Context, params *iam.ListGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListGroupPoliciesOutput, error)
	ListAttachedRolePoliciesFunc   func(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error)
	ListAttachedUserPoliciesFunc   func(ctx context.Context, params *iam.ListAttachedUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedUserPoliciesOutput, error)
	ListAttachedGroupPoliciesFunc  func(ctx context.Context, params *iam.ListAttachedGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedGroupPoliciesOutput, error)
	GetGroupFunc                   func(ctx context.Context, params *iam.GetGroupInput, optFns ...func(*iam.Options)) (*iam.GetGroupOutput, error)
	GetRoleFunc                    func(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	GetRolePolicyFunc              func(ctx context.Context, params *iam.GetRolePolicyInput, optFns ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error)
	GetUserPolicyFunc              func(ctx context.Context, params *iam.GetUserPolicyInput, optFns ...func(*iam.Options)) (*iam.GetUserPolicyOutput, error)
	GetGroupPolicyFunc             func(ctx context.Context, params *iam.GetGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.GetGroupPolicyOutput, error)
	GetPolicyFunc                  func(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error)
	GetPolicyVersionFunc           func(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error)
	ListOpenIDConnectProvidersFunc func(ctx context.Context, params *iam.ListOpenIDConnectProvidersInput, optFns ...func(*iam.Options)) (*iam.ListOpenIDConnectProvidersOutput, error)
	GetOpenIDConnectProviderFunc   func(ctx context.Context, params *iam.GetOpenIDConnectProviderInput, optFns ...func(*iam.Options)) (*iam.GetOpenIDConnectProviderOutput, error)
}

func (f *DirectoryAPI) ListRoles(ctx context.Context, params *iam.ListRolesInput, optFns ...func(*iam.Options)) (*iam.ListRolesOutput, error) {
	if f.ListRolesFunc != nil {
		return f.ListRolesFunc(ctx, params, optFns...)
	}
	return &iam.ListRolesOutput{}, nil
}

func (f *DirectoryAPI) ListUsers(ctx context.Context, params *iam.ListUsersInput, optFns ...func(*iam.Options)) (*iam.ListUsersOutput, error) {
	if f.ListUsersFunc != nil {
		return f.ListUsersFunc(ctx, params, optFns...)
	}
	return &iam.ListUsersOutput{}, nil
}

func (f *DirectoryAPI) ListGroups(ctx context.Context, params *iam.ListGroupsInput, optFns ...func(*iam.Options)) (*iam.ListGroupsOutput, error) {
	if f.ListGroupsFunc != nil {
		return f.ListGroupsFunc(ctx, params, optFns...)
	}
	return &iam.ListGroupsOutput{}, nil
}

func (f *DirectoryAPI) ListGroupsForUser(ctx context.Context, params *iam.ListGroupsForUserInput, optFns ...func(*iam.Options)) (*iam.ListGroupsForUserOutput, error) {
	if f.ListGroupsForUserFunc != nil {
		return f.ListGroupsForUserFunc(ctx, params, optFns...)
	}
	return &iam.ListGroupsForUserOutput{}, nil
}

func (f *DirectoryAPI) ListAccessKeys(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error) {
	if f.ListAccessKeysFunc != nil {
		return f.ListAccessKeysFunc(ctx, params, optFns...)
	}
	return &iam.ListAccessKeysOutput{}, nil
}

func (f *DirectoryAPI) ListRolePolicies(ctx context.Context, params *iam.ListRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error) {
	if f.ListRolePoliciesFunc != nil {
		return f.ListRolePoliciesFunc(ctx, params, optFns...)
	}
	return &iam.ListRolePoliciesOutput{}, nil
}

func (f *DirectoryAPI) ListUserPolicies(ctx context.Context, params *iam.ListUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListUserPoliciesOutput, error) {
	if f.ListUserPoliciesFunc != nil {
		return f.ListUserPoliciesFunc(ctx, params, optFns...)
	}
	return &iam.ListUserPoliciesOutput{}, nil
}

func (f *DirectoryAPI) ListGroupPolicies(ctx context.Context, params *iam.ListGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListGroupPoliciesOutput, error) {
	if f.ListGroupPoliciesFunc != nil {
		return f.ListGroupPoliciesFunc(ctx, params, optFns...)
	}
	return &iam.ListGroupPoliciesOutput{}, nil
}

func (f *DirectoryAPI) ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error) {
	if f.ListAttachedRolePoliciesFunc != nil {
		return f.ListAttachedRolePoliciesFunc(ctx, params, optFns...)
	}
	return &iam.ListAttachedRolePoliciesOutput{}, nil
}

func (f *DirectoryAPI) ListAttachedUserPolicies(ctx context.Context, params *iam.ListAttachedUserPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedUserPoliciesOutput, error) {
	if f.ListAttachedUserPoliciesFunc != nil {
		return f.ListAttachedUserPoliciesFunc(ctx, params, optFns...)
	}
	return &iam.ListAttachedUserPoliciesOutput{}, nil
}

func (f *DirectoryAPI) ListAttachedGroupPolicies(ctx context.Context, params *iam.ListAttachedGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedGroupPoliciesOutput, error) {
	if f.ListAttachedGroupPoliciesFunc != nil {
		return f.ListAttachedGroupPoliciesFunc(ctx, params, optFns...)
	}
	return &iam.ListAttachedGroupPoliciesOutput{}, nil
}

func (f *DirectoryAPI) GetGroup(ctx context.Context, params *iam.GetGroupInput, optFns ...func(*iam.Options)) (*iam.GetGroupOutput, error) {
	if f.GetGroupFunc != nil {
		return f.GetGroupFunc(ctx, params, optFns...)
	}
	return &iam.GetGroupOutput{}, nil
}

func (f *DirectoryAPI) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	if f.GetRoleFunc != nil {
		return f.GetRoleFunc(ctx, params, optFns...)
	}
	return &iam.GetRoleOutput{}, nil
}

func (f *DirectoryAPI) GetRolePolicy(ctx context.Context, params *iam.GetRolePolicyInput, optFns ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error) {
	if f.GetRolePolicyFunc != nil {
		return f.GetRolePolicyFunc(ctx, params, optFns...)
	}
	return &iam.GetRolePolicyOutput{}, nil
}

func (f *DirectoryAPI) GetUserPolicy(ctx context.Context, params *iam.GetUserPolicyInput, optFns ...func(*iam.Options)) (*iam.GetUserPolicyOutput, error) {
	if f.GetUserPolicyFunc != nil {
		return f.GetUserPolicyFunc(ctx, params, optFns...)
	}
	return &iam.GetUserPolicyOutput{}, nil
}

func (f *DirectoryAPI) GetGroupPolicy(ctx context.Context, params *iam.GetGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.GetGroupPolicyOutput, error) {
	if f.GetGroupPolicyFunc != nil {
		return f.GetGroupPolicyFunc(ctx, params, optFns...)
	}
	return &iam.GetGroupPolicyOutput{}, nil
}

func (f *DirectoryAPI) GetPolicy(ctx context.Context, params *iam.GetPolicyInput, optFns ...func(*iam.Options)) (*iam.GetPolicyOutput, error) {
	if f.GetPolicyFunc != nil {
		return f.GetPolicyFunc(ctx, params, optFns...)
	}
	return &iam.GetPolicyOutput{}, nil
}

func (f *DirectoryAPI) GetPolicyVersion(ctx context.Context, params *iam.GetPolicyVersionInput, optFns ...func(*iam.Options)) (*iam.GetPolicyVersionOutput, error) {
	if f.GetPolicyVersionFunc != nil {
		return f.GetPolicyVersionFunc(ctx, params, optFns...)
	}
	return &iam.GetPolicyVersionOutput{}, nil
}

func (f *DirectoryAPI) ListOpenIDConnectProviders(ctx context.Context, params *iam.ListOpenIDConnectProvidersInput, optFns ...func(*iam.Options)) (*iam.ListOpenIDConnectProvidersOutput, error) {
	if f.ListOpenIDConnectProvidersFunc != nil {
		return f.ListOpenIDConnectProvidersFunc(ctx, params, optFns...)
	}
	return &iam.ListOpenIDConnectProvidersOutput{}, nil
}

func (f *DirectoryAPI) GetOpenIDConnectProvider(ctx context.Context, params *iam.GetOpenIDConnectProviderInput, optFns ...func(*iam.Options)) (*iam.GetOpenIDConnectProviderOutput, error) {
	if f.GetOpenIDConnectProviderFunc != nil {
		return f.GetOpenIDConnectProviderFunc(ctx, params, optFns...)
	}
	return &iam.GetOpenIDConnectProviderOutput{}, nil
}
