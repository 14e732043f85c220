package directory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"

	"iamaudit/internal/domain"
	"iamaudit/internal/fault"
	"iamaudit/internal/logging"
)

// Enumerator lists the principals of one kind and enriches each with its
// policy references and kind-specific detail. Enrichment fans out across
// principals; a failed enrichment yields a degraded record, never a shorter
// batch.
type Enumerator struct {
	client        API
	collector     *Collector
	region        string
	maxConcurrent int
}

// NewEnumerator returns an Enumerator over the given directory client
func NewEnumerator(client API, region string, maxConcurrent int) *Enumerator {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	return &Enumerator{
		client:        client,
		collector:     NewCollector(client, maxConcurrent),
		region:        region,
		maxConcurrent: maxConcurrent,
	}
}

// ListPrincipals returns every principal of the given kind, fully paginated,
// in the order the directory authority listed them. Exactly one record is
// returned per listed principal; detail failures degrade in place.
func (e *Enumerator) ListPrincipals(ctx context.Context, kind domain.PrincipalKind) ([]domain.Principal, error) {
	start := time.Now()
	logging.LogOperationStart("enumerate", map[string]interface{}{"kind": string(kind)})

	var principals []domain.Principal
	var err error

	switch kind {
	case domain.KindRole:
		principals, err = e.listRoles(ctx)
	case domain.KindUser:
		principals, err = e.listUsers(ctx)
	case domain.KindGroup:
		principals, err = e.listGroups(ctx)
	case domain.KindIdentityProvider:
		principals, err = e.listIdentityProviders(ctx)
	default:
		err = fmt.Errorf("unsupported principal kind: %s", kind)
	}

	logging.LogOperationEnd("enumerate", time.Since(start), err == nil, len(principals), len(principals), err)
	return principals, err
}

func (e *Enumerator) listRoles(ctx context.Context) ([]domain.Principal, error) {
	roles := make([]iamtypes.Role, 0)
	paginator := iam.NewListRolesPaginator(e.client, &iam.ListRolesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list roles: %w", err)
		}
		roles = append(roles, page.Roles...)
	}

	results := make([]domain.Principal, len(roles))
	e.forEach(len(roles), func(i int) {
		role := roles[i]
		name := aws.ToString(role.RoleName)
		results[i] = fault.Isolate(func(err error) domain.Principal {
			logging.LogDegradedUnit("role", name, err)
			p := degradedPrincipal(domain.KindRole, name)
			p.Role = &domain.RolePayload{}
			return p
		}, func() (domain.Principal, error) {
			return e.enrichRole(ctx, role)
		})
	})
	return results, nil
}

func (e *Enumerator) enrichRole(ctx context.Context, role iamtypes.Role) (domain.Principal, error) {
	name := aws.ToString(role.RoleName)

	start := time.Now()
	detail, err := e.client.GetRole(ctx, &iam.GetRoleInput{RoleName: role.RoleName})
	logging.LogAPICall("iam:GetRole", err == nil, time.Since(start), err)
	if err != nil {
		return domain.Principal{}, err
	}

	assumeDoc := ""
	createdBy := domain.Unknown
	if detail.Role.AssumeRolePolicyDocument != nil {
		if decoded, decodeErr := DecodePolicyDocument(aws.ToString(detail.Role.AssumeRolePolicyDocument)); decodeErr == nil {
			assumeDoc = decoded
			createdBy = extractCreatedBy(decoded)
		}
	}

	inline, attached, err := e.collector.Collect(ctx, domain.KindRole, name)
	if err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{
		ID:               aws.ToString(detail.Role.Arn),
		Kind:             domain.KindRole,
		Name:             name,
		Status:           domain.StatusNotAnalyzed,
		CreatedBy:        createdBy,
		InlinePolicies:   inline,
		AttachedPolicies: attached,
		Role:             &domain.RolePayload{AssumeRolePolicy: assumeDoc},
	}
	if detail.Role.CreateDate != nil {
		p.Created = *detail.Role.CreateDate
	}
	return p, nil
}

func (e *Enumerator) listUsers(ctx context.Context) ([]domain.Principal, error) {
	users := make([]iamtypes.User, 0)
	paginator := iam.NewListUsersPaginator(e.client, &iam.ListUsersInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		users = append(users, page.Users...)
	}

	results := make([]domain.Principal, len(users))
	e.forEach(len(users), func(i int) {
		user := users[i]
		name := aws.ToString(user.UserName)
		results[i] = fault.Isolate(func(err error) domain.Principal {
			logging.LogDegradedUnit("user", name, err)
			p := degradedPrincipal(domain.KindUser, name)
			p.User = &domain.UserPayload{
				AccessKeys: []domain.AccessKeySummary{},
				Groups:     []string{},
			}
			return p
		}, func() (domain.Principal, error) {
			return e.enrichUser(ctx, user)
		})
	})
	return results, nil
}

func (e *Enumerator) enrichUser(ctx context.Context, user iamtypes.User) (domain.Principal, error) {
	name := aws.ToString(user.UserName)

	accessKeys := make([]domain.AccessKeySummary, 0)
	keyPaginator := iam.NewListAccessKeysPaginator(e.client, &iam.ListAccessKeysInput{UserName: user.UserName})
	for keyPaginator.HasMorePages() {
		page, err := keyPaginator.NextPage(ctx)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("failed to list access keys for %s: %w", name, err)
		}
		for _, key := range page.AccessKeyMetadata {
			summary := domain.AccessKeySummary{ID: aws.ToString(key.AccessKeyId)}
			if key.CreateDate != nil {
				summary.Created = *key.CreateDate
			}
			accessKeys = append(accessKeys, summary)
		}
	}

	inline, attached, err := e.collector.Collect(ctx, domain.KindUser, name)
	if err != nil {
		return domain.Principal{}, err
	}

	groups := make([]string, 0)
	groupPaginator := iam.NewListGroupsForUserPaginator(e.client, &iam.ListGroupsForUserInput{UserName: user.UserName})
	for groupPaginator.HasMorePages() {
		page, err := groupPaginator.NextPage(ctx)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("failed to list groups for %s: %w", name, err)
		}
		for _, group := range page.Groups {
			groups = append(groups, aws.ToString(group.GroupName))
		}
	}

	p := domain.Principal{
		ID:               aws.ToString(user.Arn),
		Kind:             domain.KindUser,
		Name:             name,
		Status:           domain.StatusNotAnalyzed,
		InlinePolicies:   inline,
		AttachedPolicies: attached,
		User: &domain.UserPayload{
			AccessKeys:        accessKeys,
			Groups:            groups,
			ConsoleSignInLink: fmt.Sprintf("https://%s.signin.aws.amazon.com/console?username=%s", e.region, name),
		},
	}
	if user.CreateDate != nil {
		p.Created = *user.CreateDate
	}
	return p, nil
}

func (e *Enumerator) listGroups(ctx context.Context) ([]domain.Principal, error) {
	groups := make([]iamtypes.Group, 0)
	paginator := iam.NewListGroupsPaginator(e.client, &iam.ListGroupsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list groups: %w", err)
		}
		groups = append(groups, page.Groups...)
	}

	results := make([]domain.Principal, len(groups))
	e.forEach(len(groups), func(i int) {
		group := groups[i]
		name := aws.ToString(group.GroupName)
		results[i] = fault.Isolate(func(err error) domain.Principal {
			logging.LogDegradedUnit("group", name, err)
			p := degradedPrincipal(domain.KindGroup, name)
			p.Group = &domain.GroupPayload{Members: []string{}}
			return p
		}, func() (domain.Principal, error) {
			return e.enrichGroup(ctx, group)
		})
	})
	return results, nil
}

func (e *Enumerator) enrichGroup(ctx context.Context, group iamtypes.Group) (domain.Principal, error) {
	name := aws.ToString(group.GroupName)

	members := make([]string, 0)
	var detail *iamtypes.Group
	paginator := iam.NewGetGroupPaginator(e.client, &iam.GetGroupInput{GroupName: group.GroupName})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return domain.Principal{}, fmt.Errorf("failed to get group %s: %w", name, err)
		}
		if detail == nil {
			detail = page.Group
		}
		for _, user := range page.Users {
			members = append(members, aws.ToString(user.UserName))
		}
	}
	if detail == nil {
		detail = &group
	}

	inline, attached, err := e.collector.Collect(ctx, domain.KindGroup, name)
	if err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{
		ID:               aws.ToString(detail.Arn),
		Kind:             domain.KindGroup,
		Name:             name,
		Status:           domain.StatusNotAnalyzed,
		InlinePolicies:   inline,
		AttachedPolicies: attached,
		Group:            &domain.GroupPayload{Members: members},
	}
	if detail.CreateDate != nil {
		p.Created = *detail.CreateDate
	}
	return p, nil
}

func (e *Enumerator) listIdentityProviders(ctx context.Context) ([]domain.Principal, error) {
	start := time.Now()
	out, err := e.client.ListOpenIDConnectProviders(ctx, &iam.ListOpenIDConnectProvidersInput{})
	logging.LogAPICall("iam:ListOpenIDConnectProviders", err == nil, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list identity providers: %w", err)
	}

	providers := out.OpenIDConnectProviderList
	results := make([]domain.Principal, len(providers))
	e.forEach(len(providers), func(i int) {
		arn := aws.ToString(providers[i].Arn)
		results[i] = fault.Isolate(func(err error) domain.Principal {
			logging.LogDegradedUnit("identity provider", arn, err)
			p := degradedPrincipal(domain.KindIdentityProvider, arn)
			p.ID = arn
			p.Name = providerNameFromARN(arn)
			p.IdentityProvider = &domain.IdentityProviderPayload{}
			return p
		}, func() (domain.Principal, error) {
			return e.enrichIdentityProvider(ctx, arn)
		})
	})
	return results, nil
}

func (e *Enumerator) enrichIdentityProvider(ctx context.Context, arn string) (domain.Principal, error) {
	start := time.Now()
	detail, err := e.client.GetOpenIDConnectProvider(ctx, &iam.GetOpenIDConnectProviderInput{
		OpenIDConnectProviderArn: aws.String(arn),
	})
	logging.LogAPICall("iam:GetOpenIDConnectProvider", err == nil, time.Since(start), err)
	if err != nil {
		return domain.Principal{}, err
	}

	p := domain.Principal{
		ID:               arn,
		Kind:             domain.KindIdentityProvider,
		Name:             providerNameFromARN(arn),
		Status:           domain.StatusNotAnalyzed,
		CreatedBy:        domain.Unknown,
		InlinePolicies:   []domain.PolicyReference{},
		AttachedPolicies: []domain.PolicyReference{},
		IdentityProvider: &domain.IdentityProviderPayload{
			URL:         aws.ToString(detail.Url),
			ClientIDs:   detail.ClientIDList,
			Thumbprints: detail.ThumbprintList,
		},
	}
	if detail.CreateDate != nil {
		p.Created = *detail.CreateDate
	}
	return p, nil
}

// forEach runs fn(i) for each index concurrently, bounded by the enumerator's
// concurrency limit, and returns once every branch has settled.
func (e *Enumerator) forEach(n int, fn func(i int)) {
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.maxConcurrent)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			fn(idx)
		}(i)
	}
	wg.Wait()
}

// degradedPrincipal is the placeholder record emitted when a principal's
// detail fetch failed. The batch keeps its slot; nothing is dropped.
func degradedPrincipal(kind domain.PrincipalKind, name string) domain.Principal {
	return domain.Principal{
		ID:               name,
		Kind:             kind,
		Name:             name,
		Status:           domain.StatusError,
		MoreInfo:         domain.InfoNotFound,
		CreatedBy:        domain.Unknown,
		InlinePolicies:   []domain.PolicyReference{},
		AttachedPolicies: []domain.PolicyReference{},
	}
}

func providerNameFromARN(arn string) string {
	if idx := strings.Index(arn, "oidc-provider/"); idx >= 0 {
		return arn[idx+len("oidc-provider/"):]
	}
	return arn
}
