package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/99minutos/proxy-auth/internal/core/domain"
	"github.com/99minutos/proxy-auth/internal/core/ports"
)

// ChainAfterResolve runs hooks in order and stops at the first error.
func ChainAfterResolve(hooks ...AfterResolveHook) AfterResolveHook {
	return func(ctx context.Context, identity *domain.Identity) error {
		for _, h := range hooks {
			if h == nil {
				continue
			}
			if err := h(ctx, identity); err != nil {
				return err
			}
		}
		return nil
	}
}

// MergeGroupPermissions grants a persisted identity every permission held
// by the groups it belongs to. Hardcoded identities are left alone.
func MergeGroupPermissions(groups ports.GroupReader) AfterResolveHook {
	return func(ctx context.Context, identity *domain.Identity) error {
		if identity.Permissions == nil {
			identity.Permissions = domain.Permissions{}
		}
		if identity.Origin != domain.OriginPersisted || len(identity.GroupIDs) == 0 {
			return nil
		}

		found, err := groups.FindGroups(ctx, identity.GroupIDs)
		if err != nil {
			return &domain.HookError{Hook: "mergeGroupPermissions", Err: fmt.Errorf("find groups: %w", err)}
		}
		for _, g := range found {
			for _, perm := range g.Permissions {
				identity.Permissions[perm] = true
			}
		}
		return nil
	}
}

// HeaderNames returns a before-create hook that replaces the default name
// split with values from extra proxy headers when they are present.
func HeaderNames(firstHeader, lastHeader string) BeforeCreateHook {
	return func(ctx context.Context, candidate *domain.Person) error {
		r, ok := RequestFromContext(ctx)
		if !ok {
			return nil
		}
		if firstHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(firstHeader)); v != "" && v != NullUsername {
				candidate.FirstName = v
			}
		}
		if lastHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(lastHeader)); v != "" && v != NullUsername {
				candidate.LastName = v
			}
		}
		return nil
	}
}
