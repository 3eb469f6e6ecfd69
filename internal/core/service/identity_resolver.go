package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/proxy-auth/internal/core/domain"
	"github.com/99minutos/proxy-auth/internal/core/ports"
)

// BeforeCreateHook may mutate a candidate person before it is persisted.
type BeforeCreateHook func(ctx context.Context, candidate *domain.Person) error

// AfterCreateHook observes a person right after it was persisted.
type AfterCreateHook func(ctx context.Context, person *domain.Person) error

// AfterResolveHook runs on every resolved identity, whatever its origin.
type AfterResolveHook func(ctx context.Context, identity *domain.Identity) error

// CreationPolicy controls whether unknown usernames get a person record.
type CreationPolicy struct {
	Enabled  bool
	Group    *domain.GroupSpec // optional group for new persons
	Defaults map[string]any    // copied into each candidate's fields
	Before   BeforeCreateHook
	After    AfterCreateHook
}

// ResolverConfig carries everything the resolver needs besides its stores.
type ResolverConfig struct {
	Hardcoded    *Registry
	Admin        string // username granted the admin override
	Create       CreationPolicy
	AfterResolve AfterResolveHook
}

// Resolver implements ports.IdentityResolver.
type Resolver struct {
	people       ports.PersonStore
	groups       ports.GroupProvisioner
	cfg          ResolverConfig
	materializer *Materializer
	log          zerolog.Logger
}

// NewResolver wires the resolution pipeline. groups may be nil when the
// creation policy names no group.
func NewResolver(people ports.PersonStore, groups ports.GroupProvisioner, cfg ResolverConfig, log zerolog.Logger) *Resolver {
	return &Resolver{
		people:       people,
		groups:       groups,
		cfg:          cfg,
		materializer: NewMaterializer(cfg.Create.Defaults),
		log:          log,
	}
}

// Resolve runs the pipeline in order: hardcoded registry, person store,
// optional creation, after-resolve hook, admin override. No identity is
// returned alongside an error.
func (r *Resolver) Resolve(ctx context.Context, username string) (*domain.Identity, error) {
	identity, ok := r.cfg.Hardcoded.Lookup(username)
	if ok {
		r.log.Debug().Str("username", username).Msg("resolved hardcoded user")
	} else {
		var err error
		identity, err = r.resolvePersisted(ctx, username)
		if err != nil {
			return nil, err
		}
	}

	if r.cfg.AfterResolve != nil {
		if err := r.cfg.AfterResolve(ctx, identity); err != nil {
			return nil, asHookError("afterResolve", err)
		}
	}

	if r.cfg.Admin != "" && identity.Username == r.cfg.Admin {
		identity.GrantAdmin()
	}

	return identity, nil
}

func (r *Resolver) resolvePersisted(ctx context.Context, username string) (*domain.Identity, error) {
	person, err := r.people.FindPerson(ctx, username)
	if err == nil {
		return person.Identity(), nil
	}
	if !errors.Is(err, domain.ErrPersonNotFound) {
		return nil, &domain.StoreError{Op: "find person", Err: err}
	}

	if !r.cfg.Create.Enabled {
		return nil, fmt.Errorf("resolve %q: %w", username, domain.ErrUnknownUser)
	}
	return r.createPerson(ctx, username)
}

func (r *Resolver) createPerson(ctx context.Context, username string) (*domain.Identity, error) {
	policy := r.cfg.Create

	var groupID string
	if policy.Group != nil && policy.Group.Name != "" {
		if r.groups == nil {
			return nil, &domain.StoreError{Op: "ensure group", Err: errors.New("no group provisioner configured")}
		}
		group, err := r.groups.EnsureGroup(ctx, policy.Group.Name, policy.Group.Permissions)
		if err != nil {
			return nil, &domain.StoreError{Op: "ensure group", Err: err}
		}
		groupID = group.ID
	}

	candidate := r.materializer.Build(username, groupID)

	if policy.Before != nil {
		if err := policy.Before(ctx, candidate); err != nil {
			return nil, asHookError("beforeCreate", err)
		}
	}

	saved, err := r.people.SavePerson(ctx, candidate)
	if errors.Is(err, domain.ErrPersonExists) {
		// Another request created the same username first.
		existing, findErr := r.people.FindPerson(ctx, username)
		if findErr != nil {
			return nil, &domain.StoreError{Op: "find person", Err: findErr}
		}
		r.log.Debug().Str("username", username).Msg("person created concurrently, using stored record")
		return existing.Identity(), nil
	}
	if err != nil {
		return nil, &domain.StoreError{Op: "save person", Err: err}
	}

	if policy.After != nil {
		if err := policy.After(ctx, saved); err != nil {
			return nil, asHookError("afterCreate", err)
		}
	}

	r.log.Info().
		Str("username", saved.Username).
		Str("person_id", saved.ID).
		Str("group_id", groupID).
		Msg("person created")

	return saved.Identity(), nil
}

func asHookError(hook string, err error) error {
	var he *domain.HookError
	if errors.As(err, &he) {
		return err
	}
	return &domain.HookError{Hook: hook, Err: err}
}
