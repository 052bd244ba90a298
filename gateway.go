package kermesse

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MaxLoginAttempts is the maximum number of attempts an agent gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// LocalGateway is an IdentityGateway backed by the module's own
// repositories: bcrypt credential checks plus descriptor minting. Any
// remote identity service can replace it behind the interface; the session
// layer only sees Exchange and FindActor.
type LocalGateway struct {
	repo        RepositoryManager
	descriptors *DescriptorService
	logger      Logger
}

var _ IdentityGateway = (*LocalGateway)(nil)

// NewLocalGateway wires the gateway over the repository manager.
func NewLocalGateway(repo RepositoryManager, descriptors *DescriptorService) *LocalGateway {
	return &LocalGateway{
		repo:        repo,
		descriptors: descriptors,
		logger:      defLogger{},
	}
}

// WithLogger overrides the gateway's logger.
func (g *LocalGateway) WithLogger(logger Logger) *LocalGateway {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Exchange verifies credentials for the actor type and mints a session
// descriptor. Rejections come back as OK=false with a reason; only
// transport failures surface as errors.
func (g *LocalGateway) Exchange(ctx context.Context, actorType ActorType, creds Credentials) (*ExchangeResult, error) {
	var actor *ActorSnapshot
	var err error

	switch actorType {
	case ActorAdmin:
		actor, err = g.verifyAdmin(ctx, creds)
	case ActorAgent:
		actor, err = g.verifyAgent(ctx, creds)
	case ActorParticipant:
		actor, err = g.verifyParticipant(ctx, creds)
	default:
		return &ExchangeResult{OK: false, Reason: "unknown actor type"}, nil
	}

	if err != nil {
		if IsRejection(err) {
			g.logger.Info("credential exchange rejected for %s: %s", actorType, err)
			return &ExchangeResult{OK: false, Reason: err.Error()}, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "credential exchange failed")
	}

	descriptor, err := g.descriptors.Mint(actor)
	if err != nil {
		return nil, err
	}

	return &ExchangeResult{
		OK:         true,
		Actor:      actor,
		Descriptor: descriptor,
	}, nil
}

// FindActor re-fetches an actor snapshot by id. ErrActorNotFound marks a
// missing record; anything else is a transport failure.
func (g *LocalGateway) FindActor(ctx context.Context, actorType ActorType, id uuid.UUID) (*ActorSnapshot, error) {
	switch actorType {
	case ActorAdmin:
		record, err := g.repo.Admins().GetByID(ctx, id.String())
		if err != nil {
			return nil, notFoundOrTransport(err)
		}
		return record.Snapshot(), nil
	case ActorAgent:
		record, err := g.repo.Agents().GetByID(ctx, id.String())
		if err != nil {
			return nil, notFoundOrTransport(err)
		}
		return record.Snapshot(), nil
	case ActorParticipant:
		record, err := g.repo.Participants().GetByID(ctx, id.String())
		if err != nil {
			return nil, notFoundOrTransport(err)
		}
		return record.Snapshot(), nil
	default:
		return nil, ErrActorNotFound
	}
}

func (g *LocalGateway) verifyAdmin(ctx context.Context, creds Credentials) (*ActorSnapshot, error) {
	record, err := g.repo.Admins().GetByIdentifier(ctx, creds.GetIdentifier())
	if err != nil {
		return nil, notFoundOrTransport(err)
	}

	if err := ComparePasswordAndHash(creds.GetPassword(), record.PasswordHash); err != nil {
		return nil, err
	}

	return record.Snapshot(), nil
}

// verifyAgent carries the attempt bookkeeping: a cool-down window caps
// repeated failures, and every failed compare is recorded before the
// rejection is returned.
func (g *LocalGateway) verifyAgent(ctx context.Context, creds Credentials) (*ActorSnapshot, error) {
	agent, err := g.repo.Agents().GetByIdentifier(ctx, creds.GetIdentifier())
	if err != nil {
		if errors.Is(err, ErrActorNotFound) {
			// uniform rejection, no account enumeration
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve agent during verification")
	}

	if agent.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*agent.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			agent.LoginAttempts = 0
		}
	}

	// too many attempts in the window, cool off
	if agent.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(creds.GetPassword(), agent.PasswordHash); err != nil {
		if err2 := g.repo.Agents().TrackAttemptedLogin(ctx, agent); err2 != nil {
			return nil, goerrors.Wrap(err2, goerrors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrMismatchedHashAndPassword
	}

	if err := g.repo.Agents().TrackSuccessfulLogin(ctx, agent); err != nil {
		g.logger.Error("failed to track successful login: %s", err)
	}

	return agent.Snapshot(), nil
}

// verifyParticipant authenticates a badge: the identifier is the badge
// code and the password is the code itself on plain badges, so both are
// compared against the stored code.
func (g *LocalGateway) verifyParticipant(ctx context.Context, creds Credentials) (*ActorSnapshot, error) {
	record, err := g.repo.Participants().GetByBadge(ctx, creds.GetIdentifier())
	if err != nil {
		if errors.Is(err, ErrActorNotFound) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, notFoundOrTransport(err)
	}

	if creds.GetPassword() != "" && creds.GetPassword() != record.BadgeCode {
		return nil, ErrMismatchedHashAndPassword
	}

	return record.Snapshot(), nil
}

func notFoundOrTransport(err error) error {
	if goerrors.IsNotFound(err) || errors.Is(err, ErrActorNotFound) {
		return ErrActorNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "backend read failed")
}
