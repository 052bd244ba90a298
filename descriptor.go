package kermesse

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DescriptorClaims is the signed content of a session descriptor. The
// client never reads these; they exist so the backend can authorize
// round-tripped tokens.
type DescriptorClaims struct {
	jwt.RegisteredClaims
	ActorType ActorType `json:"act,omitempty"`
	Role      AgentRole `json:"rol,omitempty"`
}

// DescriptorService mints and validates session descriptors for the local
// identity gateway.
type DescriptorService struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
	now             Clock
}

// DescriptorServiceOption customizes the service
type DescriptorServiceOption func(*DescriptorService)

// WithDescriptorClock injects a custom clock (useful for tests).
func WithDescriptorClock(clock Clock) DescriptorServiceOption {
	return func(ds *DescriptorService) {
		if clock != nil {
			ds.now = clock
		}
	}
}

// WithDescriptorLogger overrides the service logger.
func WithDescriptorLogger(logger Logger) DescriptorServiceOption {
	return func(ds *DescriptorService) {
		if logger != nil {
			ds.logger = logger
		}
	}
}

// NewDescriptorService creates a descriptor service. tokenExpiration is in
// hours, matching the config contract.
func NewDescriptorService(signingKey []byte, tokenExpiration int, issuer string, audience []string, opts ...DescriptorServiceOption) *DescriptorService {
	ds := &DescriptorService{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        jwt.ClaimStrings(audience),
		logger:          defLogger{},
		now:             time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ds)
		}
	}

	return ds
}

// Mint signs a descriptor for the actor. The returned expiry is the
// session's absolute deadline; SessionStore persists it verbatim.
func (ds *DescriptorService) Mint(actor *ActorSnapshot) (SessionDescriptor, error) {
	if actor == nil {
		return SessionDescriptor{}, errors.New("actor must not be nil", errors.CategoryInternal)
	}

	now := ds.now()
	expiresAt := now.Add(time.Duration(ds.tokenExpiration) * time.Hour)

	claims := &DescriptorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ds.issuer,
			Subject:   actor.ID.String(),
			Audience:  ds.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ActorType: actor.Type,
		Role:      actor.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ds.signingKey)
	if err != nil {
		return SessionDescriptor{}, errors.Wrap(err, errors.CategoryInternal, "failed to sign session descriptor")
	}

	return SessionDescriptor{Token: signed, ExpiresAt: expiresAt}, nil
}

// Validate parses and validates a descriptor token string.
func (ds *DescriptorService) Validate(tokenString string) (*DescriptorClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ds.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ds.issuer))
	}
	if len(ds.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ds.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &DescriptorClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ds.logger.Error("descriptor validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ds.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*DescriptorClaims); ok && token.Valid {
		return claims, nil
	}

	ds.logger.Error("descriptor validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
