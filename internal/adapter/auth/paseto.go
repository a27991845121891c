package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"
)

const tokenTTL = 24 * time.Hour

type PasetoToken struct {
	parser paseto.Parser
	key    paseto.V4SymmetricKey
	ttl    time.Duration
}

// New builds the token service from a hex encoded v4 symmetric key, or a
// random key when keyHex is empty.
func New(keyHex string) (*PasetoToken, error) {
	key := paseto.NewV4SymmetricKey()
	if keyHex != "" {
		k, err := paseto.V4SymmetricKeyFromHex(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid token key: %w", err)
		}
		key = k
	}

	parser := paseto.NewParser()

	return &PasetoToken{parser: parser, key: key, ttl: tokenTTL}, nil
}

var _ port.TokenService = (*PasetoToken)(nil)

func (p *PasetoToken) CreateToken(actor domain.Actor) (string, error) {
	if actor.ID == "" || !actor.Role.Valid() {
		return "", domain.ErrTokenCreation
	}

	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(p.ttl))
	token.SetSubject(actor.ID)

	payload := port.TokenPayload{UserID: actor.ID, Role: actor.Role}
	if err := token.Set("payload", payload); err != nil {
		return "", domain.ErrTokenCreation
	}

	return token.V4Encrypt(p.key, nil), nil
}

func (p *PasetoToken) VerifyToken(token string) (*port.TokenPayload, error) {
	parsedToken, err := p.parser.ParseV4Local(p.key, token, nil)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	payload := port.TokenPayload{}
	err = parsedToken.Get("payload", &payload)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if payload.UserID == "" || !payload.Role.Valid() {
		return nil, domain.ErrInvalidToken
	}
	return &payload, nil
}
