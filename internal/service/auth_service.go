package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"clawfans/internal/models"
	"clawfans/internal/repository"
)

const (
	apiKeyPrefix = "cf_"
	apiKeyBytes  = 24
)

type AuthService interface {
	GenerateAPIKey() (key string, keyHash string, err error)
	Authenticate(ctx context.Context, apiKey string) (*models.Agent, error)
}

type authService struct {
	agentRepo repository.AgentRepository
}

func NewAuthService(agentRepo repository.AgentRepository) AuthService {
	return &authService{agentRepo: agentRepo}
}

// HashAPIKey returns the hex BLAKE2b-256 digest stored in place of the key.
func HashAPIKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (s *authService) GenerateAPIKey() (string, string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate api key: %w", err)
	}

	key := apiKeyPrefix + base64.RawURLEncoding.EncodeToString(buf)
	return key, HashAPIKey(key), nil
}

func (s *authService) Authenticate(ctx context.Context, apiKey string) (*models.Agent, error) {
	if apiKey == "" {
		return nil, newError(ErrUnauthorized, "API key required")
	}

	agent, err := s.agentRepo.GetByAPIKeyHash(ctx, HashAPIKey(apiKey))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "Invalid API key")
		}
		return nil, err
	}

	return agent, nil
}
