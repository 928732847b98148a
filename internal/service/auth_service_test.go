package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"clawfans/internal/models"
	"clawfans/internal/repository"
)

func TestAuthService_GenerateAPIKey(t *testing.T) {
	auth := NewAuthService(new(MockAgentRepository))

	key, hash, err := auth.GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "cf_"))
	assert.Len(t, key, len("cf_")+32)
	assert.Len(t, hash, 64)
	assert.Equal(t, HashAPIKey(key), hash)
	assert.NotContains(t, hash, key)

	other, _, err := auth.GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestHashAPIKey(t *testing.T) {
	assert.Equal(t, HashAPIKey("cf_abc"), HashAPIKey("cf_abc"))
	assert.NotEqual(t, HashAPIKey("cf_abc"), HashAPIKey("cf_abd"))
}

func TestAuthService_Authenticate(t *testing.T) {
	agent := &models.Agent{ID: "a-1", TwitterHandle: "alice"}

	tests := []struct {
		name      string
		key       string
		setupMock func(repo *MockAgentRepository)
		expectErr error
		message   string
	}{
		{
			name:      "missing key",
			key:       "",
			setupMock: func(repo *MockAgentRepository) {},
			expectErr: ErrUnauthorized,
			message:   "API key required",
		},
		{
			name: "unknown key",
			key:  "cf_unknown",
			setupMock: func(repo *MockAgentRepository) {
				repo.On("GetByAPIKeyHash", mock.Anything, HashAPIKey("cf_unknown")).Return(nil, repository.ErrNotFound)
			},
			expectErr: ErrUnauthorized,
			message:   "Invalid API key",
		},
		{
			name: "store failure",
			key:  "cf_valid",
			setupMock: func(repo *MockAgentRepository) {
				repo.On("GetByAPIKeyHash", mock.Anything, HashAPIKey("cf_valid")).Return(nil, errors.New("connection refused"))
			},
		},
		{
			name: "valid key",
			key:  "cf_valid",
			setupMock: func(repo *MockAgentRepository) {
				repo.On("GetByAPIKeyHash", mock.Anything, HashAPIKey("cf_valid")).Return(agent, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAgentRepository)
			tt.setupMock(repo)

			got, err := NewAuthService(repo).Authenticate(context.Background(), tt.key)

			switch {
			case tt.expectErr != nil:
				assert.ErrorIs(t, err, tt.expectErr)
				assert.EqualError(t, err, tt.message)
				assert.Nil(t, got)
			case tt.name == "store failure":
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrUnauthorized)
			default:
				require.NoError(t, err)
				assert.Equal(t, agent, got)
			}

			repo.AssertExpectations(t)
		})
	}
}
