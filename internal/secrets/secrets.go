// Package secrets resolves provider credentials through the host tool's
// secret-lookup convention: an alias ("zai") paired with an environment
// variable (ZAI_API_KEY), with optional managed backends for deployments
// that do not keep keys in the environment.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Store interface {
	GetSecret(ctx context.Context, alias string) (string, error)
}

// AliasStore maps a key alias to an environment variable. An explicit key
// set with SetKey takes precedence over the environment, mirroring the host
// tool's "-k KEY" override.
type AliasStore struct {
	envVars map[string]string
	keys    map[string]string
	mu      sync.RWMutex
}

func NewAliasStore() *AliasStore {
	return &AliasStore{
		envVars: map[string]string{"zai": "ZAI_API_KEY"},
		keys:    make(map[string]string),
	}
}

// Bind registers the environment variable consulted for an alias.
func (s *AliasStore) Bind(alias, envVar string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envVars[alias] = envVar
}

// SetKey pins an explicit key for an alias, bypassing the environment.
func (s *AliasStore) SetKey(alias, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[alias] = key
}

func (s *AliasStore) GetSecret(_ context.Context, alias string) (string, error) {
	s.mu.RLock()
	key := s.keys[alias]
	envVar, bound := s.envVars[alias]
	s.mu.RUnlock()

	if strings.TrimSpace(key) != "" {
		return key, nil
	}
	if bound {
		if v := os.Getenv(envVar); strings.TrimSpace(v) != "" {
			return v, nil
		}
		return "", fmt.Errorf("API key required: set key %q or the %s environment variable", alias, envVar)
	}
	return "", fmt.Errorf("API key required: no binding for alias %q", alias)
}

// AWSStore fetches secrets from AWS Secrets Manager with a short TTL cache.
type AWSStore struct {
	client *secretsmanager.Client
	cache  map[string]*cachedSecret
	mu     sync.RWMutex
	ttl    time.Duration
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

func NewAWSStore(ctx context.Context, region string) (*AWSStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &AWSStore{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]*cachedSecret),
		ttl:    5 * time.Minute,
	}, nil
}

func NewAWSStoreWithConfig(cfg aws.Config) *AWSStore {
	return &AWSStore{
		client: secretsmanager.NewFromConfig(cfg),
		cache:  make(map[string]*cachedSecret),
		ttl:    5 * time.Minute,
	}
}

func (s *AWSStore) GetSecret(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	if cached, ok := s.cache[name]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		return cached.value, nil
	}
	s.mu.RUnlock()

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	}

	result, err := s.client.GetSecretValue(ctx, input)
	if err != nil {
		return "", fmt.Errorf("get secret %s: %w", name, err)
	}

	value := ""
	if result.SecretString != nil {
		value = *result.SecretString
	}

	s.mu.Lock()
	s.cache[name] = &cachedSecret{
		value:     value,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()

	return value, nil
}

func (s *AWSStore) SetCacheTTL(ttl time.Duration) {
	s.ttl = ttl
}

func (s *AWSStore) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedSecret)
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{
		secrets: make(map[string]string),
	}
}

func (s *MemStore) GetSecret(_ context.Context, alias string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.secrets[alias]
	if !ok {
		return "", fmt.Errorf("secret %s not found", alias)
	}
	return value, nil
}

func (s *MemStore) SetSecret(alias, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.secrets[alias] = value
}

func (s *MemStore) DeleteSecret(alias string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.secrets, alias)
}
