package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeySessionToken is where a session's bearer token for one channel lives.
func (kb *KeyBuilder) KeySessionToken(sid, channel string) string {
	return kb.BuildKey(fmt.Sprintf(KeySessionToken, sid, channel))
}

func (kb *KeyBuilder) KeyPublishedResults() string {
	return kb.BuildKey(KeyPublishedResults)
}

func (kb *KeyBuilder) KeyElectionResults(electionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyElectionResults, electionID))
}
