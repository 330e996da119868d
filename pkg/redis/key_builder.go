package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
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

// KeyDeckSnapshot is the viewer-polling cache key for a presentation.
func (kb *KeyBuilder) KeyDeckSnapshot(presentationID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyDeckSnapshot, presentationID))
}

// KeyDeckVoter marks that a voter identity already voted on a presentation poll.
func (kb *KeyBuilder) KeyDeckVoter(presentationID, voterEmail string) string {
	return kb.BuildKey(fmt.Sprintf(KeyDeckVoter, presentationID, voterEmail))
}

// KeyPollVoter marks that a voter identity already voted on a standalone poll.
func (kb *KeyBuilder) KeyPollVoter(pollID, voterEmail string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPollVoter, pollID, voterEmail))
}

// KeyPollVisitor marks a unique visitor of a poll.
func (kb *KeyBuilder) KeyPollVisitor(pollID, visitorID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPollVisitor, pollID, visitorID))
}

// KeyPollByCode caches the poll id resolved from a share code.
func (kb *KeyBuilder) KeyPollByCode(code string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPollByCode, code))
}

// KeyCustom builds a key from an arbitrary pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
