package auth

import (
	"context"
)

// ActorInfo contains information about an authenticated actor.
type ActorInfo struct {
	ActorID string `json:"actor_id"`
	KeyName string `json:"key_name"` // Human-readable name of the credential
}

// Authorizer verifies a caller credential and checks that it may act as the
// given user. The orchestrator itself never authenticates; it trusts the
// user id this boundary produces.
type Authorizer interface {
	Authorize(ctx context.Context, credential, userID string) (*ActorInfo, error)
}
