package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskpilot/taskpilot/internal/model"
)

// DevAuthorizer trusts the path user id without verifying credentials. It
// stands in for the real identity provider in local and demo deployments,
// where authentication happens upstream.
type DevAuthorizer struct{}

func NewDevAuthorizer() *DevAuthorizer { return &DevAuthorizer{} }

func (a *DevAuthorizer) Authorize(_ context.Context, _ string, userID string) (*ActorInfo, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", model.ErrUnauthorized)
	}
	return &ActorInfo{ActorID: userID, KeyName: "dev"}, nil
}

// StaticAuthorizer authorizes callers that present a fixed shared credential.
// Useful for smoke environments that sit behind a gateway.
type StaticAuthorizer struct {
	credential string
}

func NewStaticAuthorizer(credential string) *StaticAuthorizer {
	return &StaticAuthorizer{credential: credential}
}

func (a *StaticAuthorizer) Authorize(_ context.Context, credential, userID string) (*ActorInfo, error) {
	if credential != a.credential {
		return nil, fmt.Errorf("invalid credential: %w", model.ErrUnauthorized)
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", model.ErrUnauthorized)
	}
	return &ActorInfo{ActorID: userID, KeyName: "static"}, nil
}
