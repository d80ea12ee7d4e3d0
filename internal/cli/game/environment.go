// Package game implements the install and launch commands.
package game

import (
	"context"

	"github.com/TheDevelo/minelaunch/internal/env"
	"github.com/TheDevelo/minelaunch/internal/identity"
	"github.com/TheDevelo/minelaunch/internal/state"
)

// Offline session values. Tokens are never acquired, so the game runs in
// legacy offline mode.
const (
	offlineAccessToken = "0"
	offlineUserType    = "legacy"
	emptyProperties    = "{}"
)

// ProfileResolver resolves the player identity of a launch.
type ProfileResolver interface {
	Resolve(ctx context.Context, username string, online bool) identity.Profile
}

// NewEnvironment returns the caller keys of a launch: the player identity
// and the launcher brand.
func NewEnvironment(ctx context.Context, cfg *state.Config, resolver ProfileResolver) *env.Environment {
	profile := resolver.Resolve(ctx, cfg.Profile.Username, cfg.Profile.OnlineUUID)

	return env.FromMap(map[string]string{
		"auth_player_name":  profile.Username,
		"auth_uuid":         profile.Undashed(),
		"auth_access_token": offlineAccessToken,
		"auth_session":      offlineAccessToken,
		"user_type":         offlineUserType,
		"user_properties":   emptyProperties,
		"launcher_name":     cfg.Launcher.Name,
		"launcher_version":  cfg.Launcher.Version,
	})
}
