// Package identity derives the player UUID passed to the game, either
// offline from the username or online from the Mojang profile API.
package identity

import (
	"crypto/md5" //nolint:gosec // G501: the offline UUID is defined as a name-based md5 UUID
	"strings"

	"github.com/google/uuid"
)

// Profile is the identity a launch is started with.
type Profile struct {
	UUID     uuid.UUID
	Username string
	// Online reports whether UUID came from the profile API.
	Online bool
}

// Undashed returns the UUID as 32 hex digits, the form the game expects for
// ${auth_uuid}.
func (p Profile) Undashed() string {
	return strings.ReplaceAll(p.UUID.String(), "-", "")
}

// OfflineUUID returns the version 3 UUID the game server assigns offline
// players: md5("OfflinePlayer:" + name) with the version and variant bits set.
func OfflineUUID(username string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username)) //nolint:gosec
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80

	id, _ := uuid.FromBytes(sum[:])
	return id
}

// Offline returns the offline profile of username.
func Offline(username string) Profile {
	return Profile{UUID: OfflineUUID(username), Username: username}
}
