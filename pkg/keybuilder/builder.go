package keybuilder

import (
	"fmt"
)

const (
	Redis   string = "redis"
	Profile string = "profile"
)

// RedisProfileKeyBuild returns the cache key for a user's profile.
func RedisProfileKeyBuild(userID string) string {
	return fmt.Sprintf("%s:%s:%s", Redis, Profile, userID)
}
