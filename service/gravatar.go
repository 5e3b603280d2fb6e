package service

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// gravatarURL returns a 200px, pg-rated avatar with the "mystery man" fallback.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
