package password

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// DigestHA1 computes the RFC 2617 HA1 value md5(username:realm:password),
// hex-encoded. HA1 is keyed by the username, so the identity repository
// recomputes it whenever the username or password changes.
//
// MD5 is mandated by the digest access authentication scheme itself; it is
// not used for password storage (see [Hasher]).
func DigestHA1(username, realm, password string) string {
	sum := md5.Sum([]byte(username + ":" + realm + ":" + password))
	return hex.EncodeToString(sum[:])
}

// VerifyDigestHA1 recomputes HA1 for the given inputs and compares against
// the stored value, ignoring hex case.
func VerifyDigestHA1(username, realm, password, storedHA1 string) bool {
	return strings.EqualFold(DigestHA1(username, realm, password), storedHA1)
}
