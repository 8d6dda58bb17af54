package auth

import (
	"strings"

	"github.com/dmitrijs2005/hrkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const BackupCodeCount = 10

// GenerateBackupCodes returns BackupCodeCount one-time codes of eight
// uppercase hex characters, and their bcrypt hashes for storage.
func GenerateBackupCodes() (codes, hashes []string, err error) {
	for i := 0; i < BackupCodeCount; i++ {
		c, err := common.MakeRandHexString(4)
		if err != nil {
			return nil, nil, err
		}
		c = strings.ToUpper(c)
		h, err := bcrypt.GenerateFromPassword([]byte(c), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, err
		}
		codes = append(codes, c)
		hashes = append(hashes, string(h))
	}
	return codes, hashes, nil
}

// NormalizeBackupCode strips separators users tend to type.
func NormalizeBackupCode(code string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(code)))
}

// MatchBackupCode returns the index of the hash matching code, or -1.
func MatchBackupCode(code string, hashes []string) int {
	code = NormalizeBackupCode(code)
	if len(code) != 8 {
		return -1
	}
	for i, h := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(code)) == nil {
			return i
		}
	}
	return -1
}

// LooksLikeTOTP tells a six-digit authenticator code from a backup code.
func LooksLikeTOTP(code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
