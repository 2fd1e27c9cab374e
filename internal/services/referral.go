package services

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"caterconnect_backend/internal/repositories"
	"caterconnect_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	ReferralRewardThreshold = 5

	referralPrefixLen   = 4
	referralMaxAttempts = 10
)

// GenerateReferralCode: первые 4 буквы имени в верхнем регистре (добиваются X)
// плюс число 1000-9999. Например "Ravi Kumar" -> RAVI4821.
func GenerateReferralCode(name string, intN func(n int) int) string {
	var prefix strings.Builder
	for _, r := range strings.ToUpper(name) {
		if prefix.Len() == referralPrefixLen {
			break
		}
		if r <= unicode.MaxASCII && unicode.IsLetter(r) {
			prefix.WriteRune(r)
		}
	}
	for prefix.Len() < referralPrefixLen {
		prefix.WriteByte('X')
	}

	if intN == nil {
		intN = rand.Intn
	}
	return fmt.Sprintf("%s%d", prefix.String(), 1000+intN(9000))
}

// NormalizeReferralCode - коды храним в верхнем регистре без пробелов
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// referralCodes подбирает свободный код, не больше referralMaxAttempts попыток
type referralCodes struct {
	userRepo repositories.UserRepository
	intN     func(n int) int
}

func (g *referralCodes) unique(db *gorm.DB, name string) (string, error) {
	for attempt := 0; attempt < referralMaxAttempts; attempt++ {
		code := GenerateReferralCode(name, g.intN)

		exists, err := g.userRepo.ReferralCodeExists(db, code)
		if err != nil {
			return "", apperrors.DatabaseError(err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", apperrors.ErrReferralCodeExhausted
}
