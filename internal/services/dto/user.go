package dto

import "time"

// ---------------- Requests ----------------

type SyncProfileRequest struct {
	Role         string   `json:"role" validate:"required,is-user-role"`
	FullName     string   `json:"full_name" validate:"required,min=2,max=100"`
	Phone        string   `json:"phone" validate:"required,min=10,max=15"`
	ReferralCode *string  `json:"referral_code,omitempty" validate:"omitempty,max=16"`
	ServiceRole  *string  `json:"service_role,omitempty" validate:"omitempty,max=50"`
	BaseLocation *string  `json:"base_location,omitempty" validate:"omitempty,max=100"`
	DailyRate    *float64 `json:"daily_rate,omitempty" validate:"omitempty,gte=0"`
	AvatarURL    *string  `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// Identity - то, что известно о вызывающем из токена Supabase
type Identity struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// ReferredByCode - код из user_metadata.referred_by_code, проставляется при регистрации
func (i *Identity) ReferredByCode() string {
	if i == nil || i.UserMetadata == nil {
		return ""
	}
	code, _ := i.UserMetadata["referred_by_code"].(string)
	return code
}

// ---------------- Responses ----------------

type UserResponse struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	Role          string     `json:"role"`
	Tier          string     `json:"tier"`
	Phone         *string    `json:"phone,omitempty"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	ServiceRole   *string    `json:"service_role,omitempty"`
	BaseLocation  *string    `json:"base_location,omitempty"`
	DailyRate     *float64   `json:"daily_rate,omitempty"`
	ReferralCode  *string    `json:"referral_code,omitempty"`
	ReferralCount int        `json:"referral_count"`
	ProExpiresAt  *time.Time `json:"pro_expires_at,omitempty"`
	AverageRating float64    `json:"average_rating"`
	RatingCount   int        `json:"rating_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

type CurrentUserResponse struct {
	Identity *Identity     `json:"supabase_user"`
	User     *UserResponse `json:"db_user"`
}

type ReferralStatsResponse struct {
	ReferralCode  *string    `json:"referral_code"`
	ReferralCount int        `json:"referral_count"`
	RewardAt      int        `json:"reward_at"`
	Remaining     int        `json:"remaining"`
	ProExpiresAt  *time.Time `json:"pro_expires_at,omitempty"`
}

type ReferralCodeResponse struct {
	ReferralCode string `json:"referral_code"`
}

// UserSummary - короткая карточка пользователя внутри других ответов
type UserSummary struct {
	ID            string  `json:"id"`
	FullName      string  `json:"full_name"`
	AvatarURL     *string `json:"avatar_url,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
}
