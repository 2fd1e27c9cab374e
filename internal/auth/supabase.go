package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"caterconnect_backend/internal/services/dto"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// SupabaseConfig - из секции supabase конфига
type SupabaseConfig struct {
	URL       string
	AnonKey   string
	JWTSecret string
}

// Verifier проверяет access token Supabase: сначала локально по HS256 секрету
// проекта, при неудаче через GET {url}/auth/v1/user.
type Verifier struct {
	config SupabaseConfig
	client *http.Client
}

func NewVerifier(cfg SupabaseConfig) *Verifier {
	return &Verifier{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (*dto.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	var localErr error
	if v.config.JWTSecret != "" {
		identity, err := v.verifyLocal(token)
		if err == nil {
			return identity, nil
		}
		localErr = err
	}

	if v.config.URL == "" {
		if localErr == nil {
			localErr = errors.New("supabase is not configured")
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, localErr)
	}
	return v.verifyRemote(ctx, token)
}

func (v *Verifier) verifyLocal(token string) (*dto.Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.config.JWTSecret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("jwt invalid")
	}

	identity := &dto.Identity{
		ID:           stringClaim(claims, "sub"),
		Email:        stringClaim(claims, "email"),
		Phone:        stringClaim(claims, "phone"),
		UserMetadata: mapClaim(claims, "user_metadata"),
	}
	if identity.ID == "" {
		return nil, errors.New("jwt has no subject")
	}
	return identity, nil
}

func (v *Verifier) verifyRemote(ctx context.Context, token string) (*dto.Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(v.config.URL, "/")+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.config.AnonKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: supabase returned %d", ErrInvalidToken, resp.StatusCode)
	}

	var identity dto.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode supabase user: %w", err)
	}
	if identity.ID == "" {
		return nil, fmt.Errorf("%w: supabase user has no id", ErrInvalidToken)
	}
	return &identity, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func mapClaim(claims jwt.MapClaims, key string) map[string]interface{} {
	if v, ok := claims[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
