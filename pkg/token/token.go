package token

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hertz-contrib/jwt"

	"StaffHub/config"
	"StaffHub/pkg/errors"
)

const (
	IdentityKey = "uid"

	ClaimUsername    = "username"
	ClaimIsStaff     = "is_staff"
	ClaimIsSuperuser = "is_superuser"
	ClaimRole        = "role"
	ClaimPoints      = "points"
	ClaimAvatar      = "avatar"
)

var (
	// shared by the auth middleware and token issuance
	sharedGenerator *jwt.HertzJWTMiddleware

	errGeneratorNotInitialized = stderrors.New("token generator not initialized")
)

// Subject is the principal snapshot embedded in an access token.
type Subject struct {
	Username    string
	Role        string
	Avatar      string
	UserID      int64
	Points      int
	IsStaff     bool
	IsSuperuser bool
}

// Pair is an issued access/refresh token pair. RefreshID identifies the refresh token
// so it can be stored and rotated.
type Pair struct {
	AccessToken  string
	RefreshToken string
	RefreshID    string
	ExpiresIn    int
}

func Init() error {
	var err error
	sharedGenerator, err = jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	return nil
}

// GetGenerator returns the shared generator the auth middleware is built from.
func GetGenerator() *jwt.HertzJWTMiddleware {
	return sharedGenerator
}

// RefreshTTL is the lifetime of a refresh token.
func RefreshTTL() time.Duration {
	return time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour
}

// GenerateTokenPair signs an access token carrying the subject claims and a refresh token
// carrying only the user id and a random token id.
func GenerateTokenPair(sub Subject) (Pair, error) {
	if sharedGenerator == nil {
		return Pair{}, errGeneratorNotInitialized
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute)
	uid := strconv.FormatInt(sub.UserID, 10)

	accessClaims := jwtv5.MapClaims{
		IdentityKey:      uid,
		ClaimUsername:    sub.Username,
		ClaimIsStaff:     sub.IsStaff,
		ClaimIsSuperuser: sub.IsSuperuser,
		ClaimRole:        sub.Role,
		ClaimPoints:      sub.Points,
		ClaimAvatar:      sub.Avatar,
		"iat":            now.Unix(),
		"exp":            expiresAt.Unix(),
	}

	accessToken, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, accessClaims).
		SignedString([]byte(config.Cfg.JWTSecret))
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshID := uuid.NewString()
	refreshClaims := jwtv5.MapClaims{
		IdentityKey: uid,
		"jti":       refreshID,
		"type":      "refresh",
		"iat":       now.Unix(),
		"exp":       now.Add(RefreshTTL()).Unix(),
	}

	refreshToken, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, refreshClaims).
		SignedString([]byte(config.Cfg.JWTSecret))
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresIn := int(time.Until(expiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}

	return Pair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RefreshID:    refreshID,
		ExpiresIn:    expiresIn,
	}, nil
}

// ValidateRefreshToken verifies signature, expiry and type, returning the user id and token id.
func ValidateRefreshToken(tokenString string) (int64, string, error) {
	parsed, err := jwtv5.Parse(tokenString, func(t *jwtv5.Token) (interface{}, error) {
		if t.Method != jwtv5.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(config.Cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", errors.InvalidRefreshToken
	}

	claims, ok := parsed.Claims.(jwtv5.MapClaims)
	if !ok {
		return 0, "", errors.InvalidRefreshToken
	}
	if typ, _ := claims["type"].(string); typ != "refresh" {
		return 0, "", errors.InvalidRefreshToken
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return 0, "", errors.InvalidRefreshToken
	}

	uid, ok := ParseUserID(claims[IdentityKey])
	if !ok {
		return 0, "", errors.InvalidRefreshToken
	}
	return uid, jti, nil
}

// ParseUserID accepts the uid claim as a decimal string or a JSON number.
func ParseUserID(v interface{}) (int64, bool) {
	switch id := v.(type) {
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil && n > 0
	case float64:
		return int64(id), id > 0
	}
	return 0, false
}
