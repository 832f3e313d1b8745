package dto

// ========== Auth ==========

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenResponse struct {
	AccessToken  string      `json:"access"`
	RefreshToken string      `json:"refresh"`
	ExpiresIn    int         `json:"expires_in"`
	User         UserProfile `json:"user"`
}

// ========== Users ==========

// UserProfile is the /me payload.
type UserProfile struct {
	Avatar    *string `json:"avatar"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `json:"role"`
	ID        int64   `json:"id"`
	Points    int     `json:"points"`
}

// UserSummary is the compact user shape nested in other payloads.
type UserSummary struct {
	Avatar    *string `json:"avatar"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Role      string  `json:"role"`
	Email     string  `json:"email"`
	ID        int64   `json:"id"`
	Points    int     `json:"points"`
}

type EmployeeSearchQuery struct {
	Q string `query:"q"`
}
