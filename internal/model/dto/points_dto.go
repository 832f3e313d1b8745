package dto

import "time"

type AdjustPointsRequest struct {
	Delta  *int   `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"max=255"`
	UserID int64  `json:"user_id" validate:"required,gt=0"`
}

type PointLogQuery struct {
	UserID int64 `query:"user_id"`
}

type PointLogData struct {
	CreatedAt time.Time    `json:"created_at"`
	CreatedBy *UserSummary `json:"created_by"`
	User      UserSummary  `json:"user"`
	Reason    string       `json:"reason"`
	ID        int64        `json:"id"`
	Delta     int          `json:"delta"`
}

type ReconcileResponse struct {
	UserID int64 `json:"user_id"`
	Before int   `json:"before"`
	After  int   `json:"after"`
}

type HonorBoardEntry struct {
	Avatar   *string `json:"avatar"`
	Username string  `json:"username"`
	FullName string  `json:"full_name"`
	ID       int64   `json:"id"`
	Points   int     `json:"points"`
}

type HonorBoardData struct {
	Month        []HonorBoardEntry `json:"month"`
	Year         []HonorBoardEntry `json:"year"`
	EnabledMonth bool              `json:"enabled_month"`
	EnabledYear  bool              `json:"enabled_year"`
	Enabled      bool              `json:"enabled"`
}

type ToggleHonorBoardRequest struct {
	Enabled *bool  `json:"enabled"`
	Scope   string `json:"scope"`
}
