package model

// AlertSettings is one user's alert subscription: whether significant-move
// alerts reach them and their personal threshold in percent.
type AlertSettings struct {
	UserID    int64   `json:"user_id"`
	Enabled   bool    `json:"enabled"`
	Threshold float64 `json:"threshold"`
}

// DefaultAlertThreshold applies until a user sets their own.
const DefaultAlertThreshold = 5.0
