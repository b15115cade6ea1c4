package models

import "time"

// MaxBalance is the upper bound a user's balance may never exceed.
const MaxBalance int64 = 10000

type Balance struct {
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty is the record a user without stored balance reads as.
func Empty(userID int64) Balance {
	return Balance{UserID: userID}
}
