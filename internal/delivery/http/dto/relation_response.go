package dto

import "time"

type FavoriteResponse struct {
	TargetID  string    `json:"target_id"`
	CreatedAt time.Time `json:"created_at"`
	Note      string    `json:"note"`
}

type RecentContactResponse struct {
	TargetID        string    `json:"target_id"`
	LastContactedAt time.Time `json:"last_contacted_at"`
}

type MembershipResponse struct {
	TargetID string `json:"target_id"`
	Member   bool   `json:"member"`
}
