package contact

import "time"

type Favorite struct {
	OwnerID   string
	TargetID  string
	CreatedAt time.Time
	Note      string
}

type RecentContact struct {
	OwnerID         string
	TargetID        string
	LastContactedAt time.Time
}
