package models

import "time"

type CaptainRequestStatus string

const (
	CaptainRequestPending  CaptainRequestStatus = "pending"
	CaptainRequestApproved CaptainRequestStatus = "approved"
	CaptainRequestRejected CaptainRequestStatus = "rejected"
)

// CaptainRequest is a user's application for the captain role, resolved by
// an administrator.
type CaptainRequest struct {
	ID        int                  `json:"id" db:"id"`
	UserID    int                  `json:"user_id" db:"user_id"`
	Reason    *string              `json:"reason,omitempty" db:"reason"`
	Status    CaptainRequestStatus `json:"status" db:"status"`
	CreatedAt time.Time            `json:"created_at" db:"created_at"`
}
