package dto

import "github.com/noah-isme/taskboard-api/internal/models"

// ActivityListRequest narrows the audit log listing. A zero PageSize returns everything.
type ActivityListRequest struct {
	Page     int
	PageSize int
	UserID   *uint
}

// ActivityResponse is a single audit log entry.
type ActivityResponse struct {
	ID        uint   `json:"id"`
	User      string `json:"user"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

// NewActivityResponse converts a log model with its user preloaded.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	user := "System"
	if model.User != nil && model.User.ID != 0 {
		user = model.User.DisplayName()
	}
	return ActivityResponse{
		ID:        model.ID,
		User:      user,
		Action:    model.Action,
		Timestamp: model.Timestamp.Format(TimestampLayout),
	}
}
