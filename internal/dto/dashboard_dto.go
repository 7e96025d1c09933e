package dto

// DashboardResponse summarises the caller's tasks.
type DashboardResponse struct {
	Role      string `json:"role"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Graded    int    `json:"graded"`
	Pending   int    `json:"pending"`
	Overdue   int    `json:"overdue"`
}
