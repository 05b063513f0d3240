package leave

type CreateLeaveRequest struct {
	EmployeeID    string `json:"emp_id" binding:"required"`
	EmployeeName  string `json:"emp_name" binding:"required,max=50"`
	LeaveType     string `json:"leave_type" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	Reason        string `json:"reason" binding:"max=2000"`
	SubmittedDate string `json:"submitted_date"`
}

type DecideLeaveRequest struct {
	Status string `json:"status" binding:"required"`
}

type LeaveResponse struct {
	ID            int64   `json:"id"`
	EmployeeID    string  `json:"emp_id"`
	EmployeeName  string  `json:"emp_name,omitempty"`
	LeaveType     string  `json:"leave_type"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalDays     int     `json:"total_days"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	SubmittedDate string  `json:"submitted_date"`
	DecidedAt     *string `json:"decided_at,omitempty"`
}
