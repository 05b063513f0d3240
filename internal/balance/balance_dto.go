package balance

type BalanceResponse struct {
	EmployeeID   string `json:"emp_id"`
	EmployeeName string `json:"emp_name"`
	Annual       int    `json:"annual"`
	Sick         int    `json:"sick"`
	Casual       int    `json:"casual"`
}

func mapToResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		EmployeeID:   b.EmployeeID,
		EmployeeName: b.EmployeeName,
		Annual:       b.Annual,
		Sick:         b.Sick,
		Casual:       b.Casual,
	}
}
