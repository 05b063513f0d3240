package leave

import "time"

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:            l.ID,
		EmployeeID:    l.EmployeeID,
		EmployeeName:  l.EmployeeName,
		LeaveType:     string(l.LeaveType),
		StartDate:     l.StartDate.Format(dateLayout),
		EndDate:       l.EndDate.Format(dateLayout),
		TotalDays:     l.Days(),
		Reason:        l.Reason,
		Status:        l.Status,
		SubmittedDate: l.SubmittedDate.Format(dateLayout),
	}
	if l.DecidedAt != nil {
		decided := l.DecidedAt.UTC().Format(time.RFC3339)
		resp.DecidedAt = &decided
	}
	return resp
}

func mapToListResponse(leaves []LeaveRequest) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, mapToResponse(l))
	}
	return out
}
