package hrms

// DashboardSummary is the backend's global aggregate. It is rendered as
// returned and never recomputed from raw records.
type DashboardSummary struct {
	TotalEmployees    int                `json:"total_employees"`
	TotalPresentToday int                `json:"total_present_today"`
	TotalAbsentToday  int                `json:"total_absent_today"`
	UnmarkedToday     int                `json:"unmarked_today"`
	DepartmentCount   int                `json:"department_count"`
	DepartmentStats   []DepartmentStat   `json:"department_stats"`
	RecentAttendance  []RecentAttendance `json:"recent_attendance"`
}

type DepartmentStat struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type RecentAttendance struct {
	ID           int64  `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	Status       Status `json:"status"`
}
