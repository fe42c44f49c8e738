package auth

// NavigationEntry is a single sidebar link.
type NavigationEntry struct {
	Label   string `json:"label"`
	Path    string `json:"path"`
	IconRef string `json:"iconRef"`
}

var dashboardEntry = NavigationEntry{Label: "Dashboard", Path: "/", IconRef: "home"}

var employeeMenu = []NavigationEntry{
	dashboardEntry,
	{Label: "My Tasks", Path: "/tasks", IconRef: "clipboard-list"},
	{Label: "Leaves", Path: "/leaves", IconRef: "calendar"},
	{Label: "Tickets", Path: "/tickets", IconRef: "message-square"},
	{Label: "Payslips", Path: "/payslips", IconRef: "file-text"},
	{Label: "Holidays", Path: "/holidays", IconRef: "calendar"},
	{Label: "Check-in/out", Path: "/attendance", IconRef: "clock"},
}

var hrMenu = []NavigationEntry{
	dashboardEntry,
	{Label: "Employees", Path: "/employees", IconRef: "users"},
	{Label: "Leave Management", Path: "/leave-management", IconRef: "calendar"},
	{Label: "Complaint Box", Path: "/complaints", IconRef: "message-square"},
	{Label: "Payslip Upload", Path: "/payslip-upload", IconRef: "file-text"},
	{Label: "Performance", Path: "/performance", IconRef: "user-cog"},
	{Label: "Attendance Overview", Path: "/attendance-overview", IconRef: "clock"},
}

var adminMenu = []NavigationEntry{
	dashboardEntry,
	{Label: "Employee Management", Path: "/employee-management", IconRef: "users"},
	{Label: "Team Performance", Path: "/team-performance", IconRef: "user-cog"},
	{Label: "Complaint Box", Path: "/admin-complaints", IconRef: "message-square"},
	{Label: "Leave Management", Path: "/admin-leaves", IconRef: "calendar"},
	{Label: "Attendance Overview", Path: "/admin-attendance", IconRef: "clock"},
	{Label: "System Settings", Path: "/settings", IconRef: "settings"},
}

// MenuFor returns the ordered sidebar for role. Unrecognised roles get the
// employee menu. The returned slice is a copy.
func MenuFor(role Role) []NavigationEntry {
	var table []NavigationEntry
	switch role {
	case RoleHR:
		table = hrMenu
	case RoleAdmin:
		table = adminMenu
	default:
		table = employeeMenu
	}
	out := make([]NavigationEntry, len(table))
	copy(out, table)
	return out
}

// MenuForName resolves a role name the way MenuFor resolves a Role.
func MenuForName(name string) []NavigationEntry {
	role, _ := ParseRole(name)
	return MenuFor(role)
}
