package access

// View is a dashboard section the client may render.  Icon is a key into
// the client's icon set.
type View struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

type viewRule struct {
	view  View
	allow func(Capabilities) bool
}

func always(Capabilities) bool { return true }

// viewRules is evaluated in order; the order is the display order.
var viewRules = []viewRule{
	{View{"overview", "Overview", "layout-dashboard"}, always},
	{View{"my_assignments", "My Assignments", "clipboard-list"}, func(c Capabilities) bool { return c.Scope == ScopeVolunteer }},
	{View{"my_profile", "My Profile", "user"}, func(c Capabilities) bool { return c.Scope == ScopeVolunteer }},
	{View{"training", "Training", "graduation-cap"}, always},
	{View{"volunteer_approvals", "Volunteer Approvals", "user-check"}, func(c Capabilities) bool { return c.CanApproveVolunteers }},
	{View{"incidents", "Incidents", "siren"}, func(c Capabilities) bool { return c.CanManageIncidents }},
	{View{"inventory", "Inventory", "package"}, func(c Capabilities) bool { return c.CanManageInventory }},
	{View{"reports", "Reports", "bar-chart"}, func(c Capabilities) bool { return c.CanViewReports }},
	{View{"exports", "Data Export", "download"}, func(c Capabilities) bool { return c.CanExportData }},
	{View{"districts", "All Districts", "map"}, func(c Capabilities) bool { return c.CanViewAllDistricts }},
	{View{"users", "User Management", "users"}, func(c Capabilities) bool { return c.CanManageUsers }},
	{View{"cms", "Site Content", "file-text"}, func(c Capabilities) bool { return c.CanManageCMS }},
}

// Views returns the dashboard sections enabled by caps.
func Views(caps Capabilities) []View {
	out := make([]View, 0, len(viewRules))
	for _, r := range viewRules {
		if r.allow(caps) {
			out = append(out, r.view)
		}
	}
	return out
}

// FallbackIcon is returned by IconFor for unmapped keys.
const FallbackIcon = "circle-help"

var icons = map[string]string{
	// incident severities
	"low":      "info",
	"medium":   "alert-circle",
	"high":     "alert-triangle",
	"critical": "flame",
	// incident types
	"flood":      "waves",
	"fire":       "flame",
	"cyclone":    "wind",
	"earthquake": "activity",
	"accident":   "car",
	"medical":    "heart-pulse",
	// inventory categories
	"medical_supplies": "briefcase-medical",
	"rescue":           "life-buoy",
	"communication":    "radio",
	"shelter":          "tent",
	"vehicle":          "truck",
}

// IconFor maps a severity, incident type or inventory category to an icon
// key, falling back to FallbackIcon.
func IconFor(key string) string {
	if icon, ok := icons[key]; ok {
		return icon
	}
	return FallbackIcon
}
