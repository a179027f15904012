package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
)

var now = time.Date(2025, 6, 14, 15, 30, 0, 0, time.UTC)

func bucket(t *testing.T, bs []Bucket, key string) Bucket {
	t.Helper()
	for _, b := range bs {
		if b.Key == key {
			return b
		}
	}
	t.Fatalf("no bucket %q in %v", key, bs)
	return Bucket{}
}

func TestCriticalReportedIncident(t *testing.T) {
	inc := model.Incident{ID: "i1", Severity: model.SeverityCritical, Status: model.IncidentReported, District: "Puri", CreatedAt: now}

	st := Incidents([]model.Incident{inc}, now)

	assert.Equal(t, 1, st.Active)
	require.Len(t, st.Recent, 1)
	assert.Equal(t, "i1", st.Recent[0].ID)

	crit := bucket(t, st.BySeverity, "critical")
	assert.Equal(t, "Critical", crit.Label)
	assert.Equal(t, "flame", crit.Icon)
	assert.Equal(t, 1, crit.Count)
	for _, b := range st.BySeverity {
		if b.Key != "critical" {
			assert.Zero(t, b.Count, b.Key)
		}
	}
}

func TestEmptyCollections(t *testing.T) {
	inc := Incidents(nil, now)
	assert.Zero(t, inc.Total)
	assert.Zero(t, inc.Active)
	assert.NotNil(t, inc.Recent)
	assert.Len(t, inc.BySeverity, 4)
	assert.Len(t, inc.ByStatus, 5)
	assert.Len(t, inc.Trend, TrendDays)
	for _, p := range inc.Trend {
		assert.Zero(t, p.Count)
	}

	inv := Inventory(nil)
	assert.Zero(t, inv.Items)
	assert.Zero(t, inv.LowStock)
	assert.NotNil(t, inv.LowStockItems)
	assert.Empty(t, inv.ByCategory)

	vol := Volunteers(nil)
	assert.Zero(t, vol.Total)
	assert.Empty(t, vol.ByDistrict)

	as := Assignments(nil)
	assert.Zero(t, as.Total)
	assert.Len(t, as.ByStatus, 5)
}

func TestActiveCountMatchesStatusSet(t *testing.T) {
	var incs []model.Incident
	want := 0
	for n := 0; n < 37; n++ {
		s := model.IncidentStatuses[(n*7)%len(model.IncidentStatuses)]
		incs = append(incs, model.Incident{Status: s, Severity: model.Severities[n%4], CreatedAt: now})
		if s == model.IncidentReported || s == model.IncidentAssigned || s == model.IncidentInProgress {
			want++
		}
	}
	st := Incidents(incs, now)
	assert.Equal(t, want, st.Active)
	assert.Len(t, st.Recent, want)

	total := 0
	for _, b := range st.ByStatus {
		total += b.Count
	}
	assert.Equal(t, len(incs), total)
}

func TestActiveOrdering(t *testing.T) {
	incs := []model.Incident{
		{ID: "low-new", Severity: model.SeverityLow, Status: model.IncidentReported, CreatedAt: now},
		{ID: "high-old", Severity: model.SeverityHigh, Status: model.IncidentAssigned, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "high-new", Severity: model.SeverityHigh, Status: model.IncidentInProgress, CreatedAt: now.Add(-time.Hour)},
		{ID: "closed", Severity: model.SeverityCritical, Status: model.IncidentClosed, CreatedAt: now},
	}
	st := Incidents(incs, now)
	ids := make([]string, 0, len(st.Recent))
	for _, i := range st.Recent {
		ids = append(ids, i.ID)
	}
	assert.Equal(t, []string{"high-new", "high-old", "low-new"}, ids)
}

func TestTrendWindow(t *testing.T) {
	incs := []model.Incident{
		{CreatedAt: now},
		{CreatedAt: now.Add(-2 * time.Hour)},
		{CreatedAt: now.AddDate(0, 0, -13)},
		{CreatedAt: now.AddDate(0, 0, -14)},
		{CreatedAt: now.AddDate(0, 0, 1)},
	}
	tr := Trend(incs, now, TrendDays)
	require.Len(t, tr, TrendDays)
	assert.Equal(t, "2025-06-01", tr[0].Date)
	assert.Equal(t, 1, tr[0].Count)
	assert.Equal(t, "2025-06-14", tr[TrendDays-1].Date)
	assert.Equal(t, 2, tr[TrendDays-1].Count)

	assert.Empty(t, Trend(incs, now, 0))
}

func TestInventoryLowStock(t *testing.T) {
	items := []model.InventoryItem{
		{Name: "Stretcher", Category: "medical", Condition: model.ConditionGood, Quantity: 9},
		{Name: "Rope", Category: "rescue", Condition: model.ConditionFair, Quantity: 10},
		{Name: "Bandage", Category: "medical", Condition: model.ConditionGood, Quantity: 2},
		{Name: "Pump", Category: "equipment", Condition: model.ConditionUnserviceable, Quantity: 40},
	}
	st := Inventory(items)
	assert.Equal(t, 4, st.Items)
	assert.Equal(t, 61, st.TotalQuantity)
	assert.Equal(t, 2, st.LowStock)
	require.Len(t, st.LowStockItems, 2)
	assert.Equal(t, "Bandage", st.LowStockItems[0].Name)

	require.NotEmpty(t, st.ByCategory)
	assert.Equal(t, "medical", st.ByCategory[0].Key)
	assert.Equal(t, 2, st.ByCategory[0].Count)
	assert.Equal(t, 2, bucket(t, st.ByCondition, "good").Count)
	assert.Equal(t, 0, bucket(t, st.ByCondition, "poor").Count)
}

func TestVolunteerCounts(t *testing.T) {
	vs := []model.Volunteer{
		{District: "Puri", Status: model.VolunteerPending},
		{District: "Puri", Status: model.VolunteerApproved},
		{District: "Cuttack", Status: model.VolunteerRejected},
	}
	st := Volunteers(vs)
	assert.Equal(t, VolunteerStats{
		Total: 3, Pending: 1, Approved: 1, Rejected: 1,
		ByDistrict: []Bucket{
			{Key: "Puri", Label: "Puri", Icon: access.FallbackIcon, Count: 2},
			{Key: "Cuttack", Label: "Cuttack", Icon: access.FallbackIcon, Count: 1},
		},
	}, st)
}

func TestAssignmentSummary(t *testing.T) {
	as := []model.Assignment{
		{Status: model.AssignmentAssigned},
		{Status: model.AssignmentInProgress},
		{Status: model.AssignmentCompleted},
		{Status: model.AssignmentDeclined},
	}
	st := Assignments(as)
	assert.Equal(t, 4, st.Total)
	assert.Equal(t, 2, st.Open)
	assert.Equal(t, 1, st.Completed)
	assert.Equal(t, 1, st.Declined)
	assert.Equal(t, "In progress", bucket(t, st.ByStatus, "in_progress").Label)
	assert.Equal(t, access.FallbackIcon, bucket(t, st.ByStatus, "in_progress").Icon)
}
