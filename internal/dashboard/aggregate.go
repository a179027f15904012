// Package dashboard computes the figures shown on dashboard cards and
// charts.  Every function works on an already-scoped snapshot passed in by
// the caller and is recomputed on each request; nothing here is cached.
package dashboard

import (
	"sort"
	"time"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
)

// TrendDays is the window of the incident trend series.
const TrendDays = 14

// Bucket is one bar or slice of a chart.  Icon is a client icon key from
// access.IconFor.
type Bucket struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

// TrendPoint is the number of incidents reported on one calendar day (UTC).
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type VolunteerStats struct {
	Total      int      `json:"total"`
	Pending    int      `json:"pending"`
	Approved   int      `json:"approved"`
	Rejected   int      `json:"rejected"`
	ByDistrict []Bucket `json:"byDistrict"`
}

type IncidentStats struct {
	Total      int              `json:"total"`
	Active     int              `json:"active"`
	ByStatus   []Bucket         `json:"byStatus"`
	BySeverity []Bucket         `json:"bySeverity"`
	Trend      []TrendPoint     `json:"trend"`
	Recent     []model.Incident `json:"activeIncidents"`
}

type InventoryStats struct {
	Items         int                   `json:"items"`
	TotalQuantity int                   `json:"totalQuantity"`
	LowStock      int                   `json:"lowStock"`
	ByCategory    []Bucket              `json:"byCategory"`
	ByCondition   []Bucket              `json:"byCondition"`
	LowStockItems []model.InventoryItem `json:"lowStockItems"`
}

type AssignmentStats struct {
	Total     int      `json:"total"`
	Open      int      `json:"open"`
	Completed int      `json:"completed"`
	Declined  int      `json:"declined"`
	ByStatus  []Bucket `json:"byStatus"`
}

// labels maps enum values to chart labels.  Keys without an entry are
// shown as-is.
var labels = map[string]string{
	string(model.SeverityLow):      "Low",
	string(model.SeverityMedium):   "Medium",
	string(model.SeverityHigh):     "High",
	string(model.SeverityCritical): "Critical",

	string(model.IncidentReported):   "Reported",
	string(model.IncidentAssigned):   "Assigned",
	string(model.IncidentInProgress): "In progress",
	string(model.IncidentResolved):   "Resolved",
	string(model.IncidentClosed):     "Closed",

	string(model.AssignmentAccepted):  "Accepted",
	string(model.AssignmentCompleted): "Completed",
	string(model.AssignmentDeclined):  "Declined",

	string(model.ConditionGood):          "Good",
	string(model.ConditionFair):          "Fair",
	string(model.ConditionPoor):          "Poor",
	string(model.ConditionUnserviceable): "Unserviceable",
}

// Label returns the display label of an enum key.
func Label(key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

// fixed builds buckets in the given key order, including zero counts.
func fixed(keys []string, counts map[string]int) []Bucket {
	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Key: k, Label: Label(k), Icon: access.IconFor(k), Count: counts[k]})
	}
	return out
}

// ranked builds buckets for free-form keys, largest first, ties by key.
func ranked(counts map[string]int) []Bucket {
	out := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, Bucket{Key: k, Label: Label(k), Icon: access.IconFor(k), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func Volunteers(vs []model.Volunteer) VolunteerStats {
	st := VolunteerStats{Total: len(vs)}
	byDistrict := map[string]int{}
	for _, v := range vs {
		switch v.Status {
		case model.VolunteerPending:
			st.Pending++
		case model.VolunteerApproved:
			st.Approved++
		case model.VolunteerRejected:
			st.Rejected++
		}
		byDistrict[v.District]++
	}
	st.ByDistrict = ranked(byDistrict)
	return st
}

// Incidents summarises incs.  The trend covers the TrendDays days ending
// on now's UTC date.  Active incidents are listed most severe first, then
// newest first.
func Incidents(incs []model.Incident, now time.Time) IncidentStats {
	st := IncidentStats{Total: len(incs), Recent: []model.Incident{}}
	byStatus := map[string]int{}
	bySeverity := map[string]int{}
	for _, i := range incs {
		byStatus[string(i.Status)]++
		bySeverity[string(i.Severity)]++
		if i.IsActive() {
			st.Active++
			st.Recent = append(st.Recent, i)
		}
	}

	statusKeys := make([]string, len(model.IncidentStatuses))
	for n, s := range model.IncidentStatuses {
		statusKeys[n] = string(s)
	}
	sevKeys := make([]string, len(model.Severities))
	for n, s := range model.Severities {
		sevKeys[n] = string(s)
	}
	st.ByStatus = fixed(statusKeys, byStatus)
	st.BySeverity = fixed(sevKeys, bySeverity)
	st.Trend = Trend(incs, now, TrendDays)

	rank := map[model.Severity]int{}
	for n, s := range model.Severities {
		rank[s] = n
	}
	sort.SliceStable(st.Recent, func(a, b int) bool {
		ra, rb := rank[st.Recent[a].Severity], rank[st.Recent[b].Severity]
		if ra != rb {
			return ra > rb
		}
		return st.Recent[a].CreatedAt.After(st.Recent[b].CreatedAt)
	})
	return st
}

// Trend counts incidents per UTC day for the days days ending on now's
// date, oldest first.  Incidents outside the window are ignored.
func Trend(incs []model.Incident, now time.Time, days int) []TrendPoint {
	if days <= 0 {
		return []TrendPoint{}
	}
	end := now.UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(days - 1))
	counts := make(map[string]int, days)
	for _, i := range incs {
		d := i.CreatedAt.UTC().Truncate(24 * time.Hour)
		if d.Before(start) || d.After(end) {
			continue
		}
		counts[d.Format(time.DateOnly)]++
	}
	out := make([]TrendPoint, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		out = append(out, TrendPoint{Date: key, Count: counts[key]})
	}
	return out
}

func Inventory(items []model.InventoryItem) InventoryStats {
	st := InventoryStats{Items: len(items), LowStockItems: []model.InventoryItem{}}
	byCategory := map[string]int{}
	byCondition := map[string]int{}
	for _, it := range items {
		st.TotalQuantity += it.Quantity
		byCategory[it.Category]++
		byCondition[string(it.Condition)]++
		if it.IsLowStock() {
			st.LowStock++
			st.LowStockItems = append(st.LowStockItems, it)
		}
	}
	st.ByCategory = ranked(byCategory)
	st.ByCondition = fixed([]string{
		string(model.ConditionGood),
		string(model.ConditionFair),
		string(model.ConditionPoor),
		string(model.ConditionUnserviceable),
	}, byCondition)
	sort.SliceStable(st.LowStockItems, func(a, b int) bool {
		return st.LowStockItems[a].Quantity < st.LowStockItems[b].Quantity
	})
	return st
}

// Assignments summarises a volunteer's own assignments.
func Assignments(as []model.Assignment) AssignmentStats {
	st := AssignmentStats{Total: len(as)}
	byStatus := map[string]int{}
	for _, a := range as {
		byStatus[string(a.Status)]++
		switch a.Status {
		case model.AssignmentCompleted:
			st.Completed++
		case model.AssignmentDeclined:
			st.Declined++
		default:
			st.Open++
		}
	}
	keys := make([]string, len(model.AssignmentStatuses))
	for n, s := range model.AssignmentStatuses {
		keys[n] = string(s)
	}
	st.ByStatus = fixed(keys, byStatus)
	return st
}
