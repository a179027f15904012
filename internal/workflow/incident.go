package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/model"
)

// incidentNext is the single forward step allowed from each status.
var incidentNext = map[model.IncidentStatus]model.IncidentStatus{
	model.IncidentReported:   model.IncidentAssigned,
	model.IncidentAssigned:   model.IncidentInProgress,
	model.IncidentInProgress: model.IncidentResolved,
	model.IncidentResolved:   model.IncidentClosed,
}

// NextIncidentStatus returns the status that follows from, and false for
// closed incidents.
func NextIncidentStatus(from model.IncidentStatus) (model.IncidentStatus, bool) {
	to, ok := incidentNext[from]
	return to, ok
}

// ReportIncident initialises a new incident filed by reporter.
func ReportIncident(inc *model.Incident, reporter access.Principal, now time.Time) error {
	title := strings.TrimSpace(inc.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if !inc.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalid, inc.Severity)
	}
	if strings.TrimSpace(inc.District) == "" {
		return fmt.Errorf("%w: district is required", ErrInvalid)
	}
	inc.Title = title
	inc.Status = model.IncidentReported
	inc.ReportedBy = reporter.UserID
	inc.AssignedTo = []string{}
	inc.ResolvedBy = nil
	inc.ResolvedAt = nil
	inc.CreatedAt = now
	inc.UpdatedAt = now
	return nil
}

// AdvanceIncident moves inc one step along
// reported -> assigned -> in_progress -> resolved -> closed.
// Entering assigned requires at least one responder; entering resolved
// records who resolved the incident.
func AdvanceIncident(inc *model.Incident, actor access.Principal, to model.IncidentStatus, now time.Time) error {
	if !actor.Caps().CanManageIncidents {
		return fmt.Errorf("%w: role %q cannot manage incidents", ErrForbidden, actor.Role)
	}
	if !to.Valid() {
		return fmt.Errorf("%w: unknown incident status %q", ErrInvalid, to)
	}
	next, ok := incidentNext[inc.Status]
	if !ok || next != to {
		return fmt.Errorf("%w: cannot move incident from %s to %s", ErrStateConflict, inc.Status, to)
	}
	if to == model.IncidentAssigned && len(inc.AssignedTo) == 0 {
		return fmt.Errorf("%w: assign at least one responder first", ErrInvalid)
	}
	if to == model.IncidentResolved {
		by := actor.UserID
		at := now
		inc.ResolvedBy = &by
		inc.ResolvedAt = &at
	}
	inc.Status = to
	inc.UpdatedAt = now
	return nil
}

// AttachResponders adds responders to inc.  Attaching the first responders
// to a reported incident moves it to assigned.  Resolved and closed
// incidents cannot take new responders.
func AttachResponders(inc *model.Incident, actor access.Principal, responders []string, now time.Time) error {
	if !actor.Caps().CanManageIncidents {
		return fmt.Errorf("%w: role %q cannot manage incidents", ErrForbidden, actor.Role)
	}
	clean := make([]string, 0, len(responders))
	for _, r := range responders {
		if r = strings.TrimSpace(r); r != "" {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return fmt.Errorf("%w: at least one responder is required", ErrInvalid)
	}
	if !inc.Status.IsActive() {
		return fmt.Errorf("%w: incident is %s", ErrStateConflict, inc.Status)
	}
	seen := make(map[string]struct{}, len(inc.AssignedTo)+len(clean))
	merged := make([]string, 0, len(inc.AssignedTo)+len(clean))
	for _, id := range append(append([]string{}, inc.AssignedTo...), clean...) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	inc.AssignedTo = merged
	if inc.Status == model.IncidentReported {
		inc.Status = model.IncidentAssigned
	}
	inc.UpdatedAt = now
	return nil
}

// SetSeverity revises the severity of inc.  It does not touch status.
func SetSeverity(inc *model.Incident, actor access.Principal, sev model.Severity, now time.Time) error {
	if !actor.Caps().CanManageIncidents {
		return fmt.Errorf("%w: role %q cannot manage incidents", ErrForbidden, actor.Role)
	}
	if !sev.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalid, sev)
	}
	inc.Severity = sev
	inc.UpdatedAt = now
	return nil
}

// ActiveIncidents returns the incidents whose status is active.
func ActiveIncidents(incs []model.Incident) []model.Incident {
	out := make([]model.Incident, 0, len(incs))
	for _, i := range incs {
		if i.IsActive() {
			out = append(out, i)
		}
	}
	return out
}
