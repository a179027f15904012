package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civdef/volunteer-portal/internal/access"
	"github.com/civdef/volunteer-portal/internal/middleware"
	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/queue"
	"github.com/civdef/volunteer-portal/internal/repository"
	"github.com/civdef/volunteer-portal/internal/utils"
	"github.com/civdef/volunteer-portal/internal/validation"
)

var testNow = time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

var (
	stateAdmin = access.Principal{UserID: "sa", Role: model.RoleStateAdmin}
	puriAdmin  = access.Principal{UserID: "da-puri", Role: model.RoleDistrictAdmin, District: "Puri"}
	cmsManager = access.Principal{UserID: "cms", Role: model.RoleCMSManager}
)

func volunteerUser(id string) access.Principal {
	return access.Principal{UserID: id, Role: model.RoleVolunteer}
}

type recPub struct {
	mu     sync.Mutex
	events []queue.Event
}

func (p *recPub) Publish(_ context.Context, ev queue.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recPub) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func testBase(pub queue.Publisher) Base {
	b := NewBase(zap.NewNop(), pub)
	b.Clock = func() time.Time { return testNow }
	return b
}

// asCaller stands in for JWTAuth.
func asCaller(p access.Principal) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			middleware.WithPrincipal(c, p)
			return next(c)
		}
	}
}

// callAs registers h on a fresh Echo for one request made by p.
func callAs(t *testing.T, p access.Principal, method, route, target string, body any, h echo.HandlerFunc, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = validation.New()
	e.Add(method, route, h, append([]echo.MiddlewareFunc{asCaller(p)}, mw...)...)

	var rdr *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(bs)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func inScope(s repository.DistrictScope, district string) bool {
	if s.None {
		return false
	}
	return s.All || s.District == district
}

// ----- users and tokens -----

type fakeUsers struct {
	byID map[string]model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[string]model.User{}} }

func (f *fakeUsers) Create(_ context.Context, email, name, password string, role model.Role, district *string, cost int) (model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return model.User{}, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{ID: uuid.NewString(), Email: email, Name: name, PasswordHash: hash, Role: role, District: district, IsActive: true}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, role model.Role) ([]model.User, error) {
	out := []model.User{}
	for _, u := range f.byID {
		if role == "" || u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id string, role model.Role, district *string) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role, u.District = role, district
	f.byID[id] = u
	return nil
}

type tokenEntry struct {
	user    string
	exp     time.Time
	revoked bool
}

type fakeTokens struct {
	byHash map[string]tokenEntry
}

func newFakeTokens() *fakeTokens { return &fakeTokens{byHash: map[string]tokenEntry{}} }

func (f *fakeTokens) StoreRefresh(_ context.Context, userID, hash string, exp time.Time) error {
	e := f.byHash[hash]
	e.user, e.exp = userID, exp
	f.byHash[hash] = e
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string, now time.Time) (string, error) {
	e, ok := f.byHash[hash]
	if !ok || e.revoked || !e.exp.After(now) {
		return "", repository.ErrNotFound
	}
	return e.user, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	if e, ok := f.byHash[hash]; ok {
		e.revoked = true
		f.byHash[hash] = e
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID string) error {
	for h, e := range f.byHash {
		if e.user == userID {
			e.revoked = true
			f.byHash[h] = e
		}
	}
	return nil
}

// ----- volunteers -----

type fakeVolunteers struct {
	byID map[string]model.Volunteer
}

func newFakeVolunteers(vs ...model.Volunteer) *fakeVolunteers {
	f := &fakeVolunteers{byID: map[string]model.Volunteer{}}
	for _, v := range vs {
		f.byID[v.ID] = v
	}
	return f
}

func (f *fakeVolunteers) Create(_ context.Context, v *model.Volunteer) error {
	for _, o := range f.byID {
		if o.UserID == v.UserID {
			return repository.ErrConflict
		}
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.Status = model.VolunteerPending
	f.byID[v.ID] = *v
	return nil
}

func (f *fakeVolunteers) GetByID(_ context.Context, id string) (model.Volunteer, error) {
	if v, ok := f.byID[id]; ok {
		return v, nil
	}
	return model.Volunteer{}, repository.ErrNotFound
}

func (f *fakeVolunteers) GetByUserID(_ context.Context, userID string) (model.Volunteer, error) {
	for _, v := range f.byID {
		if v.UserID == userID {
			return v, nil
		}
	}
	return model.Volunteer{}, repository.ErrNotFound
}

func (f *fakeVolunteers) List(_ context.Context, q repository.VolunteerQuery) ([]model.Volunteer, error) {
	out := []model.Volunteer{}
	for _, v := range f.byID {
		if !inScope(q.Scope, v.District) || (q.Status != "" && v.Status != q.Status) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVolunteers) UpdateProfile(_ context.Context, v *model.Volunteer) error {
	old, ok := f.byID[v.ID]
	if !ok {
		return repository.ErrNotFound
	}
	v.Status = old.Status
	f.byID[v.ID] = *v
	return nil
}

func (f *fakeVolunteers) SaveDecision(_ context.Context, v model.Volunteer, from model.VolunteerStatus) error {
	old, ok := f.byID[v.ID]
	if !ok || old.Status != from {
		return repository.ErrConflict
	}
	f.byID[v.ID] = v
	return nil
}

// ----- incidents -----

type fakeIncidents struct {
	byID map[string]model.Incident
}

func newFakeIncidents(incs ...model.Incident) *fakeIncidents {
	f := &fakeIncidents{byID: map[string]model.Incident{}}
	for _, i := range incs {
		f.byID[i.ID] = i
	}
	return f
}

func (f *fakeIncidents) Create(_ context.Context, i *model.Incident) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	f.byID[i.ID] = *i
	return nil
}

func (f *fakeIncidents) GetByID(_ context.Context, id string) (model.Incident, error) {
	if i, ok := f.byID[id]; ok {
		return i, nil
	}
	return model.Incident{}, repository.ErrNotFound
}

func (f *fakeIncidents) List(_ context.Context, q repository.IncidentQuery) ([]model.Incident, error) {
	out := []model.Incident{}
	for _, i := range f.byID {
		if q.ReportedBy != "" {
			if i.ReportedBy != q.ReportedBy {
				continue
			}
		} else if !inScope(q.Scope, i.District) {
			continue
		}
		if (q.Status != "" && i.Status != q.Status) || (q.Severity != "" && i.Severity != q.Severity) {
			continue
		}
		if q.ActiveOnly && !i.IsActive() {
			continue
		}
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (f *fakeIncidents) Save(_ context.Context, i model.Incident, from model.IncidentStatus) error {
	old, ok := f.byID[i.ID]
	if !ok || old.Status != from {
		return repository.ErrConflict
	}
	f.byID[i.ID] = i
	return nil
}

// ----- inventory -----

type fakeItems struct {
	byID map[string]model.InventoryItem
}

func newFakeItems(items ...model.InventoryItem) *fakeItems {
	f := &fakeItems{byID: map[string]model.InventoryItem{}}
	for _, it := range items {
		f.byID[it.ID] = it
	}
	return f
}

func (f *fakeItems) Create(_ context.Context, it *model.InventoryItem) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	f.byID[it.ID] = *it
	return nil
}

func (f *fakeItems) GetByID(_ context.Context, id string) (model.InventoryItem, error) {
	if it, ok := f.byID[id]; ok {
		return it, nil
	}
	return model.InventoryItem{}, repository.ErrNotFound
}

func (f *fakeItems) List(_ context.Context, q repository.InventoryQuery) ([]model.InventoryItem, error) {
	out := []model.InventoryItem{}
	for _, it := range f.byID {
		if !inScope(q.Scope, it.District) || (q.LowStock && !it.IsLowStock()) {
			continue
		}
		if q.Category != "" && it.Category != q.Category {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (f *fakeItems) Update(_ context.Context, it *model.InventoryItem) error {
	if _, ok := f.byID[it.ID]; !ok {
		return repository.ErrNotFound
	}
	f.byID[it.ID] = *it
	return nil
}

// ----- training -----

type fakeSessions struct {
	byID map[string]model.TrainingSession
}

func newFakeSessions(ss ...model.TrainingSession) *fakeSessions {
	f := &fakeSessions{byID: map[string]model.TrainingSession{}}
	for _, s := range ss {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSessions) Create(_ context.Context, s *model.TrainingSession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSessions) CreateSeries(ctx context.Context, ss []model.TrainingSession) error {
	series := uuid.NewString()
	for i := range ss {
		ss[i].SeriesID = &series
		if err := f.Create(ctx, &ss[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeSessions) GetByID(_ context.Context, id string) (model.TrainingSession, error) {
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return model.TrainingSession{}, repository.ErrNotFound
}

func (f *fakeSessions) List(_ context.Context, q repository.TrainingQuery) ([]model.TrainingSession, error) {
	out := []model.TrainingSession{}
	for _, s := range f.byID {
		if q.Status != "" && s.Status != q.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].StartsAt.Before(out[b].StartsAt) })
	return out, nil
}

func (f *fakeSessions) SaveStatus(_ context.Context, s model.TrainingSession, from model.TrainingStatus) error {
	old, ok := f.byID[s.ID]
	if !ok || old.Status != from {
		return repository.ErrConflict
	}
	f.byID[s.ID] = s
	return nil
}

// ----- assignments -----

type fakeAssignments struct {
	byID     map[string]model.Assignment
	sessions *fakeSessions
}

func newFakeAssignments(sessions *fakeSessions, as ...model.Assignment) *fakeAssignments {
	f := &fakeAssignments{byID: map[string]model.Assignment{}, sessions: sessions}
	for _, a := range as {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAssignments) Create(ctx context.Context, a *model.Assignment, check repository.CapacityCheck) error {
	if a.TrainingSessionID != nil {
		s, err := f.sessions.GetByID(ctx, *a.TrainingSessionID)
		if err != nil {
			return err
		}
		taken := 0
		for _, o := range f.byID {
			if o.TrainingSessionID != nil && *o.TrainingSessionID == s.ID && o.Status != model.AssignmentDeclined {
				taken++
			}
		}
		if err := check(s, taken); err != nil {
			return err
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	f.byID[a.ID] = *a
	return nil
}

func (f *fakeAssignments) GetByID(_ context.Context, id string) (model.Assignment, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return model.Assignment{}, repository.ErrNotFound
}

func (f *fakeAssignments) ListByVolunteer(_ context.Context, volunteerID string) ([]model.Assignment, error) {
	out := []model.Assignment{}
	for _, a := range f.byID {
		if a.VolunteerID == volunteerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAssignments) SaveStatus(_ context.Context, a model.Assignment, from model.AssignmentStatus) error {
	old, ok := f.byID[a.ID]
	if !ok || old.Status != from {
		return repository.ErrConflict
	}
	f.byID[a.ID] = a
	return nil
}

// ----- reference and content -----

type fakeRefs struct {
	districts []model.District
}

func newFakeRefs(names ...string) *fakeRefs {
	f := &fakeRefs{}
	for _, n := range names {
		f.districts = append(f.districts, model.District{ID: n, Name: n, Code: strings.ToUpper(n[:3])})
	}
	return f
}

func (f *fakeRefs) ListDistricts(context.Context) ([]model.District, error) { return f.districts, nil }

func (f *fakeRefs) ListDepartments(context.Context) ([]model.Department, error) {
	return []model.Department{{ID: "fire", Name: "Fire Services", Code: "FIRE"}}, nil
}

func (f *fakeRefs) DistrictExists(_ context.Context, name string) (bool, error) {
	for _, d := range f.districts {
		if d.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type fakeContent struct {
	blocks  map[string]model.ContentBlock
	banners map[string]model.Banner
}

func newFakeContent() *fakeContent {
	return &fakeContent{blocks: map[string]model.ContentBlock{}, banners: map[string]model.Banner{}}
}

func (f *fakeContent) ListBlocks(context.Context) ([]model.ContentBlock, error) {
	out := []model.ContentBlock{}
	for _, b := range f.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeContent) GetBlock(_ context.Context, key string) (model.ContentBlock, error) {
	if b, ok := f.blocks[key]; ok {
		return b, nil
	}
	return model.ContentBlock{}, repository.ErrNotFound
}

func (f *fakeContent) PutBlock(_ context.Context, b *model.ContentBlock) error {
	f.blocks[b.Key] = *b
	return nil
}

func (f *fakeContent) ListBanners(_ context.Context, activeOnly bool) ([]model.Banner, error) {
	out := []model.Banner{}
	for _, b := range f.banners {
		if !activeOnly || b.Active {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeContent) GetBanner(_ context.Context, id string) (model.Banner, error) {
	if b, ok := f.banners[id]; ok {
		return b, nil
	}
	return model.Banner{}, repository.ErrNotFound
}

func (f *fakeContent) CreateBanner(_ context.Context, b *model.Banner) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	f.banners[b.ID] = *b
	return nil
}

func (f *fakeContent) UpdateBanner(_ context.Context, b *model.Banner) error {
	if _, ok := f.banners[b.ID]; !ok {
		return repository.ErrNotFound
	}
	f.banners[b.ID] = *b
	return nil
}

var (
	_ UserStore       = (*fakeUsers)(nil)
	_ TokenStore      = (*fakeTokens)(nil)
	_ VolunteerStore  = (*fakeVolunteers)(nil)
	_ IncidentStore   = (*fakeIncidents)(nil)
	_ InventoryStore  = (*fakeItems)(nil)
	_ TrainingStore   = (*fakeSessions)(nil)
	_ AssignmentStore = (*fakeAssignments)(nil)
	_ ReferenceStore  = (*fakeRefs)(nil)
	_ ContentStore    = (*fakeContent)(nil)

	_ UserStore       = (*repository.UserRepo)(nil)
	_ TokenStore      = (*repository.TokenRepo)(nil)
	_ VolunteerStore  = (*repository.VolunteerRepo)(nil)
	_ IncidentStore   = (*repository.IncidentRepo)(nil)
	_ InventoryStore  = (*repository.InventoryRepo)(nil)
	_ TrainingStore   = (*repository.TrainingRepo)(nil)
	_ AssignmentStore = (*repository.AssignmentRepo)(nil)
	_ ReferenceStore  = (*repository.ReferenceRepo)(nil)
	_ ContentStore    = (*repository.ContentRepo)(nil)
)
