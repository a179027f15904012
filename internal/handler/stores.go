package handler

import (
	"context"
	"time"

	"github.com/civdef/volunteer-portal/internal/model"
	"github.com/civdef/volunteer-portal/internal/repository"
)

// The store interfaces are satisfied by the MySQL repositories in package
// repository and by in-memory fakes in tests.

type UserStore interface {
	Create(ctx context.Context, email, name, password string, role model.Role, district *string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context, role model.Role) ([]model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role, district *string) error
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type VolunteerStore interface {
	Create(ctx context.Context, v *model.Volunteer) error
	GetByID(ctx context.Context, id string) (model.Volunteer, error)
	GetByUserID(ctx context.Context, userID string) (model.Volunteer, error)
	List(ctx context.Context, q repository.VolunteerQuery) ([]model.Volunteer, error)
	UpdateProfile(ctx context.Context, v *model.Volunteer) error
	SaveDecision(ctx context.Context, v model.Volunteer, from model.VolunteerStatus) error
}

type IncidentStore interface {
	Create(ctx context.Context, i *model.Incident) error
	GetByID(ctx context.Context, id string) (model.Incident, error)
	List(ctx context.Context, q repository.IncidentQuery) ([]model.Incident, error)
	Save(ctx context.Context, i model.Incident, from model.IncidentStatus) error
}

type InventoryStore interface {
	Create(ctx context.Context, it *model.InventoryItem) error
	GetByID(ctx context.Context, id string) (model.InventoryItem, error)
	List(ctx context.Context, q repository.InventoryQuery) ([]model.InventoryItem, error)
	Update(ctx context.Context, it *model.InventoryItem) error
}

type TrainingStore interface {
	Create(ctx context.Context, t *model.TrainingSession) error
	CreateSeries(ctx context.Context, sessions []model.TrainingSession) error
	GetByID(ctx context.Context, id string) (model.TrainingSession, error)
	List(ctx context.Context, q repository.TrainingQuery) ([]model.TrainingSession, error)
	SaveStatus(ctx context.Context, t model.TrainingSession, from model.TrainingStatus) error
}

type AssignmentStore interface {
	Create(ctx context.Context, a *model.Assignment, check repository.CapacityCheck) error
	GetByID(ctx context.Context, id string) (model.Assignment, error)
	ListByVolunteer(ctx context.Context, volunteerID string) ([]model.Assignment, error)
	SaveStatus(ctx context.Context, a model.Assignment, from model.AssignmentStatus) error
}

type ReferenceStore interface {
	ListDistricts(ctx context.Context) ([]model.District, error)
	ListDepartments(ctx context.Context) ([]model.Department, error)
	DistrictExists(ctx context.Context, name string) (bool, error)
}

type ContentStore interface {
	ListBlocks(ctx context.Context) ([]model.ContentBlock, error)
	GetBlock(ctx context.Context, key string) (model.ContentBlock, error)
	PutBlock(ctx context.Context, b *model.ContentBlock) error
	ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error)
	GetBanner(ctx context.Context, id string) (model.Banner, error)
	CreateBanner(ctx context.Context, b *model.Banner) error
	UpdateBanner(ctx context.Context, b *model.Banner) error
}
