package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type mockFacultyRepo struct{ members map[string]*models.Faculty }

func (m *mockFacultyRepo) List(ctx context.Context, filter models.FacultyFilter) ([]models.Faculty, int, error) {
	var out []models.Faculty
	for _, f := range m.members {
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (m *mockFacultyRepo) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	f, ok := m.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *f
	return &copy, nil
}

func (m *mockFacultyRepo) Create(ctx context.Context, member *models.Faculty) error {
	member.ID = "fac-1"
	copy := *member
	m.members[member.ID] = &copy
	return nil
}

func (m *mockFacultyRepo) Update(ctx context.Context, member *models.Faculty) error {
	copy := *member
	m.members[member.ID] = &copy
	return nil
}

func (m *mockFacultyRepo) Delete(ctx context.Context, id string) error {
	delete(m.members, id)
	return nil
}

func TestFacultyServiceLifecycle(t *testing.T) {
	svc := NewFacultyService(&mockFacultyRepo{members: map[string]*models.Faculty{}}, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, FacultyRequest{Name: "Grace Hopper", Department: "CS", Email: "GRACE@uni.edu", Expertise: []string{"compilers"}})
	require.NoError(t, err)
	assert.True(t, created.Available)
	assert.Equal(t, "grace@uni.edu", created.Email)

	unavailable := false
	updated, err := svc.Update(ctx, created.ID, FacultyRequest{Name: "Grace Hopper", Department: "CS", Available: &unavailable})
	require.NoError(t, err)
	assert.False(t, updated.Available)
	assert.NotNil(t, updated.Expertise)

	_, err = svc.Create(ctx, FacultyRequest{Name: "X", Department: "Y", Social: models.SocialLinks{Website: "not a url"}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

type mockMenuRepo struct {
	mockMenuLookup
}

func (m *mockMenuRepo) List(ctx context.Context, filter models.MenuFilter) ([]models.MenuItem, int, error) {
	var out []models.MenuItem
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, len(out), nil
}

func (m *mockMenuRepo) FindByID(ctx context.Context, id string) (*models.MenuItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &it, nil
}

func (m *mockMenuRepo) Create(ctx context.Context, item *models.MenuItem) error {
	item.ID = "menu-1"
	m.items[item.ID] = *item
	return nil
}

func (m *mockMenuRepo) Update(ctx context.Context, item *models.MenuItem) error {
	m.items[item.ID] = *item
	return nil
}

func (m *mockMenuRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func TestMenuServiceRoundsPriceAndRequiresPositive(t *testing.T) {
	svc := NewMenuService(&mockMenuRepo{mockMenuLookup{items: map[string]models.MenuItem{}}}, nil, nil)

	item, err := svc.Create(context.Background(), MenuItemRequest{Name: "Latte", Category: "Drinks", Price: 3.499})
	require.NoError(t, err)
	assert.Equal(t, 3.5, item.Price)
	assert.True(t, item.Available)

	_, err = svc.Create(context.Background(), MenuItemRequest{Name: "Free lunch", Category: "Food", Price: 0})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

type mockBusRepo struct{ schedules map[string]*models.BusSchedule }

func (m *mockBusRepo) List(ctx context.Context, filter models.BusFilter) ([]models.BusSchedule, int, error) {
	var out []models.BusSchedule
	for _, s := range m.schedules {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockBusRepo) FindByID(ctx context.Context, id string) (*models.BusSchedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *s
	return &copy, nil
}

func (m *mockBusRepo) Create(ctx context.Context, schedule *models.BusSchedule) error {
	schedule.ID = "bus-1"
	copy := *schedule
	m.schedules[schedule.ID] = &copy
	return nil
}

func (m *mockBusRepo) Update(ctx context.Context, schedule *models.BusSchedule) error {
	copy := *schedule
	m.schedules[schedule.ID] = &copy
	return nil
}

func (m *mockBusRepo) Delete(ctx context.Context, id string) error {
	delete(m.schedules, id)
	return nil
}

func busRequest(dep, arr string) BusScheduleRequest {
	return BusScheduleRequest{
		RouteName:     "Campus Loop",
		RouteNumber:   "1",
		Origin:        "North Gate",
		Destination:   "Library",
		DepartureTime: dep,
		ArrivalTime:   arr,
		Days:          []string{"Monday"},
	}
}

func TestBusServiceValidatesTimes(t *testing.T) {
	svc := NewBusService(&mockBusRepo{schedules: map[string]*models.BusSchedule{}}, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, busRequest("08:00", "08:25"))
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.NotNil(t, created.Stops)

	_, err = svc.Create(ctx, busRequest("8am", "08:25"))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, busRequest("09:00", "08:25"))
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "arrivalTime")

	req := busRequest("08:00", "08:25")
	req.Days = []string{"Funday"}
	_, err = svc.Create(ctx, req)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Campus Loop", got.RouteName)
}

func TestMenuServiceCreateListGetUpdateDelete(t *testing.T) {
	svc := NewMenuService(&mockMenuRepo{mockMenuLookup{items: map[string]models.MenuItem{}}}, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, MenuItemRequest{Name: " Latte ", Category: "Drinks", Price: 3.5})
	require.NoError(t, err)
	assert.Equal(t, "Latte", created.Name)

	items, page, err := svc.List(ctx, models.MenuFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, 1, page.TotalCount)

	soldOut := false
	_, err = svc.Update(ctx, created.ID, MenuItemRequest{Name: "Oat Latte", Category: "Drinks", Price: 4.25, Available: &soldOut})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oat Latte", got.Name)
	assert.Equal(t, 4.25, got.Price)
	assert.False(t, got.Available)

	_, err = svc.Update(ctx, "missing", MenuItemRequest{Name: "X", Category: "Y", Price: 1})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	err = svc.Delete(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBusServiceCreateListGetUpdateDelete(t *testing.T) {
	svc := NewBusService(&mockBusRepo{schedules: map[string]*models.BusSchedule{}}, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, busRequest("08:00", "08:25"))
	require.NoError(t, err)

	schedules, page, err := svc.List(ctx, models.BusFilter{})
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, created.ID, schedules[0].ID)
	assert.Equal(t, 1, page.TotalCount)

	req := busRequest("09:15", "09:40")
	req.Stops = []string{"Dorms", "Gym"}
	inactive := false
	req.Active = &inactive
	_, err = svc.Update(ctx, created.ID, req)
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:15", got.DepartureTime)
	assert.Equal(t, []string{"Dorms", "Gym"}, got.Stops)
	assert.False(t, got.Active)

	_, err = svc.Update(ctx, created.ID, busRequest("10:00", "09:00"))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
