package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisphere/unisphere-api/internal/models"
	appErrors "github.com/unisphere/unisphere-api/pkg/errors"
)

type mockClubRepo struct {
	clubs   map[string]*models.Club
	members map[string]map[string]models.ClubMember
}

func newMockClubRepo() *mockClubRepo {
	return &mockClubRepo{clubs: map[string]*models.Club{}, members: map[string]map[string]models.ClubMember{}}
}

func (m *mockClubRepo) List(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error) {
	var out []models.Club
	for _, c := range m.clubs {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockClubRepo) FindByID(ctx context.Context, id string) (*models.Club, error) {
	c, ok := m.clubs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *c
	copy.MemberCount = len(m.members[id])
	return &copy, nil
}

func (m *mockClubRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	for id, c := range m.clubs {
		if id != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockClubRepo) Create(ctx context.Context, club *models.Club) error {
	club.ID = "club-" + strings.ToLower(strings.ReplaceAll(club.Name, " ", "-"))
	copy := *club
	m.clubs[club.ID] = &copy
	return nil
}

func (m *mockClubRepo) Update(ctx context.Context, club *models.Club) error {
	copy := *club
	m.clubs[club.ID] = &copy
	return nil
}

func (m *mockClubRepo) Delete(ctx context.Context, id string) error {
	delete(m.clubs, id)
	return nil
}

func (m *mockClubRepo) ListMembers(ctx context.Context, clubID string) ([]models.ClubMember, error) {
	var out []models.ClubMember
	for _, mem := range m.members[clubID] {
		out = append(out, mem)
	}
	return out, nil
}

func (m *mockClubRepo) UpsertMember(ctx context.Context, member *models.ClubMember) error {
	if m.members[member.ClubID] == nil {
		m.members[member.ClubID] = map[string]models.ClubMember{}
	}
	m.members[member.ClubID][member.Email] = *member
	return nil
}

func (m *mockClubRepo) RemoveMember(ctx context.Context, clubID, email string) error {
	if _, ok := m.members[clubID][email]; !ok {
		return sql.ErrNoRows
	}
	delete(m.members[clubID], email)
	return nil
}

func TestClubServiceNameIsUnique(t *testing.T) {
	svc := NewClubService(newMockClubRepo(), nil, nil)
	_, err := svc.Create(context.Background(), ClubRequest{Name: "Chess Club", Category: "Games"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ClubRequest{Name: "chess club", Category: "Games"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClubServiceMembership(t *testing.T) {
	repo := newMockClubRepo()
	svc := NewClubService(repo, nil, nil)
	ctx := context.Background()

	club, err := svc.Create(ctx, ClubRequest{Name: "Robotics", Category: "Tech"})
	require.NoError(t, err)

	got, err := svc.AddMember(ctx, club.ID, ClubMemberRequest{Email: " Pres@Uni.edu ", Role: models.ClubRolePresident})
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, "pres@uni.edu", got.Members[0].Email)

	joined, err := svc.Join(ctx, club.ID, &models.JWTClaims{UserID: "u1", Email: "Student@uni.edu"})
	require.NoError(t, err)
	assert.Len(t, joined.Members, 2)
	assert.Equal(t, models.ClubRoleMember, repo.members[club.ID]["student@uni.edu"].Role)

	// joining again keeps the president's role untouched
	_, err = svc.Join(ctx, club.ID, &models.JWTClaims{UserID: "u0", Email: "pres@uni.edu"})
	require.NoError(t, err)
	assert.Equal(t, models.ClubRolePresident, repo.members[club.ID]["pres@uni.edu"].Role)

	require.NoError(t, svc.RemoveMember(ctx, club.ID, "STUDENT@uni.edu"))
	err = svc.RemoveMember(ctx, club.ID, "student@uni.edu")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.AddMember(ctx, club.ID, ClubMemberRequest{Email: "x@uni.edu", Role: "captain"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Join(ctx, "missing", &models.JWTClaims{UserID: "u1", Email: "a@uni.edu"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClubServiceCreateListGetUpdateDelete(t *testing.T) {
	svc := NewClubService(newMockClubRepo(), nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, ClubRequest{Name: "Chess Club", Category: "Games"})
	require.NoError(t, err)

	clubs, page, err := svc.List(ctx, models.ClubFilter{})
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Equal(t, created.ID, clubs[0].ID)
	assert.Equal(t, 1, page.TotalCount)

	_, err = svc.Update(ctx, created.ID, ClubRequest{Name: " Chess & Go Club ", Category: "Games", Description: "Weekly boards"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chess & Go Club", got.Name)
	assert.Equal(t, "Weekly boards", got.Description)

	// Renaming to its own name is not a conflict.
	_, err = svc.Update(ctx, created.ID, ClubRequest{Name: "chess & go club", Category: "Games"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "missing", ClubRequest{Name: "Other", Category: "Games"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	err = svc.Delete(ctx, created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
