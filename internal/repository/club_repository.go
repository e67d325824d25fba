package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/unisphere/unisphere-api/internal/models"
)

const clubColumns = `id, name, description, category, logo, created_at, updated_at`

const memberCountColumn = `(SELECT COUNT(*) FROM club_members m WHERE m.club_id = clubs.id) AS member_count`

var clubSorts = sortSpec{
	columns: map[string]string{
		"name":      "name",
		"category":  "category",
		"createdAt": "created_at",
	},
	defaultKey:   "name",
	defaultOrder: "ASC",
}

// ClubRepository persists clubs and memberships.
type ClubRepository struct {
	db *sqlx.DB
}

// NewClubRepository constructs the repository.
func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

// List returns clubs matching the filter.
func (r *ClubRepository) List(ctx context.Context, filter models.ClubFilter) ([]models.Club, int, error) {
	var where whereClause
	if filter.Category != "" {
		where.equalsFold("category", filter.Category)
	}
	where.search(filter.Search, "name", "description", "category")

	base := "FROM clubs WHERE 1=1" + where.String()
	query := fmt.Sprintf("SELECT %s, %s %s %s %s", clubColumns, memberCountColumn, base, clubSorts.clause(filter.ListOptions), pageClause(filter.ListOptions))

	var clubs []models.Club
	if err := r.db.SelectContext(ctx, &clubs, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list clubs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count clubs: %w", err)
	}
	return clubs, total, nil
}

// FindByID returns a club with its member count.
func (r *ClubRepository) FindByID(ctx context.Context, id string) (*models.Club, error) {
	query := `SELECT ` + clubColumns + `, ` + memberCountColumn + ` FROM clubs WHERE id = $1`
	var club models.Club
	if err := r.db.GetContext(ctx, &club, query, id); err != nil {
		return nil, err
	}
	return &club, nil
}

// ExistsByName checks for a club with the same name.
func (r *ClubRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM clubs WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check club name: %w", err)
	}
	return true, nil
}

// Create inserts a club.
func (r *ClubRepository) Create(ctx context.Context, club *models.Club) error {
	if club.ID == "" {
		club.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if club.CreatedAt.IsZero() {
		club.CreatedAt = now
	}
	club.UpdatedAt = now

	const query = `INSERT INTO clubs (id, name, description, category, logo, created_at, updated_at) VALUES (:id, :name, :description, :category, :logo, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, club); err != nil {
		return fmt.Errorf("create club: %w", err)
	}
	return nil
}

// Update modifies a club.
func (r *ClubRepository) Update(ctx context.Context, club *models.Club) error {
	club.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clubs SET name = :name, description = :description, category = :category, logo = :logo, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, club); err != nil {
		return fmt.Errorf("update club: %w", err)
	}
	return nil
}

// Delete removes a club; memberships cascade.
func (r *ClubRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete club: %w", err)
	}
	return nil
}

// ListMembers returns a club's members, officers first.
func (r *ClubRepository) ListMembers(ctx context.Context, clubID string) ([]models.ClubMember, error) {
	const query = `SELECT club_id, email, role, joined_at FROM club_members WHERE club_id = $1
ORDER BY CASE role WHEN 'president' THEN 0 WHEN 'officer' THEN 1 ELSE 2 END, joined_at ASC`
	var members []models.ClubMember
	if err := r.db.SelectContext(ctx, &members, query, clubID); err != nil {
		return nil, fmt.Errorf("list club members: %w", err)
	}
	return members, nil
}

// UpsertMember adds a member or updates the role of an existing one.
func (r *ClubRepository) UpsertMember(ctx context.Context, member *models.ClubMember) error {
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	const query = `INSERT INTO club_members (club_id, email, role, joined_at) VALUES (:club_id, :email, :role, :joined_at)
ON CONFLICT (club_id, email) DO UPDATE SET role = EXCLUDED.role`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("upsert club member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership, returning sql.ErrNoRows when absent.
func (r *ClubRepository) RemoveMember(ctx context.Context, clubID, email string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM club_members WHERE club_id = $1 AND LOWER(email) = LOWER($2)`, clubID, email)
	if err != nil {
		return fmt.Errorf("remove club member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check club member delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
