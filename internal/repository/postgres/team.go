package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/outreach-platform/internal/domain"
	"github.com/ignite/outreach-platform/internal/service/team"
)

// TeamRepo implements team.Repository against PostgreSQL.
type TeamRepo struct{ db *sql.DB }

// NewTeamRepo creates a Postgres-backed team repository.
func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

func (r *TeamRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	t := &domain.Team{}
	err := r.db.QueryRowContext(ctx, `
		SELECT t.id, t.name, COALESCE(t.description,''), t.created_by,
		       t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM team_members m WHERE m.team_id = t.id)
		FROM teams t
		WHERE t.id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt, &t.MemberCount)
	if err == sql.ErrNoRows {
		return nil, team.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

func (r *TeamRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, COALESCE(t.description,''), t.created_by,
		       t.created_at, t.updated_at,
		       (SELECT COUNT(*) FROM team_members mc WHERE mc.team_id = t.id)
		FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		var t domain.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedBy,
			&t.CreatedAt, &t.UpdatedAt, &t.MemberCount); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts the team and the creator's owner membership in one
// transaction so a team never exists without an owner.
func (r *TeamRepo) Create(ctx context.Context, t *domain.Team, ownerID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO teams (id, name, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`, t.ID, t.Name, t.Description, t.CreatedBy); err != nil {
		return fmt.Errorf("create team: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`, t.ID, ownerID, domain.TeamOwner); err != nil {
		return fmt.Errorf("create owner membership: %w", err)
	}
	return tx.Commit()
}

func (r *TeamRepo) Update(ctx context.Context, id uuid.UUID, name, description *string) error {
	sets := []string{}
	args := []interface{}{}
	idx := 1
	if name != nil {
		sets = append(sets, fmt.Sprintf("name = $%d", idx))
		args = append(args, *name)
		idx++
	}
	if description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", idx))
		args = append(args, *description)
		idx++
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = NOW()")

	q := fmt.Sprintf("UPDATE teams SET %s WHERE id = $%d", strings.Join(sets, ", "), idx)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return team.ErrNotFound
	}
	return nil
}

// Delete removes the team; memberships and invitations go with it via
// ON DELETE CASCADE.
func (r *TeamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return team.ErrNotFound
	}
	return nil
}

func (r *TeamRepo) GetMember(ctx context.Context, teamID, userID uuid.UUID) (*domain.TeamMember, error) {
	m := &domain.TeamMember{}
	err := r.db.QueryRowContext(ctx, `
		SELECT team_id, user_id, role, joined_at
		FROM team_members
		WHERE team_id = $1 AND user_id = $2
	`, teamID, userID).Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, team.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (r *TeamRepo) ListMembers(ctx context.Context, teamID uuid.UUID) ([]domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.team_id, m.user_id, m.role, m.joined_at, u.email, u.name
		FROM team_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.team_id = $1
		ORDER BY m.joined_at ASC
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.TeamID, &m.UserID, &m.Role, &m.JoinedAt, &m.Email, &m.Name); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *TeamRepo) AddMember(ctx context.Context, m *domain.TeamMember) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`, m.TeamID, m.UserID, m.Role)
	if isUniqueViolation(err) {
		return team.ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (r *TeamRepo) UpdateMemberRole(ctx context.Context, teamID, userID uuid.UUID, role domain.TeamRole) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE team_members SET role = $1
		WHERE team_id = $2 AND user_id = $3
	`, role, teamID, userID)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

func (r *TeamRepo) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM team_members WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return team.ErrMemberNotFound
	}
	return nil
}

func (r *TeamRepo) CountOwners(ctx context.Context, teamID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM team_members
		WHERE team_id = $1 AND role = $2
	`, teamID, domain.TeamOwner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count owners: %w", err)
	}
	return n, nil
}

func (r *TeamRepo) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations
			(id, team_id, email, role, token, status, invited_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`, inv.ID, inv.TeamID, inv.Email, inv.Role, inv.Token, inv.Status,
		inv.InvitedBy, inv.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (r *TeamRepo) ListInvitations(ctx context.Context, teamID uuid.UUID) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, email, role, token, status, invited_by, expires_at, created_at
		FROM invitations
		WHERE team_id = $1
		ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		if err := rows.Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token,
			&inv.Status, &inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *TeamRepo) GetInvitation(ctx context.Context, teamID, invID uuid.UUID) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, team_id, email, role, token, status, invited_by, expires_at, created_at
		FROM invitations
		WHERE id = $1 AND team_id = $2
	`, invID, teamID).Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token,
		&inv.Status, &inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, team.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

func (r *TeamRepo) GetInvitationByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, team_id, email, role, token, status, invited_by, expires_at, created_at
		FROM invitations
		WHERE token = $1
	`, token).Scan(&inv.ID, &inv.TeamID, &inv.Email, &inv.Role, &inv.Token,
		&inv.Status, &inv.InvitedBy, &inv.ExpiresAt, &inv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, team.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	return inv, nil
}

func (r *TeamRepo) UpdateInvitationStatus(ctx context.Context, invID uuid.UUID, status domain.InvitationStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET status = $1 WHERE id = $2
	`, status, invID)
	if err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return team.ErrInviteNotFound
	}
	return nil
}
