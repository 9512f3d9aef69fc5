package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/projecthub/internal/app/models"
	"github.com/yigit/projecthub/internal/db"
	"github.com/yigit/projecthub/internal/pkg/apperrors"
	"github.com/yigit/projecthub/internal/pkg/dberrors"
)

var teamColumns = []string{
	"id", "scope_id", "guide_id", "guide_status", "subject_expert_id", "expert_status", "project_id", "created_at",
}

// TeamRepository handles database operations for teams and their members.
// Reads return teams assembled with members, project, faculty and reviews.
type TeamRepository struct {
	db       *pgxpool.Pool
	users    *UserRepository
	projects *ProjectRepository
	reviews  *ReviewRepository
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *pgxpool.Pool, users *UserRepository, projects *ProjectRepository, reviews *ReviewRepository) *TeamRepository {
	return &TeamRepository{db: db, users: users, projects: projects, reviews: reviews}
}

type memberRow struct {
	teamID int64
	member models.TeamMember
}

// List returns every team ordered by id
func (r *TeamRepository) List(ctx context.Context) ([]models.Team, error) {
	return r.load(ctx, psql.Select(teamColumns...).From("teams").OrderBy("id"))
}

// GetByID retrieves one assembled team
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	teams, err := r.load(ctx, psql.Select(teamColumns...).From("teams").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, apperrors.ErrTeamNotFound
	}
	return &teams[0], nil
}

func (r *TeamRepository) load(ctx context.Context, builder squirrel.SelectBuilder) ([]models.Team, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building team query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying teams: %w", err)
	}
	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.ScopeID, &t.GuideID, &t.GuideStatus, &t.SubjectExpertID, &t.ExpertStatus, &t.ProjectID, &t.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("error scanning team: %w", err)
		}
		t.Members = []models.TeamMember{}
		t.Reviews = []models.Review{}
		teams = append(teams, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return teams, nil
	}

	if err := r.assemble(ctx, teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// assemble attaches members, users, projects and reviews using one query per relation
func (r *TeamRepository) assemble(ctx context.Context, teams []models.Team) error {
	index := make(map[int64]int, len(teams))
	teamIDs := make([]int64, 0, len(teams))
	projectIDs := make([]int64, 0)
	for i, t := range teams {
		index[t.ID] = i
		teamIDs = append(teamIDs, t.ID)
		if t.ProjectID != nil {
			projectIDs = append(projectIDs, *t.ProjectID)
		}
	}

	members, err := r.membersOf(ctx, teamIDs)
	if err != nil {
		return err
	}

	userIDs := make([]int64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.member.UserID)
	}
	for _, t := range teams {
		if t.GuideID != nil {
			userIDs = append(userIDs, *t.GuideID)
		}
		if t.SubjectExpertID != nil {
			userIDs = append(userIDs, *t.SubjectExpertID)
		}
	}
	users, err := r.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return err
	}
	byID := make(map[int64]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	projects, err := r.projects.GetByIDs(ctx, projectIDs)
	if err != nil {
		return err
	}

	reviews, err := r.reviews.ListByTeams(ctx, teamIDs)
	if err != nil {
		return err
	}

	for _, m := range members {
		t := &teams[index[m.teamID]]
		m.member.User = byID[m.member.UserID]
		t.Members = append(t.Members, m.member)
	}
	for i := range teams {
		t := &teams[i]
		if t.GuideID != nil {
			t.Guide = byID[*t.GuideID]
		}
		if t.SubjectExpertID != nil {
			t.SubjectExpert = byID[*t.SubjectExpertID]
		}
		if t.ProjectID != nil {
			t.Project = projects[*t.ProjectID]
		}
	}
	for _, rv := range reviews {
		if i, ok := index[rv.TeamID]; ok {
			teams[i].Reviews = append(teams[i].Reviews, rv)
		}
	}
	return nil
}

func (r *TeamRepository) membersOf(ctx context.Context, teamIDs []int64) ([]memberRow, error) {
	sql, args, err := psql.Select("team_id", "user_id", "is_leader").From("team_members").
		Where(squirrel.Eq{"team_id": teamIDs}).
		OrderBy("joined_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building member query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying team members: %w", err)
	}
	defer rows.Close()

	out := make([]memberRow, 0)
	for rows.Next() {
		var m memberRow
		if err := rows.Scan(&m.teamID, &m.member.UserID, &m.member.IsLeader); err != nil {
			return nil, fmt.Errorf("error scanning team member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// TeamIDOfMember returns the team a student belongs to, or nil
func (r *TeamRepository) TeamIDOfMember(ctx context.Context, userID int64) (*int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT team_id FROM team_members WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error looking up team membership: %w", err)
	}
	return &id, nil
}

// Create inserts a team with its initial members in one transaction. When the team
// starts with a project, that project is marked ASSIGNED.
func (r *TeamRepository) Create(ctx context.Context, team *models.Team, memberIDs []int64, leaderID *int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := psql.Insert("teams").
			Columns("scope_id", "guide_id", "guide_status", "subject_expert_id", "expert_status", "project_id").
			Values(team.ScopeID, team.GuideID, team.GuideStatus, team.SubjectExpertID, team.ExpertStatus, team.ProjectID).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("error building create team query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&team.ID, &team.CreatedAt); err != nil {
			if dberrors.IsForeignKeyError(err) {
				return apperrors.NewBadRequestError("scope, faculty or project does not exist")
			}
			return fmt.Errorf("error creating team: %w", err)
		}

		team.Members = make([]models.TeamMember, 0, len(memberIDs))
		for _, uid := range memberIDs {
			leader := leaderID != nil && *leaderID == uid
			if err := insertMember(ctx, tx, team.ID, uid, leader); err != nil {
				return err
			}
			team.Members = append(team.Members, models.TeamMember{UserID: uid, IsLeader: leader})
		}

		if team.ProjectID != nil {
			return setProjectStatus(ctx, tx, *team.ProjectID, models.ProjectAssigned)
		}
		return nil
	})
}

func insertMember(ctx context.Context, tx execer, teamID, userID int64, leader bool) error {
	_, err := tx.Exec(ctx, `INSERT INTO team_members (team_id, user_id, is_leader) VALUES ($1, $2, $3)`, teamID, userID, leader)
	switch {
	case err == nil:
		return nil
	case dberrors.IsDuplicateConstraintError(err, "team_members_user_key"):
		return apperrors.ErrAlreadyInTeam
	case dberrors.IsForeignKeyError(err):
		return apperrors.ErrUserNotFound
	default:
		return fmt.Errorf("error adding team member: %w", err)
	}
}

// AddMember appends a student to a team as a regular member
func (r *TeamRepository) AddMember(ctx context.Context, teamID, userID int64) error {
	return insertMember(ctx, r.db, teamID, userID, false)
}

// RemoveMember removes a student from a team. Removing the leader leaves the team leaderless.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`, teamID, userID)
	if err != nil {
		return fmt.Errorf("error removing team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotTeamMember
	}
	return nil
}

// SetLeader makes userID the only leader of the team
func (r *TeamRepository) SetLeader(ctx context.Context, teamID, userID int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var isMember bool
		err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`, teamID, userID).Scan(&isMember)
		if err != nil {
			return fmt.Errorf("error checking team member: %w", err)
		}
		if !isMember {
			return apperrors.ErrNotTeamMember
		}

		// clear first so the partial unique index never sees two leaders
		if _, err := tx.Exec(ctx, `UPDATE team_members SET is_leader = FALSE WHERE team_id = $1 AND is_leader`, teamID); err != nil {
			return fmt.Errorf("error clearing team leader: %w", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE team_members SET is_leader = TRUE WHERE team_id = $1 AND user_id = $2`, teamID, userID); err != nil {
			return fmt.Errorf("error setting team leader: %w", err)
		}
		return nil
	})
}

// SetProject assigns (or with nil, unassigns) a project. The new project becomes ASSIGNED;
// the previous one returns to AVAILABLE once no other team holds it.
func (r *TeamRepository) SetProject(ctx context.Context, teamID int64, projectID *int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		var previous *int64
		err := tx.QueryRow(ctx, `SELECT project_id FROM teams WHERE id = $1 FOR UPDATE`, teamID).Scan(&previous)
		if err != nil {
			if dberrors.IsNoRows(err) {
				return apperrors.ErrTeamNotFound
			}
			return fmt.Errorf("error locking team: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE teams SET project_id = $1 WHERE id = $2`, projectID, teamID); err != nil {
			if dberrors.IsForeignKeyError(err) {
				return apperrors.ErrProjectNotFound
			}
			return fmt.Errorf("error updating team project: %w", err)
		}

		if projectID != nil {
			if err := setProjectStatus(ctx, tx, *projectID, models.ProjectAssigned); err != nil {
				return err
			}
		}

		if previous != nil && (projectID == nil || *previous != *projectID) {
			_, err := tx.Exec(ctx, `
				UPDATE projects SET status = $1
				WHERE id = $2 AND NOT EXISTS (SELECT 1 FROM teams WHERE project_id = $2)`,
				models.ProjectAvailable, *previous)
			if err != nil {
				return fmt.Errorf("error releasing previous project: %w", err)
			}
		}
		return nil
	})
}

// SetFaculty assigns (or with nil, unassigns) the guide or subject expert of a team.
// Assignments made here are approved immediately.
func (r *TeamRepository) SetFaculty(ctx context.Context, teamID int64, role models.FacultyRole, facultyID *int64) error {
	idColumn, statusColumn := "guide_id", "guide_status"
	if role == models.FacultyRoleSubjectExpert {
		idColumn, statusColumn = "subject_expert_id", "expert_status"
	}

	var status *models.ApprovalStatus
	if facultyID != nil {
		approved := models.ApprovalApproved
		status = &approved
	}

	sql, args, err := psql.Update("teams").
		Set(idColumn, facultyID).
		Set(statusColumn, status).
		Where(squirrel.Eq{"id": teamID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building faculty assignment query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("error assigning faculty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTeamNotFound
	}
	return nil
}

// MemberCountForProject sums the members of every team assigned to the project
func (r *TeamRepository) MemberCountForProject(ctx context.Context, projectID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM team_members tm
		JOIN teams t ON t.id = tm.team_id
		WHERE t.project_id = $1`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting project members: %w", err)
	}
	return n, nil
}
