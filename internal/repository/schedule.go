package repository

import (
	"database/sql"

	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/core"
	"github.com/EdwardDuong/WorkFlowAutomation/pkg/workflowautomation/domain"
)

const SCHEDULE_COLUMNS = ` id, workflow_id, cron_expression, is_active, parameters, last_run_at, next_run_at, created, modified `

type ScheduleRepository struct {
	db    *sql.DB
	clock core.Clock
}

func NewScheduleRepository(db *sql.DB, clock core.Clock) *ScheduleRepository {
	return &ScheduleRepository{db: db, clock: clock}
}

func (r *ScheduleRepository) Save(s *domain.ScheduledWorkflow) (int64, error) {
	now := r.clock.Now().UTC()
	s.Created = now
	s.Modified = now
	base := `INSERT INTO scheduled_workflows (workflow_id, cron_expression, is_active, parameters, last_run_at, next_run_at, created, modified)
		VALUES (` + placeholders(1, 8) + `)`
	id, err := insertReturningID(r.db, base,
		s.WorkflowID,
		s.CronExpression,
		s.IsActive,
		s.Parameters,
		formatDateInDatabaseNull(s.LastRunAt),
		formatDateInDatabaseNull(s.NextRunAt),
		formatDateInDatabase(s.Created),
		formatDateInDatabase(s.Modified),
	)
	if err != nil {
		return 0, err
	}
	s.ID = id
	return id, nil
}

// Update writes the user editable fields and the next run time.
func (r *ScheduleRepository) Update(s *domain.ScheduledWorkflow) error {
	s.Modified = r.clock.Now().UTC()
	query := `UPDATE scheduled_workflows
		SET workflow_id = ` + placeholder(1) + `, cron_expression = ` + placeholder(2) + `, is_active = ` + placeholder(3) + `,
		    parameters = ` + placeholder(4) + `, next_run_at = ` + placeholder(5) + `, modified = ` + placeholder(6) + `
		WHERE id = ` + placeholder(7)
	res, err := r.db.Exec(query,
		s.WorkflowID,
		s.CronExpression,
		s.IsActive,
		s.Parameters,
		formatDateInDatabaseNull(s.NextRunAt),
		formatDateInDatabase(s.Modified),
		s.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateRunTimes stores the fire bookkeeping. Invalid values are written as NULL.
func (r *ScheduleRepository) UpdateRunTimes(id int64, lastRunAt sql.NullTime, nextRunAt sql.NullTime) error {
	query := `UPDATE scheduled_workflows
		SET last_run_at = ` + placeholder(1) + `, next_run_at = ` + placeholder(2) + `
		WHERE id = ` + placeholder(3)
	_, err := r.db.Exec(query, formatDateInDatabaseNull(lastRunAt), formatDateInDatabaseNull(nextRunAt), id)
	return err
}

func (r *ScheduleRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM scheduled_workflows WHERE id = `+placeholder(1), id)
	return err
}

// FindByID returns (nil, nil) if not found.
func (r *ScheduleRepository) FindByID(id int64) (*domain.ScheduledWorkflow, error) {
	s, err := scanSchedule(r.db.QueryRow(`SELECT `+SCHEDULE_COLUMNS+` FROM scheduled_workflows WHERE id = `+placeholder(1), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *ScheduleRepository) FindAll() (*[]domain.ScheduledWorkflow, error) {
	return r.query(`SELECT ` + SCHEDULE_COLUMNS + ` FROM scheduled_workflows ORDER BY id ASC`)
}

// FindActive lists the schedules that must have a live trigger.
func (r *ScheduleRepository) FindActive() (*[]domain.ScheduledWorkflow, error) {
	return r.query(`SELECT `+SCHEDULE_COLUMNS+` FROM scheduled_workflows WHERE is_active = `+placeholder(1)+` ORDER BY id ASC`, true)
}

func (r *ScheduleRepository) query(query string, args ...any) (*[]domain.ScheduledWorkflow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]domain.ScheduledWorkflow, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &schedules, nil
}

func scanSchedule(row rowScanner) (*domain.ScheduledWorkflow, error) {
	var s domain.ScheduledWorkflow
	if err := row.Scan(
		&s.ID,
		&s.WorkflowID,
		&s.CronExpression,
		&s.IsActive,
		&s.Parameters,
		&s.LastRunAt,
		&s.NextRunAt,
		&s.Created,
		&s.Modified,
	); err != nil {
		return nil, err
	}
	s.LastRunAt = utcNull(s.LastRunAt)
	s.NextRunAt = utcNull(s.NextRunAt)
	s.Created = utc(s.Created)
	s.Modified = utc(s.Modified)
	return &s, nil
}
