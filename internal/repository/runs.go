// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/eljapi/nurse-scheduling-problem/internal/database"
	apperrors "github.com/eljapi/nurse-scheduling-problem/pkg/errors"
	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// SolveRun 一次求解运行的持久化记录，排班矩阵以紧凑格式存储
type SolveRun struct {
	ID           uuid.UUID     `json:"id"`
	InstanceName string        `json:"instance_name"`
	Mode         string        `json:"mode"`
	HardScore    int           `json:"hard_score"`
	SoftScore    int           `json:"soft_score"`
	Feasible     bool          `json:"feasible"`
	Iterations   int           `json:"iterations"`
	Restarts     int           `json:"restarts"`
	Seed         int64         `json:"seed"`
	Duration     time.Duration `json:"duration"`
	Assignments  string        `json:"assignments"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Schedule 还原记录中的排班矩阵
func (r *SolveRun) Schedule() (*model.Schedule, error) {
	return model.ScheduleFromCompactString(r.Assignments)
}

// SolveRunRepository 求解运行仓储
type SolveRunRepository struct {
	db *database.DB
}

// NewSolveRunRepository 创建仓储
func NewSolveRunRepository(db *database.DB) *SolveRunRepository {
	return &SolveRunRepository{db: db}
}

// Migrate 创建存储表
func (r *SolveRunRepository) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS solve_runs (
	id            UUID PRIMARY KEY,
	instance_name TEXT NOT NULL,
	mode          TEXT NOT NULL,
	hard_score    INTEGER NOT NULL,
	soft_score    INTEGER NOT NULL,
	feasible      BOOLEAN NOT NULL,
	iterations    INTEGER NOT NULL,
	restarts      INTEGER NOT NULL,
	seed          BIGINT NOT NULL,
	duration_ms   BIGINT NOT NULL,
	assignments   TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "创建 solve_runs 表失败")
	}
	return nil
}

// Create 写入一条求解记录
func (r *SolveRunRepository) Create(ctx context.Context, run *SolveRun) error {
	const query = `
INSERT INTO solve_runs
	(id, instance_name, mode, hard_score, soft_score, feasible, iterations, restarts, seed, duration_ms, assignments)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.InstanceName, run.Mode, run.HardScore, run.SoftScore,
		run.Feasible, run.Iterations, run.Restarts, run.Seed,
		run.Duration.Milliseconds(), run.Assignments)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入求解记录失败")
	}
	return nil
}

// GetByID 按 ID 读取求解记录
func (r *SolveRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*SolveRun, error) {
	const query = `
SELECT id, instance_name, mode, hard_score, soft_score, feasible, iterations, restarts, seed, duration_ms, assignments, created_at
FROM solve_runs WHERE id = $1`

	run := &SolveRun{}
	var durationMs int64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.InstanceName, &run.Mode, &run.HardScore, &run.SoftScore,
		&run.Feasible, &run.Iterations, &run.Restarts, &run.Seed,
		&durationMs, &run.Assignments, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.IDNotFound("求解记录", id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "读取求解记录失败")
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}

// ListByInstance 按实例名列出最近的求解记录
func (r *SolveRunRepository) ListByInstance(ctx context.Context, instanceName string, limit int) ([]*SolveRun, error) {
	const query = `
SELECT id, instance_name, mode, hard_score, soft_score, feasible, iterations, restarts, seed, duration_ms, assignments, created_at
FROM solve_runs WHERE instance_name = $1
ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, instanceName, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询求解记录失败")
	}
	defer rows.Close()

	var runs []*SolveRun
	for rows.Next() {
		run := &SolveRun{}
		var durationMs int64
		if err := rows.Scan(
			&run.ID, &run.InstanceName, &run.Mode, &run.HardScore, &run.SoftScore,
			&run.Feasible, &run.Iterations, &run.Restarts, &run.Seed,
			&durationMs, &run.Assignments, &run.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描求解记录失败")
		}
		run.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "遍历求解记录失败")
	}
	return runs, nil
}

// BestForInstance 返回某实例按 (硬, 软) 字典序最优的记录
func (r *SolveRunRepository) BestForInstance(ctx context.Context, instanceName string) (*SolveRun, error) {
	const query = `
SELECT id, instance_name, mode, hard_score, soft_score, feasible, iterations, restarts, seed, duration_ms, assignments, created_at
FROM solve_runs WHERE instance_name = $1
ORDER BY hard_score DESC, soft_score DESC LIMIT 1`

	run := &SolveRun{}
	var durationMs int64
	err := r.db.QueryRowContext(ctx, query, instanceName).Scan(
		&run.ID, &run.InstanceName, &run.Mode, &run.HardScore, &run.SoftScore,
		&run.Feasible, &run.Iterations, &run.Restarts, &run.Seed,
		&durationMs, &run.Assignments, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.IDNotFound("求解记录", instanceName)
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询最优求解记录失败")
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}
