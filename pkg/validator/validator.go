// Package validator 提供排班验证功能
package validator

import (
	"fmt"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/constraint"
)

// Severity 违反级别
type Severity string

const (
	SeverityError   Severity = "error"   // 硬约束违反
	SeverityWarning Severity = "warning" // 软约束层面的偏差
)

// Violation 单条违反信息
type Violation struct {
	Severity   Severity `json:"severity"`
	Family     string   `json:"family"`
	EmployeeID string   `json:"employee_id,omitempty"`
	Day        int      `json:"day,omitempty"`
	Message    string   `json:"message"`
	Penalty    int      `json:"penalty"`
}

// Report 验证报告
type Report struct {
	Valid      bool        `json:"valid"`
	HardScore  int         `json:"hard_score"`
	SoftScore  int         `json:"soft_score"`
	Violations []Violation `json:"violations"`
}

// Validator 排班验证器：对返回的排班按员工逐族核对硬约束，
// 并把覆盖缺口作为警告列出
type Validator struct {
	inst *model.Instance
	hard *constraint.HardConstraints
	soft *constraint.SoftConstraints
}

// New 创建验证器
func New(inst *model.Instance) *Validator {
	return &Validator{
		inst: inst,
		hard: constraint.NewHardConstraints(inst),
		soft: constraint.NewSoftConstraints(inst),
	}
}

// Validate 产出完整的验证报告
func (v *Validator) Validate(s *model.Schedule) *Report {
	report := &Report{
		HardScore: v.hard.EvaluateAll(s),
		SoftScore: v.soft.EvaluateAll(s),
	}
	report.Valid = report.HardScore == 0

	for emp := 0; emp < v.inst.NumEmployees(); emp++ {
		worker := v.inst.StaffAt(emp)
		families := v.hard.EvaluateEmployeeFamilies(s, emp)
		for f := constraint.HardFamily(0); f < constraint.NumHardFamilies; f++ {
			if families[f] >= 0 {
				continue
			}
			report.Violations = append(report.Violations, Violation{
				Severity:   SeverityError,
				Family:     f.String(),
				EmployeeID: worker.ID,
				Message:    fmt.Sprintf("员工 %s 违反约束 %s", worker.ID, f),
				Penalty:    families[f],
			})
		}
	}

	for key, gap := range v.soft.CoverageGaps(s) {
		if gap == 0 {
			continue
		}
		direction := "不足"
		if gap > 0 {
			direction = "过剩"
		}
		report.Violations = append(report.Violations, Violation{
			Severity: SeverityWarning,
			Family:   "coverage",
			Message:  fmt.Sprintf("%s 人力%s %d 人", key, direction, abs(gap)),
		})
	}

	return report
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
