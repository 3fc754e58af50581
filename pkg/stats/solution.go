// Package stats 提供求解结果的统计分析
package stats

import (
	"math"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/constraint"
)

// CoverageEntry 单条人力需求的覆盖情况
type CoverageEntry struct {
	Day      int    `json:"day"`
	ShiftID  string `json:"shift_id"`
	Required int    `json:"required"`
	Actual   int    `json:"actual"`
	Gap      int    `json:"gap"` // 实际 - 需求
}

// EmployeeLoad 单名员工的工作量
type EmployeeLoad struct {
	EmployeeID   string `json:"employee_id"`
	WorkDays     int    `json:"work_days"`
	TotalMinutes int    `json:"total_minutes"`
	MinMinutes   int    `json:"min_minutes"`
	MaxMinutes   int    `json:"max_minutes"`
}

// SolutionStats 一份排班的统计汇总
type SolutionStats struct {
	// 得分
	HardScore int  `json:"hard_score"`
	SoftScore int  `json:"soft_score"`
	Feasible  bool `json:"feasible"`

	// 覆盖
	Coverage          []CoverageEntry `json:"coverage"`
	SatisfiedCoverage int             `json:"satisfied_coverage"`
	CoverageRate      float64         `json:"coverage_rate"` // 恰好满足的需求占比

	// 请求
	SatisfiedOnRequests int     `json:"satisfied_on_requests"`
	TotalOnRequests     int     `json:"total_on_requests"`
	ViolatedOffRequests int     `json:"violated_off_requests"`
	TotalOffRequests    int     `json:"total_off_requests"`
	OnRequestRate       float64 `json:"on_request_rate"`
	OffRequestRate      float64 `json:"off_request_rate"` // 未被违反的占比

	// 工作量与公平性
	Loads          []EmployeeLoad `json:"loads"`
	AvgMinutes     float64        `json:"avg_minutes"`
	MinutesStdDev  float64        `json:"minutes_std_dev"`
	TotalWorkSlots int            `json:"total_work_slots"`
	TotalOffSlots  int            `json:"total_off_slots"`
}

// Analyze 对排班做整体统计
func Analyze(inst *model.Instance, s *model.Schedule) *SolutionStats {
	evaluator := constraint.NewEvaluator(inst)
	soft := evaluator.Soft()

	result := &SolutionStats{
		HardScore: evaluator.HardScore(s),
		SoftScore: evaluator.SoftScore(s),
	}
	result.Feasible = result.HardScore == 0

	// 覆盖分析
	for _, cover := range inst.CoverageRequirements() {
		shift := inst.ShiftIndex(cover.ShiftID)
		if shift <= 0 || !inst.IsValidDay(cover.Day) {
			continue
		}
		actual := s.Coverage(cover.Day, shift)
		result.Coverage = append(result.Coverage, CoverageEntry{
			Day:      cover.Day,
			ShiftID:  cover.ShiftID,
			Required: cover.Requirement,
			Actual:   actual,
			Gap:      actual - cover.Requirement,
		})
		if actual == cover.Requirement {
			result.SatisfiedCoverage++
		}
	}
	if len(result.Coverage) > 0 {
		result.CoverageRate = float64(result.SatisfiedCoverage) / float64(len(result.Coverage))
	} else {
		result.CoverageRate = 1.0
	}

	// 请求满足率
	result.SatisfiedOnRequests = soft.SatisfiedOnRequests(s)
	result.TotalOnRequests = len(inst.ShiftOnRequests())
	result.ViolatedOffRequests = soft.ViolatedOffRequests(s)
	result.TotalOffRequests = len(inst.ShiftOffRequests())
	if result.TotalOnRequests > 0 {
		result.OnRequestRate = float64(result.SatisfiedOnRequests) / float64(result.TotalOnRequests)
	} else {
		result.OnRequestRate = 1.0
	}
	if result.TotalOffRequests > 0 {
		result.OffRequestRate = float64(result.TotalOffRequests-result.ViolatedOffRequests) / float64(result.TotalOffRequests)
	} else {
		result.OffRequestRate = 1.0
	}

	// 工作量
	durations := inst.ShiftDurations()
	totalMinutes := 0
	for emp := 0; emp < inst.NumEmployees(); emp++ {
		worker := inst.StaffAt(emp)
		minutes := s.TotalMinutes(emp, durations)
		workDays := s.HorizonDays() - s.ShiftCount(emp, 0)
		result.Loads = append(result.Loads, EmployeeLoad{
			EmployeeID:   worker.ID,
			WorkDays:     workDays,
			TotalMinutes: minutes,
			MinMinutes:   worker.MinTotalMinutes,
			MaxMinutes:   worker.MaxTotalMinutes,
		})
		totalMinutes += minutes
		result.TotalWorkSlots += workDays
		result.TotalOffSlots += s.ShiftCount(emp, 0)
	}
	if n := inst.NumEmployees(); n > 0 {
		result.AvgMinutes = float64(totalMinutes) / float64(n)
		variance := 0.0
		for _, load := range result.Loads {
			diff := float64(load.TotalMinutes) - result.AvgMinutes
			variance += diff * diff
		}
		result.MinutesStdDev = math.Sqrt(variance / float64(n))
	}

	return result
}
