// Package constraint 实现 NSP 的硬约束与软约束评估
package constraint

import (
	"fmt"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// SoftConstraints 三个软约束族：上班请求、避班请求与人力覆盖
// 上班请求满足时加分，避班请求被违反或覆盖偏离需求时扣分
type SoftConstraints struct {
	inst *model.Instance
}

// NewSoftConstraints 创建软约束评估器
func NewSoftConstraints(inst *model.Instance) *SoftConstraints {
	return &SoftConstraints{inst: inst}
}

// EvaluateShiftOnRequests 评估全部上班请求
func (c *SoftConstraints) EvaluateShiftOnRequests(s *model.Schedule) int {
	score := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		score += c.EvaluateShiftOnRequestsEmployee(s, emp)
	}
	return score
}

// EvaluateShiftOnRequestsEmployee 评估单个员工的上班请求，满足一条加其权重
func (c *SoftConstraints) EvaluateShiftOnRequestsEmployee(s *model.Schedule, employee int) int {
	score := 0
	for _, req := range c.inst.OnRequestsFor(employee) {
		if !c.inst.IsValidDay(req.Day) {
			continue
		}
		if s.Get(employee, req.Day) == c.inst.ShiftIndex(req.ShiftID) {
			score += req.Weight
		}
	}
	return score
}

// EvaluateShiftOffRequests 评估全部避班请求
func (c *SoftConstraints) EvaluateShiftOffRequests(s *model.Schedule) int {
	score := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		score += c.EvaluateShiftOffRequestsEmployee(s, emp)
	}
	return score
}

// EvaluateShiftOffRequestsEmployee 评估单个员工的避班请求，违反一条减其权重
func (c *SoftConstraints) EvaluateShiftOffRequestsEmployee(s *model.Schedule, employee int) int {
	score := 0
	for _, req := range c.inst.OffRequestsFor(employee) {
		if !c.inst.IsValidDay(req.Day) {
			continue
		}
		if s.Get(employee, req.Day) == c.inst.ShiftIndex(req.ShiftID) {
			score -= req.Weight
		}
	}
	return score
}

// coverageContribution 计算单条人力需求在人数为 count 时的得分贡献
func coverageContribution(cover model.CoverageRequirement, count int) int {
	if count > cover.Requirement {
		return -(count - cover.Requirement) * abs(cover.WeightOver)
	}
	if count < cover.Requirement {
		return -(cover.Requirement - count) * abs(cover.WeightUnder)
	}
	return 0
}

// EvaluateCoverage 评估全部人力需求
func (c *SoftConstraints) EvaluateCoverage(s *model.Schedule) int {
	score := 0
	for _, cover := range c.inst.CoverageRequirements() {
		shift := c.inst.ShiftIndex(cover.ShiftID)
		if shift <= 0 || !c.inst.IsValidDay(cover.Day) {
			continue
		}
		score += coverageContribution(cover, s.Coverage(cover.Day, shift))
	}
	return score
}

// CoverageDelta 计算某天单格从 oldShift 改为 newShift 时的覆盖得分变化
// 只有 (day, oldShift) 与 (day, newShift) 两项覆盖各变动 ±1，O(1) 完成
func (c *SoftConstraints) CoverageDelta(s *model.Schedule, day, oldShift, newShift int) int {
	if oldShift == newShift {
		return 0
	}
	delta := 0
	if cover, ok := c.inst.CoverageAt(day, oldShift); ok {
		count := s.Coverage(day, oldShift)
		delta += coverageContribution(cover, count-1) - coverageContribution(cover, count)
	}
	if cover, ok := c.inst.CoverageAt(day, newShift); ok {
		count := s.Coverage(day, newShift)
		delta += coverageContribution(cover, count+1) - coverageContribution(cover, count)
	}
	return delta
}

// EvaluateAll 评估全部软约束之和
func (c *SoftConstraints) EvaluateAll(s *model.Schedule) int {
	return c.EvaluateShiftOnRequests(s) + c.EvaluateShiftOffRequests(s) + c.EvaluateCoverage(s)
}

// EvaluateEmployee 评估单个员工的软约束得分
// 覆盖约束以天为单位，没有按员工的投影，这里只含上班与避班请求
func (c *SoftConstraints) EvaluateEmployee(s *model.Schedule, employee int) int {
	return c.EvaluateShiftOnRequestsEmployee(s, employee) + c.EvaluateShiftOffRequestsEmployee(s, employee)
}

// SatisfiedOnRequests 统计被满足的上班请求条数
func (c *SoftConstraints) SatisfiedOnRequests(s *model.Schedule) int {
	satisfied := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		for _, req := range c.inst.OnRequestsFor(emp) {
			if c.inst.IsValidDay(req.Day) && s.Get(emp, req.Day) == c.inst.ShiftIndex(req.ShiftID) {
				satisfied++
			}
		}
	}
	return satisfied
}

// ViolatedOffRequests 统计被违反的避班请求条数
func (c *SoftConstraints) ViolatedOffRequests(s *model.Schedule) int {
	violated := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		for _, req := range c.inst.OffRequestsFor(emp) {
			if c.inst.IsValidDay(req.Day) && s.Get(emp, req.Day) == c.inst.ShiftIndex(req.ShiftID) {
				violated++
			}
		}
	}
	return violated
}

// CoverageGaps 返回每条人力需求的人数缺口（实际 - 需求）
func (c *SoftConstraints) CoverageGaps(s *model.Schedule) map[string]int {
	gaps := make(map[string]int)
	for _, cover := range c.inst.CoverageRequirements() {
		shift := c.inst.ShiftIndex(cover.ShiftID)
		if shift <= 0 || !c.inst.IsValidDay(cover.Day) {
			continue
		}
		key := fmt.Sprintf("Day%d_%s", cover.Day, cover.ShiftID)
		gaps[key] = s.Coverage(cover.Day, shift) - cover.Requirement
	}
	return gaps
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
