// Package constraint 实现 NSP 的硬约束与软约束评估
package constraint

import (
	"fmt"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// HardFamily 硬约束族
type HardFamily int

const (
	FamilyOneShiftPerDay HardFamily = iota // 结构性约束，矩阵表示下恒满足
	FamilyMaxShiftsPerType
	FamilyWorkingTime
	FamilyMaxConsecutiveShifts
	FamilyMinConsecutiveShifts
	FamilyMinConsecutiveDaysOff
	FamilyMaxWeekends
	FamilyPreAssignedDaysOff
	FamilyShiftRotation
	NumHardFamilies
)

// String 返回约束族名称
func (f HardFamily) String() string {
	switch f {
	case FamilyOneShiftPerDay:
		return "one_shift_per_day"
	case FamilyMaxShiftsPerType:
		return "max_shifts_per_type"
	case FamilyWorkingTime:
		return "working_time"
	case FamilyMaxConsecutiveShifts:
		return "max_consecutive_shifts"
	case FamilyMinConsecutiveShifts:
		return "min_consecutive_shifts"
	case FamilyMinConsecutiveDaysOff:
		return "min_consecutive_days_off"
	case FamilyMaxWeekends:
		return "max_weekends"
	case FamilyPreAssignedDaysOff:
		return "pre_assigned_days_off"
	case FamilyShiftRotation:
		return "shift_rotation"
	default:
		return "unknown"
	}
}

// 各约束族的单位惩罚值，构成不可行程度的全序：
// 预指定休息日 > 衔接/周末上限 > 最小连休/连班 > 工时与类型上限
const (
	penaltyMaxShiftsPerType      = 10
	penaltyWorkingTime           = 10
	penaltyMaxConsecutiveShifts  = 10
	penaltyMinConsecutiveShifts  = 50
	penaltyMinConsecutiveDaysOff = 60
	penaltyMaxWeekends           = 100
	penaltyPreAssignedDaysOff    = 1000
	penaltyShiftRotation         = 100
)

// HardConstraints 八个硬约束族的批量与单员工评估
// 所有评估返回非正整数惩罚值，0 表示满足
type HardConstraints struct {
	inst *model.Instance
}

// NewHardConstraints 创建硬约束评估器
func NewHardConstraints(inst *model.Instance) *HardConstraints {
	return &HardConstraints{inst: inst}
}

// EvaluateMaxShiftsPerType 评估班次类型上限约束
func (h *HardConstraints) EvaluateMaxShiftsPerType(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateMaxShiftsPerTypeEmployee(s, emp)
	}
	return penalty
}

// EvaluateMaxShiftsPerTypeEmployee 评估单个员工的班次类型上限
func (h *HardConstraints) EvaluateMaxShiftsPerTypeEmployee(s *model.Schedule, employee int) int {
	penalty := 0
	for shift := 1; shift <= h.inst.NumShiftTypes(); shift++ {
		limit := h.inst.MaxShiftLimit(employee, shift)
		if limit == model.NoShiftLimit {
			continue
		}
		if count := s.ShiftCount(employee, shift); count > limit {
			penalty -= penaltyMaxShiftsPerType * (count - limit)
		}
	}
	return penalty
}

// EvaluateWorkingTime 评估总工时上下限约束
func (h *HardConstraints) EvaluateWorkingTime(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateWorkingTimeEmployee(s, emp)
	}
	return penalty
}

// EvaluateWorkingTimeEmployee 评估单个员工的总工时
func (h *HardConstraints) EvaluateWorkingTimeEmployee(s *model.Schedule, employee int) int {
	worker := h.inst.StaffAt(employee)
	total := s.TotalMinutes(employee, h.inst.ShiftDurations())

	penalty := 0
	if total > worker.MaxTotalMinutes {
		penalty -= penaltyWorkingTime
	}
	if total < worker.MinTotalMinutes {
		penalty -= penaltyWorkingTime
	}
	return penalty
}

// EvaluateMaxConsecutiveShifts 评估最大连续工作天数约束
func (h *HardConstraints) EvaluateMaxConsecutiveShifts(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateMaxConsecutiveShiftsEmployee(s, emp)
	}
	return penalty
}

// EvaluateMaxConsecutiveShiftsEmployee 评估单个员工的最大连班，超限的每一天各计一次
func (h *HardConstraints) EvaluateMaxConsecutiveShiftsEmployee(s *model.Schedule, employee int) int {
	worker := h.inst.StaffAt(employee)
	penalty := 0
	consecutive := 0
	for day := 0; day < s.HorizonDays(); day++ {
		if s.Get(employee, day) != 0 {
			consecutive++
			if consecutive > worker.MaxConsecutiveShifts {
				penalty -= penaltyMaxConsecutiveShifts
			}
		} else {
			consecutive = 0
		}
	}
	return penalty
}

// EvaluateMinConsecutiveShifts 评估最小连续工作天数约束
func (h *HardConstraints) EvaluateMinConsecutiveShifts(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateMinConsecutiveShiftsEmployee(s, emp)
	}
	return penalty
}

// EvaluateMinConsecutiveShiftsEmployee 评估单个员工过短的工作块，每个过短块计一次
func (h *HardConstraints) EvaluateMinConsecutiveShiftsEmployee(s *model.Schedule, employee int) int {
	worker := h.inst.StaffAt(employee)
	penalty := 0
	runLength := 0
	for day := 0; day < s.HorizonDays(); day++ {
		if s.Get(employee, day) != 0 {
			runLength++
		} else {
			if runLength > 0 && runLength < worker.MinConsecutiveShifts {
				penalty -= penaltyMinConsecutiveShifts
			}
			runLength = 0
		}
	}
	if runLength > 0 && runLength < worker.MinConsecutiveShifts {
		penalty -= penaltyMinConsecutiveShifts
	}
	return penalty
}

// EvaluateMinConsecutiveDaysOff 评估最小连续休息天数约束
func (h *HardConstraints) EvaluateMinConsecutiveDaysOff(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateMinConsecutiveDaysOffEmployee(s, emp)
	}
	return penalty
}

// EvaluateMinConsecutiveDaysOffEmployee 评估单个员工过短的休息块，每个过短块计一次
func (h *HardConstraints) EvaluateMinConsecutiveDaysOffEmployee(s *model.Schedule, employee int) int {
	worker := h.inst.StaffAt(employee)
	penalty := 0
	runLength := 0
	for day := 0; day < s.HorizonDays(); day++ {
		if s.Get(employee, day) == 0 {
			runLength++
		} else {
			if runLength > 0 && runLength < worker.MinConsecutiveDaysOff {
				penalty -= penaltyMinConsecutiveDaysOff
			}
			runLength = 0
		}
	}
	if runLength > 0 && runLength < worker.MinConsecutiveDaysOff {
		penalty -= penaltyMinConsecutiveDaysOff
	}
	return penalty
}

// EvaluateMaxWeekends 评估最大工作周末数约束
func (h *HardConstraints) EvaluateMaxWeekends(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateMaxWeekendsEmployee(s, emp)
	}
	return penalty
}

// EvaluateMaxWeekendsEmployee 评估单个员工的工作周末数，超限时按周末总数计罚
func (h *HardConstraints) EvaluateMaxWeekendsEmployee(s *model.Schedule, employee int) int {
	worker := h.inst.StaffAt(employee)
	count := h.CountWeekendsWorked(s, employee)
	if count > worker.MaxWeekends {
		return -penaltyMaxWeekends * count
	}
	return 0
}

// CountWeekendsWorked 统计员工工作的周末数
// 周末 w 被计入当且仅当周六或周日至少一天有班；周期末尾只含周六的周末同样计入
func (h *HardConstraints) CountWeekendsWorked(s *model.Schedule, employee int) int {
	count := 0
	for saturday := 5; saturday < s.HorizonDays(); saturday += 7 {
		if s.Get(employee, saturday) != 0 || s.Get(employee, saturday+1) != 0 {
			count++
		}
	}
	return count
}

// EvaluatePreAssignedDaysOff 评估预指定休息日约束
func (h *HardConstraints) EvaluatePreAssignedDaysOff(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluatePreAssignedDaysOffEmployee(s, emp)
	}
	return penalty
}

// EvaluatePreAssignedDaysOffEmployee 评估单个员工的预指定休息日
func (h *HardConstraints) EvaluatePreAssignedDaysOffEmployee(s *model.Schedule, employee int) int {
	penalty := 0
	for _, day := range h.inst.PreAssignedDaysOff(employee) {
		if s.Get(employee, day) != 0 {
			penalty -= penaltyPreAssignedDaysOff
		}
	}
	return penalty
}

// EvaluateShiftRotation 评估班次衔接约束
func (h *HardConstraints) EvaluateShiftRotation(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateShiftRotationEmployee(s, emp)
	}
	return penalty
}

// EvaluateShiftRotationEmployee 评估单个员工的禁止衔接对
func (h *HardConstraints) EvaluateShiftRotationEmployee(s *model.Schedule, employee int) int {
	penalty := 0
	for day := 0; day < s.HorizonDays()-1; day++ {
		current := s.Get(employee, day)
		next := s.Get(employee, day+1)
		if h.inst.IsForbiddenSuccession(current, next) {
			penalty -= penaltyShiftRotation
		}
	}
	return penalty
}

// EvaluateAll 评估全部硬约束族之和
func (h *HardConstraints) EvaluateAll(s *model.Schedule) int {
	penalty := 0
	for emp := 0; emp < s.NumEmployees(); emp++ {
		penalty += h.EvaluateEmployee(s, emp)
	}
	return penalty
}

// EvaluateEmployee 评估单个员工在全部硬约束族上的惩罚之和
func (h *HardConstraints) EvaluateEmployee(s *model.Schedule, employee int) int {
	penalty := 0
	penalty += h.EvaluateMaxShiftsPerTypeEmployee(s, employee)
	penalty += h.EvaluateWorkingTimeEmployee(s, employee)
	penalty += h.EvaluateMaxConsecutiveShiftsEmployee(s, employee)
	penalty += h.EvaluateMinConsecutiveShiftsEmployee(s, employee)
	penalty += h.EvaluateMinConsecutiveDaysOffEmployee(s, employee)
	penalty += h.EvaluateMaxWeekendsEmployee(s, employee)
	penalty += h.EvaluatePreAssignedDaysOffEmployee(s, employee)
	penalty += h.EvaluateShiftRotationEmployee(s, employee)
	return penalty
}

// EvaluateEmployeeFamilies 按约束族分项评估单个员工，供增量评估与自适应权重使用
func (h *HardConstraints) EvaluateEmployeeFamilies(s *model.Schedule, employee int) [NumHardFamilies]int {
	var penalties [NumHardFamilies]int
	penalties[FamilyOneShiftPerDay] = 0 // 矩阵表示下每格恰好一个值
	penalties[FamilyMaxShiftsPerType] = h.EvaluateMaxShiftsPerTypeEmployee(s, employee)
	penalties[FamilyWorkingTime] = h.EvaluateWorkingTimeEmployee(s, employee)
	penalties[FamilyMaxConsecutiveShifts] = h.EvaluateMaxConsecutiveShiftsEmployee(s, employee)
	penalties[FamilyMinConsecutiveShifts] = h.EvaluateMinConsecutiveShiftsEmployee(s, employee)
	penalties[FamilyMinConsecutiveDaysOff] = h.EvaluateMinConsecutiveDaysOffEmployee(s, employee)
	penalties[FamilyMaxWeekends] = h.EvaluateMaxWeekendsEmployee(s, employee)
	penalties[FamilyPreAssignedDaysOff] = h.EvaluatePreAssignedDaysOffEmployee(s, employee)
	penalties[FamilyShiftRotation] = h.EvaluateShiftRotationEmployee(s, employee)
	return penalties
}

// FamilyPenalties 按约束族分项评估整个排班
func (h *HardConstraints) FamilyPenalties(s *model.Schedule) [NumHardFamilies]int {
	var penalties [NumHardFamilies]int
	for emp := 0; emp < s.NumEmployees(); emp++ {
		empPenalties := h.EvaluateEmployeeFamilies(s, emp)
		for f := range penalties {
			penalties[f] += empPenalties[f]
		}
	}
	return penalties
}

// IsFeasible 判断排班是否满足全部硬约束
func (h *HardConstraints) IsFeasible(s *model.Schedule) bool {
	return h.EvaluateAll(s) == 0
}

// ViolationDetails 返回违反约束族的可读描述
func (h *HardConstraints) ViolationDetails(s *model.Schedule) []string {
	var details []string
	penalties := h.FamilyPenalties(s)
	for f := HardFamily(0); f < NumHardFamilies; f++ {
		if penalties[f] < 0 {
			details = append(details, fmt.Sprintf("违反约束 %s，惩罚 %d", f, penalties[f]))
		}
	}
	return details
}

// ViolatingAssignments 返回存在约束违反的员工的全部工作格 (员工, 天)
// 供引导式重启定位需要清除的分配
func (h *HardConstraints) ViolatingAssignments(s *model.Schedule) [][2]int {
	var cells [][2]int
	for emp := 0; emp < s.NumEmployees(); emp++ {
		if h.EvaluateEmployee(s, emp) >= 0 {
			continue
		}
		for day := 0; day < s.HorizonDays(); day++ {
			if s.Get(emp, day) != 0 {
				cells = append(cells, [2]int{emp, day})
			}
		}
	}
	return cells
}
