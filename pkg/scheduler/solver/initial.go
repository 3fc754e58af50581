// Package solver 提供排班初始解构造
package solver

import (
	"math/rand"

	"github.com/eljapi/nurse-scheduling-problem/pkg/logger"
	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// 步骤 3 先行构造的天数与步骤 5 的补时阈值（分钟）
const (
	initialDays     = 4
	topUpMinMinutes = 60
)

// employeeState 构造过程中每名员工的累计状态
type employeeState struct {
	blockedDays    map[int]bool // 预指定休息日
	totalMinutes   int
	weekendsWorked int
	weekendFlags   map[int]bool // 已计入的周末编号
}

// InitialSolutionGenerator 五步贪心构造器：
// 1) 预指定休息日 2) 周末覆盖 3) 前四个工作日 4) 剩余工作日 5) 补足最小工时
// 构造尽力而为，不保证可行，只保证一个高质量起点
type InitialSolutionGenerator struct {
	inst   *model.Instance
	rng    *rand.Rand
	logger *logger.SolverLogger
}

// NewInitialSolutionGenerator 创建构造器
func NewInitialSolutionGenerator(inst *model.Instance, rng *rand.Rand) *InitialSolutionGenerator {
	return &InitialSolutionGenerator{
		inst:   inst,
		rng:    rng,
		logger: logger.NewSolverLogger(),
	}
}

// Generate 运行五个构造步骤并返回排班
func (g *InitialSolutionGenerator) Generate() *model.Schedule {
	s := model.NewSchedule(g.inst.NumEmployees(), g.inst.Horizon(), g.inst.NumShiftTypes())

	states := make([]employeeState, g.inst.NumEmployees())
	for i := range states {
		states[i] = employeeState{
			blockedDays:  make(map[int]bool),
			weekendFlags: make(map[int]bool),
		}
	}

	g.assignAnnualLeave(s, states)
	g.assignWeekends(s, states)
	g.assignInitialDays(s, states)
	g.assignRemainingHorizon(s, states)
	g.adjustWorkingHours(s, states)

	return s
}

// assignAnnualLeave 步骤 1：锁定预指定休息日
func (g *InitialSolutionGenerator) assignAnnualLeave(s *model.Schedule, states []employeeState) {
	for emp := 0; emp < g.inst.NumEmployees(); emp++ {
		for _, day := range g.inst.PreAssignedDaysOff(emp) {
			s.Set(emp, day, 0)
			states[emp].blockedDays[day] = true
		}
	}
}

// assignWeekends 步骤 2：按周末逐个覆盖需求，优先选周末工作最少的员工
func (g *InitialSolutionGenerator) assignWeekends(s *model.Schedule, states []employeeState) {
	horizon := g.inst.Horizon()
	for saturday := 5; saturday < horizon; saturday += 7 {
		for _, day := range []int{saturday, saturday + 1} {
			if day >= horizon {
				break
			}
			for shift := 1; shift <= g.inst.NumShiftTypes(); shift++ {
				required := g.requiredCoverage(day, shift)
				for s.Coverage(day, shift) < required {
					selected := g.pickCandidate(s, states, day, shift, func(a, b int) bool {
						return states[a].weekendsWorked < states[b].weekendsWorked
					})
					if selected < 0 {
						break
					}
					g.assign(s, states, selected, day, shift)
				}
			}
		}
	}
}

// assignInitialDays 步骤 3：前四个工作日（周末已在步骤 2 处理），优先选总工时最少的员工
func (g *InitialSolutionGenerator) assignInitialDays(s *model.Schedule, states []employeeState) {
	limit := initialDays
	if g.inst.Horizon() < limit {
		limit = g.inst.Horizon()
	}
	for day := 0; day < limit; day++ {
		if model.IsWeekend(day) {
			continue
		}
		g.coverDay(s, states, day, func(a, b int) bool {
			return states[a].totalMinutes < states[b].totalMinutes
		})
	}
}

// assignRemainingHorizon 步骤 4：其余工作日，先比当前连班天数再比总工时
func (g *InitialSolutionGenerator) assignRemainingHorizon(s *model.Schedule, states []employeeState) {
	start := initialDays
	if g.inst.Horizon() < start {
		start = g.inst.Horizon()
	}
	for day := start; day < g.inst.Horizon(); day++ {
		if model.IsWeekend(day) {
			continue
		}
		d := day
		g.coverDay(s, states, day, func(a, b int) bool {
			runA := g.backwardRun(s, a, d)
			runB := g.backwardRun(s, b, d)
			if runA != runB {
				return runA < runB
			}
			return states[a].totalMinutes < states[b].totalMinutes
		})
	}
}

// coverDay 按缺口从大到小补齐某天的各班次
func (g *InitialSolutionGenerator) coverDay(s *model.Schedule, states []employeeState, day int, better func(a, b int) bool) {
	shifts := g.underCoveredShifts(s, day)
	for _, shift := range shifts {
		required := g.requiredCoverage(day, shift)
		for s.Coverage(day, shift) < required {
			selected := g.pickCandidate(s, states, day, shift, better)
			if selected < 0 {
				break
			}
			g.assign(s, states, selected, day, shift)
		}
	}
}

// adjustWorkingHours 步骤 5：为低于最小工时的员工在空闲日补班
// 只补贡献不低于 min(60, 缺口) 分钟的班次
func (g *InitialSolutionGenerator) adjustWorkingHours(s *model.Schedule, states []employeeState) {
	for emp := 0; emp < g.inst.NumEmployees(); emp++ {
		worker := g.inst.StaffAt(emp)
		needed := worker.MinTotalMinutes - states[emp].totalMinutes

		for day := 0; day < g.inst.Horizon() && needed > 0; day++ {
			if s.Get(emp, day) != 0 || states[emp].blockedDays[day] {
				continue
			}
			for shift := 1; shift <= g.inst.NumShiftTypes(); shift++ {
				minutes := g.inst.ShiftMinutes(shift)
				threshold := topUpMinMinutes
				if needed < threshold {
					threshold = needed
				}
				if minutes < threshold {
					continue
				}
				if !g.canAssign(s, states, emp, day, shift) {
					continue
				}
				g.assign(s, states, emp, day, shift)
				needed -= minutes
				break
			}
		}
	}
}

// canAssign 检查 (员工, 天, 班次) 的合法性：未锁定、未排班、衔接合法、
// 不超最大连班、不超最大总工时、周末日不超最大工作周末数
func (g *InitialSolutionGenerator) canAssign(s *model.Schedule, states []employeeState, employee, day, shift int) bool {
	st := &states[employee]
	if st.blockedDays[day] || s.Get(employee, day) != 0 {
		return false
	}

	if g.inst.IsForbiddenSuccession(s.Get(employee, day-1), shift) {
		return false
	}
	if g.inst.IsForbiddenSuccession(shift, s.Get(employee, day+1)) {
		return false
	}

	worker := g.inst.StaffAt(employee)
	resultingRun := g.backwardRun(s, employee, day) + 1 + s.ConsecutiveWorking(employee, day+1)
	if resultingRun > worker.MaxConsecutiveShifts {
		return false
	}

	if st.totalMinutes+g.inst.ShiftMinutes(shift) > worker.MaxTotalMinutes {
		return false
	}

	if model.IsWeekend(day) && !st.weekendFlags[model.WeekendNumber(day)] &&
		st.weekendsWorked >= worker.MaxWeekends {
		return false
	}
	return true
}

// pickCandidate 在全部合法员工中按比较函数取最优者，无人可用返回 -1
func (g *InitialSolutionGenerator) pickCandidate(s *model.Schedule, states []employeeState, day, shift int, better func(a, b int) bool) int {
	selected := -1
	for emp := 0; emp < g.inst.NumEmployees(); emp++ {
		if !g.canAssign(s, states, emp, day, shift) {
			continue
		}
		if selected < 0 || better(emp, selected) {
			selected = emp
		}
	}
	return selected
}

// assign 写入分配并更新员工累计状态
func (g *InitialSolutionGenerator) assign(s *model.Schedule, states []employeeState, employee, day, shift int) {
	s.Set(employee, day, shift)
	st := &states[employee]
	st.totalMinutes += g.inst.ShiftMinutes(shift)
	if model.IsWeekend(day) {
		weekend := model.WeekendNumber(day)
		if !st.weekendFlags[weekend] {
			st.weekendFlags[weekend] = true
			st.weekendsWorked++
		}
	}
}

// underCoveredShifts 返回某天所有尚未满足需求的班次，按缺口从大到小排列
func (g *InitialSolutionGenerator) underCoveredShifts(s *model.Schedule, day int) []int {
	var shifts []int
	for shift := 1; shift <= g.inst.NumShiftTypes(); shift++ {
		if s.Coverage(day, shift) < g.requiredCoverage(day, shift) {
			shifts = append(shifts, shift)
		}
	}
	for i := 1; i < len(shifts); i++ {
		for j := i; j > 0; j-- {
			deficitA := g.requiredCoverage(day, shifts[j]) - s.Coverage(day, shifts[j])
			deficitB := g.requiredCoverage(day, shifts[j-1]) - s.Coverage(day, shifts[j-1])
			if deficitA <= deficitB {
				break
			}
			shifts[j], shifts[j-1] = shifts[j-1], shifts[j]
		}
	}
	return shifts
}

// requiredCoverage 某天某班次的需求人数
func (g *InitialSolutionGenerator) requiredCoverage(day, shift int) int {
	cover, ok := g.inst.CoverageAt(day, shift)
	if !ok {
		return 0
	}
	return cover.Requirement
}

// backwardRun 以 day 前一天为末尾的连续工作天数
func (g *InitialSolutionGenerator) backwardRun(s *model.Schedule, employee, day int) int {
	run := 0
	for d := day - 1; d >= 0; d-- {
		if s.Get(employee, d) != 0 {
			run++
		} else {
			break
		}
	}
	return run
}
