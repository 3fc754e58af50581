// Package optimizer 提供排班优化算法
package optimizer

import (
	"math/rand"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/constraint"
)

// 不可行区域内修复型移动的选择概率
const (
	rebalanceProbability   = 0.4
	consolidateProbability = 0.4
)

// Neighborhood 邻域生成器：每次调用产出一个候选移动
// 当前解不可行时优先产出修复型移动，所有失败路径都回退到随机改写
type Neighborhood struct {
	inst      *model.Instance
	evaluator *constraint.Evaluator
	rng       *rand.Rand
}

// NewNeighborhood 创建邻域生成器，随机数发生器由驱动器传入
func NewNeighborhood(inst *model.Instance, evaluator *constraint.Evaluator, rng *rand.Rand) *Neighborhood {
	return &Neighborhood{inst: inst, evaluator: evaluator, rng: rng}
}

// RandomMove 产出一个候选移动，currentHard 为当前解的硬约束得分
func (n *Neighborhood) RandomMove(s *model.Schedule, currentHard int) model.Move {
	if currentHard < 0 {
		p := n.rng.Float64()
		if p < rebalanceProbability {
			return n.RebalanceWorkloadMove(s)
		}
		if p < rebalanceProbability+consolidateProbability {
			return n.ConsolidateWorkMove(s)
		}
		// 剩余 20% 落入常规移动
	}

	switch n.rng.Intn(5) {
	case 0:
		return n.RandomChangeMove(s)
	case 1:
		return n.RandomSwapMove(s)
	case 2:
		return n.RandomBlockSwapMove(s)
	case 3:
		return n.RuinAndRecreateMove(s)
	case 4:
		return n.FixShiftRotationMove(s)
	default:
		return n.RandomChangeMove(s)
	}
}

// RandomChangeMove 均匀随机选格与新班次
func (n *Neighborhood) RandomChangeMove(s *model.Schedule) model.Move {
	employee := n.rng.Intn(s.NumEmployees())
	day := n.rng.Intn(s.HorizonDays())
	newShift := n.rng.Intn(s.NumShiftTypes() + 1)
	return model.NewChange(employee, day, s.Get(employee, day), newShift)
}

// RandomSwapMove 均匀随机选两格交换
func (n *Neighborhood) RandomSwapMove(s *model.Schedule) model.Move {
	e1 := n.rng.Intn(s.NumEmployees())
	d1 := n.rng.Intn(s.HorizonDays())
	e2 := n.rng.Intn(s.NumEmployees())
	d2 := n.rng.Intn(s.HorizonDays())
	return model.NewSwap(e1, d1, s.Get(e1, d1), e2, d2, s.Get(e2, d2))
}

// RandomBlockSwapMove 交换两名员工从某天起的连续两天
func (n *Neighborhood) RandomBlockSwapMove(s *model.Schedule) model.Move {
	if s.HorizonDays() < 2 {
		return n.RandomChangeMove(s)
	}
	return model.Move{
		Type:      model.MoveBlockSwap,
		Employee1: n.rng.Intn(s.NumEmployees()),
		Employee2: n.rng.Intn(s.NumEmployees()),
		Day1:      n.rng.Intn(s.HorizonDays() - 1),
		BlockSize: 2,
	}
}

// RuinAndRecreateMove 随机选一名员工清空重建
func (n *Neighborhood) RuinAndRecreateMove(s *model.Schedule) model.Move {
	return model.Move{
		Type:      model.MoveRuinAndRecreate,
		Employee1: n.rng.Intn(s.NumEmployees()),
	}
}

// FixShiftRotationMove 定位一处禁止衔接并提议合法的替换班次
func (n *Neighborhood) FixShiftRotationMove(s *model.Schedule) model.Move {
	for emp := 0; emp < s.NumEmployees(); emp++ {
		for day := 0; day < s.HorizonDays()-1; day++ {
			current := s.Get(emp, day)
			next := s.Get(emp, day+1)
			if !n.inst.IsForbiddenSuccession(current, next) {
				continue
			}
			// 为次日挑一个不被禁止的班次，找不到就改成休息日
			replacement := 0
			for shift := 1; shift <= s.NumShiftTypes(); shift++ {
				if shift != next && !n.inst.IsForbiddenSuccession(current, shift) {
					replacement = shift
					break
				}
			}
			return model.Move{
				Type:      model.MoveFixShiftRotation,
				Employee1: emp,
				Day1:      day + 1,
				Shift1:    next,
				Shift2:    replacement,
			}
		}
	}
	return n.RandomChangeMove(s)
}

// RebalanceWorkloadMove 把超时员工的一个班转给欠时员工
// 找到前者上班且后者休息、且后者允许该班次类型的一天，提议对应交换
func (n *Neighborhood) RebalanceWorkloadMove(s *model.Schedule) model.Move {
	durations := n.inst.ShiftDurations()
	var overworked, underworked []int
	for emp := 0; emp < s.NumEmployees(); emp++ {
		worker := n.inst.StaffAt(emp)
		total := s.TotalMinutes(emp, durations)
		if total > worker.MaxTotalMinutes {
			overworked = append(overworked, emp)
		} else if total < worker.MinTotalMinutes {
			underworked = append(underworked, emp)
		}
	}
	if len(overworked) == 0 || len(underworked) == 0 {
		return n.RandomChangeMove(s)
	}

	over := overworked[n.rng.Intn(len(overworked))]
	under := underworked[n.rng.Intn(len(underworked))]

	var candidateDays []int
	for day := 0; day < s.HorizonDays(); day++ {
		shift := s.Get(over, day)
		if shift == 0 || s.Get(under, day) != 0 {
			continue
		}
		if limit := n.inst.MaxShiftLimit(under, shift); limit == 0 {
			continue
		}
		candidateDays = append(candidateDays, day)
	}
	if len(candidateDays) == 0 {
		return n.RandomChangeMove(s)
	}

	day := candidateDays[n.rng.Intn(len(candidateDays))]
	return model.NewSwap(over, day, s.Get(over, day), under, day, 0)
}

// ConsolidateWorkMove 把孤立的过短工作块并到别的工作块旁边
// 找到过短块的首日和一个紧邻其他工作的休息日，提议同员工的两格交换
func (n *Neighborhood) ConsolidateWorkMove(s *model.Schedule) model.Move {
	horizon := s.HorizonDays()
	for emp := 0; emp < s.NumEmployees(); emp++ {
		worker := n.inst.StaffAt(emp)
		for day := 0; day < horizon; day++ {
			if s.Get(emp, day) == 0 {
				continue
			}
			runLength := s.ConsecutiveWorking(emp, day)
			if runLength >= worker.MinConsecutiveShifts {
				day += runLength
				continue
			}

			for target := 0; target < horizon; target++ {
				if s.Get(emp, target) != 0 {
					continue
				}
				inRun := func(d int) bool { return d >= day && d < day+runLength }
				adjacentToWork := (target > 0 && s.Get(emp, target-1) != 0 && !inRun(target-1)) ||
					(target < horizon-1 && s.Get(emp, target+1) != 0 && !inRun(target+1))
				if adjacentToWork {
					return model.NewSwap(emp, day, s.Get(emp, day), emp, target, 0)
				}
			}
			day += runLength
		}
	}
	return n.RandomChangeMove(s)
}

// Perturb 直接对排班施加 ⌊rate·N·D⌋ 次随机改写，用于停滞后的扰动
func (n *Neighborhood) Perturb(s *model.Schedule, rate float64) {
	numMoves := int(rate * float64(s.NumEmployees()) * float64(s.HorizonDays()))
	for i := 0; i < numMoves; i++ {
		employee := n.rng.Intn(s.NumEmployees())
		day := n.rng.Intn(s.HorizonDays())
		s.Set(employee, day, n.rng.Intn(s.NumShiftTypes()+1))
	}
}
