// Package constraint 实现 NSP 的硬约束与软约束评估
package constraint

import (
	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// Delta 一次移动带来的得分变化
type Delta struct {
	Hard         int
	Soft         int
	WeightedHard float64 // 按当前自适应权重加权的硬约束变化，不可行区域的接受判据
}

// IsZero 判断移动的硬、软得分变化是否都为零（不检查 WeightedHard）
func (d Delta) IsZero() bool {
	return d.Hard == 0 && d.Soft == 0
}

// IncrementalEvaluator 增量评估器
// 持有镜像排班与缓存的硬/软得分；硬约束族按员工分解、覆盖约束按天分解，
// 因此单格移动只需重评受影响员工与受影响的两项覆盖
type IncrementalEvaluator struct {
	evaluator   *Evaluator
	mirror      *model.Schedule
	currentHard int
	currentSoft int
}

// NewIncrementalEvaluator 创建增量评估器，镜像为 initial 的独立副本
func NewIncrementalEvaluator(evaluator *Evaluator, initial *model.Schedule) *IncrementalEvaluator {
	ie := &IncrementalEvaluator{
		evaluator: evaluator,
		mirror:    initial.Clone(),
	}
	ie.recompute()
	return ie
}

// CurrentHard 返回缓存的硬约束得分
func (ie *IncrementalEvaluator) CurrentHard() int {
	return ie.currentHard
}

// CurrentSoft 返回缓存的软约束得分
func (ie *IncrementalEvaluator) CurrentSoft() int {
	return ie.currentSoft
}

// Schedule 返回镜像排班；调用方只读，修改必须经过 Apply 或 Reset
func (ie *IncrementalEvaluator) Schedule() *model.Schedule {
	return ie.mirror
}

// Snapshot 返回镜像排班的独立副本
func (ie *IncrementalEvaluator) Snapshot() *model.Schedule {
	return ie.mirror.Clone()
}

// GetDelta 计算一次移动的得分变化，不修改镜像
func (ie *IncrementalEvaluator) GetDelta(move model.Move) Delta {
	switch move.Type {
	case model.MoveChange, model.MoveFixShiftRotation:
		return ie.changeDelta(move.Employee1, move.Day1, move.Shift2)
	case model.MoveSwap:
		return ie.swapDelta(move)
	case model.MoveBlockSwap, model.MoveRuinAndRecreate:
		return ie.fullDelta(move)
	default:
		return Delta{}
	}
}

// changeDelta 单格改写：只有该员工的硬约束和两项覆盖会变化
func (ie *IncrementalEvaluator) changeDelta(employee, day, newShift int) Delta {
	old := ie.mirror.Get(employee, day)
	if old == newShift || !ie.mirror.InRange(employee, day, newShift) {
		return Delta{}
	}

	hard := ie.evaluator.Hard()
	soft := ie.evaluator.Soft()

	famBefore := hard.EvaluateEmployeeFamilies(ie.mirror, employee)
	softBefore := soft.EvaluateEmployee(ie.mirror, employee)
	covDelta := soft.CoverageDelta(ie.mirror, day, old, newShift)

	ie.mirror.Set(employee, day, newShift)
	famAfter := hard.EvaluateEmployeeFamilies(ie.mirror, employee)
	softAfter := soft.EvaluateEmployee(ie.mirror, employee)
	ie.mirror.Set(employee, day, old)

	var famDelta [NumHardFamilies]int
	hardDelta := 0
	for f := range famDelta {
		famDelta[f] = famAfter[f] - famBefore[f]
		hardDelta += famDelta[f]
	}
	return Delta{
		Hard:         hardDelta,
		Soft:         softAfter - softBefore + covDelta,
		WeightedHard: ie.evaluator.WeightedSum(famDelta),
	}
}

// swapDelta 两格交换：按顺序施加两次改写并叠加增量，中间状态保证
// 同一员工两格交换时的相互影响被正确计入
func (ie *IncrementalEvaluator) swapDelta(move model.Move) Delta {
	e1, d1 := move.Employee1, move.Day1
	e2, d2 := move.Employee2, move.Day2
	if e1 == e2 && d1 == d2 {
		return Delta{}
	}
	v1 := ie.mirror.Get(e1, d1)
	v2 := ie.mirror.Get(e2, d2)
	if v1 == v2 {
		return Delta{}
	}

	first := ie.changeDelta(e1, d1, v2)
	ie.mirror.Set(e1, d1, v2)
	second := ie.changeDelta(e2, d2, v1)
	ie.mirror.Set(e1, d1, v1)

	return Delta{
		Hard:         first.Hard + second.Hard,
		Soft:         first.Soft + second.Soft,
		WeightedHard: first.WeightedHard + second.WeightedHard,
	}
}

// fullDelta 块交换与毁坏重建：整表重评，移动频率低可以接受
func (ie *IncrementalEvaluator) fullDelta(move model.Move) Delta {
	scratch := ie.mirror.Clone()
	ie.applyTo(scratch, move)

	hard := ie.evaluator.Hard()
	famBefore := hard.FamilyPenalties(ie.mirror)
	famAfter := hard.FamilyPenalties(scratch)

	var famDelta [NumHardFamilies]int
	hardDelta := 0
	for f := range famDelta {
		famDelta[f] = famAfter[f] - famBefore[f]
		hardDelta += famDelta[f]
	}
	return Delta{
		Hard:         hardDelta,
		Soft:         ie.evaluator.SoftScore(scratch) - ie.currentSoft,
		WeightedHard: ie.evaluator.WeightedSum(famDelta),
	}
}

// Apply 提交一次移动并按增量更新缓存得分
func (ie *IncrementalEvaluator) Apply(move model.Move) Delta {
	delta := ie.GetDelta(move)
	ie.applyTo(ie.mirror, move)
	ie.currentHard += delta.Hard
	ie.currentSoft += delta.Soft
	return delta
}

// applyTo 将移动写入指定排班
func (ie *IncrementalEvaluator) applyTo(s *model.Schedule, move model.Move) {
	switch move.Type {
	case model.MoveChange, model.MoveFixShiftRotation:
		s.Set(move.Employee1, move.Day1, move.Shift2)
	case model.MoveSwap:
		v1 := s.Get(move.Employee1, move.Day1)
		v2 := s.Get(move.Employee2, move.Day2)
		s.Set(move.Employee1, move.Day1, v2)
		s.Set(move.Employee2, move.Day2, v1)
	case model.MoveBlockSwap:
		size := move.BlockSize
		if size <= 0 {
			size = 2
		}
		for k := 0; k < size; k++ {
			day := move.Day1 + k
			if day >= s.HorizonDays() {
				break
			}
			v1 := s.Get(move.Employee1, day)
			v2 := s.Get(move.Employee2, day)
			s.Set(move.Employee1, day, v2)
			s.Set(move.Employee2, day, v1)
		}
	case model.MoveRuinAndRecreate:
		s.ClearEmployee(move.Employee1)
		ie.greedyRefill(s, move.Employee1)
	}
}

// greedyRefill 逐天为员工选取使排班得分最大的班次（含休息日）
// 重建对镜像状态是确定性的，GetDelta 与 Apply 得到相同的结果
func (ie *IncrementalEvaluator) greedyRefill(s *model.Schedule, employee int) {
	numShifts := s.NumShiftTypes()
	for day := 0; day < s.HorizonDays(); day++ {
		bestShift := 0
		bestScore := 0
		for shift := 0; shift <= numShifts; shift++ {
			s.Set(employee, day, shift)
			score := ie.evaluator.ScheduleScore(s)
			if shift == 0 || score > bestScore {
				bestShift = shift
				bestScore = score
			}
		}
		s.Set(employee, day, bestShift)
	}
}

// Reset 采用新的排班并从头重算缓存得分
func (ie *IncrementalEvaluator) Reset(s *model.Schedule) {
	ie.mirror = s.Clone()
	ie.recompute()
}

// recompute 从镜像整表重算缓存
func (ie *IncrementalEvaluator) recompute() {
	ie.currentHard = ie.evaluator.HardScore(ie.mirror)
	ie.currentSoft = ie.evaluator.SoftScore(ie.mirror)
}

// Audit 校验缓存得分与整表重评一致，调试期每 K 次迭代调用一次
func (ie *IncrementalEvaluator) Audit() bool {
	return ie.currentHard == ie.evaluator.HardScore(ie.mirror) &&
		ie.currentSoft == ie.evaluator.SoftScore(ie.mirror)
}
