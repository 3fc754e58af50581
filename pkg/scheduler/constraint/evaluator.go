// Package constraint 实现 NSP 的硬约束与软约束评估
package constraint

import (
	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// 自适应权重的调整参数与边界
const (
	weightInitial  = 1.0
	weightMin      = 0.1
	weightMax      = 10.0
	weightIncrease = 1.30 // 被违反的约束族权重上调
	weightDecay    = 0.95 // 已满足的约束族权重回落
)

// Evaluator 约束评估门面：聚合硬/软约束，并维护按约束族的自适应权重
// 权重只影响加权硬约束得分，原始惩罚值保持不变
type Evaluator struct {
	inst            *model.Instance
	hard            *HardConstraints
	soft            *SoftConstraints
	weights         [NumHardFamilies]float64
	violationCounts [NumHardFamilies]int
}

// NewEvaluator 创建约束评估器，全部权重初始化为 1.0
func NewEvaluator(inst *model.Instance) *Evaluator {
	e := &Evaluator{
		inst: inst,
		hard: NewHardConstraints(inst),
		soft: NewSoftConstraints(inst),
	}
	e.Reset()
	return e
}

// Instance 返回关联的问题实例
func (e *Evaluator) Instance() *model.Instance {
	return e.inst
}

// Hard 返回硬约束评估器
func (e *Evaluator) Hard() *HardConstraints {
	return e.hard
}

// Soft 返回软约束评估器
func (e *Evaluator) Soft() *SoftConstraints {
	return e.soft
}

// HardScore 返回原始硬约束总惩罚（非正，0 表示可行）
func (e *Evaluator) HardScore(s *model.Schedule) int {
	return e.hard.EvaluateAll(s)
}

// SoftScore 返回软约束总得分
func (e *Evaluator) SoftScore(s *model.Schedule) int {
	return e.soft.EvaluateAll(s)
}

// WeightedHardScore 返回按当前权重加权的硬约束得分，用于不可行解之间的比较
func (e *Evaluator) WeightedHardScore(s *model.Schedule) float64 {
	penalties := e.hard.FamilyPenalties(s)
	return e.WeightedSum(penalties)
}

// WeightedSum 按当前权重对一组分项惩罚求加权和
func (e *Evaluator) WeightedSum(penalties [NumHardFamilies]int) float64 {
	sum := 0.0
	for f := HardFamily(0); f < NumHardFamilies; f++ {
		sum += e.weights[f] * float64(penalties[f])
	}
	return sum
}

// IsFeasible 判断排班是否可行
func (e *Evaluator) IsFeasible(s *model.Schedule) bool {
	return e.hard.IsFeasible(s)
}

// ScheduleScore 返回统一的排班得分：不可行时为硬约束惩罚，可行时为软约束得分
func (e *Evaluator) ScheduleScore(s *model.Schedule) int {
	hard := e.HardScore(s)
	if hard < 0 {
		return hard
	}
	return e.SoftScore(s)
}

// UpdateWeights 根据当前排班调整自适应权重：
// 被违反的约束族权重乘 1.30（上限 10.0），已满足的乘 0.95（下限 0.1）
func (e *Evaluator) UpdateWeights(s *model.Schedule) {
	penalties := e.hard.FamilyPenalties(s)
	for f := HardFamily(0); f < NumHardFamilies; f++ {
		if penalties[f] < 0 {
			e.violationCounts[f]++
			e.weights[f] *= weightIncrease
			if e.weights[f] > weightMax {
				e.weights[f] = weightMax
			}
		} else {
			e.weights[f] *= weightDecay
			if e.weights[f] < weightMin {
				e.weights[f] = weightMin
			}
		}
	}
}

// Reset 将全部权重恢复为 1.0 并清零违反计数，在多样化或重启时调用
func (e *Evaluator) Reset() {
	for f := HardFamily(0); f < NumHardFamilies; f++ {
		e.weights[f] = weightInitial
		e.violationCounts[f] = 0
	}
}

// Weight 返回某约束族的当前权重
func (e *Evaluator) Weight(f HardFamily) float64 {
	return e.weights[f]
}

// Weights 返回当前权重向量的副本
func (e *Evaluator) Weights() [NumHardFamilies]float64 {
	return e.weights
}

// ViolationCounts 返回各约束族的累计违反次数
func (e *Evaluator) ViolationCounts() [NumHardFamilies]int {
	return e.violationCounts
}
