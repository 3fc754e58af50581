// Package swap 提供换班评估功能
package swap

import (
	"fmt"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
	"github.com/eljapi/nurse-scheduling-problem/pkg/scheduler/constraint"
)

// Proposal 换班提议：交换两名员工在两天上的分配
type Proposal struct {
	Employee1 int `json:"employee1"`
	Day1      int `json:"day1"`
	Employee2 int `json:"employee2"`
	Day2      int `json:"day2"`
}

// Evaluation 换班评估结果
type Evaluation struct {
	Feasible       bool   `json:"feasible"` // 换班后仍满足全部硬约束
	HardDelta      int    `json:"hard_delta"`
	SoftDelta      int    `json:"soft_delta"`
	HardAfter      int    `json:"hard_after"`
	SoftAfter      int    `json:"soft_after"`
	Recommendation string `json:"recommendation"`
}

// Advisor 换班评估器：用增量评估器为人工换班请求出具影响报告
type Advisor struct {
	inst      *model.Instance
	evaluator *constraint.Evaluator
}

// NewAdvisor 创建换班评估器
func NewAdvisor(inst *model.Instance) *Advisor {
	return &Advisor{
		inst:      inst,
		evaluator: constraint.NewEvaluator(inst),
	}
}

// Evaluate 评估一次换班提议对排班的影响，不修改原排班
func (a *Advisor) Evaluate(s *model.Schedule, p Proposal) (*Evaluation, error) {
	if !a.inst.IsValidStaffIndex(p.Employee1) || !a.inst.IsValidStaffIndex(p.Employee2) {
		return nil, fmt.Errorf("换班提议的员工下标无效: %d, %d", p.Employee1, p.Employee2)
	}
	if !a.inst.IsValidDay(p.Day1) || !a.inst.IsValidDay(p.Day2) {
		return nil, fmt.Errorf("换班提议的日期无效: %d, %d", p.Day1, p.Day2)
	}

	ie := constraint.NewIncrementalEvaluator(a.evaluator, s)
	move := model.NewSwap(
		p.Employee1, p.Day1, s.Get(p.Employee1, p.Day1),
		p.Employee2, p.Day2, s.Get(p.Employee2, p.Day2),
	)
	delta := ie.GetDelta(move)

	eval := &Evaluation{
		HardDelta: delta.Hard,
		SoftDelta: delta.Soft,
		HardAfter: ie.CurrentHard() + delta.Hard,
		SoftAfter: ie.CurrentSoft() + delta.Soft,
	}
	eval.Feasible = eval.HardAfter == 0
	eval.Recommendation = a.recommend(eval)
	return eval, nil
}

// recommend 给出可读的换班建议
func (a *Advisor) recommend(eval *Evaluation) string {
	switch {
	case eval.HardDelta < 0:
		return fmt.Sprintf("不建议换班：将引入硬约束违反（%d）", eval.HardDelta)
	case !eval.Feasible:
		return "谨慎换班：排班本身存在硬约束违反，换班未使其恶化"
	case eval.SoftDelta > 0:
		return fmt.Sprintf("推荐换班：软约束得分提升 %d", eval.SoftDelta)
	case eval.SoftDelta == 0:
		return "可以换班：对排班质量无影响"
	default:
		return fmt.Sprintf("可以换班：软约束得分下降 %d", -eval.SoftDelta)
	}
}
