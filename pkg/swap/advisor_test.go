package swap

import (
	"testing"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

func newTestInstance(t *testing.T) *model.Instance {
	t.Helper()
	staff := []model.Staff{
		{ID: "A", MaxShifts: []int{7}, MaxTotalMinutes: 2400, MinTotalMinutes: 0,
			MaxConsecutiveShifts: 5, MinConsecutiveShifts: 1, MinConsecutiveDaysOff: 1, MaxWeekends: 2},
		{ID: "B", MaxShifts: []int{7}, MaxTotalMinutes: 2400, MinTotalMinutes: 0,
			MaxConsecutiveShifts: 5, MinConsecutiveShifts: 1, MinConsecutiveDaysOff: 1, MaxWeekends: 2},
	}
	shifts := []model.ShiftType{{ID: "D", Minutes: 480}}
	daysOff := []model.DaysOff{{EmployeeID: "B", Days: []int{2}}}
	onRequests := []model.ShiftOnRequest{{EmployeeID: "B", Day: 0, ShiftID: "D", Weight: 5}}

	inst, err := model.NewInstance(7, staff, shifts, daysOff, onRequests, nil, nil)
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	return inst
}

func TestAdvisor_RecommendsImprovingSwap(t *testing.T) {
	inst := newTestInstance(t)
	advisor := NewAdvisor(inst)

	// A 在第 0 天上班，B 休息；换给 B 可满足 B 的上班请求
	s := model.NewSchedule(2, 7, 1)
	s.Set(0, 0, 1)

	eval, err := advisor.Evaluate(s, Proposal{Employee1: 0, Day1: 0, Employee2: 1, Day2: 0})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if !eval.Feasible {
		t.Error("换班后应保持可行")
	}
	if eval.SoftDelta != 5 {
		t.Errorf("软约束变化 = %d, want 5", eval.SoftDelta)
	}
	if eval.HardDelta != 0 {
		t.Errorf("硬约束变化 = %d, want 0", eval.HardDelta)
	}
}

func TestAdvisor_RejectsInfeasibleSwap(t *testing.T) {
	inst := newTestInstance(t)
	advisor := NewAdvisor(inst)

	// 把班换到 B 的预指定休息日（第 2 天）会引入硬约束违反
	s := model.NewSchedule(2, 7, 1)
	s.Set(0, 2, 1)

	eval, err := advisor.Evaluate(s, Proposal{Employee1: 0, Day1: 2, Employee2: 1, Day2: 2})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if eval.HardDelta >= 0 {
		t.Errorf("硬约束变化 = %d, 应为负", eval.HardDelta)
	}
	if eval.Feasible {
		t.Error("换到预指定休息日不应可行")
	}
}

func TestAdvisor_InvalidProposal(t *testing.T) {
	inst := newTestInstance(t)
	advisor := NewAdvisor(inst)
	s := model.NewSchedule(2, 7, 1)

	if _, err := advisor.Evaluate(s, Proposal{Employee1: 5, Day1: 0, Employee2: 0, Day2: 0}); err == nil {
		t.Error("员工下标越界应返回错误")
	}
	if _, err := advisor.Evaluate(s, Proposal{Employee1: 0, Day1: 9, Employee2: 1, Day2: 0}); err == nil {
		t.Error("日期越界应返回错误")
	}
}
