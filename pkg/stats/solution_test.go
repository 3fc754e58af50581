package stats

import (
	"testing"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

func newTestInstance(t *testing.T) *model.Instance {
	t.Helper()
	staff := []model.Staff{
		{ID: "A", MaxShifts: []int{7}, MaxTotalMinutes: 2400, MinTotalMinutes: 960,
			MaxConsecutiveShifts: 5, MinConsecutiveShifts: 1, MinConsecutiveDaysOff: 1, MaxWeekends: 2},
		{ID: "B", MaxShifts: []int{7}, MaxTotalMinutes: 2400, MinTotalMinutes: 960,
			MaxConsecutiveShifts: 5, MinConsecutiveShifts: 1, MinConsecutiveDaysOff: 1, MaxWeekends: 2},
	}
	shifts := []model.ShiftType{{ID: "D", Minutes: 480}}
	onRequests := []model.ShiftOnRequest{{EmployeeID: "A", Day: 0, ShiftID: "D", Weight: 3}}
	offRequests := []model.ShiftOffRequest{{EmployeeID: "B", Day: 1, ShiftID: "D", Weight: 2}}
	cover := []model.CoverageRequirement{
		{Day: 0, ShiftID: "D", Requirement: 1, WeightUnder: 10, WeightOver: 5},
		{Day: 1, ShiftID: "D", Requirement: 2, WeightUnder: 10, WeightOver: 5},
	}

	inst, err := model.NewInstance(7, staff, shifts, nil, onRequests, offRequests, cover)
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}
	return inst
}

func TestAnalyze(t *testing.T) {
	inst := newTestInstance(t)
	s := model.NewSchedule(2, 7, 1)

	// A 工作第 0-2 天（满足上班请求），B 工作第 1-2 天（违反避班请求）
	s.Set(0, 0, 1)
	s.Set(0, 1, 1)
	s.Set(0, 2, 1)
	s.Set(1, 1, 1)
	s.Set(1, 2, 1)

	result := Analyze(inst, s)

	// 覆盖：第 0 天需求 1 实际 1；第 1 天需求 2 实际 2
	if len(result.Coverage) != 2 {
		t.Fatalf("覆盖条目数 = %d, want 2", len(result.Coverage))
	}
	if result.SatisfiedCoverage != 2 || result.CoverageRate != 1.0 {
		t.Errorf("覆盖满足 = %d (%.2f), want 2 (1.00)", result.SatisfiedCoverage, result.CoverageRate)
	}
	for _, entry := range result.Coverage {
		if entry.Gap != 0 {
			t.Errorf("第 %d 天 %s 班缺口 = %d, want 0", entry.Day, entry.ShiftID, entry.Gap)
		}
	}

	// 请求
	if result.SatisfiedOnRequests != 1 || result.OnRequestRate != 1.0 {
		t.Errorf("上班请求满足 = %d (%.2f), want 1 (1.00)", result.SatisfiedOnRequests, result.OnRequestRate)
	}
	if result.ViolatedOffRequests != 1 || result.OffRequestRate != 0.0 {
		t.Errorf("避班请求违反 = %d (%.2f), want 1 (0.00)", result.ViolatedOffRequests, result.OffRequestRate)
	}

	// 工作量：A 1440 分钟、B 960 分钟
	if len(result.Loads) != 2 {
		t.Fatalf("工作量条目数 = %d, want 2", len(result.Loads))
	}
	if result.Loads[0].TotalMinutes != 1440 || result.Loads[0].WorkDays != 3 {
		t.Errorf("员工 A 工作量 = %+v", result.Loads[0])
	}
	if result.Loads[1].TotalMinutes != 960 || result.Loads[1].WorkDays != 2 {
		t.Errorf("员工 B 工作量 = %+v", result.Loads[1])
	}
	if result.AvgMinutes != 1200 {
		t.Errorf("平均工时 = %v, want 1200", result.AvgMinutes)
	}
	if result.MinutesStdDev != 240 {
		t.Errorf("工时标准差 = %v, want 240", result.MinutesStdDev)
	}
	if result.TotalWorkSlots != 5 || result.TotalOffSlots != 9 {
		t.Errorf("工作/休息格数 = %d/%d, want 5/9", result.TotalWorkSlots, result.TotalOffSlots)
	}

	// 得分与可行性一致
	if result.Feasible != (result.HardScore == 0) {
		t.Error("可行标志与硬约束得分不一致")
	}
}

func TestAnalyze_EmptySchedule(t *testing.T) {
	inst := newTestInstance(t)
	s := model.NewSchedule(2, 7, 1)

	result := Analyze(inst, s)
	if result.Feasible {
		t.Error("空排班不应可行（低于最小工时）")
	}
	if result.SatisfiedCoverage != 0 {
		t.Errorf("空排班不应满足任何覆盖需求, got %d", result.SatisfiedCoverage)
	}
	if result.TotalWorkSlots != 0 || result.TotalOffSlots != 14 {
		t.Errorf("空排班格数统计错误: %d/%d", result.TotalWorkSlots, result.TotalOffSlots)
	}
}
