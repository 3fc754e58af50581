package model

import (
	"testing"

	apperrors "github.com/eljapi/nurse-scheduling-problem/pkg/errors"
)

func testStaff() []Staff {
	return []Staff{
		{ID: "A", MaxShifts: []int{14, 14}, MaxTotalMinutes: 4320, MinTotalMinutes: 3360,
			MaxConsecutiveShifts: 5, MinConsecutiveShifts: 2, MinConsecutiveDaysOff: 2, MaxWeekends: 1},
		{ID: "B", MaxShifts: []int{14, 14}, MaxTotalMinutes: 4320, MinTotalMinutes: 3360,
			MaxConsecutiveShifts: 5, MinConsecutiveShifts: 2, MinConsecutiveDaysOff: 2, MaxWeekends: 1},
		{ID: "C", MaxShifts: []int{14, NoShiftLimit}, MaxTotalMinutes: 4320, MinTotalMinutes: 3360,
			MaxConsecutiveShifts: 5, MinConsecutiveShifts: 2, MinConsecutiveDaysOff: 2, MaxWeekends: 1},
	}
}

func testShifts() []ShiftType {
	return []ShiftType{
		{ID: "D", Minutes: 480, ForbiddenSuccessors: nil},
		{ID: "N", Minutes: 480, ForbiddenSuccessors: []string{"D"}},
	}
}

func TestNewInstance_Validation(t *testing.T) {
	tests := []struct {
		name    string
		horizon int
		staff   []Staff
		shifts  []ShiftType
		daysOff []DaysOff
		wantErr bool
	}{
		{
			name:    "合法实例",
			horizon: 14,
			staff:   testStaff(),
			shifts:  testShifts(),
			wantErr: false,
		},
		{
			name:    "周期为零",
			horizon: 0,
			staff:   testStaff(),
			shifts:  testShifts(),
			wantErr: true,
		},
		{
			name:    "员工列表为空",
			horizon: 14,
			staff:   nil,
			shifts:  testShifts(),
			wantErr: true,
		},
		{
			name:    "员工 ID 重复",
			horizon: 14,
			staff:   []Staff{{ID: "A"}, {ID: "A"}},
			shifts:  testShifts(),
			wantErr: true,
		},
		{
			name:    "禁止衔接引用未知班次",
			horizon: 14,
			staff:   testStaff(),
			shifts:  []ShiftType{{ID: "D", Minutes: 480, ForbiddenSuccessors: []string{"X"}}},
			wantErr: true,
		},
		{
			name:    "休息日引用未知员工",
			horizon: 14,
			staff:   testStaff(),
			shifts:  testShifts(),
			daysOff: []DaysOff{{EmployeeID: "Z", Days: []int{0}}},
			wantErr: true,
		},
		{
			name:    "休息日越界",
			horizon: 14,
			staff:   testStaff(),
			shifts:  testShifts(),
			daysOff: []DaysOff{{EmployeeID: "A", Days: []int{14}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInstance(tt.horizon, tt.staff, tt.shifts, tt.daysOff, nil, nil, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewInstance() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperrors.Is(err, apperrors.CodeInstanceInvalid) {
				t.Errorf("错误码应为 INSTANCE_INVALID, got %v", apperrors.GetCode(err))
			}
		})
	}
}

func TestInstance_Lookups(t *testing.T) {
	inst, err := NewInstance(14, testStaff(), testShifts(),
		[]DaysOff{{EmployeeID: "A", Days: []int{3, 5}}},
		nil, nil, []CoverageRequirement{{Day: 0, ShiftID: "D", Requirement: 2, WeightUnder: 10, WeightOver: 5}})
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}

	if got := inst.StaffIndex("B"); got != 1 {
		t.Errorf("StaffIndex(B) = %d, want 1", got)
	}
	if got := inst.StaffIndex("Z"); got != -1 {
		t.Errorf("未知员工应返回 -1, got %d", got)
	}
	if got := inst.ShiftIndex("D"); got != 1 {
		t.Errorf("ShiftIndex(D) = %d, want 1（1 基）", got)
	}
	if got := inst.ShiftIndex("N"); got != 2 {
		t.Errorf("ShiftIndex(N) = %d, want 2", got)
	}

	if _, err := inst.StaffByID("Z"); !apperrors.Is(err, apperrors.CodeIDNotFound) {
		t.Errorf("未知员工 ID 应返回 ID_NOT_FOUND, got %v", err)
	}
	if _, err := inst.ShiftByID("X"); !apperrors.Is(err, apperrors.CodeIDNotFound) {
		t.Errorf("未知班次 ID 应返回 ID_NOT_FOUND, got %v", err)
	}

	if got := inst.CoverageRequirementFor(0, "D"); got != 2 {
		t.Errorf("CoverageRequirementFor(0, D) = %d, want 2", got)
	}
	if got := inst.CoverageRequirementFor(1, "D"); got != 0 {
		t.Errorf("无需求时应返回 0, got %d", got)
	}

	days := inst.PreAssignedDaysOff(0)
	if len(days) != 2 || days[0] != 3 || days[1] != 5 {
		t.Errorf("PreAssignedDaysOff(0) = %v, want [3 5]", days)
	}
	if got := inst.PreAssignedDaysOff(1); len(got) != 0 {
		t.Errorf("无休息日的员工应返回空, got %v", got)
	}
}

func TestInstance_ForbiddenSuccession(t *testing.T) {
	inst, err := NewInstance(14, testStaff(), testShifts(), nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}

	// N（下标 2）之后禁止 D（下标 1）
	if !inst.IsForbiddenSuccession(2, 1) {
		t.Error("N 之后接 D 应为禁止衔接")
	}
	if inst.IsForbiddenSuccession(1, 2) {
		t.Error("D 之后接 N 不应为禁止衔接")
	}
	if inst.IsForbiddenSuccession(0, 1) || inst.IsForbiddenSuccession(2, 0) {
		t.Error("休息日不参与衔接限制")
	}
}

func TestInstance_MaxShiftLimit(t *testing.T) {
	inst, err := NewInstance(14, testStaff(), testShifts(), nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewInstance() error = %v", err)
	}

	if got := inst.MaxShiftLimit(0, 1); got != 14 {
		t.Errorf("MaxShiftLimit(0, 1) = %d, want 14", got)
	}
	if got := inst.MaxShiftLimit(2, 2); got != NoShiftLimit {
		t.Errorf("None 上限应返回 NoShiftLimit, got %d", got)
	}
}

func TestIsWeekend(t *testing.T) {
	weekends := []int{5, 6, 12, 13}
	weekdays := []int{0, 1, 2, 3, 4, 7, 11}

	for _, d := range weekends {
		if !IsWeekend(d) {
			t.Errorf("第 %d 天应为周末", d)
		}
	}
	for _, d := range weekdays {
		if IsWeekend(d) {
			t.Errorf("第 %d 天不应为周末", d)
		}
	}

	if WeekendNumber(5) != 0 || WeekendNumber(13) != 1 {
		t.Error("周末编号计算错误")
	}
}
