package constraint

import (
	"math/rand"
	"testing"
)

func TestSoftConstraints_ShiftRequests(t *testing.T) {
	inst := newTestInstance(t)
	soft := NewSoftConstraints(inst)
	s := newTestSchedule(inst)

	// A 的上班请求：(A, 0, D, 3)
	if got := soft.EvaluateShiftOnRequests(s); got != 0 {
		t.Errorf("未满足请求时得分 = %d, want 0", got)
	}
	s.Set(0, 0, 1)
	if got := soft.EvaluateShiftOnRequests(s); got != 3 {
		t.Errorf("满足请求后得分 = %d, want 3", got)
	}
	if got := soft.EvaluateShiftOnRequestsEmployee(s, 0); got != 3 {
		t.Errorf("单员工上班请求得分 = %d, want 3", got)
	}

	// B 的避班请求：(B, 1, N, 2)
	s.Set(1, 1, 2)
	if got := soft.EvaluateShiftOffRequests(s); got != -2 {
		t.Errorf("违反避班请求后得分 = %d, want -2", got)
	}
	s.Set(1, 1, 1) // 换成 D 班不违反
	if got := soft.EvaluateShiftOffRequests(s); got != 0 {
		t.Errorf("不违反避班请求时得分 = %d, want 0", got)
	}
}

func TestSoftConstraints_Coverage(t *testing.T) {
	inst := newTestInstance(t)
	soft := NewSoftConstraints(inst)

	tests := []struct {
		name      string
		dCoverage int // 第 0 天 D 班人数
		want      int
	}{
		{"无人上班缺 2 人", 0, -2*10 - 1*8}, // 第 1 天 N 班也缺 1 人
		{"缺 1 人", 1, -1*10 - 1*8},
		{"恰好满足", 2, -1 * 8},
		{"超出 1 人", 3, -1*5 - 1*8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSchedule(inst)
			for emp := 0; emp < tt.dCoverage; emp++ {
				s.Set(emp, 0, 1)
			}
			if got := soft.EvaluateCoverage(s); got != tt.want {
				t.Errorf("EvaluateCoverage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSoftConstraints_CoverageDelta(t *testing.T) {
	inst := newTestInstance(t)
	soft := NewSoftConstraints(inst)
	s := newTestSchedule(inst)

	// 第 0 天 D 班需求 2，当前 1 人，再加 1 人应带来 +10
	s.Set(0, 0, 1)
	if got := soft.CoverageDelta(s, 0, 0, 1); got != 10 {
		t.Errorf("覆盖增量 = %d, want 10", got)
	}

	// 与整表重评一致
	before := soft.EvaluateCoverage(s)
	s.Set(1, 0, 1)
	after := soft.EvaluateCoverage(s)
	if after-before != 10 {
		t.Errorf("整表重评增量 = %d, want 10", after-before)
	}
}

func TestSoftConstraints_CoverageDeltaMatchesFullEval(t *testing.T) {
	inst := newTestInstance(t)
	soft := NewSoftConstraints(inst)
	rng := rand.New(rand.NewSource(1))

	s := newTestSchedule(inst)
	s.Randomize(inst.NumShiftTypes(), rng)

	for i := 0; i < 500; i++ {
		emp := rng.Intn(inst.NumEmployees())
		day := rng.Intn(inst.Horizon())
		newShift := rng.Intn(inst.NumShiftTypes() + 1)
		old := s.Get(emp, day)

		delta := soft.CoverageDelta(s, day, old, newShift)
		before := soft.EvaluateCoverage(s)
		s.Set(emp, day, newShift)
		after := soft.EvaluateCoverage(s)

		if after-before != delta {
			t.Fatalf("第 %d 步覆盖增量不一致: 增量 %d, 重评 %d", i, delta, after-before)
		}
	}
}

func TestSoftConstraints_EvaluateEmployee(t *testing.T) {
	inst := newTestInstance(t)
	soft := NewSoftConstraints(inst)
	s := newTestSchedule(inst)

	s.Set(0, 0, 1) // 满足 A 的上班请求
	s.Set(1, 1, 2) // 违反 B 的避班请求

	if got := soft.EvaluateEmployee(s, 0); got != 3 {
		t.Errorf("EvaluateEmployee(0) = %d, want 3", got)
	}
	if got := soft.EvaluateEmployee(s, 1); got != -2 {
		t.Errorf("EvaluateEmployee(1) = %d, want -2", got)
	}
	// 覆盖约束不参与按员工的投影
	sum := 0
	for emp := 0; emp < inst.NumEmployees(); emp++ {
		sum += soft.EvaluateEmployee(s, emp)
	}
	reqOnly := soft.EvaluateShiftOnRequests(s) + soft.EvaluateShiftOffRequests(s)
	if sum != reqOnly {
		t.Errorf("单员工之和 %d 应等于请求得分 %d", sum, reqOnly)
	}
}

func TestSoftConstraints_Analysis(t *testing.T) {
	inst := newTestInstance(t)
	soft := NewSoftConstraints(inst)
	s := newTestSchedule(inst)

	s.Set(0, 0, 1)
	s.Set(1, 1, 2)

	if got := soft.SatisfiedOnRequests(s); got != 1 {
		t.Errorf("SatisfiedOnRequests() = %d, want 1", got)
	}
	if got := soft.ViolatedOffRequests(s); got != 1 {
		t.Errorf("ViolatedOffRequests() = %d, want 1", got)
	}

	gaps := soft.CoverageGaps(s)
	if gap, ok := gaps["Day0_D"]; !ok || gap != -1 {
		t.Errorf("Day0_D 缺口 = %d, want -1", gap)
	}
	if gap, ok := gaps["Day1_N"]; !ok || gap != 0 {
		t.Errorf("Day1_N 缺口 = %d, want 0", gap)
	}
}
