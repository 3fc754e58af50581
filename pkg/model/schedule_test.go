package model

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchedule_SetGet(t *testing.T) {
	s := NewSchedule(3, 7, 2)

	s.Set(0, 0, 1)
	s.Set(1, 3, 2)

	if got := s.Get(0, 0); got != 1 {
		t.Errorf("Get(0,0) = %d, want 1", got)
	}
	if got := s.Get(1, 3); got != 2 {
		t.Errorf("Get(1,3) = %d, want 2", got)
	}
	if got := s.Get(2, 6); got != 0 {
		t.Errorf("未赋值的格子应为 0, got %d", got)
	}
}

func TestSchedule_OutOfRange(t *testing.T) {
	s := NewSchedule(3, 7, 2)

	// 越界写入静默忽略
	s.Set(-1, 0, 1)
	s.Set(3, 0, 1)
	s.Set(0, 7, 1)
	s.Set(0, 0, 3)
	s.Set(0, 0, -1)

	for i := 0; i < 3; i++ {
		for d := 0; d < 7; d++ {
			if s.Get(i, d) != 0 {
				t.Fatalf("越界写入后矩阵应保持全 0, (%d,%d) = %d", i, d, s.Get(i, d))
			}
		}
	}

	// 越界读取返回 0
	if s.Get(-1, 0) != 0 || s.Get(3, 0) != 0 || s.Get(0, -1) != 0 || s.Get(0, 7) != 0 {
		t.Error("越界读取应返回 0")
	}
}

func TestSchedule_CachedAggregates(t *testing.T) {
	s := NewSchedule(2, 7, 2)

	s.Set(0, 0, 1)
	s.Set(0, 1, 1)
	s.Set(0, 2, 2)
	s.Set(1, 0, 1)

	if got := s.ShiftCount(0, 1); got != 2 {
		t.Errorf("ShiftCount(0,1) = %d, want 2", got)
	}
	if got := s.ShiftCount(0, 2); got != 1 {
		t.Errorf("ShiftCount(0,2) = %d, want 1", got)
	}
	if got := s.ShiftCount(0, 0); got != 4 {
		t.Errorf("休息天数 = %d, want 4", got)
	}
	if got := s.Coverage(0, 1); got != 2 {
		t.Errorf("Coverage(0,1) = %d, want 2", got)
	}

	// 改写后缓存同步更新
	s.Set(0, 0, 2)
	if got := s.ShiftCount(0, 1); got != 1 {
		t.Errorf("改写后 ShiftCount(0,1) = %d, want 1", got)
	}
	if got := s.Coverage(0, 1); got != 1 {
		t.Errorf("改写后 Coverage(0,1) = %d, want 1", got)
	}
	if got := s.Coverage(0, 2); got != 1 {
		t.Errorf("改写后 Coverage(0,2) = %d, want 1", got)
	}

	// 改写后员工 0 为 1 个 D 班加 2 个 N 班
	durations := []int{0, 480, 600}
	if got := s.TotalMinutes(0, durations); got != 480+600+600 {
		t.Errorf("TotalMinutes(0) = %d, want %d", got, 480+600+600)
	}
}

func TestSchedule_ConsecutiveRuns(t *testing.T) {
	s := NewSchedule(1, 10, 1)
	for _, d := range []int{2, 3, 4, 8} {
		s.Set(0, d, 1)
	}

	tests := []struct {
		name     string
		fromDay  int
		wantWork int
		wantOff  int
	}{
		{"从休息日起算", 0, 0, 2},
		{"从工作块起算", 2, 3, 0},
		{"块中间起算", 3, 2, 0},
		{"块后的休息段", 5, 0, 3},
		{"末尾单日工作", 8, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ConsecutiveWorking(0, tt.fromDay); got != tt.wantWork {
				t.Errorf("ConsecutiveWorking(0,%d) = %d, want %d", tt.fromDay, got, tt.wantWork)
			}
			if got := s.ConsecutiveOff(0, tt.fromDay); got != tt.wantOff {
				t.Errorf("ConsecutiveOff(0,%d) = %d, want %d", tt.fromDay, got, tt.wantOff)
			}
		})
	}
}

func TestSchedule_CloneAndEqual(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewSchedule(4, 14, 3)
	s.Randomize(3, rng)

	clone := s.Clone()
	if !s.Equal(clone) {
		t.Fatal("克隆后应结构相等")
	}
	if s.Hash() != clone.Hash() {
		t.Error("相等的矩阵哈希应一致")
	}

	// 克隆是独立副本
	clone.Set(0, 0, (clone.Get(0, 0)+1)%4)
	if s.Equal(clone) {
		t.Error("修改克隆不应影响原矩阵")
	}

	other := NewSchedule(4, 14, 3)
	other.CopyFrom(s)
	if !s.Equal(other) {
		t.Error("CopyFrom 后应结构相等")
	}

	// 尺寸不同时 CopyFrom 忽略
	small := NewSchedule(2, 7, 3)
	small.CopyFrom(s)
	if !small.Equal(NewSchedule(2, 7, 3)) {
		t.Error("尺寸不同的 CopyFrom 应被忽略")
	}
}

func TestSchedule_Randomize(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := NewSchedule(5, 14, 2)
	s.Randomize(2, rng)

	counts := make([]int, 3)
	for i := 0; i < 5; i++ {
		for d := 0; d < 14; d++ {
			v := s.Get(i, d)
			if v < 0 || v > 2 {
				t.Fatalf("随机值越界: %d", v)
			}
			counts[v]++
		}
	}

	// 缓存与矩阵保持一致
	for i := 0; i < 5; i++ {
		for shift := 0; shift <= 2; shift++ {
			manual := 0
			for d := 0; d < 14; d++ {
				if s.Get(i, d) == shift {
					manual++
				}
			}
			if got := s.ShiftCount(i, shift); got != manual {
				t.Errorf("ShiftCount(%d,%d) = %d, 手工统计 %d", i, shift, got, manual)
			}
		}
	}
	for d := 0; d < 14; d++ {
		for shift := 0; shift <= 2; shift++ {
			manual := 0
			for i := 0; i < 5; i++ {
				if s.Get(i, d) == shift {
					manual++
				}
			}
			if got := s.Coverage(d, shift); got != manual {
				t.Errorf("Coverage(%d,%d) = %d, 手工统计 %d", d, shift, got, manual)
			}
		}
	}
}

func TestSchedule_Clear(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewSchedule(3, 7, 2)
	s.Randomize(2, rng)

	s.Clear()
	empty := NewSchedule(3, 7, 2)
	if diff := cmp.Diff(empty.ToCompactString(), s.ToCompactString()); diff != "" {
		t.Errorf("Clear 后应为全 0 矩阵 (-want +got):\n%s", diff)
	}
	if s.ShiftCount(0, 0) != 7 || s.Coverage(0, 1) != 0 {
		t.Error("Clear 后缓存应同步重置")
	}
}

func TestSchedule_CompactStringRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := NewSchedule(6, 28, 4)
	s.Randomize(4, rng)

	restored, err := ScheduleFromCompactString(s.ToCompactString())
	if err != nil {
		t.Fatalf("ScheduleFromCompactString() error = %v", err)
	}
	if !s.Equal(restored) {
		t.Error("紧凑格式应能无损往返")
	}
	if diff := cmp.Diff(s.ToCompactString(), restored.ToCompactString()); diff != "" {
		t.Errorf("往返后序列化不一致 (-want +got):\n%s", diff)
	}
}

func TestScheduleFromCompactString_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"缺少分隔符", "3,7,2 0 0 0"},
		{"维度数量不对", "3,7:0 0"},
		{"维度非数字", "a,7,2:0"},
		{"分配数量不符", "2,2,1:0 0 0"},
		{"分配值越界", "1,2,1:0 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ScheduleFromCompactString(tt.raw); err == nil {
				t.Error("应返回错误")
			}
		})
	}
}
