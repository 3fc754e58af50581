package optimizer

import "testing"

func TestTabuList_AddContains(t *testing.T) {
	tabu := NewTabuList(3)

	key := TabuKey{Employee: 1, Day: 2, Shift: 1}
	if tabu.Contains(key) {
		t.Error("空表不应包含任何键")
	}

	tabu.Add(key)
	if !tabu.Contains(key) {
		t.Error("加入后应能查到")
	}
	if tabu.Contains(TabuKey{Employee: 1, Day: 2, Shift: 2}) {
		t.Error("不同班次的键不应命中")
	}

	// 重复加入不影响大小
	tabu.Add(key)
	if tabu.Len() != 1 {
		t.Errorf("重复加入后 Len() = %d, want 1", tabu.Len())
	}
}

func TestTabuList_FIFOEviction(t *testing.T) {
	tabu := NewTabuList(2)

	k1 := TabuKey{0, 0, 1}
	k2 := TabuKey{0, 1, 1}
	k3 := TabuKey{0, 2, 1}

	tabu.Add(k1)
	tabu.Add(k2)
	tabu.Add(k3) // 淘汰 k1

	if tabu.Contains(k1) {
		t.Error("超出容量时应淘汰最旧的键")
	}
	if !tabu.Contains(k2) || !tabu.Contains(k3) {
		t.Error("较新的键应保留")
	}
	if tabu.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tabu.Len())
	}
}

func TestTabuList_Clear(t *testing.T) {
	tabu := NewTabuList(5)
	for i := 0; i < 5; i++ {
		tabu.Add(TabuKey{0, i, 1})
	}

	tabu.Clear()
	if tabu.Len() != 0 {
		t.Errorf("Clear 后 Len() = %d, want 0", tabu.Len())
	}
	if tabu.Contains(TabuKey{0, 0, 1}) {
		t.Error("Clear 后不应再命中")
	}

	// 清空后可继续使用
	tabu.Add(TabuKey{1, 1, 1})
	if !tabu.Contains(TabuKey{1, 1, 1}) {
		t.Error("Clear 后加入的键应能查到")
	}
}
