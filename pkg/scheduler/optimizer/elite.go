// Package optimizer 提供排班优化算法
package optimizer

import (
	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// EliteMember 精英解：独立快照及其得分
type EliteMember struct {
	Schedule *model.Schedule
	Hard     int
	Soft     int
}

// EliteSet 固定容量的最优解集合，用于多样化重启与路径重连
type EliteSet struct {
	capacity int
	members  []EliteMember
}

// NewEliteSet 创建精英集合
func NewEliteSet(capacity int) *EliteSet {
	return &EliteSet{
		capacity: capacity,
		members:  make([]EliteMember, 0, capacity),
	}
}

// lexBetter 按 (硬, 软) 字典序比较，得分越高越好
func lexBetter(hard1, soft1, hard2, soft2 int) bool {
	if hard1 != hard2 {
		return hard1 > hard2
	}
	return soft1 > soft2
}

// Add 尝试收录一个新的最优解快照
// 未满时直接追加；已满时仅当候选优于当前最差成员才替换
func (e *EliteSet) Add(s *model.Schedule, hard, soft int) bool {
	for _, m := range e.members {
		if m.Hard == hard && m.Soft == soft && m.Schedule.Equal(s) {
			return false
		}
	}

	if len(e.members) < e.capacity {
		e.members = append(e.members, EliteMember{Schedule: s.Clone(), Hard: hard, Soft: soft})
		return true
	}

	worst := 0
	for i := 1; i < len(e.members); i++ {
		if lexBetter(e.members[worst].Hard, e.members[worst].Soft, e.members[i].Hard, e.members[i].Soft) {
			worst = i
		}
	}
	if lexBetter(hard, soft, e.members[worst].Hard, e.members[worst].Soft) {
		e.members[worst] = EliteMember{Schedule: s.Clone(), Hard: hard, Soft: soft}
		return true
	}
	return false
}

// Best 返回按 (硬, 软) 字典序最优的成员
func (e *EliteSet) Best() *EliteMember {
	if len(e.members) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(e.members); i++ {
		if lexBetter(e.members[i].Hard, e.members[i].Soft, e.members[best].Hard, e.members[best].Soft) {
			best = i
		}
	}
	return &e.members[best]
}

// DiversificationBase 返回硬约束得分最高（最接近可行）的成员，供多样化重启使用
func (e *EliteSet) DiversificationBase() *EliteMember {
	if len(e.members) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(e.members); i++ {
		if e.members[i].Hard > e.members[best].Hard {
			best = i
		}
	}
	return &e.members[best]
}

// Members 返回全部成员
func (e *EliteSet) Members() []EliteMember {
	return e.members
}

// Len 返回成员数量
func (e *EliteSet) Len() int {
	return len(e.members)
}

// Capacity 返回容量
func (e *EliteSet) Capacity() int {
	return e.capacity
}

// Clear 清空集合
func (e *EliteSet) Clear() {
	e.members = e.members[:0]
}
