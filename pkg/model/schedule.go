// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"strconv"
	"strings"

	apperrors "github.com/eljapi/nurse-scheduling-problem/pkg/errors"
)

// Schedule 排班矩阵：assignments[员工][天] = 班次下标
// 0 表示休息日，班次下标为 1 基
// 每次写入同步维护班次计数和覆盖人数缓存，供约束评估 O(1) 查询
type Schedule struct {
	numEmployees  int
	horizonDays   int
	numShiftTypes int
	assignments   [][]int
	shiftCounts   [][]int // [员工][班次] 含下标 0（休息日天数）
	coverage      [][]int // [天][班次]
}

// NewSchedule 创建全 0（全休息）的排班矩阵
func NewSchedule(employees, days, shiftTypes int) *Schedule {
	s := &Schedule{
		numEmployees:  employees,
		horizonDays:   days,
		numShiftTypes: shiftTypes,
	}
	s.assignments = make([][]int, employees)
	s.shiftCounts = make([][]int, employees)
	for i := 0; i < employees; i++ {
		s.assignments[i] = make([]int, days)
		s.shiftCounts[i] = make([]int, shiftTypes+1)
		s.shiftCounts[i][0] = days
	}
	s.coverage = make([][]int, days)
	for d := 0; d < days; d++ {
		s.coverage[d] = make([]int, shiftTypes+1)
		s.coverage[d][0] = employees
	}
	return s
}

// Set 写入一个分配；越界或非法班次值静默忽略
func (s *Schedule) Set(employee, day, shift int) {
	if employee < 0 || employee >= s.numEmployees ||
		day < 0 || day >= s.horizonDays ||
		shift < 0 || shift > s.numShiftTypes {
		return
	}
	old := s.assignments[employee][day]
	if old == shift {
		return
	}
	s.assignments[employee][day] = shift
	s.shiftCounts[employee][old]--
	s.shiftCounts[employee][shift]++
	s.coverage[day][old]--
	s.coverage[day][shift]++
}

// InRange 检查 (员工, 天, 班次) 三元组是否在矩阵范围内
func (s *Schedule) InRange(employee, day, shift int) bool {
	return employee >= 0 && employee < s.numEmployees &&
		day >= 0 && day < s.horizonDays &&
		shift >= 0 && shift <= s.numShiftTypes
}

// Get 读取一个分配；越界返回 0（休息日）
func (s *Schedule) Get(employee, day int) int {
	if employee < 0 || employee >= s.numEmployees ||
		day < 0 || day >= s.horizonDays {
		return 0
	}
	return s.assignments[employee][day]
}

// NumEmployees 返回员工数量
func (s *Schedule) NumEmployees() int {
	return s.numEmployees
}

// HorizonDays 返回周期天数
func (s *Schedule) HorizonDays() int {
	return s.horizonDays
}

// NumShiftTypes 返回班次类型数量
func (s *Schedule) NumShiftTypes() int {
	return s.numShiftTypes
}

// ShiftCount 返回员工上某班次的天数；shift 为 0 时返回休息天数
func (s *Schedule) ShiftCount(employee, shift int) int {
	if employee < 0 || employee >= s.numEmployees || shift < 0 || shift > s.numShiftTypes {
		return 0
	}
	return s.shiftCounts[employee][shift]
}

// TotalMinutes 按时长表计算员工的总工时（分钟），durations 下标 0 为休息日
func (s *Schedule) TotalMinutes(employee int, durations []int) int {
	if employee < 0 || employee >= s.numEmployees {
		return 0
	}
	total := 0
	for shift := 1; shift <= s.numShiftTypes && shift < len(durations); shift++ {
		total += s.shiftCounts[employee][shift] * durations[shift]
	}
	return total
}

// Coverage 返回某天上某班次的人数
func (s *Schedule) Coverage(day, shift int) int {
	if day < 0 || day >= s.horizonDays || shift < 0 || shift > s.numShiftTypes {
		return 0
	}
	return s.coverage[day][shift]
}

// ConsecutiveWorking 返回从 fromDay 起连续工作的天数
func (s *Schedule) ConsecutiveWorking(employee, fromDay int) int {
	count := 0
	for day := fromDay; day >= 0 && day < s.horizonDays; day++ {
		if s.Get(employee, day) != 0 {
			count++
		} else {
			break
		}
	}
	return count
}

// ConsecutiveOff 返回从 fromDay 起连续休息的天数
func (s *Schedule) ConsecutiveOff(employee, fromDay int) int {
	count := 0
	for day := fromDay; day >= 0 && day < s.horizonDays; day++ {
		if s.Get(employee, day) == 0 {
			count++
		} else {
			break
		}
	}
	return count
}

// Clear 将全部分配重置为休息日
func (s *Schedule) Clear() {
	for i := 0; i < s.numEmployees; i++ {
		for d := 0; d < s.horizonDays; d++ {
			s.Set(i, d, 0)
		}
	}
}

// ClearEmployee 将某员工的整行重置为休息日
func (s *Schedule) ClearEmployee(employee int) {
	for d := 0; d < s.horizonDays; d++ {
		s.Set(employee, d, 0)
	}
}

// Randomize 用 [0, maxShift] 的均匀随机值填充矩阵
func (s *Schedule) Randomize(maxShift int, rng *rand.Rand) {
	if maxShift > s.numShiftTypes {
		maxShift = s.numShiftTypes
	}
	for i := 0; i < s.numEmployees; i++ {
		for d := 0; d < s.horizonDays; d++ {
			s.Set(i, d, rng.Intn(maxShift+1))
		}
	}
}

// Clone 深拷贝
func (s *Schedule) Clone() *Schedule {
	clone := NewSchedule(s.numEmployees, s.horizonDays, s.numShiftTypes)
	for i := 0; i < s.numEmployees; i++ {
		copy(clone.assignments[i], s.assignments[i])
		copy(clone.shiftCounts[i], s.shiftCounts[i])
	}
	for d := 0; d < s.horizonDays; d++ {
		copy(clone.coverage[d], s.coverage[d])
	}
	return clone
}

// CopyFrom 从同尺寸矩阵复制全部分配，尺寸不同时忽略
func (s *Schedule) CopyFrom(other *Schedule) {
	if other == nil || s.numEmployees != other.numEmployees ||
		s.horizonDays != other.horizonDays || s.numShiftTypes != other.numShiftTypes {
		return
	}
	for i := 0; i < s.numEmployees; i++ {
		copy(s.assignments[i], other.assignments[i])
		copy(s.shiftCounts[i], other.shiftCounts[i])
	}
	for d := 0; d < s.horizonDays; d++ {
		copy(s.coverage[d], other.coverage[d])
	}
}

// Equal 结构相等：尺寸与每个分配都相同
func (s *Schedule) Equal(other *Schedule) bool {
	if other == nil || s.numEmployees != other.numEmployees ||
		s.horizonDays != other.horizonDays || s.numShiftTypes != other.numShiftTypes {
		return false
	}
	for i := 0; i < s.numEmployees; i++ {
		for d := 0; d < s.horizonDays; d++ {
			if s.assignments[i][d] != other.assignments[i][d] {
				return false
			}
		}
	}
	return true
}

// Hash 计算矩阵内容的 FNV-1a 哈希
func (s *Schedule) Hash() uint64 {
	h := fnv.New64a()
	buf := make([]byte, 4)
	for i := 0; i < s.numEmployees; i++ {
		for d := 0; d < s.horizonDays; d++ {
			v := s.assignments[i][d]
			buf[0] = byte(v)
			buf[1] = byte(v >> 8)
			buf[2] = byte(v >> 16)
			buf[3] = byte(v >> 24)
			h.Write(buf)
		}
	}
	return h.Sum64()
}

// ToCompactString 序列化为单行紧凑格式："N,D,S:v v v ..."
func (s *Schedule) ToCompactString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d,%d,%d:", s.numEmployees, s.horizonDays, s.numShiftTypes)
	for i := 0; i < s.numEmployees; i++ {
		for d := 0; d < s.horizonDays; d++ {
			if i > 0 || d > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(s.assignments[i][d]))
		}
	}
	return b.String()
}

// ScheduleFromCompactString 反序列化 ToCompactString 的输出
func ScheduleFromCompactString(raw string) (*Schedule, error) {
	head, body, found := strings.Cut(raw, ":")
	if !found {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "紧凑格式缺少头部分隔符")
	}
	dims := strings.Split(head, ",")
	if len(dims) != 3 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "紧凑格式头部应包含三个维度")
	}
	employees, err1 := strconv.Atoi(dims[0])
	days, err2 := strconv.Atoi(dims[1])
	shiftTypes, err3 := strconv.Atoi(dims[2])
	if err1 != nil || err2 != nil || err3 != nil || employees <= 0 || days <= 0 || shiftTypes < 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("紧凑格式维度无效: %s", head))
	}

	values := strings.Fields(body)
	if len(values) != employees*days {
		return nil, apperrors.New(apperrors.CodeInvalidInput,
			fmt.Sprintf("紧凑格式分配数量不符: 期望 %d 实际 %d", employees*days, len(values)))
	}

	schedule := NewSchedule(employees, days, shiftTypes)
	for idx, v := range values {
		shift, err := strconv.Atoi(v)
		if err != nil || shift < 0 || shift > shiftTypes {
			return nil, apperrors.New(apperrors.CodeInvalidInput, fmt.Sprintf("紧凑格式分配值无效: %s", v))
		}
		schedule.Set(idx/days, idx%days, shift)
	}
	return schedule, nil
}
