// Package render 提供求解结果的文本输出
package render

import (
	"fmt"
	"strings"

	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// Matrix 输出纯矩阵：每名员工一行，空格分隔的班次下标
func Matrix(s *model.Schedule) string {
	var b strings.Builder
	for emp := 0; emp < s.NumEmployees(); emp++ {
		for day := 0; day < s.HorizonDays(); day++ {
			if day > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", s.Get(emp, day))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Solution 输出可读结果：每名员工一行，列出其 (天, 班次 ID) 分配
func Solution(inst *model.Instance, s *model.Schedule) string {
	var b strings.Builder
	for emp := 0; emp < s.NumEmployees(); emp++ {
		b.WriteString(inst.StaffAt(emp).ID)
		b.WriteString(": ")
		first := true
		for day := 0; day < s.HorizonDays(); day++ {
			shift := s.Get(emp, day)
			if shift == 0 {
				continue
			}
			if !first {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "(%d, %s)", day, inst.ShiftAt(shift).ID)
			first = false
		}
		if first {
			b.WriteString("(无排班)")
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Summary 输出求解摘要块，附在结果文件末尾
func Summary(hardScore, softScore int, feasible bool, durationSeconds float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "硬约束得分: %d\n", hardScore)
	fmt.Fprintf(&b, "软约束得分: %d\n", softScore)
	if feasible {
		b.WriteString("可行: 是\n")
	} else {
		b.WriteString("可行: 否\n")
	}
	fmt.Fprintf(&b, "求解耗时: %.2f[s]\n", durationSeconds)
	return b.String()
}
