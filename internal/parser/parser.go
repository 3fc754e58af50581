// Package parser 解析分节文本格式的 NSP 实例文件
//
// 文件由七个小节组成：SECTION_HORIZON、SECTION_SHIFTS、SECTION_STAFF、
// SECTION_DAYS_OFF、SECTION_SHIFT_ON_REQUESTS、SECTION_SHIFT_OFF_REQUESTS、
// SECTION_COVER。小节内每行一条记录，字段用逗号分隔，多值字段用 | 作二级
// 分隔符，多值条目内用 = 分隔键与值（如 D=14）。# 开头的行与空行忽略。
package parser

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/eljapi/nurse-scheduling-problem/pkg/errors"
	"github.com/eljapi/nurse-scheduling-problem/pkg/model"
)

// 小节标识
const (
	sectionHorizon          = "SECTION_HORIZON"
	sectionShifts           = "SECTION_SHIFTS"
	sectionStaff            = "SECTION_STAFF"
	sectionDaysOff          = "SECTION_DAYS_OFF"
	sectionShiftOnRequests  = "SECTION_SHIFT_ON_REQUESTS"
	sectionShiftOffRequests = "SECTION_SHIFT_OFF_REQUESTS"
	sectionCover            = "SECTION_COVER"
)

// noLimitToken 实例文件中表示不限次数的记号
const noLimitToken = "None"

// rawStaff 延迟解析的员工行：班次上限要等 SECTION_SHIFTS 齐备后才能定位下标
type rawStaff struct {
	staff     model.Staff
	maxShifts map[string]int
	line      int
}

// Parser 实例文件解析器
type Parser struct {
	horizon     int
	shifts      []model.ShiftType
	staff       []rawStaff
	daysOff     []model.DaysOff
	onRequests  []model.ShiftOnRequest
	offRequests []model.ShiftOffRequest
	cover       []model.CoverageRequirement
}

// ParseFile 解析实例文件并构造 Instance
func ParseFile(path string) (*model.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeParseFailed, "打开实例文件失败")
	}
	defer f.Close()
	return Parse(f)
}

// Parse 从读取器解析实例
func Parse(r io.Reader) (*model.Instance, error) {
	p := &Parser{}

	scanner := bufio.NewScanner(r)
	section := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "SECTION_") {
			section = line
			continue
		}

		var err error
		switch section {
		case sectionHorizon:
			err = p.parseHorizon(line, lineNo)
		case sectionShifts:
			err = p.parseShift(line, lineNo)
		case sectionStaff:
			err = p.parseStaff(line, lineNo)
		case sectionDaysOff:
			err = p.parseDaysOff(line, lineNo)
		case sectionShiftOnRequests:
			err = p.parseOnRequest(line, lineNo)
		case sectionShiftOffRequests:
			err = p.parseOffRequest(line, lineNo)
		case sectionCover:
			err = p.parseCover(line, lineNo)
		default:
			err = apperrors.ParseFailed(lineNo, "小节外出现数据行: "+line)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeParseFailed, "读取实例文件失败")
	}

	return p.build()
}

// parseHorizon 解析周期天数
func (p *Parser) parseHorizon(line string, lineNo int) error {
	horizon, err := strconv.Atoi(line)
	if err != nil {
		return apperrors.ParseFailed(lineNo, "周期天数不是整数: "+line)
	}
	p.horizon = horizon
	return nil
}

// parseShift 解析班次行：ShiftID,时长,禁止衔接（| 分隔，可为空）
func (p *Parser) parseShift(line string, lineNo int) error {
	fields := splitFields(line)
	if len(fields) < 2 {
		return apperrors.ParseFailed(lineNo, "班次行字段不足: "+line)
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil {
		return apperrors.ParseFailed(lineNo, "班次时长不是整数: "+fields[1])
	}

	var forbidden []string
	if len(fields) >= 3 && fields[2] != "" {
		for _, succ := range strings.Split(fields[2], "|") {
			succ = strings.TrimSpace(succ)
			if succ != "" {
				forbidden = append(forbidden, succ)
			}
		}
	}

	p.shifts = append(p.shifts, model.ShiftType{
		ID:                  fields[0],
		Minutes:             minutes,
		ForbiddenSuccessors: forbidden,
	})
	return nil
}

// parseStaff 解析员工行：
// ID,班次上限（D=14|N=14）,最大总工时,最小总工时,最大连班,最小连班,最小连休,最大周末数
func (p *Parser) parseStaff(line string, lineNo int) error {
	fields := splitFields(line)
	if len(fields) != 8 {
		return apperrors.ParseFailed(lineNo, "员工行应有 8 个字段: "+line)
	}

	maxShifts := make(map[string]int)
	if fields[1] != "" {
		for _, entry := range strings.Split(fields[1], "|") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			key, value, found := strings.Cut(entry, "=")
			if !found {
				return apperrors.ParseFailed(lineNo, "班次上限条目缺少 =: "+entry)
			}
			if value == noLimitToken {
				maxShifts[key] = model.NoShiftLimit
				continue
			}
			limit, err := strconv.Atoi(value)
			if err != nil {
				return apperrors.ParseFailed(lineNo, "班次上限不是整数: "+entry)
			}
			maxShifts[key] = limit
		}
	}

	ints := make([]int, 6)
	for i, field := range fields[2:8] {
		v, err := strconv.Atoi(field)
		if err != nil {
			return apperrors.ParseFailed(lineNo, "员工数值字段无效: "+field)
		}
		ints[i] = v
	}

	p.staff = append(p.staff, rawStaff{
		staff: model.Staff{
			ID:                    fields[0],
			MaxTotalMinutes:       ints[0],
			MinTotalMinutes:       ints[1],
			MaxConsecutiveShifts:  ints[2],
			MinConsecutiveShifts:  ints[3],
			MinConsecutiveDaysOff: ints[4],
			MaxWeekends:           ints[5],
		},
		maxShifts: maxShifts,
		line:      lineNo,
	})
	return nil
}

// parseDaysOff 解析休息日行：EmployeeID,day,day,...
func (p *Parser) parseDaysOff(line string, lineNo int) error {
	fields := splitFields(line)
	if len(fields) < 2 {
		return apperrors.ParseFailed(lineNo, "休息日行字段不足: "+line)
	}
	days := make([]int, 0, len(fields)-1)
	for _, field := range fields[1:] {
		day, err := strconv.Atoi(field)
		if err != nil {
			return apperrors.ParseFailed(lineNo, "休息日不是整数: "+field)
		}
		days = append(days, day)
	}
	p.daysOff = append(p.daysOff, model.DaysOff{EmployeeID: fields[0], Days: days})
	return nil
}

// parseOnRequest 解析上班请求行：EmployeeID,Day,ShiftID,Weight
func (p *Parser) parseOnRequest(line string, lineNo int) error {
	employeeID, day, shiftID, weight, err := parseRequest(line, lineNo)
	if err != nil {
		return err
	}
	p.onRequests = append(p.onRequests, model.ShiftOnRequest{
		EmployeeID: employeeID, Day: day, ShiftID: shiftID, Weight: weight,
	})
	return nil
}

// parseOffRequest 解析避班请求行：EmployeeID,Day,ShiftID,Weight
func (p *Parser) parseOffRequest(line string, lineNo int) error {
	employeeID, day, shiftID, weight, err := parseRequest(line, lineNo)
	if err != nil {
		return err
	}
	p.offRequests = append(p.offRequests, model.ShiftOffRequest{
		EmployeeID: employeeID, Day: day, ShiftID: shiftID, Weight: weight,
	})
	return nil
}

// parseRequest 解析请求行的公共部分
func parseRequest(line string, lineNo int) (string, int, string, int, error) {
	fields := splitFields(line)
	if len(fields) != 4 {
		return "", 0, "", 0, apperrors.ParseFailed(lineNo, "请求行应有 4 个字段: "+line)
	}
	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return "", 0, "", 0, apperrors.ParseFailed(lineNo, "请求日期不是整数: "+fields[1])
	}
	weight, err := strconv.Atoi(fields[3])
	if err != nil {
		return "", 0, "", 0, apperrors.ParseFailed(lineNo, "请求权重不是整数: "+fields[3])
	}
	return fields[0], day, fields[2], weight, nil
}

// parseCover 解析人力需求行：Day,ShiftID,Requirement,WeightUnder,WeightOver
func (p *Parser) parseCover(line string, lineNo int) error {
	fields := splitFields(line)
	if len(fields) != 5 {
		return apperrors.ParseFailed(lineNo, "人力需求行应有 5 个字段: "+line)
	}
	day, err1 := strconv.Atoi(fields[0])
	requirement, err2 := strconv.Atoi(fields[2])
	under, err3 := strconv.Atoi(fields[3])
	over, err4 := strconv.Atoi(fields[4])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return apperrors.ParseFailed(lineNo, "人力需求数值字段无效: "+line)
	}
	p.cover = append(p.cover, model.CoverageRequirement{
		Day: day, ShiftID: fields[1], Requirement: requirement,
		WeightUnder: under, WeightOver: over,
	})
	return nil
}

// build 组装并校验 Instance，员工的班次上限按班次声明顺序展开
func (p *Parser) build() (*model.Instance, error) {
	staff := make([]model.Staff, 0, len(p.staff))
	for _, raw := range p.staff {
		limits := make([]int, len(p.shifts))
		for i := range limits {
			limits[i] = model.NoShiftLimit
		}
		for shiftID, limit := range raw.maxShifts {
			found := false
			for i, shift := range p.shifts {
				if shift.ID == shiftID {
					limits[i] = limit
					found = true
					break
				}
			}
			if !found {
				return nil, apperrors.ParseFailed(raw.line, "班次上限引用了未知班次: "+shiftID)
			}
		}
		s := raw.staff
		s.MaxShifts = limits
		staff = append(staff, s)
	}

	return model.NewInstance(p.horizon, staff, p.shifts, p.daysOff,
		p.onRequests, p.offRequests, p.cover)
}

// splitFields 按逗号切分并去除首尾空白
func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
