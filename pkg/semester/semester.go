// Package semester 学年学期日历：表示、解析、格式化、比较与枚举 Spring/Summer/Fall 学期。
//
// 约定：
//   - 秋季学期跨自然年：Fall YYYY 为 YYYY-09-01 ~ (YYYY+1)-01-31
//   - 春季学期 YYYY-02-01 ~ YYYY-05-31；夏季学期 YYYY-06-01 ~ YYYY-08-31
//   - 所有依赖"当前时间"的函数都显式接收 now，不读取系统时钟
package semester

import (
	"fmt"
	"strings"
	"time"
)

// Season 学期季节
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Fall   Season = "fall"
)

// Rank 季节在同一学年内的先后顺序：spring=0 < summer=1 < fall=2
func (s Season) Rank() int {
	switch s {
	case Spring:
		return 0
	case Summer:
		return 1
	case Fall:
		return 2
	default:
		return -1
	}
}

// Valid 是否为受支持的季节
func (s Season) Valid() bool { return s.Rank() >= 0 }

// Title 首字母大写形式，如 "Fall"
func (s Season) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseSeason 大小写不敏感地解析季节名称
func ParseSeason(raw string) (Season, error) {
	s := Season(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, raw)
	}
	return s, nil
}

// Semester 学期值对象，仅由 (Year, Season) 决定身份
type Semester struct {
	Year      int       `json:"year"`
	Season    Season    `json:"season"`
	Display   string    `json:"display"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// New 根据学年与季节构造学期，并推导起止日期（UTC 零点，闭区间）
func New(year int, season Season) Semester {
	var start, end time.Time
	switch season {
	case Fall:
		start = time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year+1, time.January, 31, 0, 0, 0, 0, time.UTC)
	case Spring:
		start = time.Date(year, time.February, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	case Summer:
		start = time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(year, time.August, 31, 0, 0, 0, 0, time.UTC)
	}
	return Semester{
		Year:      year,
		Season:    season,
		Display:   Format(year, season),
		StartDate: start,
		EndDate:   end,
	}
}

// Format 生成 "{Season} {Year}" 形式的展示名，如 "Fall 2024"
func Format(year int, season Season) string {
	return fmt.Sprintf("%s %d", season.Title(), year)
}

// String 实现 fmt.Stringer
func (s Semester) String() string { return s.Display }

// Equal 两个学期 year/season 相同即相等
func (s Semester) Equal(o Semester) bool {
	return s.Year == o.Year && s.Season == o.Season
}

// Contains 判断时间点是否落在学期内（按日期比较，EndDate 当天全天有效）
func (s Semester) Contains(t time.Time) bool {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !d.Before(s.StartDate) && !d.After(s.EndDate)
}
