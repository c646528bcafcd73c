package semester

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 解析失败的三类错误，调用方通过 errors.Is 区分
var (
	ErrInvalidFormat = errors.New("invalid semester format, expected \"Season YYYY\"")
	ErrInvalidSeason = errors.New("invalid season, expected spring, summer or fall")
	ErrInvalidYear   = errors.New("invalid year, expected a 4-digit year between 1900 and 2100")
)

const (
	MinYear = 1900
	MaxYear = 2100
)

// Parse 解析 "Fall 2024" 形式的学期字符串。
// 季节大小写不敏感，容忍首尾及中间多余空白；分词后必须恰好两段。
func Parse(input string) (Semester, error) {
	fields := strings.Fields(input)
	if len(fields) != 2 {
		return Semester{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}

	season, err := ParseSeason(fields[0])
	if err != nil {
		return Semester{}, err
	}

	year, err := parseYear(fields[1])
	if err != nil {
		return Semester{}, err
	}

	return New(year, season), nil
}

// MustParse 解析失败时 panic，仅用于常量与测试
func MustParse(input string) Semester {
	s, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return s
}

func parseYear(tok string) (int, error) {
	if len(tok) != 4 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, tok)
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidYear, tok)
		}
	}
	year, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidYear, tok)
	}
	if year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}
	return year, nil
}
