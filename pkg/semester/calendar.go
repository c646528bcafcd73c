package semester

import "time"

// Current 返回 now 所处的学期。
// 9–12 月与 1 月属于秋季学期（1 月时学年锚点减一），2–5 月为春季，6–8 月为夏季。
func Current(now time.Time) Semester {
	year := now.Year()
	switch m := now.Month(); {
	case m == time.January:
		return New(year-1, Fall)
	case m >= time.September:
		return New(year, Fall)
	case m >= time.June:
		return New(year, Summer)
	default:
		return New(year, Spring)
	}
}

// Next 返回紧随 cur 之后的学期：fall → 次年 spring，spring → 同年 summer，summer → 同年 fall
func Next(cur Semester) Semester {
	switch cur.Season {
	case Spring:
		return New(cur.Year, Summer)
	case Summer:
		return New(cur.Year, Fall)
	default:
		return New(cur.Year+1, Spring)
	}
}

// NextFrom 返回 now 所处学期的下一个学期
func NextFrom(now time.Time) Semester {
	return Next(Current(now))
}

// Compare 学期全序比较：先比 Year，再比季节顺序。a<b 返回负数，相等返回 0，a>b 返回正数
func Compare(a, b Semester) int {
	if a.Year != b.Year {
		return a.Year - b.Year
	}
	return a.Season.Rank() - b.Season.Rank()
}

// Range 按时间顺序枚举 [start, end] 闭区间内的学期。
// 中间的夏季学期仅在 includeSummer 时包含；起止端点本身总是包含，
// 因此单学期区间恰好返回一个元素。start 晚于 end 时返回空切片。
func Range(startYear int, startSeason Season, endYear int, endSeason Season, includeSummer bool) []Semester {
	if !startSeason.Valid() || !endSeason.Valid() {
		return []Semester{}
	}

	first := New(startYear, startSeason)
	last := New(endYear, endSeason)
	if Compare(first, last) > 0 {
		return []Semester{}
	}

	result := make([]Semester, 0, (endYear-startYear+1)*3)
	for cur := first; Compare(cur, last) <= 0; cur = Next(cur) {
		if cur.Season == Summer && !includeSummer && !cur.Equal(first) && !cur.Equal(last) {
			continue
		}
		result = append(result, cur)
	}
	return result
}

// IsPast s 是否早于 now 所处学期
func IsPast(s Semester, now time.Time) bool {
	return Compare(s, Current(now)) < 0
}

// IsCurrent s 是否为 now 所处学期
func IsCurrent(s Semester, now time.Time) bool {
	return Compare(s, Current(now)) == 0
}

// IsFuture s 是否晚于 now 所处学期
func IsFuture(s Semester, now time.Time) bool {
	return Compare(s, Current(now)) > 0
}
