package service

import (
	"fmt"
	"math"
	"time"

	"github.com/streamlog/internal/db"
)

// DefaultPreviewLimit 是日历格子里直接展示的记录条数
const DefaultPreviewLimit = 2

// Month 标识一个自然月，Month 取值 1-12
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf 返回日期所在的月份
func MonthOf(date db.Date) Month {
	return Month{Year: date.Year, Month: date.Month}
}

// ParseMonth 解析年份与 1-12 的月份
func ParseMonth(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("invalid month %d", month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("invalid year %d", year)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

func (m Month) firstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Prev 返回上一个月，一月会回到上一年的十二月
func (m Month) Prev() Month {
	t := m.firstDay().AddDate(0, -1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Next 返回下一个月，十二月会进入下一年的一月
func (m Month) Next() Month {
	t := m.firstDay().AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Days 返回该月天数，闰年二月为 29
func (m Month) Days() int {
	return m.firstDay().AddDate(0, 1, -1).Day()
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// CalendarCell 是日历中的一天
type CalendarCell struct {
	Date           db.Date     `json:"date"`
	Streams        []db.Stream `json:"streams"`
	Count          int         `json:"count"`
	AverageViewers *float64    `json:"average_viewers"`
	IsToday        bool        `json:"is_today"`
}

// Preview 返回前 limit 条记录以及未展示的条数
func (c CalendarCell) Preview(limit int) ([]db.Stream, int) {
	if limit < 0 {
		limit = 0
	}
	if len(c.Streams) <= limit {
		return c.Streams, 0
	}
	return c.Streams[:limit], len(c.Streams) - limit
}

// RoundedAverage 返回四舍五入后的平均观众数，空格子返回 false
func (c CalendarCell) RoundedAverage() (int, bool) {
	if c.AverageViewers == nil {
		return 0, false
	}
	return int(math.Floor(*c.AverageViewers + 0.5)), true
}

// MonthGrid 是一个月的日历网格，LeadingBlanks 为首日之前的空白格数
type MonthGrid struct {
	Month         Month          `json:"month"`
	WeekStart     time.Weekday   `json:"week_start"`
	LeadingBlanks int            `json:"leading_blanks"`
	Cells         []CalendarCell `json:"cells"`
}

// BuildMonthGrid 按日历日期精确匹配记录，不做任何时区换算。
// today 由调用方按本地时钟提供，只用于标记 IsToday。
func BuildMonthGrid(month Month, streams []db.Stream, today db.Date, weekStart time.Weekday) MonthGrid {
	first := db.Date{Year: month.Year, Month: month.Month, Day: 1}
	grid := MonthGrid{
		Month:         month,
		WeekStart:     weekStart,
		LeadingBlanks: (int(first.Weekday()) - int(weekStart) + 7) % 7,
		Cells:         make([]CalendarCell, 0, month.Days()),
	}

	byDate := make(map[db.Date][]db.Stream)
	for _, st := range streams {
		if st.Date.Year == month.Year && st.Date.Month == month.Month {
			byDate[st.Date] = append(byDate[st.Date], st)
		}
	}

	for day := 1; day <= month.Days(); day++ {
		date := db.Date{Year: month.Year, Month: month.Month, Day: day}
		dayStreams := byDate[date]
		if dayStreams == nil {
			dayStreams = []db.Stream{}
		}

		cell := CalendarCell{
			Date:    date,
			Streams: dayStreams,
			Count:   len(dayStreams),
			IsToday: date == today,
		}
		if cell.Count > 0 {
			var total float64
			for _, st := range dayStreams {
				total += st.Viewers
			}
			avg := total / float64(cell.Count)
			cell.AverageViewers = &avg
		}

		grid.Cells = append(grid.Cells, cell)
	}

	return grid
}
