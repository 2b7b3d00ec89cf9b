package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/streamlog/internal/service"
)

const calendarMonthSessionKey = "calendar_month"

// GetCalendar 渲染日历网格。显式传入 year/month 时以参数为准并记入会话，
// 否则沿用会话中记住的月份，首次访问显示当前月份。
func (a *API) GetCalendar(c *gin.Context) {
	month, ok := a.requestedMonth(c)
	if !ok {
		return
	}
	a.renderCalendar(c, month)
}

// PrevMonth 切换到上一个月
func (a *API) PrevMonth(c *gin.Context) {
	a.renderCalendar(c, a.sessionMonth(c).Prev())
}

// NextMonth 切换到下一个月
func (a *API) NextMonth(c *gin.Context) {
	a.renderCalendar(c, a.sessionMonth(c).Next())
}

// TodayMonth 回到当前月份
func (a *API) TodayMonth(c *gin.Context) {
	a.renderCalendar(c, service.MonthOf(a.streams.Today()))
}

func (a *API) requestedMonth(c *gin.Context) (service.Month, bool) {
	rawYear := strings.TrimSpace(c.Query("year"))
	rawMonth := strings.TrimSpace(c.Query("month"))
	if rawYear == "" && rawMonth == "" {
		return a.sessionMonth(c), true
	}

	year, yearErr := strconv.Atoi(rawYear)
	mon, monthErr := strconv.Atoi(rawMonth)
	if yearErr != nil || monthErr != nil {
		respondError(c, http.StatusBadRequest, "无效的月份")
		return service.Month{}, false
	}

	month, err := service.ParseMonth(year, mon)
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的月份")
		return service.Month{}, false
	}
	return month, true
}

func (a *API) sessionMonth(c *gin.Context) service.Month {
	session := sessions.Default(c)
	if raw, ok := session.Get(calendarMonthSessionKey).(string); ok {
		if month, err := parseMonthKey(raw); err == nil {
			return month
		}
	}
	return service.MonthOf(a.streams.Today())
}

func (a *API) renderCalendar(c *gin.Context, month service.Month) {
	streams, err := a.streams.List(c.Request.Context())
	if err != nil {
		a.handleStreamError(c, err, "加载日历失败")
		return
	}

	session := sessions.Default(c)
	session.Set(calendarMonthSessionKey, month.String())
	if err := session.Save(); err != nil {
		a.logger.Warn().Err(err).Msg("save calendar session")
	}

	grid := service.BuildMonthGrid(month, streams, a.streams.Today(), a.weekStart)
	c.JSON(http.StatusOK, a.serializeGrid(grid))
}

func (a *API) serializeGrid(grid service.MonthGrid) gin.H {
	days := make([]gin.H, 0, len(grid.Cells))
	for _, cell := range grid.Cells {
		preview, overflow := cell.Preview(a.previewLimit)
		day := gin.H{
			"date":            cell.Date.String(),
			"day":             cell.Date.Day,
			"count":           cell.Count,
			"average_viewers": cell.AverageViewers,
			"is_today":        cell.IsToday,
			"preview":         serializeStreams(preview),
			"overflow":        overflow,
			"streams":         serializeStreams(cell.Streams),
		}
		if avg, ok := cell.RoundedAverage(); ok {
			day["rounded_average"] = avg
		} else {
			day["rounded_average"] = nil
		}
		days = append(days, day)
	}

	return gin.H{
		"month":          grid.Month.String(),
		"year":           grid.Month.Year,
		"month_number":   int(grid.Month.Month),
		"month_name":     grid.Month.Month.String(),
		"week_start":     strings.ToLower(grid.WeekStart.String()),
		"leading_blanks": grid.LeadingBlanks,
		"days":           days,
	}
}

func parseMonthKey(raw string) (service.Month, error) {
	year, mon, found := strings.Cut(raw, "-")
	if !found {
		return service.Month{}, strconv.ErrSyntax
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return service.Month{}, err
	}
	m, err := strconv.Atoi(mon)
	if err != nil {
		return service.Month{}, err
	}
	return service.ParseMonth(y, m)
}
