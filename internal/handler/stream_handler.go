package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/streamlog/internal/db"
	"github.com/streamlog/internal/service"
)

// ListPlatforms 返回可选平台及其展示颜色
func (a *API) ListPlatforms(c *gin.Context) {
	items := make([]gin.H, 0, len(db.Platforms))
	for _, p := range db.Platforms {
		items = append(items, gin.H{"name": p, "color": p.Color()})
	}
	c.JSON(http.StatusOK, gin.H{"platforms": items})
}

// ListStreams 返回全部记录，支持 ?date=YYYY-MM-DD 过滤
func (a *API) ListStreams(c *gin.Context) {
	var (
		streams []db.Stream
		err     error
	)

	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		date, parseErr := db.ParseDate(raw)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, "无效的日期")
			return
		}
		streams, err = a.streams.ListByDate(c.Request.Context(), date)
	} else {
		streams, err = a.streams.List(c.Request.Context())
	}
	if err != nil {
		a.handleStreamError(c, err, "获取直播记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"streams": serializeStreams(streams)})
}

// GetStream 返回单条记录
func (a *API) GetStream(c *gin.Context) {
	stream, err := a.streams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.handleStreamError(c, err, "加载直播记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": serializeStream(*stream)})
}

// GetDay 返回某一天的记录及编辑表单回填值
func (a *API) GetDay(c *gin.Context) {
	date, err := db.ParseDate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的日期")
		return
	}

	streams, err := a.streams.ListByDate(c.Request.Context(), date)
	if err != nil {
		a.handleStreamError(c, err, "获取直播记录失败")
		return
	}

	forms := make(map[string]service.StreamForm, len(streams))
	for _, st := range streams {
		forms[st.ID] = service.EditForm(st)
	}

	c.JSON(http.StatusOK, gin.H{
		"date":     date.String(),
		"is_today": date == a.streams.Today(),
		"streams":  serializeStreams(streams),
		"forms":    forms,
	})
}

// CreateStream 新建记录
func (a *API) CreateStream(c *gin.Context) {
	form, ok := parseStreamForm(c)
	if !ok {
		return
	}

	stream, err := form.ToStream("")
	if err != nil {
		a.handleStreamError(c, err, "保存直播记录失败")
		return
	}

	created, err := a.streams.Upsert(c.Request.Context(), stream)
	if err != nil {
		a.handleStreamError(c, err, "保存直播记录失败")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stream": serializeStream(*created)})
}

// UpdateStream 整体替换指定记录
func (a *API) UpdateStream(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, "无效的记录ID")
		return
	}

	form, ok := parseStreamForm(c)
	if !ok {
		return
	}

	stream, err := form.ToStream(id)
	if err != nil {
		a.handleStreamError(c, err, "更新直播记录失败")
		return
	}

	updated, err := a.streams.Upsert(c.Request.Context(), stream)
	if err != nil {
		a.handleStreamError(c, err, "更新直播记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stream": serializeStream(*updated)})
}

// DeleteStream 删除记录，记录不存在同样返回成功
func (a *API) DeleteStream(c *gin.Context) {
	if err := a.streams.Delete(c.Request.Context(), c.Param("id")); err != nil {
		a.handleStreamError(c, err, "删除直播记录失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func parseStreamForm(c *gin.Context) (service.StreamForm, bool) {
	var form service.StreamForm

	if strings.Contains(c.GetHeader("Content-Type"), "application/json") {
		if !bindJSON(c, &form, "请求参数不合法") {
			return service.StreamForm{}, false
		}
		return form, true
	}

	form.Date = c.PostForm("date")
	form.Platform = c.PostForm("platform")
	form.Viewers = c.PostForm("viewers")
	form.DurationHours = c.PostForm("duration_hours")
	form.DurationMinutes = c.PostForm("duration_minutes")
	form.Note = c.PostForm("note")
	return form, true
}

func serializeStream(stream db.Stream) gin.H {
	hours, minutes := service.FromDuration(stream.Duration)
	return gin.H{
		"id":               stream.ID,
		"date":             stream.Date.String(),
		"platform":         stream.Platform,
		"color":            stream.Platform.Color(),
		"viewers":          stream.Viewers,
		"duration":         stream.Duration,
		"duration_hours":   hours,
		"duration_minutes": minutes,
		"note":             stream.Note,
		"note_html":        service.RenderNote(stream.Note),
	}
}

func serializeStreams(streams []db.Stream) []gin.H {
	items := make([]gin.H, 0, len(streams))
	for _, st := range streams {
		items = append(items, serializeStream(st))
	}
	return items
}
