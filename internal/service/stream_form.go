package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/gookit/validate"
	"github.com/streamlog/internal/db"
)

func init() {
	validate.AddValidator("isoDate", func(val any) bool {
		s, ok := val.(string)
		if !ok {
			return false
		}
		_, err := db.ParseDate(s)
		return err == nil
	})
	validate.AddValidator("streamPlatform", func(val any) bool {
		s, ok := val.(string)
		if !ok {
			return false
		}
		_, ok = db.ParsePlatform(s)
		return ok
	})
}

// StreamForm 是用户提交的原始表单字段，数值均为字符串。
// 时长按小时+分钟两个输入框提交。
type StreamForm struct {
	Date            string `json:"date" form:"date" validate:"required|isoDate"`
	Platform        string `json:"platform" form:"platform" validate:"required|streamPlatform"`
	Viewers         string `json:"viewers" form:"viewers"`
	DurationHours   string `json:"duration_hours" form:"duration_hours"`
	DurationMinutes string `json:"duration_minutes" form:"duration_minutes"`
	Note            string `json:"note" form:"note"`
}

// Messages 为 gookit/validate 提供自定义错误提示
func (f StreamForm) Messages() map[string]string {
	return validate.MS{
		"required":       "{field} is required",
		"isoDate":        "{field} must be a valid YYYY-MM-DD date",
		"streamPlatform": "{field} must be one of Twitch, YouTube, Kick, TikTok, Facebook Gaming",
	}
}

// formFields 按表单顺序列出结构体校验覆盖的字段，错误字段按此顺序确定
var formFields = []struct {
	key  string
	name string
}{
	{key: "Date", name: "date"},
	{key: "Platform", name: "platform"},
}

func firstFormError(errs validate.Errors) (field, message string) {
	for _, f := range formFields {
		for _, key := range []string{f.key, f.name} {
			if msg := errs.FieldOne(key); msg != "" {
				return f.name, msg
			}
		}
	}
	return "", errs.One()
}

// ToStream 校验并转换表单；id 为空表示新建。
func (f StreamForm) ToStream(id string) (db.Stream, error) {
	v := validate.Struct(&f)
	if !v.Validate() {
		field, message := firstFormError(v.Errors)
		return db.Stream{}, invalid(field, message)
	}

	date, err := db.ParseDate(f.Date)
	if err != nil {
		return db.Stream{}, invalid("date", err.Error())
	}
	platform, _ := db.ParsePlatform(f.Platform)

	viewers, err := ToViewers(f.Viewers)
	if err != nil {
		return db.Stream{}, err
	}

	duration, err := ToDuration(f.DurationHours, f.DurationMinutes)
	if err != nil {
		return db.Stream{}, err
	}

	return db.Stream{
		ID:       strings.TrimSpace(id),
		Date:     date,
		Platform: platform,
		Viewers:  viewers,
		Duration: duration,
		Note:     strings.TrimSpace(f.Note),
	}, nil
}

// EditForm 把已存记录转换回表单字段，用于编辑时回填
func EditForm(stream db.Stream) StreamForm {
	hours, minutes := FromDuration(stream.Duration)
	return StreamForm{
		Date:            stream.Date.String(),
		Platform:        string(stream.Platform),
		Viewers:         strconv.FormatFloat(stream.Viewers, 'f', -1, 64),
		DurationHours:   strconv.Itoa(hours),
		DurationMinutes: strconv.Itoa(minutes),
		Note:            stream.Note,
	}
}

// ToDuration 把小时与分钟合成为小数小时。空白视为 0；
// 非数字或负数直接拒绝；两者均为 0 时拒绝。
func ToDuration(hoursStr, minutesStr string) (float64, error) {
	hours, ok := parseOptionalNumber(hoursStr)
	if !ok {
		return 0, invalid("duration_hours", "hours must be a number")
	}
	minutes, ok := parseOptionalNumber(minutesStr)
	if !ok {
		return 0, invalid("duration_minutes", "minutes must be a number")
	}

	if hours < 0 || minutes < 0 {
		return 0, invalid("duration", "duration cannot be negative")
	}
	if hours == 0 && minutes == 0 {
		return 0, invalid("duration", "duration must be greater than zero")
	}

	return hours + minutes/60, nil
}

// FromDuration 拆分小数小时。分钟四舍五入后若等于 60 则进位到小时，
// 保证分钟始终落在 0-59。
func FromDuration(decimalHours float64) (hours, minutes int) {
	if math.IsNaN(decimalHours) || math.IsInf(decimalHours, 0) || decimalHours <= 0 {
		return 0, 0
	}

	h := math.Floor(decimalHours)
	m := math.Round((decimalHours - h) * 60)
	if m >= 60 {
		h++
		m = 0
	}
	return int(h), int(m)
}

// ToViewers 解析平均观众数：空白、非数字、负数和 0 都会被拒绝。
func ToViewers(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, invalid("viewers", "viewers is required")
	}

	viewers, ok := parseOptionalNumber(raw)
	if !ok {
		return 0, invalid("viewers", "viewers must be a number")
	}
	if viewers < 0 {
		return 0, invalid("viewers", "viewers cannot be negative")
	}
	if viewers == 0 {
		return 0, invalid("viewers", "viewers must be greater than zero")
	}

	return viewers, nil
}

func parseOptionalNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, true
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
