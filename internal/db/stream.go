package db

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DateLayout 是日期在存储与接口中的统一格式
const DateLayout = "2006-01-02"

// Platform 表示直播平台，取值限定在 Platforms 中
type Platform string

const (
	PlatformTwitch         Platform = "Twitch"
	PlatformYouTube        Platform = "YouTube"
	PlatformKick           Platform = "Kick"
	PlatformTikTok         Platform = "TikTok"
	PlatformFacebookGaming Platform = "Facebook Gaming"
)

// Platforms 按展示顺序列出全部平台
var Platforms = []Platform{
	PlatformTwitch,
	PlatformYouTube,
	PlatformKick,
	PlatformTikTok,
	PlatformFacebookGaming,
}

var platformColors = map[Platform]string{
	PlatformTwitch:         "#9146FF",
	PlatformYouTube:        "#FF0000",
	PlatformKick:           "#53FC18",
	PlatformTikTok:         "#00F2EA",
	PlatformFacebookGaming: "#1877F2",
}

// Valid 判断平台是否属于固定集合
func (p Platform) Valid() bool {
	_, ok := platformColors[p]
	return ok
}

// Color 返回平台的展示颜色，未知平台返回白色
func (p Platform) Color() string {
	if color, ok := platformColors[p]; ok {
		return color
	}
	return "#FFFFFF"
}

// ParsePlatform 忽略大小写与首尾空白解析平台名称
func ParsePlatform(raw string) (Platform, bool) {
	value := strings.TrimSpace(raw)
	for _, p := range Platforms {
		if strings.EqualFold(string(p), value) {
			return p, true
		}
	}
	return "", false
}

// Date 是不含时间与时区的日历日期
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate 解析 YYYY-MM-DD，拒绝不存在的日期（例如 2023-02-29）
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

// DateOf 取时间在其自身时区下的日历日期
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate 构造日期，溢出的月/日会按日历规范化
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// AddDays 返回偏移若干天后的日期
func (d Date) AddDays(days int) Date {
	return NewDate(d.Year, d.Month, d.Day+days)
}

// Weekday 返回该日期是星期几
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// Compare 按日历顺序比较，返回 -1/0/1
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return compareInt(d.Year, other.Year)
	case d.Month != other.Month:
		return compareInt(int(d.Month), int(other.Month))
	default:
		return compareInt(d.Day, other.Day)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsZero 报告日期是否未设置
func (d Date) IsZero() bool {
	return d == Date{}
}

// Valid 报告日期是否为真实存在的日历日期
func (d Date) Valid() bool {
	return !d.IsZero() && NewDate(d.Year, d.Month, d.Day) == d
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON 以 YYYY-MM-DD 字符串输出
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON 读取 YYYY-MM-DD 字符串
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Stream 记录一次直播。持久化时整个集合以 JSON 数组写入单个存储键，
// 读取时忽略未知字段。
type Stream struct {
	ID       string   `json:"id"`
	Date     Date     `json:"date"`
	Platform Platform `json:"platform"`
	Viewers  float64  `json:"viewers"`
	Duration float64  `json:"duration"` // 小时，可带小数
	Note     string   `json:"note"`
}
