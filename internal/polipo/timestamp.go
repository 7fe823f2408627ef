package polipo

import (
	"time"
)

// TimestampLayout 对应 "Mon, 01 Jan 2024 13:45:00 GMT"，日期允许一位或两位数字。
const TimestampLayout = "Mon, 2 Jan 2006 15:04:05 MST"

// ParseTimestamp 解析头部中的 HTTP 风格时间。loc 非空时保留墙上时间并改用 loc 解释，
// 用于兼容把 GMT 时间当作本地时间写回的旧行为。
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	ts, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if loc != nil {
		ts = time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, loc)
	}
	return ts, nil
}
