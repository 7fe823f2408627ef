package polipo

import (
	"fmt"
	"strconv"
	"strings"
)

// Polipo 在缓存文件头部写入的字段名。
const (
	HeaderBodyOffset = "X-Polipo-Body-Offset"
	HeaderLocation   = "X-Polipo-Location"
	HeaderAccess     = "X-Polipo-Access"
	HeaderDate       = "Date"
)

// Headers 保存单个缓存文件的头部键值，键区分大小写，重复键以最后一次为准。
type Headers map[string]string

// ParseHeaderLine 按第一个冒号切分一行头部；没有冒号时整行作为键、值为空。
func ParseHeaderLine(line string) (key, value string) {
	key, value, found := strings.Cut(line, ":")
	if !found {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(key), strings.TrimSpace(value)
}

// Set 解析并记录一行头部。
func (h Headers) Set(line string) {
	key, value := ParseHeaderLine(line)
	h[key] = value
}

// Lookup 返回字段值以及字段是否存在。
func (h Headers) Lookup(key string) (string, bool) {
	v, ok := h[key]
	return v, ok
}

// Get 返回字段值，不存在时为空字符串。
func (h Headers) Get(key string) string {
	return h[key]
}

// Int 将字段解析为十进制整数，字段缺失时返回 def。
func (h Headers) Int(key string, def int64) (int64, error) {
	raw, ok := h[key]
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, raw, err)
	}
	return n, nil
}
