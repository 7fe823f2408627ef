package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FileMode 支持以八进制字符串（如 "0755"）或整数书写的权限位。
type FileMode os.FileMode

// Perm 返回真实的 os.FileMode，便于调用方使用。
func (m FileMode) Perm() os.FileMode {
	return os.FileMode(m)
}

func (m FileMode) String() string {
	return fmt.Sprintf("%#o", uint32(m))
}

// parseOctal 接受可选的 0 / 0o 前缀。
func parseOctal(value string) (FileMode, error) {
	raw := strings.TrimSpace(value)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0o"), "0O")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode value: %s", value)
	}
	return FileMode(n), nil
}

// GlobalConfig 描述日志与写入行为，所有缓存条目共享同一份参数。
type GlobalConfig struct {
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	ContinueOnError bool     `mapstructure:"ContinueOnError"`
	DirMode         FileMode `mapstructure:"DirMode"`
	FileMode        FileMode `mapstructure:"FileMode"`
	TimeZone        string   `mapstructure:"TimeZone"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
}

// Location 返回 TimeZone 对应的时区；为空表示按时间戳自带的时区解析，返回 nil。
func (g GlobalConfig) Location() (*time.Location, error) {
	switch strings.TrimSpace(g.TimeZone) {
	case "":
		return nil, nil
	case "Local", "local":
		return time.Local, nil
	default:
		return time.LoadLocation(strings.TrimSpace(g.TimeZone))
	}
}
