package config

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入写入流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别 "+g.LogLevel)
	}
	if g.LogMaxSize < 0 {
		return newFieldError("Global.LogMaxSize", "不能为负数")
	}
	if g.LogMaxBackups < 0 {
		return newFieldError("Global.LogMaxBackups", "不能为负数")
	}
	if g.DirMode > 0o7777 {
		return newFieldError("Global.DirMode", "超出权限位范围")
	}
	if g.DirMode&0o700 != 0o700 {
		return newFieldError("Global.DirMode", "属主必须拥有 rwx 权限")
	}
	if g.FileMode > 0o7777 {
		return newFieldError("Global.FileMode", "超出权限位范围")
	}
	if g.FileMode&0o200 == 0 {
		return newFieldError("Global.FileMode", "属主必须可写")
	}
	if _, err := g.Location(); err != nil {
		return newFieldError("Global.TimeZone", err.Error())
	}
	return nil
}
