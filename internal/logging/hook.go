package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/any-hub/polipo-rebuild/internal/version"
)

// AppName 写入每条日志的 app 字段，便于在共享的日志文件中区分来源。
const AppName = "polipo-rebuild"

// staticFieldsHook 为每条日志补充固定字段，调用方显式设置的同名字段优先。
type staticFieldsHook struct {
	fields logrus.Fields
}

func newStaticFieldsHook() *staticFieldsHook {
	return &staticFieldsHook{fields: logrus.Fields{
		"app":     AppName,
		"version": version.Version,
	}}
}

func (h *staticFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *staticFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, exists := entry.Data[k]; !exists {
			entry.Data[k] = v
		}
	}
	return nil
}
