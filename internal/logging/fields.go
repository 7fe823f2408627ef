package logging

import "github.com/sirupsen/logrus"

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// RunFields 描述一次重建任务的输入输出目录。
func RunFields(runID, cacheDir, repoDir string) logrus.Fields {
	return logrus.Fields{
		"run_id":    runID,
		"cache_dir": cacheDir,
		"repo_dir":  repoDir,
	}
}

// EntryFields 提供单个缓存条目的日志字段。
func EntryFields(runID, cacheFile string) logrus.Fields {
	return logrus.Fields{
		"run_id":     runID,
		"cache_file": cacheFile,
	}
}
