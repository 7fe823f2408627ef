package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix 为环境变量覆盖的前缀，例如 POLIPO_REBUILD_LOGLEVEL=debug。
const EnvPrefix = "POLIPO_REBUILD"

// Load 读取可选的 TOML 配置文件并叠加环境变量，path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(fileModeDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("ContinueOnError", false)
	v.SetDefault("DirMode", "0755")
	v.SetDefault("FileMode", "0644")
	v.SetDefault("TimeZone", "")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if strings.TrimSpace(g.LogLevel) == "" {
		g.LogLevel = "info"
	}
	if g.DirMode == 0 {
		g.DirMode = 0o755
	}
	if g.FileMode == 0 {
		g.FileMode = 0o644
	}
}

// fileModeDecodeHook 兼容字符串（按八进制）与 TOML 整数两种写法。
func fileModeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(FileMode(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return parseOctal(v)
		case int:
			return FileMode(v), nil
		case int64:
			return FileMode(v), nil
		case uint32:
			return FileMode(v), nil
		case os.FileMode:
			return FileMode(v), nil
		case FileMode:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 FileMode 类型: %T", v)
		}
	}
}
