package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	g := cfg.Global
	if g.LogLevel != "info" {
		t.Fatalf("默认日志级别应为 info，得到 %s", g.LogLevel)
	}
	if g.DirMode != 0o755 || g.FileMode != 0o644 {
		t.Fatalf("默认权限不正确: %s %s", g.DirMode, g.FileMode)
	}
	if g.ContinueOnError {
		t.Fatalf("默认应在第一个错误处停止")
	}
	if loc, err := g.Location(); err != nil || loc != nil {
		t.Fatalf("默认不应覆盖时区: %v %v", loc, err)
	}
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	g := cfg.Global
	if g.LogLevel != "debug" || g.LogMaxSize != 20 || g.LogMaxBackups != 3 || g.LogCompress {
		t.Fatalf("日志配置解析错误: %+v", g)
	}
	if !g.ContinueOnError {
		t.Fatalf("ContinueOnError 应被解析")
	}
	if g.DirMode.Perm() != 0o750 {
		t.Fatalf("字符串权限解析错误: %s", g.DirMode)
	}
	if g.FileMode.Perm() != 0o640 {
		t.Fatalf("整数权限解析错误: %s", g.FileMode)
	}
	loc, err := g.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("时区解析错误: %v %v", loc, err)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("POLIPO_REBUILD_LOGLEVEL", "warn")
	t.Setenv("POLIPO_REBUILD_CONTINUEONERROR", "false")

	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.LogLevel != "warn" {
		t.Fatalf("环境变量应覆盖文件，得到 %s", cfg.Global.LogLevel)
	}
	if cfg.Global.ContinueOnError {
		t.Fatalf("环境变量应覆盖 ContinueOnError")
	}
}

func TestLoadRejectsInvalidFileMode(t *testing.T) {
	if _, err := Load(testConfigPath(t, "invalid_mode.toml")); err == nil {
		t.Fatalf("非法权限应返回错误")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(testConfigPath(t, "missing.toml")); err == nil {
		t.Fatalf("配置文件不存在时应返回错误")
	}
}

func TestLoadRejectsUnknownTimeZone(t *testing.T) {
	path := writeTempConfig(t, `TimeZone = "Mars/Olympus_Mons"`)
	_, err := Load(path)
	var fe FieldError
	if !errors.As(err, &fe) || fe.Field != "Global.TimeZone" {
		t.Fatalf("未知时区应返回 FieldError，得到 %v", err)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*GlobalConfig)
		field  string
	}{
		{"bad level", func(g *GlobalConfig) { g.LogLevel = "loud" }, "Global.LogLevel"},
		{"negative size", func(g *GlobalConfig) { g.LogMaxSize = -1 }, "Global.LogMaxSize"},
		{"negative backups", func(g *GlobalConfig) { g.LogMaxBackups = -1 }, "Global.LogMaxBackups"},
		{"dir not traversable", func(g *GlobalConfig) { g.DirMode = 0o644 }, "Global.DirMode"},
		{"file read only", func(g *GlobalConfig) { g.FileMode = 0o444 }, "Global.FileMode"},
		{"mode overflow", func(g *GlobalConfig) { g.FileMode = 0o17777 }, "Global.FileMode"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg.Global)
			err := cfg.Validate()
			var fe FieldError
			if !errors.As(err, &fe) || fe.Field != tc.field {
				t.Fatalf("expected FieldError on %s, got %v", tc.field, err)
			}
		})
	}
}

func TestParseOctal(t *testing.T) {
	for raw, want := range map[string]FileMode{"0755": 0o755, "0o644": 0o644, "600": 0o600, " 0750 ": 0o750} {
		got, err := parseOctal(raw)
		if err != nil || got != want {
			t.Fatalf("parseOctal(%q) = %s, %v", raw, got, err)
		}
	}
	if _, err := parseOctal("rwx"); err == nil {
		t.Fatalf("非八进制字符串应失败")
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			LogLevel:      "info",
			LogMaxSize:    100,
			LogMaxBackups: 10,
			DirMode:       0o755,
			FileMode:      0o644,
		},
	}
}
