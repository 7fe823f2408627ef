package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/any-hub/polipo-rebuild/internal/config"
	"github.com/any-hub/polipo-rebuild/internal/logging"
	"github.com/any-hub/polipo-rebuild/internal/rebuild"
	"github.com/any-hub/polipo-rebuild/internal/repo"
)

// cliOptions 汇总 CLI 标志与位置参数解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	cacheDir    string
	repoDir     string
	keepGoing   bool
	showVersion bool
	showHelp    bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

const usageText = `用法: polipo-rebuild [flags] <cache-dir> <repo-dir>

从 Polipo 代理缓存目录重建原始文件树。

参数:
  cache-dir   Polipo 缓存目录
  repo-dir    仓库输出目录（按需创建）

flags:
  -config string   可选的 TOML 配置文件（可被 POLIPO_REBUILD_CONFIG 指定）
  -keep-going      跳过失败的条目并在结束时汇总（默认遇到第一个错误即退出）
  -version         显示版本信息

时间戳:
  文件时间取自 X-Polipo-Access（缺失时取 Date），并按头部标注的时区解析（GMT 即 UTC）。
  如需按本机时区解释墙上时间，在配置中设置 TimeZone = "Local"
  （或 POLIPO_REBUILD_TIMEZONE=Local）。
`

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		fmt.Fprint(stdErr, usageText)
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行重建流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showHelp {
		fmt.Fprint(stdOut, usageText)
		return 0
	}
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	loc, err := cfg.Global.Location()
	if err != nil {
		fmt.Fprintf(stdErr, "解析时区失败: %v\n", err)
		return 1
	}

	store, err := repo.NewStore(opts.repoDir, repo.Options{
		DirMode:  cfg.Global.DirMode.Perm(),
		FileMode: cfg.Global.FileMode.Perm(),
	})
	if err != nil {
		fmt.Fprintf(stdErr, "初始化仓库目录失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["cache_dir"] = opts.cacheDir
	fields["repo_dir"] = store.Root()
	logger.WithFields(fields).Debug("配置加载完成")

	runner := rebuild.New(store, logger, rebuild.Options{
		CacheDir:        opts.cacheDir,
		ContinueOnError: opts.keepGoing || cfg.Global.ContinueOnError,
		Location:        loc,
	})
	report, err := runner.Run(context.Background())
	if err != nil {
		if errors.Is(err, rebuild.ErrEntriesFailed) {
			for _, f := range report.Failures {
				fmt.Fprintf(stdErr, "跳过: %v\n", f.Err)
			}
		}
		fmt.Fprintf(stdErr, "重建失败: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdOut, "rebuilt %d files (%s) into %s\n", report.Written, humanize.Bytes(uint64(report.Bytes)), store.Root())
	return 0
}

// parseCLIFlags 解析 CLI 参数与两个位置参数，配置路径可由环境变量提供。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("polipo-rebuild", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		keepGoing  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "可选的 TOML 配置文件（可被 POLIPO_REBUILD_CONFIG 指定）")
	fs.BoolVar(&keepGoing, "keep-going", false, "跳过失败的条目并在结束时汇总")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return cliOptions{showHelp: true}, nil
		}
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	if showVer {
		return cliOptions{showVersion: true}, nil
	}

	if fs.NArg() != 2 {
		return cliOptions{}, fmt.Errorf("需要 2 个位置参数 <cache-dir> <repo-dir>，得到 %d 个", fs.NArg())
	}

	path := os.Getenv("POLIPO_REBUILD_CONFIG")
	if configFlag != "" {
		path = configFlag
	}

	return cliOptions{
		configPath: path,
		cacheDir:   fs.Arg(0),
		repoDir:    fs.Arg(1),
		keepGoing:  keepGoing,
	}, nil
}
