package rebuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/polipo-rebuild/internal/failure"
	"github.com/any-hub/polipo-rebuild/internal/logging"
	"github.com/any-hub/polipo-rebuild/internal/polipo"
	"github.com/any-hub/polipo-rebuild/internal/repo"
)

// ErrEntriesFailed 在 ContinueOnError 模式下表示至少一个条目处理失败。
var ErrEntriesFailed = errors.New("some cache entries failed")

// Options 描述一次重建任务。
type Options struct {
	CacheDir        string
	ContinueOnError bool
	// Location 非空时，时间戳的墙上时间按该时区解释。
	Location *time.Location
}

// Failure 记录 ContinueOnError 模式下被跳过的条目。
type Failure struct {
	Path string
	// Dest 为已解析出的仓库目标路径，URL 无法映射时为空。
	Dest string
	Kind failure.Kind
	Err  error
}

// Report 汇总一次运行的结果。
type Report struct {
	RunID    string
	Scanned  int
	Written  int
	Bytes    int64
	Failures []Failure
}

// Runner 串行执行 遍历 → 解析 → 写入。
type Runner struct {
	store  repo.Store
	logger *logrus.Logger
	opts   Options
}

// New 构造 Runner；logger 为空时使用 logrus 标准 logger。
func New(store repo.Store, logger *logrus.Logger, opts Options) *Runner {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Runner{store: store, logger: logger, opts: opts}
}

// Run 处理 CacheDir 下的全部文件。遍历错误总是终止运行；条目错误在默认模式下
// 终止运行，ContinueOnError 时记入 Report 并在结束后返回 ErrEntriesFailed。
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	started := time.Now()

	fields := logging.RunFields(report.RunID, r.opts.CacheDir, r.store.Root())
	fields["action"] = "rebuild_start"
	fields["continue_on_error"] = r.opts.ContinueOnError
	r.logger.WithFields(fields).Info("rebuild started")

	for path, err := range polipo.Files(r.opts.CacheDir) {
		if err != nil {
			r.finish(report, started, err)
			return report, err
		}
		if err := ctx.Err(); err != nil {
			r.finish(report, started, err)
			return report, err
		}

		report.Scanned++
		written, dest, err := r.processEntry(ctx, path)
		if err != nil {
			failFields := logging.EntryFields(report.RunID, path)
			failFields["error_kind"] = string(failure.KindOf(err))
			if dest != "" {
				failFields["dest"] = dest
			}
			r.logger.WithFields(failFields).WithError(err).Warn("entry_failed")
			if !r.opts.ContinueOnError {
				r.finish(report, started, err)
				return report, err
			}
			report.Failures = append(report.Failures, Failure{Path: path, Dest: dest, Kind: failure.KindOf(err), Err: err})
			continue
		}

		report.Written++
		report.Bytes += written.SizeBytes
		entryFields := logging.EntryFields(report.RunID, path)
		entryFields["url"] = written.URL
		entryFields["dest"] = written.FilePath
		entryFields["size"] = written.SizeBytes
		entryFields["mtime"] = written.ModTime.UTC().Format(time.RFC3339)
		r.logger.WithFields(entryFields).Debug("entry_written")
	}

	var runErr error
	if len(report.Failures) > 0 {
		runErr = fmt.Errorf("%w: %d of %d", ErrEntriesFailed, len(report.Failures), report.Scanned)
	}
	r.finish(report, started, runErr)
	return report, runErr
}

// processEntry 返回写入结果与目标路径；目标路径在写入失败时也会尽量给出，便于排查。
func (r *Runner) processEntry(ctx context.Context, path string) (*repo.Written, string, error) {
	entry, err := polipo.ReadEntry(path, polipo.ReadOptions{Location: r.opts.Location})
	if err != nil {
		return nil, "", err
	}
	dest, err := r.store.Path(entry.URL)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	written, err := r.store.Put(ctx, entry.URL, bytes.NewReader(entry.Body), repo.PutOptions{ModTime: entry.Timestamp})
	if err != nil {
		return nil, dest, fmt.Errorf("%s: %w", path, err)
	}
	return written, dest, nil
}

func (r *Runner) finish(report Report, started time.Time, err error) {
	fields := logging.RunFields(report.RunID, r.opts.CacheDir, r.store.Root())
	fields["action"] = "rebuild_finish"
	fields["scanned"] = report.Scanned
	fields["written"] = report.Written
	fields["failed"] = len(report.Failures)
	fields["bytes"] = humanize.Bytes(uint64(report.Bytes))
	fields["elapsed_ms"] = time.Since(started).Milliseconds()

	entry := r.logger.WithFields(fields)
	if err != nil {
		entry.WithError(err).Error("rebuild_failed")
		return
	}
	entry.Info("rebuild_complete")
}
