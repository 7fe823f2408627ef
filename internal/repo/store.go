package repo

import (
	"context"
	"io"
	"os"
	"time"
)

// Store 负责把正文写回仓库目录。磁盘布局遵循：
//
//	<Root>/<URL path>    # 原始正文
//
// 同一目标路径的并发写入会被串行化，最后一次写入生效。
type Store interface {
	// Put 将正文写入 rawURL 对应的文件，覆盖已有内容，并把访问/修改时间设置为 opts.ModTime。
	Put(ctx context.Context, rawURL string, body io.Reader, opts PutOptions) (*Written, error)

	// Path 返回 rawURL 在仓库中的目标文件路径，不触碰文件系统。
	Path(rawURL string) (string, error)

	// Root 返回仓库根目录的绝对路径。
	Root() string
}

// Options 控制新建目录与文件的权限。
type Options struct {
	DirMode  os.FileMode
	FileMode os.FileMode
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
}

// Written 描述一次成功写入的结果。
type Written struct {
	URL       string
	FilePath  string
	SizeBytes int64
	ModTime   time.Time
}

// 默认权限与常见的 umask 022 结果一致。
const (
	DefaultDirMode  os.FileMode = 0o755
	DefaultFileMode os.FileMode = 0o644
)
