package polipo

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/any-hub/polipo-rebuild/internal/failure"
)

// errStopWalk 在调用方提前结束 range 循环时中止 WalkDir。
var errStopWalk = errors.New("stop walk")

// Files 递归列出 root 下所有常规文件，顺序取决于文件系统。每次 range 都会重新遍历。
// root 不可访问或子目录读取失败时产出一个 directory_access 错误；调用方通常应在错误后停止。
func Files(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		info, err := os.Stat(root)
		if err != nil {
			yield("", failure.New(failure.DirectoryAccess, root, err))
			return
		}
		if !info.IsDir() {
			yield("", failure.New(failure.DirectoryAccess, root, errors.New("not a directory")))
			return
		}

		// WalkDir 不会进入作为根的符号链接，先解析出真实目录再遍历。
		walkRoot, err := filepath.EvalSymlinks(root)
		if err != nil {
			yield("", failure.New(failure.DirectoryAccess, root, err))
			return
		}

		walkErr := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			path = rebase(walkRoot, root, path)
			if err != nil {
				if !yield(path, failure.New(failure.DirectoryAccess, path, err)) {
					return errStopWalk
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !isRegular(path, d) {
				return nil
			}
			if !yield(path, nil) {
				return errStopWalk
			}
			return nil
		})
		if walkErr != nil && !errors.Is(walkErr, errStopWalk) {
			yield("", failure.New(failure.DirectoryAccess, root, walkErr))
		}
	}
}

// rebase 把 walkRoot 下的路径换回调用方给出的 root 前缀。
func rebase(walkRoot, root, path string) string {
	if walkRoot == root {
		return path
	}
	rel, err := filepath.Rel(walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(root, rel)
}

// isRegular 判断遍历到的条目是否为常规文件；符号链接按其指向判断，但不会进入目录。
func isRegular(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}
