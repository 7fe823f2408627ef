package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/any-hub/polipo-rebuild/internal/failure"
)

// NewStore 以 root 为仓库根目录构建写入器。根目录在第一次写入时按需创建。
func NewStore(root string, opts Options) (Store, error) {
	if root == "" {
		return nil, errors.New("repository path required")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}

	if opts.DirMode == 0 {
		opts.DirMode = DefaultDirMode
	}
	if opts.FileMode == 0 {
		opts.FileMode = DefaultFileMode
	}

	return &fileStore{
		root:  abs,
		opts:  opts,
		locks: make(map[string]*entryLock),
	}, nil
}

// fileStore 通过 entryLock 避免同一目标文件被并发写入。
type fileStore struct {
	root string
	opts Options

	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

func (s *fileStore) Root() string {
	return s.root
}

func (s *fileStore) Path(rawURL string) (string, error) {
	return ResolvePath(s.root, rawURL)
}

func (s *fileStore) Put(ctx context.Context, rawURL string, body io.Reader, opts PutOptions) (*Written, error) {
	filePath, err := ResolvePath(s.root, rawURL)
	if err != nil {
		return nil, err
	}

	unlock := s.lockEntry(filePath)
	defer unlock()

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, s.opts.DirMode); err != nil {
		return nil, failure.New(failure.DirectoryAccess, dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".rebuild-*")
	if err != nil {
		return nil, failure.New(failure.Write, filePath, err)
	}
	tempName := tempFile.Name()

	written, err := copyWithContext(ctx, tempFile, body)
	if err == nil {
		err = tempFile.Chmod(s.opts.FileMode)
	}
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempName)
		return nil, failure.New(failure.Write, filePath, err)
	}

	if err := os.Rename(tempName, filePath); err != nil {
		os.Remove(tempName)
		return nil, failure.New(failure.Write, filePath, err)
	}

	modTime := opts.ModTime
	if modTime.IsZero() {
		modTime = time.Now().UTC()
	}
	if err := os.Chtimes(filePath, modTime, modTime); err != nil {
		return nil, failure.New(failure.Write, filePath, err)
	}

	return &Written{
		URL:       rawURL,
		FilePath:  filePath,
		SizeBytes: written,
		ModTime:   modTime,
	}, nil
}

func (s *fileStore) lockEntry(key string) func() {
	s.mu.Lock()
	lock := s.locks[key]
	if lock == nil {
		lock = &entryLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

// ResolvePath 取 rawURL 解码后的路径部分，清理 ".." 后拼接到 root 下。
// scheme、host、端口、query 与 fragment 全部丢弃。
func ResolvePath(root, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", failure.NewField(failure.InvalidField, rawURL, "url", err)
	}

	rel := strings.TrimPrefix(path.Clean("/"+u.Path), "/")
	if rel == "" {
		return "", failure.NewField(failure.InvalidField, rawURL, "url", errors.New("url has no file path"))
	}

	filePath := filepath.Join(root, filepath.FromSlash(rel))
	if within, err := filepath.Rel(root, filePath); err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", failure.NewField(failure.InvalidField, rawURL, "url", errors.New("path escapes repository root"))
	}
	return filePath, nil
}

func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var copied int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		n, err := src.Read(buf)
		if n > 0 {
			w, wErr := dst.Write(buf[:n])
			copied += int64(w)
			if wErr != nil {
				return copied, wErr
			}
			if w < n {
				return copied, io.ErrShortWrite
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return copied, nil
			}
			return copied, err
		}
	}
}
