package polipo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/any-hub/polipo-rebuild/internal/failure"
)

// Entry 是解析后的单个缓存条目，仅在处理当前文件期间存在。
type Entry struct {
	Path      string
	URL       string
	Timestamp time.Time
	Body      []byte
}

// ReadOptions 控制条目解析的可选行为。
type ReadOptions struct {
	// Location 非空时，时间戳的墙上时间按该时区重新解释。
	Location *time.Location
}

// ReadEntry 读取并解析一个缓存文件。
func ReadEntry(path string, opts ReadOptions) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, failure.New(failure.DirectoryAccess, path, err)
	}
	defer f.Close()

	headers, err := ReadHeaders(f)
	if err != nil {
		var fe *failure.Error
		if errors.As(err, &fe) {
			fe.Path = path
			return nil, fe
		}
		return nil, failure.New(failure.DirectoryAccess, path, err)
	}

	offset, err := headers.Int(HeaderBodyOffset, 0)
	if err != nil {
		return nil, failure.NewField(failure.InvalidField, path, HeaderBodyOffset, err)
	}
	if offset < 0 {
		return nil, failure.NewField(failure.InvalidField, path, HeaderBodyOffset, fmt.Errorf("negative offset %d", offset))
	}

	// 偏移量是文件内的绝对位置，与扫描头部时消耗的字节数无关。
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, failure.NewField(failure.InvalidField, path, HeaderBodyOffset, err)
	}
	body, err := io.ReadAll(f)
	if err != nil {
		return nil, failure.New(failure.DirectoryAccess, path, err)
	}

	location, ok := headers.Lookup(HeaderLocation)
	if !ok || location == "" {
		return nil, failure.NewField(failure.MissingField, path, HeaderLocation, nil)
	}

	field := HeaderAccess
	raw, ok := headers.Lookup(HeaderAccess)
	if !ok {
		field = HeaderDate
		raw, ok = headers.Lookup(HeaderDate)
	}
	if !ok {
		return nil, failure.NewField(failure.MissingField, path, HeaderAccess+"/"+HeaderDate, nil)
	}

	ts, err := ParseTimestamp(raw, opts.Location)
	if err != nil {
		return nil, failure.NewField(failure.TimestampParse, path, field, err)
	}

	return &Entry{
		Path:      path,
		URL:       location,
		Timestamp: ts,
		Body:      body,
	}, nil
}

// ReadHeaders 逐行读取头部直到第一个空行或 EOF。调用方不能假定 r 的位置停在正文开头。
func ReadHeaders(r io.Reader) (Headers, error) {
	headers := Headers{}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if !utf8.Valid(line) {
				return nil, failure.New(failure.Decode, "", errors.New("header line is not valid utf-8"))
			}
			trimmed := bytes.TrimSpace(line)
			if len(trimmed) == 0 {
				return headers, nil
			}
			headers.Set(string(trimmed))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return headers, nil
			}
			return nil, err
		}
	}
}
