package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// useBufferWriters swaps stdOut/stdErr with in-memory buffers for the duration
// of a test, allowing assertions on CLI output without polluting test logs.
func useBufferWriters(t *testing.T) {
	t.Helper()

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	prevOut := stdOut
	prevErr := stdErr

	stdOut = outBuf
	stdErr = errBuf

	t.Cleanup(func() {
		stdOut = prevOut
		stdErr = prevErr
	})
}

// stdOutBuffer returns the in-use stdout buffer when useBufferWriters is active.
func stdOutBuffer() *bytes.Buffer {
	buf, _ := stdOut.(*bytes.Buffer)
	return buf
}

// stdErrBuffer returns the in-use stderr buffer when useBufferWriters is active.
func stdErrBuffer() *bytes.Buffer {
	buf, _ := stdErr.(*bytes.Buffer)
	return buf
}

// quietLogs keeps the JSON logger out of the test output.
func quietLogs(t *testing.T) {
	t.Helper()
	t.Setenv("POLIPO_REBUILD_LOGLEVEL", "panic")
}

// writeCacheFixture writes a Polipo cache entry whose body starts right after
// the header block, at the offset the header declares.
func writeCacheFixture(t *testing.T, dir, name string, headers []string, body string) string {
	t.Helper()

	build := func(offset int) string {
		var buf bytes.Buffer
		for _, h := range headers {
			buf.WriteString(h)
			buf.WriteString("\r\n")
		}
		fmt.Fprintf(&buf, "X-Polipo-Body-Offset: %06d\r\n\r\n", offset)
		return buf.String()
	}
	content := build(len(build(0))) + body

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建缓存目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入缓存文件失败: %v", err)
	}
	return path
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return file
}
