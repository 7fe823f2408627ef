// Package repo writes recovered response bodies back into a repository tree.
// The destination of each body is the path component of its original URL,
// joined under the repository root so that a cached
// http://mirror/pkg/file.tar.gz becomes <root>/pkg/file.tar.gz. Writes go
// through a temp file + rename and finish by stamping the cached timestamp on
// the file, so a crash never leaves a truncated file behind.
package repo
