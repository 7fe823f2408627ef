// Package polipo reads the on-disk cache of the Polipo proxy. Files walks a
// cache directory and yields every regular file; ReadEntry parses one cache
// file into the original URL, the best available timestamp and the raw body
// found at the byte offset the header block declares.
package polipo
