/*
 * fileio.go, part of gocontacts.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package fileio opens and creates files, transparently (de)compressing them
//according to their extension: .gz (gzip), .zst or .zstd (z-standard),
//.flate (raw deflate) and .lzw. Any other extension means an uncompressed file.
package fileio

import (
	"bufio"
	"compress/lzw"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

//Compression returns the compression format deduced from the extension of name:
//"gz", "zst", "flate", "lzw" or the empty string for uncompressed files.
func Compression(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return "gz"
	case ".zst", ".zstd":
		return "zst"
	case ".flate":
		return "flate"
	case ".lzw":
		return "lzw"
	}
	return ""
}

//Base returns name without its compression extension, if any.
func Base(name string) string {
	if Compression(name) == "" {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

//readCloser closes both the decompressor and the underlying file.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	r.closers = nil
	return err
}

//Open opens the file name for reading, decompressing it, if needed, according to its extension.
//The returned ReadCloser closes the file.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	ret, err := NewReader(f, Compression(name))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ret, nil
}

//NewReader returns a ReadCloser that decompresses data read from f, which is closed when the
//ReadCloser is closed. compression is one of the strings returned by Compression.
func NewReader(f io.ReadCloser, compression string) (io.ReadCloser, error) {
	buf := bufio.NewReader(f)
	switch compression {
	case "":
		return &readCloser{buf, []func() error{f.Close}}, nil
	case "gz":
		r, err := gzip.NewReader(buf)
		if err != nil {
			return nil, err
		}
		return &readCloser{r, []func() error{r.Close, f.Close}}, nil
	case "zst":
		r, err := zstd.NewReader(buf)
		if err != nil {
			return nil, err
		}
		//*zstd.Decoder's Close doesn't return an error.
		zclose := func() error { r.Close(); return nil }
		return &readCloser{r, []func() error{zclose, f.Close}}, nil
	case "flate":
		r := flate.NewReader(buf)
		return &readCloser{r, []func() error{r.Close, f.Close}}, nil
	case "lzw":
		r := lzw.NewReader(buf, lzwOrder, lzwLitwidth)
		return &readCloser{r, []func() error{r.Close, f.Close}}, nil
	}
	return nil, fmt.Errorf("compression format %q not supported", compression)
}

//Flusher is implemented by the WriteClosers returned by Create and NewWriter. Flush pushes the
//data written so far to the file. LZW streams can keep a few bits in the compressor until closed.
type Flusher interface {
	Flush() error
}

//writeCloser flushes and closes, in order, the compressor, the buffer and the file.
type writeCloser struct {
	io.Writer
	flushers []func() error
	closers  []func() error
}

//Flush flushes the compressor, if it supports it, and the buffer.
func (w *writeCloser) Flush() error {
	if w.closers == nil {
		return fmt.Errorf("flush after close")
	}
	for _, f := range w.flushers {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func (w *writeCloser) Close() error {
	var err error
	for _, c := range w.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	w.closers = nil
	return err
}

//Create creates the file name, which will be compressed according to its extension.
//Closing the returned WriteCloser flushes all the data and closes the file.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	ret, err := NewWriter(f, Compression(name))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ret, nil
}

//NewWriter returns a WriteCloser that compresses the data written into f, which is closed when
//the WriteCloser is closed. compression is one of the strings returned by Compression.
func NewWriter(f io.WriteCloser, compression string) (io.WriteCloser, error) {
	buf := bufio.NewWriter(f)
	var comp io.WriteCloser
	var err error
	switch compression {
	case "":
		return &writeCloser{buf, []func() error{buf.Flush}, []func() error{buf.Flush, f.Close}}, nil
	case "gz":
		comp = gzip.NewWriter(buf)
	case "zst":
		comp, err = zstd.NewWriter(buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	case "flate":
		comp, err = flate.NewWriter(buf, flate.DefaultCompression)
	case "lzw":
		comp = lzw.NewWriter(buf, lzwOrder, lzwLitwidth)
	default:
		return nil, fmt.Errorf("compression format %q not supported", compression)
	}
	if err != nil {
		return nil, err
	}
	flushers := []func() error{buf.Flush}
	if fl, ok := comp.(Flusher); ok {
		flushers = []func() error{fl.Flush, buf.Flush}
	}
	return &writeCloser{comp, flushers, []func() error{comp.Close, buf.Flush, f.Close}}, nil
}
