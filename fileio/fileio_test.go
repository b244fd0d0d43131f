/*
 * fileio_test.go, part of gocontacts.
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

package fileio

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	text := strings.Repeat("frame\tresidue_i\tresidue_j\n0\tA:ASP:114\tA:LYS:120\n", 200)
	for _, ext := range []string{".tsv", ".tsv.gz", ".tsv.zst", ".tsv.flate", ".tsv.lzw"} {
		name := filepath.Join(dir, "out"+ext)
		w, err := Create(name)
		if err != nil {
			Te.Fatal(err)
		}
		if _, err := io.WriteString(w, text); err != nil {
			Te.Fatal(err)
		}
		if err := w.Close(); err != nil {
			Te.Fatal(err)
		}
		r, err := Open(name)
		if err != nil {
			Te.Fatal(err)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			Te.Fatalf("%s: %v", ext, err)
		}
		r.Close()
		if string(b) != text {
			Te.Errorf("%s: read text differs from written one", ext)
		}
	}
}

//Data flushed must be readable from the file before the writer is closed.
func TestFlush(Te *testing.T) {
	dir := Te.TempDir()
	text := "frame\tresidue_i\n0\tA:ASP:114\n"
	for _, ext := range []string{".tsv", ".tsv.gz", ".tsv.zst", ".tsv.flate"} {
		name := filepath.Join(dir, "flush"+ext)
		w, err := Create(name)
		if err != nil {
			Te.Fatal(err)
		}
		io.WriteString(w, text)
		if err := w.(Flusher).Flush(); err != nil {
			Te.Fatalf("%s: %v", ext, err)
		}
		st, err := os.Stat(name)
		if err != nil {
			Te.Fatal(err)
		}
		if st.Size() == 0 {
			Te.Errorf("%s: nothing in the file after Flush", ext)
		}
		if err := w.Close(); err != nil {
			Te.Fatal(err)
		}
		if err := w.(Flusher).Flush(); err == nil {
			Te.Errorf("%s: Flush after Close should fail", ext)
		}
	}
}

func TestCompression(Te *testing.T) {
	cases := map[string]string{
		"traj.dcd":      "",
		"traj.dcd.gz":   "gz",
		"traj.DCD.ZST":  "zst",
		"traj.dcd.zstd": "zst",
		"out.lzw":       "lzw",
		"out.flate":     "flate",
	}
	for name, want := range cases {
		if got := Compression(name); got != want {
			Te.Errorf("Compression(%q)=%q, expected %q", name, got, want)
		}
	}
	if b := Base("traj.dcd.gz"); b != "traj.dcd" {
		Te.Errorf("Unexpected base %s", b)
	}
}

func TestOpenMissing(Te *testing.T) {
	if _, err := Open(filepath.Join(Te.TempDir(), "nothere.gz")); err == nil {
		Te.Error("Expected an error for a missing file")
	}
}
