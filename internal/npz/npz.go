// Paperatlas - Conference Paper Embedding Explorer
// Copyright 2026 Paperatlas Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/paperatlas/paperatlas

// Package npz reads NumPy .npz archives.
//
// An .npz file is a ZIP container whose entries are .npy arrays. This package
// supports the subset of the NPY format the embedding pipeline produces:
// little-endian float32/float64 matrices and fixed-width string arrays (both
// '|S' byte strings and '<U' UTF-32 strings, as produced for id arrays).
package npz

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// npy format: magic, one version byte pair, header length, then a Python
// dict literal describing dtype, memory order and shape.
var npyMagic = []byte("\x93NUMPY")

// Archive provides access to the named arrays in an .npz file.
type Archive struct {
	reader  *zip.ReadCloser
	entries map[string]*zip.File
}

// Open opens the .npz archive at path.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open npz %s: %w", path, err)
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[strings.TrimSuffix(f.Name, ".npy")] = f
	}

	return &Archive{reader: zr, entries: entries}, nil
}

// Close releases the underlying file handle.
func (a *Archive) Close() error {
	return a.reader.Close()
}

// Has reports whether the archive contains an array with the given name.
func (a *Archive) Has(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// Names returns the array names present in the archive.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	return names
}

// header is the parsed NPY preamble of one array.
type header struct {
	descr        string
	fortranOrder bool
	shape        []int
}

func (h header) elems() int {
	n := 1
	for _, d := range h.shape {
		n *= d
	}
	return n
}

// Strings reads a one-dimensional string array. Both byte strings ('|S') and
// UTF-32 strings ('<U') are decoded to Go strings with trailing NULs trimmed.
func (a *Archive) Strings(name string) ([]string, error) {
	h, data, err := a.load(name)
	if err != nil {
		return nil, err
	}
	if len(h.shape) != 1 {
		return nil, fmt.Errorf("npz array %q: expected 1-D string array, got shape %v", name, h.shape)
	}

	kind, width, err := splitDescr(h.descr)
	if err != nil {
		return nil, fmt.Errorf("npz array %q: %w", name, err)
	}

	out := make([]string, h.shape[0])
	switch kind {
	case "|S", "S":
		if len(data) < h.shape[0]*width {
			return nil, fmt.Errorf("npz array %q: truncated data", name)
		}
		for i := range out {
			elem := data[i*width : (i+1)*width]
			out[i] = string(trimNul(elem))
		}
	case "<U", "U":
		// UTF-32 little-endian, `width` code points per element.
		if len(data) < h.shape[0]*width*4 {
			return nil, fmt.Errorf("npz array %q: truncated data", name)
		}
		for i := range out {
			var sb strings.Builder
			for j := 0; j < width; j++ {
				r := binary.LittleEndian.Uint32(data[(i*width+j)*4:])
				if r == 0 {
					break
				}
				sb.WriteRune(rune(r))
			}
			out[i] = sb.String()
		}
	default:
		return nil, fmt.Errorf("npz array %q: unsupported string dtype %q", name, h.descr)
	}
	return out, nil
}

// Matrix reads a two-dimensional float array as row-major [][]float64.
func (a *Archive) Matrix(name string) ([][]float64, error) {
	h, data, err := a.load(name)
	if err != nil {
		return nil, err
	}
	if len(h.shape) != 2 {
		return nil, fmt.Errorf("npz array %q: expected 2-D float array, got shape %v", name, h.shape)
	}
	if h.fortranOrder {
		return nil, fmt.Errorf("npz array %q: fortran-ordered arrays are not supported", name)
	}

	rows, cols := h.shape[0], h.shape[1]
	out := make([][]float64, rows)

	switch h.descr {
	case "<f4":
		if len(data) < rows*cols*4 {
			return nil, fmt.Errorf("npz array %q: truncated data", name)
		}
		for i := 0; i < rows; i++ {
			row := make([]float64, cols)
			for j := 0; j < cols; j++ {
				bits := binary.LittleEndian.Uint32(data[(i*cols+j)*4:])
				row[j] = float64(math.Float32frombits(bits))
			}
			out[i] = row
		}
	case "<f8":
		if len(data) < rows*cols*8 {
			return nil, fmt.Errorf("npz array %q: truncated data", name)
		}
		for i := 0; i < rows; i++ {
			row := make([]float64, cols)
			for j := 0; j < cols; j++ {
				bits := binary.LittleEndian.Uint64(data[(i*cols+j)*8:])
				row[j] = math.Float64frombits(bits)
			}
			out[i] = row
		}
	default:
		return nil, fmt.Errorf("npz array %q: unsupported float dtype %q", name, h.descr)
	}
	return out, nil
}

// load reads and parses one entry: header plus raw data bytes.
func (a *Archive) load(name string) (header, []byte, error) {
	f, ok := a.entries[name]
	if !ok {
		return header{}, nil, fmt.Errorf("npz: array %q not found", name)
	}

	rc, err := f.Open()
	if err != nil {
		return header{}, nil, fmt.Errorf("npz array %q: %w", name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return header{}, nil, fmt.Errorf("npz array %q: %w", name, err)
	}

	h, body, err := parseNPY(raw)
	if err != nil {
		return header{}, nil, fmt.Errorf("npz array %q: %w", name, err)
	}
	return h, body, nil
}

// parseNPY splits a raw .npy payload into its parsed header and data bytes.
func parseNPY(raw []byte) (header, []byte, error) {
	if len(raw) < len(npyMagic)+4 || string(raw[:len(npyMagic)]) != string(npyMagic) {
		return header{}, nil, fmt.Errorf("not an npy payload")
	}

	major := raw[6]
	offset := 8
	var headerLen int
	switch major {
	case 1:
		if len(raw) < offset+2 {
			return header{}, nil, fmt.Errorf("truncated npy header")
		}
		headerLen = int(binary.LittleEndian.Uint16(raw[offset:]))
		offset += 2
	case 2, 3:
		if len(raw) < offset+4 {
			return header{}, nil, fmt.Errorf("truncated npy header")
		}
		headerLen = int(binary.LittleEndian.Uint32(raw[offset:]))
		offset += 4
	default:
		return header{}, nil, fmt.Errorf("unsupported npy version %d", major)
	}

	if len(raw) < offset+headerLen {
		return header{}, nil, fmt.Errorf("truncated npy header")
	}

	h, err := parseHeaderDict(string(raw[offset : offset+headerLen]))
	if err != nil {
		return header{}, nil, err
	}
	return h, raw[offset+headerLen:], nil
}

// parseHeaderDict parses the Python dict literal in an npy header, e.g.
//
//	{'descr': '<f4', 'fortran_order': False, 'shape': (3, 768), }
func parseHeaderDict(s string) (header, error) {
	var h header

	descr, err := extractQuoted(s, "descr")
	if err != nil {
		return h, err
	}
	h.descr = descr

	h.fortranOrder = strings.Contains(afterKey(s, "fortran_order"), "True")

	shapeRaw := afterKey(s, "shape")
	open := strings.IndexByte(shapeRaw, '(')
	closing := strings.IndexByte(shapeRaw, ')')
	if open < 0 || closing < open {
		return h, fmt.Errorf("malformed npy shape in header %q", s)
	}
	for _, part := range strings.Split(shapeRaw[open+1:closing], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, err := strconv.Atoi(part)
		if err != nil {
			return h, fmt.Errorf("malformed npy shape dimension %q", part)
		}
		h.shape = append(h.shape, dim)
	}
	return h, nil
}

// afterKey returns the header substring following 'key':.
func afterKey(s, key string) string {
	idx := strings.Index(s, "'"+key+"'")
	if idx < 0 {
		return ""
	}
	return s[idx+len(key)+2:]
}

// extractQuoted returns the quoted value for a header key.
func extractQuoted(s, key string) (string, error) {
	rest := afterKey(s, key)
	start := strings.IndexByte(rest, '\'')
	if start < 0 {
		return "", fmt.Errorf("npy header missing %q", key)
	}
	end := strings.IndexByte(rest[start+1:], '\'')
	if end < 0 {
		return "", fmt.Errorf("npy header missing %q", key)
	}
	return rest[start+1 : start+1+end], nil
}

// splitDescr splits a string dtype like '|S7' or '<U12' into kind and width.
func splitDescr(descr string) (kind string, width int, err error) {
	i := 0
	for i < len(descr) && (descr[i] < '0' || descr[i] > '9') {
		i++
	}
	if i == len(descr) {
		return "", 0, fmt.Errorf("unsupported dtype %q", descr)
	}
	width, err = strconv.Atoi(descr[i:])
	if err != nil {
		return "", 0, fmt.Errorf("unsupported dtype %q", descr)
	}
	return descr[:i], width, nil
}

// trimNul trims trailing NUL padding from a fixed-width byte string.
func trimNul(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
