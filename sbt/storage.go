// Copyright © 2018-2020 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package sbt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Storage addresses node/leaf payloads by opaque path, independent of
// whether the backing medium is a directory, a zip file, or an object
// store. FSStorage is the only concrete backend implemented directly;
// additional backends plug in by implementing the same three methods.
type Storage interface {
	// Load reads the full contents stored at path.
	Load(path string) ([]byte, error)
	// Save writes data to path, creating parent directories as needed.
	Save(path string, data []byte) error
	// Close releases any open handles (mapped files, archive readers).
	Close() error
}

// FSStorage stores every node/leaf payload as its own file under a root
// directory, memory-mapping large reads the way the teacher's index
// loader maps its `.unikidx` signature blobs instead of copying them
// into the Go heap.
type FSStorage struct {
	root    string
	mapped  map[string]mmap.MMap
	mmapMin int64 // files at or above this size are mmap'd rather than read
}

// NewFSStorage opens (creating if absent) a directory-backed Storage
// rooted at dir. Files of mmapMinBytes or larger are memory-mapped on
// Load; smaller files are read directly, since mapping has fixed
// per-file overhead that isn't worth paying for a handful of bloom
// filter bytes.
func NewFSStorage(dir string, mmapMinBytes int64) (*FSStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "sbt: creating storage directory")
	}
	return &FSStorage{root: dir, mapped: make(map[string]mmap.MMap), mmapMin: mmapMinBytes}, nil
}

func (s *FSStorage) fullPath(path string) string {
	return filepath.Join(s.root, path)
}

func (s *FSStorage) Load(path string) ([]byte, error) {
	full := s.fullPath(path)
	info, err := os.Stat(full)
	if err != nil {
		return nil, errors.Wrapf(err, "sbt: stat %s", path)
	}
	if info.Size() < s.mmapMin {
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, errors.Wrapf(err, "sbt: reading %s", path)
		}
		return data, nil
	}

	fh, err := os.Open(full)
	if err != nil {
		return nil, errors.Wrapf(err, "sbt: opening %s", path)
	}
	defer fh.Close()
	m, err := mmap.Map(fh, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "sbt: mmapping %s", path)
	}
	s.mapped[path] = m
	out := make([]byte, len(m))
	copy(out, m)
	return out, nil
}

func (s *FSStorage) Save(path string, data []byte) error {
	full := s.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrapf(err, "sbt: creating parent dir for %s", path)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return errors.Wrapf(err, "sbt: writing %s", path)
	}
	return nil
}

func (s *FSStorage) Close() error {
	var firstErr error
	for path, m := range s.mapped {
		if err := m.Unmap(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("sbt: unmapping %s: %w", path, err)
		}
	}
	s.mapped = make(map[string]mmap.MMap)
	return firstErr
}
