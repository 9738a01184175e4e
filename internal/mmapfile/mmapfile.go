// Package mmapfile memory-maps a trace file read-only so packets can
// address their bytes without a copy (spec §4.1's MemoryMap collaborator).
package mmapfile

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// File is a read-only memory-mapped file. It satisfies the engine's
// MemoryMap interface (Bytes() []byte) without importing the engine
// package, keeping the syscall-level code isolated the way the teacher
// isolates its storage backends under their own packages.
type File struct {
	f    *os.File
	data []byte
}

// Open memory-maps path read-only for its entire length.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %s", path)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "error statting %s", path)
	}

	size := fi.Size()
	if size == 0 {
		f.Close()
		return nil, errors.Errorf("cannot memory-map empty file %s", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "error mmapping %s", path)
	}

	return &File{f: f, data: data}, nil
}

// Bytes returns the whole mapped region.
func (m *File) Bytes() []byte {
	return m.data
}

// Close unmaps the region and closes the underlying file.
func (m *File) Close() error {
	if m.data != nil {
		if err := unix.Munmap(m.data); err != nil {
			return errors.Wrap(err, "error munmapping file")
		}

		m.data = nil
	}

	return errors.Wrap(m.f.Close(), "error closing mmapped file")
}
