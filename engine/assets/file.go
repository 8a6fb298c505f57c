package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/hack-pad/hackpadfs"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

// File is an opened, fully buffered asset file. Loaders may read it any
// number of times; each Reader starts at offset 0.
type File struct {
	name string
	data []byte
}

// NewFile wraps content that was already read, e.g. an archive entry.
func NewFile(name string, data []byte) *File {
	return &File{name: name, data: data}
}

func (f *File) Name() string {
	return f.name
}

func (f *File) Size() int {
	return len(f.data)
}

func (f *File) Bytes() []byte {
	return f.data
}

func (f *File) Reader() *bytes.Reader {
	return bytes.NewReader(f.data)
}

// Header returns up to n leading bytes.
func (f *File) Header(n int) []byte {
	if n > len(f.data) {
		n = len(f.data)
	}
	return f.data[:n]
}

// Extension returns the lowercase substring after the final '.', or "" when
// the name has none.
func Extension(name string) string {
	base := path.Base(name)
	ix := strings.LastIndexByte(base, '.')
	if ix < 0 {
		return ""
	}
	return strings.ToLower(base[ix+1:])
}

// RelativeTo resolves a reference found inside f against f's directory.
// Absolute references are returned cleaned.
func RelativeTo(f *File, ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	if f == nil || path.IsAbs(ref) {
		return path.Clean(ref)
	}
	return path.Join(path.Dir(f.Name()), ref)
}

// WriteFile is the destination handed to writers.
type WriteFile struct {
	name   string
	w      io.Writer
	closer io.Closer
}

// NewWriteFile wraps a caller-provided destination.
func NewWriteFile(name string, w io.Writer) *WriteFile {
	return &WriteFile{name: name, w: w}
}

func (f *WriteFile) Name() string {
	return f.name
}

func (f *WriteFile) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *WriteFile) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// ReadFile opens name on fsys and buffers its content.
func ReadFile(fsys hackpadfs.FS, name string) (*File, error) {
	fl, err := hackpadfs.OpenFile(fsys, name, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer fl.Close()

	info, err := fl.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &hackpadfs.PathError{Op: "read", Path: name, Err: hackpadfs.ErrIsDir}
	}
	data, err := io.ReadAll(fl)
	if err != nil {
		return nil, err
	}
	return NewFile(name, data), nil
}

// CreateFile creates or truncates name on fsys, creating parent directories.
func CreateFile(fsys hackpadfs.FS, name string) (*WriteFile, error) {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := hackpadfs.MkdirAll(fsys, dir, 0o755); err != nil {
			return nil, err
		}
	}
	fl, err := hackpadfs.OpenFile(fsys, name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	w, ok := fl.(io.Writer)
	if !ok {
		fl.Close()
		return nil, &hackpadfs.PathError{Op: "write", Path: name, Err: hackpadfs.ErrNotImplemented}
	}
	return &WriteFile{name: name, w: w, closer: fl}, nil
}

// FileExists reports whether name exists on fsys and is not a directory.
func FileExists(fsys hackpadfs.FS, name string) bool {
	info, err := hackpadfs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}

// classifyOpenError maps filesystem errors onto the asset error taxonomy.
func classifyOpenError(err error) error {
	if errors.Is(err, hackpadfs.ErrNotExist) {
		return fmt.Errorf("%w: %v", core.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", core.ErrIO, err)
}
