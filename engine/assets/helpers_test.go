package assets

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-assets/engine/core"
)

func init() {
	core.SetLogOutput(io.Discard)
}

type stubAsset struct {
	Base
	typ     Type
	payload []byte
}

func (s *stubAsset) Type() Type { return s.typ }

func (s *stubAsset) ConvertToDummy() {
	s.releasePayload(func() {
		s.payload = nil
	})
}

// stubLoader claims files starting with magic and produces one stubAsset of
// its first supported type. Lines of the form "ref:<path>" are loaded as
// nested assets one level down.
type stubLoader struct {
	exts  []string
	types Type
	magic string
	fail  bool
	delay time.Duration
	calls atomic.Int32

	nested []Bundle
}

func (l *stubLoader) Extensions() []string { return l.exts }
func (l *stubLoader) SupportedTypes() Type { return l.types }

func (l *stubLoader) IsLoadable(f *File) bool {
	return bytes.HasPrefix(f.Bytes(), []byte(l.magic))
}

func (l *stubLoader) LoadAsset(f *File, ctx *LoadContext, hierarchyLevel uint32) (Bundle, error) {
	l.calls.Add(1)
	time.Sleep(l.delay)
	if l.fail {
		return Bundle{}, errors.New("stub failure")
	}
	for _, line := range strings.Split(string(f.Bytes()), "\n") {
		if ref, ok := strings.CutPrefix(line, "ref:"); ok {
			l.nested = append(l.nested, ctx.LoadDependency(ref, hierarchyLevel+1))
		}
	}
	var typ Type
	l.types.Each(func(t Type) {
		if typ == 0 {
			typ = t
		}
	})
	return NewBundle(&stubAsset{typ: typ, payload: f.Bytes()}), nil
}

type stubGPUObject struct {
	id core.Identifier
}

func (g *stubGPUObject) GPUHandle() core.Identifier { return g.id }

func newStubGPUObject() *stubGPUObject {
	return &stubGPUObject{id: core.NewIdentifier()}
}

type stubWriter struct {
	exts    []string
	types   Type
	content string
	fail    bool
	calls   atomic.Int32
}

func (w *stubWriter) Extensions() []string { return w.exts }
func (w *stubWriter) SupportedTypes() Type { return w.types }

func (w *stubWriter) WriteAsset(f *WriteFile, ctx *WriteContext) error {
	w.calls.Add(1)
	if _, err := io.WriteString(f, w.content); err != nil {
		return err
	}
	if w.fail {
		return errors.New("stub writer failure")
	}
	return nil
}

func newMemFS(t *testing.T, files map[string]string) hackpadfs.FS {
	t.Helper()
	fsys, err := mem.NewFS()
	require.NoError(t, err)
	for name, content := range files {
		f, err := CreateFile(fsys, name)
		require.NoError(t, err)
		_, err = io.WriteString(f, content)
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	return fsys
}

func newTestManager(t *testing.T, files map[string]string, opts ...Option) *Manager {
	t.Helper()
	m, err := NewManager(append([]Option{WithFileSystem(newMemFS(t, files))}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func readAll(t *testing.T, m *Manager, name string) string {
	t.Helper()
	f, err := m.OpenFile(name)
	require.NoError(t, err)
	return string(f.Bytes())
}
