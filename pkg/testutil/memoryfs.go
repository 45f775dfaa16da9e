package testutil

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryFS implements types.FS with in-memory storage. It supports
// per-operation error injection so tests can exercise failure paths
// deterministically.
type MemoryFS struct {
	mu    sync.RWMutex
	nodes map[string]*memNode

	// Error injection, keyed "op:path" or "op:*".
	errs map[string]error

	// Statistics
	readCount  int
	writeCount int
}

// memNode represents a file or directory in memory
type memNode struct {
	mode    fs.FileMode
	modTime time.Time
	data    []byte
	dir     bool
}

// NewMemoryFS creates a new in-memory filesystem with a root directory.
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*memNode{
			"/": {mode: 0755 | fs.ModeDir, modTime: time.Now(), dir: true},
		},
		errs: make(map[string]error),
	}
}

// InjectError makes the given operation fail for path. Path "*" makes
// every call of that operation fail. Operations: stat, read, write,
// mkdir, readdir, remove, removeall, rename.
func (m *MemoryFS) InjectError(op, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op+":"+path] = err
}

// ClearErrors removes all injected errors.
func (m *MemoryFS) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = make(map[string]error)
}

// ReadCount returns the number of successful ReadFile calls.
func (m *MemoryFS) ReadCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCount
}

// WriteCount returns the number of successful WriteFile calls.
func (m *MemoryFS) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writeCount
}

func (m *MemoryFS) injected(op, path string) error {
	if err, ok := m.errs[op+":"+path]; ok {
		return err
	}
	if err, ok := m.errs[op+":*"]; ok {
		return err
	}
	return nil
}

func norm(path string) string {
	if !filepath.IsAbs(path) {
		path = "/" + path
	}
	return filepath.Clean(path)
}

func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name = norm(name)
	if err := m.injected("stat", name); err != nil {
		return nil, err
	}
	node, ok := m.nodes[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &memInfo{name: filepath.Base(name), node: node}, nil
}

func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = norm(name)
	if err := m.injected("read", name); err != nil {
		return nil, err
	}
	node, ok := m.nodes[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if node.dir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}
	}
	m.readCount++
	out := make([]byte, len(node.data))
	copy(out, node.data)
	return out, nil
}

func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = norm(name)
	if err := m.injected("write", name); err != nil {
		return err
	}
	parent, ok := m.nodes[filepath.Dir(name)]
	if !ok || !parent.dir {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.nodes[name] = &memNode{mode: perm, modTime: time.Now(), data: stored}
	m.writeCount++
	return nil
}

func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = norm(path)
	if err := m.injected("mkdir", path); err != nil {
		return err
	}
	cur := "/"
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part == "" {
			continue
		}
		cur = filepath.Join(cur, part)
		if node, ok := m.nodes[cur]; ok {
			if !node.dir {
				return &fs.PathError{Op: "mkdir", Path: cur, Err: fs.ErrExist}
			}
			continue
		}
		m.nodes[cur] = &memNode{mode: perm | fs.ModeDir, modTime: time.Now(), dir: true}
	}
	return nil
}

func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name = norm(name)
	if err := m.injected("readdir", name); err != nil {
		return nil, err
	}
	node, ok := m.nodes[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if !node.dir {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	var entries []fs.DirEntry
	for path, child := range m.nodes {
		if path != name && filepath.Dir(path) == name {
			entries = append(entries, &memEntry{name: filepath.Base(path), node: child})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = norm(name)
	if err := m.injected("remove", name); err != nil {
		return err
	}
	node, ok := m.nodes[name]
	if !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	if node.dir {
		for path := range m.nodes {
			if path != name && strings.HasPrefix(path, name+"/") {
				return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrInvalid}
			}
		}
	}
	delete(m.nodes, name)
	return nil
}

func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = norm(path)
	if err := m.injected("removeall", path); err != nil {
		return err
	}
	for p := range m.nodes {
		if p == path || strings.HasPrefix(p, path+"/") {
			delete(m.nodes, p)
		}
	}
	return nil
}

func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldpath, newpath = norm(oldpath), norm(newpath)
	if err := m.injected("rename", oldpath); err != nil {
		return err
	}
	if _, ok := m.nodes[oldpath]; !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	moved := make(map[string]*memNode)
	for p, node := range m.nodes {
		if p == oldpath {
			moved[newpath] = node
			delete(m.nodes, p)
		} else if strings.HasPrefix(p, oldpath+"/") {
			moved[newpath+strings.TrimPrefix(p, oldpath)] = node
			delete(m.nodes, p)
		}
	}
	for p, node := range moved {
		m.nodes[p] = node
	}
	return nil
}

// memInfo adapts a memNode to fs.FileInfo
type memInfo struct {
	name string
	node *memNode
}

func (i *memInfo) Name() string       { return i.name }
func (i *memInfo) Size() int64        { return int64(len(i.node.data)) }
func (i *memInfo) Mode() fs.FileMode  { return i.node.mode }
func (i *memInfo) ModTime() time.Time { return i.node.modTime }
func (i *memInfo) IsDir() bool        { return i.node.dir }
func (i *memInfo) Sys() interface{}   { return nil }

// memEntry adapts a memNode to fs.DirEntry
type memEntry struct {
	name string
	node *memNode
}

func (e *memEntry) Name() string      { return e.name }
func (e *memEntry) IsDir() bool       { return e.node.dir }
func (e *memEntry) Type() fs.FileMode { return e.node.mode.Type() }
func (e *memEntry) Info() (fs.FileInfo, error) {
	return &memInfo{name: e.name, node: e.node}, nil
}
