package testsupport

import (
	"context"
	"fmt"
	"sync"

	"logmirror/internal/remote"
)

// ReadCall records one ReadPortion request and the marker it returned.
type ReadCall struct {
	Marker remote.Marker
	Next   remote.Marker
	Bytes  int
}

type fakeFile struct {
	name        string
	data        []byte
	lastWritten int64
}

// FakeSource is a scriptable in-memory remote.Source. Markers are opaque
// tokens issued per response; an unknown marker is rejected.
type FakeSource struct {
	// ChunkSize caps the bytes returned per portion. Zero means 8.
	ChunkSize int
	// ListHook, when set, runs at the start of every ListLogFiles call. A
	// non-nil error is returned to the caller.
	ListHook func(ctx context.Context, instance string) error

	mu        sync.Mutex
	files     map[string][]*fakeFile
	instances []remote.Instance
	tokens    map[remote.Marker]int
	nextToken int
	listErrs  map[string][]error
	readErrs  map[string][]error
	calls     map[string][]ReadCall
	lists     map[string]int
	cutoffs   map[string][]int64
}

// NewFakeSource returns an empty source.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		files:    make(map[string][]*fakeFile),
		tokens:   make(map[remote.Marker]int),
		listErrs: make(map[string][]error),
		readErrs: make(map[string][]error),
		calls:    make(map[string][]ReadCall),
		lists:    make(map[string]int),
		cutoffs:  make(map[string][]int64),
	}
}

// Put adds name to instance's listing as its newest file.
func (f *FakeSource) Put(instance, name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last int64
	for _, file := range f.files[instance] {
		last = max(last, file.lastWritten)
	}
	f.files[instance] = append(f.files[instance], &fakeFile{name: name, data: []byte(content), lastWritten: last + 1})
}

// Append grows an existing file.
func (f *FakeSource) Append(instance, name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file := f.lookup(instance, name)
	if file == nil {
		panic(fmt.Sprintf("fake source: unknown file %s/%s", instance, name))
	}
	file.data = append(file.data, content...)
}

// AddInstance makes an instance discoverable.
func (f *FakeSource) AddInstance(id, engine string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.instances = append(f.instances, remote.Instance{ID: id, Engine: engine, Status: "available"})
}

// FailList queues err to be returned by the next ListLogFiles calls for
// instance, once per queued entry.
func (f *FakeSource) FailList(instance string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErrs[instance] = append(f.listErrs[instance], errs...)
}

// FailRead queues errors for the next ReadPortion calls on one file.
func (f *FakeSource) FailRead(instance, name string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := instance + "/" + name
	f.readErrs[key] = append(f.readErrs[key], errs...)
}

// Calls returns the recorded reads of one file, in order.
func (f *FakeSource) Calls(instance, name string) []ReadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReadCall(nil), f.calls[instance+"/"+name]...)
}

// ListCount returns how many listings were requested for instance.
func (f *FakeSource) ListCount(instance string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists[instance]
}

// Cutoffs returns the createdAfter arguments of instance's listings.
func (f *FakeSource) Cutoffs(instance string) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.cutoffs[instance]...)
}

func (f *FakeSource) ListLogFiles(ctx context.Context, instance string, createdAfter int64) ([]remote.LogFile, error) {
	if f.ListHook != nil {
		if err := f.ListHook(ctx, instance); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[instance]++
	f.cutoffs[instance] = append(f.cutoffs[instance], createdAfter)
	if queued := f.listErrs[instance]; len(queued) > 0 {
		f.listErrs[instance] = queued[1:]
		return nil, queued[0]
	}
	files, ok := f.files[instance]
	if !ok {
		return nil, remote.Wrap(remote.ErrUnavailable, instance, "describe log files", nil)
	}
	out := make([]remote.LogFile, 0, len(files))
	for _, file := range files {
		if createdAfter > 0 && file.lastWritten <= createdAfter {
			continue
		}
		out = append(out, remote.LogFile{Name: file.name, Size: int64(len(file.data)), LastWritten: file.lastWritten})
	}
	return out, nil
}

func (f *FakeSource) ReadPortion(ctx context.Context, instance, fileName string, marker remote.Marker, _ int) (remote.Portion, error) {
	if err := ctx.Err(); err != nil {
		return remote.Portion{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := instance + "/" + fileName
	if queued := f.readErrs[key]; len(queued) > 0 {
		f.readErrs[key] = queued[1:]
		f.calls[key] = append(f.calls[key], ReadCall{Marker: marker})
		return remote.Portion{}, queued[0]
	}
	file := f.lookup(instance, fileName)
	if file == nil {
		return remote.Portion{}, remote.Wrap(remote.ErrRejected, instance, "download "+fileName, nil)
	}
	offset := 0
	if marker != remote.InitialMarker {
		var ok bool
		offset, ok = f.tokens[marker]
		if !ok {
			return remote.Portion{}, remote.Wrap(remote.ErrRejected, instance, "unknown marker "+string(marker), nil)
		}
	}

	chunk := f.ChunkSize
	if chunk <= 0 {
		chunk = 8
	}
	end := min(offset+chunk, len(file.data))
	f.nextToken++
	next := remote.Marker(fmt.Sprintf("tok-%d", f.nextToken))
	f.tokens[next] = end

	data := append([]byte(nil), file.data[offset:end]...)
	f.calls[key] = append(f.calls[key], ReadCall{Marker: marker, Next: next, Bytes: len(data)})
	return remote.Portion{
		Data:        data,
		NextMarker:  next,
		MorePending: end < len(file.data),
	}, nil
}

func (f *FakeSource) ListInstances(ctx context.Context) ([]remote.Instance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]remote.Instance(nil), f.instances...), nil
}

func (f *FakeSource) lookup(instance, name string) *fakeFile {
	for _, file := range f.files[instance] {
		if file.name == name {
			return file
		}
	}
	return nil
}
