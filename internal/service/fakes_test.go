package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"artforge/internal/models"
	"artforge/internal/repository"
	"artforge/internal/storage"
)

type fakeImages struct {
	mu        sync.Mutex
	rows      map[string]models.GeneratedImage
	createErr error
	countErr  error
	listErr   error
	deleteErr error
	clock     time.Time
}

func newFakeImages() *fakeImages {
	return &fakeImages{
		rows:  make(map[string]models.GeneratedImage),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeImages) Create(_ context.Context, image models.GeneratedImage) (models.GeneratedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.GeneratedImage{}, f.createErr
	}
	f.clock = f.clock.Add(time.Second)
	image.CreatedAt = f.clock
	f.rows[image.ID] = image
	return image, nil
}

func (f *fakeImages) FindByIDAndOwner(_ context.Context, id, ownerID string) (models.GeneratedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok || row.OwnerID != ownerID {
		return models.GeneratedImage{}, repository.ErrImageNotFound
	}
	return row, nil
}

func (f *fakeImages) ListByOwner(_ context.Context, ownerID string) ([]models.GeneratedImage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.GeneratedImage, 0)
	for _, row := range f.rows {
		if row.OwnerID == ownerID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeImages) DeleteByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return repository.ErrImageNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeImages) CountByOwner(_ context.Context, ownerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, row := range f.rows {
		if row.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeImages) ListStoredFilenames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.rows))
	for _, row := range f.rows {
		names = append(names, row.StoredFilename)
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeImages) seed(id, ownerID, filename, configJSON string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Second)
	f.rows[id] = models.GeneratedImage{
		ID:             id,
		OwnerID:        ownerID,
		PromptText:     "prompt " + id,
		StoredFilename: filename,
		ConfigJSON:     configJSON,
		CreatedAt:      f.clock,
	}
}

type fakeArtifacts struct {
	mu        sync.Mutex
	files     map[string]storage.Artifact
	data      map[string][]byte
	saveErr   error
	deleteErr error
	seq       int
	now       time.Time
}

func newFakeArtifacts() *fakeArtifacts {
	return &fakeArtifacts{
		files: make(map[string]storage.Artifact),
		data:  make(map[string][]byte),
		now:   time.Unix(1700000000, 0),
	}
}

func (f *fakeArtifacts) Save(_ context.Context, ownerID string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.seq++
	name := fmt.Sprintf("img_%s_%d_%013d.png", ownerID, f.now.Unix(), f.seq)
	f.files[name] = storage.Artifact{Name: name, ModTime: f.now}
	f.data[name] = data
	return name, nil
}

func (f *fakeArtifacts) Delete(_ context.Context, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.files, filename)
	delete(f.data, filename)
	return nil
}

func (f *fakeArtifacts) PublicURL(filename string) string {
	return "/media/" + filename
}

func (f *fakeArtifacts) List(_ context.Context) ([]storage.Artifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]storage.Artifact, 0, len(f.files))
	for _, a := range f.files {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeArtifacts) put(name string, modTime time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = storage.Artifact{Name: name, ModTime: modTime}
}

func (f *fakeArtifacts) has(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[name]
	return ok
}

func (f *fakeArtifacts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

type fakeGenerator struct {
	data    []byte
	err     error
	calls   int
	encoded string
	width   int
	height  int
	timeout time.Duration
}

func (f *fakeGenerator) Generate(_ context.Context, encodedPrompt string, width, height int, timeout time.Duration) ([]byte, error) {
	f.calls++
	f.encoded = encodedPrompt
	f.width = width
	f.height = height
	f.timeout = timeout
	if f.err != nil {
		return nil, f.err
	}
	return f.data, nil
}
