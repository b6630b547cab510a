package usecase

import (
	"context"
	"time"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// fakeCatalog serves canned products and records nothing.
type fakeCatalog struct {
	byID    map[int]*domain.Product
	byDocID map[string]*domain.Product
	all     []domain.Product
	listErr error
	idErr   error
}

func (f *fakeCatalog) GetByID(ctx context.Context, id int) (*domain.Product, error) {
	if f.idErr != nil {
		return nil, f.idErr
	}
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeCatalog) GetByDocumentID(ctx context.Context, documentID string) (*domain.Product, error) {
	if p, ok := f.byDocID[documentID]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeCatalog) ListPublished(ctx context.Context, limit int) ([]domain.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.all) > limit {
		return f.all[:limit], nil
	}
	return f.all, nil
}

func (f *fakeCatalog) ListNames(ctx context.Context, limit int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	names := make([]string, 0, len(f.all))
	for _, p := range f.all {
		if p.Name != "" && len(names) < limit {
			names = append(names, p.Name)
		}
	}
	return names, nil
}

func (f *fakeCatalog) ListAll(ctx context.Context) ([]domain.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.all, nil
}

// fakeEmbedder returns a fixed vector.
type fakeEmbedder struct {
	vector []float64
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

// fakeVector returns canned candidates.
type fakeVector struct {
	candidates []domain.Candidate
	err        error
	calls      int
}

func (f *fakeVector) Search(ctx context.Context, vector []float64, limit int, scoreThreshold float64) ([]domain.Candidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

// scriptedCompletion returns per-model scripted chat outcomes.
type scriptedCompletion struct {
	chat         map[string]outcome
	generate     outcome
	calls        []string
	genCalls     int
	lastMessages []domain.ChatMessage
}

type outcome struct {
	text string
	err  error
}

func (f *scriptedCompletion) Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	f.calls = append(f.calls, model)
	f.lastMessages = messages
	o := f.chat[model]
	return o.text, o.err
}

func (f *scriptedCompletion) Generate(ctx context.Context, model string, prompt string) (string, error) {
	f.genCalls++
	return f.generate.text, f.generate.err
}

// fakeCache is a minimal in-memory reply cache without expiry.
type fakeCache struct {
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", domain.ErrCacheMiss
}

func (f *fakeCache) Set(ctx context.Context, key string, reply string, ttl time.Duration) error {
	f.data[key] = reply
	return nil
}

// fakeLexical serves canned lexical candidates.
type fakeLexical struct {
	candidates []domain.Candidate
	ready      bool
	calls      int
}

func (f *fakeLexical) QueryCandidates(q string, limit int) ([]domain.Candidate, error) {
	f.calls++
	if !f.ready {
		return nil, domain.ErrIndexNotReady
	}
	if len(f.candidates) > limit {
		return f.candidates[:limit], nil
	}
	return f.candidates, nil
}

func (f *fakeLexical) Ready() bool {
	return f.ready
}
