package registry

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/SierraSoftworks/connor"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fulldump/slotpool/pool"
)

var ErrBadDocument = errors.New("bad document")

// Document is a JSON object stored in a pool slot. Payload keeps the compact
// encoding to answer reads without marshalling again.
type Document struct {
	Payload jsontext.Value
	fields  map[string]any
}

func (d Document) Fields() map[string]any {
	return d.fields
}

func DecodeDocument(payload []byte) (Document, error) {

	value := jsontext.Value(bytes.Clone(payload))
	if err := value.Compact(); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrBadDocument, err)
	}
	if value.Kind() != '{' {
		return Document{}, fmt.Errorf("%w: expected an object, got '%s'", ErrBadDocument, value.Kind())
	}

	fields := map[string]any{}
	if err := json.Unmarshal(value, &fields); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrBadDocument, err)
	}

	return Document{
		Payload: value,
		fields:  fields,
	}, nil
}

// Pool is a named pool of documents guarded by its own mutex.
type Pool struct {
	Name     string
	Instance string
	Created  time.Time
	Config   pool.Config

	mutex   sync.Mutex
	objects *pool.Pool[Document]
}

func newPool(name string, config pool.Config, logger *zap.Logger) *Pool {

	config.Logger = logger
	objects := pool.New[Document](&config)
	config.Logger = nil

	return &Pool{
		Name:     name,
		Instance: uuid.New().String(),
		Created:  time.Now(),
		Config:   config,
		objects:  objects,
	}
}

// Alloc stores one JSON object and returns its id.
func (p *Pool) Alloc(payload []byte) (pool.Id, error) {

	doc, err := DecodeDocument(payload)
	if err != nil {
		return 0, err
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	h, err := p.objects.Alloc()
	if err != nil {
		return 0, err
	}
	obj, err := h.Resolve()
	if err != nil {
		return 0, err
	}
	*obj = doc

	return h.Id(), nil
}

func (p *Pool) Get(id pool.Id) (Document, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	obj, err := p.objects.Get(id)
	if err != nil {
		return Document{}, err
	}
	return *obj, nil
}

type FindOptions struct {
	Filter map[string]any
	Skip   int
	Limit  int // 0 means no limit

	// Ordered visits by allocation order instead of storage order.
	Ordered bool
}

// Find calls f for every document matching the filter. Read scans never
// defrag the pool.
func (p *Pool) Find(options FindOptions, f func(id pool.Id, doc Document) error) error {

	p.mutex.Lock()
	defer p.mutex.Unlock()

	hasFilter := len(options.Filter) > 0
	skip := options.Skip
	sent := 0

	var result error
	visit := func(id pool.Id, doc Document) pool.IterationCode {
		if hasFilter {
			match, err := connor.Match(options.Filter, doc.fields)
			if err != nil {
				result = fmt.Errorf("match: %w", err)
				return pool.Break
			}
			if !match {
				return pool.Continue
			}
		}

		if skip > 0 {
			skip--
			return pool.Continue
		}

		if err := f(id, doc); err != nil {
			result = err
			return pool.Break
		}

		sent++
		if options.Limit > 0 && sent >= options.Limit {
			return pool.Break
		}
		return pool.Continue
	}

	if options.Ordered {
		err := p.objects.IterateOrdered(func(obj *Document, id pool.Id) pool.IterationCode {
			return visit(id, *obj)
		})
		if err != nil {
			return err
		}
	} else {
		p.objects.IterateConstEx(func(obj Document, id pool.Id, _ *pool.Pool[Document]) pool.IterationCode {
			return visit(id, obj)
		})
	}

	return result
}

// Release frees the given ids in order. Nothing is released when any id is
// unknown or repeated.
func (p *Pool) Release(ids []pool.Id) ([]pool.Id, error) {

	p.mutex.Lock()
	defer p.mutex.Unlock()

	seen := make(map[pool.Id]struct{}, len(ids))
	for _, id := range ids {
		if _, repeated := seen[id]; repeated {
			return nil, fmt.Errorf("%w: id %d is repeated", pool.ErrAccessViolation, id)
		}
		if !p.objects.Contains(id) {
			return nil, fmt.Errorf("%w: id %d", pool.ErrAccessViolation, id)
		}
		seen[id] = struct{}{}
	}

	return p.apply(slices.Clone(ids))
}

// ReleaseMatching frees up to limit documents matching filter, every one
// when limit is 0. Matches are collected first and released after the scan.
func (p *Pool) ReleaseMatching(filter map[string]any, limit int) ([]pool.Id, error) {

	p.mutex.Lock()
	defer p.mutex.Unlock()

	var matchErr error
	ids := []pool.Id{}
	p.objects.IterateConstEx(func(obj Document, id pool.Id, _ *pool.Pool[Document]) pool.IterationCode {
		if len(filter) > 0 {
			match, err := connor.Match(filter, obj.fields)
			if err != nil {
				matchErr = fmt.Errorf("match: %w", err)
				return pool.Break
			}
			if !match {
				return pool.Continue
			}
		}
		ids = append(ids, id)
		if limit > 0 && len(ids) >= limit {
			return pool.Break
		}
		return pool.Continue
	})
	if matchErr != nil {
		return nil, matchErr
	}

	return p.apply(ids)
}

func (p *Pool) apply(ids []pool.Id) ([]pool.Id, error) {
	list := pool.ReleaseList(slices.Clone(ids))
	err := list.Apply(p.objects)
	return ids[:len(ids)-list.Len()], err
}

func (p *Pool) Defrag() (pool.Stats, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	err := p.objects.Defrag()
	return p.objects.Stats(), err
}

// Trim gives unused backing memory back, it requires a defragged pool.
func (p *Pool) Trim() (pool.Stats, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	err := p.objects.ClearUnusedMemory()
	return p.objects.Stats(), err
}

func (p *Pool) Clear() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.objects.Clear()
}

func (p *Pool) Stats() pool.Stats {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.objects.Stats()
}

func (p *Pool) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.objects.Len()
}

// Check audits the underlying pool bookkeeping.
func (p *Pool) Check() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return p.objects.Check()
}
