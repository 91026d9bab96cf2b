// Package registry keeps the named document pools served by slotpoold.
package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fulldump/slotpool/pool"
	"github.com/fulldump/slotpool/utils"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

var (
	ErrPoolNotFound      = errors.New("pool not found")
	ErrPoolAlreadyExists = errors.New("pool already exists")
	ErrBadPoolName       = errors.New("bad pool name")
	ErrBadPoolConfig     = errors.New("bad pool config")
)

type Config struct {
	// Defaults is used for pools created without an explicit configuration.
	Defaults pool.Config

	// Preload lists pools created on Load.
	Preload []string

	// MaxReserve rejects pools reserving more slots up front, 0 leaves the
	// pool package limit alone.
	MaxReserve int

	Logger *zap.Logger
}

type Registry struct {
	config *Config
	logger *zap.Logger

	statusMutex sync.RWMutex
	status      string

	mutex sync.RWMutex
	pools map[string]*Pool

	exit     chan struct{}
	exitOnce sync.Once
}

func New(config *Config) *Registry {
	if config == nil {
		config = &Config{Defaults: *pool.DefaultConfig()}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Registry{
		config: config,
		logger: logger,
		status: StatusOpening,
		pools:  map[string]*Pool{},
		exit:   make(chan struct{}),
	}
}

func (r *Registry) GetStatus() string {
	r.statusMutex.RLock()
	defer r.statusMutex.RUnlock()
	return r.status
}

func (r *Registry) setStatus(status string) {
	r.statusMutex.Lock()
	r.status = status
	r.statusMutex.Unlock()
}

// Defaults returns a copy of the configuration applied to new pools.
func (r *Registry) Defaults() pool.Config {
	c := r.config.Defaults
	c.Logger = nil
	return c
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrBadPoolName)
	}
	if strings.ContainsAny(name, "/:") {
		return fmt.Errorf("%w: '%s' contains '/' or ':'", ErrBadPoolName, name)
	}
	return nil
}

func (r *Registry) validConfig(c pool.Config) error {
	if c.MaxSize < 0 || c.Reserve < 0 || c.ShrinkThreshold < 0 {
		return fmt.Errorf("%w: max_size, reserve and shrink_threshold must not be negative", ErrBadPoolConfig)
	}
	if r.config.MaxReserve > 0 && c.Reserve > r.config.MaxReserve {
		return fmt.Errorf("%w: reserve %d is over the limit of %d", ErrBadPoolConfig, c.Reserve, r.config.MaxReserve)
	}
	return nil
}

// CreatePool registers a new empty pool. A nil config takes the defaults.
func (r *Registry) CreatePool(name string, config *pool.Config) (*Pool, error) {

	if err := validName(name); err != nil {
		return nil, err
	}

	c := r.Defaults()
	if config != nil {
		c = *config
	}
	if err := r.validConfig(c); err != nil {
		return nil, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.pools[name]; exists {
		return nil, fmt.Errorf("%w: '%s'", ErrPoolAlreadyExists, name)
	}

	p := newPool(name, c, r.logger.With(zap.String("pool", name)))
	r.pools[name] = p

	r.logger.Info("pool created",
		zap.String("pool", name),
		zap.String("instance", p.Instance),
		zap.Stringer("defrag_mode", c.DefragMode),
		zap.Int("max_size", c.MaxSize),
	)

	return p, nil
}

func (r *Registry) GetPool(name string) (*Pool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, exists := r.pools[name]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrPoolNotFound, name)
	}
	return p, nil
}

// ListPools returns every pool sorted by name.
func (r *Registry) ListPools() []*Pool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*Pool, 0, len(r.pools))
	for _, name := range utils.GetKeys(r.pools) {
		result = append(result, r.pools[name])
	}

	return result
}

func (r *Registry) DropPool(name string) error {
	r.mutex.Lock()
	p, exists := r.pools[name]
	if !exists {
		r.mutex.Unlock()
		return fmt.Errorf("%w: '%s'", ErrPoolNotFound, name)
	}
	delete(r.pools, name)
	r.mutex.Unlock()

	r.logger.Info("pool dropped", zap.String("pool", name))

	return p.Clear()
}

// Load creates the preloaded pools and opens the registry for business.
func (r *Registry) Load() error {

	t0 := time.Now()
	for _, name := range r.config.Preload {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		_, err := r.CreatePool(name, nil)
		if errors.Is(err, ErrPoolAlreadyExists) {
			continue
		}
		if err != nil {
			r.logger.Error("preload pool", zap.String("pool", name), zap.Error(err))
			r.setStatus(StatusClosing)
			return err
		}
	}

	r.setStatus(StatusOperating)
	r.logger.Info("registry loaded",
		zap.Int("pools", len(r.ListPools())),
		zap.Duration("elapsed", time.Since(t0)),
	)

	return nil
}

// Start loads the registry and blocks until Stop.
func (r *Registry) Start() error {

	go func() {
		if err := r.Load(); err != nil {
			r.logger.Error("load registry", zap.Error(err))
		}
	}()

	<-r.exit

	return nil
}

func (r *Registry) Stop() error {

	defer r.exitOnce.Do(func() { close(r.exit) })

	r.setStatus(StatusClosing)

	var lastErr error
	for _, p := range r.ListPools() {
		r.logger.Info("closing pool", zap.String("pool", p.Name), zap.Int("live", p.Len()))
		if err := p.Clear(); err != nil {
			r.logger.Error("close pool", zap.String("pool", p.Name), zap.Error(err))
			lastErr = err
		}
	}

	return lastErr
}
