package service

import (
	"errors"
	"fmt"

	"github.com/fulldump/slotpool/pool"
	"github.com/fulldump/slotpool/registry"
)

type Service struct {
	registry *registry.Registry
}

func NewService(r *registry.Registry) *Service {
	return &Service{
		registry: r,
	}
}

// translate maps registry errors to the service ones.
func translate(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, registry.ErrPoolNotFound):
		return fmt.Errorf("%w: '%s'", ErrorPoolNotFound, name)
	case errors.Is(err, registry.ErrPoolAlreadyExists):
		return fmt.Errorf("%w: '%s'", ErrorPoolAlreadyExists, name)
	}
	return err
}

func (s *Service) CreatePool(name string, config *pool.Config) (*registry.Pool, error) {
	p, err := s.registry.CreatePool(name, config)
	return p, translate(err, name)
}

func (s *Service) GetPool(name string) (*registry.Pool, error) {
	p, err := s.registry.GetPool(name)
	return p, translate(err, name)
}

func (s *Service) ListPools() []*registry.Pool {
	return s.registry.ListPools()
}

func (s *Service) DropPool(name string) error {
	return translate(s.registry.DropPool(name), name)
}

func (s *Service) Defaults() pool.Config {
	return s.registry.Defaults()
}
