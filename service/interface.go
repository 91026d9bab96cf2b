package service

import (
	"errors"

	"github.com/fulldump/slotpool/pool"
	"github.com/fulldump/slotpool/registry"
)

var ErrorPoolNotFound = errors.New("pool not found")
var ErrorPoolAlreadyExists = errors.New("pool already exists")

type Servicer interface {
	CreatePool(name string, config *pool.Config) (*registry.Pool, error)
	GetPool(name string) (*registry.Pool, error)
	ListPools() []*registry.Pool
	DropPool(name string) error
	Defaults() pool.Config
}
