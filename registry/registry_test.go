package registry

import (
	"errors"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/slotpool/pool"
)

func TestRegistry(t *testing.T) {

	biff.Alternative("New registry", func(a *biff.A) {

		r := New(&Config{
			Defaults: *pool.DefaultConfig(),
			Preload:  []string{"players", " ", "bullets"},
		})
		biff.AssertEqual(r.GetStatus(), StatusOpening)

		biff.AssertNil(r.Load())
		biff.AssertEqual(r.GetStatus(), StatusOperating)

		a.Alternative("Preloaded pools", func(a *biff.A) {
			pools := r.ListPools()
			biff.AssertEqual(len(pools), 2)
			biff.AssertEqual(pools[0].Name, "bullets")
			biff.AssertEqual(pools[1].Name, "players")
			biff.AssertEqual(pools[1].Config.DefragMode, pool.DefragDeferred)
			biff.AssertTrue(pools[0].Instance != pools[1].Instance)
		})

		a.Alternative("Create pool", func(a *biff.A) {
			c := r.Defaults()
			c.MaxSize = 2
			c.DefragMode = pool.DefragImmediate
			p, err := r.CreatePool("enemies", &c)
			biff.AssertNil(err)
			biff.AssertEqual(p.Config.MaxSize, 2)
			biff.AssertNil(p.Config.Logger)

			a.Alternative("Get pool", func(a *biff.A) {
				got, err := r.GetPool("enemies")
				biff.AssertNil(err)
				biff.AssertEqual(got.Instance, p.Instance)
			})

			a.Alternative("Create again", func(a *biff.A) {
				_, err := r.CreatePool("enemies", nil)
				biff.AssertTrue(errors.Is(err, ErrPoolAlreadyExists))
			})

			a.Alternative("Drop pool", func(a *biff.A) {
				_, err := p.Alloc([]byte(`{"hp":3}`))
				biff.AssertNil(err)

				biff.AssertNil(r.DropPool("enemies"))
				biff.AssertEqual(p.Len(), 0)

				_, err = r.GetPool("enemies")
				biff.AssertTrue(errors.Is(err, ErrPoolNotFound))

				err = r.DropPool("enemies")
				biff.AssertTrue(errors.Is(err, ErrPoolNotFound))
			})
		})

		a.Alternative("Bad names", func(a *biff.A) {
			_, err := r.CreatePool("", nil)
			biff.AssertTrue(errors.Is(err, ErrBadPoolName))

			_, err = r.CreatePool("a:b", nil)
			biff.AssertTrue(errors.Is(err, ErrBadPoolName))
		})

		a.Alternative("Bad config", func(a *biff.A) {
			c := r.Defaults()
			c.Reserve = -1
			_, err := r.CreatePool("negative", &c)
			biff.AssertTrue(errors.Is(err, ErrBadPoolConfig))

			_, err = r.GetPool("negative")
			biff.AssertTrue(errors.Is(err, ErrPoolNotFound))
		})

		a.Alternative("Stop", func(a *biff.A) {
			p, _ := r.GetPool("players")
			_, _ = p.Alloc([]byte(`{}`))

			biff.AssertNil(r.Stop())
			biff.AssertEqual(r.GetStatus(), StatusClosing)
			biff.AssertEqual(p.Len(), 0)

			// twice is fine
			biff.AssertNil(r.Stop())
		})
	})
}

func TestRegistry_StartStop(t *testing.T) {

	r := New(nil)

	done := make(chan error)
	go func() {
		done <- r.Start()
	}()

	biff.AssertNil(r.Stop())
	biff.AssertNil(<-done)
}

func TestRegistry_MaxReserve(t *testing.T) {

	r := New(&Config{
		Defaults:   *pool.DefaultConfig(),
		MaxReserve: 1000,
	})

	c := r.Defaults()
	c.Reserve = 1000
	_, err := r.CreatePool("fits", &c)
	biff.AssertNil(err)

	c.Reserve = 1 << 40
	_, err = r.CreatePool("huge", &c)
	biff.AssertTrue(errors.Is(err, ErrBadPoolConfig))
}
