package service

import (
	"errors"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/slotpool/registry"
)

func TestService(t *testing.T) {

	biff.Alternative("Service", func(a *biff.A) {

		s := NewService(registry.New(nil))

		a.Alternative("Pool not found", func(a *biff.A) {
			_, err := s.GetPool("ghost")
			biff.AssertTrue(errors.Is(err, ErrorPoolNotFound))
			biff.AssertEqual(err.Error(), "pool not found: 'ghost'")

			err = s.DropPool("ghost")
			biff.AssertTrue(errors.Is(err, ErrorPoolNotFound))
		})

		a.Alternative("Pool already exists", func(a *biff.A) {
			_, err := s.CreatePool("players", nil)
			biff.AssertNil(err)

			_, err = s.CreatePool("players", nil)
			biff.AssertTrue(errors.Is(err, ErrorPoolAlreadyExists))
			biff.AssertEqual(len(s.ListPools()), 1)
		})

		a.Alternative("Other errors pass through", func(a *biff.A) {
			_, err := s.CreatePool("a/b", nil)
			biff.AssertTrue(errors.Is(err, registry.ErrBadPoolName))
		})
	})
}

func TestFormatBody(t *testing.T) {

	biff.AssertEqual(formatBody(`{"a":1}`), "{\n    \"a\": 1\n}")
	biff.AssertEqual(formatBody("{\"id\": 0}\n{\"id\": 1}\n"), "{\"id\":0}\n{\"id\":1}")
	biff.AssertEqual(formatBody("not json"), "not json")
	biff.AssertEqual(formatBody(""), "")
}

func TestCropTabs(t *testing.T) {

	biff.AssertEqual(cropTabs("\n\t\tline one\n\t\t\tline two\n\t"), "\nline one\n\tline two\n\t")
}
