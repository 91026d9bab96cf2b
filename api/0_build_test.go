package api

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/fulldump/apitest"
	"github.com/fulldump/biff"
	"github.com/fulldump/box"
	"github.com/klauspost/compress/gzip"

	"github.com/fulldump/slotpool/metrics"
	"github.com/fulldump/slotpool/registry"
	"github.com/fulldump/slotpool/service"
)

func TestBuild(t *testing.T) {

	biff.Alternative("Build", func(a *biff.A) {

		r := registry.New(nil)
		biff.AssertNil(r.Load())

		h := metrics.NewHTTP()

		b := Build(service.NewService(r), "v1.2.3", "", "")
		MountMetrics(b, metrics.NewRegistry(r, h))
		b.WithInterceptors(
			Instrument(h),
			Compression,
			InterceptorUnavailable(r),
			RecoverFromPanic,
			PrettyErrorInterceptor,
		)

		api := apitest.NewWithHandler(b)

		a.Alternative("Release", func(a *biff.A) {
			resp := api.Request("GET", "/release").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.BodyJson(), "v1.2.3")
		})

		a.Alternative("OpenAPI", func(a *biff.A) {
			resp := api.Request("GET", "/openapi.json").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			info := resp.BodyJsonMap()["info"].(map[string]interface{})
			biff.AssertEqual(info["title"], "slotpool")
		})

		a.Alternative("Unknown v1 endpoint", func(a *biff.A) {
			resp := api.Request("GET", "/v1/unknown").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusNotImplemented)
		})

		a.Alternative("Metrics", func(a *biff.A) {
			resp := api.Request("POST", "/v1/pools/bullets:alloc").
				WithBodyString(`{"x":1}`).Do()
			biff.AssertEqual(resp.StatusCode, http.StatusCreated)

			resp = api.Request("GET", "/metrics").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			body := resp.BodyString()
			biff.AssertTrue(strings.Contains(body, `slotpool_pool_live_objects{pool="bullets"} 1`))
			biff.AssertTrue(strings.Contains(body, `slotpool_http_requests_total{action="alloc",code="201",method="POST"} 1`))
		})

		a.Alternative("Compression", func(a *biff.A) {
			resp := api.Request("GET", "/v1/pools").
				WithHeader("Accept-Encoding", "gzip").
				Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.Header.Get("Content-Encoding"), "gzip")

			gz, err := gzip.NewReader(bytes.NewReader(resp.BodyBytes()))
			biff.AssertNil(err)
			body, err := io.ReadAll(gz)
			biff.AssertNil(err)
			biff.AssertEqual(strings.TrimSpace(string(body)), `[]`)
		})

		a.Alternative("Compression with a bad level", func(a *biff.A) {
			plain := box.NewBox()
			plain.Resource("/ping").WithActions(box.Get(func() string { return "pong" }))
			plain.WithInterceptors(CompressionLevel(42))

			resp := apitest.NewWithHandler(plain).Request("GET", "/ping").
				WithHeader("Accept-Encoding", "gzip").
				Do()
			biff.AssertEqual(resp.StatusCode, http.StatusOK)
			biff.AssertEqual(resp.Header.Get("Content-Encoding"), "")
			biff.AssertEqual(resp.BodyJson(), "pong")
		})

		a.Alternative("Unavailable while closing", func(a *biff.A) {
			biff.AssertNil(r.Stop())

			resp := api.Request("GET", "/v1/pools").Do()
			biff.AssertEqual(resp.StatusCode, http.StatusServiceUnavailable)
		})
	})
}

func TestActionName(t *testing.T) {
	biff.AssertEqual(actionName("/v1/pools/players:alloc"), "alloc")
	biff.AssertEqual(actionName("/v1/pools/players"), "resource")
	biff.AssertEqual(actionName("/v1/pools/players:"), "resource")
}
