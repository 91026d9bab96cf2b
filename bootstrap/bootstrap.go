package bootstrap

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fulldump/box"
	"go.uber.org/zap"

	"github.com/fulldump/slotpool/api"
	"github.com/fulldump/slotpool/configuration"
	"github.com/fulldump/slotpool/logger"
	"github.com/fulldump/slotpool/metrics"
	"github.com/fulldump/slotpool/registry"
	"github.com/fulldump/slotpool/service"
)

var VERSION = "dev"

func Bootstrap(c *configuration.Configuration) (start, stop func()) {

	l := logger.Must(logger.Config{
		Level:    c.LogLevel,
		Encoding: c.LogEncoding,
	})

	defaults, err := c.PoolDefaults()
	if err != nil {
		l.Fatal("bad pool defaults", zap.Error(err))
	}

	r := registry.New(&registry.Config{
		Defaults:   defaults,
		Preload:    c.PreloadPools(),
		MaxReserve: c.MaxReserve,
		Logger:     l,
	})

	h := metrics.NewHTTP()

	b := api.Build(service.NewService(r), VERSION, c.ApiKey, c.ApiSecret)
	if c.EnableMetrics {
		api.MountMetrics(b, metrics.NewRegistry(r, h))
	}
	b.WithInterceptors(
		api.AccessLog(l.Named("access")),
		api.Instrument(h),
	)
	if c.EnableCompression {
		b.WithInterceptors(api.Compression)
	}
	b.WithInterceptors(
		api.InterceptorUnavailable(r),
		api.RecoverFromPanic,
		api.PrettyErrorInterceptor,
	)

	s := &http.Server{
		Addr:    c.HttpAddr,
		Handler: box.Box2Http(b),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		l.Fatal("listen", zap.String("addr", c.HttpAddr), zap.Error(err))
	}
	l.Info("listening", zap.String("addr", ln.Addr().String()))

	stop = func() {
		r.Stop()
		s.Shutdown(context.Background())
		l.Sync()
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for {
			sig := <-signalChan
			l.Info("signal received", zap.String("signal", sig.String()))
			stop()
		}
	}()

	start = func() {

		wg := &sync.WaitGroup{}

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Start()
			if err != nil {
				l.Error("registry", zap.Error(err))
			}
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Serve(ln)
			if err != nil && err != http.ErrServerClosed {
				l.Error("http server", zap.Error(err))
			}
		}()

		wg.Wait()
	}

	return
}
