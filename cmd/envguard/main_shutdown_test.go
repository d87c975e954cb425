package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	osSignal "os/signal"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func deliverSignal(t *testing.T, sig os.Signal) {
	t.Helper()

	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})
	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		go func() {
			ch <- sig
		}()
	}
}

func TestShutdownOnSignal(t *testing.T) {
	for _, sig := range []os.Signal{syscall.SIGINT, syscall.SIGTERM} {
		t.Run(sig.String(), func(t *testing.T) {
			deliverSignal(t, sig)

			server := &http.Server{}
			called := make(chan struct{}, 1)
			server.RegisterOnShutdown(func() {
				called <- struct{}{}
			})

			core, logs := observer.New(zapcore.InfoLevel)
			shutdown(server, 50*time.Millisecond, zap.New(core))

			select {
			case <-called:
			case <-time.After(time.Second):
				t.Fatalf("expected server shutdown callback to execute")
			}

			started := logs.FilterMessage("shutting down server").AllUntimed()
			if len(started) != 1 || started[0].ContextMap()["signal"] != sig.String() {
				t.Fatalf("expected shutdown log naming %s, got %v", sig, started)
			}
			if logs.FilterMessage("server stopped").Len() != 1 {
				t.Fatalf("expected clean stop to be logged")
			}
		})
	}
}

func TestShutdownForcesCloseAfterGracePeriod(t *testing.T) {
	deliverSignal(t, syscall.SIGTERM)

	release := make(chan struct{})
	entered := make(chan struct{})
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
	}))
	srv.Start()
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	go func() {
		resp, err := http.Get(srv.URL)
		if err == nil {
			_ = resp.Body.Close()
		}
	}()
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatalf("request never reached the handler")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	shutdown(srv.Config, 10*time.Millisecond, zap.New(core))

	if logs.FilterMessage("graceful shutdown failed").Len() != 1 {
		t.Fatalf("expected graceful shutdown to time out with a request in flight")
	}
	if logs.FilterMessage("server stopped").Len() != 0 {
		t.Fatalf("a forced close must not be logged as a clean stop")
	}
}
