package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrain_StopsWorkersAfterRequestsFinish(t *testing.T) {
	workers, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	started := make(chan struct{})
	workersAlive := make(chan bool, 1)
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(100 * time.Millisecond)
		workersAlive <- workers.Err() == nil
		w.WriteHeader(http.StatusCreated)
	})}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = server.Serve(ln) }()

	go func() {
		resp, err := http.Post("http://"+ln.Addr().String()+"/api/claims", "application/json", nil)
		if err == nil {
			resp.Body.Close()
		}
	}()
	<-started

	require.NoError(t, drain(server, stopWorkers, 2*time.Second))
	assert.True(t, <-workersAlive, "workers stopped while a request was in flight")
	assert.ErrorIs(t, workers.Err(), context.Canceled)
}
