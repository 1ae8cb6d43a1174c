package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestNATS(t *testing.T) *nats.Conn {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Port: -1})
	require.NoError(t, err)
	srv.Start()
	require.True(t, srv.ReadyForConnections(3*time.Second), "nats not ready")

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(func() {
		nc.Close()
		srv.Shutdown()
	})
	return nc
}

type query struct {
	Make string `json:"make"`
}

type answer struct {
	Models []string `json:"models"`
}

func TestNatsHeaderCarrier(t *testing.T) {
	msg := &nats.Msg{}
	carrier := (*natsHeaderCarrier)(msg)

	assert.Equal(t, "", carrier.Get("missing"))
	assert.Nil(t, carrier.Keys())

	carrier.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", carrier.Get("traceparent"))
	assert.Len(t, carrier.Keys(), 1)
}

func TestPublishSubscribe(t *testing.T) {
	nc := startTestNATS(t)

	got := make(chan query, 1)
	sub, err := Subscribe(nc, "test.selection", func(_ context.Context, q query) { got <- q })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// malformed payloads never reach the handler
	require.NoError(t, nc.Publish("test.selection", []byte("{nope")))
	require.NoError(t, Publish(context.Background(), nc, "test.selection", query{Make: "Audi"}))

	select {
	case q := <-got:
		assert.Equal(t, "Audi", q.Make)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublish_WireFormat(t *testing.T) {
	nc := startTestNATS(t)

	ch := make(chan *nats.Msg, 1)
	sub, err := nc.ChanSubscribe("test.raw", ch)
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, Publish(context.Background(), nc, "test.raw", query{Make: "BMW"}))
	select {
	case msg := <-ch:
		var q query
		require.NoError(t, json.Unmarshal(msg.Data, &q))
		assert.Equal(t, query{Make: "BMW"}, q)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
	}
}

func TestRespondRequest(t *testing.T) {
	nc := startTestNATS(t)

	sub, err := Respond(nc, "test.models", "q", func(_ context.Context, q query) (answer, error) {
		if q.Make == "" {
			return answer{}, errors.New("make required")
		}
		return answer{Models: []string{q.Make + "-1", q.Make + "-2"}}, nil
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	a, err := Request[query, answer](ctx, nc, "test.models", query{Make: "Audi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Audi-1", "Audi-2"}, a.Models)

	_, err = Request[query, answer](ctx, nc, "test.models", query{})
	require.Error(t, err)
	assert.True(t, IsRemote(err))
	assert.ErrorContains(t, err, "make required")
}

func TestRespond_BadRequest(t *testing.T) {
	nc := startTestNATS(t)

	called := false
	sub, err := Respond(nc, "test.bad", "q", func(_ context.Context, q query) (answer, error) {
		called = true
		return answer{}, nil
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	resp, err := nc.Request("test.bad", []byte("not json"), 2*time.Second)
	require.NoError(t, err)
	assert.Contains(t, resp.Header.Get(ErrorHeader), "decode request")
	assert.False(t, called)
}

func TestRequest_NoResponders(t *testing.T) {
	nc := startTestNATS(t)
	_, err := Request[query, answer](context.Background(), nc, "test.nobody", query{})
	require.Error(t, err)
	assert.False(t, IsRemote(err))
}
