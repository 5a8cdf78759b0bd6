package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/regionedit/internal/logging"
	"github.com/inamate/regionedit/internal/region"
)

var bodyTarget = Target{Prefix: "human_body_parts", Action: "save_body_parts_config"}

func payloadWithX(x float64) region.Payload {
	return region.Payload{
		Regions:      map[string]region.Tuple{"head": {x, 10.0, 70.0, 50.0, 1.0, 0.0}},
		CanvasWidth:  400,
		CanvasHeight: 500,
	}
}

type memFallback struct {
	mu   sync.Mutex
	puts map[string][]Record
	err  error
}

func (m *memFallback) Put(_ context.Context, key string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.puts == nil {
		m.puts = map[string][]Record{}
	}
	m.puts[key] = append(m.puts[key], rec)
	return m.err
}

type blockingSender struct {
	mu      sync.Mutex
	gate    chan struct{}
	entered chan struct{}
	seen    []Request
	err     error
}

func (s *blockingSender) Send(_ context.Context, _ string, req Request) (int, error) {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	s.seen = append(s.seen, req)
	s.mu.Unlock()
	return http.StatusOK, s.err
}

func TestHTTPSenderPostsRequest(t *testing.T) {
	var got Request
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/human_body_parts/save_config", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewHTTPSender(srv.URL+"/", "s3cret")
	status, err := sender.Send(context.Background(), "human_body_parts", Request{
		Action: "save_body_parts_config",
		NodeID: "12",
		Config: json.RawMessage(`{"regions":{}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, status)
	assert.Equal(t, "save_body_parts_config", got.Action)
	assert.Equal(t, "12", got.NodeID)
	assert.JSONEq(t, `{"regions":{}}`, string(got.Config))

	require.True(t, strings.HasPrefix(auth, "Bearer "))
	token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(*jwt.Token) (any, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	sub, err := token.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "12", sub)
}

func TestHTTPSenderWithoutSecretSendsNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	status, err := NewHTTPSender(srv.URL, "").Send(context.Background(), "p", Request{NodeID: "1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestChannelDeliversToSenderAndFallback(t *testing.T) {
	sender := &blockingSender{}
	fb := &memFallback{}
	ch := NewChannel(bodyTarget, sender, fb, logging.Nop())
	fixed := time.UnixMilli(1700000000000)
	ch.now = func() time.Time { return fixed }

	ch.Push("5", payloadWithX(180))
	ch.Close()

	require.Len(t, sender.seen, 1)
	assert.Equal(t, "save_body_parts_config", sender.seen[0].Action)
	assert.Equal(t, "5", sender.seen[0].NodeID)

	recs := fb.puts["human_body_parts_5"]
	require.Len(t, recs, 1)
	assert.Equal(t, int64(1700000000000), recs[0].Timestamp)
	assert.Equal(t, "5", recs[0].NodeID)
	assert.JSONEq(t, `{"regions":{"head":[180,10,70,50,1,0]},"canvas_width":400,"canvas_height":500}`, string(recs[0].Config))
}

func TestChannelCoalescesToLatestPerNode(t *testing.T) {
	sender := &blockingSender{gate: make(chan struct{}), entered: make(chan struct{}, 8)}
	ch := NewChannel(bodyTarget, sender, nil, logging.Nop())

	ch.Push("a", payloadWithX(1))
	<-sender.entered // worker is now blocked delivering x=1

	for x := 2.0; x <= 9; x++ {
		ch.Push("a", payloadWithX(x))
	}
	ch.Push("b", payloadWithX(100))

	close(sender.gate)
	ch.Close()

	require.Len(t, sender.seen, 3)
	assert.Equal(t, "a", sender.seen[0].NodeID)
	assert.Equal(t, "a", sender.seen[1].NodeID)
	assert.Contains(t, string(sender.seen[1].Config), `[9,10,70,50,1,0]`)
	assert.Equal(t, "b", sender.seen[2].NodeID)
}

func TestChannelFailuresAreIndependent(t *testing.T) {
	sender := &blockingSender{err: errors.New("connection refused")}
	fb := &memFallback{}
	ch := NewChannel(bodyTarget, sender, fb, logging.Nop())

	ch.Push("5", payloadWithX(1))
	ch.Close()
	assert.Len(t, fb.puts["human_body_parts_5"], 1, "fallback still written")

	// Pushing after close is dropped, not a panic.
	assert.NotPanics(t, func() { ch.Push("5", payloadWithX(2)) })
	ch.Close()
}

func TestFileFallbackRoundTrip(t *testing.T) {
	fb := NewFileFallback(t.TempDir())
	rec := NewRecord("9", json.RawMessage(`{"regions":{}}`), time.UnixMilli(42))

	require.NoError(t, fb.Put(context.Background(), StoreKey("multi_area_conditioning", "9"), rec))
	require.NoError(t, fb.Put(context.Background(), StoreKey("multi_area_conditioning", "9"), rec))

	got, err := fb.Get("multi_area_conditioning_9")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Timestamp)
	assert.JSONEq(t, `{"regions":{}}`, string(got.Config))
}

func TestRedisFallback(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	fb := NewRedisFallback(client, "regionedit:", time.Hour)
	rec := NewRecord("3", json.RawMessage(`{"selected":"head"}`), time.UnixMilli(7))
	require.NoError(t, fb.Put(context.Background(), "human_body_parts_3", rec))

	raw, err := mr.Get("regionedit:human_body_parts_3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":7,"node_id":"3","config":{"selected":"head"}}`, raw)
	assert.Equal(t, time.Hour, mr.TTL("regionedit:human_body_parts_3"))
}
