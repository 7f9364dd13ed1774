package hub_test

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/clients/hub"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	"github.com/KirkDiggler/farcaster-bot-discord/internal/testutils"
)

type submission struct {
	Data      json.RawMessage `json:"data"`
	Signer    string          `json:"signer"`
	Signature string          `json:"signature"`
}

func decodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	require.NoError(t, err)
	return b
}

func newClient(t *testing.T, url string) hub.Client {
	t.Helper()
	c, err := hub.New(&hub.Config{
		BaseURL:            url,
		RetryDelay:         time.Millisecond,
		BreakerMinRequests: 3,
		Now:                func() time.Time { return time.Unix(1700000000, 0) },
	})
	require.NoError(t, err)
	return c
}

func TestClient_SubmitCast_SignsAndPosts(t *testing.T) {
	account := testutils.CreateTestAccount(t, 1234)
	var received submission

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/casts", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"hash":"0xabc"}`))
	}))
	defer srv.Close()

	body := &entities.CastBody{
		Text:              "hello ",
		Mentions:          []uint64{42},
		MentionsPositions: []uint32{6},
		ParentURL:         "chain://eip155:1/erc721:0xabc",
	}

	result, err := newClient(t, srv.URL).SubmitCast(context.Background(), body, account)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", result.Hash)

	pub := ed25519.PublicKey(decodeHex(t, received.Signer))
	assert.Equal(t, account.SignerPrivateKey.Public(), pub)
	assert.True(t, ed25519.Verify(pub, received.Data, decodeHex(t, received.Signature)))

	var data struct {
		FID       uint64            `json:"fid"`
		Timestamp int64             `json:"timestamp"`
		Cast      entities.CastBody `json:"cast"`
	}
	require.NoError(t, json.Unmarshal(received.Data, &data))
	assert.Equal(t, uint64(1234), data.FID)
	assert.Equal(t, int64(1700000000), data.Timestamp)
	assert.Equal(t, "hello ", data.Cast.Text)
	assert.Equal(t, []uint32{6}, data.Cast.MentionsPositions)
}

func TestClient_SubmitCast_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"hash":"0xdef"}`))
	}))
	defer srv.Close()

	c, err := hub.New(&hub.Config{BaseURL: srv.URL, RetryDelay: time.Millisecond, BreakerMinRequests: 10})
	require.NoError(t, err)

	result, err := c.SubmitCast(context.Background(), &entities.CastBody{Text: "gm"}, testutils.CreateTestAccount(t, 1))
	require.NoError(t, err)
	assert.Equal(t, "0xdef", result.Hash)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_SubmitCast_RejectedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errCode":"bad_request.validation_failure","details":"text > 320 bytes"}`))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).SubmitCast(context.Background(), &entities.CastBody{Text: "gm"}, testutils.CreateTestAccount(t, 1))
	require.Error(t, err)

	de, ok := hub.IsDeliveryError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, de.StatusCode)
	assert.Equal(t, "bad_request.validation_failure", de.Code)
	assert.Contains(t, err.Error(), "text > 320 bytes")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_SubmitCast_ReadOnlyAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("read-only account must not reach the hub")
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).SubmitCast(context.Background(), &entities.CastBody{Text: "gm"}, testutils.CreateReadOnlyAccount(t, 9))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestClient_SubmitCast_BreakerOpens(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	account := testutils.CreateTestAccount(t, 1)

	// 3 attempts trip the breaker (min 3 requests, all failures)
	_, err := c.SubmitCast(context.Background(), &entities.CastBody{Text: "gm"}, account)
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	_, err = c.SubmitCast(context.Background(), &entities.CastBody{Text: "gm"}, account)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hub is unavailable")
	assert.Equal(t, int32(3), calls.Load())
}

func TestNew_Validation(t *testing.T) {
	_, err := hub.New(nil)
	assert.Error(t, err)

	_, err = hub.New(&hub.Config{})
	assert.Error(t, err)
}
