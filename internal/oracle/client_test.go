package oracle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"directory/pkg/retry"
)

const testToken = "38e97c5d7d3585a2cbf3f9580c82ca33985f9cb0845d4dcce220cb709f9538b0"

func testClient(url string) *Client {
	return NewClient(ClientConfig{
		BaseURL:   url + "/",
		TokenID:   testToken,
		Timeout:   time.Second,
		RateLimit: 1000,
		RateBurst: 1000,
		Retry: retry.Policy{
			Attempts:  3,
			BaseDelay: time.Millisecond,
			MaxDelay:  time.Millisecond,
		},
		BreakerFailures: 100,
	})
}

func TestClient_GetBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/balance/simpleledger:qtest", r.URL.Path)
		assert.Equal(t, testToken, r.URL.Query().Get("tokenId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"balance": 12.5}`))
	}))
	defer server.Close()

	balance, err := testClient(server.URL).GetBalance(context.Background(), "simpleledger:qtest")
	require.NoError(t, err)
	assert.Equal(t, 12.5, balance)
}

func TestClient_GetMerit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/merit/simpleledger:qtest", r.URL.Path)
		w.Write([]byte(`{"merit": 7}`))
	}))
	defer server.Close()

	merit, err := testClient(server.URL).GetMerit(context.Background(), "simpleledger:qtest")
	require.NoError(t, err)
	assert.Equal(t, 7.0, merit)
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "address not found"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetBalance(context.Background(), "simpleledger:qtest")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus())
	assert.Equal(t, "address not found", apiErr.Error())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ServerErrorRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
			return
		}
		w.Write([]byte(`{"balance": 100}`))
	}))
	defer server.Close()

	balance, err := testClient(server.URL).GetBalance(context.Background(), "simpleledger:qtest")
	require.NoError(t, err)
	assert.Equal(t, 100.0, balance)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_ServerErrorExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetMerit(context.Background(), "simpleledger:qtest")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetBalance(context.Background(), "simpleledger:qtest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode balance response")
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(ClientConfig{
		BaseURL:         server.URL,
		RateLimit:       1000,
		RateBurst:       1000,
		Retry:           retry.Policy{Attempts: 1},
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := c.GetBalance(context.Background(), "simpleledger:qtest")
		require.Error(t, err)
	}

	_, err := c.GetBalance(context.Background(), "simpleledger:qtest")
	assert.Equal(t, ErrUnavailable, err)
	assert.Equal(t, http.StatusServiceUnavailable, ErrUnavailable.HTTPStatus())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(ClientConfig{
		BaseURL:         server.URL,
		RateLimit:       1000,
		RateBurst:       1000,
		Retry:           retry.Policy{Attempts: 1},
		BreakerFailures: 1,
	})

	for i := 0; i < 3; i++ {
		_, err := c.GetBalance(context.Background(), "simpleledger:qtest")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "m", errorMessage([]byte(`{"message":"m"}`), "fallback"))
	assert.Equal(t, "e", errorMessage([]byte(`{"error":"e"}`), "fallback"))
	assert.Equal(t, "plain", errorMessage([]byte("plain"), "fallback"))
	assert.Equal(t, "fallback", errorMessage(nil, "fallback"))
}

type stubSource struct {
	balance, merit float64
	err            error
}

func (s stubSource) GetBalance(ctx context.Context, address string) (float64, error) {
	return s.balance, s.err
}

func (s stubSource) GetMerit(ctx context.Context, address string) (float64, error) {
	return s.merit, s.err
}

func TestOracle_Delegates(t *testing.T) {
	o := New(NewVerifier(), stubSource{balance: 11, merit: 2})

	b, err := o.GetBalance(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 11.0, b)

	m, err := o.GetMerit(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, 2.0, m)

	key := testKey(t, 0x55)
	assert.True(t, o.VerifySignature(signedEntry(t, key)))
}
