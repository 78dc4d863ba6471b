package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got Payload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", time.Second)
	err := c.Send(context.Background(), Payload{ID: "n-1", Type: "payroll_generated", RecipientID: "emp-1", Title: "t"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "n-1", got.ID)
	assert.Equal(t, "emp-1", got.RecipientID)
}

func TestSendClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"unknown recipient"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", time.Second).Send(context.Background(), Payload{ID: "n-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown recipient")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendRetriesServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "", time.Second).Send(context.Background(), Payload{ID: "n-1"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendNotConfigured(t *testing.T) {
	c := NewClient("", "", 0)
	assert.False(t, c.Enabled())
	assert.ErrorIs(t, c.Send(context.Background(), Payload{}), ErrNotConfigured)
}

func TestSendWithClientCredentials(t *testing.T) {
	var tokenCalls int32
	var auths []string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"oauth-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/hook", func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusAccepted)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL+"/hook", "static", time.Second).WithClientCredentials(context.Background(), ClientCredentials{
		TokenURL:     srv.URL + "/token",
		ClientID:     "payroll",
		ClientSecret: "s3cret",
	})

	require.NoError(t, c.Send(context.Background(), Payload{ID: "n-1"}))
	require.NoError(t, c.Send(context.Background(), Payload{ID: "n-2"}))

	assert.Equal(t, []string{"Bearer oauth-token", "Bearer oauth-token"}, auths)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls))
}

func TestWithClientCredentials_IncompleteIsNoop(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "static", time.Second).WithClientCredentials(context.Background(), ClientCredentials{ClientID: "payroll"})
	require.NoError(t, c.Send(context.Background(), Payload{ID: "n-1"}))
	assert.Equal(t, "Bearer static", auth)
}
