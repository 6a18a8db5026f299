package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	httpclient "github.com/natserract/infusionsoft/pkg/http"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestClientBaseURLAndDefaultQuery(t *testing.T) {
	var gotPath, gotToken, gotExtra string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		gotExtra = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := httpclient.NewClientWithConfig(httpclient.ClientConfig{
		BaseURL: server.URL + "/crm/rest/v1",
		Query:   map[string]string{"access_token": "tok"},
	}, zaptest.NewLogger(t))

	resp, err := client.Do(httpclient.RequestOptions{
		Method:  http.MethodGet,
		URL:     "/contacts",
		Query:   map[string]string{"limit": "5"},
		Context: context.Background(),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/crm/rest/v1/contacts", gotPath)
	require.Equal(t, "tok", gotToken)
	require.Equal(t, "5", gotExtra)
}

func TestClientFormPost(t *testing.T) {
	var form url.Values
	var contentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(body))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := httpclient.NewClientWithLogger(zaptest.NewLogger(t))
	_, err := client.Post(context.Background(), server.URL, map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}, url.Values{"grant_type": {"refresh_token"}, "refresh_token": {"r"}})
	require.NoError(t, err)
	require.Equal(t, "application/x-www-form-urlencoded", contentType)
	require.Equal(t, "refresh_token", form.Get("grant_type"))
	require.Equal(t, "r", form.Get("refresh_token"))
}

func TestClientRequestInterceptorRejects(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	rejected := errors.New("rejected")
	client := httpclient.NewClientWithLogger(zaptest.NewLogger(t))
	client.UseRequest(func(req *http.Request) error { return rejected })

	_, err := client.Get(context.Background(), server.URL, nil)
	require.ErrorIs(t, err, rejected)
	require.Zero(t, atomic.LoadInt32(&hits))
}

func TestClientResponseInterceptor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Quota", "9")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	var quota string
	client := httpclient.NewClientWithLogger(zaptest.NewLogger(t))
	client.UseResponse(func(resp *httpclient.Response) error {
		quota = resp.Headers.Get("X-Quota")
		return nil
	})

	_, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	require.Equal(t, "9", quota)
}

func TestClientStatusErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"not found"}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := httpclient.NewClientWithLogger(zaptest.NewLogger(t))

	t.Run("4xx", func(t *testing.T) {
		_, err := client.Get(context.Background(), server.URL+"/missing?access_token=secret", nil)
		var statusErr *httpclient.StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		require.Contains(t, string(statusErr.Body), "not found")
		require.NotContains(t, statusErr.URL, "secret")
	})

	t.Run("5xx is attempted once by default", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		_, err := client.Get(context.Background(), server.URL+"/flaky", nil)
		var statusErr *httpclient.StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		require.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("opt-in retries", func(t *testing.T) {
		atomic.StoreInt32(&hits, 0)
		retrying := httpclient.NewClientWithConfig(httpclient.ClientConfig{MaxTries: 3}, zaptest.NewLogger(t))
		_, err := retrying.Do(httpclient.RequestOptions{
			Method:          http.MethodGet,
			URL:             server.URL + "/flaky",
			InitialInterval: 1,
			MaxInterval:     1,
		})
		require.Error(t, err)
		require.Equal(t, int32(3), atomic.LoadInt32(&hits))
	})
}

func TestRedactURL(t *testing.T) {
	got := httpclient.RedactURL("https://api.infusionsoft.com/crm/xmlrpc/v1?access_token=abc")
	require.NotContains(t, got, "abc")
	require.Contains(t, got, "access_token=REDACTED")
	require.Equal(t, "https://x.test/a", httpclient.RedactURL("https://x.test/a"))
}
