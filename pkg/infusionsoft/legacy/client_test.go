package ifslegacy_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
	ifslegacy "github.com/natserract/infusionsoft/pkg/infusionsoft/legacy"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const okResponse = `<?xml version="1.0" encoding="UTF-8"?>
<methodResponse><params><param><value><boolean>1</boolean></value></param></params></methodResponse>`

const invalidKeyResponse = `<?xml version="1.0" encoding="UTF-8"?>
<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>2</int></value></member>
<member><name>faultString</name><value><string>[InvalidKey]Invalid Key: The key passed up for authentication was not valid</string></value></member>
</struct></value></fault></methodResponse>`

// capture records every XML-RPC request body and answers with response.
func capture(t *testing.T, response string) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		mu.Unlock()
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

// paramValues returns the text of each <param> in an encoded method call.
func paramValues(body string) []string {
	var values []string
	for _, part := range strings.Split(body, "<param>")[1:] {
		part = part[:strings.Index(part, "</param>")]
		for strings.Contains(part, "<") {
			start := strings.Index(part, "<")
			end := strings.Index(part[start:], ">")
			part = part[:start] + part[start+end+1:]
		}
		values = append(values, strings.TrimSpace(part))
	}
	return values
}

func TestPrivateKeyIsPrepended(t *testing.T) {
	srv, bodies := capture(t, okResponse)

	client, err := ifslegacy.NewWithLogger(&ifslegacy.Config{
		AppName:    "ab123",
		PrivateKey: "SECRET",
		URL:        srv.URL,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	reply, err := client.Request(context.Background(), "Foo.bar", 1, 2)
	require.NoError(t, err)
	require.Equal(t, true, reply)

	require.Len(t, bodies(), 1)
	require.Contains(t, bodies()[0], "<methodName>Foo.bar</methodName>")
	require.Equal(t, []string{"SECRET", "1", "2"}, paramValues(bodies()[0]))
}

func TestServicesCallThroughPipeline(t *testing.T) {
	srv, bodies := capture(t, okResponse)

	client, err := ifslegacy.NewWithLogger(&ifslegacy.Config{PrivateKey: "SECRET", URL: srv.URL}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	ok, err := client.Contacts.AddToGroup(context.Background(), 10, 20)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"SECRET", "10", "20"}, paramValues(bodies()[0]))

	_, err = client.Contacts.Load(context.Background(), 10, nil)
	require.ErrorIs(t, err, apierror.ErrInvalidParameter)
	require.Len(t, bodies(), 1)
}

func TestInvalidKeyFault(t *testing.T) {
	srv, _ := capture(t, invalidKeyResponse)

	client, err := ifslegacy.NewWithLogger(&ifslegacy.Config{PrivateKey: "WRONG", URL: srv.URL}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Request(context.Background(), "DataService.echo", "hi")
	require.ErrorIs(t, err, apierror.ErrInvalidKey)

	var rpcErr *apierror.RPCError
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, 2, rpcErr.FaultCode)
	require.Contains(t, rpcErr.FaultString, "[InvalidKey]")
}

func TestConfig(t *testing.T) {
	t.Run("endpoint from app name", func(t *testing.T) {
		cfg := &ifslegacy.Config{AppName: "ab123", PrivateKey: "k"}
		require.NoError(t, cfg.Validate())
		require.Equal(t, "https://ab123.infusionsoft.com/api/xmlrpc", cfg.Endpoint())
	})

	t.Run("missing fields", func(t *testing.T) {
		require.EqualError(t, (&ifslegacy.Config{PrivateKey: "k"}).Validate(), "IFS_APP_NAME is required")
		require.EqualError(t, (&ifslegacy.Config{AppName: "ab123"}).Validate(), "IFS_PRIVATE_KEY is required")

		_, err := ifslegacy.NewWithLogger(&ifslegacy.Config{AppName: "ab123"}, zaptest.NewLogger(t))
		require.Error(t, err)
	})

	t.Run("load from environment", func(t *testing.T) {
		t.Setenv("IFS_APP_NAME", "zz999")
		t.Setenv("IFS_PRIVATE_KEY", "env-key")
		t.Setenv("IFS_LEGACY_XMLRPC_URL", "")

		cfg, err := ifslegacy.LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "zz999", cfg.AppName)
		require.Equal(t, "env-key", cfg.PrivateKey)
		require.Equal(t, "https://zz999.infusionsoft.com/api/xmlrpc", cfg.Endpoint())
	})
}
