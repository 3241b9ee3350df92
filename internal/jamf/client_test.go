package jamf

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/brysontyrrell/voltron/internal/errors"
	"github.com/brysontyrrell/voltron/internal/logging"
)

func testLogger() logging.ServiceLogger {
	return logging.NewWatermillServiceLogger(watermill.NopLogger{})
}

func TestClient_UpdateRecord(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotType   string
		gotBody   []byte
		gotUser   string
		gotPass   string
		calls     int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		gotUser, gotPass, _ = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := New(srv.URL, "api-user", "api-pass", "Computers", testLogger())

	err := client.UpdateRecord(context.Background(), "C02ABC123", []byte("<computer></computer>"))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/JSSResource/computers/serialnumber/C02ABC123", gotPath)
	assert.Equal(t, "text/xml", gotType)
	assert.Equal(t, "<computer></computer>", string(gotBody))
	assert.Equal(t, "api-user", gotUser)
	assert.Equal(t, "api-pass", gotPass)
}

func TestClient_UpdateRecord_Rejected(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	client := New(srv.URL, "api-user", "api-pass", "computers", testLogger())

	err := client.UpdateRecord(context.Background(), "C02ABC123", []byte("<computer></computer>"))
	require.Error(t, err)
	assert.True(t, errspkg.IsTransport(err, errspkg.KindRejected))
	assert.Equal(t, 1, calls, "a rejected update is never retried")
}

func TestClient_UpdateRecord_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := New(srv.URL, "api-user", "api-pass", "computers", testLogger())

	err := client.UpdateRecord(context.Background(), "C02ABC123", []byte("<computer></computer>"))
	require.Error(t, err)
	assert.True(t, errspkg.IsTransport(err, errspkg.KindUnreachable))
}

func TestClient_FetchObject(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAccept string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"computer_group": {"id": 7}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "api-user", "api-pass", "computers", testLogger())

	body, err := client.FetchObject(context.Background(), "computergroups", "7")
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/JSSResource/computergroups/id/7", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, `{"computer_group": {"id": 7}}`, string(body))
}

func TestClient_FetchObject_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(srv.URL, "api-user", "api-pass", "computers", testLogger())

	body, err := client.FetchObject(context.Background(), "computergroups", "7")
	require.Error(t, err)
	assert.Nil(t, body)
	assert.True(t, errspkg.IsTransport(err, errspkg.KindRejected))
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{domain: "jss.example.org", want: "https://jss.example.org"},
		{domain: "jss.example.org/", want: "https://jss.example.org"},
		{domain: "https://jss.example.org", want: "https://jss.example.org"},
		{domain: "http://127.0.0.1:8080", want: "http://127.0.0.1:8080"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, baseURL(tt.domain), "domain %q", tt.domain)
	}
}
