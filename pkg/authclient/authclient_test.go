package authclient

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	accessKey     = "X-Access-Token"
	refreshKey    = "X-Refresh-Token"
	accessExpired = "IS-ACCESS-TOKEN-EXPIRED"
	refreshExp    = "IS-REFRESH-TOKEN-EXPIRED"
)

// authServer — минимальный сервер с семантикой сигнальных заголовков:
// valid — единственный принимаемый access, refreshable — refresh,
// по которому выдаётся новая пара.
type authServer struct {
	t *testing.T

	valid       atomic.Value // string
	refreshable atomic.Value // string

	wireCalls    atomic.Int32
	refreshCalls atomic.Int32
}

func newAuthServer(t *testing.T, access, refresh string) (*authServer, *httptest.Server) {
	t.Helper()

	s := &authServer{t: t}
	s.valid.Store(access)
	s.refreshable.Store(refresh)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", s.handleRefresh)
	mux.HandleFunc("/data", s.handleData)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func (s *authServer) handleData(w http.ResponseWriter, r *http.Request) {
	s.wireCalls.Add(1)

	if r.Header.Get(accessKey) != s.valid.Load().(string) {
		w.Header().Set(accessExpired, "true")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("echo:" + string(body)))
}

func (s *authServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.wireCalls.Add(1)
	s.refreshCalls.Add(1)

	if r.Header.Get(refreshKey) != s.refreshable.Load().(string) {
		w.Header().Set(refreshExp, "true")
		w.WriteHeader(http.StatusNotFound)
		return
	}

	s.valid.Store("access-2")
	s.refreshable.Store("refresh-2")
	w.Header().Set(accessKey, "access-2")
	w.Header().Set(refreshKey, "refresh-2")
	w.WriteHeader(http.StatusOK)
}

func newClient(srv *httptest.Server, src TokenSource, onExpired func()) *http.Client {
	return &http.Client{
		Transport: New(Options{
			Source:           src,
			RefreshURL:       srv.URL + "/auth/refresh",
			OnSessionExpired: onExpired,
		}),
	}
}

func TestRoundTrip_ValidAccess_SingleCall(t *testing.T) {
	t.Parallel()

	s, srv := newAuthServer(t, "access-1", "refresh-1")
	src := NewMemorySource(Tokens{Access: "access-1", Refresh: "refresh-1"})
	client := newClient(srv, src, nil)

	resp, err := client.Get(srv.URL + "/data")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), s.wireCalls.Load())
}

// Просроченный access: refresh и ровно один повтор — три сетевых вызова,
// вызывающий код видит только финальный 200.
func TestRoundTrip_ExpiredAccess_RefreshAndReplayOnce(t *testing.T) {
	t.Parallel()

	s, srv := newAuthServer(t, "access-2", "refresh-1")
	src := NewMemorySource(Tokens{Access: "access-stale", Refresh: "refresh-1"})
	client := newClient(srv, src, nil)

	resp, err := client.Get(srv.URL + "/data")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(3), s.wireCalls.Load())
	require.Equal(t, int32(1), s.refreshCalls.Load())

	// Пара в источнике обновлена.
	require.Equal(t, "access-2", src.Tokens().Access)
	require.Equal(t, "refresh-2", src.Tokens().Refresh)
}

func TestRoundTrip_ReplayRestoresBody(t *testing.T) {
	t.Parallel()

	s, srv := newAuthServer(t, "access-2", "refresh-1")
	src := NewMemorySource(Tokens{Access: "access-stale", Refresh: "refresh-1"})
	client := newClient(srv, src, nil)

	resp, err := client.Post(srv.URL+"/data", "text/plain", bytes.NewBufferString("payload"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "echo:payload", string(body))
	require.Equal(t, int32(3), s.wireCalls.Load())
}

// Refresh-токен тоже истёк: повтор не выполняется, наружу уходит исходный
// 401, токены сброшены, колбэк вызван один раз.
func TestRoundTrip_RefreshExpired_ReturnsOriginalResponse(t *testing.T) {
	t.Parallel()

	s, srv := newAuthServer(t, "access-2", "refresh-2")
	src := NewMemorySource(Tokens{Access: "access-stale", Refresh: "refresh-stale"})

	var expiredCalls atomic.Int32
	client := newClient(srv, src, func() { expiredCalls.Add(1) })

	resp, err := client.Get(srv.URL + "/data")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "true", resp.Header.Get(accessExpired))
	require.Equal(t, int32(2), s.wireCalls.Load())
	require.Equal(t, int32(1), expiredCalls.Load())
	require.Equal(t, Tokens{}, src.Tokens())
}

// Невосстановимое тело запроса повторить нельзя: отдаём исходный ответ.
func TestRoundTrip_NonReplayableBody_NoRetry(t *testing.T) {
	t.Parallel()

	s, srv := newAuthServer(t, "access-2", "refresh-1")
	src := NewMemorySource(Tokens{Access: "access-stale", Refresh: "refresh-1"})
	client := newClient(srv, src, nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/data", io.NopCloser(strings.NewReader("stream")))
	require.NoError(t, err)
	req.GetBody = nil // поток нельзя перечитать

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(1), s.wireCalls.Load())
}

func TestRoundTrip_RefreshEndpoint_Passthrough(t *testing.T) {
	t.Parallel()

	s, srv := newAuthServer(t, "access-1", "refresh-1")
	src := NewMemorySource(Tokens{Access: "access-1", Refresh: "refresh-1"})
	client := newClient(srv, src, nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/auth/refresh", nil)
	require.NoError(t, err)
	req.Header.Set(accessKey, "access-1")
	req.Header.Set(refreshKey, "refresh-1")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), s.refreshCalls.Load())
}

func TestMemorySource_StoreClear(t *testing.T) {
	t.Parallel()

	src := NewMemorySource(Tokens{})
	src.Store(Tokens{Access: "a", Refresh: "r"})
	require.Equal(t, Tokens{Access: "a", Refresh: "r"}, src.Tokens())

	src.Clear()
	require.Equal(t, Tokens{}, src.Tokens())
}
