// authclient — клиентская обвязка для todo-сервиса: http.RoundTripper,
// который прозрачно прикладывает access-токен к каждому запросу и ровно
// один раз обновляет пару по сигнальному заголовку об истечении access.
//
// Контракт с сервером:
//   - access просрочен — ответ несёт заголовок IS-ACCESS-TOKEN-EXPIRED;
//     транспорт вызывает /auth/refresh и повторяет исходный запрос один раз
//     (не более трёх сетевых вызовов на логический запрос);
//   - refresh просрочен — ответ refresh несёт IS-REFRESH-TOKEN-EXPIRED;
//     токены сбрасываются, повтор не выполняется, клиенту возвращается
//     исходный ответ (дальше нужен новый логин).
package authclient

import (
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Tokens — текущая пара токенов клиента.
type Tokens struct {
	Access  string
	Refresh string
}

// TokenSource хранит пару токенов между запросами.
// Реализация обязана быть потокобезопасной.
type TokenSource interface {
	// Tokens возвращает текущую пару (пустые строки — пары нет).
	Tokens() Tokens
	// Store сохраняет свежую пару.
	Store(t Tokens)
	// Clear сбрасывает пару (сессия завершена).
	Clear()
}

// MemorySource — потокобезопасное in-memory хранилище пары токенов.
type MemorySource struct {
	mu sync.RWMutex
	t  Tokens
}

func NewMemorySource(t Tokens) *MemorySource {
	return &MemorySource{t: t}
}

func (s *MemorySource) Tokens() Tokens {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t
}

func (s *MemorySource) Store(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = t
}

func (s *MemorySource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = Tokens{}
}

// Options — параметры транспорта. Имена заголовков должны совпадать
// с конфигурацией сервера; нулевые значения заполняются умолчаниями.
type Options struct {
	// Base — нижележащий транспорт (по умолчанию http.DefaultTransport).
	Base http.RoundTripper
	// Source — хранилище пары токенов (обязательно).
	Source TokenSource
	// RefreshURL — абсолютный URL эндпойнта обновления пары.
	RefreshURL string

	AccessTokenKey       string // по умолчанию "X-Access-Token"
	RefreshTokenKey      string // по умолчанию "X-Refresh-Token"
	AccessExpiredHeader  string // по умолчанию "IS-ACCESS-TOKEN-EXPIRED"
	RefreshExpiredHeader string // по умолчанию "IS-REFRESH-TOKEN-EXPIRED"

	// OnSessionExpired вызывается один раз на запрос, когда refresh-токен
	// признан сервером истёкшим (опционально).
	OnSessionExpired func()
}

// Transport — http.RoundTripper с автоматическим обновлением пары токенов.
type Transport struct {
	base       http.RoundTripper
	source     TokenSource
	refreshURL string

	accessKey     string
	refreshKey    string
	accessExpired string
	refreshExp    string

	onSessionExpired func()

	// сериализует refresh между конкурентными запросами.
	refreshMu sync.Mutex
}

// New собирает транспорт. Паникует при отсутствии Source или RefreshURL:
// это ошибки программирования, а не рантайма.
func New(opts Options) *Transport {
	if opts.Source == nil {
		panic("authclient: Options.Source is required")
	}
	if opts.RefreshURL == "" {
		panic("authclient: Options.RefreshURL is required")
	}

	t := &Transport{
		base:             opts.Base,
		source:           opts.Source,
		refreshURL:       opts.RefreshURL,
		accessKey:        opts.AccessTokenKey,
		refreshKey:       opts.RefreshTokenKey,
		accessExpired:    opts.AccessExpiredHeader,
		refreshExp:       opts.RefreshExpiredHeader,
		onSessionExpired: opts.OnSessionExpired,
	}

	if t.base == nil {
		t.base = http.DefaultTransport
	}
	if t.accessKey == "" {
		t.accessKey = "X-Access-Token"
	}
	if t.refreshKey == "" {
		t.refreshKey = "X-Refresh-Token"
	}
	if t.accessExpired == "" {
		t.accessExpired = "IS-ACCESS-TOKEN-EXPIRED"
	}
	if t.refreshExp == "" {
		t.refreshExp = "IS-REFRESH-TOKEN-EXPIRED"
	}

	return t
}

// RoundTrip выполняет запрос, при необходимости обновляя пару токенов
// и повторяя исходный запрос ровно один раз.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Запросы к самому refresh-эндпойнту идут насквозь: их формирует
	// либо doRefresh ниже, либо вызывающий код со своими токенами.
	if req.URL.String() == t.refreshURL {
		return t.base.RoundTrip(req)
	}

	tokens := t.source.Tokens()

	first := cloneRequest(req)
	if tokens.Access != "" {
		first.Header.Set(t.accessKey, tokens.Access)
	}

	resp, err := t.base.RoundTrip(first)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get(t.accessExpired) == "" {
		return resp, nil
	}

	// Повтор возможен только если тело запроса восстановимо.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	fresh, refreshErr := t.refresh(req, tokens)
	if refreshErr != nil {
		// Сессия истекла или refresh не удался: отдаём исходный ответ,
		// чтобы вызывающий код увидел 401 сервера, а не ошибку транспорта.
		return resp, nil
	}

	// Исходный ответ больше не нужен.
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	resp.Body.Close()              //nolint:errcheck

	retry := cloneRequest(req)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("authclient: restore request body: %w", err)
		}
		retry.Body = body
	}
	retry.Header.Set(t.accessKey, fresh.Access)

	return t.base.RoundTrip(retry)
}

// refresh выполняет один вызов refresh-эндпойнта под мьютексом.
// Если другой запрос уже успел обновить пару, сетевой вызов не делается.
func (t *Transport) refresh(orig *http.Request, seen Tokens) (Tokens, error) {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	// Пара уже обновлена конкурентным запросом.
	if cur := t.source.Tokens(); cur.Access != "" && cur != seen {
		return cur, nil
	}

	if seen.Refresh == "" {
		return Tokens{}, fmt.Errorf("authclient: no refresh token")
	}

	req, err := http.NewRequestWithContext(orig.Context(), http.MethodPost, t.refreshURL, nil)
	if err != nil {
		return Tokens{}, fmt.Errorf("authclient: build refresh request: %w", err)
	}
	req.Header.Set(t.accessKey, seen.Access)
	req.Header.Set(t.refreshKey, seen.Refresh)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return Tokens{}, fmt.Errorf("authclient: refresh call: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()              //nolint:errcheck
	}()

	if resp.Header.Get(t.refreshExp) != "" {
		t.source.Clear()
		if t.onSessionExpired != nil {
			t.onSessionExpired()
		}
		return Tokens{}, fmt.Errorf("authclient: refresh token expired")
	}

	if resp.StatusCode != http.StatusOK {
		return Tokens{}, fmt.Errorf("authclient: refresh status %d", resp.StatusCode)
	}

	fresh := Tokens{
		Access:  resp.Header.Get(t.accessKey),
		Refresh: resp.Header.Get(t.refreshKey),
	}
	if fresh.Access == "" || fresh.Refresh == "" {
		return Tokens{}, fmt.Errorf("authclient: refresh response without tokens")
	}

	t.source.Store(fresh)
	return fresh, nil
}

// cloneRequest делает неглубокую копию запроса с копией заголовков.
func cloneRequest(r *http.Request) *http.Request {
	out := r.Clone(r.Context())
	return out
}
