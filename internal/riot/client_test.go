package riot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"rankbook/internal/ratelimit"
	"rankbook/internal/respcache"
)

const testSummonerBody = `{"id":"sum-1","accountId":"acc-1","puuid":"puuid-1","name":"Faker","profileIconId":29,"summonerLevel":512}`

const testLeagueBody = `[{"leagueId":"lg-1","summonerId":"sum-1","queueType":"RANKED_SOLO_5x5","tier":"GOLD","rank":"II","leaguePoints":40,"wins":120,"losses":110}]`

const testMasteryBody = `[{"championId":1,"championLevel":7,"championPoints":70000},
{"championId":2,"championLevel":7,"championPoints":60000},
{"championId":3,"championLevel":6,"championPoints":50000},
{"championId":4,"championLevel":6,"championPoints":40000},
{"championId":5,"championLevel":5,"championPoints":30000},
{"championId":6,"championLevel":5,"championPoints":20000},
{"championId":7,"championLevel":4,"championPoints":10000}]`

// fakeUpstream serves the three lookup resources and counts requests.
func fakeUpstream(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("api_key") == "" {
			t.Error("expected api_key query parameter")
		}
		switch {
		case pathHasPrefix(r.URL.Path, "/lol/summoner/v4/summoners/by-name/"):
			w.Write([]byte(testSummonerBody))
		case pathHasPrefix(r.URL.Path, "/lol/league/v4/entries/by-summoner/"):
			w.Write([]byte(testLeagueBody))
		case pathHasPrefix(r.URL.Path, "/lol/champion-mastery/v4/champion-masteries/by-summoner/"):
			w.Write([]byte(testMasteryBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func pathHasPrefix(path, prefix string) bool {
	return len(path) >= len(prefix) && path[:len(prefix)] == prefix
}

func newTestClient(t *testing.T, serverURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURLTemplate(serverURL),
		WithSleep(func(context.Context, time.Duration) error { return nil }),
	}, opts...)
	c, err := NewClient("RGAPI-test-key", ratelimit.New(), respcache.New(), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestLookupPlayer_HappyPath(t *testing.T) {
	server, calls := fakeUpstream(t)
	c := newTestClient(t, server.URL)

	res, err := c.LookupPlayer(context.Background(), "Faker", "kr")
	if err != nil {
		t.Fatalf("LookupPlayer: %v", err)
	}

	if res.Identity.ID != "sum-1" || res.Identity.SummonerLevel != 512 {
		t.Errorf("bad identity: %+v", res.Identity)
	}
	if len(res.Standings) != 1 || res.Standings[0].Tier != "GOLD" {
		t.Errorf("bad standings: %+v", res.Standings)
	}
	if len(res.Masteries) != 5 {
		t.Errorf("masteries should be truncated to 5, got %d", len(res.Masteries))
	}
	// Truncation keeps upstream order.
	if res.Masteries[0].ChampionID != 1 || res.Masteries[4].ChampionID != 5 {
		t.Errorf("masteries reordered: %+v", res.Masteries)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 upstream calls, got %d", got)
	}
}

func TestLookupPlayer_InvalidName(t *testing.T) {
	server, calls := fakeUpstream(t)
	c := newTestClient(t, server.URL)

	for _, name := range []string{"ab", "", "seventeen chars !!", "bad#name", "name_with_under"} {
		_, err := c.LookupPlayer(context.Background(), name, "euw1")
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("name %q: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("invalid names must not reach the network, got %d calls", got)
	}
}

func TestLookupPlayer_NotFoundNoRetry(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":{"message":"Data not found - summoner not found","status_code":404}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	_, err := c.LookupPlayer(context.Background(), "Ghost Player", "euw1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("404 must not be retried, got %d calls", got)
	}

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatal("expected a StatusError in the chain")
	}
	if se.Status != 404 || se.Detail == "" {
		t.Errorf("status error should carry upstream detail: %+v", se)
	}
}

func TestLookupPlayer_RateLimitedRetriesThenFails(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	var delays []time.Duration
	c := newTestClient(t, server.URL, WithSleep(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))

	_, err := c.LookupPlayer(context.Background(), "Faker", "kr")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited after exhausted retries, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}

	// Two backoff sleeps with strictly increasing delay: 1s*2^0 then 1s*2^1,
	// each plus jitter under 250ms.
	if len(delays) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(delays))
	}
	if delays[0] < 1*time.Second || delays[0] >= 1250*time.Millisecond {
		t.Errorf("first backoff out of range: %v", delays[0])
	}
	if delays[1] < 2*time.Second || delays[1] >= 2250*time.Millisecond {
		t.Errorf("second backoff out of range: %v", delays[1])
	}
	if delays[1] <= delays[0] {
		t.Errorf("backoff not strictly increasing: %v then %v", delays[0], delays[1])
	}
}

func TestLookupPlayer_ServerErrorRecovers(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		switch {
		case pathHasPrefix(r.URL.Path, "/lol/summoner/"):
			w.Write([]byte(testSummonerBody))
		case pathHasPrefix(r.URL.Path, "/lol/league/"):
			w.Write([]byte(testLeagueBody))
		default:
			w.Write([]byte(testMasteryBody))
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	res, err := c.LookupPlayer(context.Background(), "Faker", "kr")
	if err != nil {
		t.Fatalf("expected recovery after one 503, got %v", err)
	}
	if res.Identity.Name != "Faker" {
		t.Errorf("bad identity after retry: %+v", res.Identity)
	}
}

func TestLookupPlayer_AuthFailureTerminal(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	_, err := c.LookupPlayer(context.Background(), "Faker", "kr")
	if !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("expected ErrAuthFailure, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("403 must not be retried, got %d calls", got)
	}
}

func TestLookupPlayer_UnclassifiedStatusTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	_, err := c.LookupPlayer(context.Background(), "Faker", "kr")
	if !errors.Is(err, ErrUnclassified) {
		t.Fatalf("expected ErrUnclassified, got %v", err)
	}
}

func TestLookupPlayer_FailureAbortsWithoutPartialResult(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if pathHasPrefix(r.URL.Path, "/lol/summoner/") {
			w.Write([]byte(testSummonerBody))
			return
		}
		// Standings fetch fails terminally.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	res, err := c.LookupPlayer(context.Background(), "Faker", "kr")
	if err == nil {
		t.Fatal("expected failure when standings fetch fails")
	}
	if res != nil {
		t.Errorf("no partial result may escape, got %+v", res)
	}
	// Identity + failed standings; masteries never attempted.
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

func TestFetchResource_CacheHitSkipsNetworkAndQuota(t *testing.T) {
	server, calls := fakeUpstream(t)

	limiter := ratelimit.NewWithQuotas(3, time.Second, 100, 2*time.Minute)
	cache := respcache.New()
	c, err := NewClient("RGAPI-test-key", limiter, cache,
		WithBaseURLTemplate(server.URL),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	// First lookup fills the cache with all three resources.
	if _, err := c.LookupPlayer(context.Background(), "Faker", "kr"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", got)
	}

	// Repeat lookups are all cache hits: no new calls, and no quota burned
	// even though the 3-per-second limiter would have throttled 9 fetches.
	for i := 0; i < 3; i++ {
		if _, err := c.LookupPlayer(context.Background(), "FAKER", "kr"); err != nil {
			t.Fatalf("cached lookup %d: %v", i, err)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("cached lookups hit the network: %d calls", got)
	}
	short, _ := limiter.Pending(time.Now())
	if short > 3 {
		t.Errorf("cached lookups consumed quota: %d admissions", short)
	}
}

func TestBuildURL_UnresolvedPlaceholder(t *testing.T) {
	c := newTestClient(t, "http://example.invalid")

	_, err := c.buildURL(KindSummoner, "euw1", map[string]string{"wrongName": "x"})
	if err == nil {
		t.Fatal("expected error for unresolved placeholder")
	}
}

func TestBuildURL_EscapesPathParams(t *testing.T) {
	c := newTestClient(t, "https://{region}.api.riotgames.com")

	u, err := c.buildURL(KindSummoner, "euw1", map[string]string{"name": "Hide on bush"})
	if err != nil {
		t.Fatalf("buildURL: %v", err)
	}
	want := "https://euw1.api.riotgames.com/lol/summoner/v4/summoners/by-name/Hide%20on%20bush?api_key=RGAPI-test-key"
	if u != want {
		t.Errorf("url = %q, want %q", u, want)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid input", ErrInvalidInput, "Player names are 3-16 letters, digits or spaces."},
		{"not found with detail", &StatusError{Status: 404, Detail: "summoner not found", kind: ErrNotFound}, "No such player: summoner not found"},
		{"auth", &StatusError{Status: 401, kind: ErrAuthFailure}, "The API key was rejected; check your configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
