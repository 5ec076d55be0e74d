package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/corey/adsaver/internal/adapters/socket"
	"github.com/corey/adsaver/internal/domain/combo"
	"github.com/corey/adsaver/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService implements socket.Service for testing.
type stubService struct {
	last    []string
	saved   map[string]*ports.KeywordList
	deleted []socket.ListRef
}

func newStubService() *stubService {
	return &stubService{saved: make(map[string]*ports.KeywordList)}
}

func (s *stubService) Generate(p socket.GenerateParams) (*socket.GenerateResult, error) {
	cfg := combo.DefaultConfig()
	if p.Config != nil {
		cfg = *p.Config
	}
	key, err := combo.ParseSortKey(p.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalid, err)
	}
	out := combo.Generate(combo.ParseColumns(p.Columns[0], p.Columns[1], p.Columns[2]), cfg)
	s.last = out
	return &socket.GenerateResult{Keywords: combo.Sort(out, key), Count: len(out), Sort: key.String()}, nil
}

func (s *stubService) Sort(p socket.SortParams) (*socket.SortResult, error) {
	key, err := combo.ParseSortKey(p.Sort)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalid, err)
	}
	in := p.Keywords
	if len(in) == 0 {
		in = s.last
	}
	out := combo.Sort(in, key)
	return &socket.SortResult{Keywords: out, Count: len(out), Sort: key.String()}, nil
}

func (s *stubService) Health() *socket.HealthResult {
	return &socket.HealthResult{Status: "ok", Generations: 3, Campaigns: 1}
}

func (s *stubService) SaveList(p socket.SaveListParams) (*ports.ListSummary, error) {
	if p.Campaign == "" || p.AdGroup == "" {
		return nil, fmt.Errorf("%w: campaign and ad group required", ports.ErrInvalid)
	}
	l := &ports.KeywordList{ID: "l1", Name: p.Name, Campaign: p.Campaign, AdGroup: p.AdGroup, Keywords: p.Keywords}
	s.saved[l.ID] = l
	sum := l.Summary()
	return &sum, nil
}

func (s *stubService) GetList(ref socket.ListRef) (*ports.KeywordList, error) {
	l, ok := s.saved[ref.ID]
	if !ok || l.Campaign != ref.Campaign || l.AdGroup != ref.AdGroup {
		return nil, fmt.Errorf("list %s: %w", ref.ID, ports.ErrNotFound)
	}
	return l, nil
}

func (s *stubService) Lists(p socket.ListsParams) (*socket.ListsResult, error) {
	if p.Campaign == "" {
		return &socket.ListsResult{Campaigns: []string{"spring"}, Count: 1}, nil
	}
	var out []ports.ListSummary
	for _, l := range s.saved {
		if l.Campaign == p.Campaign && (p.AdGroup == "" || l.AdGroup == p.AdGroup) {
			out = append(out, l.Summary())
		}
	}
	return &socket.ListsResult{Lists: out, Count: len(out)}, nil
}

func (s *stubService) DeleteList(ref socket.ListRef) error {
	s.deleted = append(s.deleted, ref)
	delete(s.saved, ref.ID)
	return nil
}

func setupTestServer(t *testing.T) (*httptest.Server, *stubService) {
	t.Helper()
	svc := newStubService()
	ts := httptest.NewServer(NewServer(svc, "", nil).Handler())
	t.Cleanup(ts.Close)
	return ts, svc
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

// =============================================================================
// API endpoints
// =============================================================================

func TestHealthEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var result socket.HealthResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	assert.Equal(t, uint64(3), result.Generations)
}

func TestGenerateEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t)

	cfg := combo.Config{
		Mode:       combo.ModePairsOnly,
		Options:    combo.Options{NoShuffle: true},
		MatchTypes: combo.MatchTypes{Exact: true},
	}
	resp := postJSON(t, ts.URL+"/api/generate", socket.GenerateParams{
		Columns: [3]string{"red\nblue", "shoes", ""},
		Config:  &cfg,
	})
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var result socket.GenerateResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"[red shoes]", "[blue shoes]"}, result.Keywords)
	assert.Equal(t, 2, result.Count)
}

func TestGenerateEndpoint_ModeByName(t *testing.T) {
	ts, _ := setupTestServer(t)

	body := `{"columns":["a","b","c"],"config":{"mode":"triples-only-from-1-2-3","options":{"no_shuffle":true},"match_types":{"broad":true}}}`
	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var result socket.GenerateResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"a b c"}, result.Keywords)
}

func TestGenerateEndpoint_BadBody(t *testing.T) {
	ts, _ := setupTestServer(t)

	for name, body := range map[string]string{
		"malformed":     `{"columns":`,
		"unknown field": `{"colums":["a","b",""]}`,
		"unknown mode":  `{"config":{"mode":"quads"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestSortEndpoint(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp := postJSON(t, ts.URL+"/api/generate", socket.GenerateParams{Columns: [3]string{"zz", "a", ""}})
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/sort", socket.SortParams{Sort: "alpha-desc"})
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var result socket.SortResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"zz a", "zz", "a zz", "a"}, result.Keywords)
	assert.Equal(t, "alpha-desc", result.Sort)
}

func TestSortEndpoint_InvalidKey(t *testing.T) {
	ts, _ := setupTestServer(t)
	resp := postJSON(t, ts.URL+"/api/sort", socket.SortParams{Sort: "shuffle"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListsEndpoints(t *testing.T) {
	ts, svc := setupTestServer(t)

	resp := postJSON(t, ts.URL+"/api/lists", socket.SaveListParams{
		Name: "v1", Campaign: "spring", AdGroup: "shoes", Keywords: []string{"red shoes"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sum ports.ListSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sum))
	resp.Body.Close()
	assert.Equal(t, 1, sum.Count)

	resp, err := http.Get(ts.URL + "/api/lists?campaign=spring&ad_group=shoes")
	require.NoError(t, err)
	var lists socket.ListsResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lists))
	resp.Body.Close()
	assert.Equal(t, 1, lists.Count)

	resp, err = http.Get(ts.URL + "/api/lists")
	require.NoError(t, err)
	lists = socket.ListsResult{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lists))
	resp.Body.Close()
	assert.Equal(t, []string{"spring"}, lists.Campaigns)

	resp, err = http.Get(ts.URL + "/api/lists/spring/shoes/" + sum.ID)
	require.NoError(t, err)
	var got ports.KeywordList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, []string{"red shoes"}, got.Keywords)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/lists/spring/shoes/"+sum.ID, nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, []socket.ListRef{{Campaign: "spring", AdGroup: "shoes", ID: sum.ID}}, svc.deleted)

	resp, err = http.Get(ts.URL + "/api/lists/spring/shoes/" + sum.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveListEndpoint_MissingHierarchy(t *testing.T) {
	ts, _ := setupTestServer(t)
	resp := postJSON(t, ts.URL+"/api/lists", socket.SaveListParams{Name: "orphan"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// Static page + lifecycle
// =============================================================================

func TestPageHTML(t *testing.T) {
	ts, _ := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/static/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	ct := resp.Header.Get("Content-Type")
	assert.True(t, strings.HasPrefix(ct, "text/html"), "content-type should be text/html, got %s", ct)
}

func TestRootRedirects(t *testing.T) {
	ts, _ := setupTestServer(t)

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/static/", resp.Header.Get("Location"))
}

func TestStartWritesPortFile(t *testing.T) {
	portFile := filepath.Join(t.TempDir(), "run", "http.port")
	srv := NewServer(newStubService(), portFile, nil)
	require.NoError(t, srv.Start("127.0.0.1", 0))

	data, err := os.ReadFile(portFile)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d", srv.Port()), string(data))

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/health", srv.Port()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	srv.Stop()
	srv.Stop()
	_, err = os.Stat(portFile)
	assert.True(t, os.IsNotExist(err))
}

func TestDefaultPort(t *testing.T) {
	port := DefaultPort("/home/user/project")
	assert.GreaterOrEqual(t, port, 19000)
	assert.Less(t, port, 20000)

	assert.Equal(t, port, DefaultPort("/home/user/project"))

	port3 := DefaultPort("/home/user/other")
	assert.GreaterOrEqual(t, port3, 19000)
	assert.Less(t, port3, 20000)
}
