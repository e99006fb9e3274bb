package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore emulates the session endpoints of a graph store.
type fakeStore struct {
	*httptest.Server

	mu          sync.Mutex
	rec         fakeRecord
	closeStatus int
}

// fakeRecord is what the fake store has received.
type fakeRecord struct {
	opens      []url.Values
	generators map[string]url.Values
	queries    []string
	commits    int
	rollbacks  int
}

// recorded returns a copy of the received requests.
func (fs *fakeStore) recorded() fakeRecord {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	rec := fs.rec
	rec.opens = slices.Clone(fs.rec.opens)
	rec.queries = slices.Clone(fs.rec.queries)
	rec.generators = maps.Clone(fs.rec.generators)
	return rec
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	fs := &fakeStore{
		rec:         fakeRecord{generators: make(map[string]url.Values)},
		closeStatus: http.StatusNoContent,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /repositories/people/session", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		fs.mu.Lock()
		fs.rec.opens = append(fs.rec.opens, r.PostForm)
		fs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "%q", fs.URL+"/sessions/s1")
	})
	mux.HandleFunc("POST /sessions/s1/commit", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.rec.commits++
		fs.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /sessions/s1/rollback", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.rec.rollbacks++
		fs.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /sessions/s1/session/close", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		status := fs.closeStatus
		fs.mu.Unlock()
		w.WriteHeader(status)
	})
	mux.HandleFunc("PUT /sessions/s1/snaGenerators/{id}", func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.rec.generators[r.PathValue("id")] = r.URL.Query()
		fs.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /sessions/s1", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		fs.mu.Lock()
		fs.rec.queries = append(fs.rec.queries, r.PostForm.Get("query"))
		fs.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"names":["person","name"],"values":[`+
			`["<http://example.com/people/bob>","\"Bob\""],`+
			`["<http://example.com/people/carol>",null]]}`)
	})

	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

// agq runs a command against the fake store with the shared test config.
func (fs *fakeStore) agq(t *testing.T, cfgPath string, args ...string) (string, string, error) {
	t.Helper()
	base := []string{"--config", cfgPath, "--server", fs.URL, "--repository", "people"}
	return execute(t, append(base, args...)...)
}

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("namespaces:\n  foaf: http://xmlns.com/foaf/0.1/\n"), 0o644))
	return path
}

func TestSessionLifecycle(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	out, _, err := fs.agq(t, cfg, "session", "open", "--lifetime", "2m")
	require.NoError(t, err)
	assert.Contains(t, out, "Opened session default: "+fs.URL+"/sessions/s1")
	require.Len(t, fs.recorded().opens, 1)
	assert.Equal(t, "120", fs.recorded().opens[0].Get("lifetime"))
	assert.Equal(t, "false", fs.recorded().opens[0].Get("autoCommit"))

	out, _, err = fs.agq(t, cfg, "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)
	assert.Equal(t, "id1\n", out)

	out, _, err = fs.agq(t, cfg, "generator", "add",
		"--object-of", "<http://xmlns.com/foaf/0.1/member>",
		"--subject-of", "http://xmlns.com/foaf/0.1/knows")
	require.NoError(t, err)
	assert.Equal(t, "id2\n", out, "counter continues across invocations")

	assert.Equal(t, []string{"<http://xmlns.com/foaf/0.1/knows>"}, fs.recorded().generators["id1"]["undirected"])
	assert.Equal(t, []string{"<http://xmlns.com/foaf/0.1/member>"}, fs.recorded().generators["id2"]["objectOf"])
	assert.Equal(t, []string{"<http://xmlns.com/foaf/0.1/knows>"}, fs.recorded().generators["id2"]["subjectOf"])

	_, _, err = fs.agq(t, cfg, "commit")
	require.NoError(t, err)
	_, _, err = fs.agq(t, cfg, "rollback")
	require.NoError(t, err)
	assert.Equal(t, 1, fs.recorded().commits)
	assert.Equal(t, 1, fs.recorded().rollbacks)

	out, _, err = fs.agq(t, cfg, "query", queryPath("social.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "?person\t?name\nex:bob\t\"Bob\"\nex:carol\t\n", out)
	require.Len(t, fs.recorded().queries, 1)
	assert.Contains(t, fs.recorded().queries[0], "(ego-group-member !<http://example.com/people/alice> 2 id1 ?person)")

	out, _, err = fs.agq(t, cfg, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Session default (open)")
	assert.Contains(t, out, "last unique id: 2")
	assert.Contains(t, out, "generator id1 undirected=<http://xmlns.com/foaf/0.1/knows>")

	out, _, err = fs.agq(t, cfg, "session", "close")
	require.NoError(t, err)
	assert.Equal(t, "Closed session default\n", out)

	_, errOut, err := fs.agq(t, cfg, "commit")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeSessionClosed+"]")
	assert.Equal(t, 1, fs.recorded().commits, "no request after close")
}

func TestSessionOpen_ReopenAfterClose(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)
	_, _, err = fs.agq(t, cfg, "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)
	_, _, err = fs.agq(t, cfg, "session", "close")
	require.NoError(t, err)

	_, _, err = fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)
	out, _, err := fs.agq(t, cfg, "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)
	assert.Equal(t, "id1\n", out, "a new session starts a new counter")
}

func TestSessionOpen_AlreadyOpen(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	_, errOut, err := fs.agq(t, cfg, "session", "open")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeSessionOpen+"]")
	assert.Len(t, fs.recorded().opens, 1)
}

func TestSessionOpen_NamedSessions(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "--session", "a", "session", "open")
	require.NoError(t, err)
	_, _, err = fs.agq(t, cfg, "--session", "b", "session", "open")
	require.NoError(t, err)

	_, _, err = fs.agq(t, cfg, "--session", "a", "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)
	out, _, err := fs.agq(t, cfg, "--session", "b", "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)
	assert.Equal(t, "id1\n", out)
}

func TestSessionOpen_MissingRepository(t *testing.T) {
	isolate(t)

	_, errOut, err := execute(t, "--server", "http://localhost:10035", "session", "open")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeConfig+"]")
}

func TestCommit_NoSession(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, errOut, err := fs.agq(t, cfg, "commit")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeNoSession+"]")
	assert.Contains(t, errOut, "agq session open")
}

func TestSessionClose_ServerRefuses(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	fs.mu.Lock()
	fs.closeStatus = http.StatusInternalServerError
	fs.mu.Unlock()

	_, errOut, err := fs.agq(t, cfg, "session", "close")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeServer+"]")

	out, _, err := fs.agq(t, cfg, "session", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "(open)")

	_, _, err = fs.agq(t, cfg, "commit")
	assert.NoError(t, err, "session still usable")
}

func TestGeneratorAdd_InvalidPredicateConsumesID(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	_, errOut, err := fs.agq(t, cfg, "generator", "add", "--undirected", "nope:knows")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeOption+"]")
	assert.Empty(t, fs.recorded().generators)

	out, _, err := fs.agq(t, cfg, "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)
	assert.Equal(t, "id2\n", out)
}

func TestGeneratorAdd_JSON(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	out, _, err := fs.agq(t, cfg, "--format", "json", "generator", "add", "--object-of", "foaf:member")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   GeneratorView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "id1", resp.Data.ID)
	assert.Equal(t, []string{"<http://xmlns.com/foaf/0.1/member>"}, resp.Data.Params["objectOf"])
}

func TestQuery_Lazy(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	out, _, err := fs.agq(t, cfg, "query", "--lazy", queryPath("social.cue"))
	require.NoError(t, err)
	assert.Equal(t, "?person\t?name\nex:bob\t\"Bob\"\nex:carol\t\n", out)
}

func TestQuery_JSON(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	out, _, err := fs.agq(t, cfg, "--format", "json", "query", queryPath("social.json"))
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   QueryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"person", "name"}, resp.Data.Variables)
	require.Len(t, resp.Data.Solutions, 2)
	assert.Equal(t, map[string]string{
		"person": "<http://example.com/people/bob>",
		"name":   `"Bob"`,
	}, resp.Data.Solutions[0])
	assert.Equal(t, map[string]string{"person": "<http://example.com/people/carol>"}, resp.Data.Solutions[1])
}

func TestQuery_UnsupportedPatternSendsNothing(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	_, errOut, err := fs.agq(t, cfg, "query", queryPath("optional.yaml"))
	require.Error(t, err)
	assert.Contains(t, errOut, "Error ["+ErrCodeUnsupportedPattern+"]")
	assert.Empty(t, fs.recorded().queries)
}

func TestVerboseLogsRequests(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, errOut, err := fs.agq(t, cfg, "--verbose", "session", "open")
	require.NoError(t, err)
	assert.True(t, strings.Contains(errOut, "level=DEBUG") && strings.Contains(errOut, "request_id="),
		"debug request log expected, got %q", errOut)
}

func TestSessionForget(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)
	_, _, err = fs.agq(t, cfg, "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)

	_, errOut, err := fs.agq(t, cfg, "session", "forget")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "Error ["+ErrCodeSessionOpen+"]")

	_, _, err = fs.agq(t, cfg, "session", "close")
	require.NoError(t, err)
	out, _, err := fs.agq(t, cfg, "session", "forget")
	require.NoError(t, err)
	assert.Equal(t, "Forgot session default\n", out)

	_, errOut, err = fs.agq(t, cfg, "session", "status")
	require.Error(t, err)
	assert.Contains(t, errOut, "Error ["+ErrCodeNoSession+"]")

	_, _, err = fs.agq(t, cfg, "session", "open")
	require.NoError(t, err, "a forgotten name can be opened again")
	out, _, err = fs.agq(t, cfg, "generator", "add", "--undirected", "foaf:knows")
	require.NoError(t, err)
	assert.Equal(t, "id1\n", out)
}

func TestSessionForget_Force(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)

	out, _, err := fs.agq(t, cfg, "session", "forget", "--force")
	require.NoError(t, err)
	assert.Equal(t, "Forgot session default\n", out)

	_, errOut, err := fs.agq(t, cfg, "commit")
	require.Error(t, err)
	assert.Contains(t, errOut, "Error ["+ErrCodeNoSession+"]")
	assert.Zero(t, fs.recorded().commits)
}

func TestMetricsFlag(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	out, errOut, err := fs.agq(t, cfg, "--metrics", "session", "open")
	require.NoError(t, err)
	assert.NotContains(t, out, "agraph_", "metrics go to stderr")
	assert.Contains(t, errOut, "# TYPE agraph_requests_total counter")
	assert.Contains(t, errOut, `agraph_requests_total{code="200",method="POST"}`)
	assert.Contains(t, errOut, "agraph_request_duration_seconds_bucket")

	_, errOut, err = fs.agq(t, cfg, "session", "status")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "agraph_requests_total")
}

func TestMetricsFlag_WrittenOnFailure(t *testing.T) {
	isolate(t)
	cfg := writeConfig(t)
	fs := newFakeStore(t)

	_, _, err := fs.agq(t, cfg, "session", "open")
	require.NoError(t, err)
	fs.mu.Lock()
	fs.closeStatus = http.StatusInternalServerError
	fs.mu.Unlock()

	_, errOut, err := fs.agq(t, cfg, "--metrics", "session", "close")
	require.Error(t, err)
	assert.Contains(t, errOut, "Error ["+ErrCodeServer+"]")
	assert.Contains(t, errOut, `agraph_requests_total{code="500",method="POST"}`)
}
