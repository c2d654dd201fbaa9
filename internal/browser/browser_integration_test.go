//go:build integration

package browser_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetrun/internal/browser"
	"sheetrun/internal/runner"
	"sheetrun/internal/testcase"
)

// translatorPage mimics the target site: a titled document, a Singlish
// textarea, an upper-case "SINHALA" label and an output box that shows a
// placeholder until it updates shortly after input.
const translatorPage = `<!doctype html>
<html>
<head>
	<meta charset="utf-8">
	<title>Singlish to Sinhala Translator</title>
	<script>/* Sinhala font preload */</script>
</head>
<body>
	<textarea placeholder="Input Your Singlish Text Here."></textarea>
	<button>Clear</button>
	<div><span>SINHALA</span><div id="out">Translation appears here</div></div>
	<script>
		// Sinhala lookup table
		const dict = { "kohomada": "කොහොමද", "mama": "මම" };
		const box = document.querySelector("textarea");
		box.addEventListener("input", () => {
			const v = box.value.trim();
			setTimeout(() => {
				document.getElementById("out").textContent = dict[v] || "";
			}, 150);
		});
	</script>
</body>
</html>`

func newTranslatorServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, translatorPage)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func startManager(t *testing.T) *browser.SessionManager {
	t.Helper()
	cfg := browser.DefaultConfig()
	cfg.Headless = true
	cfg.NavigationTimeoutMs = 10000
	cfg.ActionTimeoutMs = 5000

	sm := browser.NewSessionManager(cfg, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, sm.Start(ctx), "Failed to start browser")

	t.Cleanup(func() {
		if err := sm.Shutdown(context.Background()); err != nil {
			t.Logf("Shutdown error: %v", err)
		}
	})
	return sm
}

func TestSessionManager_RunsSuite_Integration(t *testing.T) {
	ts := newTranslatorServer(t)
	sm := startManager(t)

	suite := []testcase.Descriptor{
		{ID: "POS_FUN_001", Name: "Basic greeting", URL: ts.URL, Input: "kohomada", ExpectedOutput: "කොහොමද", Category: testcase.Positive},
		{ID: "NEG_FUN_001", Name: "Unknown word", URL: ts.URL, Input: "qqq", Category: testcase.Negative},
		{ID: "POS_UI_001", Name: "Layout", URL: ts.URL, Input: "mama", Category: testcase.Positive | testcase.UI},
		{ID: "POS_FUN_002", Name: "Wrong expectation", URL: ts.URL, Input: "mama", ExpectedOutput: "අම්මා", Category: testcase.Positive},
	}

	r := &runner.Runner{Engine: runner.NewEngine(nil), Opener: sm, Workers: 2}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	results, sum, err := r.Run(ctx, suite)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for _, res := range results[:3] {
		assert.True(t, res.Passed(), "%s: %s", res.Descriptor.Title(), res.Reason())
	}
	assert.Equal(t, runner.StatusFailed, results[3].Status())
	assert.Equal(t, "මම", results[3].Actual)
	assert.Equal(t, 3, sum.Passed)
	assert.Equal(t, 0, sm.OpenPages(), "pages are released after each case")
}

func TestSessionManager_MissingOutput_Integration(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><textarea placeholder="Input Your Singlish Text Here."></textarea></body></html>`)
	}))
	defer ts.Close()

	cfg := browser.DefaultConfig()
	cfg.ActionTimeoutMs = 500
	sm := browser.NewSessionManager(cfg, nil)
	defer sm.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	page, release, err := sm.OpenPage(ctx)
	require.NoError(t, err)
	defer release()

	res := runner.NewEngine(nil).Execute(ctx, testcase.Descriptor{ID: "POS_FUN_1", URL: ts.URL, Input: "mama"}, page)
	var ce *runner.CaseError
	require.ErrorAs(t, res.Err, &ce)
	assert.Equal(t, runner.StageLocate, ce.Stage)
}
