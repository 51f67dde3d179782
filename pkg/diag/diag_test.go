package diag

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelString(t *testing.T) {
	names := map[Level]string{Trace: "trace", Debug: "debug", Info: "info", Warn: "warn", Error: "error"}
	for lvl, name := range names {
		assert.Equal(t, name, lvl.String())
		parsed, err := ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, lvl, parsed)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLocationString(t *testing.T) {
	loc := Location{Buffer: "main.tau", Row: 3, Col: 14}
	assert.Equal(t, "main.tau:3:14", loc.String())
}

func TestZapSinkFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sink := NewZapSink(Options{MinLevel: Trace, Stdout: &stdout, Stderr: &stderr})

	loc := Location{Buffer: "buf", Row: 1, Col: 2}
	sink.Log(Error, loc, "unexpected %q, was expecting %s", "+", "<expression>")
	sink.Log(Warn, loc, "careful")
	sink.Log(Trace, Location{Buffer: "buf"}, "entering %s", "decls")
	require.NoError(t, sink.Sync())

	assert.Equal(t, "buf:1:2 error: unexpected \"+\", was expecting <expression>\n", stderr.String())
	assert.Equal(t, "buf:1:2 warn: careful\nbuf:0:0 trace: entering decls\n", stdout.String())
}

func TestZapSinkMinLevel(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sink := NewZapSink(Options{MinLevel: Warn, Stdout: &stdout, Stderr: &stderr})

	sink.Log(Info, Location{}, "hidden")
	sink.Log(Debug, Location{}, "hidden")
	sink.Log(Warn, Location{Buffer: "b"}, "shown")

	assert.Equal(t, "b:0:0 warn: shown\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestZapSinkConcurrent(t *testing.T) {
	var stdout, stderr bytes.Buffer
	sink := NewZapSink(Options{Stdout: &stdout, Stderr: &stderr})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				sink.Log(Error, Location{Buffer: "c", Row: i, Col: j}, "e")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 400, bytes.Count(stderr.Bytes(), []byte("\n")))
	assert.Empty(t, stdout.String())
}

func TestRecorder(t *testing.T) {
	var forwarded []string
	next := SinkFunc(func(level Level, loc Location, format string, args ...any) {
		forwarded = append(forwarded, level.String())
	})

	rec := NewRecorder(next)
	rec.Log(Error, Location{Buffer: "a", Row: 0, Col: 4}, "bad %d", 1)
	rec.Log(Warn, Location{Buffer: "a"}, "meh")

	diags := rec.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, "a:0:4 error: bad 1", diags[0].String())
	assert.Equal(t, 1, rec.Errors())
	assert.Equal(t, 2, rec.Count(Warn))
	assert.Equal(t, []string{"error", "warn"}, forwarded)

	rec.Reset()
	assert.Empty(t, rec.Diagnostics())
}

func TestDiscardAndDefault(t *testing.T) {
	Discard.Log(Error, Location{}, "dropped %s", "quietly")

	prev := Default()
	require.NotNil(t, prev)

	rec := NewRecorder(nil)
	SetDefault(rec)
	defer SetDefault(prev)

	Default().Log(Info, Location{}, "hello")
	assert.Len(t, rec.Diagnostics(), 1)
}
