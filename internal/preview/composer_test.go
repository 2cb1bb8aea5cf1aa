package preview

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/varunrmantri23/nexacode/internal/clock"
	"github.com/varunrmantri23/nexacode/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu       sync.Mutex
	docs     []string
	versions []uint64
}

func (r *recorder) record(doc string, version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
	r.versions = append(r.versions, version)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.docs...)
}

func newTestComposer(t *testing.T) (*Composer, *clock.Fake, *recorder) {
	t.Helper()
	clk := clock.NewFake()
	rec := &recorder{}
	c := New(WithClock(clk), OnChange(rec.record))
	t.Cleanup(c.Close)
	return c, clk, rec
}

func TestDebounceCoalescesBurst(t *testing.T) {
	c, clk, rec := newTestComposer(t)

	values := []string{"<p>h</p>", "<p>hi</p>", "<p>hi!</p>", "<p>hi!!</p>"}
	for _, v := range values {
		c.Update(core.BufferMarkup, v)
		clk.Advance(100 * time.Millisecond)
		assert.Equal(t, "", c.Settled(core.BufferMarkup), "settled value must stay stale during the burst")
	}

	clk.Advance(DefaultQuiescence)
	require.Equal(t, values[len(values)-1], c.Settled(core.BufferMarkup))

	docs := rec.all()
	require.Len(t, docs, 1)
	for _, intermediate := range values[:len(values)-1] {
		assert.NotContains(t, docs[0], intermediate+"\n", "intermediate value leaked into the document")
	}
	assert.Contains(t, docs[0], values[len(values)-1])
}

func TestSettleFiresExactlyAtQuiescence(t *testing.T) {
	c, clk, _ := newTestComposer(t)

	c.Update(core.BufferStyles, "a{}")
	clk.Advance(DefaultQuiescence - time.Millisecond)
	assert.Equal(t, "", c.Settled(core.BufferStyles))
	assert.True(t, c.Pending())

	clk.Advance(time.Millisecond)
	assert.Equal(t, "a{}", c.Settled(core.BufferStyles))
	assert.False(t, c.Pending())
}

func TestBuffersSettleIndependently(t *testing.T) {
	c, clk, _ := newTestComposer(t)

	c.Update(core.BufferMarkup, "<p>m</p>")
	c.Update(core.BufferStyles, "p{}")
	clk.Advance(DefaultQuiescence)

	c.Update(core.BufferScript, "alert(1)")
	clk.Advance(DefaultQuiescence / 2)
	c.Update(core.BufferScript, "alert(2)")
	clk.Advance(DefaultQuiescence)

	assert.Equal(t, "<p>m</p>", c.Settled(core.BufferMarkup))
	assert.Equal(t, "p{}", c.Settled(core.BufferStyles))
	assert.Equal(t, "alert(2)", c.Settled(core.BufferScript))
}

func TestScriptBurstDoesNotDelayMarkup(t *testing.T) {
	c, clk, _ := newTestComposer(t)

	c.Update(core.BufferMarkup, "<p>m</p>")
	for i := 0; i < 5; i++ {
		c.Update(core.BufferScript, fmt.Sprintf("step(%d)", i))
		clk.Advance(100 * time.Millisecond)
	}

	assert.Equal(t, "<p>m</p>", c.Settled(core.BufferMarkup))
	assert.Equal(t, "", c.Settled(core.BufferScript))
}

func TestDocumentIsMemoized(t *testing.T) {
	c, clk, rec := newTestComposer(t)

	c.Update(core.BufferMarkup, "<b>x</b>")
	clk.Advance(DefaultQuiescence)
	before := c.Recomputations()
	first := c.Document()
	require.Equal(t, first, c.Document())

	// Edits that end on the already-settled value leave the triple unchanged.
	c.Update(core.BufferMarkup, "<b>xy</b>")
	c.Update(core.BufferMarkup, "<b>x</b>")
	clk.Advance(DefaultQuiescence)

	assert.Equal(t, before, c.Recomputations())
	assert.Equal(t, first, c.Document())
	assert.Len(t, rec.all(), 1)
}

func TestPassThroughFidelity(t *testing.T) {
	c, clk, _ := newTestComposer(t)

	c.Update(core.BufferMarkup, "<b>x</b>")
	c.Update(core.BufferStyles, "b{color:red}")
	c.Update(core.BufferScript, "console.log(1)")
	clk.Advance(DefaultQuiescence)

	doc := c.Document()
	for _, want := range []string{"<b>x</b>", "b{color:red}", "console.log(1)"} {
		assert.Contains(t, doc, want)
	}
}

func TestEndToEndSession(t *testing.T) {
	c, clk, _ := newTestComposer(t)

	empty := c.Document()
	require.Equal(t, core.ComposeDocument("", "", ""), empty)
	require.True(t, strings.HasPrefix(empty, "<!doctype html>"))

	c.Update(core.BufferMarkup, "<p>hi</p>")
	clk.Advance(DefaultQuiescence / 2)
	assert.Equal(t, empty, c.Document(), "document must not change before quiescence")

	clk.Advance(DefaultQuiescence / 2)
	assert.Contains(t, c.Document(), "<p>hi</p>")
}

func TestSeedRecomputesImmediately(t *testing.T) {
	c, clk, rec := newTestComposer(t)

	c.Update(core.BufferScript, "pending()")
	c.Seed(core.Sources{Markup: "<h1>A</h1>", Styles: "h1{}", Script: ""})

	assert.Equal(t, core.ComposeDocument("<h1>A</h1>", "h1{}", ""), c.Document())
	assert.Equal(t, "<h1>A</h1>", c.Settled(core.BufferMarkup))
	assert.Equal(t, "h1{}", c.Live(core.BufferStyles))
	assert.False(t, c.Pending())
	assert.Len(t, rec.all(), 1)

	// The update issued before Seed was cancelled.
	clk.Advance(DefaultQuiescence)
	assert.Equal(t, "", c.Settled(core.BufferScript))
}

func TestCloseCancelsPendingSettles(t *testing.T) {
	c, clk, rec := newTestComposer(t)

	c.Update(core.BufferMarkup, "<p>late</p>")
	c.Close()
	assert.Equal(t, 0, clk.Pending())

	clk.Advance(time.Second)
	assert.Equal(t, "", c.Settled(core.BufferMarkup))
	assert.Empty(t, rec.all())

	c.Update(core.BufferMarkup, "<p>after</p>")
	clk.Advance(time.Second)
	assert.Equal(t, "<p>after</p>", c.Live(core.BufferMarkup))
	assert.Equal(t, "", c.Settled(core.BufferMarkup))
	assert.True(t, c.Closed())

	c.Close()
}

// stubbornClock hands out timers whose Stop never wins, the way a real timer
// behaves once its callback is already waiting on the composer's lock.
type stubbornClock struct {
	*clock.Fake
}

type stubbornTimer struct{}

func (stubbornTimer) Stop() bool { return false }

func (s stubbornClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	s.Fake.AfterFunc(d, f)
	return stubbornTimer{}
}

func TestStaleTimerIsIgnored(t *testing.T) {
	clk := stubbornClock{clock.NewFake()}
	c := New(WithClock(clk))
	defer c.Close()

	c.Update(core.BufferMarkup, "v1")
	clk.Advance(200 * time.Millisecond)
	c.Update(core.BufferMarkup, "v2")

	// The first timer fires here even though it was "stopped".
	clk.Advance(100 * time.Millisecond)
	assert.Equal(t, "", c.Settled(core.BufferMarkup))

	clk.Advance(200 * time.Millisecond)
	assert.Equal(t, "v2", c.Settled(core.BufferMarkup))
}

func TestCustomQuiescence(t *testing.T) {
	clk := clock.NewFake()
	c := New(WithClock(clk), WithQuiescence(50*time.Millisecond))
	defer c.Close()

	assert.Equal(t, 50*time.Millisecond, c.Quiescence())
	c.Update(core.BufferMarkup, "x")
	clk.Advance(50 * time.Millisecond)
	assert.Equal(t, "x", c.Settled(core.BufferMarkup))
}

func TestInvalidKindIsIgnored(t *testing.T) {
	c, clk, _ := newTestComposer(t)

	c.Update(core.BufferKind(9), "nope")
	clk.Advance(DefaultQuiescence)
	assert.Equal(t, core.Sources{}, c.Sources())
	assert.Equal(t, 0, clk.Pending())
}

func TestVersionsIncrease(t *testing.T) {
	c, clk, rec := newTestComposer(t)

	for i := 0; i < 3; i++ {
		c.Update(core.BufferMarkup, fmt.Sprintf("<p>%d</p>", i))
		clk.Advance(DefaultQuiescence)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []uint64{2, 3, 4}, rec.versions)
}

func TestRealClockSettles(t *testing.T) {
	changed := make(chan string, 1)
	c := New(
		WithQuiescence(20*time.Millisecond),
		OnChange(func(doc string, _ uint64) {
			select {
			case changed <- doc:
			default:
			}
		}),
	)
	defer c.Close()

	c.Update(core.BufferMarkup, "<p>real</p>")

	select {
	case doc := <-changed:
		assert.Contains(t, doc, "<p>real</p>")
	case <-time.After(2 * time.Second):
		t.Fatal("document never recomputed")
	}
}

func TestStateTracksPendingEdits(t *testing.T) {
	c, clk, _ := newTestComposer(t)

	c.Update(core.BufferMarkup, "<p>a</p>")
	state := c.State()
	assert.True(t, state.Pending)
	assert.Equal(t, "<p>a</p>", state.Live.Markup)
	assert.Equal(t, "", state.Settled.Markup)
	assert.Equal(t, core.ComposeSources(state.Settled), state.Document)

	clk.Advance(DefaultQuiescence)
	state = c.State()
	assert.False(t, state.Pending)
	assert.Equal(t, state.Live, state.Settled)
	assert.Equal(t, core.ComposeDocument("<p>a</p>", "", ""), state.Document)
	assert.Equal(t, uint64(2), state.Version)
}

func TestStateIsConsistentWhileSettling(t *testing.T) {
	c := New(WithQuiescence(time.Millisecond))
	defer c.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			c.Update(core.BufferMarkup, fmt.Sprintf("<p>%d</p>", i))
			c.Update(core.BufferStyles, fmt.Sprintf("p{order:%d}", i))
			time.Sleep(100 * time.Microsecond)
		}
	}()

	for {
		state := c.State()
		require.Equal(t, core.ComposeSources(state.Settled), state.Document)
		select {
		case <-done:
			return
		default:
		}
	}
}
