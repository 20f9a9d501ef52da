package journal

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projector/internal/action"
)

func TestRecorder_WritesRecords(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	rec := NewRecorder(j, NewFixedGenerator("session-1"))

	prov := action.Provenance{File: "list.go", Function: "tui.keyDelete", Line: 12, Info: "delete key"}
	rec.Record(ctx, testAction{Kind: "remove", ID: "a"}, prov, 1)
	rec.Record(ctx, testAction{Kind: "add"}, action.Provenance{}, 2)

	got, err := j.Read(ctx, "session-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "session-1", rec.Session())
	assert.Equal(t, "journal.testAction", got[0].Type)
	assert.Equal(t, prov, got[0].Provenance)
	assert.JSONEq(t, `{"kind":"remove","id":"a"}`, string(got[0].Payload))
	assert.Zero(t, rec.Failures())
}

func TestRecorder_FailuresAreCountedNotPropagated(t *testing.T) {
	j := createTestJournal(t)
	rec := NewRecorderForSession(j, "s")
	require.NoError(t, j.Close())

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), testAction{Kind: "add"}, action.Provenance{}, 1)
	})
	assert.Equal(t, int64(1), rec.Failures())
}

func TestRecorder_UnmarshalableActionCounted(t *testing.T) {
	j := createTestJournal(t)
	rec := NewRecorderForSession(j, "s")

	rec.Record(context.Background(), func() {}, action.Provenance{}, 1)
	assert.Equal(t, int64(1), rec.Failures())
}

func TestUUIDv7Generator_Valid(t *testing.T) {
	g := UUIDv7Generator{}
	token := g.Generate()

	parsed, err := uuid.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_Sortable(t *testing.T) {
	g := UUIDv7Generator{}
	prev := g.Generate()
	for i := 0; i < 50; i++ {
		next := g.Generate()
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestFixedGenerator_Concurrent(t *testing.T) {
	tokens := make([]string, 100)
	for i := range tokens {
		tokens[i] = uuid.NewString()
	}
	g := NewFixedGenerator(tokens...)

	var wg sync.WaitGroup
	seen := make(chan string, len(tokens))
	for range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Generate()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[string]bool{}
	for s := range seen {
		unique[s] = true
	}
	assert.Len(t, unique, len(tokens))
}
