package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistwoodmud/mistwood/internal/game/entity"
)

type fakeEntity struct {
	name   string
	ticks  int
	panics bool
}

func (f *fakeEntity) Name() string { return f.name }
func (f *fakeEntity) Kind() string { return "fake" }
func (f *fakeEntity) Emit(ev entity.Event) {
	if ev.Kind == entity.EventUpdateTick {
		f.ticks++
		if f.panics {
			panic("misbehaving entity")
		}
	}
}
func (f *fakeEntity) Serialize() entity.PersistedEntity { return entity.PersistedEntity{} }

func TestWorld_AddRejectsDuplicateName(t *testing.T) {
	w := New()
	require.NoError(t, w.Add(&fakeEntity{name: "wren"}))
	require.Error(t, w.Add(&fakeEntity{name: "wren"}))
	assert.Equal(t, 1, w.Size())
}

func TestWorld_AllIsSortedByName(t *testing.T) {
	w := New()
	require.NoError(t, w.Add(&fakeEntity{name: "zed"}))
	require.NoError(t, w.Add(&fakeEntity{name: "ana"}))
	require.NoError(t, w.Add(&fakeEntity{name: "mog"}))

	all := w.All()
	require.Len(t, all, 3)
	assert.Equal(t, "ana", all[0].Name())
	assert.Equal(t, "zed", all[2].Name())
}

func TestTicker_PanicIsolation(t *testing.T) {
	w := New()
	bad := &fakeEntity{name: "bad", panics: true}
	good := &fakeEntity{name: "good"}
	require.NoError(t, w.Add(bad))
	require.NoError(t, w.Add(good))

	NewTicker(w, time.Second).TickAll(time.Now())

	assert.Equal(t, 1, bad.ticks)
	assert.Equal(t, 1, good.ticks, "one entity's panic must not abort the shared tick")
}

func TestWorld_RemoveAndGet(t *testing.T) {
	w := New()
	e := &fakeEntity{name: "wren"}
	require.NoError(t, w.Add(e))
	require.NotNil(t, w.Get("wren"))

	w.Remove("wren")
	assert.Nil(t, w.Get("wren"))
	w.Remove("wren") // idempotent
}
