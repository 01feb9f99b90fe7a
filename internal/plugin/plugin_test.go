package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guliveer/fh-car-models/internal/lookup"
	"github.com/Guliveer/fh-car-models/internal/model"
	"github.com/Guliveer/fh-car-models/internal/resolver"
	"github.com/Guliveer/fh-car-models/internal/store"
)

type staticSource struct{ table *lookup.Table }

func (s staticSource) Load(string) (*lookup.Table, error) { return s.table, nil }

// recordingStore remembers every SetPropertyValue call.
type recordingStore struct {
	*store.Properties
	sets []any
}

func newRecordingStore() *recordingStore {
	return &recordingStore{Properties: store.NewProperties()}
}

func (s *recordingStore) SetPropertyValue(key, owner string, value any) {
	s.sets = append(s.sets, value)
	s.Properties.SetPropertyValue(key, owner, value)
}

func newPlugin(policy model.StopPolicy) *Plugin {
	r := resolver.New(resolver.Options{
		Games:  model.NewGameSet("FH4", "FH5"),
		Source: staticSource{table: lookup.NewTable(map[int]string{101: "Ford GT", 102: "Ford Focus RS"})},
		OnStop: policy,
	})
	return New(r, "", nil)
}

func frame(running bool, game, oldID, newID string) *model.GameData {
	data := &model.GameData{GameRunning: running, GameName: game}
	if oldID != "" {
		data.OldData = &model.StatusData{CarID: oldID}
	}
	if newID != "" {
		data.NewData = &model.StatusData{CarID: newID}
	}
	return data
}

func TestInitRegistersProperty(t *testing.T) {
	p := newPlugin(model.StopKeep)
	s := newRecordingStore()

	p.Init(s)

	prop, ok := s.Get("FHCarModel")
	require.True(t, ok)
	assert.Equal(t, "IDsToCarModels", prop.Owner)
	assert.Nil(t, prop.Value)
	assert.Empty(t, s.sets)
}

func TestPublishedValueAcrossFrames(t *testing.T) {
	tests := []struct {
		name      string
		policy    model.StopPolicy
		afterStop any
	}{
		{name: "keep", policy: model.StopKeep, afterStop: "Ford Focus RS"},
		{name: "clear", policy: model.StopClear, afterStop: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			p := newPlugin(tt.policy)
			s := newRecordingStore()
			p.Init(s)

			p.DataUpdate(ctx, s, frame(true, "FH5", "", "CAR_101"))
			prop, _ := s.Get("FHCarModel")
			assert.Equal(t, "Ford GT", prop.Value)

			p.DataUpdate(ctx, s, frame(true, "FH5", "CAR_101", "CAR_205"))
			prop, _ = s.Get("FHCarModel")
			assert.Nil(t, prop.Value)

			p.DataUpdate(ctx, s, frame(true, "FH5", "CAR_205", "CAR_102"))
			prop, _ = s.Get("FHCarModel")
			assert.Equal(t, "Ford Focus RS", prop.Value)

			p.DataUpdate(ctx, s, frame(false, "", "CAR_102", "CAR_102"))
			prop, _ = s.Get("FHCarModel")
			assert.Equal(t, tt.afterStop, prop.Value)
		})
	}
}

func TestKnownThenUnknownCarThenStop(t *testing.T) {
	for _, policy := range []model.StopPolicy{model.StopKeep, model.StopClear} {
		t.Run(policy.String(), func(t *testing.T) {
			ctx := context.Background()
			p := newPlugin(policy)
			s := newRecordingStore()
			p.Init(s)

			p.DataUpdate(ctx, s, frame(true, "FH5", "", "CAR_101"))
			p.DataUpdate(ctx, s, frame(true, "FH5", "CAR_101", "CAR_205"))
			p.DataUpdate(ctx, s, frame(false, "", "", ""))

			prop, _ := s.Get("FHCarModel")
			assert.Nil(t, prop.Value)
			assert.Equal(t, []any{"Ford GT", nil}, s.sets)
		})
	}
}

func TestUnchangedFramesDoNotRepublish(t *testing.T) {
	ctx := context.Background()
	p := newPlugin(model.StopKeep)
	s := newRecordingStore()
	p.Init(s)

	for i := 0; i < 5; i++ {
		p.DataUpdate(ctx, s, frame(true, "FH5", "CAR_101", "CAR_101"))
	}
	p.DataUpdate(ctx, s, frame(true, "FH5", "CAR_101", "CAR_102"))
	p.DataUpdate(ctx, s, frame(true, "FH5", "CAR_102", "CAR_102"))

	assert.Equal(t, []any{"Ford GT", "Ford Focus RS"}, s.sets)
}

func TestUnsupportedGameNeverPublishes(t *testing.T) {
	ctx := context.Background()
	p := newPlugin(model.StopKeep)
	s := newRecordingStore()
	p.Init(s)

	p.DataUpdate(ctx, s, frame(true, "ACC", "", "CAR_101"))
	p.DataUpdate(ctx, s, frame(true, "ACC", "CAR_101", "CAR_102"))

	assert.Empty(t, s.sets)
}

func TestOnChangeListeners(t *testing.T) {
	ctx := context.Background()
	p := newPlugin(model.StopKeep)
	s := newRecordingStore()
	p.Init(s)

	var changes []Change
	p.OnChange(func(_ context.Context, c Change) { changes = append(changes, c) })

	p.DataUpdate(ctx, s, frame(true, "FH5", "", "CAR_101"))
	p.DataUpdate(ctx, s, frame(true, "FH5", "CAR_101", "CAR_205"))

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Game: "FH5", Label: "CAR_101", Model: "Ford GT", Found: true}, changes[0])
	assert.Equal(t, Change{Game: "FH5", Label: "CAR_205"}, changes[1])
}

func TestDataUpdateRecoversFromPanics(t *testing.T) {
	ctx := context.Background()
	p := newPlugin(model.StopKeep)
	s := newRecordingStore()
	p.Init(s)
	p.OnChange(func(context.Context, Change) { panic("listener bug") })

	assert.NotPanics(t, func() {
		p.DataUpdate(ctx, s, frame(true, "FH5", "", "CAR_101"))
		p.DataUpdate(ctx, s, nil)
	})

	prop, _ := s.Get("FHCarModel")
	assert.Equal(t, "Ford GT", prop.Value)
}

func TestEndReleasesTable(t *testing.T) {
	ctx := context.Background()
	p := newPlugin(model.StopKeep)
	s := newRecordingStore()
	p.Init(s)
	p.DataUpdate(ctx, s, frame(true, "FH5", "", "CAR_101"))
	require.True(t, p.Snapshot().TableLoaded)

	p.End(s)

	assert.False(t, p.Snapshot().TableLoaded)
	prop, _ := s.Get("FHCarModel")
	assert.Equal(t, "Ford GT", prop.Value)
}

func TestRestartRepublishesSameCar(t *testing.T) {
	ctx := context.Background()
	p := newPlugin(model.StopKeep)

	first := newRecordingStore()
	p.Init(first)
	p.DataUpdate(ctx, first, frame(true, "FH5", "", "CAR_101"))
	require.Equal(t, []any{"Ford GT"}, first.sets)
	p.End(first)

	second := newRecordingStore()
	p.Init(second)
	p.DataUpdate(ctx, second, frame(true, "FH5", "", "CAR_101"))

	assert.Equal(t, []any{"Ford GT"}, second.sets)
	got, ok := second.String("FHCarModel")
	assert.True(t, ok)
	assert.Equal(t, "Ford GT", got)
}
