package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dagr/internal/dagerr"
)

func TestLoad_MissingFileReportsStateNotInitialized(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "dagr.json"))
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.StateNotInitialized))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dagr.json")
	s := newTestState()
	a, _, err := s.AddTask(TaskInput{Name: "design", DurationHours: 3})
	require.NoError(t, err)
	_, _, err = s.AddTask(TaskInput{Name: "build", DurationHours: 5, DependsOn: []string{a.ID}})
	require.NoError(t, err)

	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Tasks, 2)
	assert.Equal(t, s.Tasks[0].Name, loaded.Tasks[0].Name)
	assert.Equal(t, s.Tasks[1].DependsOn, loaded.Tasks[1].DependsOn)
}

func TestTaskJSON_PreservesUnknownFields(t *testing.T) {
	raw := []byte(`{
		"id": "T-1",
		"name": "design",
		"duration_hours": 2,
		"status": "not_started",
		"custom_field": "kept me around"
	}`)

	var task Task
	require.NoError(t, json.Unmarshal(raw, &task))
	assert.Equal(t, "design", task.Name)

	out, err := json.Marshal(task)
	require.NoError(t, err)

	var roundTripped map[string]any
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	assert.Equal(t, "kept me around", roundTripped["custom_field"])
}

func TestLoad_InvalidJSONReportsInvalidField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dagr.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, dagerr.Is(err, dagerr.InvalidField))
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dagr.json")
	assert.False(t, Exists(path))

	s := newTestState()
	require.NoError(t, s.Save(path))
	assert.True(t, Exists(path))
}
