package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhanong/ecsframework/internal/scene"
)

const validContent = `package content

scene_config: {
	Level1: {id: 2, max_entities: 256, destroy_capacity: 64}
	MainMenu: {id: 1, max_entities: 16, destroy_capacity: 8}
}

scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: 1, content: ["camera", "menu"]}
	Level1: {id: 2, level: true, latency_ticks: 3, content: ["camera", "player"]}
}

budget: {
	scene_slots:   "config.max_entities / 4"
	destroy_queue: "level ? config.destroy_capacity : 4"
}
`

func writeContent(t *testing.T, src string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "content")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.cue"), []byte(src), 0644))
	return dir
}

func TestLoadValidContent(t *testing.T) {
	b, err := Load(writeContent(t, validContent))
	require.NoError(t, err)

	assert.Equal(t, 1, b.FileCount)
	assert.Equal(t, scene.Total(), b.Catalog.Len())
	assert.Equal(t, []string{"destroy_queue", "scene_slots"}, b.Budget.Names())

	asset, err := b.Catalog.Asset(scene.Level1)
	require.NoError(t, err)
	assert.True(t, asset.Level)
	assert.Equal(t, 3, asset.LatencyTicks)
	assert.Equal(t, []string{"camera", "player"}, asset.Content)
}

func TestSceneConfigsSortedAndEvaluated(t *testing.T) {
	b, err := Load(writeContent(t, validContent))
	require.NoError(t, err)

	table, err := b.SceneConfigs()
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	menu, err := table.For(scene.MainMenu)
	require.NoError(t, err)
	assert.Equal(t, scene.MainMenu, menu.Scene)
	assert.Equal(t, 16, menu.MaxEntities)
	assert.Equal(t, 4, menu.BudgetValue("scene_slots", 0))
	assert.Equal(t, 4, menu.BudgetValue("destroy_queue", 0))

	level, err := table.For(scene.Level1)
	require.NoError(t, err)
	assert.Equal(t, 64, level.BudgetValue("scene_slots", 0))
	assert.Equal(t, 64, level.BudgetValue("destroy_queue", 0))
	assert.Equal(t, 7, level.BudgetValue("undeclared", 7))

	_, err = table.For(scene.None)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadCountMismatch(t *testing.T) {
	src := `package content

scene_config: {
	MainMenu: {id: 1, max_entities: 16, destroy_capacity: 8}
}

scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: 1, content: []}
	Level1: {id: 2, level: true, latency_ticks: 3, content: []}
}
`
	_, err := Load(writeContent(t, src))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeCountMismatch), "got %v", err)
	assert.Contains(t, err.Error(), "loaded 1 rows, want 2")
}

func TestLoadLabelIDDisagree(t *testing.T) {
	src := `package content

scene_config: {
	MainMenu: {id: 2, max_entities: 16, destroy_capacity: 8}
	Level1: {id: 1, max_entities: 256, destroy_capacity: 64}
}

scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: 1, content: []}
	Level1: {id: 2, level: true, latency_ticks: 3, content: []}
}
`
	_, err := Load(writeContent(t, src))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeIDMismatch), "got %v", err)
}

func TestLoadUnknownSceneLabel(t *testing.T) {
	src := `package content

scene_config: {
	MainMenu: {id: 1, max_entities: 16, destroy_capacity: 8}
	Level9: {id: 2, max_entities: 256, destroy_capacity: 64}
}

scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: 1, content: []}
	Level1: {id: 2, level: true, latency_ticks: 3, content: []}
}
`
	_, err := Load(writeContent(t, src))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeIDMismatch), "got %v", err)
	assert.Contains(t, err.Error(), "Level9")
}

func TestLoadMissingSection(t *testing.T) {
	src := `package content

scene_config: {
	MainMenu: {id: 1, max_entities: 16, destroy_capacity: 8}
	Level1: {id: 2, max_entities: 256, destroy_capacity: 64}
}
`
	_, err := Load(writeContent(t, src))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeMissingSection), "got %v", err)
	assert.Contains(t, err.Error(), "scene_asset")
}

func TestLoadBadBudgetExpression(t *testing.T) {
	src := validContent + `
budget: broken: "config.max_entities +"
`
	_, err := Load(writeContent(t, src))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeBadExpression), "got %v", err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoadNonExistentDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeNotFound))
	assert.Contains(t, err.Error(), "config directory not found")
}

func TestLoadEmptyDir(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeNoFiles))
}

func TestLoadRepositoryContent(t *testing.T) {
	b, err := Load(filepath.Join("..", "..", "testdata", "content"))
	require.NoError(t, err)

	_, err = b.SceneConfigs()
	require.NoError(t, err)
}

func TestBudgetRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"negative", "config.max_entities - 100", "must be in"},
		{"too large", "1e18", "must be in"},
		{"overflows int", "1e19", "overflows int"},
		{"negative float", "-0.5 - 1", "must be in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			budget, err := CompileBudget(map[string]string{"slots": tt.source})
			require.NoError(t, err)

			_, err = budget.eval(sceneConfigRow{ID: 1, MaxEntities: 16}, scene.Asset{ID: scene.MainMenu})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBudgetTruncatesFloat(t *testing.T) {
	budget, err := CompileBudget(map[string]string{"slots": "config.max_entities / 3"})
	require.NoError(t, err)

	got, err := budget.eval(sceneConfigRow{ID: 1, MaxEntities: 16}, scene.Asset{ID: scene.MainMenu})
	require.NoError(t, err)
	assert.Equal(t, 5, got["slots"])
}

func TestLoadRejectsOutOfRangeRows(t *testing.T) {
	row := func(menu string) string {
		return `package content

scene_config: {
	MainMenu: {id: 1, ` + menu + `}
	Level1: {id: 2, max_entities: 256, destroy_capacity: 64}
}
`
	}
	assets := func(latency string) string {
		return `
scene_asset: {
	MainMenu: {id: 1, level: false, latency_ticks: ` + latency + `, content: []}
	Level1: {id: 2, level: true, latency_ticks: 3, content: []}
}
`
	}

	tests := []struct {
		name  string
		src   string
		field string
		path  string
	}{
		{"negative max_entities", row("max_entities: -16, destroy_capacity: 8") + assets("1"), "max_entities", "scene_config.MainMenu"},
		{"huge max_entities", row("max_entities: 1000000000000, destroy_capacity: 8") + assets("1"), "max_entities", "scene_config.MainMenu"},
		{"negative destroy_capacity", row("max_entities: 16, destroy_capacity: -1") + assets("1"), "destroy_capacity", "scene_config.MainMenu"},
		{"negative latency_ticks", row("max_entities: 16, destroy_capacity: 8") + assets("-2"), "latency_ticks", "scene_asset.MainMenu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeContent(t, tt.src))
			require.Error(t, err)
			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, ErrCodeOutOfRange, le.Code, "got %v", err)
			assert.Equal(t, tt.path, le.Path)
			assert.Contains(t, le.Message, tt.field)
		})
	}
}

func TestLoadRejectsOutOfRangeBudget(t *testing.T) {
	src := validContent + `
budget: huge: "level ? 1e12 : 1"
`
	_, err := Load(writeContent(t, src))
	require.Error(t, err)
	assert.True(t, IsLoadError(err, ErrCodeOutOfRange), "got %v", err)
	assert.Contains(t, err.Error(), "budget.huge")
}

func TestBudgetRejectsNonNumeric(t *testing.T) {
	budget, err := CompileBudget(map[string]string{"name": "scene"})
	require.NoError(t, err)

	_, err = budget.eval(sceneConfigRow{ID: 1}, scene.Asset{ID: scene.MainMenu})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must yield a number")
}

func TestNewSceneConfigs(t *testing.T) {
	table, err := NewSceneConfigs(
		SceneConfig{Scene: scene.Level1, MaxEntities: 2},
		SceneConfig{Scene: scene.MainMenu, MaxEntities: 1},
	)
	require.NoError(t, err)
	row, err := table.For(scene.Level1)
	require.NoError(t, err)
	assert.Equal(t, 2, row.MaxEntities)

	_, err = NewSceneConfigs(SceneConfig{Scene: scene.MainMenu}, SceneConfig{Scene: scene.MainMenu})
	assert.Error(t, err)

	_, err = NewSceneConfigs(SceneConfig{Scene: scene.MainMenu})
	assert.Error(t, err)
}
