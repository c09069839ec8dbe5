package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/zhanong/ecsframework/internal/scene"
)

// Bundle is validated content ready to be published by a Gate.
type Bundle struct {
	Dir       string
	FileCount int

	Catalog *scene.Catalog
	Budget  *Budget

	rows []sceneConfigRow
}

type sceneConfigRow struct {
	ID              int `json:"id"`
	MaxEntities     int `json:"max_entities"`
	DestroyCapacity int `json:"destroy_capacity"`
}

type sceneAssetRow struct {
	ID           int      `json:"id"`
	Level        bool     `json:"level"`
	LatencyTicks int      `json:"latency_ticks"`
	Content      []string `json:"content"`
}

// Load reads and validates the CUE content package in dir.
func Load(dir string) (*Bundle, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing config directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	b, err := FromValue(value)
	if err != nil {
		return nil, err
	}
	b.Dir = dir
	b.FileCount = len(cueFiles)
	return b, nil
}

// FromValue validates an already-built CUE value.
func FromValue(value cue.Value) (*Bundle, error) {
	var configs []sceneConfigRow
	if err := decodeSection(value, "scene_config", func(label string, v cue.Value) (int, error) {
		var row sceneConfigRow
		if err := v.Decode(&row); err != nil {
			return 0, err
		}
		if err := inRange("max_entities", row.MaxEntities, MaxSize); err != nil {
			return 0, err
		}
		if err := inRange("destroy_capacity", row.DestroyCapacity, MaxSize); err != nil {
			return 0, err
		}
		configs = append(configs, row)
		return row.ID, nil
	}); err != nil {
		return nil, err
	}

	var assetRows []sceneAssetRow
	if err := decodeSection(value, "scene_asset", func(label string, v cue.Value) (int, error) {
		var row sceneAssetRow
		if err := v.Decode(&row); err != nil {
			return 0, err
		}
		if err := inRange("latency_ticks", row.LatencyTicks, math.MaxInt); err != nil {
			return 0, err
		}
		assetRows = append(assetRows, row)
		return row.ID, nil
	}); err != nil {
		return nil, err
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ID < configs[j].ID })
	sort.Slice(assetRows, func(i, j int) bool { return assetRows[i].ID < assetRows[j].ID })

	if err := checkIDs("scene_config", idsOf(configs, func(r sceneConfigRow) int { return r.ID })); err != nil {
		return nil, err
	}
	if err := checkIDs("scene_asset", idsOf(assetRows, func(r sceneAssetRow) int { return r.ID })); err != nil {
		return nil, err
	}

	assets := make([]scene.Asset, 0, len(assetRows))
	for _, row := range assetRows {
		assets = append(assets, scene.Asset{
			ID:           scene.ID(row.ID),
			Content:      row.Content,
			Level:        row.Level,
			LatencyTicks: row.LatencyTicks,
		})
	}
	catalog, err := scene.NewCatalog(assets)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCountMismatch, Message: err.Error(), Path: "scene_asset"}
	}

	sources := map[string]string{}
	budgetVal := value.LookupPath(cue.ParsePath("budget"))
	if budgetVal.Exists() {
		if err := budgetVal.Decode(&sources); err != nil {
			return nil, &LoadError{
				Code:    ErrCodeDecodeFailed,
				Message: fmt.Sprintf("budget must map names to expression strings: %v", err),
				Path:    "budget",
				Pos:     budgetVal.Pos(),
			}
		}
	}
	budget, err := CompileBudget(sources)
	if err != nil {
		return nil, err
	}

	b := &Bundle{Catalog: catalog, Budget: budget, rows: configs}
	// Evaluate every budget now so bad values fail the load, not the first tick.
	if _, err := b.SceneConfigs(); err != nil {
		return nil, err
	}
	return b, nil
}

// SceneConfigs evaluates the budget for every scene and returns the table.
func (b *Bundle) SceneConfigs() (*SceneConfigs, error) {
	table := &SceneConfigs{rows: make([]SceneConfig, 0, len(b.rows))}
	for _, row := range b.rows {
		id := scene.ID(row.ID)
		asset, err := b.Catalog.Asset(id)
		if err != nil {
			return nil, err
		}
		allot, err := b.Budget.eval(row, asset)
		if err != nil {
			return nil, err
		}
		table.rows = append(table.rows, SceneConfig{
			Scene:           id,
			MaxEntities:     row.MaxEntities,
			DestroyCapacity: row.DestroyCapacity,
			Budget:          allot,
		})
	}
	return table, nil
}

// decodeSection iterates a top-level struct. Each label must name a
// loadable scene and agree with the row's declared id.
func decodeSection(value cue.Value, section string, decode func(label string, v cue.Value) (int, error)) error {
	v := value.LookupPath(cue.ParsePath(section))
	if !v.Exists() {
		return &LoadError{Code: ErrCodeMissingSection, Message: fmt.Sprintf("missing %s", section), Path: section}
	}

	iter, err := v.Fields()
	if err != nil {
		return &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating %s: %v", section, err), Path: section}
	}
	for iter.Next() {
		label := iter.Label()
		path := section + "." + label
		id, err := decode(label, iter.Value())
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				le.Path, le.Pos = path, iter.Value().Pos()
				return le
			}
			return &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error(), Path: path, Pos: iter.Value().Pos()}
		}
		named, err := scene.Parse(label)
		if err != nil {
			return &LoadError{Code: ErrCodeIDMismatch, Message: err.Error(), Path: path, Pos: iter.Value().Pos()}
		}
		if int(named) != id {
			return &LoadError{
				Code:    ErrCodeIDMismatch,
				Message: fmt.Sprintf("label %s declares id %d, want %d", label, id, int(named)),
				Path:    path,
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// MaxSize bounds every value that sizes a per-scene table: max_entities,
// destroy_capacity and evaluated budgets.
const MaxSize = 1 << 24

// inRange rejects n outside [0, limit].
func inRange(field string, n, limit int) error {
	if n < 0 || n > limit {
		return &LoadError{Code: ErrCodeOutOfRange, Message: fmt.Sprintf("%s must be in [0, %d], got %d", field, limit, n)}
	}
	return nil
}

// checkIDs expects sorted ids to be exactly 1..scene.Total().
func checkIDs(section string, ids []int) error {
	if len(ids) != scene.Total() {
		return &LoadError{
			Code:    ErrCodeCountMismatch,
			Message: fmt.Sprintf("loaded %d rows, want %d", len(ids), scene.Total()),
			Path:    section,
		}
	}
	for i, id := range ids {
		if id != i+1 {
			return &LoadError{
				Code:    ErrCodeIDMismatch,
				Message: fmt.Sprintf("row %d has id %d, want %d", i, id, i+1),
				Path:    section,
			}
		}
	}
	return nil
}

func idsOf[T any](rows []T, id func(T) int) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = id(r)
	}
	return out
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
