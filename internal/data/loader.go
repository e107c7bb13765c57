package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// Dataset file names inside the data directory.
const (
	FileItems   = "Items.json"
	FileWeapons = "Weapons.json"
	FileArmors  = "Armors.json"
	FileSkills  = "Skills.json"
	FileStates  = "States.json"
	FileEnemies = "Enemies.json"
	FileActors  = "Actors.json"
	FileClasses = "Classes.json"
)

// LoadDir reads every dataset file in dir concurrently.
//
// Each file is a JSON array of records; null entries (the editor keeps
// index 0 empty) are skipped. A missing file is an empty table, a file
// that is not valid JSON is an error.
func LoadDir(ctx context.Context, dir string) (*Dataset, error) {
	ds := &Dataset{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { ds.Items, err = loadTable(gctx, dir, FileItems, parseItem); return })
	g.Go(func() (err error) { ds.Weapons, err = loadTable(gctx, dir, FileWeapons, parseWeapon); return })
	g.Go(func() (err error) { ds.Armors, err = loadTable(gctx, dir, FileArmors, parseArmor); return })
	g.Go(func() (err error) { ds.Skills, err = loadTable(gctx, dir, FileSkills, parseSkill); return })
	g.Go(func() (err error) { ds.States, err = loadTable(gctx, dir, FileStates, parseState); return })
	g.Go(func() (err error) { ds.Enemies, err = loadTable(gctx, dir, FileEnemies, parseEnemy); return })
	g.Go(func() (err error) { ds.Actors, err = loadTable(gctx, dir, FileActors, parseActor); return })
	g.Go(func() (err error) { ds.Classes, err = loadTable(gctx, dir, FileClasses, parseClass); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds.Index()

	slog.Info("loaded dataset",
		"dir", dir,
		"items", len(ds.Items),
		"weapons", len(ds.Weapons),
		"armors", len(ds.Armors),
		"skills", len(ds.Skills),
		"states", len(ds.States),
		"enemies", len(ds.Enemies))
	return ds, nil
}

func loadTable[T any](ctx context.Context, dir, name string, parse func(gjson.Result) *T) ([]*T, error) {
	path := filepath.Join(dir, name)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("dataset file missing, using empty table", "file", path)
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rows, err := ParseTable(raw, parse)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// ParseTable parses one dataset file body.
func ParseTable[T any](raw []byte, parse func(gjson.Result) *T) ([]*T, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, fmt.Errorf("expected a JSON array, got %s", root.Type)
	}

	var rows []*T
	root.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.Null || !v.IsObject() {
			return true
		}
		rows = append(rows, parse(v))
		return true
	})
	return rows, nil
}

func parseItem(v gjson.Result) *Item {
	return &Item{
		ID:         int(v.Get("id").Int()),
		Name:       v.Get("name").String(),
		Note:       v.Get("note").String(),
		Consumable: v.Get("consumable").Bool(),
	}
}

func parseWeapon(v gjson.Result) *Weapon {
	return &Weapon{
		ID:   int(v.Get("id").Int()),
		Name: v.Get("name").String(),
		Note: v.Get("note").String(),
	}
}

func parseArmor(v gjson.Result) *Armor {
	return &Armor{
		ID:   int(v.Get("id").Int()),
		Name: v.Get("name").String(),
		Note: v.Get("note").String(),
	}
}

func parseSkill(v gjson.Result) *Skill {
	return &Skill{
		ID:     int(v.Get("id").Int()),
		Name:   v.Get("name").String(),
		Note:   v.Get("note").String(),
		MPCost: int(v.Get("mpCost").Int()),
		TPCost: int(v.Get("tpCost").Int()),
		HPCost: int(v.Get("hpCost").Int()),
	}
}

func parseState(v gjson.Result) *State {
	return &State{
		ID:                int(v.Get("id").Int()),
		Name:              v.Get("name").String(),
		Note:              v.Get("note").String(),
		AutoRemoval:       Timing(v.Get("autoRemovalTiming").Int()),
		MinTurns:          int(v.Get("minTurns").Int()),
		MaxTurns:          int(v.Get("maxTurns").Int()),
		RemoveAtBattleEnd: v.Get("removeAtBattleEnd").Bool(),
	}
}

func parseEnemy(v gjson.Result) *Enemy {
	return &Enemy{
		ID:   int(v.Get("id").Int()),
		Name: v.Get("name").String(),
		Note: v.Get("note").String(),
	}
}

func parseActor(v gjson.Result) *Actor {
	return &Actor{
		ID:      int(v.Get("id").Int()),
		Name:    v.Get("name").String(),
		Note:    v.Get("note").String(),
		ClassID: int(v.Get("classId").Int()),
	}
}

func parseClass(v gjson.Result) *Class {
	return &Class{
		ID:   int(v.Get("id").Int()),
		Name: v.Get("name").String(),
		Note: v.Get("note").String(),
	}
}
