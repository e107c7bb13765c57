// Command rulesim loads a dataset and its rules and simulates drops,
// cooking and state stacking from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/gamerules/internal/config"
	"github.com/udisondev/gamerules/internal/data"
	"github.com/udisondev/gamerules/internal/db"
	"github.com/udisondev/gamerules/internal/dice"
	"github.com/udisondev/gamerules/internal/gameplay"
	"github.com/udisondev/gamerules/internal/loot"
	"github.com/udisondev/gamerules/internal/model"
	"github.com/udisondev/gamerules/internal/rules"
)

const DefaultConfigPath = "config/rules.yaml"

type options struct {
	configPath string
	enemy      int
	kills      int
	table      string
	pool       string
	cook       string
	states     string
	actor      int
	level      int
	seed       int64
	save       bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var opts options
	flag.StringVar(&opts.configPath, "config", DefaultConfigPath, "rules config file (env GAMERULES_CONFIG)")
	flag.IntVar(&opts.enemy, "enemy", 0, "enemy id to defeat")
	flag.IntVar(&opts.kills, "kills", 1, "number of times to defeat -enemy")
	flag.StringVar(&opts.table, "table", "", "named loot table to give")
	flag.StringVar(&opts.pool, "pool", "", "named loot pool or item to give")
	flag.StringVar(&opts.cook, "cook", "", "comma-separated item ids to cook")
	flag.StringVar(&opts.states, "states", "", "comma-separated state ids to apply to the hero")
	flag.IntVar(&opts.actor, "actor", 1, "actor id of the hero")
	flag.IntVar(&opts.level, "level", 1, "hero level")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed (0 picks one)")
	flag.BoolVar(&opts.save, "save", false, "write the hero's state stacks to PostgreSQL")
	flag.Parse()

	if err := run(ctx, opts); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if p := os.Getenv("GAMERULES_CONFIG"); p != "" {
		opts.configPath = p
	}
	cfg, err := config.LoadRules(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))
	slog.Info("rulesim starting", "config", opts.configPath, "data_dir", cfg.DataDir)

	seed := opts.seed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			return fmt.Errorf("seeding dice: %w", err)
		}
	}

	// Dataset and database are independent, load them in parallel
	var (
		ds       *data.Dataset
		database *db.DB
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = data.LoadDir(gctx, cfg.DataDir)
		return err
	})
	if opts.save {
		g.Go(func() error {
			var err error
			database, err = db.Open(gctx, cfg.Database)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if database != nil {
			database.Close()
		}
		return fmt.Errorf("loading: %w", err)
	}
	if database != nil {
		defer database.Close()
	}

	repo := rules.Build(ds, cfg.Loot)
	src := dice.New(seed)
	hero := newHero(ds, repo, src, opts)
	party := model.NewParty(hero)
	rt := gameplay.New(repo, party, nil, src, gameplay.OptionsFromConfig(cfg, repo))

	slog.Info("simulation ready", "seed", seed, "hero", hero.Name())

	for _, id := range parseIDs(opts.states) {
		fmt.Printf("state %d: %s\n", id, rt.ApplyState(hero, id))
	}

	if opts.enemy > 0 {
		for i := range max(opts.kills, 1) {
			if err := ctx.Err(); err != nil {
				return err
			}
			printDrops(rt, fmt.Sprintf("kill %d", i+1), rt.OnEnemyDefeated(opts.enemy))
		}
	}

	if opts.table != "" {
		items, err := rt.GiveDropTable(opts.table)
		if err != nil {
			return err
		}
		printDrops(rt, "table "+opts.table, items)
	}

	if opts.pool != "" {
		items, err := rt.GiveDropPool(opts.pool, 0, 0)
		if err != nil {
			return err
		}
		printDrops(rt, "pool "+opts.pool, items)
	}

	if opts.cook != "" {
		if err := cook(rt, party, parseIDs(opts.cook)); err != nil {
			return err
		}
	}

	for _, msg := range party.Messages() {
		fmt.Println(msg)
	}

	if opts.save {
		if err := database.Stacks.SaveAll(ctx, rt.SaveStacks()); err != nil {
			return fmt.Errorf("saving stacks: %w", err)
		}
		slog.Info("state stacks saved", "battler", hero.ID())
	}
	return nil
}

func newHero(ds *data.Dataset, repo *rules.Repository, src dice.Source, opts options) *model.Battler {
	spec := model.BattlerSpec{
		ID:      1,
		Name:    "Hero",
		ActorID: opts.actor,
		Level:   opts.level,
		HP:      100,
		MP:      100,
		TP:      100,
	}
	if a := ds.Actor(opts.actor); a != nil {
		spec.Name = a.Name
		spec.ClassID = a.ClassID
	}
	return model.NewBattler(spec, repo, src)
}

// cook stocks the ingredients the simulation needs, then cooks them.
func cook(rt *gameplay.Runtime, party *model.Party, ids []int) error {
	for _, id := range ids {
		party.Inventory().Give(loot.ItemDrop{Kind: loot.KindItem, DataID: id}, 1)
	}
	if err := rt.StartCooking(); err != nil {
		return err
	}
	for _, id := range ids {
		if err := rt.AddIngredient(id); err != nil {
			rt.CancelCooking()
			return fmt.Errorf("cooking: %w", err)
		}
	}
	res := rt.GiveCooking()
	if res.Success() {
		fmt.Printf("cooked %s (recipe %q)\n", rt.ItemName(res.Item), res.Recipe.Name)
	} else if !res.Item.IsZero() {
		fmt.Printf("cooking failed, got %s\n", rt.ItemName(res.Item))
	} else {
		fmt.Println("cooking failed")
	}
	return nil
}

func printDrops(rt *gameplay.Runtime, label string, items []loot.ResolvedItem) {
	if len(items) == 0 {
		fmt.Printf("%s: nothing\n", label)
		return
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		s := rt.ItemName(it.Drop)
		if it.Level > 0 {
			s += " lv" + strconv.Itoa(it.Level)
		}
		if it.Tier > 0 {
			s += " t" + strconv.Itoa(it.Tier)
		}
		parts = append(parts, s)
	}
	fmt.Printf("%s: %s\n", label, strings.Join(parts, ", "))
}

func parseIDs(s string) []int {
	var out []int
	for _, f := range strings.Split(s, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(f)); err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}
