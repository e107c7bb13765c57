// Package gameplay wires the rule engines to a host party. Runtime is the
// command and hook surface the battle loop and event scripts call.
package gameplay

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/gamerules/internal/config"
	"github.com/udisondev/gamerules/internal/cooking"
	"github.com/udisondev/gamerules/internal/dice"
	"github.com/udisondev/gamerules/internal/loot"
	"github.com/udisondev/gamerules/internal/model"
	"github.com/udisondev/gamerules/internal/multicast"
	"github.com/udisondev/gamerules/internal/rules"
)

var (
	// ErrUnknownPool is returned by GiveDropPool for names that are
	// neither a pool, an item name nor a literal reference.
	ErrUnknownPool = errors.New("unknown loot pool")
	// ErrUnknownTable is returned by GiveDropTable.
	ErrUnknownTable = errors.New("unknown loot table")
	// ErrNotMember is returned for battlers outside the party.
	ErrNotMember = errors.New("battler is not a party member")
)

// Sink receives granted loot. model.Party is the reference sink.
type Sink interface {
	Grant(item loot.ResolvedItem, count int)
	Notify(msg string)
}

// Options configure a Runtime.
type Options struct {
	// DropRate multiplies every enemy table's fire rate.
	DropRate      float64
	EquipLeveling bool
	ShowMessages  bool
	ItemCosts     bool
	// Failsafe is granted by a failed dish; zero grants nothing.
	Failsafe loot.ItemDrop
}

// OptionsFromConfig maps the rules config onto runtime options. An
// unresolvable failsafe name is logged and grants nothing.
func OptionsFromConfig(cfg config.Rules, repo *rules.Repository) Options {
	opts := Options{
		DropRate:      cfg.Drops.Rate,
		EquipLeveling: cfg.Drops.EquipLeveling,
		ShowMessages:  cfg.Drops.ShowMessages,
		ItemCosts:     cfg.Multicast.ItemCosts,
	}
	if cfg.Cooking.Failsafe != "" {
		d, ok := repo.ResolveItem(cfg.Cooking.Failsafe)
		if !ok {
			slog.Warn("cooking failsafe names unknown item", "item", cfg.Cooking.Failsafe)
		}
		opts.Failsafe = d
	}
	return opts
}

// Runtime drives loot, cooking, states and multicast for one party.
// It is not safe for concurrent use: the random source is shared and the
// battle loop is sequential.
type Runtime struct {
	repo  *rules.Repository
	party *model.Party
	sink  Sink
	src   dice.Source
	opts  Options

	resolver  *loot.Resolver
	kitchen   *cooking.Kitchen
	multicast *multicast.Controller
}

// New creates a runtime for party. Loot goes to sink; a nil sink means
// the party itself.
func New(repo *rules.Repository, party *model.Party, sink Sink, src dice.Source, opts Options) *Runtime {
	if sink == nil {
		sink = party
	}
	return &Runtime{
		repo:      repo,
		party:     party,
		sink:      sink,
		src:       src,
		opts:      opts,
		resolver:  loot.NewResolver(repo, src, loot.Options{EquipLeveling: opts.EquipLeveling}),
		kitchen:   cooking.NewKitchen(repo, party.Inventory(), opts.Failsafe),
		multicast: multicast.NewController(repo, party.Inventory(), multicast.Options{ItemCosts: opts.ItemCosts}),
	}
}

// Party returns the party the runtime drives.
func (r *Runtime) Party() *model.Party { return r.party }

// Repository returns the rule repository.
func (r *Runtime) Repository() *rules.Repository { return r.repo }

func (r *Runtime) member(b *model.Battler) error {
	if b == nil || r.party.Member(b.ID()) != b {
		return ErrNotMember
	}
	return nil
}

// ItemName returns the display name of d, falling back to its kind and id.
func (r *Runtime) ItemName(d loot.ItemDrop) string {
	ds := r.repo.Dataset()
	switch d.Kind {
	case loot.KindItem:
		if it := ds.Item(d.DataID); it != nil {
			return it.Name
		}
	case loot.KindWeapon:
		if w := ds.Weapon(d.DataID); w != nil {
			return w.Name
		}
	case loot.KindArmor:
		if a := ds.Armor(d.DataID); a != nil {
			return a.Name
		}
	}
	return d.String()
}

func (r *Runtime) notify(format string, args ...any) {
	if r.opts.ShowMessages {
		r.sink.Notify(fmt.Sprintf(format, args...))
	}
}
