package config

import (
	"errors"
	"fmt"

	"github.com/udisondev/gamerules/internal/ident"
)

// Rules holds all configuration of the rule engines.
type Rules struct {
	LogLevel string `yaml:"log_level" env:"GAMERULES_LOG_LEVEL"`
	// DataDir holds Items.json, Enemies.json and the other dataset files.
	DataDir string `yaml:"data_dir" env:"GAMERULES_DATA_DIR"`

	Database DatabaseConfig `yaml:"database" envPrefix:"GAMERULES_DATABASE_"`

	Drops     Drops     `yaml:"drops"`
	Cooking   Cooking   `yaml:"cooking"`
	Multicast Multicast `yaml:"multicast"`
	Loot      Loot      `yaml:"loot"`
}

// Drops configures enemy drop resolution.
type Drops struct {
	// Rate multiplies every table's fire rate.
	Rate          float64 `yaml:"rate"           env:"GAMERULES_DROP_RATE"`
	EquipLeveling bool    `yaml:"equip_leveling" env:"GAMERULES_EQUIP_LEVELING"`
	ShowMessages  bool    `yaml:"show_messages"`
}

// Cooking configures the kitchen.
type Cooking struct {
	// Failsafe names the item granted by a failed dish ("item 9" or an
	// item name). Empty grants nothing.
	Failsafe string `yaml:"failsafe"`
}

// Multicast configures multicast sessions.
type Multicast struct {
	// ItemCosts makes <Item Cost> tags payable and snapshots the party
	// containers for rollback.
	ItemCosts bool `yaml:"item_costs" env:"GAMERULES_MULTICAST_ITEM_COSTS"`
}

// Loot holds the registry of named pools and tables.
type Loot struct {
	Pools  []NamedPool  `yaml:"pools"`
	Tables []NamedTable `yaml:"tables"`
}

// NamedPool is a registry pool. Entries use the note syntax
// "Name: weight [formula] [xN-M] [Level L] [Tier T]".
type NamedPool struct {
	Name    string   `yaml:"name"`
	Entries []string `yaml:"entries"`
}

// NamedTable is a registry table referenced by <Loot Table: name>.
type NamedTable struct {
	Name string `yaml:"name"`
	// Rate defaults to 1 when unset.
	Rate     *float64 `yaml:"rate"`
	MinLevel int      `yaml:"min_level"`
	MaxLevel int      `yaml:"max_level"`
	Entries  []string `yaml:"entries"`
}

// FireRate returns the table rate, 1 when unset.
func (t NamedTable) FireRate() float64 {
	if t.Rate == nil {
		return 1
	}
	return *t.Rate
}

// DefaultRules returns Rules with x1 drop rate, equip leveling on and no
// registry entries.
func DefaultRules() Rules {
	return Rules{
		LogLevel: "info",
		DataDir:  "data",
		Database: DefaultDatabase(),
		Drops: Drops{
			Rate:          1.0,
			EquipLeveling: true,
			ShowMessages:  true,
		},
	}
}

// LoadRules loads the rules config from a YAML file and applies
// GAMERULES_* environment overrides. If the file doesn't exist, the
// defaults are used.
func LoadRules(path string) (Rules, error) {
	cfg := DefaultRules()

	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the engines cannot work with.
func (r Rules) Validate() error {
	var errs []error
	if r.Drops.Rate < 0 {
		errs = append(errs, fmt.Errorf("drops.rate must not be negative, got %v", r.Drops.Rate))
	}
	// Names collide the way the repository indexes them.
	seen := make(map[ident.Key]bool)
	for i, p := range r.Loot.Pools {
		key := ident.Normalize(p.Name)
		switch {
		case key.IsZero():
			errs = append(errs, fmt.Errorf("loot.pools[%d]: name is required", i))
		case seen[key]:
			errs = append(errs, fmt.Errorf("loot.pools[%d]: duplicate name %q", i, p.Name))
		}
		seen[key] = true
	}
	clear(seen)
	for i, t := range r.Loot.Tables {
		key := ident.Normalize(t.Name)
		switch {
		case key.IsZero():
			errs = append(errs, fmt.Errorf("loot.tables[%d]: name is required", i))
		case seen[key]:
			errs = append(errs, fmt.Errorf("loot.tables[%d]: duplicate name %q", i, t.Name))
		}
		seen[key] = true
	}
	return errors.Join(errs...)
}
