package data

// Timing is when a state's turn counter ticks down.
type Timing int

const (
	TimingNone      Timing = 0
	TimingActionEnd Timing = 1
	TimingTurnEnd   Timing = 2
)

// Item is a usable item record.
type Item struct {
	ID         int
	Name       string
	Note       string
	Consumable bool
}

// Weapon is a weapon record.
type Weapon struct {
	ID   int
	Name string
	Note string
}

// Armor is an armor record.
type Armor struct {
	ID   int
	Name string
	Note string
}

// Skill is a skill record with its resource costs.
type Skill struct {
	ID     int
	Name   string
	Note   string
	MPCost int
	TPCost int
	HPCost int
}

// State is a status effect record.
type State struct {
	ID                int
	Name              string
	Note              string
	AutoRemoval       Timing
	MinTurns          int
	MaxTurns          int
	RemoveAtBattleEnd bool
}

// Enemy is an enemy record.
type Enemy struct {
	ID   int
	Name string
	Note string
}

// Actor is a playable character record.
type Actor struct {
	ID      int
	Name    string
	Note    string
	ClassID int
}

// Class is an actor class record.
type Class struct {
	ID   int
	Name string
	Note string
}

// Dataset is the loaded host database. Tables are indexed by record id;
// slices keep file order, which is the order rules are scanned in.
type Dataset struct {
	Items   []*Item
	Weapons []*Weapon
	Armors  []*Armor
	Skills  []*Skill
	States  []*State
	Enemies []*Enemy
	Actors  []*Actor
	Classes []*Class

	itemByID   map[int]*Item
	weaponByID map[int]*Weapon
	armorByID  map[int]*Armor
	skillByID  map[int]*Skill
	stateByID  map[int]*State
	enemyByID  map[int]*Enemy
	actorByID  map[int]*Actor
	classByID  map[int]*Class
}

// Index builds the id lookups. Must be called after the tables are filled
// and before any accessor is used.
func (d *Dataset) Index() {
	d.itemByID = indexByID(d.Items, func(v *Item) int { return v.ID })
	d.weaponByID = indexByID(d.Weapons, func(v *Weapon) int { return v.ID })
	d.armorByID = indexByID(d.Armors, func(v *Armor) int { return v.ID })
	d.skillByID = indexByID(d.Skills, func(v *Skill) int { return v.ID })
	d.stateByID = indexByID(d.States, func(v *State) int { return v.ID })
	d.enemyByID = indexByID(d.Enemies, func(v *Enemy) int { return v.ID })
	d.actorByID = indexByID(d.Actors, func(v *Actor) int { return v.ID })
	d.classByID = indexByID(d.Classes, func(v *Class) int { return v.ID })
}

func indexByID[T any](rows []*T, id func(*T) int) map[int]*T {
	m := make(map[int]*T, len(rows))
	for _, r := range rows {
		if _, dup := m[id(r)]; !dup {
			m[id(r)] = r
		}
	}
	return m
}

func (d *Dataset) Item(id int) *Item     { return d.itemByID[id] }
func (d *Dataset) Weapon(id int) *Weapon { return d.weaponByID[id] }
func (d *Dataset) Armor(id int) *Armor   { return d.armorByID[id] }
func (d *Dataset) Skill(id int) *Skill   { return d.skillByID[id] }
func (d *Dataset) State(id int) *State   { return d.stateByID[id] }
func (d *Dataset) Enemy(id int) *Enemy   { return d.enemyByID[id] }
func (d *Dataset) Actor(id int) *Actor   { return d.actorByID[id] }
func (d *Dataset) Class(id int) *Class   { return d.classByID[id] }
