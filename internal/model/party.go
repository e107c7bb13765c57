package model

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/gamerules/internal/inventory"
	"github.com/udisondev/gamerules/internal/loot"
)

// MaxPartyMembers is the maximum number of battlers in a party.
const MaxPartyMembers = 8

// Party is a group of battlers sharing one inventory. It is the loot
// sink: granted drops go to the inventory and messages are kept for the
// host to show.
// Thread-safe: all methods acquire internal mutex.
type Party struct {
	mu       sync.RWMutex
	members  []*Battler
	inv      *inventory.Inventory
	messages []string
}

// NewParty creates a party with an empty inventory. Members past the
// limit and duplicates are skipped.
func NewParty(members ...*Battler) *Party {
	p := &Party{
		members: make([]*Battler, 0, MaxPartyMembers),
		inv:     inventory.New(),
	}
	for _, m := range members {
		if err := p.AddMember(m); err != nil {
			slog.Warn("battler not added to party", "battler", m.ID(), "error", err)
		}
	}
	return p
}

// Inventory returns the shared containers.
func (p *Party) Inventory() *inventory.Inventory { return p.inv }

// Members returns a copy of the member list.
func (p *Party) Members() []*Battler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]*Battler, len(p.members))
	copy(result, p.members)
	return result
}

// MemberCount returns the number of members in party.
func (p *Party) MemberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.members)
}

// Member returns a member by id (nil if not found).
func (p *Party) Member(id int) *Battler {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, m := range p.members {
		if m.ID() == id {
			return m
		}
	}
	return nil
}

// AddMember adds a battler to the party.
// Returns error if party is full or the battler is already a member.
func (p *Party) AddMember(b *Battler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.members) >= MaxPartyMembers {
		return fmt.Errorf("party full (max %d members)", MaxPartyMembers)
	}
	for _, m := range p.members {
		if m.ID() == b.ID() {
			return fmt.Errorf("battler %d already in party", b.ID())
		}
	}

	p.members = append(p.members, b)
	return nil
}

// RemoveMember removes a battler by id, keeping member order.
func (p *Party) RemoveMember(id int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, m := range p.members {
		if m.ID() == id {
			p.members = append(p.members[:i], p.members[i+1:]...)
			return true
		}
	}
	return false
}

// HighestLevel returns the level of the strongest member, 0 for an empty
// party. Commands outside battle propagate it onto leveled drops.
func (p *Party) HighestLevel() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	lvl := 0
	for _, m := range p.members {
		lvl = max(lvl, m.Level())
	}
	return lvl
}

// Grant adds count copies of a resolved drop to the inventory.
func (p *Party) Grant(item loot.ResolvedItem, count int) {
	for range count {
		p.inv.Grant(item)
	}
}

// Notify keeps a message for the host.
func (p *Party) Notify(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

// Messages drains the kept messages.
func (p *Party) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.messages
	p.messages = nil
	return out
}
