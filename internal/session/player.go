package session

import (
	"sync"

	"github.com/google/uuid"
)

// Player is the server's view of one connected client: identity plus the
// last-known position the connection runtime applies movement packets to.
type Player struct {
	UUID     uuid.UUID
	Username string
	EntityID int32

	mu             sync.Mutex
	X, Y, Z        float64
	Yaw, Pitch     float32
	OnGround       bool
}

// NewPlayer returns a Player with the given identity and entity id.
func NewPlayer(id uuid.UUID, username string, entityID int32) *Player {
	return &Player{UUID: id, Username: username, EntityID: entityID}
}

// SetPosition records a position-only movement update.
func (p *Player) SetPosition(x, y, z float64, onGround bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.X, p.Y, p.Z = x, y, z
	p.OnGround = onGround
}

// SetPositionAndRotation records a combined position+look update.
func (p *Player) SetPositionAndRotation(x, y, z float64, yaw, pitch float32, onGround bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.X, p.Y, p.Z = x, y, z
	p.Yaw, p.Pitch = yaw, pitch
	p.OnGround = onGround
}

// SetRotation records a look-only update.
func (p *Player) SetRotation(yaw, pitch float32, onGround bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Yaw, p.Pitch = yaw, pitch
	p.OnGround = onGround
}

// Position returns the player's last-known position and look.
func (p *Player) Position() (x, y, z float64, yaw, pitch float32, onGround bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.X, p.Y, p.Z, p.Yaw, p.Pitch, p.OnGround
}

// Roster is the set of currently-connected players, keyed by UUID.
type Roster struct {
	mu      sync.Mutex
	players map[uuid.UUID]*Player
}

// NewRoster returns an empty Roster.
func NewRoster() *Roster {
	return &Roster{players: make(map[uuid.UUID]*Player)}
}

// Add registers a player, replacing any prior entry with the same UUID.
func (r *Roster) Add(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[p.UUID] = p
}

// Remove drops a player from the roster.
func (r *Roster) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, id)
}

// Get returns the player with the given UUID, if connected.
func (r *Roster) Get(id uuid.UUID) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	return p, ok
}

// Len returns the number of connected players.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Each calls fn once per connected player. fn must not mutate the roster.
func (r *Roster) Each(fn func(*Player)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		fn(p)
	}
}
