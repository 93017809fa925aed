// Package chat holds the domain core: the single shared Room and the
// per-connection Session state machine. Transports hand accepted
// connections to a Session; everything after that happens here.
package chat

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/internal/protocol"
)

// DefaultHistoryCap bounds the replay buffer when no capacity is configured.
const DefaultHistoryCap = 100

const (
	systemPrefix   = "system prompt: "
	historyTrailer = "---------- end of recent history ----------"
)

// Room is the shared membership, history, and broadcast authority. It is
// created once at startup and mutated only through Join, Leave, Deliver and
// SystemPrompt, each of which takes the room lock; sessions call in from
// their own goroutines.
//
// The room never owns a session: membership is a lookup table keyed by the
// session's stable ID, and a session's lifetime is driven entirely by its
// own read/write loops.
type Room struct {
	name string
	log  *zerolog.Logger

	mu      sync.Mutex
	members map[string]*Session
	history []string
	cap     int
}

// NewRoom builds an empty room. historyCap bounds the replay buffer;
// non-positive values fall back to DefaultHistoryCap.
func NewRoom(name string, historyCap int, logger *zerolog.Logger) *Room {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &Room{
		name:    name,
		log:     logger,
		members: make(map[string]*Session),
		history: make([]string, 0, historyCap),
		cap:     historyCap,
	}
}

// Name returns the room's display name.
func (r *Room) Name() string {
	return r.name
}

// Join adds a session to the membership, replays the buffered history to it
// in original order (followed by one trailer line when anything was
// replayed), and announces the arrival to every other member. Joining twice
// is a no-op. The whole sequence runs under the room lock, so everything a
// joiner is owed is queued on its connection before any later broadcast.
func (r *Room) Join(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[s.ID()]; ok {
		return
	}
	r.members[s.ID()] = s

	for _, line := range r.history {
		s.Deliver(line)
	}
	if len(r.history) > 0 {
		s.Deliver(historyTrailer)
	}

	r.broadcastLocked(protocol.ClampText(systemPrefix+s.Name()+" joined the room"), s.ID())

	r.log.Info().
		Str("session_id", s.ID()).
		Str("name", s.Name()).
		Int("members", len(r.members)).
		Msg("session joined room")
}

// Leave removes a session from the membership and announces the departure
// to the remaining members. Leaving a room the session is not in is a no-op:
// a dying connection is usually reported twice, once by its read loop and
// once by its write loop, and only the first report may have any effect.
func (r *Room) Leave(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[s.ID()]; !ok {
		return
	}
	delete(r.members, s.ID())

	r.broadcastLocked(protocol.ClampText(systemPrefix+s.Name()+" left the room"), s.ID())

	r.log.Info().
		Str("session_id", s.ID()).
		Str("name", s.Name()).
		Int("members", len(r.members)).
		Msg("session left room")
}

// Deliver formats a chat line from sender, records it in the bounded
// history (oldest entry evicted first), and fans it out to every member
// except the sender.
func (r *Room) Deliver(body string, sender *Session) {
	line := protocol.ClampText(fmt.Sprintf("%s says: %s", sender.Name(), body))

	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, line)
	if len(r.history) > r.cap {
		r.history = r.history[len(r.history)-r.cap:]
	}

	r.broadcastLocked(line, sender.ID())
}

// SystemPrompt fans a system notice out to every member except excluded
// (which may be nil). System notices never enter the history.
func (r *Room) SystemPrompt(text string, excluded *Session) {
	exceptID := ""
	if excluded != nil {
		exceptID = excluded.ID()
	}
	line := protocol.ClampText(systemPrefix + text)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.broadcastLocked(line, exceptID)
}

// broadcastLocked enqueues line on every member except exceptID. Callers
// hold r.mu; the fan-out is a synchronous walk over the membership as it
// exists right now, and a session that leaves afterwards simply keeps
// whatever was already queued.
func (r *Room) broadcastLocked(line, exceptID string) {
	for id, m := range r.members {
		if id == exceptID {
			continue
		}
		m.Deliver(line)
	}
}

// MemberCount reports the current membership size.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// MemberNames lists the display names of current members, sorted so that
// output never depends on map iteration order.
func (r *Room) MemberNames() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.members))
	for _, m := range r.members {
		names = append(names, m.Name())
	}
	r.mu.Unlock()

	sort.Strings(names)
	return names
}

// History returns a copy of the buffered lines, oldest first.
func (r *Room) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// CloseAll closes every member session's connection. Used on shutdown; the
// sessions observe the closed connections and unwind through their usual
// error paths.
func (r *Room) CloseAll() {
	r.mu.Lock()
	members := make([]*Session, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	r.mu.Unlock()

	for _, m := range members {
		m.Close()
	}
}
