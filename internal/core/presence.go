package core

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Broadcaster pushes the connected-user set to every live session whenever
// the registry changes.
type Broadcaster struct {
	registry *Registry
	log      *zerolog.Logger
}

// NewBroadcaster builds a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, logger *zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: logger}
}

// Announce sends the current user list to all connected sessions. Sends run
// concurrently and per-recipient failures are logged and skipped; a session
// that misses a broadcast re-synchronizes on the next registry change.
func (b *Broadcaster) Announce() {
	sessions := b.registry.Sessions()
	if len(sessions) == 0 {
		return
	}

	users := make([]string, 0, len(sessions))
	for _, s := range sessions {
		users = append(users, s.Username)
	}
	sort.Strings(users)

	ev := &Event{Kind: EventUserList, Users: users}

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			if !s.TrySend(ev) {
				b.log.Warn().Str("username", s.Username).Msg("presence broadcast skipped, session buffer full")
			}
		}(s)
	}
	wg.Wait()
}
