package domain

import (
	"sort"
	"time"
)

// BroadcastStatus is the lifecycle status of a broadcast as reported by the platform.
type BroadcastStatus string

const (
	BroadcastCreated      BroadcastStatus = "created"
	BroadcastReady        BroadcastStatus = "ready"
	BroadcastTestStarting BroadcastStatus = "testStarting"
	BroadcastTesting      BroadcastStatus = "testing"
	BroadcastLiveStarting BroadcastStatus = "liveStarting"
	BroadcastLive         BroadcastStatus = "live"
	BroadcastComplete     BroadcastStatus = "complete"
	BroadcastRevoked      BroadcastStatus = "revoked"
)

// Finished reports whether the broadcast can no longer go live.
func (s BroadcastStatus) Finished() bool {
	return s == BroadcastComplete || s == BroadcastRevoked
}

// StreamHealth is the health of an ingestion stream.
type StreamHealth string

const (
	StreamGood   StreamHealth = "good"
	StreamOK     StreamHealth = "ok"
	StreamBad    StreamHealth = "bad"
	StreamNoData StreamHealth = "noData"
)

// Broadcast represents a single YouTube Live event.
type Broadcast struct {
	// ID is the platform identifier of the broadcast
	ID string

	// Title is the human-readable broadcast name
	Title string

	// Status is the current lifecycle status
	Status BroadcastStatus

	// BoundStreamID is the ingestion stream bound to this broadcast, if any
	BoundStreamID string

	// MonitorStreamEnabled indicates whether the testing phase is available.
	// Broadcasts without a monitor stream go straight from ready to live.
	MonitorStreamEnabled bool

	// ScheduledStart is the scheduled start time
	ScheduledStart time.Time

	// LiveChatID is the chat attached to the broadcast
	LiveChatID string
}

// Stream represents an ingestion stream.
type Stream struct {
	ID     string
	Health StreamHealth
}

// StateMemory is the authoritative broadcast cache.
//
// Every entry of UnfinishedBroadcasts is also present in Broadcasts under the
// same ID. The order of UnfinishedBroadcasts drives positional slot variables.
type StateMemory struct {
	Broadcasts           map[string]Broadcast
	Streams              map[string]Stream
	UnfinishedBroadcasts []Broadcast
}

// NewStateMemory builds a StateMemory from a list of broadcasts and streams,
// deriving the ordered unfinished subset.
func NewStateMemory(broadcasts []Broadcast, streams []Stream) StateMemory {
	m := StateMemory{
		Broadcasts: make(map[string]Broadcast, len(broadcasts)),
		Streams:    make(map[string]Stream, len(streams)),
	}
	for _, b := range broadcasts {
		m.Broadcasts[b.ID] = b
	}
	for _, s := range streams {
		m.Streams[s.ID] = s
	}
	m.RebuildUnfinished()
	return m
}

// RebuildUnfinished recomputes UnfinishedBroadcasts from Broadcasts.
// Unfinished broadcasts are ordered by scheduled start, then by ID.
func (m *StateMemory) RebuildUnfinished() {
	unfinished := make([]Broadcast, 0, len(m.Broadcasts))
	for _, b := range m.Broadcasts {
		if !b.Status.Finished() {
			unfinished = append(unfinished, b)
		}
	}
	sort.Slice(unfinished, func(i, j int) bool {
		a, b := unfinished[i], unfinished[j]
		if !a.ScheduledStart.Equal(b.ScheduledStart) {
			return a.ScheduledStart.Before(b.ScheduledStart)
		}
		return a.ID < b.ID
	})
	m.UnfinishedBroadcasts = unfinished
}

// UnfinishedIndex returns the current position of the broadcast in
// UnfinishedBroadcasts, or -1 if it is not there.
func (m StateMemory) UnfinishedIndex(id string) int {
	for i, b := range m.UnfinishedBroadcasts {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// StreamHealth returns the health of the stream bound to the broadcast.
// Broadcasts without a known bound stream report StreamNoData.
func (m StateMemory) StreamHealth(b Broadcast) StreamHealth {
	if s, ok := m.Streams[b.BoundStreamID]; ok && s.Health != "" {
		return s.Health
	}
	return StreamNoData
}

// SortedBroadcasts returns all tracked broadcasts ordered by ID.
func (m StateMemory) SortedBroadcasts() []Broadcast {
	out := make([]Broadcast, 0, len(m.Broadcasts))
	for _, b := range m.Broadcasts {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Clone returns a deep copy that can be handed to another goroutine.
func (m StateMemory) Clone() StateMemory {
	c := StateMemory{
		Broadcasts:           make(map[string]Broadcast, len(m.Broadcasts)),
		Streams:              make(map[string]Stream, len(m.Streams)),
		UnfinishedBroadcasts: make([]Broadcast, len(m.UnfinishedBroadcasts)),
	}
	for k, v := range m.Broadcasts {
		c.Broadcasts[k] = v
	}
	for k, v := range m.Streams {
		c.Streams[k] = v
	}
	copy(c.UnfinishedBroadcasts, m.UnfinishedBroadcasts)
	return c
}
