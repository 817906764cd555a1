// Package evolution orchestrates the three layer evolutions and the
// cross-layer interaction engine into one era transition, and owns the
// civilization's evolutionary snapshot.
package evolution

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/talgya/deeptime/internal/animal"
	"github.com/talgya/deeptime/internal/environ"
	"github.com/talgya/deeptime/internal/era"
	"github.com/talgya/deeptime/internal/interaction"
	"github.com/talgya/deeptime/internal/people"
)

// InteractionRecord is one transition's interaction outcome, kept in the
// bounded history buffer.
type InteractionRecord struct {
	Turn    uint64               `json:"turn"`
	Era     era.Era              `json:"era"`
	Effects []interaction.Effect `json:"effects"`
	Net     interaction.Deltas   `json:"net"`
}

// State is a civilization's complete evolutionary snapshot. It is owned
// exclusively by one civilization record and mutated only by the Engine,
// exactly once per era transition.
type State struct {
	CivID uuid.UUID `json:"civ_id"`
	Turn  uint64    `json:"turn"`
	Year  float64   `json:"year"` // absolute simulated year, drives climate cycles
	Era   era.Era   `json:"era"`

	People      *people.State  `json:"people_state"`
	Animals     *animal.State  `json:"animal_state"`
	Environment *environ.State `json:"environment_state"`

	// History holds the most recent interaction records in strictly
	// increasing turn order. Appends go through AppendHistory, which is the
	// single synchronization point for asynchronous reporters.
	History []InteractionRecord `json:"interaction_history"`

	// LastValidPolicies is substituted when an incoming policy set
	// conflicts with itself.
	LastValidPolicies era.Policies `json:"last_valid_policies"`

	mu sync.Mutex
}

// NewState creates the baseline snapshot for a freshly founded civilization.
// noiseSeed fixes the environment's natural jitter for deterministic replay.
func NewState(civID uuid.UUID, noiseSeed int64) *State {
	return &State{
		CivID:       civID,
		Era:         era.Prehistoric,
		People:      people.NewBaseline(),
		Animals:     animal.NewBaseline(),
		Environment: environ.NewBaseline(noiseSeed),
	}
}

// Clone returns a deep copy with its own lock. Projection runs operate on
// clones only; the canonical state is never shared with a sandbox.
func (s *State) Clone() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := &State{
		CivID:             s.CivID,
		Turn:              s.Turn,
		Year:              s.Year,
		Era:               s.Era,
		People:            s.People.Clone(),
		Animals:           s.Animals.Clone(),
		Environment:       s.Environment.Clone(),
		LastValidPolicies: s.LastValidPolicies,
		History:           make([]InteractionRecord, len(s.History)),
	}
	copy(out.History, s.History)
	return out
}

// AppendHistory appends a record, enforcing strictly increasing turn order
// and the bounded capacity. Safe for concurrent use.
func (s *State) AppendHistory(rec InteractionRecord, capHistory int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.History); n > 0 && rec.Turn <= s.History[n-1].Turn {
		return fmt.Errorf("history: turn %d not after %d", rec.Turn, s.History[n-1].Turn)
	}
	s.History = append(s.History, rec)
	if capHistory > 0 && len(s.History) > capHistory {
		s.History = s.History[len(s.History)-capHistory:]
	}
	return nil
}

// zstd codecs are stateless for EncodeAll/DecodeAll and shared.
var (
	stateEncoder, _ = zstd.NewWriter(nil)
	stateDecoder, _ = zstd.NewReader(nil)
)

// Serialize renders the snapshot as a compressed blob. The on-disk format
// around the blob belongs to the external save system.
func (s *State) Serialize() ([]byte, error) {
	s.mu.Lock()
	raw, err := json.Marshal(s)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("serialize state: %w", err)
	}
	return stateEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// Deserialize restores a snapshot produced by Serialize.
func Deserialize(data []byte) (*State, error) {
	raw, err := stateDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress state: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if s.People == nil || s.Animals == nil || s.Environment == nil {
		return nil, fmt.Errorf("decode state: missing layer state")
	}
	return &s, nil
}
