package simulate

import (
	"math/rand"

	"github.com/google/uuid"
)

// Generation bounds for the synthetic scenario.
const (
	minDuration     = 1000
	durationSpread  = 9000
	minRatingFloor  = 1
	maxRatingCeil   = 5
	authEventRatio  = 4 // one in N events requires authentication
	reactionChoices = 6
)

// plannedEvent is one event the simulator will create and exercise.
type plannedEvent struct {
	Title         string
	Description   string
	Duration      uint64
	FeedbackKinds []string
	MinRating     uint64
	MaxRating     uint64
	RequiresAuth  bool

	// Assigned after creation.
	ID      uint64
	Creator string
}

var reactions = []string{"👍", "👎", "🎉", "🔥", "💡", "🤝"}

// generateScenario builds the creator, participant pool, and planned
// events for one run. Identities are fresh uuids so repeated runs against
// the same server never collide with earlier dedup markers.
func generateScenario(cfg *Config, rng *rand.Rand) (string, []string, []plannedEvent) {
	creator := "creator-" + uuid.NewString()

	participants := make([]string, cfg.Participants)
	for i := range participants {
		participants[i] = "participant-" + uuid.NewString()
	}

	events := make([]plannedEvent, cfg.Events)
	for i := range events {
		events[i] = plannedEvent{
			Title:         "simulated event " + uuid.NewString()[:8],
			Description:   "load scenario event",
			Duration:      minDuration + uint64(rng.Int63n(durationSpread)),
			FeedbackKinds: []string{"rating", "reaction", "text"},
			MinRating:     minRatingFloor,
			MaxRating:     maxRatingCeil,
			RequiresAuth:  i%authEventRatio == 0,
			Creator:       creator,
		}
	}
	return creator, participants, events
}

// pickRating returns a rating within the event's configured range.
func pickRating(ev plannedEvent, rng *rand.Rand) uint64 {
	span := ev.MaxRating - ev.MinRating + 1
	return ev.MinRating + uint64(rng.Int63n(int64(span)))
}

// pickReaction returns one of the canned reaction labels.
func pickReaction(rng *rand.Rand) string {
	return reactions[rng.Intn(reactionChoices)]
}
