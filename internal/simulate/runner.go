package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/okian/pulse/pkg/logger"
)

// Default run constants.
const (
	averageTolerance = 1e-9
)

// Run executes the complete simulation: create events, grant participants,
// submit feedback concurrently, then verify aggregates server-side.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // load generation does not need crypto randomness

	log.Info(ctx, "starting pulse simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("events", cfg.Events),
		logger.Int("participants", cfg.Participants),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.Get(ctx, "/events/count", nil); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	creator, participants, events := generateScenario(cfg, rng)

	if err := createEvents(ctx, client, creator, events, stats); err != nil {
		return fmt.Errorf("event creation failed: %w", err)
	}
	if err := grantParticipants(ctx, client, creator, participants, events, stats); err != nil {
		return fmt.Errorf("participant grants failed: %w", err)
	}

	expected := submitFeedback(ctx, cfg, client, participants, events, stats, rng)

	if err := verifyAggregates(ctx, client, events, expected, stats); err != nil {
		return fmt.Errorf("aggregate verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "simulation finished",
		logger.Any("eventsCreated", stats.EventsCreated.Load()),
		logger.Any("grantsWritten", stats.GrantsWritten.Load()),
		logger.Any("submissionsAccepted", stats.SubmissionsAccepted.Load()),
		logger.Any("duplicatesRejected", stats.DuplicatesRejected.Load()),
		logger.Any("submissionsRejected", stats.SubmissionsRejected.Load()),
		logger.Any("verificationFailures", stats.VerificationFailures.Load()),
		logger.String("duration", stats.Duration.String()),
	)

	if n := stats.VerificationFailures.Load(); n > 0 {
		return fmt.Errorf("%d events failed aggregate verification", n)
	}
	return nil
}

func createEvents(ctx context.Context, client *Client, creator string, events []plannedEvent, stats *Stats) error {
	for i := range events {
		var resp struct {
			EventID uint64 `json:"event_id"`
		}
		body := map[string]any{
			"title":          events[i].Title,
			"description":    events[i].Description,
			"duration":       events[i].Duration,
			"feedback_kinds": events[i].FeedbackKinds,
			"min_rating":     events[i].MinRating,
			"max_rating":     events[i].MaxRating,
			"requires_auth":  events[i].RequiresAuth,
		}
		if err := client.Post(ctx, creator, "/events", body, &resp, http.StatusCreated); err != nil {
			return err
		}
		events[i].ID = resp.EventID
		stats.EventsCreated.Add(1)
	}
	return nil
}

func grantParticipants(ctx context.Context, client *Client, creator string, participants []string, events []plannedEvent, stats *Stats) error {
	for _, ev := range events {
		if !ev.RequiresAuth {
			continue
		}
		for _, p := range participants {
			path := fmt.Sprintf("/events/%d/participants", ev.ID)
			if err := client.Post(ctx, creator, path, map[string]string{"participant": p}, nil, http.StatusOK); err != nil {
				return err
			}
			stats.GrantsWritten.Add(1)
		}
	}
	return nil
}

// task is one participant's feedback against one event.
type task struct {
	event       plannedEvent
	participant string
}

// submitFeedback fans tasks out over cfg.Workers goroutines. Each task
// submits one rating (plus a deliberate duplicate), one reaction, and one
// text item. Returns the expected rating sum and count per event id.
func submitFeedback(ctx context.Context, cfg *Config, client *Client, participants []string, events []plannedEvent, stats *Stats, rng *rand.Rand) map[uint64]*expectedAggregate {
	expected := make(map[uint64]*expectedAggregate, len(events))
	tasks := make(chan task)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		seed := rng.Int63()
		go func() {
			defer wg.Done()
			localRNG := rand.New(rand.NewSource(seed)) //nolint:gosec // see above
			for t := range tasks {
				value := pickRating(t.event, localRNG)
				if submitOne(ctx, client, t, "rating", map[string]any{"value": value}, stats) {
					mu.Lock()
					agg, ok := expected[t.event.ID]
					if !ok {
						agg = &expectedAggregate{}
						expected[t.event.ID] = agg
					}
					agg.count++
					agg.sum += value
					mu.Unlock()

					// A second rating by the same identity must be rejected.
					if dupErr := client.Post(ctx, t.participant,
						fmt.Sprintf("/events/%d/feedback/rating", t.event.ID),
						map[string]any{"value": value}, nil, http.StatusCreated); dupErr != nil {
						var se *StatusError
						if errors.As(dupErr, &se) && se.Status == http.StatusConflict {
							stats.DuplicatesRejected.Add(1)
						} else {
							stats.SubmissionsRejected.Add(1)
						}
					}
				}

				submitOne(ctx, client, t, "reaction", map[string]any{"reaction": pickReaction(localRNG)}, stats)
				submitOne(ctx, client, t, "text", map[string]any{"text": "simulated feedback"}, stats)
			}
		}()
	}

	for _, ev := range events {
		for _, p := range participants {
			select {
			case tasks <- task{event: ev, participant: p}:
			case <-ctx.Done():
				close(tasks)
				wg.Wait()
				return expected
			}
		}
	}
	close(tasks)
	wg.Wait()

	return expected
}

func submitOne(ctx context.Context, client *Client, t task, kind string, body map[string]any, stats *Stats) bool {
	path := fmt.Sprintf("/events/%d/feedback/%s", t.event.ID, kind)
	if err := client.Post(ctx, t.participant, path, body, nil, http.StatusCreated); err != nil {
		stats.SubmissionsRejected.Add(1)
		return false
	}
	stats.SubmissionsAccepted.Add(1)
	return true
}

type expectedAggregate struct {
	count uint64
	sum   uint64
}

// verifyAggregates compares server-side averages and stats against the
// locally tracked expectation.
func verifyAggregates(ctx context.Context, client *Client, events []plannedEvent, expected map[uint64]*expectedAggregate, stats *Stats) error {
	log := logger.Get()

	for _, ev := range events {
		want, hasRatings := expected[ev.ID]

		var avgResp struct {
			Average *float64 `json:"average"`
		}
		if err := client.Get(ctx, fmt.Sprintf("/events/%d/average", ev.ID), &avgResp); err != nil {
			return err
		}

		var statsResp struct {
			Count uint64 `json:"count"`
			Sum   uint64 `json:"sum"`
		}
		if err := client.Get(ctx, fmt.Sprintf("/events/%d/stats", ev.ID), &statsResp); err != nil {
			return err
		}

		switch {
		case !hasRatings:
			if avgResp.Average != nil || statsResp.Count != 0 {
				stats.VerificationFailures.Add(1)
			}
		case avgResp.Average == nil,
			statsResp.Count != want.count,
			statsResp.Sum != want.sum,
			math.Abs(*avgResp.Average-float64(want.sum)/float64(want.count)) > averageTolerance:
			stats.VerificationFailures.Add(1)
			log.Warn(ctx, "aggregate mismatch",
				logger.Uint64("eventID", ev.ID),
				logger.Uint64("wantCount", want.count),
				logger.Uint64("gotCount", statsResp.Count),
				logger.Uint64("wantSum", want.sum),
				logger.Uint64("gotSum", statsResp.Sum),
			)
		}
	}
	return nil
}
