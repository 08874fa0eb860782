package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/pulse/internal/adapters/http/api"
	service "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/internal/domain/height"
	"github.com/okian/pulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type harness struct {
	mux   *http.ServeMux
	clock *height.Manual
}

func newHarness(startHeight uint64) *harness {
	clock := height.NewManual(startHeight)
	svc := service.New(service.WithClock(clock))
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	return &harness{mux: mux, clock: clock}
}

// do issues a request against the in-process mux. An empty caller omits
// the X-Caller header.
func (h *harness) do(method, path, caller string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if caller != "" {
		req.Header.Set("X-Caller", caller)
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder, v any) {
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		panic(err)
	}
}

func errCode(rec *httptest.ResponseRecorder) string {
	var resp struct {
		Code string `json:"code"`
	}
	decode(rec, &resp)
	return resp.Code
}

func createBody() map[string]any {
	return map[string]any{
		"title":          "sprint retro",
		"description":    "how did it go",
		"duration":       100,
		"feedback_kinds": []string{"rating", "reaction", "text"},
		"min_rating":     1,
		"max_rating":     5,
	}
}

func TestEventRoutes(t *testing.T) {
	Convey("Given a fresh server at height 10", t, func() {
		h := newHarness(10)

		Convey("When alice creates an event", func() {
			rec := h.do("POST", "/events", "alice", createBody())

			Convey("Then it responds 201 with event_id 1", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				var resp struct {
					EventID uint64 `json:"event_id"`
				}
				decode(rec, &resp)
				So(resp.EventID, ShouldEqual, 1)
			})

			Convey("Then the event can be read back", func() {
				rec := h.do("GET", "/events/1", "", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var ev struct {
					Creator     string `json:"creator"`
					StartHeight uint64 `json:"start_height"`
					EndHeight   uint64 `json:"end_height"`
					Closed      bool   `json:"closed"`
				}
				decode(rec, &ev)
				So(ev.Creator, ShouldEqual, "alice")
				So(ev.StartHeight, ShouldEqual, 10)
				So(ev.EndHeight, ShouldEqual, 110)
				So(ev.Closed, ShouldBeFalse)
			})

			Convey("Then the event count reports 1 with the current height", func() {
				rec := h.do("GET", "/events/count", "", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Count  uint64 `json:"count"`
					Height uint64 `json:"height"`
				}
				decode(rec, &resp)
				So(resp.Count, ShouldEqual, 1)
				So(resp.Height, ShouldEqual, 10)
			})

			Convey("Then only alice may close it", func() {
				rec := h.do("POST", "/events/1/close", "bob", nil)
				So(rec.Code, ShouldEqual, http.StatusForbidden)
				So(errCode(rec), ShouldEqual, "not_authorized")

				rec = h.do("POST", "/events/1/close", "alice", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
			})

			Convey("Then extending moves the end height", func() {
				rec := h.do("POST", "/events/1/extend", "alice", map[string]any{"additional_blocks": 50})
				So(rec.Code, ShouldEqual, http.StatusOK)

				rec = h.do("GET", "/events/1", "", nil)
				var ev struct {
					EndHeight uint64 `json:"end_height"`
				}
				decode(rec, &ev)
				So(ev.EndHeight, ShouldEqual, 160)
			})
		})

		Convey("Then creating without a caller responds 400", func() {
			rec := h.do("POST", "/events", "", createBody())
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(errCode(rec), ShouldEqual, "missing_caller")
		})

		Convey("Then an over-length title is rejected at the boundary", func() {
			body := createBody()
			body["title"] = strings.Repeat("x", 101)
			rec := h.do("POST", "/events", "alice", body)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(errCode(rec), ShouldEqual, "bad_request")
		})

		Convey("Then an empty kind list responds 422", func() {
			body := createBody()
			body["feedback_kinds"] = []string{}
			rec := h.do("POST", "/events", "alice", body)
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errCode(rec), ShouldEqual, "validation_failed")
		})

		Convey("Then an unknown event responds 404", func() {
			rec := h.do("GET", "/events/42", "", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			So(errCode(rec), ShouldEqual, "not_found")
		})

		Convey("Then a non-numeric event id responds 400", func() {
			rec := h.do("POST", "/events/abc/close", "alice", nil)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestFeedbackRoutes(t *testing.T) {
	Convey("Given an open event created by alice", t, func() {
		h := newHarness(10)
		rec := h.do("POST", "/events", "alice", createBody())
		So(rec.Code, ShouldEqual, http.StatusCreated)

		Convey("When bob submits a rating", func() {
			rec := h.do("POST", "/events/1/feedback/rating", "bob", map[string]any{"value": 4})

			Convey("Then it responds 201 with submission_id 1", func() {
				So(rec.Code, ShouldEqual, http.StatusCreated)
				var resp struct {
					SubmissionID uint64 `json:"submission_id"`
				}
				decode(rec, &resp)
				So(resp.SubmissionID, ShouldEqual, 1)
			})

			Convey("Then a repeat rating by bob responds 409", func() {
				rec := h.do("POST", "/events/1/feedback/rating", "bob", map[string]any{"value": 2})
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(errCode(rec), ShouldEqual, "duplicate_submission")
			})

			Convey("Then the average reflects the single rating", func() {
				rec := h.do("GET", "/events/1/average", "", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Average *float64 `json:"average"`
				}
				decode(rec, &resp)
				So(resp.Average, ShouldNotBeNil)
				So(*resp.Average, ShouldEqual, 4.0)
			})

			Convey("Then the stats endpoint reports the aggregate", func() {
				rec := h.do("GET", "/events/1/stats", "", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Count     uint64            `json:"count"`
					Sum       uint64            `json:"sum"`
					Histogram map[string]uint64 `json:"histogram"`
				}
				decode(rec, &resp)
				So(resp.Count, ShouldEqual, 1)
				So(resp.Sum, ShouldEqual, 4)
				So(resp.Histogram["4"], ShouldEqual, 1)
			})

			Convey("Then the submitted projection answers per kind", func() {
				rec := h.do("GET", "/events/1/submitted?participant=bob&kind=rating", "", nil)
				var resp struct {
					Submitted bool `json:"submitted"`
				}
				decode(rec, &resp)
				So(resp.Submitted, ShouldBeTrue)

				rec = h.do("GET", "/events/1/submitted?participant=bob&kind=text", "", nil)
				decode(rec, &resp)
				So(resp.Submitted, ShouldBeFalse)
			})
		})

		Convey("When carol submits anonymous text", func() {
			rec := h.do("POST", "/events/1/feedback/text", "carol", map[string]any{"text": "great pace", "anonymous": true})
			So(rec.Code, ShouldEqual, http.StatusCreated)

			Convey("Then the view hides the submitter", func() {
				rec := h.do("GET", "/events/1/feedback/1", "", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)
				var view struct {
					Submitter string `json:"submitter"`
					Text      string `json:"text"`
					Anonymous bool   `json:"anonymous"`
				}
				decode(rec, &view)
				So(view.Submitter, ShouldBeEmpty)
				So(view.Text, ShouldEqual, "great pace")
				So(view.Anonymous, ShouldBeTrue)
			})
		})

		Convey("Then an out-of-range rating responds 422", func() {
			rec := h.do("POST", "/events/1/feedback/rating", "bob", map[string]any{"value": 9})
			So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errCode(rec), ShouldEqual, "validation_failed")
		})

		Convey("Then empty text is rejected at the boundary", func() {
			rec := h.do("POST", "/events/1/feedback/text", "bob", map[string]any{"text": ""})
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Then over-length text is rejected at the boundary", func() {
			rec := h.do("POST", "/events/1/feedback/text", "bob", map[string]any{"text": strings.Repeat("x", 281)})
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the window passes", func() {
			h.clock.Set(111)

			Convey("Then submissions respond 410 event_expired", func() {
				rec := h.do("POST", "/events/1/feedback/text", "bob", map[string]any{"text": "late"})
				So(rec.Code, ShouldEqual, http.StatusGone)
				So(errCode(rec), ShouldEqual, "event_expired")
			})
		})

		Convey("When the event is closed", func() {
			rec := h.do("POST", "/events/1/close", "alice", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then submissions respond 410 event_not_started", func() {
				rec := h.do("POST", "/events/1/feedback/text", "bob", map[string]any{"text": "late"})
				So(rec.Code, ShouldEqual, http.StatusGone)
				So(errCode(rec), ShouldEqual, "event_not_started")
			})
		})

		Convey("Then an event without ratings reports an empty aggregate", func() {
			rec := h.do("GET", "/events/1/stats", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			var resp struct {
				Count uint64 `json:"count"`
			}
			decode(rec, &resp)
			So(resp.Count, ShouldEqual, 0)

			rec = h.do("GET", "/events/1/average", "", nil)
			var avg struct {
				Average *float64 `json:"average"`
			}
			decode(rec, &avg)
			So(avg.Average, ShouldBeNil)
		})
	})
}

func TestParticipantRoutes(t *testing.T) {
	Convey("Given an authenticated event created by alice", t, func() {
		h := newHarness(10)
		body := createBody()
		body["requires_auth"] = true
		rec := h.do("POST", "/events", "alice", body)
		So(rec.Code, ShouldEqual, http.StatusCreated)

		Convey("Then ungranted submissions respond 403 unauthorized", func() {
			rec := h.do("POST", "/events/1/feedback/rating", "bob", map[string]any{"value": 3})
			So(rec.Code, ShouldEqual, http.StatusForbidden)
			So(errCode(rec), ShouldEqual, "unauthorized")
		})

		Convey("Then a never-written grant responds 404", func() {
			rec := h.do("GET", "/events/1/participants/bob", "", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When alice grants bob access", func() {
			rec := h.do("POST", "/events/1/participants", "alice", map[string]any{"participant": "bob"})
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then bob can submit", func() {
				rec := h.do("POST", "/events/1/feedback/rating", "bob", map[string]any{"value": 3})
				So(rec.Code, ShouldEqual, http.StatusCreated)
			})

			Convey("When the grant is revoked", func() {
				rec := h.do("DELETE", "/events/1/participants/bob", "alice", nil)
				So(rec.Code, ShouldEqual, http.StatusOK)

				Convey("Then the tombstone is visible with allowed=false", func() {
					rec := h.do("GET", "/events/1/participants/bob", "", nil)
					So(rec.Code, ShouldEqual, http.StatusOK)
					var g struct {
						Allowed bool `json:"allowed"`
					}
					decode(rec, &g)
					So(g.Allowed, ShouldBeFalse)
				})

				Convey("Then bob is back to 403", func() {
					rec := h.do("POST", "/events/1/feedback/rating", "bob", map[string]any{"value": 3})
					So(rec.Code, ShouldEqual, http.StatusForbidden)
				})
			})
		})

		Convey("Then a non-creator cannot manage participants", func() {
			rec := h.do("POST", "/events/1/participants", "bob", map[string]any{"participant": "carol"})
			So(rec.Code, ShouldEqual, http.StatusForbidden)
			So(errCode(rec), ShouldEqual, "not_authorized")
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given a fresh server", t, func() {
		h := newHarness(10)

		Convey("Then /stats reports engine state", func() {
			rec := h.do("GET", "/stats", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			var resp map[string]any
			decode(rec, &resp)
			So(resp, ShouldContainKey, "events")
			So(resp, ShouldContainKey, "height")
		})

		Convey("Then /healthz serves metrics exposition", func() {
			rec := h.do("GET", "/healthz", "", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
