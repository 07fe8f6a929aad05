/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for demos. Every scenario goes through the same services the API
	uses, so balances and the movement journal are consistent with the
	requests they contain.

AVAILABLE SCENARIOS:

	default:  Karan, 30 days, holds the manager role
	team:     A manager with four reports and one request in each state
	crunch:   A team where most people are already off on the same week

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create employees and manager roles
 3. Place employees under their manager
 4. Submit requests, then approve or deny some of them

Request dates are offsets from the first Monday of the enrollment window,
so scenarios load under any window that spans at least three weeks.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "team"}

USAGE VIA CLI:

	leave-engine seed team

NOTE:

	Scenarios reset the database. Only use in development/demo environments.
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "default",
		Name:        "Default",
		Description: "A single employee with a full balance who holds the manager role",
	},
	{
		ID:          "team",
		Name:        "Team",
		Description: "A manager with four reports and approved, pending and denied requests",
	},
	{
		ID:          "crunch",
		Name:        "Crunch Week",
		Description: "Most of a team booked the same week; one report is nearly out of days",
	},
}

// ErrUnknownScenario is returned by Seed for an id not in Scenarios.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenarios lists the loadable scenarios.
func Scenarios() []ScenarioDTO {
	return append([]ScenarioDTO(nil), scenarios...)
}

// Seed resets the store and loads scenario id.
func (h *Handler) Seed(ctx context.Context, id string) error {
	var load func(context.Context) error
	switch id {
	case "default":
		load = h.loadDefaultScenario
	case "team":
		load = h.loadTeamScenario
	case "crunch":
		load = h.loadCrunchScenario
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := load(ctx); err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}
	h.currentScenario = id
	h.Logger.Info("scenario loaded", zap.String("scenario", id))
	return nil
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, "Invalid request body", err)
		return
	}

	if err := h.Seed(r.Context(), req.ScenarioID); err != nil {
		if errors.Is(err, ErrUnknownScenario) {
			writeError(w, http.StatusBadRequest, "Unknown scenario", err)
			return
		}
		h.fail(w, r, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"scenario": req.ScenarioID,
	})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// firstMonday is the first Monday on or after the window start.
func (h *Handler) firstMonday() time.Time {
	d := h.Requests.Window.Start
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// span returns [monday+from, monday+to] in days.
func (h *Handler) span(from, to int) (time.Time, time.Time) {
	m := h.firstMonday()
	return m.AddDate(0, 0, from), m.AddDate(0, 0, to)
}

func (h *Handler) employee(ctx context.Context, name string, age int, holidays int, managerID int64) (int64, error) {
	emp, err := h.Directory.CreateEmployee(ctx, leave.NewEmployee{
		Name:           name,
		Age:            age,
		ContactDetails: fmt.Sprintf("%s@example.com", name),
		HolidaysLeft:   holidays,
		ManagerID:      managerID,
	})
	if err != nil {
		return 0, fmt.Errorf("employee %s: %w", name, err)
	}
	return emp.ID, nil
}

func (h *Handler) manager(ctx context.Context, name string, age int) (int64, error) {
	id, err := h.employee(ctx, name, age, leave.MaxHolidays, 0)
	if err != nil {
		return 0, err
	}
	if _, err := h.Directory.CreateManager(ctx, id); err != nil {
		return 0, fmt.Errorf("manager role for %s: %w", name, err)
	}
	return id, nil
}

// request submits a request and moves it to final when it is not PENDING.
func (h *Handler) request(ctx context.Context, author, manager int64, from, to int, final leave.Status) error {
	start, end := h.span(from, to)
	req, err := h.Requests.Create(ctx, leave.CreateInput{
		AuthorID:  author,
		ManagerID: manager,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return fmt.Errorf("request for %d: %w", author, err)
	}
	if final == leave.StatusPending {
		return nil
	}
	if _, err := h.Requests.Update(ctx, req.ID, leave.UpdateInput{Status: &final}); err != nil {
		return fmt.Errorf("mark request %d %s: %w", req.ID, final, err)
	}
	return nil
}

// loadDefaultScenario is the seed the frontend expects on a fresh install.
func (h *Handler) loadDefaultScenario(ctx context.Context) error {
	_, err := h.manager(ctx, "Karan", 30)
	return err
}

func (h *Handler) loadTeamScenario(ctx context.Context) error {
	alice, err := h.manager(ctx, "Alice", 41)
	if err != nil {
		return err
	}

	reports := []struct {
		name     string
		age      int
		holidays int
	}{
		{"Karan", 30, 30},
		{"Mia", 27, 25},
		{"Noor", 35, 18},
		{"Oscar", 52, 30},
	}
	ids := make([]int64, len(reports))
	for i, rp := range reports {
		if ids[i], err = h.employee(ctx, rp.name, rp.age, rp.holidays, alice); err != nil {
			return err
		}
	}

	// Karan is away the first week, Mia waits for an answer on the same
	// days, Noor was turned down, Oscar has nothing booked.
	steps := []struct {
		author   int64
		from, to int
		final    leave.Status
	}{
		{ids[0], 0, 4, leave.StatusApproved},
		{ids[1], 1, 3, leave.StatusPending},
		{ids[2], 0, 2, leave.StatusDenied},
		{ids[0], 14, 15, leave.StatusPending},
	}
	for _, s := range steps {
		if err := h.request(ctx, s.author, alice, s.from, s.to, s.final); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadCrunchScenario(ctx context.Context) error {
	lead, err := h.manager(ctx, "Priya", 45)
	if err != nil {
		return err
	}
	director, err := h.manager(ctx, "Sam", 58)
	if err != nil {
		return err
	}
	if _, err := h.Directory.CreateRelation(ctx, director, lead); err != nil {
		return fmt.Errorf("place Priya under Sam: %w", err)
	}

	team := []struct {
		name     string
		holidays int
		final    leave.Status
	}{
		{"Jonas", 30, leave.StatusApproved},
		{"Lena", 12, leave.StatusApproved},
		{"Tariq", 6, leave.StatusPending},
		{"Wei", 9, leave.StatusApproved},
		{"Zoe", 20, ""},
	}
	for _, m := range team {
		id, err := h.employee(ctx, m.name, 29, m.holidays, lead)
		if err != nil {
			return err
		}
		if m.final == "" {
			continue
		}
		if err := h.request(ctx, id, lead, 7, 11, m.final); err != nil {
			return err
		}
	}

	// The lead's own week off goes to the director.
	return h.request(ctx, lead, director, 7, 8, leave.StatusPending)
}
