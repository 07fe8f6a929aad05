package leave

import (
	"context"
	"fmt"
	"time"
)

// EmployeeStatus is one team member with the requests covering the queried day.
type EmployeeStatus struct {
	Employee Employee
	Requests []Request
}

// TeamStatus classifies a manager's team on one day.
type TeamStatus struct {
	Date    time.Time
	Working []EmployeeStatus
	OnLeave []EmployeeStatus
	Pending []EmployeeStatus
}

// StatusSummary is TeamStatus reduced to counts.
type StatusSummary struct {
	Working int
	OnLeave int
	Pending int
}

// Summary counts each category.
func (t TeamStatus) Summary() StatusSummary {
	return StatusSummary{Working: len(t.Working), OnLeave: len(t.OnLeave), Pending: len(t.Pending)}
}

// StatusAggregator derives who is working, on leave or waiting for approval.
type StatusAggregator struct {
	Directory DirectoryStore
	Requests  RequestStore
}

// StatusForTeam classifies every employee managed by managerID on date.
// An APPROVED covering request wins over a PENDING one; DENIED requests
// are ignored.
func (a *StatusAggregator) StatusForTeam(ctx context.Context, managerID int64, date time.Time) (TeamStatus, error) {
	day := Day(date)
	out := TeamStatus{
		Date:    day,
		Working: []EmployeeStatus{},
		OnLeave: []EmployeeStatus{},
		Pending: []EmployeeStatus{},
	}

	manager, err := a.Directory.GetEmployee(ctx, managerID)
	if err != nil {
		return TeamStatus{}, fmt.Errorf("team status: %w", err)
	}
	if manager == nil {
		return TeamStatus{}, NotFound(EntityManager)
	}

	team, err := a.Directory.ListTeam(ctx, managerID)
	if err != nil {
		return TeamStatus{}, fmt.Errorf("team status: %w", err)
	}
	if len(team) == 0 {
		return out, nil
	}

	ids := make([]int64, len(team))
	for i, e := range team {
		ids[i] = e.ID
	}
	covering, err := a.Requests.FindRequests(ctx, RequestFilter{
		AuthorIDs: ids,
		Statuses:  []Status{StatusPending, StatusApproved},
		From:      day,
		To:        day,
	})
	if err != nil {
		return TeamStatus{}, fmt.Errorf("team status: %w", err)
	}

	byAuthor := make(map[int64][]Request, len(team))
	for _, r := range covering {
		byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
	}

	for _, e := range team {
		reqs := byAuthor[e.ID]
		entry := EmployeeStatus{Employee: e, Requests: reqs}
		if entry.Requests == nil {
			entry.Requests = []Request{}
		}
		switch {
		case hasStatus(reqs, StatusApproved):
			out.OnLeave = append(out.OnLeave, entry)
		case hasStatus(reqs, StatusPending):
			out.Pending = append(out.Pending, entry)
		default:
			out.Working = append(out.Working, entry)
		}
	}
	return out, nil
}

func hasStatus(reqs []Request, st Status) bool {
	for _, r := range reqs {
		if r.Status == st {
			return true
		}
	}
	return false
}
