package pages

import (
	"context"
	"sync"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/viewstate"
)

type DashboardAPI interface {
	GetDashboardSummary(ctx context.Context) (*hrms.DashboardSummary, error)
}

// Dashboard fetches the aggregate summary once per page instance.
type Dashboard struct {
	api DashboardAPI

	mu      sync.Mutex
	summary viewstate.Fetch[*hrms.DashboardSummary]
}

func NewDashboard(api DashboardAPI) *Dashboard {
	return &Dashboard{api: api}
}

type DashboardView struct {
	Phase            viewstate.Phase
	Loading          viewstate.LoadingState
	Error            viewstate.ErrorState
	Summary          hrms.DashboardSummary
	Tiles            []StatTile
	NoDepartments    bool
	NoRecentActivity bool
}

type StatTile struct {
	Title string
	Value int
	Tone  string
}

func (p *Dashboard) Fetch(ctx context.Context) error {
	p.mu.Lock()
	p.summary.Begin()
	p.mu.Unlock()

	summary, err := p.api.GetDashboardSummary(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.summary.Fail(apiclient.MessageOr(err, "Failed to load dashboard data"))
		return err
	}
	p.summary.Succeed(summary)
	return nil
}

func (p *Dashboard) View(retryURL string) DashboardView {
	p.mu.Lock()
	defer p.mu.Unlock()

	view := DashboardView{
		// The dashboard has no empty phase; empty sub-lists render inline.
		Phase:   p.summary.Phase(nil),
		Loading: viewstate.NewLoading("Loading dashboard..."),
		Error:   viewstate.NewErrorState(p.summary.Err, retryURL),
	}
	if p.summary.Data != nil {
		view.Summary = *p.summary.Data
	}
	s := view.Summary
	view.Tiles = []StatTile{
		{Title: "Total Employees", Value: s.TotalEmployees, Tone: "indigo"},
		{Title: "Present Today", Value: s.TotalPresentToday, Tone: "emerald"},
		{Title: "Absent Today", Value: s.TotalAbsentToday, Tone: "red"},
		{Title: "Departments", Value: s.DepartmentCount, Tone: "amber"},
	}
	view.NoDepartments = len(s.DepartmentStats) == 0
	view.NoRecentActivity = len(s.RecentAttendance) == 0
	return view
}

// StatusBadge is the CSS tone for a status.
func StatusBadge(status hrms.Status) string {
	switch status {
	case hrms.StatusPresent:
		return "badge-present"
	case hrms.StatusAbsent:
		return "badge-absent"
	default:
		return "badge-unknown"
	}
}
