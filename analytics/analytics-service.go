// Package analytics derives read-only statistics from the store. Every
// function is a pure, synchronous, single-pass read; nothing is cached or
// computed in the background.
package analytics

import (
	"math"
	"sort"
	"time"

	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/store"
)

type AnalyticsService struct {
	store *store.DataStore
}

func NewAnalyticsService(ds *store.DataStore) *AnalyticsService {
	return &AnalyticsService{store: ds}
}

type ProjectStats struct {
	ProjectID            string         `json:"projectId"`
	TotalTasks           int            `json:"totalTasks"`
	StatusBreakdown      map[string]int `json:"statusBreakdown"`
	PriorityBreakdown    map[string]int `json:"priorityBreakdown"`
	CompletionRate       float64        `json:"completionRate"`
	TotalEstimatedHours  float64        `json:"totalEstimatedHours"`
	TotalActualHours     float64        `json:"totalActualHours"`
	HoursVariance        *float64       `json:"hoursVariance"`
	OverdueCount         int            `json:"overdueCount"`
	TotalStoryPoints     int            `json:"totalStoryPoints"`
	CompletedStoryPoints int            `json:"completedStoryPoints"`
	AssigneeLoad         map[string]int `json:"assigneeLoad"`
	ComputedAt           time.Time      `json:"computedAt"`
}

// ProjectStats walks the project's tasks once. Completion rate is
// done/total*100 (0 for an empty project); hours variance is actual minus
// estimated and stays nil when no task carries an estimate.
func (a *AnalyticsService) ProjectStats(projectID string) (*ProjectStats, error) {
	if _, err := a.store.GetProject(projectID); err != nil {
		return nil, err
	}
	tasks := a.store.ListTasks(projectID)
	now := time.Now().UTC()

	stats := &ProjectStats{
		ProjectID:         projectID,
		TotalTasks:        len(tasks),
		StatusBreakdown:   map[string]int{},
		PriorityBreakdown: map[string]int{},
		AssigneeLoad:      map[string]int{},
		ComputedAt:        now,
	}

	var totalEstimated, totalActual float64
	hasEstimate := false
	for _, task := range tasks {
		stats.StatusBreakdown[string(task.Status)]++
		stats.PriorityBreakdown[task.Priority.Name()]++

		if task.EstimatedHours != nil {
			totalEstimated += *task.EstimatedHours
			hasEstimate = true
		}
		totalActual += task.ActualHours

		if task.DueDate != nil && task.DueDate.Before(now) && !task.Status.IsTerminal() {
			stats.OverdueCount++
		}

		if task.StoryPoints != nil {
			stats.TotalStoryPoints += *task.StoryPoints
			if task.Status == models.StatusDone {
				stats.CompletedStoryPoints += *task.StoryPoints
			}
		}

		for _, id := range task.AssigneeIDs {
			stats.AssigneeLoad[id]++
		}
	}

	if stats.TotalTasks > 0 {
		done := stats.StatusBreakdown[string(models.StatusDone)]
		stats.CompletionRate = round2(float64(done) / float64(stats.TotalTasks) * 100)
	}
	stats.TotalEstimatedHours = round2(totalEstimated)
	stats.TotalActualHours = round2(totalActual)
	if hasEstimate {
		variance := round2(totalActual - totalEstimated)
		stats.HoursVariance = &variance
	}
	return stats, nil
}

type SprintStats struct {
	SprintID             string  `json:"sprintId"`
	SprintName           string  `json:"sprintName"`
	TotalStoryPoints     int     `json:"totalStoryPoints"`
	CompletedStoryPoints int     `json:"completedStoryPoints"`
	RemainingStoryPoints int     `json:"remainingStoryPoints"`
	TotalTasks           int     `json:"totalTasks"`
	CompletedTasks       int     `json:"completedTasks"`
	DaysElapsed          int     `json:"daysElapsed"`
	DaysRemaining        int     `json:"daysRemaining"`
	IdealRemainingPoints float64 `json:"idealRemainingPoints"`
	IsOnTrack            bool    `json:"isOnTrack"`
}

// SprintStats measures sprint progress against a straight-line target:
// ideal remaining = total points x (1 - elapsed/duration). The target is a
// fraction of the whole span, not a day-stepped line. Elapsed days are
// clamped into [0, duration].
func (a *AnalyticsService) SprintStats(sprintID string) (*SprintStats, error) {
	sprint, err := a.store.GetSprint(sprintID)
	if err != nil {
		return nil, err
	}
	tasks := a.store.ListTasksInSprint(sprintID)

	stats := &SprintStats{
		SprintID:   sprintID,
		SprintName: sprint.Name,
		TotalTasks: len(tasks),
	}
	for _, t := range tasks {
		if t.StoryPoints != nil {
			stats.TotalStoryPoints += *t.StoryPoints
		}
		if t.Status == models.StatusDone {
			stats.CompletedTasks++
			if t.StoryPoints != nil {
				stats.CompletedStoryPoints += *t.StoryPoints
			}
		}
	}
	stats.RemainingStoryPoints = stats.TotalStoryPoints - stats.CompletedStoryPoints

	duration := int(sprint.EndDate.Sub(sprint.StartDate).Hours() / 24)
	elapsed := int(time.Now().UTC().Sub(sprint.StartDate).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > duration {
		elapsed = duration
	}
	stats.DaysElapsed = elapsed
	stats.DaysRemaining = duration - elapsed

	ideal := float64(stats.TotalStoryPoints)
	if duration > 0 {
		ideal = float64(stats.TotalStoryPoints) * (1 - float64(elapsed)/float64(duration))
	}
	stats.IdealRemainingPoints = round1(ideal)
	stats.IsOnTrack = float64(stats.RemainingStoryPoints) <= stats.IdealRemainingPoints
	return stats, nil
}

type WorkloadEntry struct {
	MemberID       string  `json:"memberId"`
	Username       string  `json:"username"`
	FullName       string  `json:"fullName"`
	TotalAssigned  int     `json:"totalAssigned"`
	OpenTasks      int     `json:"openTasks"`
	StoryPoints    int     `json:"storyPoints"`
	EstimatedHours float64 `json:"estimatedHours"`
}

// WorkloadReport lists every active member with their assigned and open
// task counts plus the open story points and estimated hours, sorted by
// open-task count descending.
func (a *AnalyticsService) WorkloadReport(projectID string) []WorkloadEntry {
	tasks := a.store.ListTasks(projectID)
	members := a.store.ListMembers(true)

	report := make([]WorkloadEntry, 0, len(members))
	for _, member := range members {
		entry := WorkloadEntry{
			MemberID: member.ID,
			Username: member.Username,
			FullName: member.FullName,
		}
		for _, t := range tasks {
			if !assignedTo(t, member.ID) {
				continue
			}
			entry.TotalAssigned++
			if t.Status.IsTerminal() {
				continue
			}
			entry.OpenTasks++
			if t.StoryPoints != nil {
				entry.StoryPoints += *t.StoryPoints
			}
			if t.EstimatedHours != nil {
				entry.EstimatedHours += *t.EstimatedHours
			}
		}
		report = append(report, entry)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].OpenTasks > report[j].OpenTasks
	})
	return report
}

type VelocityPoint struct {
	SprintID   string    `json:"sprintId"`
	SprintName string    `json:"sprintName"`
	EndDate    time.Time `json:"endDate"`
	Velocity   int       `json:"velocity"`
}

// VelocityTrend returns the last n sprints of the project whose end date
// has passed, ordered by end date ascending, each with the sum of story
// points of its done tasks.
func (a *AnalyticsService) VelocityTrend(projectID string, n int) []VelocityPoint {
	now := time.Now().UTC()
	var ended []*models.Sprint
	for _, s := range a.store.ListSprints(projectID) {
		if s.EndDate.Before(now) {
			ended = append(ended, s)
		}
	}
	sort.Slice(ended, func(i, j int) bool {
		return ended[i].EndDate.Before(ended[j].EndDate)
	})
	if n > 0 && len(ended) > n {
		ended = ended[len(ended)-n:]
	}

	trend := make([]VelocityPoint, 0, len(ended))
	for _, sprint := range ended {
		points := 0
		for _, t := range a.store.ListTasksInSprint(sprint.ID) {
			if t.Status == models.StatusDone && t.StoryPoints != nil {
				points += *t.StoryPoints
			}
		}
		trend = append(trend, VelocityPoint{
			SprintID:   sprint.ID,
			SprintName: sprint.Name,
			EndDate:    sprint.EndDate,
			Velocity:   points,
		})
	}
	return trend
}

type BurndownPoint struct {
	Date            string `json:"date"`
	RemainingPoints int    `json:"remainingPoints"`
}

// BurndownData produces one point per calendar day from sprint start to end
// inclusive. Remaining points start at the sprint total and drop, on each
// day, by the points of tasks whose completion day is exactly that day;
// the completion day is the task's last-updated date at the time it reached
// done. Remaining never goes below zero.
func (a *AnalyticsService) BurndownData(sprintID string) ([]BurndownPoint, error) {
	sprint, err := a.store.GetSprint(sprintID)
	if err != nil {
		return nil, err
	}
	tasks := a.store.ListTasksInSprint(sprintID)

	totalPoints := 0
	completed := map[string]int{}
	for _, t := range tasks {
		if t.StoryPoints != nil {
			totalPoints += *t.StoryPoints
			if t.Status == models.StatusDone {
				day := t.UpdatedAt.UTC().Format("2006-01-02")
				completed[day] += *t.StoryPoints
			}
		}
	}

	start := dateOnly(sprint.StartDate)
	end := dateOnly(sprint.EndDate)

	var points []BurndownPoint
	remaining := totalPoints
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		remaining -= completed[key]
		if remaining < 0 {
			remaining = 0
		}
		points = append(points, BurndownPoint{Date: key, RemainingPoints: remaining})
	}
	return points, nil
}

type MemberPerformance struct {
	MemberID            string   `json:"memberId"`
	Username            string   `json:"username"`
	FullName            string   `json:"fullName"`
	TasksAssigned       int      `json:"tasksAssigned"`
	TasksCompleted      int      `json:"tasksCompleted"`
	TasksOverdue        int      `json:"tasksOverdue"`
	CompletionRate      float64  `json:"completionRate"`
	TotalEstimatedHours float64  `json:"totalEstimatedHours"`
	TotalActualHours    float64  `json:"totalActualHours"`
	EfficiencyRatio     *float64 `json:"efficiencyRatio"`
}

// TeamPerformance reports on every member with at least one assigned task
// in the project, sorted by completion rate descending. The efficiency
// ratio is estimated over actual hours summed across completed tasks only
// (nil when the actual sum is zero): a ratio above 1.0 means the member
// finished faster than estimated, not slower.
func (a *AnalyticsService) TeamPerformance(projectID string) []MemberPerformance {
	tasks := a.store.ListTasks(projectID)
	members := a.store.ListMembers(true)
	now := time.Now().UTC()

	var report []MemberPerformance
	for _, member := range members {
		var assigned, done, overdue int
		var estDone, actualDone float64
		for _, t := range tasks {
			if !assignedTo(t, member.ID) {
				continue
			}
			assigned++
			if t.Status == models.StatusDone {
				done++
				if t.EstimatedHours != nil {
					estDone += *t.EstimatedHours
				}
				actualDone += t.ActualHours
			}
			if t.DueDate != nil && t.DueDate.Before(now) && !t.Status.IsTerminal() {
				overdue++
			}
		}
		if assigned == 0 {
			continue
		}

		perf := MemberPerformance{
			MemberID:            member.ID,
			Username:            member.Username,
			FullName:            member.FullName,
			TasksAssigned:       assigned,
			TasksCompleted:      done,
			TasksOverdue:        overdue,
			CompletionRate:      round1(float64(done) / float64(assigned) * 100),
			TotalEstimatedHours: round2(estDone),
			TotalActualHours:    round2(actualDone),
		}
		if actualDone > 0 {
			ratio := round3(estDone / actualDone)
			perf.EfficiencyRatio = &ratio
		}
		report = append(report, perf)
	}

	sort.SliceStable(report, func(i, j int) bool {
		return report[i].CompletionRate > report[j].CompletionRate
	})
	return report
}

// FindBlockedTasks flags in-progress tasks that look stuck: untouched for
// two weeks, or burning more than three times their estimate.
func (a *AnalyticsService) FindBlockedTasks(projectID string) []*models.Task {
	now := time.Now().UTC()
	threshold := 14 * 24 * time.Hour

	var blocked []*models.Task
	for _, task := range a.store.ListTasks(projectID) {
		if task.Status != models.StatusInProgress {
			continue
		}
		if now.Sub(task.UpdatedAt) > threshold {
			blocked = append(blocked, task)
			continue
		}
		if task.EstimatedHours != nil && task.ActualHours > *task.EstimatedHours*3 {
			blocked = append(blocked, task)
		}
	}
	return blocked
}

func assignedTo(t *models.Task, memberID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
