// Package reporting renders text and CSV views over the store's read-only
// accessors. Layout here is presentation, not contract; only the data it
// pulls from the store is.
package reporting

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"

	"taskflow-project/taskflow-service/models"
	"taskflow-project/taskflow-service/store"
)

type ReportGenerator struct {
	store *store.DataStore
}

func NewReportGenerator(ds *store.DataStore) *ReportGenerator {
	return &ReportGenerator{store: ds}
}

func (g *ReportGenerator) resolveMember(memberID string) *models.Member {
	member, err := g.store.GetMember(memberID)
	if err != nil {
		return nil
	}
	return member
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// ExportTasksCSV renders the project's tasks as CSV.
func (g *ReportGenerator) ExportTasksCSV(projectID string) (string, error) {
	tasks := g.store.ListTasks(projectID)
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"id", "title", "status", "priority", "assignees", "due_date", "estimated_hours", "actual_hours", "story_points", "created_at", "updated_at"}); err != nil {
		return "", err
	}

	for _, task := range tasks {
		var names []string
		for _, id := range task.AssigneeIDs {
			if m := g.resolveMember(id); m != nil {
				names = append(names, m.FullName)
			}
		}
		estimated := ""
		if task.EstimatedHours != nil {
			estimated = fmt.Sprintf("%g", *task.EstimatedHours)
		}
		points := ""
		if task.StoryPoints != nil {
			points = fmt.Sprintf("%d", *task.StoryPoints)
		}
		created := task.CreatedAt
		updated := task.UpdatedAt
		record := []string{
			task.ID,
			task.Title,
			string(task.Status),
			task.Priority.Name(),
			strings.Join(names, ", "),
			formatDate(task.DueDate),
			estimated,
			fmt.Sprintf("%g", task.ActualHours),
			points,
			formatDate(&created),
			formatDate(&updated),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

// ExportMembersCSV renders the project's member list as CSV, skipping any
// dangling member ids.
func (g *ReportGenerator) ExportMembersCSV(projectID string) (string, error) {
	project, err := g.store.GetProject(projectID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write([]string{"id", "username", "full_name", "email", "role"}); err != nil {
		return "", err
	}
	for _, id := range project.MemberIDs {
		member := g.resolveMember(id)
		if member == nil {
			continue
		}
		if err := w.Write([]string{member.ID, member.Username, member.FullName, member.Email, string(member.Role)}); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}

// ProjectSummaryText renders a human-readable project overview.
func (g *ReportGenerator) ProjectSummaryText(projectID string) (string, error) {
	project, err := g.store.GetProject(projectID)
	if err != nil {
		return "", err
	}
	tasks := g.store.ListTasks(projectID)
	now := time.Now().UTC()

	ownerName := "(unknown)"
	if owner := g.resolveMember(project.OwnerID); owner != nil {
		ownerName = owner.FullName
	}

	description := project.Description
	if description == "" {
		description = "(none)"
	}
	archived := "No"
	if project.IsArchived {
		archived = "Yes"
	}

	lines := []string{
		fmt.Sprintf("Project: %s", project.Name),
		strings.Repeat("=", len(project.Name)+9),
		fmt.Sprintf("Description: %s", description),
		fmt.Sprintf("Owner: %s", ownerName),
		fmt.Sprintf("Members: %d", len(project.MemberIDs)),
		fmt.Sprintf("Archived: %s", archived),
		"",
		"Task Summary",
		"------------",
	}

	statusCounts := map[string]int{}
	for _, t := range tasks {
		statusCounts[string(t.Status)]++
	}
	statuses := make([]string, 0, len(statusCounts))
	for s := range statusCounts {
		statuses = append(statuses, s)
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		lines = append(lines, fmt.Sprintf("  %-15s: %d", s, statusCounts[s]))
	}

	total := len(tasks)
	done := statusCounts[string(models.StatusDone)]
	if total > 0 {
		lines = append(lines, fmt.Sprintf("\n  Total: %d  |  Completed: %d  |  Rate: %.1f%%", total, done, float64(done)/float64(total)*100))
	} else {
		lines = append(lines, "\n  No tasks.")
	}

	var overdue []*models.Task
	for _, t := range tasks {
		if t.DueDate != nil && t.DueDate.Before(now) && !t.Status.IsTerminal() {
			overdue = append(overdue, t)
		}
	}
	lines = append(lines, fmt.Sprintf("\nOverdue Tasks: %d", len(overdue)))
	for i, t := range overdue {
		if i == 5 {
			lines = append(lines, fmt.Sprintf("  ... and %d more", len(overdue)-5))
			break
		}
		lines = append(lines, fmt.Sprintf("  - [%s] %s (due %s)", t.Priority.Name(), t.Title, formatDate(t.DueDate)))
	}

	lines = append(lines, fmt.Sprintf("\nGenerated: %s", now.Format("2006-01-02 15:04 UTC")))
	return strings.Join(lines, "\n"), nil
}

// SprintReportText renders a human-readable sprint progress report.
func (g *ReportGenerator) SprintReportText(sprintID string) (string, error) {
	sprint, err := g.store.GetSprint(sprintID)
	if err != nil {
		return "", err
	}
	tasks := g.store.ListTasksInSprint(sprintID)
	now := time.Now().UTC()

	var completed, inProgress, remaining []*models.Task
	totalPts, donePts := 0, 0
	for _, t := range tasks {
		if t.StoryPoints != nil {
			totalPts += *t.StoryPoints
		}
		switch t.Status {
		case models.StatusDone:
			completed = append(completed, t)
			if t.StoryPoints != nil {
				donePts += *t.StoryPoints
			}
		case models.StatusInProgress:
			inProgress = append(inProgress, t)
		case models.StatusTodo, models.StatusBacklog:
			remaining = append(remaining, t)
		}
	}

	goal := sprint.Goal
	if goal == "" {
		goal = "(none)"
	}
	status := "Inactive"
	if sprint.IsActive {
		status = "Active"
	}
	progress := "Progress: 0 story points"
	if totalPts > 0 {
		progress = fmt.Sprintf("Progress: %d/%d story points (%.1f%%)", donePts, totalPts, float64(donePts)/float64(totalPts)*100)
	}

	lines := []string{
		fmt.Sprintf("Sprint: %s", sprint.Name),
		strings.Repeat("=", len(sprint.Name)+8),
		fmt.Sprintf("Goal    : %s", goal),
		fmt.Sprintf("Period  : %s -> %s", sprint.StartDate.Format("2006-01-02"), sprint.EndDate.Format("2006-01-02")),
		fmt.Sprintf("Status  : %s", status),
		"",
		progress,
		fmt.Sprintf("Tasks   : %d done / %d in progress / %d remaining", len(completed), len(inProgress), len(remaining)),
		"",
		"Completed Tasks:",
	}
	lines = append(lines, taskLines("  [x]", completed)...)
	lines = append(lines, "\nIn Progress:")
	lines = append(lines, taskLines("  [~]", inProgress)...)
	lines = append(lines, "\nNot Started:")
	lines = append(lines, taskLines("  [ ]", remaining)...)
	lines = append(lines, fmt.Sprintf("\nGenerated: %s", now.Format("2006-01-02 15:04 UTC")))
	return strings.Join(lines, "\n"), nil
}

func taskLines(prefix string, tasks []*models.Task) []string {
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		pts := "?"
		if t.StoryPoints != nil {
			pts = fmt.Sprintf("%d", *t.StoryPoints)
		}
		lines = append(lines, fmt.Sprintf("%s %s (%s pts)", prefix, t.Title, pts))
	}
	return lines
}
