package logic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteCSV 将报表写出为CSV。各段对应原报表的工作表：
// 汇总、任务明细、子任务明细、绩效分解。
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"PROJECT PERFORMANCE REPORT"},
		{"Generated At", r.Meta.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Date Range", formatDateRange(r.Meta.StartDate, r.Meta.EndDate)},
		{},
		{"SUMMARY METRICS"},
		{"Total Projects", strconv.Itoa(len(r.Projects))},
		{"Total Tasks", strconv.Itoa(r.CompletionMetrics.ByTasks.Total)},
		{"Completed Tasks", strconv.Itoa(r.CompletionMetrics.ByTasks.Completed)},
		{"Task Completion %", formatPercent(r.CompletionMetrics.ByTasks.CompletionPercentage)},
		{"Total Subtasks", strconv.Itoa(r.CompletionMetrics.BySubTasks.Total)},
		{"Completed Subtasks", strconv.Itoa(r.CompletionMetrics.BySubTasks.Completed)},
		{"Subtask Completion %", formatPercent(r.CompletionMetrics.BySubTasks.CompletionPercentage)},
		{"Avg. Task Completion Time (hours)", formatOptionalHours(r.CompletionMetrics.ByTasks.AverageCompletionTimeHours)},
		{"Avg. Subtask Completion Time (hours)", formatOptionalHours(r.CompletionMetrics.BySubTasks.AverageCompletionTimeHours)},
		{},
	}

	rows = append(rows, []string{"TASKS"})
	rows = append(rows, []string{"Project", "Task ID", "Title", "Status", "Assigned To", "Due Date", "Completed At", "Completion Hours", "Overdue"})
	for _, project := range r.Projects {
		for _, task := range project.Tasks {
			rows = append(rows, []string{
				project.ProjectTitle,
				strconv.FormatUint(uint64(task.TaskID), 10),
				task.Title,
				string(task.Status),
				formatOptionalID(task.AssignedTo),
				formatOptionalDate(task.DueDate),
				formatOptionalTime(task.CompletedAt),
				formatOptionalHours(task.CompletionTimeHours),
				strconv.FormatBool(task.IsOverdue),
			})
		}
	}
	rows = append(rows, []string{})

	rows = append(rows, []string{"SUBTASKS"})
	rows = append(rows, []string{"Project", "Task ID", "Subtask ID", "Title", "Status", "Assigned To", "Completed At", "Completion Hours", "Overdue"})
	for _, project := range r.Projects {
		for _, task := range project.Tasks {
			for _, subTask := range task.SubTasks {
				rows = append(rows, []string{
					project.ProjectTitle,
					strconv.FormatUint(uint64(task.TaskID), 10),
					strconv.FormatUint(uint64(subTask.SubTaskID), 10),
					subTask.Title,
					string(subTask.Status),
					formatOptionalID(subTask.AssignedTo),
					formatOptionalTime(subTask.CompletedAt),
					formatOptionalHours(subTask.CompletionTimeHours),
					strconv.FormatBool(subTask.IsOverdue),
				})
			}
		}
	}
	rows = append(rows, []string{})

	rows = append(rows, []string{"TEAM LEADER PERFORMANCE"})
	rows = append(rows, []string{"Leader ID", "Name", "Projects", "Tasks", "Subtasks", "Completed Subtasks %"})
	for _, leader := range r.PerformanceBreakdown.ByTeamLeaders {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(leader.TeamLeaderID), 10),
			leader.TeamLeaderName,
			strconv.Itoa(leader.ProjectsManaged),
			strconv.Itoa(leader.TasksUnderManagement),
			strconv.Itoa(leader.SubTasksUnderManagement),
			formatPercent(leader.CompletedSubTasksPercentage),
		})
	}
	rows = append(rows, []string{})

	rows = append(rows, []string{"TEAM MEMBER PERFORMANCE"})
	rows = append(rows, []string{"Member ID", "Name", "Assigned Subtasks", "Completed Subtasks", "Completion %", "Avg Completion Hours"})
	for _, member := range r.PerformanceBreakdown.ByTeamMembers {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(member.MemberID), 10),
			member.MemberName,
			strconv.Itoa(member.AssignedSubTasks),
			strconv.Itoa(member.CompletedSubTasks),
			formatPercent(member.CompletionPercentage),
			formatOptionalHours(member.AverageCompletionTimeHours),
		})
	}

	for _, row := range rows {
		if len(row) == 0 {
			row = []string{""}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatDateRange(start, end *time.Time) string {
	from := "All Time"
	if start != nil {
		from = start.Format("2006-01-02")
	}
	to := "Present"
	if end != nil {
		to = end.Format("2006-01-02")
	}
	return from + " to " + to
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func formatOptionalHours(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatOptionalID(id *uint) string {
	if id == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*id), 10)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
