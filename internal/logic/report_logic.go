package logic

import (
	"math"
	"net/http"
	"time"

	"github.com/iamkhs/ProjectManagement/internal/logger"
	"github.com/iamkhs/ProjectManagement/internal/model"
	"gorm.io/gorm"
)

// ReportFilters 报表过滤条件
type ReportFilters struct {
	StartDate *time.Time
	EndDate   *time.Time
	ProjectID *uint
}

// Report 项目绩效报表
type Report struct {
	Meta                 ReportMeta           `json:"meta"`
	Projects             []ProjectReport      `json:"projects"`
	PerformanceBreakdown PerformanceBreakdown `json:"performance_breakdown"`
	CompletionMetrics    CompletionMetrics    `json:"completion_metrics"`
}

// ReportMeta 报表元信息
type ReportMeta struct {
	ReportType  string     `json:"report_type"`
	GeneratedAt time.Time  `json:"generated_at"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	ProjectID   *uint      `json:"project_id"`
}

// ProjectReport 单项目明细
type ProjectReport struct {
	ProjectID      uint         `json:"project_id"`
	ProjectTitle   string       `json:"project_title"`
	TeamLeaderID   uint         `json:"team_leader_id"`
	TeamLeaderName string       `json:"team_leader_name"`
	Tasks          []TaskReport `json:"tasks"`
}

// TaskReport 任务明细
type TaskReport struct {
	TaskID              uint            `json:"task_id"`
	Title               string          `json:"title"`
	Status              model.Status    `json:"status"`
	AssignedTo          *uint           `json:"assigned_to"`
	AssignedBy          uint            `json:"assigned_by"`
	DueDate             *time.Time      `json:"due_date"`
	CreatedAt           time.Time       `json:"created_at"`
	CompletedAt         *time.Time      `json:"completed_at"`
	CompletionTimeHours *float64        `json:"completion_time_hours"`
	IsOverdue           bool            `json:"is_overdue"`
	SubTasks            []SubTaskReport `json:"subtasks"`
}

// SubTaskReport 子任务明细
type SubTaskReport struct {
	SubTaskID           uint         `json:"subtask_id"`
	Title               string       `json:"title"`
	Status              model.Status `json:"status"`
	AssignedTo          *uint        `json:"assigned_to"`
	CreatedAt           time.Time    `json:"created_at"`
	CompletedAt         *time.Time   `json:"completed_at"`
	CompletionTimeHours *float64     `json:"completion_time_hours"`
	IsOverdue           bool         `json:"is_overdue"`
}

// PerformanceBreakdown 绩效分解
type PerformanceBreakdown struct {
	ByTeamLeaders []LeaderPerformance `json:"by_team_leaders"`
	ByTeamMembers []MemberPerformance `json:"by_team_members"`
}

// LeaderPerformance 负责人维度绩效
type LeaderPerformance struct {
	TeamLeaderID                uint    `json:"team_leader_id"`
	TeamLeaderName              string  `json:"team_leader_name"`
	ProjectsManaged             int     `json:"projects_managed"`
	TasksUnderManagement        int     `json:"tasks_under_management"`
	SubTasksUnderManagement     int     `json:"subtasks_under_management"`
	CompletedSubTasksPercentage float64 `json:"completed_subtasks_percentage"`
}

// MemberPerformance 成员维度绩效
type MemberPerformance struct {
	MemberID                   uint     `json:"member_id"`
	MemberName                 string   `json:"member_name"`
	AssignedSubTasks           int      `json:"assigned_subtasks"`
	CompletedSubTasks          int      `json:"completed_subtasks"`
	CompletionPercentage       float64  `json:"completion_percentage"`
	AverageCompletionTimeHours *float64 `json:"average_completion_time_hours"`
}

// CompletionMetrics 完成度指标
type CompletionMetrics struct {
	ByTasks    CompletionMetric `json:"by_tasks"`
	BySubTasks CompletionMetric `json:"by_subtasks"`
}

// CompletionMetric 单维度完成度
type CompletionMetric struct {
	Total                      int      `json:"total"`
	Completed                  int      `json:"completed"`
	CompletionPercentage       float64  `json:"completion_percentage"`
	AverageCompletionTimeHours *float64 `json:"average_completion_time_hours"`
}

// ReportLogic 报表业务逻辑
type ReportLogic struct {
	db *gorm.DB
}

// NewReportLogic 创建报表业务逻辑
func NewReportLogic(db *gorm.DB) *ReportLogic {
	return &ReportLogic{db: db}
}

// GenerateProjectReport 生成项目绩效报表
func (r *ReportLogic) GenerateProjectReport(filters ReportFilters) (*Report, error) {
	projects, err := r.loadProjects(filters)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	report := &Report{
		Meta: ReportMeta{
			ReportType:  "project_performance",
			GeneratedAt: now,
			StartDate:   filters.StartDate,
			EndDate:     filters.EndDate,
			ProjectID:   filters.ProjectID,
		},
	}

	var allTasks []model.Task
	var allSubTasks []model.SubTask

	for _, project := range projects {
		pr := ProjectReport{
			ProjectID:    project.ID,
			ProjectTitle: project.Title,
			TeamLeaderID: project.TeamLeaderID,
		}
		if project.TeamLeader != nil {
			pr.TeamLeaderName = project.TeamLeader.Name
		}

		for i := range project.Tasks {
			task := project.Tasks[i]
			tr := TaskReport{
				TaskID:              task.ID,
				Title:               task.Title,
				Status:              task.Status,
				AssignedTo:          task.AssignedTo,
				AssignedBy:          task.AssignedBy,
				DueDate:             task.DueDate,
				CreatedAt:           task.CreatedAt,
				CompletedAt:         task.CompletedAt,
				CompletionTimeHours: completionHours(task.CreatedAt, task.CompletedAt),
				IsOverdue:           task.IsOverdue(now),
			}

			for j := range task.SubTasks {
				subTask := task.SubTasks[j]
				tr.SubTasks = append(tr.SubTasks, SubTaskReport{
					SubTaskID:           subTask.ID,
					Title:               subTask.Title,
					Status:              subTask.Status,
					AssignedTo:          subTask.AssignedTo,
					CreatedAt:           subTask.CreatedAt,
					CompletedAt:         subTask.CompletedAt,
					CompletionTimeHours: completionHours(subTask.CreatedAt, subTask.CompletedAt),
					IsOverdue:           subTask.IsOverdue(now),
				})
				allSubTasks = append(allSubTasks, subTask)
			}

			pr.Tasks = append(pr.Tasks, tr)
			allTasks = append(allTasks, task)
		}

		report.Projects = append(report.Projects, pr)
	}

	report.PerformanceBreakdown = r.buildPerformanceBreakdown(projects)
	report.CompletionMetrics = CompletionMetrics{
		ByTasks:    taskCompletionMetric(allTasks),
		BySubTasks: subTaskCompletionMetric(allSubTasks),
	}

	return report, nil
}

// loadProjects 加载项目及任务、子任务、成员
func (r *ReportLogic) loadProjects(filters ReportFilters) ([]model.Project, error) {
	query := r.db.Preload("TeamLeader").
		Preload("Members").
		Preload("Members.User").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB {
			if filters.StartDate != nil {
				db = db.Where("task.created_at >= ?", *filters.StartDate)
			}
			if filters.EndDate != nil {
				db = db.Where("task.created_at <= ?", endOfDay(*filters.EndDate))
			}
			return db.Order("task.id")
		}).
		Preload("Tasks.SubTasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_task.created_at")
		})

	if filters.ProjectID != nil {
		query = query.Where("id = ?", *filters.ProjectID)
	}

	var projects []model.Project
	if err := query.Find(&projects).Error; err != nil {
		logger.Error("Failed to load projects for report: %v", err)
		return nil, NewStatusError(http.StatusInternalServerError, "Failed to generate report")
	}

	return projects, nil
}

// buildPerformanceBreakdown 按负责人与成员聚合绩效
func (r *ReportLogic) buildPerformanceBreakdown(projects []model.Project) PerformanceBreakdown {
	breakdown := PerformanceBreakdown{}

	// 负责人维度：同一负责人跨项目合并
	type leaderStats struct {
		name      string
		projects  int
		tasks     int
		subTasks  int
		completed int
	}
	leaders := map[uint]*leaderStats{}
	var leaderOrder []uint

	for _, project := range projects {
		stats, ok := leaders[project.TeamLeaderID]
		if !ok {
			stats = &leaderStats{}
			if project.TeamLeader != nil {
				stats.name = project.TeamLeader.Name
			}
			leaders[project.TeamLeaderID] = stats
			leaderOrder = append(leaderOrder, project.TeamLeaderID)
		}

		stats.projects++
		stats.tasks += len(project.Tasks)
		for _, task := range project.Tasks {
			stats.subTasks += len(task.SubTasks)
			for _, subTask := range task.SubTasks {
				if subTask.Status == model.StatusCompleted {
					stats.completed++
				}
			}
		}
	}

	for _, leaderID := range leaderOrder {
		stats := leaders[leaderID]
		breakdown.ByTeamLeaders = append(breakdown.ByTeamLeaders, LeaderPerformance{
			TeamLeaderID:                leaderID,
			TeamLeaderName:              stats.name,
			ProjectsManaged:             stats.projects,
			TasksUnderManagement:        stats.tasks,
			SubTasksUnderManagement:     stats.subTasks,
			CompletedSubTasksPercentage: percentage(stats.completed, stats.subTasks),
		})
	}

	// 成员维度：跨项目去重
	type memberStats struct {
		name      string
		assigned  int
		completed int
		hours     []float64
	}
	members := map[uint]*memberStats{}
	var memberOrder []uint

	for _, project := range projects {
		for _, member := range project.Members {
			if _, ok := members[member.UserID]; ok {
				continue
			}
			stats := &memberStats{}
			if member.User != nil {
				stats.name = member.User.Name
			}
			members[member.UserID] = stats
			memberOrder = append(memberOrder, member.UserID)
		}
	}

	for _, project := range projects {
		for _, task := range project.Tasks {
			for _, subTask := range task.SubTasks {
				if subTask.AssignedTo == nil {
					continue
				}
				stats, ok := members[*subTask.AssignedTo]
				if !ok {
					continue
				}
				stats.assigned++
				if subTask.Status == model.StatusCompleted {
					stats.completed++
				}
				if hours := completionHours(subTask.CreatedAt, subTask.CompletedAt); hours != nil {
					stats.hours = append(stats.hours, *hours)
				}
			}
		}
	}

	for _, userID := range memberOrder {
		stats := members[userID]
		breakdown.ByTeamMembers = append(breakdown.ByTeamMembers, MemberPerformance{
			MemberID:                   userID,
			MemberName:                 stats.name,
			AssignedSubTasks:           stats.assigned,
			CompletedSubTasks:          stats.completed,
			CompletionPercentage:       percentage(stats.completed, stats.assigned),
			AverageCompletionTimeHours: average(stats.hours),
		})
	}

	return breakdown
}

// taskCompletionMetric 任务维度完成度
func taskCompletionMetric(tasks []model.Task) CompletionMetric {
	completed := 0
	var hours []float64
	for _, task := range tasks {
		if task.Status == model.StatusCompleted {
			completed++
		}
		if h := completionHours(task.CreatedAt, task.CompletedAt); h != nil {
			hours = append(hours, *h)
		}
	}

	return CompletionMetric{
		Total:                      len(tasks),
		Completed:                  completed,
		CompletionPercentage:       percentage(completed, len(tasks)),
		AverageCompletionTimeHours: average(hours),
	}
}

// subTaskCompletionMetric 子任务维度完成度
func subTaskCompletionMetric(subTasks []model.SubTask) CompletionMetric {
	completed := 0
	var hours []float64
	for _, subTask := range subTasks {
		if subTask.Status == model.StatusCompleted {
			completed++
		}
		if h := completionHours(subTask.CreatedAt, subTask.CompletedAt); h != nil {
			hours = append(hours, *h)
		}
	}

	return CompletionMetric{
		Total:                      len(subTasks),
		Completed:                  completed,
		CompletionPercentage:       percentage(completed, len(subTasks)),
		AverageCompletionTimeHours: average(hours),
	}
}

// completionHours 完成耗时（小时，保留两位）
func completionHours(createdAt time.Time, completedAt *time.Time) *float64 {
	if completedAt == nil {
		return nil
	}
	hours := round2(completedAt.Sub(createdAt).Hours())
	return &hours
}

// percentage 完成百分比（保留两位）
func percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(completed) / float64(total) * 100)
}

// average 平均值（保留两位）
func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := round2(sum / float64(len(values)))
	return &avg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// endOfDay 归一化到当天结束，与按日期过滤的语义一致
func endOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
