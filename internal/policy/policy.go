package policy

import (
	"github.com/iamkhs/ProjectManagement/internal/model"
)

// Decision 授权决策结果，Reason 用于拒绝时向调用方返回403信息
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow 允许
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny 拒绝
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

const (
	reasonRole        = "This action is unauthorized for your role."
	reasonNotOwner    = "Only the project's team leader can do this."
	reasonNotMember   = "You are not a member of this project."
	reasonNotAssigned = "This task is not assigned to you."
)

// ProjectViewAny 查看项目列表：管理员或团队负责人
func ProjectViewAny(actor *model.User) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// ProjectView 查看单个项目：管理员、团队负责人或项目成员
func ProjectView(actor *model.User, project *model.Project, isMember bool) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		if isMember {
			return Allow()
		}
		return Deny(reasonNotMember)
	}
	return Deny(reasonRole)
}

// ProjectCreate 创建项目：管理员或团队负责人
func ProjectCreate(actor *model.User) Decision {
	return ProjectViewAny(actor)
}

// ProjectUpdate 更新项目：管理员，或创建该项目的团队负责人
func ProjectUpdate(actor *model.User, project *model.Project) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleTeamLeader:
		if project.IsOwnedBy(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotOwner)
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// ProjectDelete 删除项目：同更新
func ProjectDelete(actor *model.User, project *model.Project) Decision {
	return ProjectUpdate(actor, project)
}

// ProjectAssign 指派项目成员：管理员或团队负责人
func ProjectAssign(actor *model.User) Decision {
	return ProjectViewAny(actor)
}

// ProjectUnassign 移除项目成员：同指派
func ProjectUnassign(actor *model.User) Decision {
	return ProjectAssign(actor)
}

// TaskViewAny 查看任务列表：管理员或团队负责人
func TaskViewAny(actor *model.User) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// TaskView 查看单个任务：管理员；拥有所属项目的负责人；被指派的成员
func TaskView(actor *model.User, task *model.Task, project *model.Project) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleTeamLeader:
		if project != nil && project.IsOwnedBy(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotOwner)
	case model.RoleTeamMember:
		if task.IsAssignedTo(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotAssigned)
	}
	return Deny(reasonRole)
}

// TaskCreate 创建任务：管理员，或目标项目的负责人
func TaskCreate(actor *model.User, project *model.Project) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleTeamLeader:
		if project.IsOwnedBy(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotOwner)
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// TaskUpdate 更新任务：管理员和负责人不受限；成员仅限自己被指派的任务
// （成员可改的字段由 RoleUpdateMask 在请求边界进一步收紧）
func TaskUpdate(actor *model.User, task *model.Task) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		if task.IsAssignedTo(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotAssigned)
	}
	return Deny(reasonRole)
}

// TaskMarkAsComplete 标记任务完成：同更新
func TaskMarkAsComplete(actor *model.User, task *model.Task) Decision {
	return TaskUpdate(actor, task)
}

// TaskDelete 删除任务：管理员，或拥有所属项目的负责人
func TaskDelete(actor *model.User, task *model.Task, project *model.Project) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleTeamLeader:
		if project != nil && project.IsOwnedBy(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotOwner)
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// TaskAssign 指派任务：同删除
func TaskAssign(actor *model.User, task *model.Task, project *model.Project) Decision {
	return TaskDelete(actor, task, project)
}

// TaskUnassign 取消指派：同指派
func TaskUnassign(actor *model.User, task *model.Task, project *model.Project) Decision {
	return TaskAssign(actor, task, project)
}

// SubTaskCreate 创建子任务：管理员或团队负责人
func SubTaskCreate(actor *model.User) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// SubTaskView 查看子任务：管理员、负责人，或被指派的用户
func SubTaskView(actor *model.User, subTask *model.SubTask) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		if subTask.IsAssignedTo(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotAssigned)
	}
	return Deny(reasonRole)
}

// SubTaskUpdate 更新子任务：管理员和负责人不受限；成员仅限自己被指派的子任务
func SubTaskUpdate(actor *model.User, subTask *model.SubTask) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		if subTask.IsAssignedTo(actor.ID) {
			return Allow()
		}
		return Deny(reasonNotAssigned)
	}
	return Deny(reasonRole)
}

// SubTaskMarkAsComplete 标记子任务完成：同更新
func SubTaskMarkAsComplete(actor *model.User, subTask *model.SubTask) Decision {
	return SubTaskUpdate(actor, subTask)
}

// SubTaskDelete 删除子任务：管理员，或创建（指派）该子任务的负责人
func SubTaskDelete(actor *model.User, subTask *model.SubTask) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Allow()
	case model.RoleTeamLeader:
		if subTask.AssignedBy == actor.ID {
			return Allow()
		}
		return Deny(reasonNotOwner)
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// SubTaskAssign 指派子任务：管理员或团队负责人
func SubTaskAssign(actor *model.User) Decision {
	return SubTaskCreate(actor)
}

// SubTaskUnassign 取消指派子任务：同指派
func SubTaskUnassign(actor *model.User) Decision {
	return SubTaskAssign(actor)
}

// ReportGenerate 生成报表：管理员或团队负责人
func ReportGenerate(actor *model.User) Decision {
	switch actor.Role {
	case model.RoleAdmin, model.RoleTeamLeader:
		return Allow()
	case model.RoleTeamMember:
		return Deny(reasonRole)
	}
	return Deny(reasonRole)
}

// ReportExport 导出报表：同生成
func ReportExport(actor *model.User) Decision {
	return ReportGenerate(actor)
}
