package policy

import (
	"github.com/iamkhs/ProjectManagement/internal/model"
)

// updateMasks 各角色在任务/子任务部分更新时允许触碰的字段集合。
// 空集合表示不受限。
var updateMasks = map[model.Role]map[string]bool{
	model.RoleAdmin:      nil,
	model.RoleTeamLeader: nil,
	model.RoleTeamMember: {"status": true},
}

// DisallowedUpdateFields 返回字段集合中超出角色掩码的字段。
// 返回为空表示整个更新都被该角色允许。
func DisallowedUpdateFields(role model.Role, fields map[string]interface{}) []string {
	mask, ok := updateMasks[role]
	if !ok || mask == nil {
		if ok {
			return nil // 不受限角色
		}
		// 未知角色不允许更新任何字段
		mask = map[string]bool{}
	}

	var denied []string
	for key := range fields {
		if !mask[key] {
			denied = append(denied, key)
		}
	}
	return denied
}
