package bot

import (
	"fmt"
	"strconv"
	"strings"

	"motivbot/pkg/domain"
)

// Button actions travel as callback-data strings on the wire
// ("approve_motivation_12"). The tagged domain.Action type exists on
// the inside; these two functions are the only place the string form
// is built or parsed.

const checkJoinData = "check_subscription"
const adminBroadcastData = "admin_broadcast"
const adminStatsData = "admin_stats"

var itemActionKinds = map[string]domain.ActionKind{
	"approve": domain.ActionApprove,
	"reject":  domain.ActionReject,
	"edit":    domain.ActionEdit,
	"delete":  domain.ActionDelete,
	"like":    domain.ActionLike,
	"share":   domain.ActionShare,
}

// EncodeAction renders an action as callback data.
func EncodeAction(a domain.Action) string {
	switch a.Kind {
	case domain.ActionCheckJoin:
		return checkJoinData
	case domain.ActionAdminBroadcast:
		return adminBroadcastData
	case domain.ActionAdminStats:
		return adminStatsData
	}
	for name, kind := range itemActionKinds {
		if kind == a.Kind {
			return fmt.Sprintf("%s_motivation_%d", name, a.ItemID)
		}
	}
	return ""
}

// DecodeAction parses callback data back into a tagged action.
func DecodeAction(data string) (domain.Action, bool) {
	switch data {
	case checkJoinData:
		return domain.Action{Kind: domain.ActionCheckJoin}, true
	case adminBroadcastData:
		return domain.Action{Kind: domain.ActionAdminBroadcast}, true
	case adminStatsData:
		return domain.Action{Kind: domain.ActionAdminStats}, true
	}
	parts := strings.Split(data, "_")
	if len(parts) != 3 || parts[1] != "motivation" {
		return domain.Action{}, false
	}
	kind, ok := itemActionKinds[parts[0]]
	if !ok {
		return domain.Action{}, false
	}
	itemID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || itemID <= 0 {
		return domain.Action{}, false
	}
	return domain.Action{Kind: kind, ItemID: itemID}, true
}
