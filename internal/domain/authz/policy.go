package authz

import (
	"fmt"

	"github.com/jhoicas/vanstock-api/internal/domain"
	"github.com/jhoicas/vanstock-api/internal/domain/entity"
)

// Action operación sujeta a autorización.
type Action string

const (
	ActionRead             Action = "read"
	ActionCreateSale       Action = "sale:create"
	ActionCreateReturn     Action = "return:create"
	ActionCreateTransfer   Action = "transfer:create"
	ActionCompleteTransfer Action = "transfer:complete"
	ActionCreateCustomer   Action = "customer:create"

	ActionManageProducts  Action = "product:manage"
	ActionManageLocations Action = "location:manage"
	ActionAdjustStock     Action = "stock:adjust"
	ActionManageUsers     Action = "user:manage"
	ActionReconcile       Action = "ledger:reconcile"
	ActionExportReports   Action = "report:export"
)

// Acciones permitidas al rol user; admin puede todo.
var userActions = map[Action]bool{
	ActionRead:             true,
	ActionCreateSale:       true,
	ActionCreateReturn:     true,
	ActionCreateTransfer:   true,
	ActionCompleteTransfer: true,
	ActionCreateCustomer:   true,
}

// Can indica si el rol puede ejecutar la acción.
func Can(role string, action Action) bool {
	switch role {
	case entity.RoleAdmin:
		return true
	case entity.RoleUser:
		return userActions[action]
	}
	return false
}

// Authorize devuelve ErrForbidden si el actor no puede ejecutar la acción.
func Authorize(actor entity.Actor, action Action) error {
	if Can(actor.Role, action) {
		return nil
	}
	return fmt.Errorf("%w: rol %q no puede %s", domain.ErrForbidden, actor.Role, action)
}
