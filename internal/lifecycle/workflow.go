// Package lifecycle moves tenant-owned records between the statuses of their workflow.
package lifecycle

import (
	"fieldsales-service/internal/model"
)

// Workflow is the set of statuses one entity type may take. When Terminal is
// set, entering it stamps the acting user and time on records that keep an audit.
type Workflow struct {
	Entity   string
	States   []string
	Initial  string
	Terminal string
}

// Allows reports whether status belongs to the workflow.
func (w Workflow) Allows(status string) bool {
	for _, s := range w.States {
		if s == status {
			return true
		}
	}
	return false
}

// Order workflows: collections, item orders, sales and sales returns.
var (
	Collections  = orderWorkflow("collection")
	ItemOrders   = orderWorkflow("item_order")
	Sales        = orderWorkflow("sales")
	SalesReturns = orderWorkflow("sales_return")
)

// Verification workflows: shop locations and punch-ins.
var (
	ShopLocations = verificationWorkflow("shop_location")
	PunchIns      = verificationWorkflow("punchin")
)

func orderWorkflow(entity string) Workflow {
	return Workflow{
		Entity:   entity,
		States:   []string{model.StatusUploaded, model.StatusCompleted},
		Initial:  model.StatusUploaded,
		Terminal: model.StatusCompleted,
	}
}

func verificationWorkflow(entity string) Workflow {
	return Workflow{
		Entity:  entity,
		States:  []string{model.VerificationPending, model.VerificationVerified, model.VerificationRejected},
		Initial: model.VerificationPending,
	}
}
