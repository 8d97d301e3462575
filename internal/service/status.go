package service

import "github.com/Skotchmaster/furniture_shop/internal/models"

type StatusPolicy string

const (
	// PolicyStrict walks orders forward one step at a time; cancelling is
	// allowed from any non-terminal state.
	PolicyStrict StatusPolicy = "strict"
	// PolicyPermissive lets an admin set any status directly.
	PolicyPermissive StatusPolicy = "permissive"
)

func ParseStatusPolicy(s string) StatusPolicy {
	if StatusPolicy(s) == PolicyPermissive {
		return PolicyPermissive
	}
	return PolicyStrict
}

var nextOrderStatus = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusPending:      models.OrderStatusConfirmed,
	models.OrderStatusConfirmed:    models.OrderStatusInProduction,
	models.OrderStatusInProduction: models.OrderStatusReady,
	models.OrderStatusReady:        models.OrderStatusDelivered,
}

func (p StatusPolicy) CanMoveOrder(from, to models.OrderStatus) bool {
	if !to.Valid() {
		return false
	}
	if p == PolicyPermissive {
		return true
	}
	if from.Terminal() {
		return false
	}
	if to == models.OrderStatusCancelled {
		return true
	}
	return nextOrderStatus[from] == to
}

func (p StatusPolicy) CanMovePayment(from, to models.PaymentStatus) bool {
	if !to.Valid() {
		return false
	}
	if p == PolicyPermissive {
		return true
	}
	switch from {
	case models.PaymentPending:
		return to == models.PaymentPaid || to == models.PaymentRefunded
	case models.PaymentPaid:
		return to == models.PaymentRefunded
	}
	return false
}
