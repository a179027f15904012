package model

import "time"

// LowStockThreshold is the quantity below which an item is flagged as low
// stock on dashboards and list filters.
const LowStockThreshold = 10

// ItemCondition describes the serviceability of an equipment record.
type ItemCondition string

const (
	ConditionGood          ItemCondition = "good"
	ConditionFair          ItemCondition = "fair"
	ConditionPoor          ItemCondition = "poor"
	ConditionUnserviceable ItemCondition = "unserviceable"
)

func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionFair, ConditionPoor, ConditionUnserviceable:
		return true
	}
	return false
}

// InventoryItem is an equipment stock record held by a district.
type InventoryItem struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Category         string        `json:"category"`
	Condition        ItemCondition `json:"condition"`
	Quantity         int           `json:"quantity"`
	Unit             string        `json:"unit,omitempty"`
	District         string        `json:"district"`
	Location         string        `json:"location,omitempty"`
	LastInspectedAt  *time.Time    `json:"lastInspectedAt,omitempty"`
	NextInspectionAt *time.Time    `json:"nextInspectionAt,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// DistrictKey returns the scoping district of the item.
func (i InventoryItem) DistrictKey() string { return i.District }

// IsLowStock reports whether the item is below LowStockThreshold.
func (i InventoryItem) IsLowStock() bool { return i.Quantity < LowStockThreshold }
