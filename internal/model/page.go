package model

import "time"

// Page is a navigable application section. Unlike features, the page
// vocabulary lives in the database and can change at runtime.
type Page string

const (
	PageDashboard              Page = "dashboard"
	PageOrders                 Page = "orders"
	PageBilling                Page = "billing"
	PageReports                Page = "reports"
	PageInventory              Page = "inventory"
	PageUsers                  Page = "users"
	PageSettings               Page = "settings"
	PageTicketManagement       Page = "ticket_management"
	PageSubscriptionManagement Page = "subscription_management"
)

// PageDefinition is a registered page.
type PageDefinition struct {
	Key       Page      `gorm:"column:page_key;type:varchar(64);primaryKey" json:"key" validate:"required,page_key"`
	Label     string    `gorm:"type:varchar(100)" json:"label" validate:"required,max=100"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `gorm:"type:varchar(255)" json:"created_by"`
}

func (PageDefinition) TableName() string {
	return "pages"
}

// DefaultPages seeds the page registry on first start.
var DefaultPages = []PageDefinition{
	{Key: PageDashboard, Label: "Dashboard"},
	{Key: PageOrders, Label: "Orders"},
	{Key: PageBilling, Label: "Billing"},
	{Key: PageReports, Label: "Reports"},
	{Key: PageInventory, Label: "Inventory"},
	{Key: PageUsers, Label: "Users"},
	{Key: PageSettings, Label: "Settings"},
	{Key: PageTicketManagement, Label: "Ticket Management"},
	{Key: PageSubscriptionManagement, Label: "Subscription Management"},
}
