package models

// All lists every table in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Account{}, &RefreshToken{},
		&Product{}, &ProductImage{},
		&CartItem{}, &CartAddReceipt{},
		&Order{}, &OrderItem{}, &Delivery{},
		&InventoryRecord{},
		&Inquiry{}, &DesignRequest{},
	}
}
