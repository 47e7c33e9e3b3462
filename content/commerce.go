package content

import "time"

// Address is a billing or shipping address block.
type Address struct {
	FirstName string
	LastName  string
	Company   string
	Address1  string
	Address2  string
	City      string
	State     string
	Postcode  string
	Country   string
	Email     string
	Phone     string
}

// Taxes maps a tax bucket ("total", "subtotal") to per-rate amounts.
type Taxes map[string]map[string]string

// Order is a commerce order.
type Order struct {
	ID                 int64
	Number             string
	Created            time.Time
	Modified           time.Time
	Completed          time.Time
	Status             string
	Currency           string
	Total              float64
	Subtotal           float64
	TotalTax           float64
	TotalDiscount      float64
	DiscountTax        float64
	ShippingTotal      float64
	ShippingTax        float64
	CartTax            float64
	PaymentMethod      string
	PaymentMethodTitle string
	TransactionID      string
	CustomerIP         string
	CustomerUserAgent  string
	CustomerNote       string
	CustomerID         int64
	Billing            Address
	Shipping           Address
	Items              []LineItem
	ShippingLines      []ShippingLine
	TaxLines           []TaxLine
	FeeLines           []FeeLine
	CouponCodes        []string
	Meta               []MetaEntry
}

// LineItem is a purchased product line.
type LineItem struct {
	ID          int64
	Name        string
	ProductID   int64
	VariationID int64
	Quantity    int
	TaxClass    string
	Subtotal    float64
	SubtotalTax float64
	Total       float64
	TotalTax    float64
	Taxes       Taxes
}

// ShippingLine is a shipping method applied to an order.
type ShippingLine struct {
	ID          int64
	MethodID    string
	MethodTitle string
	Total       float64
	TotalTax    float64
	Taxes       Taxes
}

// TaxLine is a tax total by rate code.
type TaxLine struct {
	ID       int64
	RateID   int64
	Code     string
	Label    string
	Amount   float64
	Compound bool
}

// FeeLine is an extra fee charged on an order.
type FeeLine struct {
	ID        int64
	Name      string
	TaxClass  string
	TaxStatus string
	Total     float64
	TotalTax  float64
	Taxes     Taxes
}

// MetaEntry is one raw order meta record.
type MetaEntry struct {
	ID    int64
	Key   string
	Value any
}

// OrderNote is a note attached to an order.
type OrderNote struct {
	ID           int64
	AddedBy      string
	Created      time.Time
	Content      string
	CustomerNote bool
}

// Product is the current catalog snapshot of a purchased product.
type Product struct {
	ID            int64
	SKU           string
	Price         string
	RegularPrice  string
	SalePrice     string
	Permalink     string
	StockQuantity *int
	StockStatus   string
	Weight        string
	Length        string
	Width         string
	Height        string
	Categories    []Term
}

// Customer is the commerce profile of a registered user.
type Customer struct {
	ID         int64
	Email      string
	FirstName  string
	LastName   string
	Username   string
	Created    time.Time
	Modified   time.Time
	Role       string
	IsPaying   bool
	OrderCount int
	TotalSpent float64
	AvatarURL  string
}
