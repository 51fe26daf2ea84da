package interfaces

import (
	invoice "cryptoinvoice-pro/internal/invoice/domain"
	"cryptoinvoice-pro/internal/money"
)

// lineItemPayload tolerates the field aliases produced by older clients:
// "name" for description, "qty" for quantity, "price" for unitPrice.
// A missing or zero quantity bills as one unit.
type lineItemPayload struct {
	Description string   `json:"description"`
	Name        string   `json:"name"`
	Quantity    *float64 `json:"quantity"`
	Qty         *float64 `json:"qty"`
	UnitPrice   *float64 `json:"unitPrice"`
	Price       *float64 `json:"price"`
}

func (p lineItemPayload) toDomain() invoice.LineItem {
	description := p.Description
	if description == "" {
		description = p.Name
	}
	qty := 0.0
	if p.Quantity != nil {
		qty = *p.Quantity
	} else if p.Qty != nil {
		qty = *p.Qty
	}
	price := 0.0
	if p.UnitPrice != nil {
		price = *p.UnitPrice
	} else if p.Price != nil {
		price = *p.Price
	}
	return invoice.LineItem{
		Description: description,
		Quantity:    money.QuantityOrDefault(qty),
		UnitPrice:   price,
	}
}

// invoicePayload tolerates the same aliasing at the invoice level: "tax"
// for taxPercent, "crypto" for cryptoSymbol, "price" for cryptoPrice.
type invoicePayload struct {
	Sender        string            `json:"sender"`
	Client        string            `json:"client"`
	Items         []lineItemPayload `json:"items"`
	TaxPercent    *float64          `json:"taxPercent"`
	Tax           *float64          `json:"tax"`
	Discount      float64           `json:"discount"`
	FiatCurrency  string            `json:"fiatCurrency"`
	CryptoSymbol  string            `json:"cryptoSymbol"`
	Crypto        string            `json:"crypto"`
	WalletAddress string            `json:"wallet"`
	CryptoPrice   *float64          `json:"cryptoPrice"`
	Price         *float64          `json:"price"`
}

func (p invoicePayload) taxPercent() float64 {
	if p.TaxPercent != nil {
		return *p.TaxPercent
	}
	if p.Tax != nil {
		return *p.Tax
	}
	return 0
}

func (p invoicePayload) cryptoSymbol() string {
	if p.CryptoSymbol != "" {
		return p.CryptoSymbol
	}
	return p.Crypto
}

func (p invoicePayload) cryptoPrice() float64 {
	if p.CryptoPrice != nil {
		return *p.CryptoPrice
	}
	if p.Price != nil {
		return *p.Price
	}
	return 0
}

func (p invoicePayload) lineItems() []invoice.LineItem {
	items := make([]invoice.LineItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, item.toDomain())
	}
	return items
}
