package flow

import (
	"fmt"
	"strings"

	"github.com/Ananth-NQI/orderbot/internal/catalog"
	"github.com/Ananth-NQI/orderbot/internal/models"
)

// OrderLine is one product with its quantity and computed subtotal.
type OrderLine struct {
	ProductID string
	Quantity  int
	Subtotal  int64
}

// NewOrderLine prices quantity packs of p.
func NewOrderLine(p catalog.Product, quantity int) OrderLine {
	return OrderLine{
		ProductID: p.ID,
		Quantity:  quantity,
		Subtotal:  int64(quantity) * p.UnitPrice,
	}
}

// Total sums the subtotals of lines.
func Total(lines []OrderLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal
	}
	return total
}

// Submission builds the sink payload from a completed session.
func Submission(s *Session, cat *catalog.Catalog) models.OrderSubmission {
	names := make([]string, 0, len(s.Lines))
	quantities := make([]string, 0, len(s.Lines))
	items := make([]models.OrderItem, 0, len(s.Lines))

	for _, l := range s.Lines {
		p, _ := cat.Lookup(l.ProductID)
		names = append(names, p.Name)
		quantities = append(quantities, fmt.Sprintf("%s: %d", p.Name, l.Quantity))
		items = append(items, models.OrderItem{
			ProductID:   l.ProductID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   p.UnitPrice,
			Subtotal:    l.Subtotal,
		})
	}

	return models.OrderSubmission{
		Reference:         s.OrderRef,
		CustomerID:        s.CustomerID,
		ContactName:       s.Contact.Name,
		ContactPhone:      s.Contact.Phone,
		LineItemsSummary:  strings.Join(names, ", "),
		QuantitiesSummary: strings.Join(quantities, ", "),
		Total:             Total(s.Lines),
		DeliveryDate:      s.SelectedDate.ISO,
		DeliveryLabel:     s.SelectedDate.Label,
		Items:             items,
	}
}
