package handler

import (
	"fieldsales-service/internal/apperr"
	"fieldsales-service/internal/auth"
	"fieldsales-service/internal/model"
	"fieldsales-service/internal/validate"

	"github.com/labstack/echo/v4"
)

// orderItem is one validated entry of an "items" array.
type orderItem struct {
	line   model.OrderLine
	remark *string
}

// parseOrder validates the header and items of an order-like payload and
// returns one line per item. wholeQuantity requires positive whole quantities.
func parseOrder(p auth.Principal, payload validate.Payload, wholeQuantity bool, required ...string) ([]orderItem, error) {
	if err := validate.Required(payload, required...); err != nil {
		return nil, err
	}
	items, err := payload.Items("items")
	if err != nil {
		return nil, err
	}

	createdAt := now().UTC()
	out := make([]orderItem, 0, len(items))
	for _, item := range items {
		if err := validate.Required(item, "product_name", "quantity", "price", "amount"); err != nil {
			return nil, err
		}

		price, err := validate.Decimal("price", item["price"])
		if err != nil {
			return nil, err
		}
		amount, err := validate.Decimal("amount", item["amount"])
		if err != nil {
			return nil, err
		}

		quantity, err := validate.Decimal("quantity", item["quantity"])
		if err != nil {
			return nil, apperr.New(apperr.InvalidFormat, "Invalid quantity value: "+item.String("quantity"))
		}
		if wholeQuantity {
			if quantity, err = validate.PositiveWhole("quantity", item["quantity"]); err != nil {
				return nil, err
			}
		} else if !quantity.IsPositive() {
			return nil, apperr.New(apperr.InvalidRange, "quantity must be greater than zero")
		}

		line := model.OrderLine{
			CustomerName: payload.String("customer_name"),
			CustomerCode: payload.String("customer_code"),
			Area:         payload.String("area"),
			ProductName:  item.String("product_name"),
			ItemCode:     item.String("item_code"),
			Barcode:      item.String("barcode"),
			Price:        price,
			Quantity:     quantity,
			Amount:       amount,
			ClientID:     p.TenantID,
			Username:     p.SubjectID,
			DeviceID:     payload.String("device_id"),
			CreatedAt:    createdAt,
		}
		line.Status = model.StatusUploaded

		out = append(out, orderItem{line: line, remark: item.OptionalString("remark")})
	}
	return out, nil
}

func createdItem(l model.OrderLine) echo.Map {
	return echo.Map{
		"product_name": l.ProductName,
		"item_code":    l.ItemCode,
		"quantity":     l.Quantity,
		"amount":       l.Amount,
	}
}

func lineItem(l model.OrderLine) echo.Map {
	return echo.Map{
		"product_name": l.ProductName,
		"item_code":    l.ItemCode,
		"barcode":      l.Barcode,
		"price":        l.Price,
		"quantity":     l.Quantity,
		"amount":       l.Amount,
	}
}

func lineHeader(l model.OrderLine) echo.Map {
	createdDate, createdTime := splitDateTime(l.CreatedAt)
	changedDate, changedTime := splitOptional(l.StatusChangedAt)
	return echo.Map{
		"customer_name":       l.CustomerName,
		"customer_code":       l.CustomerCode,
		"area":                l.Area,
		"username":            l.Username,
		"device_id":           l.DeviceID,
		"status":              l.Status,
		"created_date":        createdDate,
		"created_time":        createdTime,
		"status_changed_date": changedDate,
		"status_changed_time": changedTime,
		"status_changed_by":   l.StatusChangedBy,
	}
}

// grouper folds order lines into one entry per group code, keeping first-seen order.
type grouper struct {
	order  []string
	groups map[string]echo.Map
}

func newGrouper() *grouper {
	return &grouper{groups: map[string]echo.Map{}}
}

func (g *grouper) add(code string, header func() echo.Map, item echo.Map) {
	group, ok := g.groups[code]
	if !ok {
		group = header()
		group["items"] = []echo.Map{}
		g.groups[code] = group
		g.order = append(g.order, code)
	}
	group["items"] = append(group["items"].([]echo.Map), item)
}

func (g *grouper) list() []echo.Map {
	out := make([]echo.Map, 0, len(g.order))
	for _, code := range g.order {
		out = append(out, g.groups[code])
	}
	return out
}
