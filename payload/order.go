package payload

import (
	"context"

	"github.com/xraph/hookbridge/content"
)

// BuildOrder returns the payload for a commerce order. It returns an empty
// Document when commerce is inactive or the order does not resolve.
func (b *Builder) BuildOrder(ctx context.Context, orderID int64) Document {
	if !b.src.CommerceActive(ctx) {
		return Document{}
	}

	o, err := b.src.GetOrder(ctx, orderID)
	if err != nil {
		b.lookupFailed(ctx, "order", orderID, err)
		return Document{}
	}

	doc := Document{
		"id":                   o.ID,
		"order_number":         o.Number,
		"created_at":           formatDate(o.Created),
		"updated_at":           formatDate(o.Modified),
		"completed_at":         formatDate(o.Completed),
		"status":               o.Status,
		"currency":             o.Currency,
		"total":                o.Total,
		"subtotal":             o.Subtotal,
		"total_tax":            o.TotalTax,
		"total_discount":       o.TotalDiscount,
		"shipping_total":       o.ShippingTotal,
		"shipping_tax":         o.ShippingTax,
		"cart_tax":             o.CartTax,
		"payment_method":       o.PaymentMethod,
		"payment_method_title": o.PaymentMethodTitle,
		"transaction_id":       o.TransactionID,
		"customer_ip_address":  o.CustomerIP,
		"customer_user_agent":  o.CustomerUserAgent,
		"customer_note":        o.CustomerNote,
		"billing":              addressFields(o.Billing, true),
		"shipping":             addressFields(o.Shipping, false),
	}

	if o.CustomerID != 0 {
		if cust, err := b.src.GetCustomer(ctx, o.CustomerID); err == nil {
			doc["customer"] = customerFields(cust)
		} else {
			b.lookupFailed(ctx, "customer", o.CustomerID, err)
		}
	}

	doc["line_items"] = b.lineItems(ctx, o.Items)

	shipping := make([]map[string]any, 0, len(o.ShippingLines))
	for _, s := range o.ShippingLines {
		shipping = append(shipping, map[string]any{
			"id":           s.ID,
			"method_id":    s.MethodID,
			"method_title": s.MethodTitle,
			"total":        s.Total,
			"total_tax":    s.TotalTax,
			"taxes":        taxes(s.Taxes),
		})
	}
	doc["shipping_lines"] = shipping

	taxLines := make([]map[string]any, 0, len(o.TaxLines))
	for _, t := range o.TaxLines {
		taxLines = append(taxLines, map[string]any{
			"id":       t.ID,
			"rate_id":  t.RateID,
			"code":     t.Code,
			"title":    t.Label,
			"total":    t.Amount,
			"compound": t.Compound,
		})
	}
	doc["tax_lines"] = taxLines

	fees := make([]map[string]any, 0, len(o.FeeLines))
	for _, f := range o.FeeLines {
		fees = append(fees, map[string]any{
			"id":         f.ID,
			"name":       f.Name,
			"tax_class":  f.TaxClass,
			"tax_status": f.TaxStatus,
			"total":      f.Total,
			"total_tax":  f.TotalTax,
			"taxes":      taxes(f.Taxes),
		})
	}
	doc["fee_lines"] = fees

	coupons := make([]map[string]any, 0, len(o.CouponCodes))
	for _, code := range o.CouponCodes {
		coupons = append(coupons, map[string]any{
			"code":         code,
			"discount":     o.TotalDiscount,
			"discount_tax": o.DiscountTax,
		})
	}
	doc["coupon_lines"] = coupons

	notes := make([]map[string]any, 0)
	if list, err := b.src.OrderNotes(ctx, orderID); err == nil {
		for _, n := range list {
			notes = append(notes, map[string]any{
				"id":               n.ID,
				"author":           n.AddedBy,
				"date":             formatDate(n.Created),
				"content":          n.Content,
				"is_customer_note": n.CustomerNote,
			})
		}
	} else {
		b.lookupFailed(ctx, "order notes", orderID, err)
	}
	doc["notes"] = notes

	meta := make([]map[string]any, 0, len(o.Meta))
	for _, m := range o.Meta {
		meta = append(meta, map[string]any{
			"id":    m.ID,
			"key":   m.Key,
			"value": m.Value,
		})
	}
	doc["meta_data"] = meta

	return doc
}

// lineItems renders order items, adding a product snapshot for items whose
// product still exists.
func (b *Builder) lineItems(ctx context.Context, items []content.LineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		line := map[string]any{
			"id":           item.ID,
			"name":         item.Name,
			"product_id":   item.ProductID,
			"variation_id": item.VariationID,
			"quantity":     item.Quantity,
			"tax_class":    item.TaxClass,
			"subtotal":     item.Subtotal,
			"subtotal_tax": item.SubtotalTax,
			"total":        item.Total,
			"total_tax":    item.TotalTax,
			"taxes":        taxes(item.Taxes),
		}

		productID := item.ProductID
		if item.VariationID != 0 {
			productID = item.VariationID
		}
		if productID != 0 {
			if p, err := b.src.GetProduct(ctx, productID); err == nil {
				addProduct(line, p)
			} else {
				b.lookupFailed(ctx, "product", productID, err)
			}
		}

		out = append(out, line)
	}
	return out
}

func addProduct(line map[string]any, p *content.Product) {
	var stock any
	if p.StockQuantity != nil {
		stock = *p.StockQuantity
	}
	line["sku"] = p.SKU
	line["price"] = p.Price
	line["regular_price"] = p.RegularPrice
	line["sale_price"] = p.SalePrice
	line["permalink"] = p.Permalink
	line["stock_quantity"] = stock
	line["stock_status"] = p.StockStatus
	line["weight"] = p.Weight
	line["dimensions"] = map[string]any{
		"length": p.Length,
		"width":  p.Width,
		"height": p.Height,
	}
	line["categories"] = termList(p.Categories, false)
}

func addressFields(a content.Address, contact bool) map[string]any {
	m := map[string]any{
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"company":    a.Company,
		"address_1":  a.Address1,
		"address_2":  a.Address2,
		"city":       a.City,
		"state":      a.State,
		"postcode":   a.Postcode,
		"country":    a.Country,
	}
	if contact {
		m["email"] = a.Email
		m["phone"] = a.Phone
	}
	return m
}

func customerFields(c *content.Customer) map[string]any {
	return map[string]any{
		"id":                 c.ID,
		"email":              c.Email,
		"first_name":         c.FirstName,
		"last_name":          c.LastName,
		"username":           c.Username,
		"date_created":       formatDate(c.Created),
		"date_modified":      formatDate(c.Modified),
		"role":               c.Role,
		"is_paying_customer": c.IsPaying,
		"orders_count":       c.OrderCount,
		"total_spent":        c.TotalSpent,
		"avatar_url":         c.AvatarURL,
	}
}

func taxes(t content.Taxes) map[string]map[string]string {
	if t == nil {
		return map[string]map[string]string{}
	}
	return t
}
