package sales

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/portfolio-consolidation/internal/credit"
	"github.com/ginjaninja78/portfolio-consolidation/internal/rules"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// =============================================================================
// PRODUCTS AND GIFTS
// =============================================================================
// A sales line above GiftThreshold is a product; anything at or below it is
// a gift. Lines whose total does not parse are neither.

// GiftThreshold is the highest sale total still counted as a gift.
var GiftThreshold = decimal.NewFromInt(6000)

type itemKind int

const (
	kindNone itemKind = iota
	kindProduct
	kindGift
)

var itemKinds = rules.New(kindNone,
	rules.When(kindProduct, func(total decimal.Decimal) bool { return total.GreaterThan(GiftThreshold) }),
	rules.When(kindGift, func(total decimal.Decimal) bool { return total.LessThanOrEqual(GiftThreshold) }),
)

// items aggregates the lines of one kind for one document.
type items struct {
	names []string
	seen  map[string]bool
	qty   decimal.Decimal
}

func (it *items) add(name string, qty decimal.Decimal) {
	if name != "" && !it.seen[name] {
		it.seen[name] = true
		it.names = append(it.names, name)
	}
	it.qty = it.qty.Add(qty)
}

func (it *items) label() string {
	if it == nil || len(it.names) == 0 {
		return types.SentinelNotApplicable
	}
	return strings.Join(it.names, ", ")
}

func (it *items) quantity() decimal.Decimal {
	if it == nil {
		return decimal.Zero
	}
	return it.qty
}

// Catalog holds the product and gift lines of the sales detail, keyed by
// the document (credit or invoice) they were sold under.
type Catalog struct {
	products map[string]*items
	gifts    map[string]*items
}

// NewCatalog groups the sales detail lines.
func NewCatalog(detail *table.Table) *Catalog {
	c := &Catalog{products: make(map[string]*items), gifts: make(map[string]*items)}
	for _, r := range detail.Rows {
		key, ok := r.Get(types.ColCreditKey)
		if !ok {
			continue
		}
		total, ok := table.ParseDecimal(r.Str(types.ColSaleTotal))
		if !ok {
			continue
		}

		var group map[string]*items
		switch itemKinds.Eval(total) {
		case kindProduct:
			group = c.products
		case kindGift:
			group = c.gifts
		default:
			continue
		}
		it, ok := group[key]
		if !ok {
			it = &items{seen: make(map[string]bool)}
			group[key] = it
		}
		it.add(r.Str(types.ColProductName), r.Decimal(types.ColItemQty))
	}
	return c
}

// AddProducts sets the product and gift columns on every report row.
// ARPESOD rows look up their Credito, FINANSUEÑOS rows their Factura_Venta.
// When detail is nil every row gets "NO DISPONIBLE" and zero quantities.
func AddProducts(report, detail *table.Table) {
	for _, col := range []string{
		types.ColProductName, types.ColProductQty,
		types.ColGiftName, types.ColGiftQty, types.ColTotalProductQty,
	} {
		report.AddColumn(col)
	}

	if detail == nil {
		for _, r := range report.Rows {
			r.Set(types.ColProductName, types.SentinelNotAvailable)
			r.Set(types.ColGiftName, types.SentinelNotAvailable)
			r.Set(types.ColProductQty, "0")
			r.Set(types.ColGiftQty, "0")
			r.Set(types.ColTotalProductQty, "0")
		}
		return
	}

	catalog := NewCatalog(detail)
	for _, r := range report.Rows {
		lookup := types.ColCreditKey
		if credit.EntityOf(r) == types.EntityFinansuenos {
			lookup = types.ColSalesInvoice
		}
		key := r.Str(lookup)

		products := catalog.products[key]
		gifts := catalog.gifts[key]
		productQty := decimal.NewFromInt(products.quantity().IntPart())
		giftQty := decimal.NewFromInt(gifts.quantity().IntPart())

		r.Set(types.ColProductName, products.label())
		r.Set(types.ColGiftName, gifts.label())
		r.Set(types.ColProductQty, table.FormatInt(productQty))
		r.Set(types.ColGiftQty, table.FormatInt(giftQty))
		r.Set(types.ColTotalProductQty, table.FormatInt(productQty.Add(giftQty)))
	}
}
