// =============================================================================
// Portfolio Consolidation - Sales Invoice Matcher
// =============================================================================
//
// Every credit gets a Factura_Venta: the sales invoice that originated it.
//
//   ARPESOD     : the credit is its own invoice (Factura_Venta = Credito).
//   FINANSUEÑOS : the invoice is looked up in the sales detail extract.
//
// The sales detail holds both financing originations (credit type "DF...")
// and retail invoices. An origination and an invoice belong together when
// they share the client's citizen id and their dates are at most
// MatchWindowDays apart. When several invoices qualify, the closest one in
// time wins; remaining ties go to the earliest origination row, then to the
// earliest invoice row.
//
// OUTCOMES:
//   - no sales detail loaded         -> "NO DISPONIBLE"
//   - no parseable date in the detail -> "ERROR DE FECHA"
//   - no invoice within the window    -> "NO ASIGNADA"
//
// =============================================================================

package sales

import (
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/portfolio-consolidation/internal/credit"
	"github.com/ginjaninja78/portfolio-consolidation/internal/table"
	"github.com/ginjaninja78/portfolio-consolidation/internal/types"
)

// MatchWindowDays is the widest date gap between an origination and its
// invoice.
const MatchWindowDays = 30

// InvoiceStats summarizes one invoice assignment pass.
type InvoiceStats struct {
	Matched    int
	Unassigned int
	DateError  bool
	Missing    bool
}

// dated is a sales detail row with a parsed date and its input position.
type dated struct {
	key      string
	date     time.Time
	position int
}

// Matcher finds the invoice of a financing credit.
type Matcher struct {
	// invoices holds the retail invoice rows per citizen id, sorted by date
	// then position.
	invoices map[string][]dated

	// matches maps an origination CreditKey to its invoice CreditKey.
	matches map[string]string
}

// candidate is a scored (origination, invoice) pair.
type candidate struct {
	invoice   string
	gap       int
	origin    int
	invoicePo int
}

func (c candidate) better(o candidate) bool {
	if c.gap != o.gap {
		return c.gap < o.gap
	}
	if c.origin != o.origin {
		return c.origin < o.origin
	}
	return c.invoicePo < o.invoicePo
}

// NewMatcher indexes the sales detail table. It reports false when no row
// has a parseable invoice date.
func NewMatcher(detail *table.Table) (*Matcher, bool) {
	m := &Matcher{
		invoices: make(map[string][]dated),
		matches:  make(map[string]string),
	}

	var (
		origins []dated
		cedulas []string
		anyDate bool
	)
	for i, r := range detail.Rows {
		date, ok := r.Date(types.ColInvoiceDate)
		if !ok {
			continue
		}
		anyDate = true

		key, hasKey := r.Get(types.ColCreditKey)
		cedula, hasCedula := r.Get(types.ColCitizenID)
		if !hasKey || !hasCedula {
			continue
		}

		d := dated{key: key, date: date, position: i}
		if isOrigination(key) {
			origins = append(origins, d)
			cedulas = append(cedulas, cedula)
		} else {
			m.invoices[cedula] = append(m.invoices[cedula], d)
		}
	}
	if !anyDate {
		return m, false
	}

	for _, list := range m.invoices {
		sort.SliceStable(list, func(a, b int) bool {
			return list[a].date.Before(list[b].date)
		})
	}

	best := make(map[string]candidate)
	for i, o := range origins {
		c, ok := m.closest(cedulas[i], o)
		if !ok {
			continue
		}
		if cur, seen := best[o.key]; !seen || c.better(cur) {
			best[o.key] = c
		}
	}
	for key, c := range best {
		m.matches[key] = c.invoice
	}
	return m, true
}

// closest scans the invoices of one client within the date window.
func (m *Matcher) closest(cedula string, origin dated) (candidate, bool) {
	list := m.invoices[cedula]
	from := origin.date.AddDate(0, 0, -MatchWindowDays)
	start := sort.Search(len(list), func(i int) bool {
		return !list[i].date.Before(from)
	})

	var (
		best  candidate
		found bool
	)
	for _, inv := range list[start:] {
		gap := table.DaysBetween(inv.date, origin.date)
		if inv.date.After(origin.date) && gap > MatchWindowDays {
			break
		}
		if gap > MatchWindowDays {
			continue
		}
		c := candidate{invoice: inv.key, gap: gap, origin: origin.position, invoicePo: inv.position}
		if !found || c.better(best) {
			best, found = c, true
		}
	}
	return best, found
}

// Invoice returns the invoice matched to a financing credit.
func (m *Matcher) Invoice(creditKey string) (string, bool) {
	v, ok := m.matches[creditKey]
	return v, ok
}

func isOrigination(key string) bool {
	return strings.HasPrefix(key, types.FinansuenosCreditType)
}

// AssignInvoices sets Factura_Venta on every report row.
//
// PARAMETERS:
//   - report: The working table, with Credito and Empresa.
//   - detail: The sales detail table, or nil when it was not loaded.
func AssignInvoices(report, detail *table.Table) InvoiceStats {
	report.AddColumn(types.ColSalesInvoice)
	stats := InvoiceStats{}

	var (
		matcher  *Matcher
		fallback string
	)
	switch {
	case detail == nil:
		stats.Missing = true
		fallback = types.SentinelNotAvailable
	default:
		var ok bool
		matcher, ok = NewMatcher(detail)
		if !ok {
			stats.DateError = true
			fallback = types.SentinelDateError
		} else {
			fallback = types.SentinelUnassigned
		}
	}

	for _, r := range report.Rows {
		if credit.EntityOf(r) == types.EntityArpesod {
			if key, ok := r.Get(types.ColCreditKey); ok {
				r.Set(types.ColSalesInvoice, key)
			} else {
				r.Set(types.ColSalesInvoice, fallback)
			}
			continue
		}
		if matcher != nil {
			if invoice, ok := matcher.Invoice(r.Str(types.ColCreditKey)); ok {
				r.Set(types.ColSalesInvoice, invoice)
				stats.Matched++
				continue
			}
		}
		r.Set(types.ColSalesInvoice, fallback)
		stats.Unassigned++
	}
	return stats
}
