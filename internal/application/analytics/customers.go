package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/megamart-analytics/internal/application/dto"
	"github.com/jhoicas/megamart-analytics/internal/domain/entity"
)

// customerStats acumulado de compras de un cliente.
type customerStats struct {
	id           string
	transactions int
	spent        decimal.Decimal
}

// BuildCustomerAnalytics calcula segmentación, patrones de compra y pares de productos
// a partir de clientes, transacciones y catálogo (para nombres de producto).
//
// Segmentación por frecuencia: ≥ 3 compras → recurrente; 0, 1 o 2 → nuevo.
// Segmentación por valor (clientes con ≥ 1 compra): gasto > 100.000 → alto valor
// sin importar la frecuencia; < 50.000 → ocasional; el resto → medio.
func BuildCustomerAnalytics(
	customers []entity.Customer,
	txs []entity.SaleRecord,
	products []entity.Product,
	now time.Time,
) *dto.CustomerAnalyticsDTO {
	stats := make(map[string]*customerStats)
	order := make([]string, 0, len(customers))
	names := make(map[string]string, len(customers))

	for _, c := range customers {
		if c.CustomerID == "" {
			continue
		}
		names[c.CustomerID] = c.Name
		if _, ok := stats[c.CustomerID]; !ok {
			stats[c.CustomerID] = &customerStats{id: c.CustomerID, spent: decimal.Zero}
			order = append(order, c.CustomerID)
		}
	}
	for _, tx := range txs {
		if tx.CustomerID == "" {
			continue
		}
		s, ok := stats[tx.CustomerID]
		if !ok {
			s = &customerStats{id: tx.CustomerID, spent: decimal.Zero}
			stats[tx.CustomerID] = s
			order = append(order, tx.CustomerID)
		}
		s.transactions++
		s.spent = s.spent.Add(tx.Total)
	}

	// ── Segmentación ──────────────────────────────────────────────────────────
	var nv dto.NewVsRecurringDTO
	var vs dto.ValueSegmentationDTO
	highValue := make([]*customerStats, 0)
	for _, id := range order {
		s := stats[id]
		if s.transactions >= recurringMinTransactions {
			nv.Recurring++
		} else {
			nv.New++
		}
		if s.transactions == 0 {
			continue
		}
		switch {
		case s.spent.GreaterThan(highValueSpend):
			vs.HighValue++
			highValue = append(highValue, s)
		case s.spent.LessThan(occasionalSpend):
			vs.LowValue++
		default:
			vs.MediumValue++
		}
	}
	population := decimal.NewFromInt(int64(nv.New + nv.Recurring))
	nv.NewPercent = percent(decimal.NewFromInt(int64(nv.New)), population)
	nv.RecurringPercent = percent(decimal.NewFromInt(int64(nv.Recurring)), population)
	buyers := decimal.NewFromInt(int64(vs.HighValue + vs.MediumValue + vs.LowValue))
	vs.HighValuePercent = percent(decimal.NewFromInt(int64(vs.HighValue)), buyers)
	vs.MediumValuePercent = percent(decimal.NewFromInt(int64(vs.MediumValue)), buyers)
	vs.LowValuePercent = percent(decimal.NewFromInt(int64(vs.LowValue)), buyers)

	sort.SliceStable(highValue, func(i, j int) bool {
		if !highValue[i].spent.Equal(highValue[j].spent) {
			return highValue[i].spent.GreaterThan(highValue[j].spent)
		}
		return highValue[i].id < highValue[j].id
	})
	if len(highValue) > topHighValueCustomers {
		highValue = highValue[:topHighValueCustomers]
	}
	top := make([]dto.HighValueCustomerDTO, 0, len(highValue))
	for _, s := range highValue {
		name := names[s.id]
		if name == "" {
			name = s.id
		}
		top = append(top, dto.HighValueCustomerDTO{
			CustomerID:  s.id,
			Name:        name,
			TotalSpent:  s.spent.Round(2),
			Visits:      s.transactions,
			AvgPerVisit: ratio(s.spent, decimal.NewFromInt(int64(s.transactions))),
		})
	}

	return &dto.CustomerAnalyticsDTO{
		PurchasePatterns: purchasePatterns(txs),
		Segmentation: dto.CustomerSegmentationDTO{
			NewVsRecurring:     nv,
			ValueSegmentation:  vs,
			HighValueCustomers: top,
		},
		FrequentlyBoughtTogether: productPairs(txs, productNames(products)),
		GeneratedAt:              now.UTC().Format(time.RFC3339),
	}
}

// purchasePatterns ticket promedio, artículos por transacción y su serie mensual.
func purchasePatterns(txs []entity.SaleRecord) dto.PurchasePatternsDTO {
	type monthAcc struct {
		start time.Time
		total decimal.Decimal
		items int64
		count int64
	}
	months := make(map[time.Time]*monthAcc)
	total := decimal.Zero
	var items int64
	for _, tx := range txs {
		total = total.Add(tx.Total)
		n := int64(tx.ItemCount())
		items += n
		if tx.CreatedAt.IsZero() {
			continue
		}
		t := tx.CreatedAt.Time
		key := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		acc, ok := months[key]
		if !ok {
			acc = &monthAcc{start: key, total: decimal.Zero}
			months[key] = acc
		}
		acc.total = acc.total.Add(tx.Total)
		acc.items += n
		acc.count++
	}

	keys := make([]time.Time, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	if len(keys) > historyMonths {
		keys = keys[len(keys)-historyMonths:]
	}

	ticketHist := make([]dto.MonthValueDTO, 0, len(keys))
	itemsHist := make([]dto.MonthValueDTO, 0, len(keys))
	for _, k := range keys {
		acc := months[k]
		count := decimal.NewFromInt(acc.count)
		ticketHist = append(ticketHist, dto.MonthValueDTO{
			Month: monthShort(k.Month()), Year: k.Year(), Value: ratio(acc.total, count),
		})
		itemsHist = append(itemsHist, dto.MonthValueDTO{
			Month: monthShort(k.Month()), Year: k.Year(), Value: ratio(decimal.NewFromInt(acc.items), count),
		})
	}

	n := decimal.NewFromInt(int64(len(txs)))
	return dto.PurchasePatternsDTO{
		AvgTicket:                  ratio(total, n),
		ItemsPerTransaction:        ratio(decimal.NewFromInt(items), n),
		AvgTicketHistory:           ticketHist,
		ItemsPerTransactionHistory: itemsHist,
	}
}

// productPairs pares de productos que aparecen en la misma transacción.
// El primer producto del par es el de mayor frecuencia individual; la confianza es
// frecuencia del par / frecuencia del primer producto.
func productPairs(txs []entity.SaleRecord, names map[string]string) []dto.ProductPairDTO {
	type pair struct{ a, b string }
	single := make(map[string]int)
	pairs := make(map[pair]int)

	for _, tx := range txs {
		seen := make(map[string]struct{}, len(tx.Items))
		ids := make([]string, 0, len(tx.Items))
		for _, it := range tx.Items {
			if it.ProductID == "" {
				continue
			}
			if _, dup := seen[it.ProductID]; dup {
				continue
			}
			seen[it.ProductID] = struct{}{}
			ids = append(ids, it.ProductID)
		}
		sort.Strings(ids)
		for i, a := range ids {
			single[a]++
			for _, b := range ids[i+1:] {
				pairs[pair{a, b}]++
			}
		}
	}

	out := make([]dto.ProductPairDTO, 0, len(pairs))
	for p, freq := range pairs {
		first, second := p.a, p.b
		if single[second] > single[first] {
			first, second = second, first
		}
		out = append(out, dto.ProductPairDTO{
			Product1:   displayName(names, first),
			Product2:   displayName(names, second),
			Frequency:  freq,
			Confidence: ratio(decimal.NewFromInt(int64(freq)), decimal.NewFromInt(int64(single[first]))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		if !out[i].Confidence.Equal(out[j].Confidence) {
			return out[i].Confidence.GreaterThan(out[j].Confidence)
		}
		if out[i].Product1 != out[j].Product1 {
			return out[i].Product1 < out[j].Product1
		}
		return out[i].Product2 < out[j].Product2
	})
	if len(out) > topProductPairs {
		out = out[:topProductPairs]
	}
	return out
}

func productNames(products []entity.Product) map[string]string {
	names := make(map[string]string, len(products))
	for _, p := range products {
		if p.Name != "" {
			names[p.ProductID] = p.Name
		}
	}
	return names
}

func displayName(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}
