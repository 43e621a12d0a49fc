package reports

import (
	"context"
	"log"
	"math"
	"net/http"
	"sort"
	"time"

	"mjolnir/invoices"
	"mjolnir/utils"

	"github.com/julienschmidt/httprouter"
)

// parseRange reads ?start and ?end (YYYY-MM-DD); end defaults to now and
// start to the first of the current month, as the revenue chart expects.
func parseRange(r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now

	if s := q.Get("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, false
		}
		start = t
	}
	if e := q.Get("end"); e != "" {
		t, err := time.Parse("2006-01-02", e)
		if err != nil {
			return start, end, false
		}
		// include the whole end day
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, true
}

// InvoicesByDate lists invoices in a date range for the sales manager.
func InvoicesByDate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if r.URL.Query().Get("start") == "" || r.URL.Query().Get("end") == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Start and end date required")
		return
	}
	start, end, ok := parseRange(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	list, err := invoices.FindByDateRange(ctx, start, end)
	if err != nil {
		log.Println("InvoicesByDate error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, list)
}

// DailyFigure is one day's aggregated revenue and profit.
type DailyFigure struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// RevenueChart aggregates non-cancelled invoices per day. Profit is
// revenue minus the captured unit costs, so later catalog price changes
// do not rewrite history.
func RevenueChart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start, end, ok := parseRange(r)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid date format")
		return
	}

	list, err := invoices.FindByDateRange(ctx, start, end)
	if err != nil {
		log.Println("RevenueChart error:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate chart")
		return
	}

	daily := map[string]*DailyFigure{}
	for _, inv := range list {
		if inv.Status == "cancelled" {
			continue
		}
		day := inv.CreatedAt.UTC().Format("2006-01-02")
		fig, ok := daily[day]
		if !ok {
			fig = &DailyFigure{Date: day}
			daily[day] = fig
		}
		totalCost := 0.0
		for _, item := range inv.Items {
			totalCost += item.Cost * float64(item.Quantity)
		}
		fig.Revenue += inv.Total
		fig.Profit += inv.Total - totalCost
	}

	result := make([]DailyFigure, 0, len(daily))
	for _, fig := range daily {
		fig.Revenue = math.Round(fig.Revenue*100) / 100
		fig.Profit = math.Round(fig.Profit*100) / 100
		result = append(result, *fig)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })

	utils.RespondWithJSON(w, http.StatusOK, result)
}
