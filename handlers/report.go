package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/services"
)

type ReportHandler struct {
	DB       *sql.DB
	Exchange *services.ExchangeService
}

type reportRow struct {
	email     string
	kind      string
	amount    float64
	currency  string
	category  string
	date      time.Time
	recurring bool
}

type reportFilter struct {
	email string // empty = all users
	month int    // 0 = all
	year  int    // 0 = all
	kind  string // "income", "expense" or "" for both
}

func filterFromQuery(c *gin.Context) reportFilter {
	f := reportFilter{kind: c.Query("type")}
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		f.month = m
	}
	if y, err := strconv.Atoi(c.Query("year")); err == nil && y > 0 {
		f.year = y
	}
	return f
}

func (h *ReportHandler) loadRows(f reportFilter) ([]reportRow, error) {
	var rows []reportRow
	for _, kind := range []string{"income", "expense"} {
		if f.kind != "" && f.kind != kind {
			continue
		}
		table := kind + "s"

		query := fmt.Sprintf(
			`SELECT email, amount, currency, category, date, is_recurring FROM %s WHERE 1=1`, table)
		args := []interface{}{}
		if f.email != "" {
			args = append(args, f.email)
			query += fmt.Sprintf(" AND email = $%d", len(args))
		}
		if f.month != 0 {
			args = append(args, f.month)
			query += fmt.Sprintf(" AND EXTRACT(MONTH FROM date) = $%d", len(args))
		}
		if f.year != 0 {
			args = append(args, f.year)
			query += fmt.Sprintf(" AND EXTRACT(YEAR FROM date) = $%d", len(args))
		}
		query += " ORDER BY date ASC"

		res, err := h.DB.Query(query, args...)
		if err != nil {
			return nil, err
		}
		for res.Next() {
			r := reportRow{kind: kind}
			if err := res.Scan(&r.email, &r.amount, &r.currency, &r.category, &r.date, &r.recurring); err != nil {
				res.Close()
				return nil, err
			}
			rows = append(rows, r)
		}
		if err := res.Err(); err != nil {
			res.Close()
			return nil, err
		}
		res.Close()
	}
	return rows, nil
}

// aggregate folds rows into a report in the snapshot's target currency.
// Extreme ties break last-seen-wins.
func aggregate(rows []reportRow, snap *services.RateSnapshot) (models.UserReport, error) {
	report := models.UserReport{Transactions: []models.ReportLine{}}
	var totalIncome, totalExpense float64

	for _, r := range rows {
		converted, err := snap.Convert(r.amount, r.currency)
		if err != nil {
			return report, err
		}

		line := models.ReportLine{
			Type:            r.kind,
			Currency:        snap.Target(),
			ConvertedAmount: converted,
			Category:        r.category,
			Date:            r.date,
		}
		report.Transactions = append(report.Transactions, line)
		if r.recurring {
			report.RecurringEntries++
		}

		extreme := &models.ReportExtreme{Currency: snap.Target(), Amount: converted, Category: r.category}
		if r.kind == "income" {
			report.IncomeEntries++
			totalIncome += converted
			if report.HighestIncome == nil || converted >= report.HighestIncome.Amount {
				report.HighestIncome = extreme
			}
			if report.LowestIncome == nil || converted <= report.LowestIncome.Amount {
				report.LowestIncome = extreme
			}
		} else {
			report.ExpenseEntries++
			totalExpense += converted
			if report.HighestExpense == nil || converted >= report.HighestExpense.Amount {
				report.HighestExpense = extreme
			}
			if report.LowestExpense == nil || converted <= report.LowestExpense.Amount {
				report.LowestExpense = extreme
			}
		}
	}

	report.TotalIncome = fmt.Sprintf("%.2f", totalIncome)
	report.TotalExpense = fmt.Sprintf("%.2f", totalExpense)
	report.GrandTotal = fmt.Sprintf("%.2f", totalIncome-totalExpense)
	return report, nil
}

func (h *ReportHandler) targetCurrency(c *gin.Context, email string) string {
	if currency := c.Query("currency"); currency != "" {
		return currency
	}
	var currency string
	if err := h.DB.QueryRow(`SELECT currency FROM users WHERE email = $1`, email).Scan(&currency); err != nil {
		return "USD"
	}
	return currency
}

// UserReports aggregates the caller's transactions with optional
// month/year/type filters.
func (h *ReportHandler) UserReports(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	f := filterFromQuery(c)
	f.email = email

	rows, err := h.loadRows(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	report, err := aggregate(rows, h.Exchange.Snapshot(h.targetCurrency(c, email)))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Exchange rates unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report})
}

// Reports aggregates every user's transactions grouped per email, plus grand
// totals. Admin only.
func (h *ReportHandler) Reports(c *gin.Context) {
	f := filterFromQuery(c)

	rows, err := h.loadRows(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	currency := c.DefaultQuery("currency", "USD")
	snap := h.Exchange.Snapshot(currency)

	byEmail := map[string][]reportRow{}
	for _, r := range rows {
		byEmail[r.email] = append(byEmail[r.email], r)
	}
	emails := make([]string, 0, len(byEmail))
	for email := range byEmail {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	entries := []models.AdminReportEntry{}
	var grandIncome, grandExpense float64
	for _, email := range emails {
		report, err := aggregate(byEmail[email], snap)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Exchange rates unavailable"})
			return
		}
		entries = append(entries, models.AdminReportEntry{Email: email, UserReport: report})

		income, _ := strconv.ParseFloat(report.TotalIncome, 64)
		expense, _ := strconv.ParseFloat(report.TotalExpense, 64)
		grandIncome += income
		grandExpense += expense
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"currency":          currency,
		"reports":           entries,
		"grandTotalIncome":  fmt.Sprintf("%.2f", grandIncome),
		"grandTotalExpense": fmt.Sprintf("%.2f", grandExpense),
		"grandTotal":        fmt.Sprintf("%.2f", grandIncome-grandExpense),
	})
}

// UserBudget lists the caller's budgets with remaining values converted into
// the requested currency.
func (h *ReportHandler) UserBudget(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	query := `SELECT category, currency, budget, remaining_budget, start_date, end_date
	          FROM budgets WHERE email = $1`
	args := []interface{}{email}
	if category := c.Query("category"); category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if m, err := strconv.Atoi(c.Query("month")); err == nil && m >= 1 && m <= 12 {
		args = append(args, m)
		query += fmt.Sprintf(" AND EXTRACT(MONTH FROM start_date) = $%d", len(args))
	}
	query += " ORDER BY start_date DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	snap := h.Exchange.Snapshot(h.targetCurrency(c, email))
	lines := []models.BudgetReportLine{}
	for rows.Next() {
		var line models.BudgetReportLine
		if err := rows.Scan(&line.Category, &line.Currency, &line.Budget,
			&line.RemainingBudget, &line.StartDate, &line.EndDate); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		converted, err := snap.Convert(line.RemainingBudget, line.Currency)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Exchange rates unavailable"})
			return
		}
		line.ConvertedRemaining = converted
		lines = append(lines, line)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "currency": snap.Target(), "budgets": lines})
}

// AvailableDates lists the distinct days, months and years carrying
// transactions for the caller.
func (h *ReportHandler) AvailableDates(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	dates := models.AvailableDates{Days: []int{}, Months: []int{}, Years: []int{}}
	for _, part := range []struct {
		unit string
		dst  *[]int
	}{
		{"DAY", &dates.Days},
		{"MONTH", &dates.Months},
		{"YEAR", &dates.Years},
	} {
		rows, err := h.DB.Query(fmt.Sprintf(`
			SELECT DISTINCT EXTRACT(%s FROM date)::int AS v FROM (
				SELECT date FROM incomes WHERE email = $1
				UNION ALL
				SELECT date FROM expenses WHERE email = $1
			) t ORDER BY v`, part.unit), email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		for rows.Next() {
			var v int
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
				return
			}
			*part.dst = append(*part.dst, v)
		}
		rows.Close()
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "dates": dates})
}

// UserSummaryReport returns per-user entry counts and totals. Admin only.
func (h *ReportHandler) UserSummaryReport(c *gin.Context) {
	rows, err := h.loadRows(filterFromQuery(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	currency := c.DefaultQuery("currency", "USD")
	snap := h.Exchange.Snapshot(currency)

	byEmail := map[string][]reportRow{}
	for _, r := range rows {
		byEmail[r.email] = append(byEmail[r.email], r)
	}
	emails := make([]string, 0, len(byEmail))
	for email := range byEmail {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	summaries := []models.UserSummary{}
	for _, email := range emails {
		report, err := aggregate(byEmail[email], snap)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Exchange rates unavailable"})
			return
		}
		summaries = append(summaries, models.UserSummary{
			Email:          email,
			IncomeEntries:  report.IncomeEntries,
			ExpenseEntries: report.ExpenseEntries,
			TotalIncome:    report.TotalIncome,
			TotalExpense:   report.TotalExpense,
			GrandTotal:     report.GrandTotal,
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "currency": currency, "summaries": summaries})
}
