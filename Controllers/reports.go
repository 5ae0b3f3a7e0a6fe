package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/Inventory"
	"CafePOS/Reports"
	"CafePOS/Whatsapp"
)

type ReportController struct {
	DB    *gorm.DB
	Store Config.StoreConfig
}

func NewReportController(db *gorm.DB, store Config.StoreConfig) *ReportController {
	return &ReportController{DB: db, Store: store}
}

// export answers with JSON unless ?format=csv or xlsx asks for a file.
func export(ctx *fiber.Ctx, body interface{}, table *Reports.Table, baseName string) error {
	format := ctx.Query("format", "json")
	if format == "json" {
		return ctx.JSON(body)
	}
	data, contentType, filename, err := table.Export(format, baseName)
	if err != nil {
		return respondError(ctx, err)
	}
	return sendFile(ctx, data, contentType, filename)
}

func (c *ReportController) salesSummary(ctx *fiber.Ctx) (*Reports.SalesSummary, error) {
	from, to, err := parseRange(ctx)
	if err != nil {
		return nil, err
	}
	return Reports.Sales(c.DB, Reports.SalesFilter{
		From:       from,
		To:         to,
		EmployeeID: uint(ctx.QueryInt("employee_id", 0)),
	})
}

func (c *ReportController) GetSalesReport(ctx *fiber.Ctx) error {
	summary, err := c.salesSummary(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	table := summary.Table()
	if ctx.Query("view") == "daily" {
		table = summary.DailyTable()
	}
	return export(ctx, summary, table, "sales_report")
}

// ShareSalesReport builds a WhatsApp link carrying the sales summary.
// ?phone= overrides the configured owner number.
func (c *ReportController) ShareSalesReport(ctx *fiber.Ctx) error {
	summary, err := c.salesSummary(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	text := summary.ShareText(c.Store.Name)
	link, err := Whatsapp.BuildLink(ctx.Query("phone", c.Store.WhatsappNumber), text)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(fiber.Map{"link": link, "text": text})
}

func (c *ReportController) GetHPPReport(ctx *fiber.Ctx) error {
	lines, err := Inventory.CostSheet(c.DB)
	if err != nil {
		return respondError(ctx, err)
	}
	return export(ctx, lines, Reports.HPPTable(lines), "hpp_data")
}

func (c *ReportController) GetStockReport(ctx *fiber.Ctx) error {
	summary, err := Reports.Stock(c.DB, ctx.QueryFloat("threshold", c.Store.LowStockThreshold))
	if err != nil {
		return respondError(ctx, err)
	}
	return export(ctx, summary, summary.Table(), "stock_report")
}

func (c *ReportController) GetExpenseReport(ctx *fiber.Ctx) error {
	from, to, err := parseRange(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	summary, err := Reports.Expenses(c.DB, from, to)
	if err != nil {
		return respondError(ctx, err)
	}
	return export(ctx, summary, summary.Table(), "expense_report")
}
