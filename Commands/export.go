package Commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"CafePOS/Inventory"
	"CafePOS/Models"
	"CafePOS/Reports"
)

type ExportOptions struct {
	*RootOptions
	Format string
	Out    string
	From   string
	To     string
}

// ValidReports lists what export can write.
var ValidReports = []string{"hpp", "stock", "expenses", "sales"}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:       "export <hpp|stock|expenses|sales>",
		Short:     "Write a report to a CSV or XLSX file",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: ValidReports,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.open()
			if err != nil {
				return err
			}
			from, to, err := opts.dateRange()
			if err != nil {
				return err
			}

			table, baseName, err := buildTable(db, args[0], from, to, opts.Config.Store.LowStockThreshold)
			if err != nil {
				return err
			}
			data, _, filename, err := table.Export(opts.Format, baseName)
			if err != nil {
				return err
			}

			path := opts.Out
			if path == "" {
				path = filepath.Join(opts.Config.Paths.ExportDir, filename)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows)\n", path, len(table.Rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "csv", "file format (csv|xlsx)")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output path, defaults to the export directory")
	cmd.Flags().StringVar(&opts.From, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&opts.To, "to", "", "last day, YYYY-MM-DD")
	return cmd
}

func (o *ExportOptions) dateRange() (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if o.From != "" {
		if from, err = time.ParseInLocation("2006-01-02", o.From, time.Local); err != nil {
			return from, to, Models.Invalidf("--from must look like 2006-01-02")
		}
	}
	if o.To != "" {
		if to, err = time.ParseInLocation("2006-01-02", o.To, time.Local); err != nil {
			return from, to, Models.Invalidf("--to must look like 2006-01-02")
		}
		to = to.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func buildTable(db *gorm.DB, report string, from, to time.Time, threshold float64) (*Reports.Table, string, error) {
	switch report {
	case "hpp":
		lines, err := Inventory.CostSheet(db)
		if err != nil {
			return nil, "", err
		}
		return Reports.HPPTable(lines), "hpp_data", nil
	case "stock":
		summary, err := Reports.Stock(db, threshold)
		if err != nil {
			return nil, "", err
		}
		return summary.Table(), "stock_report", nil
	case "expenses":
		summary, err := Reports.Expenses(db, from, to)
		if err != nil {
			return nil, "", err
		}
		return summary.Table(), "expense_report", nil
	case "sales":
		summary, err := Reports.Sales(db, Reports.SalesFilter{From: from, To: to})
		if err != nil {
			return nil, "", err
		}
		return summary.Table(), "sales_report", nil
	}
	return nil, "", Models.Invalidf("unknown report %q, use one of %v", report, ValidReports)
}
