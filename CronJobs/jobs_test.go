package CronJobs

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CafePOS/Config"
	"CafePOS/Models"
	"CafePOS/email"
)

func newTestScheduler(t *testing.T) (*ReportScheduler, *[]email.Message) {
	t.Helper()
	dir := t.TempDir()
	db, err := Models.Open("sqlite", filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	require.NoError(t, Models.Migrate(db))

	cfg := Config.Default()
	cfg.Store.Name = "Kopi Senja"
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	cfg.Paths.ExportDir = filepath.Join(dir, "exports")
	cfg.Mail.Host = "smtp.example.com"
	cfg.Mail.ReportRecipients = []string{"owner@example.com"}

	var sent []email.Message
	s := NewReportScheduler(db, cfg)
	s.now = func() time.Time { return time.Date(2024, 3, 2, 0, 5, 0, 0, time.Local) }
	s.send = func(_ Config.MailConfig, m email.Message) error {
		sent = append(sent, m)
		return nil
	}
	return s, &sent
}

func TestRunLowStockCheck(t *testing.T) {
	s, sent := newTestScheduler(t)

	names, err := s.RunLowStockCheck()
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Empty(t, *sent)

	require.NoError(t, s.db.Create(&[]Models.Ingredient{
		{Name: "Milk", Unit: "ml", Stock: 20},
		{Name: "Beans", Unit: "gr", Stock: 5000},
	}).Error)

	names, err = s.RunLowStockCheck()
	require.NoError(t, err)
	assert.Equal(t, []string{"Milk"}, names)
	require.Len(t, *sent, 1)
	assert.Equal(t, "Kopi Senja: 1 ingredients low on stock", (*sent)[0].Subject)
	assert.Contains(t, (*sent)[0].Body, "- Milk: 20 ml")
}

func TestRunDailyReport(t *testing.T) {
	s, sent := newTestScheduler(t)
	require.NoError(t, s.db.Create(&Models.Transaction{
		ReceiptNo:     "A",
		Timestamp:     time.Date(2024, 3, 1, 14, 0, 0, 0, time.Local),
		TotalAmount:   25000,
		PaymentMethod: Models.PaymentCash,
		Items:         []Models.TransactionItem{{ProductName: "Latte", Quantity: 1, Price: 25000, Subtotal: 25000}},
	}).Error)

	path, err := s.RunDailyReport(time.Date(2024, 3, 1, 23, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.cfg.Paths.ExportDir, "sales_2024-03-01.xlsx"), path)
	assert.FileExists(t, path)

	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, "Kopi Senja sales 2024-03-01", msg.Subject)
	assert.Contains(t, msg.Body, "Revenue: Rp 25.000")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "sales_2024-03-01.xlsx", msg.Attachments[0].Name)

	logs, err := filepath.Glob(filepath.Join(s.cfg.Paths.LogDir, "daily_report_*.log"))
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestSchedules(t *testing.T) {
	s, _ := newTestScheduler(t)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.jobs, 2)
	require.NoError(t, s.Schedule(JobLowStock, "0 30 6 * * *"))
	assert.Len(t, s.cronScheduler.Entries(), 2)

	assert.Error(t, s.Schedule("backup", "* * * * * *"))
	assert.Error(t, s.Schedule(JobDailyReport, "not a schedule"))
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.cfg.Jobs.LowStockSchedule = "every morning"
	assert.ErrorContains(t, s.Start(), "low_stock")
}
