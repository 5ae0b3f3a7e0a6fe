package CronJobs

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"CafePOS/Config"
	"CafePOS/Inventory"
	"CafePOS/Reports"
	"CafePOS/email"
)

// ReportScheduler runs the low stock check and the daily sales report.
type ReportScheduler struct {
	cronScheduler *cron.Cron
	db            *gorm.DB
	cfg           *Config.Config
	jobs          map[string]cron.EntryID
	now           func() time.Time
	send          func(Config.MailConfig, email.Message) error
}

const (
	JobDailyReport = "daily_report"
	JobLowStock    = "low_stock"
)

func NewReportScheduler(db *gorm.DB, cfg *Config.Config) *ReportScheduler {
	return &ReportScheduler{
		cronScheduler: cron.New(cron.WithSeconds()),
		db:            db,
		cfg:           cfg,
		jobs:          make(map[string]cron.EntryID),
		now:           time.Now,
		send:          email.SendEmail,
	}
}

func (s *ReportScheduler) task(name string) func() {
	switch name {
	case JobDailyReport:
		return func() {
			log.Println("Running scheduled daily sales report")
			if _, err := s.RunDailyReport(s.now().AddDate(0, 0, -1)); err != nil {
				log.Printf("Error in daily report: %v\n", err)
			}
		}
	case JobLowStock:
		return func() {
			log.Println("Running scheduled low stock check")
			if _, err := s.RunLowStockCheck(); err != nil {
				log.Printf("Error in low stock check: %v\n", err)
			}
		}
	}
	return nil
}

// Start registers both jobs on their configured schedules.
func (s *ReportScheduler) Start() error {
	schedules := map[string]string{
		JobDailyReport: s.cfg.Jobs.DailyReportSchedule,
		JobLowStock:    s.cfg.Jobs.LowStockSchedule,
	}
	for name, schedule := range schedules {
		if err := s.Schedule(name, schedule); err != nil {
			return err
		}
	}

	s.cronScheduler.Start()
	log.Printf("Report scheduler started: daily report %q, low stock %q\n",
		s.cfg.Jobs.DailyReportSchedule, s.cfg.Jobs.LowStockSchedule)
	return nil
}

func (s *ReportScheduler) Stop() {
	if s.cronScheduler != nil {
		<-s.cronScheduler.Stop().Done()
		log.Println("Report scheduler stopped")
	}
}

// Schedule registers a job on a cron expression (with seconds), replacing
// its previous schedule.
func (s *ReportScheduler) Schedule(name, schedule string) error {
	task := s.task(name)
	if task == nil {
		return fmt.Errorf("unknown job %q", name)
	}
	if id, ok := s.jobs[name]; ok {
		s.cronScheduler.Remove(id)
	}
	id, err := s.cronScheduler.AddFunc(schedule, task)
	if err != nil {
		return fmt.Errorf("error scheduling %s: %w", name, err)
	}
	s.jobs[name] = id
	return nil
}

// runLog opens a log file for a single job run, next to the request logs.
func (s *ReportScheduler) runLog(job string) (*log.Logger, func()) {
	dir := s.cfg.Paths.LogDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return log.New(os.Stderr, job+" ", log.LstdFlags), func() {}
	}
	name := fmt.Sprintf("%s_%s.log", job, s.now().Format("2006-01-02_15-04-05"))
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening run log file: %v\n", err)
		return log.New(os.Stderr, job+" ", log.LstdFlags), func() {}
	}
	return log.New(io.MultiWriter(file, os.Stderr), job+" ", log.LstdFlags), func() { file.Close() }
}

// RunLowStockCheck logs the ingredients under threshold and mails the list
// when mail is configured. It returns the names found.
func (s *ReportScheduler) RunLowStockCheck() ([]string, error) {
	logger, closeLog := s.runLog(JobLowStock)
	defer closeLog()

	low, err := Inventory.LowStock(s.db, s.cfg.Store.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	if len(low) == 0 {
		logger.Println("No ingredients below threshold")
		return nil, nil
	}

	var names, lines []string
	for _, ing := range low {
		names = append(names, ing.Name)
		lines = append(lines, fmt.Sprintf("- %s: %g %s", ing.Name, ing.Stock, ing.Unit))
	}
	logger.Printf("%d ingredients below threshold:\n%s", len(low), strings.Join(lines, "\n"))

	if s.cfg.Mail.Enabled() {
		err := s.send(s.cfg.Mail, email.Message{
			To:      s.cfg.Mail.ReportRecipients,
			Subject: fmt.Sprintf("%s: %d ingredients low on stock", s.cfg.Store.Name, len(low)),
			Body:    strings.Join(lines, "\n"),
		})
		if err != nil {
			logger.Printf("Error sending low stock mail: %v", err)
			return names, err
		}
	}
	return names, nil
}

// RunDailyReport exports the sales of one day to the export directory and
// mails it when mail is configured. It returns the written file path.
func (s *ReportScheduler) RunDailyReport(day time.Time) (string, error) {
	logger, closeLog := s.runLog(JobDailyReport)
	defer closeLog()

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)
	summary, err := Reports.Sales(s.db, Reports.SalesFilter{From: from, To: to})
	if err != nil {
		return "", err
	}

	buf, err := summary.Table().WriteXLSX()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.cfg.Paths.ExportDir, 0755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("sales_%s.xlsx", from.Format("2006-01-02"))
	path := filepath.Join(s.cfg.Paths.ExportDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	logger.Printf("Sales report for %s written to %s (%d transactions, revenue %s)",
		from.Format("2006-01-02"), path, summary.Transactions, Reports.FormatRupiah(summary.Revenue))

	if s.cfg.Mail.Enabled() {
		err := s.send(s.cfg.Mail, email.Message{
			To:          s.cfg.Mail.ReportRecipients,
			Subject:     fmt.Sprintf("%s sales %s", s.cfg.Store.Name, from.Format("2006-01-02")),
			Body:        summary.ShareText(s.cfg.Store.Name),
			Attachments: []email.Attachment{{Name: name, Content: buf.Bytes()}},
		})
		if err != nil {
			logger.Printf("Error sending report mail: %v", err)
			return path, err
		}
	}
	return path, nil
}
