package Controllers

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/exp/slices"

	"CafePOS/middleware"
)

// LogController serves the request logs written by the logging middleware.
type LogController struct {
	Dir string
}

func NewLogController(dir string) *LogController {
	return &LogController{Dir: dir}
}

// LogGroup collects the requests to one route.
type LogGroup struct {
	Method      string               `json:"method"`
	Path        string               `json:"path"`
	Count       int                  `json:"count"`
	AvgLatency  float64              `json:"avg_latency_ms"`
	MinLatency  float64              `json:"min_latency_ms"`
	MaxLatency  float64              `json:"max_latency_ms"`
	SuccessRate float64              `json:"success_rate"`
	Logs        []middleware.LogData `json:"logs"`
}

type LogsResponse struct {
	Groups      []LogGroup `json:"groups"`
	TotalLogs   int        `json:"total_logs"`
	TotalGroups int        `json:"total_groups"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
}

type logFilter struct {
	from, to time.Time
	path     string
	method   string
	status   int
	username string
}

func (f logFilter) match(entry middleware.LogData) bool {
	if !f.from.IsZero() && entry.Timestamp.Before(f.from) {
		return false
	}
	if !f.to.IsZero() && !entry.Timestamp.Before(f.to) {
		return false
	}
	if f.path != "" && !strings.Contains(strings.ToLower(entry.Path), strings.ToLower(f.path)) {
		return false
	}
	if f.method != "" && !strings.EqualFold(entry.Method, f.method) {
		return false
	}
	if f.status != 0 && entry.Status != f.status {
		return false
	}
	if f.username != "" && !strings.EqualFold(entry.Username, f.username) {
		return false
	}
	return true
}

func (c *LogController) filter(ctx *fiber.Ctx) (logFilter, error) {
	from, to, err := parseRange(ctx)
	if err != nil {
		return logFilter{}, err
	}
	if from.IsZero() && to.IsZero() {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return logFilter{
		from:     from,
		to:       to,
		path:     ctx.Query("path"),
		method:   ctx.Query("method"),
		status:   ctx.QueryInt("status", 0),
		username: ctx.Query("username"),
	}, nil
}

// read returns the matching lines of requests.log, or errors.log when
// ?file=errors. Lines that are not JSON are skipped.
func (c *LogController) read(ctx *fiber.Ctx, f logFilter) ([]middleware.LogData, error) {
	name := "requests.log"
	if ctx.Query("file") == "errors" {
		name = "errors.log"
	}
	file, err := os.Open(filepath.Join(c.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []middleware.LogData
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry middleware.LogData
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if f.match(entry) {
			entries = append(entries, entry)
		}
	}
	return entries, scanner.Err()
}

func milliseconds(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func groupByRoute(entries []middleware.LogData) []LogGroup {
	index := make(map[string]int)
	var groups []LogGroup
	successes := make(map[string]int)

	for _, entry := range entries {
		key := entry.Method + " " + entry.Path
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LogGroup{Method: entry.Method, Path: entry.Path, MinLatency: milliseconds(entry.Latency)})
		}
		g := &groups[i]
		latency := milliseconds(entry.Latency)
		g.Count++
		g.Logs = append(g.Logs, entry)
		g.AvgLatency += (latency - g.AvgLatency) / float64(g.Count)
		if latency < g.MinLatency {
			g.MinLatency = latency
		}
		if latency > g.MaxLatency {
			g.MaxLatency = latency
		}
		if entry.Status < fiber.StatusBadRequest {
			successes[key]++
		}
	}
	for i := range groups {
		groups[i].SuccessRate = float64(successes[groups[i].Method+" "+groups[i].Path]) / float64(groups[i].Count) * 100
	}

	slices.SortFunc(groups, func(a, b LogGroup) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Path, b.Path)
	})
	return groups
}

// GetLogs lists requests grouped by route, busiest first. Defaults to today.
func (c *LogController) GetLogs(ctx *fiber.Ctx) error {
	f, err := c.filter(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	entries, err := c.read(ctx, f)
	if err != nil {
		return respondError(ctx, err)
	}

	page := ctx.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := ctx.QueryInt("page_size", 50)
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 50
	}

	groups := groupByRoute(entries)
	start := (page - 1) * pageSize
	if start > len(groups) {
		start = len(groups)
	}
	end := start + pageSize
	if end > len(groups) {
		end = len(groups)
	}

	return ctx.JSON(LogsResponse{
		Groups:      groups[start:end],
		TotalLogs:   len(entries),
		TotalGroups: len(groups),
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  (len(groups) + pageSize - 1) / pageSize,
	})
}

// GetLogStats summarises request counts, latency and the busiest paths.
func (c *LogController) GetLogStats(ctx *fiber.Ctx) error {
	f, err := c.filter(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	entries, err := c.read(ctx, f)
	if err != nil {
		return respondError(ctx, err)
	}

	var successful, failed int
	var total, min, max time.Duration
	methods := make(map[string]int)
	statuses := make(map[int]int)
	users := make(map[string]int)
	for i, entry := range entries {
		if entry.Status < fiber.StatusBadRequest {
			successful++
		} else {
			failed++
		}
		total += entry.Latency
		if i == 0 || entry.Latency < min {
			min = entry.Latency
		}
		if entry.Latency > max {
			max = entry.Latency
		}
		methods[entry.Method]++
		statuses[entry.Status]++
		if entry.Username != "" {
			users[entry.Username]++
		}
	}

	var avg time.Duration
	var successRate float64
	if len(entries) > 0 {
		avg = total / time.Duration(len(entries))
		successRate = float64(successful) / float64(len(entries)) * 100
	}

	type pathCount struct {
		Path  string `json:"path"`
		Count int    `json:"count"`
	}
	var topPaths []pathCount
	for _, g := range groupByRoute(entries) {
		topPaths = append(topPaths, pathCount{Path: g.Method + " " + g.Path, Count: g.Count})
	}
	if len(topPaths) > 10 {
		topPaths = topPaths[:10]
	}

	return ctx.JSON(fiber.Map{
		"total_requests":      len(entries),
		"successful_requests": successful,
		"error_requests":      failed,
		"success_rate":        successRate,
		"avg_latency_ms":      milliseconds(avg),
		"min_latency_ms":      milliseconds(min),
		"max_latency_ms":      milliseconds(max),
		"method_stats":        methods,
		"status_stats":        statuses,
		"user_stats":          users,
		"top_paths":           topPaths,
	})
}
