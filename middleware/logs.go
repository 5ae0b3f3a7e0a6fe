package middleware

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	// Write every line to the standard logger as well
	Console bool
	// Directory holding requests.log and errors.log, empty disables files
	Dir string
	// Include the JSON request body for writes
	IncludeBody bool
	SkipPaths   []string
}

// LogData is one request line in requests.log and errors.log.
type LogData struct {
	Timestamp     time.Time     `json:"timestamp"`
	RequestID     string        `json:"request_id"`
	Method        string        `json:"method"`
	Path          string        `json:"path"`
	URL           string        `json:"url"`
	Status        int           `json:"status"`
	Latency       time.Duration `json:"latency"`
	IP            string        `json:"ip"`
	UserAgent     string        `json:"user_agent"`
	RequestBody   interface{}   `json:"request_body,omitempty"`
	Error         string        `json:"error,omitempty"`
	UserID        uint          `json:"user_id,omitempty"`
	Username      string        `json:"username,omitempty"`
	Role          string        `json:"role,omitempty"`
	ContentLength int           `json:"content_length"`
}

func DefaultLogConfig(dir string) LogConfig {
	return LogConfig{
		Console:   true,
		Dir:       dir,
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// RequestID stores an X-Request-ID on every request, generating one when the
// client did not send it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("request_id", id)
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	}
}

// LoggingMiddleware writes a JSON line per request to requests.log, and a
// second copy of failed requests to errors.log.
func LoggingMiddleware(cfg LogConfig) fiber.Handler {
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			log.Printf("Error creating logs directory: %v\n", err)
		}
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *fiber.Ctx) error {
		if skip[c.Path()] {
			return c.Next()
		}
		start := time.Now()

		var requestBody interface{}
		if cfg.IncludeBody && c.Method() != fiber.MethodGet {
			var parsed interface{}
			if err := json.Unmarshal(c.Body(), &parsed); err == nil {
				requestBody = parsed
			}
		}

		err := c.Next()

		data := LogData{
			Timestamp:     start,
			Method:        c.Method(),
			Path:          c.Path(),
			URL:           c.OriginalURL(),
			Status:        c.Response().StatusCode(),
			Latency:       time.Since(start),
			IP:            c.IP(),
			UserAgent:     c.Get(fiber.HeaderUserAgent),
			RequestBody:   requestBody,
			ContentLength: len(c.Response().Body()),
		}
		if id, ok := c.Locals("request_id").(string); ok {
			data.RequestID = id
		}
		if user, ok := CurrentUser(c); ok {
			data.UserID = user.ID
			data.Username = user.Name
			data.Role = string(user.Role)
		}
		if err != nil {
			data.Error = err.Error()
			if e, ok := err.(*fiber.Error); ok {
				data.Status = e.Code
			}
		}

		line, _ := json.Marshal(data)
		if cfg.Console {
			log.Println(string(line))
		}
		if cfg.Dir != "" {
			logToFile(filepath.Join(cfg.Dir, "requests.log"), string(line))
			if err != nil || data.Status >= fiber.StatusBadRequest {
				logToFile(filepath.Join(cfg.Dir, "errors.log"), string(line))
			}
		}
		return err
	}
}

var fileMu sync.Mutex

func logToFile(filePath, message string) {
	fileMu.Lock()
	defer fileMu.Unlock()

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, message); err != nil {
		log.Printf("Error writing to log file: %v\n", err)
	}
}
