package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
)

// LoggerConfig controls what the request logger records
type LoggerConfig struct {
	EnableColors   bool
	LogRequestBody bool
	MaxBodySize    int64
	SkipPaths      []string
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		EnableColors:   true,
		LogRequestBody: true,
		MaxBodySize:    2048, // 2KB limit
		SkipPaths:      []string{"/health", "/metrics", "/ping"},
	}
}

func Logger() gin.HandlerFunc {
	return LoggerWithConfig(DefaultLoggerConfig())
}

func LoggerWithConfig(config LoggerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		for _, skipPath := range config.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		method := c.Request.Method
		ip := c.ClientIP()
		query := c.Request.URL.RawQuery
		contentType := c.GetHeader("Content-Type")

		// Read and restore request body with a size limit
		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil && c.Request.ContentLength > 0 {
			if c.Request.ContentLength > config.MaxBodySize {
				requestBody = "[Request body too large to log]"
			} else {
				bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodySize))
				if err == nil {
					c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
					requestBody = sanitizeBody(string(bodyBytes), contentType)
				}
			}
		}

		var methodColor, resetColor string
		if config.EnableColors {
			methodColor = getMethodColor(method)
			resetColor = colorReset
		}

		log.Printf("%s→%s %s%s%s %s%s%s  ip=%s", colorCyan, resetColor,
			methodColor, method, resetColor, colorBlue, path, resetColor, ip)
		if query != "" {
			log.Printf("%s    query:%s %s", colorGray, resetColor, truncateString(query, 100))
		}
		if requestBody != "" {
			log.Printf("%s    body:%s %s", colorGray, resetColor, requestBody)
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		userID := c.GetString("userID")

		var statusColor string
		if config.EnableColors {
			statusColor = getStatusColor(status)
		}

		log.Printf("%s←%s %s%d%s %s%s%s %s%s%s %stime=%v size=%dB%s",
			statusColor, resetColor,
			statusColor, status, resetColor,
			methodColor, method, resetColor,
			colorBlue, path, resetColor,
			colorGray, latency, c.Writer.Size(), resetColor)
		if userID != "" {
			log.Printf("%s    user:%s %s", colorGray, resetColor, userID)
		}
	}
}

func getMethodColor(method string) string {
	switch method {
	case "GET":
		return colorGreen
	case "POST":
		return colorBlue
	case "PUT":
		return colorYellow
	case "DELETE":
		return colorRed
	default:
		return colorWhite
	}
}

func getStatusColor(status int) string {
	switch {
	case status >= 200 && status < 300:
		return colorGreen
	case status >= 300 && status < 400:
		return colorCyan
	case status >= 400 && status < 500:
		return colorYellow
	case status >= 500:
		return colorRed
	default:
		return colorWhite
	}
}

func sanitizeBody(body, contentType string) string {
	if len(body) == 0 {
		return ""
	}

	if strings.Contains(contentType, "application/json") {
		var jsonData interface{}
		if json.Unmarshal([]byte(body), &jsonData) == nil {
			sanitized := hideSensitiveFields(jsonData)
			if formatted, err := json.Marshal(sanitized); err == nil {
				return truncateString(string(formatted), 200)
			}
		}
	}

	if strings.Contains(contentType, "multipart/form-data") {
		return "[multipart form data]"
	}

	return truncateString(body, 200)
}

func hideSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{})
		for key, value := range v {
			if isSensitiveField(strings.ToLower(key)) {
				result[key] = "********"
			} else {
				result[key] = hideSensitiveFields(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = hideSensitiveFields(item)
		}
		return result
	default:
		return v
	}
}

func isSensitiveField(field string) bool {
	sensitive := []string{"password", "token", "secret", "key", "auth", "credential"}
	for _, s := range sensitive {
		if strings.Contains(field, s) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
