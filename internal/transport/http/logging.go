package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

const (
	requestBodyLogKey  = "http.request.body.summary"
	responseBodyLogKey = "http.response.body.summary"
	maxLoggedBody      = 2048
)

type accessLogEntry struct {
	Time      string `json:"time"`
	UserUUID  string `json:"user_uuid"`
	LatencyMS int64  `json:"latency_ms"`
	Request   struct {
		Method string `json:"method"`
		URI    string `json:"uri"`
		Body   any    `json:"body,omitempty"`
	} `json:"request"`
	Response struct {
		Status int    `json:"status"`
		Body   any    `json:"body,omitempty"`
		Error  string `json:"error,omitempty"`
	} `json:"response"`
}

// registerLogging emits one JSON line per request through the standard log
// package, which cmd wiring may mirror to Logstash. Bodies are captured via
// BodyDump and summarized with credentials redacted.
func registerLogging(e *echo.Echo) {
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := accessLogEntry{
				Time:      v.StartTime.Format(time.RFC3339),
				UserUUID:  "anonymous",
				LatencyMS: v.Latency.Milliseconds(),
			}
			if user, ok := c.Get(contextUserKey).(*domain.User); ok && user != nil {
				entry.UserUUID = user.ID.String()
			}

			entry.Request.Method = v.Method
			entry.Request.URI = v.URI
			entry.Request.Body = c.Get(requestBodyLogKey)

			entry.Response.Status = v.Status
			entry.Response.Body = c.Get(responseBodyLogKey)
			if v.Error != nil {
				entry.Response.Error = v.Error.Error()
			}

			buf, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			log.Println(string(buf))
			return nil
		},
	}))

	e.Use(middleware.BodyDump(func(c echo.Context, reqBody, resBody []byte) {
		if summary := summarizeBody(reqBody, c.Request().Header.Get(echo.HeaderContentType)); summary != nil {
			c.Set(requestBodyLogKey, summary)
		}
		if summary := summarizeBody(resBody, c.Response().Header().Get(echo.HeaderContentType)); summary != nil {
			c.Set(responseBodyLogKey, summary)
		}
	}))
}

// summarizeBody produces a log-safe rendering of a request or response body.
// The API speaks JSON and multipart form data; anything else is logged as an
// opaque marker.
func summarizeBody(body []byte, contentType string) any {
	if len(body) == 0 {
		return nil
	}

	lowered := strings.ToLower(strings.TrimSpace(contentType))
	if strings.HasPrefix(lowered, "multipart/form-data") {
		return summarizeMultipart(body, strings.TrimSpace(contentType))
	}

	if strings.HasPrefix(lowered, "application/json") || json.Valid(body) {
		var data any
		if err := json.Unmarshal(body, &data); err == nil {
			return truncateSummary(redactValue(data, ""))
		}
	}

	if isBinary(body) {
		return "binary"
	}
	return clampString(string(body))
}

// isSensitiveKey matches field names whose values must never reach the logs.
// Auth endpoints carry passwords, one-time codes, and bearer or Google ID
// tokens in their request and response bodies.
func isSensitiveKey(key string) bool {
	if strings.Contains(key, "password") || strings.Contains(key, "token") {
		return true
	}
	return key == "otp" || key == "code"
}

func redactValue(value any, keyHint string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, val := range v {
			lowerKey := strings.ToLower(key)
			if isSensitiveKey(lowerKey) {
				out[key] = "redacted"
				continue
			}
			out[key] = redactValue(val, lowerKey)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = redactValue(item, keyHint)
		}
		return out
	case string:
		return redactString(v, keyHint)
	default:
		return v
	}
}

func redactString(value, keyHint string) string {
	if keyHint != "" && isSensitiveKey(keyHint) {
		return "redacted"
	}
	if isBinary([]byte(value)) {
		return "binary"
	}
	return clampString(value)
}

// summarizeMultipart logs text fields and replaces file parts with a marker,
// so photo uploads never land in the log stream.
func summarizeMultipart(body []byte, contentType string) any {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		return "binary"
	}

	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	fields := make(map[string]any)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "binary"
		}

		name := part.FormName()
		if name == "" {
			_ = part.Close()
			continue
		}

		var value any = "file"
		if part.FileName() == "" {
			if data, err := io.ReadAll(part); err == nil {
				value = redactString(string(data), strings.ToLower(name))
			} else {
				value = "binary"
			}
		}
		_ = part.Close()

		switch existing := fields[name].(type) {
		case nil:
			fields[name] = value
		case []any:
			fields[name] = append(existing, value)
		default:
			fields[name] = []any{existing, value}
		}
	}

	if len(fields) == 0 {
		return "binary"
	}
	return truncateSummary(fields)
}

// truncateSummary keeps the serialized summary under maxLoggedBody. Oversized
// summaries are replaced with a size marker rather than partially emitted.
func truncateSummary(value any) any {
	if value == nil {
		return nil
	}
	buf, err := json.Marshal(value)
	if err != nil || len(buf) <= maxLoggedBody {
		return value
	}
	return map[string]any{"_truncated": true, "_bytes": len(buf)}
}

func isBinary(data []byte) bool {
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			return true
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
		data = data[size:]
	}
	return false
}

func clampString(value string) string {
	if len(value) <= maxLoggedBody {
		return value
	}
	truncated := value[:maxLoggedBody]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated + "...(truncated)"
}
