// Package validation collects per-field input errors so a response can
// enumerate every violation at once instead of failing on the first.
package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

const (
	MaxNameLength = 255
	MaxImageBytes = 2048 * 1024
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type Errors struct {
	fields []string
	byName map[string][]string
}

func NewErrors() *Errors {
	return &Errors{byName: make(map[string][]string)}
}

func (e *Errors) Add(field, message string) {
	if _, seen := e.byName[field]; !seen {
		e.fields = append(e.fields, field)
	}
	e.byName[field] = append(e.byName[field], message)
}

func (e *Errors) Any() bool {
	return len(e.byName) > 0
}

func (e *Errors) Fields() map[string][]string {
	return e.byName
}

// Message returns the first recorded error, with a count of the rest,
// matching what the mobile client shows in its toast.
func (e *Errors) Message() string {
	if !e.Any() {
		return ""
	}
	first := e.byName[e.fields[0]][0]
	extra := -1
	for _, msgs := range e.byName {
		extra += len(msgs)
	}
	if extra == 0 {
		return first
	}
	if extra == 1 {
		return first + " (and 1 more error)"
	}
	return fmt.Sprintf("%s (and %d more errors)", first, extra)
}

func (e *Errors) RequireString(field, value string, maxLen int) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, fmt.Sprintf("The %s field is required.", field))
		return
	}
	e.CheckString(field, value, maxLen)
}

func (e *Errors) CheckString(field, value string, maxLen int) {
	if maxLen > 0 && len(value) > maxLen {
		e.Add(field, fmt.Sprintf("The %s field must not be greater than %d characters.", field, maxLen))
	}
}

func (e *Errors) CheckMin(field string, value, min int) {
	if value < min {
		e.Add(field, fmt.Sprintf("The %s field must be at least %d.", field, min))
	}
}

func (e *Errors) CheckURL(field, value string) {
	u, err := url.ParseRequestURI(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		e.Add(field, fmt.Sprintf("The %s field must be a valid URL.", field))
	}
}

// CheckImage validates an upload's extension and size against the limits
// the clients were built for (jpg/jpeg/png, 2048 KB).
func (e *Errors) CheckImage(field, filename string, size int64) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExtensions[ext] {
		e.Add(field, fmt.Sprintf("The %s field must be a file of type: jpg, jpeg, png.", field))
	}
	if size > MaxImageBytes {
		e.Add(field, fmt.Sprintf("The %s field must not be greater than %d kilobytes.", field, MaxImageBytes/1024))
	}
}

// CheckStringList validates a non-empty list whose entries are all
// required and, when maxLen > 0, bounded.
func (e *Errors) CheckStringList(field string, values []string, maxLen int) {
	if len(values) == 0 {
		e.Add(field, fmt.Sprintf("The %s field must have at least 1 items.", field))
		return
	}
	for i, v := range values {
		entry := fmt.Sprintf("%s.%d", field, i)
		if strings.TrimSpace(v) == "" {
			e.Add(entry, fmt.Sprintf("The %s field is required.", entry))
			continue
		}
		if maxLen > 0 && len(v) > maxLen {
			e.Add(entry, fmt.Sprintf("The %s field must not be greater than %d characters.", entry, maxLen))
		}
	}
}

func (e *Errors) CheckEmail(field, value string) {
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 || !strings.Contains(value[at+1:], ".") {
		e.Add(field, fmt.Sprintf("The %s field must be a valid email address.", field))
	}
}
