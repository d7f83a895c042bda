package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Requirement names the external collaborators a command talks to.
type Requirement int

const (
	NeedWeaviate Requirement = 1 << iota
	NeedUnstructured
	NeedVapi
)

// Validate checks the sections a command needs. Sections the command does
// not use are ignored so that, for example, "check vapi" works without a
// Weaviate URL.
func (c *Config) Validate(need Requirement) []ValidationError {
	var errors []ValidationError

	if need&NeedWeaviate != 0 {
		if c.Weaviate.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "weaviate.url",
				Message: "Weaviate URL is required (set WEAVIATE_URL)",
			})
		} else if !validHTTPURL(c.Weaviate.Host) {
			errors = append(errors, ValidationError{
				Field:   "weaviate.url",
				Message: "invalid Weaviate URL",
			})
		}
		if c.Weaviate.Class == "" {
			errors = append(errors, ValidationError{
				Field:   "weaviate.class",
				Message: "class name is required",
			})
		}
		if mode := c.Weaviate.SearchMode; mode != "like" && mode != "near_text" {
			errors = append(errors, ValidationError{
				Field:   "weaviate.search_mode",
				Message: fmt.Sprintf("unknown search mode %q (want like or near_text)", mode),
			})
		}
	}

	if need&NeedUnstructured != 0 {
		if c.Unstructured.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "unstructured.api_key",
				Message: "Unstructured API key is required (set UNSTRUCTURED_API_KEY)",
			})
		}
		if !validHTTPURL(c.Unstructured.URL) {
			errors = append(errors, ValidationError{
				Field:   "unstructured.url",
				Message: "invalid Unstructured API URL",
			})
		}
		switch c.Unstructured.Strategy {
		case "fast", "hi_res", "auto", "ocr_only":
		default:
			errors = append(errors, ValidationError{
				Field:   "unstructured.strategy",
				Message: fmt.Sprintf("unknown strategy %q", c.Unstructured.Strategy),
			})
		}
		if c.Unstructured.MaxCharacters < 0 || c.Unstructured.NewAfterNChars < 0 || c.Unstructured.Overlap < 0 {
			errors = append(errors, ValidationError{
				Field:   "unstructured",
				Message: "chunk sizes must be non-negative",
			})
		}
		if c.Unstructured.MaxCharacters > 0 && c.Unstructured.Overlap >= c.Unstructured.MaxCharacters {
			errors = append(errors, ValidationError{
				Field:   "unstructured.overlap",
				Message: "overlap must be less than max_characters",
			})
		}
	}

	if need&NeedVapi != 0 {
		if c.Vapi.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "vapi.api_key",
				Message: "Vapi API key is required (set VAPI_API_KEY)",
			})
		}
		if !validHTTPURL(c.Vapi.BaseURL) {
			errors = append(errors, ValidationError{
				Field:   "vapi.base_url",
				Message: "invalid Vapi base URL",
			})
		}
	}

	if c.Ingest.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "ingest.batch_size",
			Message: "batch_size must be positive",
		})
	}
	if c.Ingest.Limit < 0 {
		errors = append(errors, ValidationError{
			Field:   "ingest.limit",
			Message: "limit must be zero (no cap) or positive",
		})
	}
	for _, ext := range c.Ingest.SkipExtensions {
		if !strings.HasPrefix(ext, ".") {
			errors = append(errors, ValidationError{
				Field:   "ingest.skip_extensions",
				Message: fmt.Sprintf("invalid extension format: %s", ext),
			})
		}
	}

	return errors
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
