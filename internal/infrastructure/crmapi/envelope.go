package crmapi

import (
	"bytes"
	"encoding/json"
)

// Page is a list response after envelope normalization.
type Page[T any] struct {
	Items   []T
	Skipped int
}

// DecodePage accepts a bare JSON array or an object with a "results"
// array. Any other body is an empty page. Records that fail to decode are
// counted in Skipped and dropped.
func DecodePage[T any](body []byte) Page[T] {
	page := Page[T]{Items: []T{}}

	raw := listPayload(body)
	if raw == nil {
		return page
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return page
	}

	for _, rec := range records {
		var item T
		if err := json.Unmarshal(rec, &item); err != nil {
			page.Skipped++
			continue
		}
		page.Items = append(page.Items, item)
	}
	return page
}

func listPayload(body []byte) []byte {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	switch body[0] {
	case '[':
		return body
	case '{':
		var envelope struct {
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil
		}
		results := bytes.TrimSpace(envelope.Results)
		if len(results) == 0 || results[0] != '[' {
			return nil
		}
		return results
	}
	return nil
}
