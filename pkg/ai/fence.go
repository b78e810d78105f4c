package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const fence = "```"

var embeddedFence = regexp.MustCompile("(?s)```[A-Za-z0-9_-]*[ \t]*\r?\n(.*?)\r?\n[ \t]*```")

// ExtractJSON strips one optional code fence around the oracle's reply.
// A reply that opens with a fence loses only its first line and the last
// closing fence. Otherwise the trimmed text is used when it is already JSON,
// and an embedded fenced block is the last resort.
func ExtractJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, fence) {
		body := trimmed[len(fence):]
		if newline := strings.IndexByte(body, '\n'); newline >= 0 {
			body = body[newline+1:]
		} else {
			body = strings.TrimLeft(body, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
		}
		if end := strings.LastIndex(body, fence); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed
	}
	if match := embeddedFence.FindStringSubmatch(trimmed); match != nil {
		return strings.TrimSpace(match[1])
	}
	return trimmed
}

// decodeOracleText turns the oracle's reply into an untyped JSON value.
func decodeOracleText(text string) (any, error) {
	body := ExtractJSON(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}

	var raw any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return raw, nil
}

func marshalPayload(payload ProfilePayload) (string, error) {
	if payload.Activities == nil {
		payload.Activities = []ActivityPayload{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode profile payload: %w", err)
	}
	return string(encoded), nil
}
