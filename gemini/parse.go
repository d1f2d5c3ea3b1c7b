package gemini

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// markdownCodeBlock matches a response wrapped in ``` or ```json fences.
var markdownCodeBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ---------------------------------------------------------------------------
// Response envelope
// ---------------------------------------------------------------------------

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// candidateText extracts the generated text from a 2xx response body. When
// the result set is empty or blocked, ok is false and reason carries the
// block reason reported by the API (or a generic one).
func candidateText(body []byte) (text, reason string, ok bool) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "unreadable response", false
	}
	if len(resp.Candidates) == 0 {
		reason = resp.PromptFeedback.BlockReason
		if reason == "" {
			reason = "no candidates returned"
		}
		return "", reason, false
	}
	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		reason = resp.Candidates[0].FinishReason
		if reason == "" {
			reason = "empty candidate"
		}
		return "", reason, false
	}
	return parts[0].Text, "", true
}

// apiErrorMessage pulls the message out of a structured non-2xx error body,
// falling back to a trimmed copy of the raw body.
func apiErrorMessage(body []byte) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "unknown error"
	}
	return truncate(msg, 200)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ---------------------------------------------------------------------------
// Translation array parsing
// ---------------------------------------------------------------------------

// ParseTranslations extracts the JSON array of translated strings from the
// model's output. Real model outputs are observed to wrap arrays in
// explanatory text or code fences, so parsing is a two-step fallback chain:
//
//  1. strip any surrounding code fence and parse the whole content as a JSON
//     array; when exactly one text was sent, a bare JSON string is also
//     accepted and wrapped into a single-element array;
//  2. extract the first bracket-delimited substring (greedy) and parse that.
//
// If both steps fail, an error is returned and the caller fails the whole
// batch — a batch whose overall response cannot be parsed never partially
// succeeds.
func ParseTranslations(content string, expected int) ([]string, error) {
	content = strings.TrimSpace(content)

	if m := markdownCodeBlock.FindStringSubmatch(content); len(m) > 1 {
		content = m[1]
	}

	var translations []string
	if err := json.Unmarshal([]byte(content), &translations); err == nil {
		return translations, nil
	}

	if expected == 1 {
		var single string
		if err := json.Unmarshal([]byte(content), &single); err == nil {
			return []string{single}, nil
		}
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &translations); err == nil {
			return translations, nil
		}
	}

	return nil, fmt.Errorf("no JSON array of translations in response (expected %d entries)", expected)
}
