package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"MAILMUSE_BACK-END/internal/models"
	"MAILMUSE_BACK-END/internal/profile"
)

// ParseCampaignJSON reconciles a loosely-typed generation payload into an
// ordered email list. It tolerates markdown fences, a bare top-level array,
// alternate field names, and string day offsets. Emails with no subject and
// no body are dropped. It fails only when no usable email remains.
func ParseCampaignJSON(data []byte) ([]models.Email, error) {
	text := profile.StripFences(string(data))

	var items []interface{}

	// Either {"emails": [...]} (possibly under an alias) or a bare array
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text), &obj); err == nil {
		items = emailList(obj)
	} else if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("campaign payload is not JSON: %w", err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("campaign payload contains no emails")
	}

	emails := make([]models.Email, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		email := models.Email{
			Day:     dayOffset(m),
			Subject: stringField(m, "subject", "subject_line", "subjectLine", "title"),
			Preview: stringField(m, "preview", "preview_text", "previewText", "preheader"),
			Body:    stringField(m, "body", "content", "text"),
			Status:  models.EmailStatusDraft,
		}
		if email.Subject == "" && email.Body == "" {
			continue
		}
		emails = append(emails, email)
	}

	if len(emails) == 0 {
		return nil, fmt.Errorf("campaign payload contains no usable emails")
	}
	return emails, nil
}

func emailList(obj map[string]interface{}) []interface{} {
	for _, key := range []string{"emails", "sequence", "messages"} {
		if list, ok := obj[key].([]interface{}); ok {
			return list
		}
	}
	// Some payloads nest the list under "campaign"
	if inner, ok := obj["campaign"].(map[string]interface{}); ok {
		return emailList(inner)
	}
	return nil
}

func stringField(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func dayOffset(m map[string]interface{}) int {
	for _, k := range []string{"day", "day_offset", "dayOffset", "send_day", "sendDay"} {
		switch v := m[k].(type) {
		case float64:
			if v >= 0 {
				return int(v)
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
				return n
			}
		}
	}
	return 0
}
