package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"iamaudit/internal/domain"
)

// DecodePolicyDocument normalizes a policy document as returned by the
// directory authority into valid JSON text. Inline documents and policy
// versions come back URL-encoded; some responses additionally wrap the whole
// document in quotes. A document that is not valid JSON after decoding is an
// error so the caller can degrade the reference.
func DecodePolicyDocument(raw string) (string, error) {
	doc := strings.TrimSpace(raw)
	doc = strings.Trim(doc, `"`)

	if strings.HasPrefix(doc, "%") || (strings.Contains(doc, "%") && !strings.HasPrefix(doc, "{")) {
		decoded, err := url.QueryUnescape(doc)
		if err == nil {
			doc = decoded
		}
	}

	if !json.Valid([]byte(doc)) {
		return "", fmt.Errorf("policy document is not valid JSON after decoding")
	}
	return doc, nil
}

// PrettyPolicy re-indents a decoded policy document for display. Returns the
// input unchanged when it cannot be parsed.
func PrettyPolicy(doc string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(doc), "", "  "); err != nil {
		return doc
	}
	return buf.String()
}

// normalizeToList converts an IAM policy field that may be a string or a list
// of strings into a []string
func normalizeToList(value interface{}) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []interface{}:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return nil
	}
}

// extractCreatedBy pulls the creating principal out of an assume-role policy
// document (Statement[0].Principal.AWS). Returns Unknown when the document
// does not carry one.
func extractCreatedBy(assumeDoc string) string {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(assumeDoc), &doc); err != nil {
		return domain.Unknown
	}

	statements, ok := doc["Statement"].([]interface{})
	if !ok || len(statements) == 0 {
		return domain.Unknown
	}
	stmt, ok := statements[0].(map[string]interface{})
	if !ok {
		return domain.Unknown
	}
	principal, ok := stmt["Principal"].(map[string]interface{})
	if !ok {
		return domain.Unknown
	}

	if aws := normalizeToList(principal["AWS"]); len(aws) > 0 {
		return aws[0]
	}
	if svc := normalizeToList(principal["Service"]); len(svc) > 0 {
		return svc[0]
	}
	return domain.Unknown
}
