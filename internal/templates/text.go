package templates

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	placeholderPattern = regexp.MustCompile(`(?i)\{\{\s*(name|username)\s*\}\}`)
	blockMarkupPattern = regexp.MustCompile(`(?i)<\s*(p|div|br|h[1-6]|ul|ol|li|table|blockquote|section|article|hr|pre)\b`)
	newlineReplacer    = strings.NewReplacer("\r\n", "<br>", "\n", "<br>", "\r", "<br>")
)

// Personalize replaces every {{name}} and {{username}} placeholder with name.
func Personalize(text, name string) string {
	return placeholderPattern.ReplaceAllLiteralString(text, name)
}

// HasBlockMarkup reports whether text already contains block-level HTML.
func HasBlockMarkup(text string) bool {
	return blockMarkupPattern.MatchString(text)
}

// FormatBody converts line breaks to <br> unless the author already wrote block-level markup.
func FormatBody(text string) string {
	if HasBlockMarkup(text) {
		return text
	}
	return newlineReplacer.Replace(text)
}

var transactionLabels = map[string]string{
	"deposit":        "Funds Added",
	"refund":         "Refund Issued",
	"submission_fee": "Submission Payment",
	"payment":        "Submission Payment",
	"earning":        "Earnings Credited",
	"earnings":       "Earnings Credited",
	"payout":         "Earnings Credited",
	"credit":         "Earnings Credited",
}

// TransactionLabel returns the receipt heading for a transaction type.
func TransactionLabel(txType string) string {
	key := strings.ToLower(strings.TrimSpace(txType))
	if label, ok := transactionLabels[key]; ok {
		return label
	}
	return Humanize(key)
}

// Humanize turns a snake_case status into Title Case words.
func Humanize(s string) string {
	words := strings.Fields(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
