package Whatsapp

import (
	"net/url"
	"strings"

	"CafePOS/Models"
)

const baseURL = "https://wa.me/"

// NormalizePhone turns a local or international number into the digits
// wa.me expects. Indonesian numbers starting with 0 get the 62 prefix.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.NewReplacer("+", "", " ", "", "-", "", "(", "", ")", "", ".", "").Replace(strings.TrimSpace(phone))
	if cleaned == "" {
		return "", nil
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", Models.Invalidf("phone number %q contains invalid characters", phone)
		}
	}
	if strings.HasPrefix(cleaned, "0") {
		cleaned = "62" + strings.TrimPrefix(cleaned, "0")
	}
	if len(cleaned) < 8 || len(cleaned) > 15 {
		return "", Models.Invalidf("phone number %q must have 8 to 15 digits", phone)
	}
	return cleaned, nil
}

// BuildLink returns a wa.me link that opens a chat with the text filled in.
// Without a phone number WhatsApp lets the user pick the contact.
func BuildLink(phone, text string) (string, error) {
	digits, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	link := baseURL + digits
	if text != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link, nil
}
