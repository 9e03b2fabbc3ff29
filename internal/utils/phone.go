package utils

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// whatsAppBaseURL is the click-to-chat endpoint
const whatsAppBaseURL = "https://wa.me/"

// NormalizePhone parses a phone number typed in any format and returns it in
// E.164. Numbers without a country code are parsed in defaultRegion.
// Blank input returns an empty string and no error.
func NormalizePhone(phoneString, defaultRegion string) (string, error) {
	cleanPhone := strings.TrimSpace(phoneString)
	if cleanPhone == "" {
		return "", nil
	}

	num, err := phonenumbers.Parse(cleanPhone, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", phoneString)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// WhatsAppLink builds a click-to-chat link for the phone, optionally with a
// prefilled message. It returns an empty string when the phone has no digits.
func WhatsAppLink(phone, message string) string {
	digits := digitsOnly(phone)
	if digits == "" {
		return ""
	}

	link := whatsAppBaseURL + digits
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}
