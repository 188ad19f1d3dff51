package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes
func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	if slug == "" {
		slug = "item"
	}
	return slug
}

// UniqueSlug appends a short random suffix to the slug of s
func UniqueSlug(s string) string {
	return Slugify(s) + "-" + shortID()
}

// GenerateCertificateNumber returns a number like EDU-20260116-1a2b3c4d
func GenerateCertificateNumber(at time.Time) string {
	return fmt.Sprintf("EDU-%s-%s", at.UTC().Format("20060102"), shortID())
}

// FormatAmount renders an amount in the smallest currency unit, e.g. 1999 usd -> "19.99 USD"
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// GenerateOTP returns a random 6 digit code
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
