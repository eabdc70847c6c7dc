package service

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"pethotel/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CardInput is the raw card data entered at checkout.
type CardInput struct {
	Number string
	Holder string
	Expiry string // MM/YY
	CVV    string
}

// Last4 returns the last four digits of the card number.
func (c CardInput) Last4() string {
	digits := stripSpaces(c.Number)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// ValidateCardNumber reports whether the number, ignoring whitespace,
// is 13 to 19 digits and passes the Luhn checksum.
func ValidateCardNumber(number string) bool {
	digits := stripSpaces(number)
	if len(digits) < 13 || len(digits) > 19 || !isDigits(digits) {
		return false
	}
	return luhnValid(digits)
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateCard checks every card field and aggregates the problems.
func ValidateCard(card CardInput, now time.Time) error {
	ie := newInputError()

	if !ValidateCardNumber(card.Number) {
		ie.addError("card_number", "card number is invalid")
	}

	if !validHolderName(card.Holder) {
		ie.addError("card_holder", "holder name must be at least 3 letters")
	}

	if err := validateExpiry(card.Expiry, now); err != nil {
		if errors.Is(err, ErrCardExpired) {
			ie.addError("expiry", "card has expired")
			ie.cause = ErrCardExpired
		} else {
			ie.addError("expiry", "expiry must be MM/YY")
		}
	}

	if n := len(card.CVV); n < 3 || n > 4 || !isDigits(card.CVV) {
		ie.addError("cvv", "cvv must be 3 or 4 digits")
	}

	return ie.orNil()
}

func validHolderName(name string) bool {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < 3 {
		return false
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' {
			return false
		}
	}
	return true
}

var errBadExpiry = errors.New("malformed expiry")

func validateExpiry(expiry string, now time.Time) error {
	mm, yy, ok := strings.Cut(strings.TrimSpace(expiry), "/")
	if !ok || len(mm) != 2 || len(yy) != 2 || !isDigits(mm) || !isDigits(yy) {
		return errBadExpiry
	}

	month, _ := strconv.Atoi(mm)
	year, _ := strconv.Atoi(yy)
	if month < 1 || month > 12 {
		return errBadExpiry
	}

	curYear, curMonth := now.Year()%100, int(now.Month())
	if year < curYear || (year == curYear && month < curMonth) {
		return ErrCardExpired
	}
	return nil
}

// ValidateGuestInfo checks the contact details of a guest checkout.
func ValidateGuestInfo(info domain.GuestInfo) error {
	ie := newInputError()

	if strings.TrimSpace(info.Name) == "" {
		ie.addError("name", "name is required")
	}

	if !emailPattern.MatchString(info.Email) {
		ie.addError("email", "email is invalid")
	}

	if len(normalizePhone(info.Phone)) != 10 || !isDigits(normalizePhone(info.Phone)) {
		ie.addError("phone", "phone must have 10 digits")
	}

	return ie.orNil()
}

// ValidateInvoice checks the fields of an invoice variant.
func ValidateInvoice(invoice domain.InvoiceInfo) error {
	ie := newInputError()

	switch inv := invoice.(type) {
	case domain.IndividualInvoice:
		if strings.TrimSpace(inv.Name) == "" {
			ie.addError("invoice.name", "name is required")
		}
		if strings.TrimSpace(inv.Surname) == "" {
			ie.addError("invoice.surname", "surname is required")
		}
		if len(inv.NationalID) != 11 || !isDigits(inv.NationalID) {
			ie.addError("invoice.national_id", "national id must have 11 digits")
		}
	case domain.CorporateInvoice:
		if strings.TrimSpace(inv.CompanyName) == "" {
			ie.addError("invoice.company_name", "company name is required")
		}
		if len(inv.TaxID) != 10 || !isDigits(inv.TaxID) {
			ie.addError("invoice.tax_id", "tax id must have 10 digits")
		}
		if strings.TrimSpace(inv.Address) == "" {
			ie.addError("invoice.address", "address is required")
		}
	case nil:
		ie.addError("invoice", "invoice details are required")
	default:
		ie.addError("invoice", "unsupported invoice type")
	}

	return ie.orNil()
}

// normalizePhone drops the separators people commonly type.
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, phone)
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
