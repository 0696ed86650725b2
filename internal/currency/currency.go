// Package currency holds the static currency reference list used by
// the listing form. The list never changes at runtime, so it lives in
// process memory rather than the database.
package currency

import "strings"

type Currency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Default is the preselected currency code.
const Default = "USD"

var currencies = []Currency{
	{Code: "USD", Name: "United States Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound Sterling", Symbol: "£"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "$"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "$"},
	{Code: "NZD", Name: "New Zealand Dollar", Symbol: "$"},
	{Code: "SEK", Name: "Swedish Krona", Symbol: "kr"},
	{Code: "NOK", Name: "Norwegian Krone", Symbol: "kr"},
	{Code: "DKK", Name: "Danish Krone", Symbol: "kr"},
	{Code: "PLN", Name: "Polish Zloty", Symbol: "zł"},
	{Code: "CZK", Name: "Czech Koruna", Symbol: "Kč"},
	{Code: "HUF", Name: "Hungarian Forint", Symbol: "Ft"},
	{Code: "TRY", Name: "Turkish Lira", Symbol: "₺"},
	{Code: "RUB", Name: "Russian Ruble", Symbol: "₽"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
	{Code: "BRL", Name: "Brazilian Real", Symbol: "R$"},
	{Code: "MXN", Name: "Mexican Peso", Symbol: "$"},
	{Code: "ARS", Name: "Argentine Peso", Symbol: "$"},
	{Code: "ZAR", Name: "South African Rand", Symbol: "R"},
	{Code: "NGN", Name: "Nigerian Naira", Symbol: "₦"},
	{Code: "KES", Name: "Kenyan Shilling", Symbol: "KSh"},
	{Code: "GHS", Name: "Ghanaian Cedi", Symbol: "₵"},
	{Code: "EGP", Name: "Egyptian Pound", Symbol: "£"},
	{Code: "AED", Name: "United Arab Emirates Dirham", Symbol: "د.إ"},
	{Code: "SAR", Name: "Saudi Riyal", Symbol: "﷼"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "$"},
	{Code: "HKD", Name: "Hong Kong Dollar", Symbol: "$"},
	{Code: "KRW", Name: "South Korean Won", Symbol: "₩"},
	{Code: "THB", Name: "Thai Baht", Symbol: "฿"},
	{Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp"},
	{Code: "PHP", Name: "Philippine Peso", Symbol: "₱"},
	{Code: "VND", Name: "Vietnamese Dong", Symbol: "₫"},
	{Code: "PKR", Name: "Pakistani Rupee", Symbol: "₨"},
	{Code: "BDT", Name: "Bangladeshi Taka", Symbol: "৳"},
	{Code: "KZT", Name: "Kazakhstani Tenge", Symbol: "₸"},
	{Code: "UAH", Name: "Ukrainian Hryvnia", Symbol: "₴"},
	{Code: "ILS", Name: "Israeli New Shekel", Symbol: "₪"},
}

// All returns the full reference list.
func All() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// Search filters the list by name or code, case-insensitive. An empty
// term returns everything.
func Search(term string) []Currency {
	if term == "" {
		return All()
	}
	t := strings.ToLower(term)
	out := []Currency{}
	for _, c := range currencies {
		if strings.Contains(strings.ToLower(c.Name), t) ||
			strings.Contains(strings.ToLower(c.Code), t) {
			out = append(out, c)
		}
	}
	return out
}

// Valid reports whether code is a known currency code.
func Valid(code string) bool {
	for _, c := range currencies {
		if c.Code == code {
			return true
		}
	}
	return false
}
