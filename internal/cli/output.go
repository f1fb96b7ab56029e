package cli

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// money formats amounts in the configured display currency.
type money struct {
	code    string
	unit    currency.Unit
	known   bool
	printer *message.Printer
}

// localeForCurrency picks a home locale for digit grouping.
var localeForCurrency = map[string]language.Tag{
	"USD": language.AmericanEnglish,
	"EUR": language.German,
	"GBP": language.BritishEnglish,
	"SEK": language.Swedish,
	"NOK": language.Norwegian,
	"DKK": language.Danish,
	"CHF": language.German,
	"JPY": language.Japanese,
	"CAD": language.CanadianFrench,
	"AUD": language.MustParse("en-AU"),
	"INR": language.MustParse("en-IN"),
	"TRY": language.Turkish,
}

func newMoney(code string) money {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "USD"
	}

	unit, err := currency.ParseISO(code)
	m := money{code: code, unit: unit, known: err == nil}
	if !m.known {
		m.unit = currency.USD
	}

	tag, ok := localeForCurrency[code]
	if !ok {
		tag = language.English
	}
	m.printer = message.NewPrinter(tag)
	return m
}

func (m money) symbol() string {
	switch {
	case !m.known:
		return m.code
	case m.code == "SEK", m.code == "NOK", m.code == "DKK":
		return "kr"
	}
	return m.printer.Sprint(currency.NarrowSymbol(m.unit))
}

// x/text does not expose CLDR symbol placement, so prefix currencies are listed.
func (m money) prefix() bool {
	switch m.code {
	case "USD", "GBP", "JPY", "CAD", "AUD", "INR":
		return true
	}
	return false
}

// Format renders an amount with two fraction digits and the currency symbol.
func (m money) Format(amount float64) string {
	formatted := m.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
	if m.prefix() {
		return m.symbol() + formatted
	}
	return formatted + " " + m.symbol()
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// alignRight right-aligns the given 1-based columns.
func alignRight(t table.Writer, cols ...int) {
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for _, c := range cols {
		cfgs = append(cfgs, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusLabel(s model.Status) string {
	switch s {
	case model.StatusActive:
		return text.FgGreen.Sprint(strings.ToUpper(string(s)))
	case model.StatusPaused:
		return text.FgYellow.Sprint(strings.ToUpper(string(s)))
	case model.StatusCancelled:
		return text.FgRed.Sprint(strings.ToUpper(string(s)))
	}
	return text.FgHiBlack.Sprint(strings.ToUpper(string(s)))
}

func urgencyLabel(u economics.UrgencyLevel) string {
	switch u {
	case economics.UrgencyOverdue:
		return text.FgRed.Sprint(string(u))
	case economics.UrgencyUrgent:
		return text.FgHiRed.Sprint(string(u))
	case economics.UrgencySoon:
		return text.FgYellow.Sprint(string(u))
	}
	return string(u)
}

// dateWithRelative renders a date followed by its distance from now.
func dateWithRelative(d, now time.Time) string {
	if d.IsZero() {
		return text.FgHiBlack.Sprint("-")
	}
	return model.FormatDate(d) + " (" + economics.RelativeLabel(economics.DaysUntil(d, now)) + ")"
}
