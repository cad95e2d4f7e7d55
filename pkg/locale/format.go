// Package locale formats numbers and dates the way a given locale displays them.
package locale

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Format holds the separators and layouts of one locale.
// It is immutable after construction and safe for concurrent use.
type Format struct {
	tag               string
	decimalSeparator  string
	thousandSeparator string
	dateLayout        string
	maxFraction       int
}

// Option configures a Format during construction.
type Option func(*Format)

// New creates a Format. Without options it formats like en-US.
func New(opts ...Option) *Format {
	f := &Format{
		tag:               "en-US",
		decimalSeparator:  ".",
		thousandSeparator: ",",
		dateLayout:        "1/2/2006",
		maxFraction:       3,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithTag sets the BCP 47 tag reported by Tag.
func WithTag(tag string) Option {
	return func(f *Format) {
		f.tag = tag
	}
}

// WithDecimalSeparator sets the decimal separator.
func WithDecimalSeparator(sep string) Option {
	return func(f *Format) {
		f.decimalSeparator = sep
	}
}

// WithThousandSeparator sets the digit group separator.
func WithThousandSeparator(sep string) Option {
	return func(f *Format) {
		f.thousandSeparator = sep
	}
}

// WithDateLayout sets the Go time layout used by FormatDate.
func WithDateLayout(layout string) Option {
	return func(f *Format) {
		f.dateLayout = layout
	}
}

// WithMaxFractionDigits caps the number of decimals printed by FormatNumber.
func WithMaxFractionDigits(n int) Option {
	return func(f *Format) {
		if n >= 0 {
			f.maxFraction = n
		}
	}
}

// Tag returns the locale tag, e.g. "en-US".
func (f *Format) Tag() string { return f.tag }

// FormatNumber groups the integer part and trims trailing fraction zeros.
// NaN and infinities are printed as-is.
func (f *Format) FormatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 0) {
		if n < 0 {
			return "-∞"
		}
		return "∞"
	}

	raw := strconv.FormatFloat(math.Abs(n), 'f', f.maxFraction, 64)
	intPart, fracPart, _ := strings.Cut(raw, ".")
	fracPart = strings.TrimRight(fracPart, "0")

	var b strings.Builder
	if n < 0 && (intPart != "0" || fracPart != "") {
		b.WriteByte('-')
	}
	b.WriteString(f.group(intPart))
	if fracPart != "" {
		b.WriteString(f.decimalSeparator)
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatDate formats t with the locale's date layout.
func (f *Format) FormatDate(t time.Time) string {
	return t.Format(f.dateLayout)
}

func (f *Format) group(digits string) string {
	if len(digits) <= 3 || f.thousandSeparator == "" {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(f.thousandSeparator)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
