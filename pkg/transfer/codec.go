// Package transfer imports and exports subscriptions as CSV, JSON and XLSX.
package transfer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ogulcanaydogan/subguard/pkg/model"
)

// Columns is the exchange column order. Import also accepts status in any position.
var Columns = []string{
	"name", "cost", "billing_cycle", "category", "next_billing_date", "last_used", "status", "notes",
}

// SkippedRow records an input row that could not be imported.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Result is the outcome of decoding an import file.
type Result struct {
	Subscriptions []model.Subscription `json:"subscriptions"`
	Skipped       []SkippedRow         `json:"skipped"`
}

// Codec converts subscriptions to and from one file format.
type Codec interface {
	// Name returns the format identifier (e.g., "csv").
	Name() string

	// ContentType returns the MIME type of encoded output.
	ContentType() string

	// Decode reads subscriptions. Rows that cannot be imported are skipped and reported.
	Decode(r io.Reader) (*Result, error)

	// Encode writes subscriptions.
	Encode(w io.Writer, subs []model.Subscription) error
}

// codecs is the registry of available formats.
var codecs = map[string]Codec{}

// Register adds a codec to the registry, replacing any codec with the same name.
func Register(c Codec) {
	codecs[c.Name()] = c
}

// Get returns the codec for the given format.
func Get(format string) (Codec, error) {
	c, ok := codecs[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (available: %v)", format, Formats())
	}
	return c, nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(CSV{})
	Register(JSON{})
	Register(XLSX{})
}
