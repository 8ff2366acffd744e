package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	issuedAt := time.Date(2026, time.March, 7, 10, 30, 0, 0, time.UTC)

	cases := []struct {
		name     string
		template string
		seq      int64
		want     string
	}{
		{"default template", DefaultInvoiceNumberTemplate, 42, "INV-202603-00042"},
		{"short year", "{YY}{MM}{DD}-{SEQ}", 7, "260307-7"},
		{"wide padding", "F{SEQ8}", 123, "F00000123"},
		{"no tokens", "STATIC", 1, "STATIC"},
		{"seq overflowing pad", "{SEQ3}", 12345, "12345"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatInvoiceNumber(tc.template, issuedAt, tc.seq)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatInvoiceNumberErrors(t *testing.T) {
	issuedAt := time.Now()

	_, err := FormatInvoiceNumber("", issuedAt, 1)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber(DefaultInvoiceNumberTemplate, issuedAt, 0)
	assert.Error(t, err)

	_, err = FormatInvoiceNumber("INV-{UNKNOWN}", issuedAt, 1)
	assert.Error(t, err)
}
