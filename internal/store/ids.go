package store

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	CatalogOrderPrefix = "MPSS"
	CustomOrderPrefix  = "CUSTOM"

	suffixLength = 5
	suffixSpace  = 36 * 36 * 36 * 36 * 36
)

// randomSuffix returns five upper-case base36 characters drawn from a
// random UUID.
func randomSuffix() string {
	id := uuid.New()
	n := binary.BigEndian.Uint64(id[8:]) % suffixSpace
	s := strings.ToUpper(strconv.FormatUint(n, 36))
	return strings.Repeat("0", suffixLength-len(s)) + s
}

// NewOrderNumber formats <prefix>-<unix millis>-<5 base36>. Uniqueness is
// enforced by the orders_order_number_key constraint; callers regenerate
// on conflict.
func NewOrderNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), randomSuffix())
}

func newSKU(category string, now time.Time) string {
	code := strings.ToUpper(category)
	if len(code) > 3 {
		code = code[:3]
	}
	return fmt.Sprintf("%s-%d-%s", code, now.UnixMilli(), randomSuffix())
}
