package domain

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// The cart backend's payload shape varies by plugin and version: the line
// items have been observed as a bare array, as an array under an items-like
// field, and as a key-to-object map. Shape detection is a closed enum so
// every variant is handled explicitly; anything unrecognized normalizes to an
// empty cart rather than an error.
type itemsShape int

const (
	shapeUnknown itemsShape = iota
	shapeList
	shapeKeyedMap
)

// Field names under which backends have been observed to nest line items.
var itemsFieldNames = []string{"items", "line_items", "cart_items", "cart_contents", "contents"}

// defaultMinorUnit is used when the payload does not declare one.
const defaultMinorUnit = 2

// Normalize converts a raw backend cart payload into a Snapshot. It is pure:
// the input is never mutated, and no input ever produces an error; an
// unrecognized shape yields an empty snapshot.
func Normalize(raw json.RawMessage) *Snapshot {
	snap := &Snapshot{
		Items:     []LineItem{},
		MinorUnit: defaultMinorUnit,
		Raw:       raw,
	}
	if len(raw) == 0 {
		return snap
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err == nil {
		applyCurrency(snap, top)
		applyTotals(snap, top)
	}

	shape, items := detectShape(raw)
	minorDeclared := hasDeclaredMinorUnit(top)

	switch shape {
	case shapeList:
		var list []json.RawMessage
		if err := json.Unmarshal(items, &list); err != nil {
			return snap
		}
		for _, entry := range list {
			if item, ok := normalizeItem("", entry, minorDeclared, snap.MinorUnit); ok {
				snap.Items = append(snap.Items, item)
			}
		}

	case shapeKeyedMap:
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(items, &keyed); err != nil {
			return snap
		}
		// JSON object order is undefined; sort keys for a stable item order.
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if item, ok := normalizeItem(k, keyed[k], minorDeclared, snap.MinorUnit); ok {
				snap.Items = append(snap.Items, item)
			}
		}

	case shapeUnknown:
		// Leave the snapshot empty.
	}

	return snap
}

// detectShape classifies the payload and returns the raw value holding the
// line items.
func detectShape(raw json.RawMessage) (itemsShape, json.RawMessage) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return shapeList, raw
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return shapeUnknown, nil
	}

	for _, field := range itemsFieldNames {
		items, ok := top[field]
		if !ok || string(items) == "null" {
			continue
		}
		inner := strings.TrimSpace(string(items))
		switch {
		case strings.HasPrefix(inner, "["):
			return shapeList, items
		case strings.HasPrefix(inner, "{"):
			return shapeKeyedMap, items
		}
	}

	return shapeUnknown, nil
}

// normalizeItem extracts a LineItem from one raw entry. fallbackKey is the
// map key for keyed-map payloads. Returns false for entries that cannot
// represent a cart line (no identity, or an explicit zero quantity).
func normalizeItem(fallbackKey string, raw json.RawMessage, minorDeclared bool, minorUnit int) (LineItem, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return LineItem{}, false
	}

	item := LineItem{
		Key:      itemKey(fields, fallbackKey),
		Name:     firstString(fields, "name", "product_name", "title"),
		ImageURL: itemImage(fields),
	}
	if item.Key == "" {
		return LineItem{}, false
	}

	item.ProductID = itemProductID(fields)

	qty, explicit := itemQuantity(fields)
	if explicit && qty <= 0 {
		// A zero-quantity line is the removal signal, never cart content.
		return LineItem{}, false
	}
	if qty <= 0 {
		qty = 1
	}
	item.Quantity = qty

	item.UnitPrice = itemUnitPrice(fields, minorDeclared, minorUnit)
	item.LineTotal = itemLineTotal(fields, minorDeclared, minorUnit)

	return item, true
}

// itemKey resolves the backend-assigned line identity under its observed
// aliases, falling back to the map key and finally the product id.
func itemKey(fields map[string]json.RawMessage, fallbackKey string) string {
	if key := firstString(fields, "item_key", "key", "cart_item_key"); key != "" {
		return key
	}
	if fallbackKey != "" {
		return fallbackKey
	}
	if raw, ok := fields["id"]; ok {
		if s := scalarString(raw); s != "" {
			return s
		}
	}
	return ""
}

func itemProductID(fields map[string]json.RawMessage) int64 {
	for _, name := range []string{"id", "product_id"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if id, err := strconv.ParseInt(scalarString(raw), 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

// itemQuantity reads the quantity under its aliases, tolerating both bare
// numbers and the {value: n} object used by newer CoCart versions. The second
// return reports whether the payload carried an explicit parseable quantity.
func itemQuantity(fields map[string]json.RawMessage) (int, bool) {
	for _, name := range []string{"quantity", "qty"} {
		raw, ok := fields[name]
		if !ok {
			continue
		}

		var n float64
		if err := json.Unmarshal(raw, &n); err == nil {
			return int(n), true
		}

		var nested struct {
			Value *float64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Value != nil {
			return int(*nested.Value), true
		}

		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return v, true
			}
		}
	}
	return 0, false
}

func itemUnitPrice(fields map[string]json.RawMessage, minorDeclared bool, minorUnit int) int64 {
	if raw, ok := fields["price"]; ok {
		if cents, ok := coercePrice(raw, minorDeclared, minorUnit); ok {
			return cents
		}
	}

	// Store API nests prices and declares the minor unit alongside them.
	if raw, ok := fields["prices"]; ok {
		var prices map[string]json.RawMessage
		if err := json.Unmarshal(raw, &prices); err == nil {
			nestedDeclared := minorDeclared
			if _, ok := prices["currency_minor_unit"]; ok {
				nestedDeclared = true
			}
			if price, ok := prices["price"]; ok {
				if cents, ok := coercePrice(price, nestedDeclared, minorUnit); ok {
					return cents
				}
			}
		}
	}

	return 0
}

func itemLineTotal(fields map[string]json.RawMessage, minorDeclared bool, minorUnit int) int64 {
	if raw, ok := fields["totals"]; ok {
		var totals map[string]json.RawMessage
		if err := json.Unmarshal(raw, &totals); err == nil {
			nestedDeclared := minorDeclared
			if _, ok := totals["currency_minor_unit"]; ok {
				nestedDeclared = true
			}
			for _, name := range []string{"line_total", "line_subtotal", "total", "subtotal"} {
				if total, ok := totals[name]; ok {
					if cents, ok := coercePrice(total, nestedDeclared, minorUnit); ok {
						return cents
					}
				}
			}
		}
	}

	for _, name := range []string{"line_total", "line_subtotal"} {
		if raw, ok := fields[name]; ok {
			if cents, ok := coercePrice(raw, minorDeclared, minorUnit); ok {
				return cents
			}
		}
	}

	return 0
}

func itemImage(fields map[string]json.RawMessage) string {
	if raw, ok := fields["image"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	if raw, ok := fields["images"]; ok {
		var images []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &images); err == nil && len(images) > 0 {
			if src := firstString(images[0], "src", "source_url"); src != "" {
				return src
			}
		}
	}

	if raw, ok := fields["featured_image"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	return ""
}

// applyCurrency reads currency metadata from the observed top-level variants.
func applyCurrency(snap *Snapshot, top map[string]json.RawMessage) {
	if raw, ok := top["currency"]; ok {
		var nested struct {
			CurrencyCode      string `json:"currency_code"`
			CurrencyMinorUnit *int   `json:"currency_minor_unit"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.CurrencyCode != "" {
			snap.Currency = nested.CurrencyCode
			if nested.CurrencyMinorUnit != nil {
				snap.MinorUnit = *nested.CurrencyMinorUnit
			}
			return
		}

		var code string
		if err := json.Unmarshal(raw, &code); err == nil {
			snap.Currency = code
		}
	}
}

// applyTotals reads the backend's aggregate totals, preferring the cart total
// over the subtotal.
func applyTotals(snap *Snapshot, top map[string]json.RawMessage) {
	raw, ok := top["totals"]
	if !ok {
		return
	}

	var totals map[string]json.RawMessage
	if err := json.Unmarshal(raw, &totals); err != nil {
		return
	}

	minorDeclared := false
	if rawUnit, ok := totals["currency_minor_unit"]; ok {
		var unit int
		if err := json.Unmarshal(rawUnit, &unit); err == nil {
			snap.MinorUnit = unit
			minorDeclared = true
		}
	}
	if code := firstString(totals, "currency_code"); code != "" && snap.Currency == "" {
		snap.Currency = code
	}

	for _, name := range []string{"total_price", "total", "subtotal"} {
		if rawTotal, ok := totals[name]; ok {
			if cents, ok := coercePrice(rawTotal, minorDeclared, snap.MinorUnit); ok {
				snap.DeclaredTotal = cents
				snap.HasDeclaredTotal = true
				return
			}
		}
	}
}

// coercePrice converts a price-like value (currency-formatted string, bare
// number, minor-unit integer, or an object carrying one under value /
// min_purchase / max_purchase) into minor units. Values with a decimal
// separator are major units; integers are minor units only when the payload
// declared a minor unit. This coercion is lossy and best-effort: it serves
// display, never checkout totals.
func coercePrice(raw json.RawMessage, minorDeclared bool, minorUnit int) (int64, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n == math.Trunc(n) && minorDeclared {
			return int64(n), true
		}
		return majorToMinor(n, minorUnit), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return coercePriceString(s, minorDeclared, minorUnit)
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		for _, name := range []string{"value", "min_purchase", "max_purchase"} {
			if inner, ok := nested[name]; ok {
				if cents, ok := coercePrice(inner, minorDeclared, minorUnit); ok {
					return cents, true
				}
			}
		}
	}

	return 0, false
}

func coercePriceString(s string, minorDeclared bool, minorUnit int) (int64, bool) {
	// Strip currency symbols, letters, and thousands separators ("A$1,045.00").
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}

	if strings.Contains(cleaned, ".") {
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return majorToMinor(f, minorUnit), true
	}

	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	if minorDeclared {
		return v, true
	}
	return majorToMinor(float64(v), minorUnit), true
}

func majorToMinor(v float64, minorUnit int) int64 {
	return int64(math.Round(v * math.Pow10(minorUnit)))
}

func hasDeclaredMinorUnit(top map[string]json.RawMessage) bool {
	if top == nil {
		return false
	}
	if raw, ok := top["currency"]; ok {
		var nested struct {
			CurrencyMinorUnit *int `json:"currency_minor_unit"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.CurrencyMinorUnit != nil {
			return true
		}
	}
	if raw, ok := top["totals"]; ok {
		var nested struct {
			CurrencyMinorUnit *int `json:"currency_minor_unit"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.CurrencyMinorUnit != nil {
			return true
		}
	}
	return false
}

// firstString returns the first present non-empty string among the named
// fields, stringifying bare numbers.
func firstString(fields map[string]json.RawMessage, names ...string) string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		if s := scalarString(raw); s != "" {
			return s
		}
	}
	return ""
}

// scalarString renders a JSON string or number as a plain string.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
