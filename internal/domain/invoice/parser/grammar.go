package parser

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/normalizer"
	"github.com/FACorreiaa/invoice-extractor/internal/domain/invoice/record"
	"github.com/FACorreiaa/invoice-extractor/pkg/money"
)

// lineField names a LineItem column a grammar can fill.
type lineField int

const (
	fieldLineNumber lineField = iota
	fieldQuantity
	fieldUnit
	fieldItemCode
	fieldDescription
	fieldUnitPrice
	fieldDiscount
	fieldSubtotal
	fieldTax
	fieldTotal
)

// numTok matches one numeric column of an item row.
const numTok = `(-?\d(?:[\d.,]*\d)?)`

func setField(l *record.LineItem, f lineField, raw string) {
	raw = strings.TrimSpace(raw)
	switch f {
	case fieldLineNumber:
		l.LineNumber = raw
	case fieldQuantity:
		l.Quantity = normalizer.ParseNumber(raw)
	case fieldUnit:
		l.Unit = raw
	case fieldItemCode:
		l.ItemCode = raw
	case fieldDescription:
		l.Description = raw
	case fieldUnitPrice:
		l.UnitPrice = normalizer.ParseNumber(raw)
	case fieldDiscount:
		l.Discount = normalizer.ParseNumber(raw)
	case fieldSubtotal:
		l.Subtotal = normalizer.ParseNumber(raw)
	case fieldTax:
		l.Tax = normalizer.ParseNumber(raw)
	case fieldTotal:
		l.Total = normalizer.ParseNumber(raw)
	}
}

func hasField(fields []lineField, f lineField) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}

// deriveTotal fills total = subtotal + tax for grammars without a total
// column. A missing operand leaves the total empty.
func deriveTotal(l *record.LineItem, fields []lineField) {
	if !hasField(fields, fieldTotal) {
		l.Total = money.Add(l.Subtotal, l.Tax)
	}
}

// singleLineGrammar matches each physical line in full against one
// positional pattern. Lines that do not match are skipped.
type singleLineGrammar struct {
	pattern *regexp.Regexp
	fields  []lineField // one per capture group

	// consolidate runs the wrapped-line pre-pass first; boundary keeps
	// section lines from being merged into the last item.
	consolidate bool
	boundary    func(string) bool
}

func (g singleLineGrammar) Extract(text string, h record.InvoiceHeader) []record.LineItem {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if g.consolidate {
		lines = normalizer.ConsolidateWrapped(lines, g.boundary)
	}

	var items []record.LineItem
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		m := g.pattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := record.NewLine(h)
		for i, f := range g.fields {
			if i+1 < len(m) {
				setField(&item, f, m[i+1])
			}
		}
		deriveTotal(&item, g.fields)
		item.RawText = line
		items = append(items, item)
	}
	return items
}

// multiLineGrammar handles items that span several physical lines. A line
// matching itemHeader (line number, item code, description) opens an item;
// following lines accumulate until the next item header or a terminator.
// The last len(mapping) numeric tokens of the accumulated text are assigned
// to mapping in order.
type multiLineGrammar struct {
	itemHeader  *regexp.Regexp
	terminators []*regexp.Regexp
	mapping     []lineField
	country     string // selects the tax ceiling for reconciliation
}

type pendingItem struct {
	number      string
	code        string
	description string
	more        []string
	raw         []string
}

func (g multiLineGrammar) Extract(text string, h record.InvoiceHeader) []record.LineItem {
	if text == "" {
		return nil
	}

	var items []record.LineItem
	var cur *pendingItem
	flush := func() {
		if cur != nil {
			items = append(items, g.finish(*cur, h))
			cur = nil
		}
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := g.itemHeader.FindStringSubmatch(line); m != nil {
			flush()
			cur = &pendingItem{number: m[1], code: m[2], description: m[3], raw: []string{line}}
			continue
		}
		if cur == nil {
			continue
		}
		if g.terminates(line) {
			flush()
			continue
		}
		cur.more = append(cur.more, line)
		cur.raw = append(cur.raw, line)
	}
	flush()
	return items
}

func (g multiLineGrammar) terminates(line string) bool {
	for _, re := range g.terminators {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (g multiLineGrammar) finish(p pendingItem, h record.InvoiceHeader) record.LineItem {
	item := record.NewLine(h)
	item.LineNumber = p.number
	item.ItemCode = p.code
	item.Description = itemDescription(p.description, p.more)
	item.RawText = strings.Join(p.raw, " ")

	tokens := strings.Fields(p.description + " " + strings.Join(p.more, " "))
	var numeric []string
	for _, tok := range tokens {
		if normalizer.IsNumericToken(tok) {
			numeric = append(numeric, tok)
		}
	}

	n := len(g.mapping)
	if len(numeric) < n {
		item.RawText = record.ReviewMarker + item.RawText
		return item
	}
	for i, tok := range numeric[len(numeric)-n:] {
		setField(&item, g.mapping[i], tok)
	}
	deriveTotal(&item, g.mapping)

	if !money.Reconciles(breakdown(item), MaxTaxRate(g.country)) {
		item.RawText = record.ReviewMarker + item.RawText
	}
	return item
}

// itemDescription keeps the header description up to its trailing numeric
// columns. When the header line carried no numbers, the leading words of
// the continuation lines are part of the description too.
func itemDescription(head string, more []string) string {
	words := strings.Fields(head)
	end := len(words)
	for end > 0 && normalizer.IsNumericToken(words[end-1]) {
		end--
	}
	desc := words[:end]
	if end < len(words) {
		return strings.Join(desc, " ")
	}

	for _, tok := range strings.Fields(strings.Join(more, " ")) {
		if normalizer.IsNumericToken(tok) {
			break
		}
		desc = append(desc, tok)
	}
	return strings.Join(desc, " ")
}

func breakdown(l record.LineItem) money.Breakdown {
	return money.Breakdown{
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Discount:  l.Discount,
		Subtotal:  l.Subtotal,
		Tax:       l.Tax,
		Total:     l.Total,
	}
}
