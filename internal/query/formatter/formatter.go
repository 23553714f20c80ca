// Package formatter renders executor results as chat replies.
package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"homelead-workers/internal/models"
	"homelead-workers/internal/query/executor"
)

const (
	StoreErrorReply = "Sorry, there was an error connecting to the database."
	AverageHint     = "I can calculate averages for lead budgets. Try asking 'average budget of leads' or 'average lead budget'."

	aggregateUnavailable = "📊 **Lead Budget Analysis**\n\nNo lead budget data is available for this query."
	missing              = "N/A"
	footerTierLimit      = 10
)

// Reply is the rendered text and the outcome class it represents.
type Reply struct {
	Text    string
	Outcome models.Outcome
}

type Formatter struct {
	displayLimit int
}

// New returns a Formatter that shows displayLimit records when the utterance
// did not ask for "top N".
func New(displayLimit int) *Formatter {
	if displayLimit <= 0 {
		displayLimit = 10
	}
	return &Formatter{displayLimit: displayLimit}
}

// Format renders res for collection.
func (f *Formatter) Format(collection models.Collection, res executor.Result) Reply {
	var reply Reply
	switch {
	case res.Plan.Mode == models.ModeAggregate:
		reply = formatBudget(res.Stats)
	case len(res.Records) == 0:
		reply = Reply{Text: NoMatches(collection), Outcome: models.OutcomeNoMatches}
	case res.Plan.Mode == models.ModeCount:
		reply = Reply{Text: Total(collection, len(res.Records)), Outcome: models.OutcomeOK}
	default:
		reply = Reply{Text: f.list(collection, res), Outcome: models.OutcomeOK}
	}

	if res.Plan.UnsupportedAverage {
		reply.Text = AverageHint + "\n\n" + reply.Text
	}
	return reply
}

func NoMatches(collection models.Collection) string {
	return fmt.Sprintf("Sorry, I couldn't find any %s matching your query.", collection)
}

var totalTitles = map[models.Collection]string{
	models.CollectionBrokers:    "Brokers",
	models.CollectionProperties: "Properties",
	models.CollectionLeads:      "Leads",
	models.CollectionProjects:   "Projects",
	models.CollectionLands:      "Land Plots",
}

// Total is the one-line count reply.
func Total(collection models.Collection, n int) string {
	title, ok := totalTitles[collection]
	if !ok {
		title = string(collection)
	}
	return fmt.Sprintf("📊 **Total %s**: %d", title, n)
}

func (f *Formatter) list(collection models.Collection, res executor.Result) string {
	total := len(res.Records)
	show := f.displayLimit
	if res.Plan.Requested {
		show = int(res.Plan.Limit)
	}
	if show > total {
		show = total
	}

	tmpl, ok := templates[collection]
	if !ok {
		return fmt.Sprintf("I found %d result(s) in %s collection.", total, collection)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d %s:\n", total, tmpl.noun)
	for _, rec := range res.Records[:show] {
		tmpl.render(&b, rec)
		b.WriteString("\n")
	}
	text := strings.TrimRight(b.String(), "\n")

	if rest := total - show; rest > 0 {
		if total <= footerTierLimit {
			text += fmt.Sprintf("\n\n... and %d more results.", rest)
		} else {
			text += fmt.Sprintf("\n\n... and %d more results (showing first %d of %d total).", rest, show, total)
		}
	}
	return text
}

type recordTemplate struct {
	noun   string
	render func(b *strings.Builder, rec models.Record)
}

var templates = map[models.Collection]recordTemplate{
	models.CollectionBrokers: {"broker(s)", func(b *strings.Builder, r models.Record) {
		fmt.Fprintf(b, "• %s - Phone: %s\n", field(r, "name"), field(r, "phone"))
		fmt.Fprintf(b, "  Address: %s\n", field(r, "address"))
		fmt.Fprintf(b, "  Commission: %s%%\n", field(r, "commissionPercent"))
	}},
	models.CollectionProperties: {"property(ies)", func(b *strings.Builder, r models.Record) {
		fmt.Fprintf(b, "• %s - %s %s\n", field(r, "propertyType"), field(r, "blockName"), field(r, "floorName"))
		fmt.Fprintf(b, "  Budget: ₹%s - ₹%s\n", field(r, "minBudget"), field(r, "maxBudget"))
		fmt.Fprintf(b, "  Area: %s %s\n", field(r, "carpetArea"), fieldOr(r, "carpetAreaType", "sq ft"))
		fmt.Fprintf(b, "  Status: %s\n", field(r, "propertyStatus"))
	}},
	models.CollectionProjects: {"project(s)", func(b *strings.Builder, r models.Record) {
		fmt.Fprintf(b, "• %s\n", field(r, "name"))
		fmt.Fprintf(b, "  Category: %s\n", field(r, "category"))
		fmt.Fprintf(b, "  Status: %s\n", field(r, "projectStatus"))
		fmt.Fprintf(b, "  Budget: ₹%s - ₹%s\n", field(r, "minBudget"), field(r, "maxBudget"))
	}},
	models.CollectionLeads: {"lead(s)", func(b *strings.Builder, r models.Record) {
		fmt.Fprintf(b, "• %s - %s\n", field(r, "name"), field(r, "phone"))
		fmt.Fprintf(b, "  Budget: ₹%s - ₹%s\n", field(r, "minBudget"), field(r, "maxBudget"))
		fmt.Fprintf(b, "  Status: %s\n", field(r, "leadStatus"))
	}},
	models.CollectionLands: {"land plot(s)", func(b *strings.Builder, r models.Record) {
		fmt.Fprintf(b, "• %s\n", field(r, "name"))
		fmt.Fprintf(b, "  Size: %s %s\n", field(r, "plotSize"), field(r, "sizeType"))
		fmt.Fprintf(b, "  Value: ₹%s\n", field(r, "currentMarketValue"))
		fmt.Fprintf(b, "  Status: %s\n", field(r, "occupancyStatus"))
	}},
}

func formatBudget(stats *models.BudgetStats) Reply {
	if stats == nil {
		return Reply{Text: aggregateUnavailable, Outcome: models.OutcomeAggregateUnavailable}
	}
	lo := groupThousands(int64(stats.AvgMinBudget))
	hi := groupThousands(int64(stats.AvgMaxBudget))

	var b strings.Builder
	b.WriteString("📊 **Lead Budget Analysis**\n\n")
	fmt.Fprintf(&b, "• Total Leads: %d\n", stats.Count)
	fmt.Fprintf(&b, "• Average Min Budget: ₹%s\n", lo)
	fmt.Fprintf(&b, "• Average Max Budget: ₹%s\n", hi)
	fmt.Fprintf(&b, "• Average Budget Range: ₹%s - ₹%s", lo, hi)
	return Reply{Text: b.String(), Outcome: models.OutcomeOK}
}

func field(r models.Record, key string) string {
	return fieldOr(r, key, missing)
}

func fieldOr(r models.Record, key, def string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case string:
		return n
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// groupThousands renders 2500000 as "2,500,000".
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
