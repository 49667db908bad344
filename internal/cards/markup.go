package cards

import (
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// markupFields are the side fields rendered as rich text by the app.
var markupFields = []string{"title", "description"}

// MarkupFinding is a side field whose text the rich-text sanitiser would
// change.
type MarkupFinding struct {
	Index     int
	Side      string
	Field     string
	Original  string
	Sanitised string
}

func (f MarkupFinding) String() string {
	if strings.TrimSpace(f.Sanitised) == "" {
		return fmt.Sprintf("card %d: %s.%s is empty or unsafe after sanitising", f.Index, f.Side, f.Field)
	}
	return fmt.Sprintf("card %d: %s.%s would be sanitised to %q", f.Index, f.Side, f.Field, f.Sanitised)
}

// sanitisePolicy matches the policy the web app applies to card content.
func sanitisePolicy() *bluemonday.Policy {
	return bluemonday.UGCPolicy().
		AllowElements("img").
		AllowAttrs("src", "alt").OnElements("img").
		AllowElements("math", "span").
		AllowAttrs("class").OnElements("span")
}

// LintMarkup reports every string title or description that sanitising
// would alter. doc must already pass Validate.
func LintMarkup(doc any) ([]MarkupFinding, error) {
	if err := Validate(doc); err != nil {
		return nil, err
	}

	policy := sanitisePolicy()
	raw, _ := doc.(*Object).Get("cards")

	var findings []MarkupFinding
	for i, item := range raw.([]any) {
		card := item.(*Object)
		for _, side := range Sides {
			v, _ := card.Get(side)
			fields := v.(*Object)
			for _, field := range markupFields {
				fv, ok := fields.Get(field)
				if !ok {
					continue
				}
				text, ok := fv.(string)
				if !ok {
					continue
				}
				clean := policy.Sanitize(text)
				// Entity escaping alone is not a change in rendered text.
				if html.UnescapeString(clean) == html.UnescapeString(text) {
					continue
				}
				findings = append(findings, MarkupFinding{
					Index:     i,
					Side:      side,
					Field:     field,
					Original:  text,
					Sanitised: clean,
				})
			}
		}
	}
	return findings, nil
}
