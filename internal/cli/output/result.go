package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/michaelhaar/type-safe-sql-query/pkg/core"
	"github.com/michaelhaar/type-safe-sql-query/pkg/schema"
)

// Item is one analyzed statement of a batch. Exactly one of Result and
// Err is set.
type Item struct {
	Source string
	Query  string
	Result *core.Result
	Err    error
}

type itemJSON struct {
	Source string       `json:"source,omitempty"`
	Query  string       `json:"query"`
	Result *core.Result `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

var titleCaser = cases.Title(language.English)

// KindTitle returns a display title such as "Select statement".
func KindTitle(kind core.StatementKind) string {
	return titleCaser.String(strings.ToLower(string(kind))) + " statement"
}

// Result renders a single analysis result in the effective mode.
func (r *Renderer) Result(res *core.Result) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.JSON(res)
	case ModeMarkdown:
		r.resultMarkdown(res, "")
	default:
		r.resultText(res, "")
	}
	return nil
}

// Items renders a batch of results. Failed statements are reported in
// place so that one bad statement does not hide the rest.
func (r *Renderer) Items(items []Item) error {
	if r.EffectiveMode() == ModeJSON {
		out := make([]itemJSON, len(items))
		for i, it := range items {
			out[i] = itemJSON{Source: it.Source, Query: it.Query, Result: it.Result}
			if it.Err != nil {
				out[i].Error = it.Err.Error()
			}
		}
		return r.JSON(out)
	}

	md := r.EffectiveMode() == ModeMarkdown
	for i, it := range items {
		if i > 0 {
			r.Println("")
		}
		switch {
		case it.Err != nil && md:
			r.Printf("## %s\n\n", sourceLabel(it.Source, i))
			r.Printf("```sql\n%s\n```\n\n", it.Query)
			r.Printf("**Error:** %s\n", it.Err)
		case it.Err != nil:
			r.Println(r.styles.Bold.Render(sourceLabel(it.Source, i)))
			r.Println(r.styles.StatusFailed.String() + " " + r.styles.Error.Render(it.Err.Error()))
		case md:
			r.resultMarkdown(it.Result, it.Source)
		default:
			r.resultText(it.Result, it.Source)
		}
	}
	return nil
}

// Summary writes the totals line of a batch.
func (r *Renderer) Summary(total, failed, unresolved int) {
	if r.EffectiveMode() == ModeJSON {
		return
	}
	msg := fmt.Sprintf("%d statements, %d failed, %d with unresolved references", total, failed, unresolved)
	r.Println("")
	if failed > 0 || unresolved > 0 {
		r.Println(r.styles.Warning.Render(msg))
		return
	}
	r.Success(msg)
}

func sourceLabel(source string, i int) string {
	if source != "" {
		return source
	}
	return "Statement " + strconv.Itoa(i+1)
}

func (r *Renderer) resultText(res *core.Result, source string) {
	title := KindTitle(res.Kind)
	if source != "" {
		title = source + ": " + title
	}
	r.Println(r.styles.Header.Render(title))
	r.Println(r.styles.Muted.Render(res.Query))

	if len(res.Params) > 0 {
		r.Println("")
		r.Println(r.styles.Bold.Render("Parameters"))
		r.Println(r.paramTable(res).Render())
	}

	r.Println("")
	if res.Shape == nil {
		r.Printf("%s %s\n", r.styles.Bold.Render("Returns"), r.styles.Type.Render(res.Status.String()))
		return
	}
	r.Println(r.styles.Bold.Render("Row shape"))
	if res.Shape.Len() == 0 {
		r.Println(r.styles.Muted.Render("(no fields)"))
		return
	}
	r.Println(r.shapeTable(res).Render())
}

func (r *Renderer) resultMarkdown(res *core.Result, source string) {
	title := KindTitle(res.Kind)
	if source != "" {
		title = source + ": " + title
	}
	r.Printf("## %s\n\n", title)
	r.Printf("```sql\n%s\n```\n", res.Query)

	if len(res.Params) > 0 {
		r.Println("")
		r.Println("### Parameters")
		r.Println("")
		r.Println(r.paramTable(res).RenderMarkdown())
	}

	r.Println("")
	if res.Shape == nil {
		r.Printf("**Returns:** `%s`\n", res.Status)
		return
	}
	r.Println("### Row shape")
	r.Println("")
	if res.Shape.Len() == 0 {
		r.Println("_no fields_")
		return
	}
	r.Println(r.shapeTable(res).RenderMarkdown())
}

func (r *Renderer) paramTable(res *core.Result) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Column", "Type"})
	for i, p := range res.Params {
		t.AppendRow(table.Row{i + 1, p.Ref.String(), r.typeCell(p.Type)})
	}
	return t
}

func (r *Renderer) shapeTable(res *core.Result) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Field", "Type", "Column"})
	for _, f := range res.Shape.Fields() {
		t.AppendRow(table.Row{f.Name, r.typeCell(f.Type), f.Ref.String()})
	}
	return t
}

func (r *Renderer) typeCell(t core.Type) string {
	if r.EffectiveMode() == ModeMarkdown {
		return t.String()
	}
	if !t.Resolved() {
		return r.styles.Error.Render(t.String())
	}
	return r.styles.Type.Render(t.String())
}

// Schema renders the tables of a schema.
func (r *Renderer) Schema(sc *schema.Schema) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		type column struct {
			Name string    `json:"name"`
			Type core.Type `json:"type"`
		}
		type tableOut struct {
			Name    string   `json:"name"`
			Columns []column `json:"columns"`
		}
		out := make([]tableOut, 0, sc.Len())
		for _, t := range sc.Tables() {
			to := tableOut{Name: t.Name, Columns: make([]column, 0, len(t.Columns))}
			for _, c := range t.Columns {
				to.Columns = append(to.Columns, column{c.Name, c.Type})
			}
			out = append(out, to)
		}
		return r.JSON(out)

	case ModeMarkdown:
		for i, t := range sc.Tables() {
			if i > 0 {
				r.Println("")
			}
			r.Printf("## %s\n\n", t.Name)
			r.Println(columnTable(t, nil).RenderMarkdown())
		}

	default:
		for i, t := range sc.Tables() {
			if i > 0 {
				r.Println("")
			}
			r.Println(r.styles.Header.Render(t.Name))
			r.Println(columnTable(t, &r.styles.Type).Render())
		}
	}
	return nil
}

func columnTable(t schema.Table, typeStyle *lipgloss.Style) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Column", "Type"})
	for _, c := range t.Columns {
		typ := c.Type.String()
		if typeStyle != nil {
			typ = typeStyle.Render(typ)
		}
		tw.AppendRow(table.Row{c.Name, typ})
	}
	return tw
}
