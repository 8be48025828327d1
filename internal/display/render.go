package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/larder/internal/app"
	"github.com/hammamikhairi/larder/internal/domain"
	"github.com/hammamikhairi/larder/internal/expiry"
	"github.com/hammamikhairi/larder/internal/feasibility"
	"github.com/hammamikhairi/larder/internal/pantry"
	"github.com/hammamikhairi/larder/internal/schema"
	"github.com/hammamikhairi/larder/internal/shopping"
)

// uncategorized is how the empty category name is shown.
const uncategorized = "Other"

func header(title string) string {
	return headerStyle.Render(title)
}

func categoryLabel(name string) string {
	if name == "" {
		return uncategorized
	}
	return name
}

// Freshness renders an expiry result as a short coloured label.
func Freshness(res expiry.Result) string {
	switch res.Status {
	case expiry.StatusOut:
		return secondaryStyle.Render("out of stock")
	case expiry.StatusNone:
		return secondaryStyle.Render("in stock")
	case expiry.StatusExpired:
		return expiredStyle.Render(fmt.Sprintf("expired %s", daysAgo(-res.DaysLeft)))
	case expiry.StatusSoon:
		return soonStyle.Render(fmt.Sprintf("expires %s", daysAhead(res.DaysLeft)))
	default:
		return okStyle.Render(fmt.Sprintf("%d days left", res.DaysLeft))
	}
}

func daysAgo(n int) string {
	if n == 1 {
		return "yesterday"
	}
	return fmt.Sprintf("%d days ago", n)
}

func daysAhead(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", n)
	}
}

// Ingredients lists every ingredient by category with price, portions
// and freshness.
func Ingredients(st domain.State, results map[string]expiry.Result) string {
	var b strings.Builder
	b.WriteString(header("Ingredients"))
	b.WriteByte('\n')
	if len(st.Ingredients) == 0 {
		b.WriteString(secondaryStyle.Render("  (empty pantry)"))
		b.WriteByte('\n')
		return b.String()
	}

	sections := make([]domain.Category, 0, len(st.Categories)+1)
	sections = append(sections, st.Categories...)
	if rest := st.Uncategorized(); len(rest) > 0 {
		sections = append(sections, domain.Category{Items: rest})
	}

	for _, c := range sections {
		title := categoryLabel(c.Name)
		if st.IsFresh(c.Name) {
			title += " (fresh)"
		}
		b.WriteString("  " + primaryStyle.Render(title) + "\n")
		for _, name := range c.Items {
			ing, ok := st.Ingredients[name]
			if !ok {
				continue
			}
			label := name
			if !ing.InStock {
				label = outStyle.Render(name)
			}
			line := fmt.Sprintf("    %-20s %8s", label, ing.Price.StringFixed(2))
			if ing.RemainingParts != nil {
				line += secondaryStyle.Render(fmt.Sprintf("  %d/%d parts", *ing.RemainingParts, ing.Parts))
			} else if ing.Parts > 1 {
				line += secondaryStyle.Render(fmt.Sprintf("  %d parts", ing.Parts))
			}
			line += "  " + Freshness(results[name])
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

// Recipes lists recipes with the ingredients each is missing.
func Recipes(st domain.State) string {
	var b strings.Builder
	b.WriteString(header("Recipes"))
	b.WriteByte('\n')
	if len(st.Recipes) == 0 {
		b.WriteString(secondaryStyle.Render("  (no recipes)") + "\n")
		return b.String()
	}
	for _, r := range st.Recipes {
		missing := feasibility.Missing(st.Ingredients, r)
		mark := okStyle.Render("✓")
		if len(missing) > 0 {
			mark = secondaryStyle.Render("·")
		}
		line := fmt.Sprintf("  %s %s", mark, primaryStyle.Render(r.Name))
		if r.Category != "" {
			line += secondaryStyle.Render(" [" + r.Category + "]")
		}
		if len(missing) > 0 {
			line += secondaryStyle.Render("  needs " + strings.Join(missing, ", "))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// RecipeNames lists recipe names under a title.
func RecipeNames(title string, recipes []domain.Recipe) string {
	var b strings.Builder
	b.WriteString(header(title) + "\n")
	if len(recipes) == 0 {
		b.WriteString(secondaryStyle.Render("  (none)") + "\n")
	}
	for _, r := range recipes {
		b.WriteString("  " + primaryStyle.Render(r.Name) + "\n")
	}
	return b.String()
}

// Urgency lists cookable recipes by the soonest expiry among their
// ingredients, colouring days left against the warning window.
func Urgency(list []feasibility.Urgent, warningDays int) string {
	var b strings.Builder
	b.WriteString(header("Cook soon") + "\n")
	if len(list) == 0 {
		b.WriteString(secondaryStyle.Render("  (nothing cookable)") + "\n")
	}
	for _, u := range list {
		when := secondaryStyle.Render("no expiry tracked")
		if u.Tracked {
			status := expiry.StatusOK
			switch {
			case u.DaysLeft < 0:
				status = expiry.StatusExpired
			case u.DaysLeft <= warningDays:
				status = expiry.StatusSoon
			}
			when = Freshness(expiry.Result{Status: status, DaysLeft: u.DaysLeft})
		}
		b.WriteString(fmt.Sprintf("  %-24s %s\n", primaryStyle.Render(u.Recipe.Name), when))
	}
	return b.String()
}

// Priority lists recipes ranked by how much they use up spoiling stock.
func Priority(list []feasibility.Scored) string {
	var b strings.Builder
	b.WriteString(header("Use it up") + "\n")
	if len(list) == 0 {
		b.WriteString(secondaryStyle.Render("  (nothing urgent)") + "\n")
	}
	for i, s := range list {
		b.WriteString(fmt.Sprintf("  %d. %-24s %s\n", i+1, primaryStyle.Render(s.Recipe.Name),
			secondaryStyle.Render(fmt.Sprintf("score %.1f", s.Score))))
	}
	return b.String()
}

// ShoppingList renders grouped missing items. With an active trip the
// selection is shown as a checklist with a running subtotal.
func ShoppingList(st domain.State, groups []shopping.Group, trip shopping.Trip) string {
	var b strings.Builder
	b.WriteString(header("Shopping list") + "\n")
	if len(groups) == 0 {
		b.WriteString(secondaryStyle.Render("  (nothing missing)") + "\n")
		return b.String()
	}
	for _, g := range groups {
		title := categoryLabel(g.Category)
		if g.ColdChain {
			title = coldStyle.Render(title + " ❄")
		} else {
			title = primaryStyle.Render(title)
		}
		b.WriteString("  " + title + "\n")
		for _, name := range g.Items {
			box := "  "
			if trip.Active() {
				box = "[ ]"
				if trip.IsSelected(name) {
					box = okStyle.Render("[x]")
				}
			}
			price := st.Ingredients[name].Price.StringFixed(2)
			b.WriteString(fmt.Sprintf("    %s %-20s %8s\n", box, name, price))
		}
	}
	if trip.Active() {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			primaryStyle.Render("subtotal "+trip.Subtotal(st).StringFixed(2)),
			secondaryStyle.Render(fmt.Sprintf("%.0f%% picked", trip.Progress(st)*100))))
	}
	return b.String()
}

// History lists recorded shopping sessions.
func History(sessions []domain.ShoppingSession) string {
	var b strings.Builder
	b.WriteString(header("Shopping history") + "\n")
	if len(sessions) == 0 {
		b.WriteString(secondaryStyle.Render("  (no trips yet)") + "\n")
	}
	for _, s := range sessions {
		when := "unknown date"
		if !s.Timestamp.IsZero() {
			when = s.Timestamp.Local().Format("2006-01-02 15:04")
		}
		b.WriteString(fmt.Sprintf("  %s  %8s  %s\n",
			secondaryStyle.Render(when),
			primaryStyle.Render(s.Total.StringFixed(2)),
			strings.Join(s.Items, ", ")))
	}
	return b.String()
}

// Receipt summarises a finished trip.
func Receipt(r shopping.Receipt) string {
	if r.Session == nil {
		return secondaryStyle.Render("Nothing picked, no trip recorded.")
	}
	return boxStyle.Render(fmt.Sprintf("%s\n%d items  total %s",
		headerStyle.Render("Trip recorded"), len(r.Session.Items), r.Session.Total.StringFixed(2)))
}

// ImportReport lists validation findings.
func ImportReport(res schema.Result) string {
	var b strings.Builder
	status := okStyle.Render("valid")
	if !res.Valid {
		status = expiredStyle.Render("rejected")
	}
	b.WriteString(fmt.Sprintf("%s %s (version %s)\n", header("Import"), status, res.Version))
	for _, is := range res.Errors {
		b.WriteString("  " + expiredStyle.Render("error") + "   " + is.String() + "\n")
	}
	for _, is := range res.Warnings {
		b.WriteString("  " + soonStyle.Render("warning") + " " + is.String() + "\n")
	}
	return b.String()
}

// Impact describes what a deletion would remove.
func Impact(what string, imp pantry.Impact) string {
	if !imp.Destructive() {
		return secondaryStyle.Render(fmt.Sprintf("Deleting %s removes nothing else.", what))
	}
	var parts []string
	if n := len(imp.Ingredients); n > 0 {
		parts = append(parts, fmt.Sprintf("%d ingredient(s): %s", n, strings.Join(imp.Ingredients, ", ")))
	}
	if n := len(imp.Recipes); n > 0 {
		parts = append(parts, fmt.Sprintf("%d recipe(s): %s", n, strings.Join(imp.Recipes, ", ")))
	}
	if n := len(imp.Trimmed); n > 0 {
		parts = append(parts, fmt.Sprintf("shortens %d recipe(s): %s", n, strings.Join(imp.Trimmed, ", ")))
	}
	return soonStyle.Render(fmt.Sprintf("Deleting %s removes ", what)) + strings.Join(parts, "; ")
}

// Status renders the dashboard: stock, what to cook and what to buy.
func Status(ov app.Overview) string {
	left := Ingredients(ov.State, ov.Expiry)
	right := lipgloss.JoinVertical(lipgloss.Left,
		Priority(ov.Prioritized),
		RecipeNames("Cookable now", ov.Feasible),
		header("To buy")+"\n  "+secondaryStyle.Render(missingSummary(ov.Missing)),
	)
	title := secondaryStyle.Render("Today is " + ov.Today.String())
	return lipgloss.JoinVertical(lipgloss.Left, title, "",
		lipgloss.JoinHorizontal(lipgloss.Top, boxStyle.Render(left), " ", boxStyle.Render(right)))
}

func missingSummary(missing []string) string {
	if len(missing) == 0 {
		return "nothing"
	}
	return strings.Join(missing, ", ")
}
