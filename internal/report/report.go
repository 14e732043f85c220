// Package report renders a finished audit batch for the terminal and
// exports it as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"iamaudit/internal/app"
	"iamaudit/internal/directory"
	"iamaudit/internal/domain"
)

// Render prints the batch summary table followed by one detail section per
// principal that carries analysis or degraded policies.
func Render(batch *app.Batch) {
	header := fmt.Sprintf("Audit of %ss (%s)", batch.Kind, batch.ID)
	if batch.FromCache {
		header += " [cached]"
	}
	pterm.DefaultSection.Println(header)

	if len(batch.Principals) == 0 {
		pterm.Info.Printfln("No %ss found", batch.Kind)
		return
	}

	rows := pterm.TableData{{"Name", "Created", "Policies", "Status"}}
	for _, p := range batch.Principals {
		rows = append(rows, []string{
			p.Name,
			p.CreatedDisplay(),
			fmt.Sprintf("%d", p.PolicyCount()),
			string(p.Status),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		fmt.Println(summaryFallback(batch))
	}

	for _, p := range batch.Principals {
		renderDetail(p)
	}

	renderTotals(batch)
}

func renderDetail(p domain.Principal) {
	if p.Analysis == nil && !hasDegradedPolicies(p) {
		return
	}

	pterm.DefaultSection.WithLevel(2).Println(p.Name)

	if p.Status == domain.StatusError {
		pterm.Warning.Printfln("Enrichment failed: %s", p.MoreInfo)
	}

	if p.Analysis != nil {
		a := p.Analysis
		pterm.DefaultBulletList.WithItems([]pterm.BulletListItem{
			{Level: 0, Text: "Capabilities: " + a.Capabilities},
			{Level: 0, Text: "Best practice: " + a.BestPractice},
			{Level: 1, Text: a.BestPracticeDetail},
			{Level: 0, Text: "Security concerns: " + a.SecurityConcerns},
			{Level: 1, Text: a.SecurityDetail},
			{Level: 0, Text: "Recommendations: " + a.Recommendations},
		}).Render()
	}

	renderPolicies("Inline policies", p.InlinePolicies)
	renderPolicies("Attached policies", p.AttachedPolicies)
}

func renderPolicies(title string, refs []domain.PolicyReference) {
	if len(refs) == 0 {
		return
	}
	pterm.DefaultSection.WithLevel(3).Println(title)
	for _, ref := range refs {
		if ref.Unavailable {
			pterm.Warning.Printfln("%s: %s", ref.Name, ref.Document)
			continue
		}
		pterm.Info.Println(ref.Name)
		fmt.Println(indent(directory.PrettyPolicy(ref.Document), "  "))
		if ref.Analysis != "" {
			fmt.Println(indent(ref.Analysis, "  "))
		}
	}
}

func renderTotals(batch *app.Batch) {
	counts := map[domain.PrincipalStatus]int{}
	for _, p := range batch.Principals {
		counts[p.Status]++
	}
	if counts[domain.StatusSecurityConcern] > 0 {
		pterm.Warning.Printfln("%d of %d flagged as a security concern",
			counts[domain.StatusSecurityConcern], len(batch.Principals))
	}
	if counts[domain.StatusError] > 0 {
		pterm.Warning.Printfln("%d of %d could not be fully enriched",
			counts[domain.StatusError], len(batch.Principals))
	}
	pterm.Success.Printfln("Audited %d %ss in %s",
		len(batch.Principals), batch.Kind, batch.Finished.Sub(batch.Started).Round(time.Millisecond))
}

// WriteJSON exports the batch to path as indented JSON
func WriteJSON(batch *app.Batch, path string) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func hasDegradedPolicies(p domain.Principal) bool {
	for _, ref := range p.InlinePolicies {
		if ref.Unavailable {
			return true
		}
	}
	for _, ref := range p.AttachedPolicies {
		if ref.Unavailable {
			return true
		}
	}
	return false
}

// summaryFallback keeps output usable when the table renderer errors out
func summaryFallback(batch *app.Batch) string {
	var b strings.Builder
	for _, p := range batch.Principals {
		fmt.Fprintf(&b, "%-40s %-12s %3d policies  %s\n",
			p.Name, p.CreatedDisplay(), p.PolicyCount(), p.Status)
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
