/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package describe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getgroundwork/groundwork/internal/state"
)

// Format renders a report for terminal output
func Format(report *Report, styles *Styles) string {
	var b strings.Builder

	b.WriteString(styles.Header.Render(fmt.Sprintf("Stack: %s", report.StackName)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n",
		styles.Key.Render("State:"),
		styles.StateStyle(string(report.State)).Render(string(report.State))))

	if report.Stack != nil {
		b.WriteString(fmt.Sprintf("%s %s\n", styles.Key.Render("Status:"), report.Stack.Status))
		if report.Stack.StatusReason != "" {
			b.WriteString(fmt.Sprintf("%s %s\n", styles.Key.Render("Reason:"), report.Stack.StatusReason))
		}
		b.WriteString(fmt.Sprintf("%s %t\n",
			styles.Key.Render("Termination protection:"), report.Stack.TerminationProtection))
		if report.Stack.CreatedTime != nil {
			b.WriteString(fmt.Sprintf("%s %s\n",
				styles.Key.Render("Created:"), report.Stack.CreatedTime.Format("2006-01-02 15:04:05")))
		}
	}

	if len(report.Resources) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Header.Render("Resources"))
		b.WriteString("\n")
		for _, r := range report.Resources {
			line := fmt.Sprintf("  %-18s %-28s %s", r.LogicalID, r.Type, r.Status)
			if strings.HasSuffix(r.Status, "_FAILED") {
				line = styles.Error.Render(line)
				if r.StatusReason != "" {
					line += "\n" + styles.Subtle.Render(fmt.Sprintf("    %s", r.StatusReason))
				}
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if report.Stack != nil && len(report.Stack.Outputs) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Header.Render("Outputs"))
		b.WriteString("\n")
		keys := make([]string, 0, len(report.Stack.Outputs))
		for k := range report.Stack.Outputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("  %s %s\n", styles.Key.Render(k+":"), report.Stack.Outputs[k]))
		}
	}

	if len(report.Orphans) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Warning.Render(fmt.Sprintf("Orphaned resources (%d)", len(report.Orphans))))
		b.WriteString("\n")
		for _, o := range report.Orphans {
			b.WriteString(fmt.Sprintf("  %-20s %s %s\n",
				o.Kind, o.PhysicalID, styles.Subtle.Render(fmt.Sprintf("(%s)", o.Confidence))))
		}
		b.WriteString(styles.Subtle.Render("Run deploy to import or discard them."))
		b.WriteString("\n")
	}

	if report.State == state.StateAbsent && len(report.Orphans) == 0 {
		b.WriteString(styles.Subtle.Render("No stack and no orphaned resources."))
		b.WriteString("\n")
	}

	return b.String()
}
